package vat

import "strings"

// checksumValid dispatches to the country checksum where one is defined.
// Countries without a defined checksum pass on format alone.
func checksumValid(country, national string) bool {
	switch country {
	case "SE":
		// Swedish VAT numbers are the 10-digit organization number plus
		// a 2-digit suffix; the Luhn check covers the organization
		// number only.
		return luhnValid(national[:10])
	case "NO":
		return norwegianOrgValid(strings.TrimSuffix(national, "MVA"))
	default:
		return true
	}
}

// luhnValid implements the Luhn variant used by Swedish organization
// numbers: double every second digit from the left, subtract 9 from any
// product above 9, and require the sum to be divisible by 10. Valid for the
// even-length digit strings organization numbers use.
func luhnValid(digits string) bool {
	sum := 0
	for i := range len(digits) {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
		d := int(digits[i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}

// norwegianWeights are the MOD-11 weights over the first 8 digits of a
// Norwegian organization number.
var norwegianWeights = [8]int{3, 2, 7, 6, 5, 4, 3, 2}

// norwegianOrgValid implements the weighted MOD-11 check for 9-digit
// Norwegian organization numbers. The remainder determines the 9th check
// digit; remainder 0 yields check digit 0, and a computed check digit of 10
// marks the number invalid.
func norwegianOrgValid(digits string) bool {
	if len(digits) != 9 {
		return false
	}

	sum := 0
	for i, w := range norwegianWeights {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
		sum += w * int(digits[i]-'0')
	}

	rem := sum % 11
	check := 0
	if rem != 0 {
		check = 11 - rem
	}
	if check == 10 {
		return false
	}
	return check == int(digits[8]-'0')
}
