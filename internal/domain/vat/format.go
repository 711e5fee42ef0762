package vat

import (
	"regexp"
	"strings"
)

// patterns holds the structural rule for the national part of each supported
// country's VAT/registration number (the part after the ISO prefix).
var patterns = map[string]*regexp.Regexp{
	"AT": regexp.MustCompile(`^U\d{8}$`),
	"BE": regexp.MustCompile(`^[01]\d{9}$`),
	"BG": regexp.MustCompile(`^\d{9,10}$`),
	"CY": regexp.MustCompile(`^\d{8}[A-Z]$`),
	"CZ": regexp.MustCompile(`^\d{8,10}$`),
	"DE": regexp.MustCompile(`^\d{9}$`),
	"DK": regexp.MustCompile(`^\d{8}$`),
	"EE": regexp.MustCompile(`^\d{9}$`),
	"EL": regexp.MustCompile(`^\d{9}$`),
	"ES": regexp.MustCompile(`^[A-Z0-9]\d{7}[A-Z0-9]$`),
	"FI": regexp.MustCompile(`^\d{8}$`),
	"FR": regexp.MustCompile(`^[A-HJ-NP-Z0-9]{2}\d{9}$`),
	"HR": regexp.MustCompile(`^\d{11}$`),
	"HU": regexp.MustCompile(`^\d{8}$`),
	"IE": regexp.MustCompile(`^\d{7}[A-W][A-IW]?$`),
	"IT": regexp.MustCompile(`^\d{11}$`),
	"LT": regexp.MustCompile(`^(\d{9}|\d{12})$`),
	"LU": regexp.MustCompile(`^\d{8}$`),
	"LV": regexp.MustCompile(`^\d{11}$`),
	"MT": regexp.MustCompile(`^\d{8}$`),
	"NL": regexp.MustCompile(`^\d{9}B\d{2}$`),
	"NO": regexp.MustCompile(`^\d{9}(MVA)?$`),
	"PL": regexp.MustCompile(`^\d{10}$`),
	"PT": regexp.MustCompile(`^\d{9}$`),
	"RO": regexp.MustCompile(`^\d{2,10}$`),
	"SE": regexp.MustCompile(`^\d{10}(\d{2})?$`),
	"SI": regexp.MustCompile(`^\d{8}$`),
	"SK": regexp.MustCompile(`^\d{10}$`),
}

// countryAliases maps ISO codes to the prefix the VAT system actually uses.
var countryAliases = map[string]string{
	"GR": "EL", // Greece uses EL on VAT numbers
}

func supportedCountry(code string) bool {
	_, ok := patterns[canonicalCountry(code)]
	return ok
}

func canonicalCountry(code string) string {
	code = strings.ToUpper(code)
	if alias, ok := countryAliases[code]; ok {
		return alias
	}
	return code
}

// Normalize strips spaces, hyphens and dots and uppercases the input.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ' ', '\t', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// ValidateFormat runs the offline part of validation: normalization, country
// detection, the structural pattern, and the country checksum where one is
// defined. countryHint is consulted only when the input carries no ISO
// prefix of its own.
func ValidateFormat(raw, countryHint string) Result {
	normalized := Normalize(raw)
	if normalized == "" {
		return Result{Reason: ReasonEmpty, Confirmation: ConfirmationOffline}
	}

	country, national := splitCountry(normalized, countryHint)
	if country == "" {
		return Result{
			Normalized:   normalized,
			Reason:       ReasonUnknownCountry,
			Confirmation: ConfirmationOffline,
		}
	}

	res := Result{
		CountryCode:  country,
		Normalized:   country + national,
		Confirmation: ConfirmationOffline,
	}

	re, ok := patterns[country]
	if !ok {
		res.Reason = ReasonUnknownCountry
		return res
	}
	if !re.MatchString(national) {
		res.Reason = ReasonBadFormat
		return res
	}

	// Checksum rejects even when the pattern passed.
	if !checksumValid(country, national) {
		res.Reason = ReasonBadChecksum
		return res
	}

	res.Valid = true
	return res
}

// splitCountry separates the ISO prefix from the national part. When the
// input has no letter prefix the hint decides the country.
func splitCountry(normalized, hint string) (country, national string) {
	if len(normalized) >= 2 && isLetters(normalized[:2]) {
		if c := canonicalCountry(normalized[:2]); supportedCountry(c) {
			return c, normalized[2:]
		}
		return "", normalized
	}

	if hint == "" {
		return "", normalized
	}
	c := canonicalCountry(hint)
	if !supportedCountry(c) {
		return "", normalized
	}
	return c, normalized
}

func isLetters(s string) bool {
	for i := range len(s) {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
