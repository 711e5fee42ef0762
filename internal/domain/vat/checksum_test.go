package vat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuhnValid_KnownOrgNumbers(t *testing.T) {
	assert.True(t, luhnValid("5566778899"))
	assert.True(t, luhnValid("5560160680"))
	assert.False(t, luhnValid("5566778890"))
	assert.False(t, luhnValid("55667788xx"))
}

func TestLuhnValid_CatchesEverySingleDigitError(t *testing.T) {
	const valid = "5566778899"

	for pos := range len(valid) {
		for d := byte('0'); d <= '9'; d++ {
			if d == valid[pos] {
				continue
			}
			mutated := valid[:pos] + string(d) + valid[pos+1:]
			assert.False(t, luhnValid(mutated),
				"flipping digit %d to %c must fail the checksum", pos, d)
		}
	}
}

func TestNorwegianOrgValid(t *testing.T) {
	assert.True(t, norwegianOrgValid("923609016"))

	// Wrong check digit.
	assert.False(t, norwegianOrgValid("923609017"))
	// Wrong length.
	assert.False(t, norwegianOrgValid("92360901"))
	assert.False(t, norwegianOrgValid("9236090166"))
	// Non-digit.
	assert.False(t, norwegianOrgValid("92360901x"))
}

func TestNorwegianOrgValid_RemainderTenIsInvalid(t *testing.T) {
	// Weighted sum of 00000006 is 12, remainder 1, computed check digit 10:
	// no 9th digit can make this number valid.
	for d := byte('0'); d <= '9'; d++ {
		assert.False(t, norwegianOrgValid("00000006"+string(d)))
	}
}

func TestNorwegianOrgValid_RemainderZeroMeansCheckDigitZero(t *testing.T) {
	// Weighted sum of 00000000 is 0, so only check digit 0 is valid.
	assert.True(t, norwegianOrgValid("000000000"))
	assert.False(t, norwegianOrgValid("000000005"))
}

func TestChecksumValid_OnlyDefinedCountriesCheck(t *testing.T) {
	// Germany has no checksum defined here; format alone decides.
	assert.True(t, checksumValid("DE", "123456789"))

	assert.True(t, checksumValid("SE", "556677889901"))
	assert.False(t, checksumValid("SE", "556677889001"))
	assert.True(t, checksumValid("NO", "923609016MVA"))
	assert.False(t, checksumValid("NO", "923609017MVA"))
}
