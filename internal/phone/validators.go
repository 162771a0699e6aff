// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

// IsFormattedDomestic accepts a candidate with exactly ten digits whose
// first digit is not 0 and whose exchange starts at 2 or above.
func IsFormattedDomestic(candidate []byte) bool {
	if CountDigits(candidate) != 10 {
		return false
	}
	digits := ExtractDigits(candidate)
	return digits[0] != '0' && digits[3] >= '2'
}

// IsTollFree accepts an eleven digit candidate carrying the trunk prefix 1.
func IsTollFree(candidate []byte) bool {
	if CountDigits(candidate) != 11 {
		return false
	}
	digits := ExtractDigits(candidate)
	return digits[0] == '1' && digits[1] != '0'
}

// IsInternationalPlus accepts a candidate that starts with '+' and carries
// between MinDigits and MaxDigits digits.
func IsInternationalPlus(candidate []byte) bool {
	if len(candidate) == 0 || !IsPlus(candidate[0]) {
		return false
	}
	n := CountDigits(candidate)
	return n >= MinDigits && n <= MaxDigits
}

// IsPlainDigit accepts an unseparated run of exactly length digits. Only
// lengths 10 and 11 are meaningful; any other length is rejected.
func IsPlainDigit(candidate []byte, length int) bool {
	if len(candidate) != length || !allDigits(candidate) {
		return false
	}
	switch length {
	case 10:
		return candidate[0] != '0' && candidate[3] >= '2'
	case 11:
		return candidate[0] == '1' && candidate[1] != '0'
	default:
		return false
	}
}

// IsMobile accepts ten digits with a non-zero lead, or twelve digits made
// of the 91 country prefix followed by a non-zero lead.
func IsMobile(candidate []byte) bool {
	digits := ExtractDigits(candidate)
	switch len(digits) {
	case 10:
		return digits[0] >= '1' && digits[0] <= '9'
	case 12:
		return digits[0] == '9' && digits[1] == '1' && digits[2] >= '1' && digits[2] <= '9'
	default:
		return false
	}
}

// Validator is the acceptance rule for one category.
type Validator struct {
	Category Category
	// Length is only used by the plain digit categories.
	Length int
}

// ValidatorFor returns the validator for c. International00 and Unknown have
// no rule and report false.
func ValidatorFor(c Category) (Validator, bool) {
	switch c {
	case FormattedDomestic, FormattedTollFree, InternationalPlus, Mobile10Digit:
		return Validator{Category: c}, true
	case Plain10Digit:
		return Validator{Category: c, Length: 10}, true
	case Plain11Digit:
		return Validator{Category: c, Length: 11}, true
	default:
		return Validator{}, false
	}
}

// IsValid applies the category rule to candidate.
func (v Validator) IsValid(candidate []byte) bool {
	switch v.Category {
	case FormattedDomestic:
		return IsFormattedDomestic(candidate)
	case FormattedTollFree:
		return IsTollFree(candidate)
	case InternationalPlus:
		return IsInternationalPlus(candidate)
	case Plain10Digit, Plain11Digit:
		return IsPlainDigit(candidate, v.Length)
	case Mobile10Digit:
		return IsMobile(candidate)
	default:
		return false
	}
}

// Validate is shorthand for ValidatorFor(c) followed by IsValid.
func Validate(c Category, candidate []byte) bool {
	v, ok := ValidatorFor(c)
	return ok && v.IsValid(candidate)
}
