// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

// ExtractDigits returns the digit bytes of b in their original order.
// The result never aliases b.
func ExtractDigits(b []byte) []byte {
	digits := make([]byte, 0, CountDigits(b))
	for _, c := range b {
		if IsDigit(c) {
			digits = append(digits, c)
		}
	}
	return digits
}

// CountDigits returns the number of digit bytes in b.
func CountDigits(b []byte) int {
	n := 0
	for _, c := range b {
		if IsDigit(c) {
			n++
		}
	}
	return n
}

// allDigits reports whether b is non-empty and made only of digits.
func allDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !IsDigit(c) {
			return false
		}
	}
	return true
}
