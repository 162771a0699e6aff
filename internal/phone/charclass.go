// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

const (
	classDigit     uint8 = 0x01
	classSeparator uint8 = 0x02
	classPlus      uint8 = 0x04
)

// charTable classifies every byte value. Bytes outside ASCII are zero.
var charTable = [256]uint8{
	'\t': classSeparator,
	' ':  classSeparator,
	'(':  classSeparator,
	')':  classSeparator,
	'-':  classSeparator,
	'.':  classSeparator,
	'+':  classPlus,
	'0':  classDigit,
	'1':  classDigit,
	'2':  classDigit,
	'3':  classDigit,
	'4':  classDigit,
	'5':  classDigit,
	'6':  classDigit,
	'7':  classDigit,
	'8':  classDigit,
	'9':  classDigit,
}

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool { return charTable[c]&classDigit != 0 }

// IsSeparator reports whether c may appear between the digits of a number:
// space, tab, '-', '.', '(' or ')'. The plus sign is not a separator.
func IsSeparator(c byte) bool { return charTable[c]&classSeparator != 0 }

// IsPlus reports whether c introduces an international number.
func IsPlus(c byte) bool { return charTable[c]&classPlus != 0 }

// IsPhoneChar reports whether c is a digit, a separator or a plus sign.
func IsPhoneChar(c byte) bool { return charTable[c] != 0 }
