// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"fmt"
	"strings"
)

// Category is the format family a phone match was recognised as.
type Category int

const (
	Unknown Category = iota
	FormattedDomestic
	FormattedTollFree
	InternationalPlus
	// International00 is reserved for "00"-prefixed numbers. The scanner
	// never produces it.
	International00
	Plain10Digit
	Plain11Digit
	Mobile10Digit
)

var categoryNames = [...]string{
	Unknown:           "UNKNOWN",
	FormattedDomestic: "FORMATTED_DOMESTIC",
	FormattedTollFree: "FORMATTED_TOLL_FREE",
	InternationalPlus: "INTERNATIONAL_PLUS",
	International00:   "INTERNATIONAL_00",
	Plain10Digit:      "PLAIN_10_DIGIT",
	Plain11Digit:      "PLAIN_11_DIGIT",
	Mobile10Digit:     "MOBILE_10_DIGIT",
}

// Categories lists every category except Unknown, in declaration order.
func Categories() []Category {
	return []Category{
		FormattedDomestic,
		FormattedTollFree,
		InternationalPlus,
		International00,
		Plain10Digit,
		Plain11Digit,
		Mobile10Digit,
	}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return categoryNames[Unknown]
	}
	return categoryNames[c]
}

// ParseCategory converts a tag such as "MOBILE_10_DIGIT" back into a
// Category. Matching ignores case and surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	tag := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == tag {
			return Category(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown phone category %q", s)
}

// MarshalText encodes the category as its tag.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a tag produced by MarshalText.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
