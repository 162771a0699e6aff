// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharClassifier(t *testing.T) {
	for c := 0; c < 256; c++ {
		b := byte(c)
		assert.Equal(t, b >= '0' && b <= '9', IsDigit(b), "IsDigit(%q)", b)
		assert.Equal(t, b == '+', IsPlus(b), "IsPlus(%q)", b)

		wantSep := b == ' ' || b == '\t' || b == '-' || b == '.' || b == '(' || b == ')'
		assert.Equal(t, wantSep, IsSeparator(b), "IsSeparator(%q)", b)
		assert.Equal(t, wantSep || IsDigit(b) || b == '+', IsPhoneChar(b), "IsPhoneChar(%q)", b)

		if b >= 0x80 {
			assert.False(t, IsPhoneChar(b), "non-ASCII byte %#x", b)
		}
	}
}

func TestExtractDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", ""},
		{"(123) 456-7890", "1234567890"},
		{"+91 98765 43210", "919876543210"},
		{"1\x002\xff3", "123"},
	}
	for _, tc := range tests {
		got := ExtractDigits([]byte(tc.in))
		assert.Equal(t, tc.want, string(got), tc.in)
		assert.Len(t, got, CountDigits([]byte(tc.in)))
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		input    string
		category Category
		valid    bool
		desc     string
	}{
		{"(123) 456-7890", FormattedDomestic, true, "formatted with parentheses"},
		{"123-456-7890", FormattedDomestic, true, "formatted with dashes"},
		{"123.456.7890", FormattedDomestic, true, "formatted with dots"},
		{"(012) 456-7890", FormattedDomestic, false, "area code starts with zero"},
		{"(123) 156-7890", FormattedDomestic, false, "exchange starts with one"},
		{"123-456-789", FormattedDomestic, false, "nine digits"},
		{"1-800-555-1234", FormattedTollFree, true, "toll free with dashes"},
		{"1-080-555-1234", FormattedTollFree, false, "toll free with zero after trunk"},
		{"2-800-555-1234", FormattedTollFree, false, "missing trunk digit"},
		{"2345678901", Plain10Digit, true, "plain 10 digits"},
		{"0234567890", Plain10Digit, false, "plain 10 with leading zero"},
		{"2341678901", Plain10Digit, false, "plain 10 with low exchange"},
		{"234-567-8901", Plain10Digit, false, "plain 10 with separators"},
		{"12345678901", Plain11Digit, true, "plain 11 digits with 1"},
		{"10345678901", Plain11Digit, false, "plain 11 with zero after trunk"},
		{"22345678901", Plain11Digit, false, "plain 11 without trunk"},
		{"+1 123-456-7890", InternationalPlus, true, "international format"},
		{"+91 9876543210", InternationalPlus, true, "international mobile format"},
		{"+44 20 1234 5678", InternationalPlus, true, "international with groups"},
		{"+123456", InternationalPlus, false, "six digits"},
		{"+1234567890123456", InternationalPlus, false, "sixteen digits"},
		{"1234567890", InternationalPlus, false, "no plus"},
		{"", InternationalPlus, false, "empty"},
		{"9876543210", Mobile10Digit, true, "mobile 10 digits"},
		{"919876543210", Mobile10Digit, true, "mobile with country code"},
		{"5876543210", Mobile10Digit, true, "mobile starting with 5"},
		{"0876543210", Mobile10Digit, false, "mobile starting with zero"},
		{"920876543210", Mobile10Digit, false, "twelve digits without 91"},
		{"910876543210", Mobile10Digit, false, "91 followed by zero"},
		{"98765432101", Mobile10Digit, false, "eleven digits"},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.valid, Validate(tc.category, []byte(tc.input)))
		})
	}
}

func TestIsPlainDigit_UnsupportedLength(t *testing.T) {
	assert.False(t, IsPlainDigit([]byte("123456789"), 9))
	assert.False(t, IsPlainDigit([]byte("123456789012"), 12))
}

func TestValidatorFor(t *testing.T) {
	v, ok := ValidatorFor(Plain10Digit)
	require.True(t, ok)
	assert.Equal(t, 10, v.Length)

	v, ok = ValidatorFor(Plain11Digit)
	require.True(t, ok)
	assert.Equal(t, 11, v.Length)

	_, ok = ValidatorFor(International00)
	assert.False(t, ok)
	_, ok = ValidatorFor(Unknown)
	assert.False(t, ok)
	assert.False(t, Validate(International00, []byte("00441234567890")))
}

func TestCategory_Text(t *testing.T) {
	for _, c := range Categories() {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	parsed, err := ParseCategory(" mobile_10_digit ")
	require.NoError(t, err)
	assert.Equal(t, Mobile10Digit, parsed)

	_, err = ParseCategory("LANDLINE")
	assert.Error(t, err)

	assert.Equal(t, "UNKNOWN", Category(99).String())

	data, err := json.Marshal(map[string]Category{"c": FormattedTollFree})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"FORMATTED_TOLL_FREE"}`, string(data))

	var decoded map[string]Category
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, FormattedTollFree, decoded["c"])
}
