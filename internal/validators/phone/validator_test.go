// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"bytes"
	"testing"

	"phone-scan/internal/detector"
	"phone-scan/internal/observability"
	"phone-scan/internal/phone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContent_Positions(t *testing.T) {
	content := []byte("Team list\nAlice: call +1 234-567-8900\nBob: 9876543210\n")
	v := NewValidator()

	matches, err := v.ValidateContent(content, "team.txt")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	first := matches[0]
	assert.Equal(t, "+1 234-567-8900", first.Text)
	assert.Equal(t, "12345678900", first.Digits)
	assert.Equal(t, phone.InternationalPlus, first.Category)
	assert.Equal(t, 2, first.LineNumber)
	assert.Equal(t, 13, first.Column)
	assert.Equal(t, "team.txt", first.Filename)
	assert.Equal(t, "phone", first.Validator)
	assert.Equal(t, "Alice: call ", first.Context.BeforeText)
	assert.Equal(t, "INTERNATIONAL_PLUS", first.Metadata["category"])
	assert.Equal(t, true, first.Metadata["has_plus"])
	// base 90, "call" nearby +10
	assert.Equal(t, 100.0, first.Confidence)

	second := matches[1]
	assert.Equal(t, phone.Mobile10Digit, second.Category)
	assert.Equal(t, 3, second.LineNumber)
	assert.Equal(t, 6, second.Column)
	assert.Equal(t, 60.0, second.Confidence)
}

func TestValidateContent_CategoryFilter(t *testing.T) {
	content := []byte("Office: +1 234-567-8900, Mobile: 9876543210")
	v := NewValidator()
	v.SetCategories(map[phone.Category]bool{phone.Mobile10Digit: true})

	matches, err := v.ValidateContent(content, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "9876543210", matches[0].Text)

	v.SetCategories(nil)
	matches, err = v.ValidateContent(content, "")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestValidateContent_Empty(t *testing.T) {
	matches, err := NewValidator().ValidateContent([]byte("nothing to see"), "x")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCalculateConfidence(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		match phone.Match
		want  float64
	}{
		{phone.Match{Category: phone.InternationalPlus, Raw: []byte("+919876543210"), Digits: []byte("919876543210")}, 90},
		{phone.Match{Category: phone.FormattedDomestic, Raw: []byte("234-567-8900"), Digits: []byte("2345678900")}, 85},
		{phone.Match{Category: phone.Mobile10Digit, Raw: []byte("9876543210"), Digits: []byte("9876543210")}, 60},
		{phone.Match{Category: phone.Mobile10Digit, Raw: []byte("1234567890"), Digits: []byte("1234567890")}, 40},
		{phone.Match{Category: phone.Mobile10Digit, Raw: []byte("123 456 7890"), Digits: []byte("1234567890")}, 60},
		{phone.Match{Category: phone.International00, Raw: []byte("0044"), Digits: []byte("0044")}, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, v.CalculateConfidence(tc.match), string(tc.match.Raw))
	}
}

func TestAnalyzeContext_NegativeKeywords(t *testing.T) {
	matches, err := NewValidator().ValidateContent([]byte("Order number 2345678901 shipped"), "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	// base 60, "order" nearby -25
	assert.Equal(t, 35.0, matches[0].Confidence)
}

func TestAnalyzeContext_WholeWordKeywords(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		before string
		after  string
		want   float64
	}{
		{"keyword alone", "tel ", "", 10},
		{"keyword with punctuation", "Tel.: ", "", 10},
		{"keyword after number", "", " (mobile)", 10},
		{"inside hotel", "hotel ", "", 0},
		{"inside intel", "intel ", "", 0},
		{"negative inside border", "border ", "", 0},
		{"negative and positive", "call about order ", "", -15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.AnalyzeContext(detector.ContextInfo{BeforeText: tt.before, AfterText: tt.after})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateContent_HotelIsNotTel(t *testing.T) {
	matches, err := NewValidator().ValidateContent([]byte("hotel 9876543210"), "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	plain, err := NewValidator().ValidateContent([]byte("9876543210"), "")
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.Equal(t, plain[0].Confidence, matches[0].Confidence)

	tel, err := NewValidator().ValidateContent([]byte("tel 9876543210"), "")
	require.NoError(t, err)
	require.Len(t, tel, 1)
	assert.Greater(t, tel[0].Confidence, plain[0].Confidence)
}

func TestValidateContent_Observer(t *testing.T) {
	var buf bytes.Buffer
	v := NewValidator()
	v.SetObserver(observability.NewStandardObserver(observability.ObservabilityDebug, &buf))

	_, err := v.ValidateContent([]byte("call 9876543210"), "a.txt")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"component":"phone_validator"`)
	assert.Contains(t, buf.String(), `"file_path":"a.txt"`)
}

func TestGetCheckInfo(t *testing.T) {
	info := NewValidator().GetCheckInfo()
	assert.Equal(t, "PHONE", info.Name)
	assert.Len(t, info.Categories, len(phone.Categories()))
	assert.NotEmpty(t, info.PositiveKeywords)
}
