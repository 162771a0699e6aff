// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"phone-scan/internal/detector"
	"phone-scan/internal/observability"
	"phone-scan/internal/phone"
)

// baseConfidence is the starting score for each category before context
// keywords are considered.
var baseConfidence = map[phone.Category]float64{
	phone.InternationalPlus: 90,
	phone.FormattedDomestic: 85,
	phone.FormattedTollFree: 85,
	phone.Plain11Digit:      65,
	phone.Plain10Digit:      60,
	phone.Mobile10Digit:     60,
}

// Validator implements the detector.Validator interface on top of the byte
// scanner, adding positions, context and a confidence score to each match.
type Validator struct {
	scanner *phone.Scanner
	context *detector.ContextExtractor

	// Categories to report; nil reports all
	enabled map[phone.Category]bool

	// Keywords that suggest a phone context
	positiveKeywords []string

	// Keywords that suggest this is not a real phone
	negativeKeywords []string

	// Observability
	observer *observability.StandardObserver
}

// NewValidator creates and returns a new Validator that reports every
// category.
func NewValidator() *Validator {
	return &Validator{
		scanner: phone.NewScanner(),
		context: detector.NewContextExtractor(),
		positiveKeywords: []string{
			"phone", "telephone", "tel", "call", "mobile", "cell", "contact",
			"fax", "dial", "hotline", "helpline", "support", "sales", "office",
			"whatsapp", "sms", "toll-free", "tollfree",
		},
		negativeKeywords: []string{
			"order", "invoice", "account", "serial", "tracking", "timestamp",
			"epoch", "uuid", "hash", "checksum", "isbn", "sku", "ssn",
			"credit card", "iban",
		},
	}
}

// Name returns the validator identifier
func (v *Validator) Name() string {
	return "phone"
}

// SetObserver sets the observability component
func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

// SetCategories restricts reported matches to the given categories. A nil or
// empty map enables every category.
func (v *Validator) SetCategories(enabled map[phone.Category]bool) {
	if len(enabled) == 0 {
		v.enabled = nil
		return
	}
	v.enabled = enabled
}

// ValidateContent scans content for phone numbers
func (v *Validator) ValidateContent(content []byte, originalPath string) ([]detector.Match, error) {
	var finishTiming func(bool, map[string]interface{})
	if v.observer != nil {
		finishTiming = v.observer.StartTiming("phone_validator", "validate_content", originalPath)
	}

	found := v.scanner.Extract(content)
	lines := detector.NewLineIndex(content)

	matches := make([]detector.Match, 0, len(found))
	for _, m := range found {
		if v.enabled != nil && !v.enabled[m.Category] {
			continue
		}

		line, column := lines.Position(m.Offset)
		contextInfo := v.context.ExtractContext(lines, m.Offset, len(m.Raw))
		confidence := v.CalculateConfidence(m) + v.AnalyzeContext(contextInfo)

		// Ensure confidence stays within bounds
		if confidence > 100 {
			confidence = 100
		} else if confidence < 0 {
			confidence = 0
		}

		matches = append(matches, detector.Match{
			Text:       string(m.Raw),
			Digits:     string(m.Digits),
			Category:   m.Category,
			Offset:     m.Offset,
			LineNumber: line,
			Column:     column,
			Confidence: confidence,
			Filename:   originalPath,
			Validator:  v.Name(),
			Context:    contextInfo,
			Metadata: map[string]any{
				"category":     m.Category.String(),
				"digits":       string(m.Digits),
				"digit_count":  len(m.Digits),
				"offset":       m.Offset,
				"has_plus":     phone.IsPlus(m.Raw[0]),
				"is_separated": len(m.Raw) != len(m.Digits),
			},
		})
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"match_count":    len(matches),
			"content_length": len(content),
		})
	}

	return matches, nil
}

// CalculateConfidence returns the category score for a match. Ten digit
// runs starting with 1 are reported as mobile numbers but are as likely to
// be identifiers, so they score lower.
func (v *Validator) CalculateConfidence(m phone.Match) float64 {
	confidence, ok := baseConfidence[m.Category]
	if !ok {
		return 0
	}
	if m.Category == phone.Mobile10Digit && len(m.Raw) == len(m.Digits) && m.Raw[0] == '1' {
		confidence = 40
	}
	return confidence
}

// AnalyzeContext returns the confidence adjustment implied by keywords on
// the line around a match.
func (v *Validator) AnalyzeContext(context detector.ContextInfo) float64 {
	lower := strings.ToLower(context.BeforeText + " " + context.AfterText)

	var impact float64
	if containsAny(lower, v.positiveKeywords) {
		impact += 10
	}
	if containsAny(lower, v.negativeKeywords) {
		impact -= 25
	}
	return impact
}

// containsAny reports whether any keyword occurs in text as a whole word,
// so "tel" does not fire inside "hotel".
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if containsWord(text, keyword) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	for offset := 0; offset <= len(text)-len(word); {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(word)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
