// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"strings"
	"time"

	"phone-scan/internal/detector"
	"phone-scan/internal/formatters"
)

// Redacted replaces matched numbers when ShowMatch is off
const Redacted = "[REDACTED]"

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Results    []JSONMatch      `json:"results" yaml:"results"`
	Suppressed []JSONSuppressed `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
}

// JSONMatch represents a single match in JSON/YAML format
type JSONMatch struct {
	Text            string         `json:"text" yaml:"text"`
	Digits          string         `json:"digits,omitempty" yaml:"digits,omitempty"`
	Category        string         `json:"category" yaml:"category"`
	LineNumber      int            `json:"line_number" yaml:"line_number"`
	Column          int            `json:"column" yaml:"column"`
	Offset          int            `json:"offset" yaml:"offset"`
	Confidence      float64        `json:"confidence" yaml:"confidence"`
	ConfidenceLevel string         `json:"confidence_level" yaml:"confidence_level"`
	Filename        string         `json:"filename" yaml:"filename"`
	Validator       string         `json:"validator,omitempty" yaml:"validator,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	FullLine        string         `json:"full_line,omitempty" yaml:"full_line,omitempty"`
	BeforeText      string         `json:"before_text,omitempty" yaml:"before_text,omitempty"`
	AfterText       string         `json:"after_text,omitempty" yaml:"after_text,omitempty"`
}

// JSONSuppressed represents a suppressed finding in JSON/YAML format
type JSONSuppressed struct {
	Finding      JSONMatch  `json:"finding" yaml:"finding"`
	SuppressedBy string     `json:"suppressed_by" yaml:"suppressed_by"`
	RuleReason   string     `json:"rule_reason" yaml:"rule_reason"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired      bool       `json:"expired" yaml:"expired"`
}

// FilterMatchesByConfidence filters matches based on confidence level settings.
// A nil level map keeps every match.
func FilterMatchesByConfidence(matches []detector.Match, options formatters.FormatterOptions) []detector.Match {
	if options.ConfidenceLevel == nil {
		return matches
	}
	var filtered []detector.Match
	for _, match := range matches {
		if options.ConfidenceLevel[strings.ToLower(GetConfidenceLevel(match.Confidence))] {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

// GetConfidenceLevel returns the confidence level as a string
func GetConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 90:
		return "HIGH"
	case confidence >= 60:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// DisplayText returns the matched text, or the redaction marker when
// ShowMatch is off
func DisplayText(match detector.Match, options formatters.FormatterOptions) string {
	if options.ShowMatch {
		return match.Text
	}
	return Redacted
}

// RedactLine hides every occurrence of the matched text in a context line
// unless ShowMatch is on
func RedactLine(line string, match detector.Match, options formatters.FormatterOptions) string {
	if options.ShowMatch || match.Text == "" {
		return line
	}
	return strings.ReplaceAll(line, match.Text, Redacted)
}

// ConvertMatch converts a single detector match to its JSON/YAML form
func ConvertMatch(match detector.Match, options formatters.FormatterOptions) JSONMatch {
	metadata := make(map[string]any, len(match.Metadata))
	for k, v := range match.Metadata {
		if k == "digits" && !options.ShowMatch {
			continue
		}
		metadata[k] = v
	}

	jsonMatch := JSONMatch{
		Text:            DisplayText(match, options),
		Category:        match.Category.String(),
		LineNumber:      match.LineNumber,
		Column:          match.Column,
		Offset:          match.Offset,
		Confidence:      match.Confidence,
		ConfidenceLevel: GetConfidenceLevel(match.Confidence),
		Filename:        match.Filename,
		Validator:       match.Validator,
		Metadata:        metadata,
	}
	if options.ShowMatch {
		jsonMatch.Digits = match.Digits
	}

	if options.Verbose {
		jsonMatch.FullLine = RedactLine(match.Context.FullLine, match, options)
		jsonMatch.BeforeText = match.Context.BeforeText
		jsonMatch.AfterText = match.Context.AfterText
	}

	return jsonMatch
}

// ConvertMatchesToJSONFormat converts detector matches to JSON/YAML format
func ConvertMatchesToJSONFormat(matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options formatters.FormatterOptions) JSONResponse {
	jsonMatches := make([]JSONMatch, 0, len(matches))
	for _, match := range matches {
		jsonMatches = append(jsonMatches, ConvertMatch(match, options))
	}

	var suppressed []JSONSuppressed
	for _, s := range suppressedMatches {
		suppressed = append(suppressed, JSONSuppressed{
			Finding:      ConvertMatch(s.Match, options),
			SuppressedBy: s.SuppressedBy,
			RuleReason:   s.RuleReason,
			ExpiresAt:    s.ExpiresAt,
			Expired:      s.Expired,
		})
	}

	return JSONResponse{
		Results:    jsonMatches,
		Suppressed: suppressed,
	}
}
