// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sarif

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"phone-scan/internal/detector"
	"phone-scan/internal/formatters"
	"phone-scan/internal/formatters/shared"
)

// ResultMapper converts detector matches to SARIF results and registers
// the rule for each category it sees
type ResultMapper struct {
	ruleManager *RuleManager
}

// NewResultMapper creates a mapper that records rules in ruleManager
func NewResultMapper(ruleManager *RuleManager) *ResultMapper {
	return &ResultMapper{ruleManager: ruleManager}
}

func roundFloat(val float64) float64 {
	return math.Round(val*10) / 10
}

// MapToSARIFResult converts an active match
func (m *ResultMapper) MapToSARIFResult(match detector.Match, options formatters.FormatterOptions) SARIFResult {
	rule := m.ruleManager.GetOrCreateRule(match.Category)

	return SARIFResult{
		RuleID:     rule.ID,
		Level:      levelFor(match.Confidence),
		Message:    m.buildMessage(match, options),
		Locations:  []SARIFLocation{m.buildLocation(match, options)},
		Properties: m.buildProperties(match, options),
		Rank:       roundFloat(match.Confidence),
	}
}

// MapSuppressedMatch converts a suppressed match; it is kept in the report
// with level none and a suppression entry
func (m *ResultMapper) MapSuppressedMatch(suppressed detector.SuppressedMatch, options formatters.FormatterOptions) SARIFResult {
	result := m.MapToSARIFResult(suppressed.Match, options)
	result.Level = LevelNone
	result.Suppressions = []SARIFSuppression{{
		Kind:          SuppressionKindExternal,
		Justification: suppressed.RuleReason,
	}}

	result.Properties["suppressedBy"] = suppressed.SuppressedBy
	result.Properties["expired"] = suppressed.Expired
	if suppressed.ExpiresAt != nil {
		result.Properties["expiresAt"] = suppressed.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return result
}

func levelFor(confidence float64) string {
	switch shared.GetConfidenceLevel(confidence) {
	case "HIGH":
		return LevelError
	case "MEDIUM":
		return LevelWarning
	default:
		return LevelNote
	}
}

func (m *ResultMapper) buildLocation(match detector.Match, options formatters.FormatterOptions) SARIFLocation {
	return SARIFLocation{
		PhysicalLocation: SARIFPhysicalLocation{
			ArtifactLocation: buildArtifactLocation(match.Filename),
			Region:           buildRegion(match, options),
		},
	}
}

// buildArtifactLocation uses a %SRCROOT% relative URI for relative paths
// and a file URI for absolute ones
func buildArtifactLocation(filename string) SARIFArtifactLocation {
	if filename == "" {
		return SARIFArtifactLocation{URI: "stdin"}
	}

	cleanPath := filepath.ToSlash(filepath.Clean(filename))
	if filepath.IsAbs(filename) {
		return SARIFArtifactLocation{URI: "file://" + cleanPath}
	}
	return SARIFArtifactLocation{URI: cleanPath, URIBaseID: "%SRCROOT%"}
}

func buildRegion(match detector.Match, options formatters.FormatterOptions) SARIFRegion {
	region := SARIFRegion{
		StartLine:  max(match.LineNumber, 1),
		CharOffset: match.Offset,
		CharLength: len(match.Text),
	}
	if match.Column > 0 {
		region.StartColumn = match.Column
		region.EndColumn = match.Column + len(match.Text)
	}
	if options.ShowMatch && match.Context.FullLine != "" {
		region.Snippet = &SARIFSnippet{Text: match.Context.FullLine}
	}
	return region
}

func (m *ResultMapper) buildProperties(match detector.Match, options formatters.FormatterOptions) map[string]any {
	properties := map[string]any{
		"confidence":      roundFloat(match.Confidence),
		"confidenceLevel": shared.GetConfidenceLevel(match.Confidence),
		"category":        match.Category.String(),
	}
	if match.Validator != "" {
		properties["validator"] = match.Validator
	}
	if metadata := shared.ConvertMatch(match, options).Metadata; len(metadata) > 0 {
		properties["metadata"] = metadata
	}
	return properties
}

func (m *ResultMapper) buildMessage(match detector.Match, options formatters.FormatterOptions) SARIFMessage {
	var message strings.Builder

	message.WriteString(GetRuleDescription(match.Category).Short)
	name := "stdin"
	if match.Filename != "" {
		name = filepath.Base(match.Filename)
	}
	fmt.Fprintf(&message, " in %s at line %d", name, match.LineNumber)
	fmt.Fprintf(&message, " (confidence: %.1f%% - %s)", match.Confidence, shared.GetConfidenceLevel(match.Confidence))

	if options.ShowMatch && match.Text != "" {
		fmt.Fprintf(&message, ". Matched text: '%s'", match.Text)
	}
	if options.Verbose && match.Validator != "" {
		fmt.Fprintf(&message, ". Detected by: %s", match.Validator)
	}

	return SARIFMessage{Text: message.String()}
}
