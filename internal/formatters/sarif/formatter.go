// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sarif

import (
	"encoding/json"
	"fmt"

	"phone-scan/internal/detector"
	"phone-scan/internal/formatters"
	"phone-scan/internal/formatters/shared"
	"phone-scan/internal/version"
)

// Formatter implements the formatters.Formatter interface for SARIF output
type Formatter struct{}

// NewFormatter creates a new SARIF formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Name returns the name of the formatter
func (f *Formatter) Name() string {
	return "sarif"
}

// Description returns a brief description of the formatter
func (f *Formatter) Description() string {
	return "SARIF 2.1.0 format for code scanning platforms and IDEs"
}

// FileExtension returns the recommended file extension for SARIF files
func (f *Formatter) FileExtension() string {
	return ".sarif"
}

func (f *Formatter) MIMEType() string {
	return "application/sarif+json"
}

// Format converts matches and suppressed matches to SARIF 2.1.0 format
func (f *Formatter) Format(matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options formatters.FormatterOptions) (string, error) {
	report := f.buildReport(shared.FilterMatchesByConfidence(matches, options), suppressedMatches, options)

	jsonBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SARIF report: %w", err)
	}
	return string(jsonBytes), nil
}

// buildReport constructs the complete SARIF report. Rules are collected per
// report so that only categories present in the results are listed.
func (f *Formatter) buildReport(matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options formatters.FormatterOptions) *SARIFReport {
	ruleManager := NewRuleManager()
	mapper := NewResultMapper(ruleManager)

	results := make([]SARIFResult, 0, len(matches)+len(suppressedMatches))
	for _, match := range matches {
		results = append(results, mapper.MapToSARIFResult(match, options))
	}
	for _, suppressed := range suppressedMatches {
		results = append(results, mapper.MapSuppressedMatch(suppressed, options))
	}

	return &SARIFReport{
		Schema:  SARIFSchemaURL,
		Version: SARIFVersion,
		Runs: []SARIFRun{{
			Tool: SARIFTool{
				Driver: SARIFDriver{
					Name:            ToolName,
					Version:         version.Short(),
					SemanticVersion: version.Short(),
					Rules:           ruleManager.GetAllRules(),
				},
			},
			Results: results,
		}},
	}
}

// init registers the SARIF formatter with the global formatter registry
func init() {
	formatters.Register(NewFormatter())
}
