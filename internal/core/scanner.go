// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"
	"io"

	"phone-scan/internal/detector"
	"phone-scan/internal/observability"
	"phone-scan/internal/parallel"
	"phone-scan/internal/phone"
	"phone-scan/internal/preprocessors"
	"phone-scan/internal/suppressions"
)

// ScanConfig holds the settings shared by CLI and web scans
type ScanConfig struct {
	Paths           []string
	Recursive       bool
	ExcludePatterns []string
	Categories      map[phone.Category]bool // nil scans every category
	Workers         int
	MaxFileSize     int64

	SuppressionManager *suppressions.SuppressionManager
	Observer           *observability.StandardObserver
	Progress           parallel.ProgressCallback
}

// ScanResult contains the outcome of a scan
type ScanResult struct {
	Matches           []detector.Match
	SuppressedMatches []detector.SuppressedMatch
	SkippedFiles      []SkippedFile
	Stats             *parallel.ProcessingStats
}

// ScanFiles collects the configured paths and scans them in parallel. Files
// that cannot be read are recorded in Stats.Failures rather than failing the
// scan.
func ScanFiles(ctx context.Context, scanConfig ScanConfig) (*ScanResult, error) {
	// Extract ignores anything above phone.MaxInputSize, so larger files
	// must be skipped here rather than reported as clean.
	maxFileSize := scanConfig.MaxFileSize
	if maxFileSize <= 0 || maxFileSize > phone.MaxInputSize {
		maxFileSize = phone.MaxInputSize
	}

	fileSet, err := CollectFiles(scanConfig.Paths, scanConfig.Recursive, scanConfig.ExcludePatterns, maxFileSize)
	if err != nil {
		return nil, err
	}

	router := preprocessors.NewRouter(maxFileSize)
	if scanConfig.Observer != nil {
		router.SetObserver(scanConfig.Observer)
	}
	validator := NewValidator(scanConfig.Categories, scanConfig.Observer)

	processor := parallel.NewParallelProcessor(scanConfig.Workers, scanConfig.Observer)
	matches, stats, err := processor.ProcessFiles(ctx, fileSet.Files, validator, router, scanConfig.Progress)
	if err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	result := &ScanResult{
		SkippedFiles: fileSet.Skipped,
		Stats:        stats,
	}
	result.Matches, result.SuppressedMatches = applySuppressions(scanConfig.SuppressionManager, matches)
	return result, nil
}

// ScanText scans an in-memory buffer. name is reported as the filename of
// every match and may be empty. Buffers larger than phone.MaxInputSize are
// rejected with preprocessors.ErrFileTooLarge.
func ScanText(text []byte, name string, scanConfig ScanConfig) (*ScanResult, error) {
	if len(text) > phone.MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", preprocessors.ErrFileTooLarge, len(text), phone.MaxInputSize)
	}

	validator := NewValidator(scanConfig.Categories, scanConfig.Observer)
	matches, err := validator.ValidateContent(text, name)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{}
	result.Matches, result.SuppressedMatches = applySuppressions(scanConfig.SuppressionManager, matches)
	return result, nil
}

// ScanReader reads r up to phone.MaxInputSize bytes and scans it as text
func ScanReader(r io.Reader, name string, scanConfig ScanConfig) (*ScanResult, error) {
	text, err := preprocessors.ReadText(r, phone.MaxInputSize)
	if err != nil {
		return nil, err
	}
	return ScanText(text, name, scanConfig)
}

func applySuppressions(manager *suppressions.SuppressionManager, matches []detector.Match) ([]detector.Match, []detector.SuppressedMatch) {
	if manager == nil {
		return matches, nil
	}
	return manager.Filter(matches)
}
