// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when no preprocessor accepts a file
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned when a file exceeds the configured size limit
	ErrFileTooLarge = errors.New("file too large")

	// ErrBinaryContent is returned when a file that should be text contains NUL bytes
	ErrBinaryContent = errors.New("binary content")
)

// Stage names the step of processing that failed
type Stage string

const (
	StageOpen    Stage = "open"
	StageRead    Stage = "read"
	StageExtract Stage = "extract"
)

// ProcessingError describes a failure while turning a file into text
type ProcessingError struct {
	Path  string
	Stage Stage
	Err   error
}

// Error implements the error interface
func (pe *ProcessingError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("processing failed for %s", pe.Path))
	if pe.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", pe.Stage))
	}
	if pe.Err != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", pe.Err))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying error
func (pe *ProcessingError) Unwrap() error {
	return pe.Err
}

func newProcessingError(path string, stage Stage, err error) *ProcessingError {
	return &ProcessingError{Path: path, Stage: stage, Err: err}
}
