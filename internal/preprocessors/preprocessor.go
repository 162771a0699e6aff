// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"path/filepath"
	"strings"

	"phone-scan/internal/observability"
)

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text []byte

	// Content metadata
	Format    string
	PageCount int
	LineCount int

	// Processing information
	ProcessorType string
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// Router picks the preprocessor for each file. Preprocessors are tried in
// registration order; files no registered preprocessor claims go to the
// fallback, which is plain text unless changed.
type Router struct {
	preprocessors []Preprocessor
	fallback      Preprocessor
}

// NewRouter creates a router with the plain text, PDF and XLSX
// preprocessors, each limited to maxFileSize bytes
func NewRouter(maxFileSize int64) *Router {
	plain := NewPlainTextPreprocessor(maxFileSize)
	r := &Router{fallback: plain}
	r.RegisterPreprocessor(NewPDFPreprocessor(maxFileSize))
	r.RegisterPreprocessor(NewXLSXPreprocessor(maxFileSize))
	r.RegisterPreprocessor(plain)
	return r
}

// RegisterPreprocessor adds a preprocessor to the router
func (r *Router) RegisterPreprocessor(p Preprocessor) {
	r.preprocessors = append(r.preprocessors, p)
}

// SetFallback replaces the preprocessor used for unclaimed files. A nil
// fallback makes unclaimed files fail with ErrUnsupportedFormat.
func (r *Router) SetFallback(p Preprocessor) {
	r.fallback = p
}

// SetObserver sets the observability component on every preprocessor
func (r *Router) SetObserver(observer *observability.StandardObserver) {
	for _, p := range r.preprocessors {
		p.SetObserver(observer)
	}
	if r.fallback != nil {
		r.fallback.SetObserver(observer)
	}
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (r *Router) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range r.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return r.fallback
}

// ProcessFile extracts the text of a file with the preprocessor chosen for it
func (r *Router) ProcessFile(filePath string) (*ProcessedContent, error) {
	p := r.GetPreprocessor(filePath)
	if p == nil {
		return nil, newProcessingError(filePath, StageOpen, ErrUnsupportedFormat)
	}
	return p.Process(filePath)
}

// GetAvailablePreprocessors returns all registered preprocessors
func (r *Router) GetAvailablePreprocessors() []Preprocessor {
	return r.preprocessors
}

func hasExtension(filePath string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range extensions {
		if ext == supported {
			return true
		}
	}
	return false
}
