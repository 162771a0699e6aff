// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"phone-scan/internal/detector"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	ConfidenceLevel map[string]bool // Which confidence levels to display; nil displays all
	Verbose         bool            // Whether to display detailed information
	NoColor         bool            // Whether to disable colored output
	ShowMatch       bool            // Whether to display the actual matched text
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format formats the matches according to the formatter's specific output format
	Format(matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt", ".csv")
	FileExtension() string

	// MIMEType returns the Content-Type served for this format
	MIMEType() string
}

// resultsBasename is the download name used for web exports
const resultsBasename = "phone-scan-results"

// FormatInfo describes a registered formatter for the /formats endpoint and
// the CLI format listing
type FormatInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Extension   string `json:"extension"`
	MimeType    string `json:"mime_type"`
}

type entry struct {
	formatter Formatter
	info      FormatInfo
}

// Registry maps format names to formatters. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a formatter. It panics when the name is empty or already
// taken, since both are programming errors in an init function.
func (r *Registry) Register(formatter Formatter) {
	name := formatter.Name()
	if name == "" {
		panic("formatters: Register called with an unnamed formatter")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[name]; dup {
		panic(fmt.Sprintf("formatters: Register called twice for %q", name))
	}

	mimeType := formatter.MIMEType()
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	r.entries[name] = entry{
		formatter: formatter,
		info: FormatInfo{
			Name:        name,
			Description: formatter.Description(),
			Extension:   formatter.FileExtension(),
			MimeType:    mimeType,
		},
	}
}

// Get returns the formatter registered under name
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.formatter, ok
}

// Info returns the metadata recorded for name at registration
func (r *Registry) Info(name string) (FormatInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.info, ok
}

// List returns the registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Formats returns the metadata of every formatter, sorted by name
func (r *Registry) Formats() []FormatInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]FormatInfo, 0, len(r.entries))
	for _, e := range r.entries {
		formats = append(formats, e.info)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i].Name < formats[j].Name })
	return formats
}

// Export renders matches with the named formatter
func (r *Registry) Export(format string, matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options FormatterOptions) (string, error) {
	formatter, ok := r.Get(format)
	if !ok {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(r.List(), ", "))
	}
	return formatter.Format(matches, suppressedMatches, options)
}

// ExportForWeb renders matches and returns the Content-Type and download
// filename for the format
func (r *Registry) ExportForWeb(format string, matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options FormatterOptions) (content, mimeType, filename string, err error) {
	content, err = r.Export(format, matches, suppressedMatches, options)
	if err != nil {
		return "", "", "", err
	}
	info, _ := r.Info(format)
	return content, info.MimeType, resultsBasename + info.Extension, nil
}

// DefaultRegistry holds the built-in formatters
var DefaultRegistry = NewRegistry()

// Register adds formatter to DefaultRegistry
func Register(formatter Formatter) { DefaultRegistry.Register(formatter) }

// Get looks name up in DefaultRegistry
func Get(name string) (Formatter, bool) { return DefaultRegistry.Get(name) }

// List returns the names in DefaultRegistry
func List() []string { return DefaultRegistry.List() }

// GetSupportedFormats returns the metadata of every formatter in DefaultRegistry
func GetSupportedFormats() []FormatInfo { return DefaultRegistry.Formats() }

// Export renders matches with a formatter from DefaultRegistry
func Export(format string, matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options FormatterOptions) (string, error) {
	return DefaultRegistry.Export(format, matches, suppressedMatches, options)
}

// ExportForWeb renders matches with a formatter from DefaultRegistry for an
// HTTP response
func ExportForWeb(format string, matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options FormatterOptions) (content, mimeType, filename string, err error) {
	return DefaultRegistry.ExportForWeb(format, matches, suppressedMatches, options)
}
