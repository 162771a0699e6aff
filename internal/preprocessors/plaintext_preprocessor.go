// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"phone-scan/internal/observability"
)

// sniffLength is how much of a file is checked for NUL bytes
const sniffLength = 8000

// PlainTextPreprocessor handles plain text files by passing their content through
type PlainTextPreprocessor struct {
	observer    *observability.StandardObserver
	maxFileSize int64
}

// NewPlainTextPreprocessor creates a new plain text preprocessor that
// rejects files larger than maxFileSize bytes. Zero disables the limit.
func NewPlainTextPreprocessor(maxFileSize int64) *PlainTextPreprocessor {
	return &PlainTextPreprocessor{maxFileSize: maxFileSize}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{
		// Plain text files
		".txt", ".text", ".log", ".md", ".markdown", ".rst",
		// Configuration files
		".yaml", ".yml", ".json", ".xml", ".toml", ".ini", ".conf", ".cfg", ".env",
		// Web and source files
		".html", ".htm", ".js", ".ts", ".py", ".go", ".java", ".rb", ".php", ".sql", ".sh",
		// Data files
		".csv", ".tsv", ".jsonl", ".ndjson", ".vcf", ".eml",
	}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	if hasExtension(filePath, ptp.GetSupportedExtensions()) {
		return true
	}

	// Known text files without extension
	if filepath.Ext(filePath) == "" {
		switch strings.ToLower(filepath.Base(filePath)) {
		case "readme", "license", "changelog", "authors", "contributors":
			return true
		}
	}
	return false
}

// Process reads the file and returns its bytes unchanged
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if ptp.observer != nil {
		finishTiming = ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)
		if ptp.observer.DebugObserver != nil {
			finishStep = ptp.observer.DebugObserver.StartStep("plaintext_preprocessor", "process_file", filePath)
		}
	}

	content, err := ptp.readTextFile(filePath)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		if finishStep != nil {
			finishStep(false, fmt.Sprintf("Failed to read text file: %v", err))
		}
		return nil, err
	}

	lineCount := bytes.Count(content, []byte("\n")) + 1

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"char_count": len(content),
			"line_count": lineCount,
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Read %d bytes, %d lines", len(content), lineCount))
	}

	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          content,
		Format:        "Plain Text",
		LineCount:     lineCount,
		ProcessorType: "plaintext",
	}, nil
}

// readTextFile reads the file, enforcing the size limit and rejecting binary content
func (ptp *PlainTextPreprocessor) readTextFile(filePath string) ([]byte, error) {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, newProcessingError(filePath, StageOpen, err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, newProcessingError(filePath, StageOpen, err)
	}
	if ptp.maxFileSize > 0 && fileInfo.Size() > ptp.maxFileSize {
		return nil, newProcessingError(filePath, StageRead,
			fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, fileInfo.Size(), ptp.maxFileSize))
	}

	content, err := ReadText(file, ptp.maxFileSize)
	if err != nil {
		return nil, newProcessingError(filePath, StageRead, err)
	}
	return content, nil
}

// ReadText reads r to the end, failing with ErrFileTooLarge past maxSize
// bytes and with ErrBinaryContent when the leading bytes contain a NUL.
// Zero maxSize disables the size check.
func ReadText(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize > 0 {
		r = io.LimitReader(r, maxSize+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && int64(len(content)) > maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, maxSize)
	}
	if IsBinary(content) {
		return nil, ErrBinaryContent
	}
	return content, nil
}

// IsBinary reports whether the leading bytes of content contain a NUL byte
func IsBinary(content []byte) bool {
	return bytes.IndexByte(content[:min(len(content), sniffLength)], 0) >= 0
}
