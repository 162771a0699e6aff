// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"bytes"
	"sort"
)

// LineIndex maps byte offsets in a buffer to line and column positions
type LineIndex struct {
	content    []byte
	lineStarts []int
}

// NewLineIndex records where every line of content begins
func NewLineIndex(content []byte) *LineIndex {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{content: content, lineStarts: starts}
}

// Position returns the 1-based line and column of offset
func (li *LineIndex) Position(offset int) (line, column int) {
	// Index of the last line start that is <= offset
	idx := sort.SearchInts(li.lineStarts, offset+1) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, offset - li.lineStarts[idx] + 1
}

// Line returns the text of a 1-based line without its terminator
func (li *LineIndex) Line(line int) string {
	if line < 1 || line > len(li.lineStarts) {
		return ""
	}
	start := li.lineStarts[line-1]
	end := len(li.content)
	if line < len(li.lineStarts) {
		end = li.lineStarts[line] - 1
	}
	return string(bytes.TrimRight(li.content[start:end], "\r"))
}

// ContextExtractor cuts the text surrounding a match out of its line
type ContextExtractor struct {
	// Number of bytes before and after the match to keep
	ContextChars int
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextChars: 50,
	}
}

// WithContextChars sets the number of context bytes
func (ce *ContextExtractor) WithContextChars(chars int) *ContextExtractor {
	ce.ContextChars = chars
	return ce
}

// ExtractContext returns the context of a match of length matchLen at offset
func (ce *ContextExtractor) ExtractContext(li *LineIndex, offset, matchLen int) ContextInfo {
	line, column := li.Position(offset)
	fullLine := li.Line(line)

	matchStart := column - 1
	matchEnd := min(len(fullLine), matchStart+matchLen)
	if matchStart > len(fullLine) {
		return ContextInfo{FullLine: fullLine}
	}

	return ContextInfo{
		FullLine:   fullLine,
		BeforeText: fullLine[max(0, matchStart-ce.ContextChars):matchStart],
		AfterText:  fullLine[matchEnd:min(len(fullLine), matchEnd+ce.ContextChars)],
	}
}
