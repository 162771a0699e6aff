// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"time"

	"phone-scan/internal/phone"
)

// ContextInfo stores contextual information about a match
type ContextInfo struct {
	// Text before and after the match on the same line
	BeforeText string
	AfterText  string

	// Line containing the match
	FullLine string
}

// Validator finds matches in already extracted content
type Validator interface {
	// Name returns the validator identifier reported on every match
	Name() string

	// ValidateContent scans content that was read from originalPath
	ValidateContent(content []byte, originalPath string) ([]Match, error)
}

// Match represents a phone number found in a file or text buffer
type Match struct {
	Text       string
	Digits     string
	Category   phone.Category
	Offset     int // Byte offset into the scanned content
	LineNumber int // 1-based
	Column     int // 1-based byte column
	Confidence float64
	Metadata   map[string]any
	Filename   string // Path to the file where the match was found
	Validator  string // Name of the validator that created this match

	Context ContextInfo
}

// SuppressedMatch represents a finding that was suppressed by a rule
type SuppressedMatch struct {
	Match        Match      `json:"finding"`
	SuppressedBy string     `json:"suppressed_by"`
	RuleReason   string     `json:"rule_reason"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Expired      bool       `json:"expired"`
}
