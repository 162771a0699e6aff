// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"phone-scan/internal/detector"
	"phone-scan/internal/formatters"
	"phone-scan/internal/formatters/shared"

	"github.com/fatih/color"
)

const (
	categoryWidth = 19
	maxMatchWidth = 30
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) MIMEType() string {
	return "text/plain"
}

func (f *Formatter) Format(matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options formatters.FormatterOptions) (string, error) {
	if len(matches) == 0 && len(suppressedMatches) == 0 {
		return "No matches found.", nil
	}

	filtered := shared.FilterMatchesByConfidence(matches, options)
	if len(filtered) == 0 && len(suppressedMatches) == 0 {
		return "No matches found at the specified confidence levels.", nil
	}

	var builder strings.Builder
	all := make([]detector.Match, 0, len(filtered)+len(suppressedMatches))
	all = append(all, filtered...)
	for _, s := range suppressedMatches {
		all = append(all, s.Match)
	}

	if !options.Verbose {
		f.appendHeaders(&builder, all, options)
	}

	for _, match := range filtered {
		if options.Verbose {
			f.appendDetailedMatch(&builder, match, options)
			continue
		}
		f.appendSummaryLine(&builder, match, all, false, options)
	}

	for _, suppressed := range suppressedMatches {
		if options.Verbose {
			f.appendDetailedSuppressedMatch(&builder, suppressed, options)
			continue
		}
		f.appendSummaryLine(&builder, suppressed.Match, all, true, options)
	}

	return builder.String(), nil
}

// paint renders text with the named color unless color is disabled
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...any) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, matches []detector.Match, options formatters.FormatterOptions) {
	matchWidth := f.calculateMatchColumnWidth(matches, options)
	builder.WriteString(f.paint("white", options, "%-8s %-*s %-8s %-11s %-*s %s\n",
		"LEVEL", categoryWidth, "CATEGORY", "CONF%", "LINE:COL", matchWidth, "MATCH", "FILE"))

	totalWidth := 8 + 1 + categoryWidth + 1 + 8 + 1 + 11 + 1 + matchWidth + 1 + 10
	builder.WriteString(f.paint("white", options, "%s\n", strings.Repeat("-", totalWidth)))
}

// calculateMatchColumnWidth calculates the width of the match column
func (f *Formatter) calculateMatchColumnWidth(matches []detector.Match, options formatters.FormatterOptions) int {
	width := len(shared.Redacted)
	if !options.ShowMatch {
		return width
	}
	for _, match := range matches {
		if n := len(matchDisplay(match)); n > width {
			width = n
		}
	}
	if width > maxMatchWidth {
		width = maxMatchWidth
	}
	return width
}

// matchDisplay flattens whitespace so a match never breaks the table
func matchDisplay(match detector.Match) string {
	return strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(match.Text)
}

func (f *Formatter) levelColor(level string) string {
	switch level {
	case "HIGH":
		return "red"
	case "MEDIUM":
		return "yellow"
	default:
		return "green"
	}
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, match detector.Match, allMatches []detector.Match, suppressed bool, options formatters.FormatterOptions) {
	var levelStr string
	if suppressed {
		levelStr = f.paint("white", options, "[%-6s]", "SUPP")
	} else {
		level := shared.GetConfidenceLevel(match.Confidence)
		levelStr = f.paint(f.levelColor(level), options, "[%-6s]", level)
	}

	categoryStr := f.paint("cyan", options, "%-*s", categoryWidth, match.Category.String())
	confidenceStr := f.paint("blue", options, "%7.2f%%", match.Confidence)
	positionStr := f.paint("magenta", options, "%-11s", fmt.Sprintf("%d:%d", match.LineNumber, match.Column))

	targetWidth := f.calculateMatchColumnWidth(allMatches, options)
	matchText := shared.Redacted
	if options.ShowMatch {
		matchText = matchDisplay(match)
		if len(matchText) > targetWidth {
			matchText = matchText[:targetWidth-3] + "..."
		}
	}
	matchText += strings.Repeat(" ", targetWidth-len(matchText))

	filenameStr := f.paint("white", options, "%s", f.getSmartFilename(match.Filename, allMatches))

	fmt.Fprintf(builder, "%s %s %s %s %s %s\n",
		levelStr,
		categoryStr,
		confidenceStr,
		positionStr,
		matchText,
		filenameStr)
}

// appendDetailedMatch adds detailed match information to the string builder
func (f *Formatter) appendDetailedMatch(builder *strings.Builder, match detector.Match, options formatters.FormatterOptions) {
	level := shared.GetConfidenceLevel(match.Confidence)
	text := shared.DisplayText(match, options)

	builder.WriteString(f.paint("white", options, "=== Match Details ===\n"))
	fmt.Fprintf(builder, "%s%s%s%s: %s\n",
		f.paint("cyan", options, "Match found in "),
		f.paint("white", options, "%s", f.displayFilename(match.Filename)),
		f.paint("cyan", options, " at "),
		f.paint("magenta", options, "line %d, column %d", match.LineNumber, match.Column),
		text)
	fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Category: "), match.Category)
	if options.ShowMatch {
		fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Digits: "), match.Digits)
	}
	fmt.Fprintf(builder, "%s%s %s\n",
		f.paint("cyan", options, "Confidence level: "),
		f.paint("white", options, "%.2f%%", match.Confidence),
		f.paint(f.levelColor(level), options, "(%s)", level))
	fmt.Fprintf(builder, "%s%d\n", f.paint("cyan", options, "Byte offset: "), match.Offset)

	if match.Context.BeforeText != "" || match.Context.AfterText != "" {
		builder.WriteString(f.paint("cyan", options, "Context snippet:\n"))
		fmt.Fprintf(builder, "... %s%s%s ...\n",
			match.Context.BeforeText,
			f.paint("yellow", options, "[%s]", text),
			match.Context.AfterText)
	}

	builder.WriteString("\n")
}

// appendDetailedSuppressedMatch adds the suppression details before the match details
func (f *Formatter) appendDetailedSuppressedMatch(builder *strings.Builder, suppressed detector.SuppressedMatch, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, "=== Suppressed Match ===\n"))
	fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Suppressed by: "), suppressed.SuppressedBy)
	fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Reason: "), suppressed.RuleReason)

	if suppressed.ExpiresAt != nil {
		name := "white"
		if suppressed.Expired {
			name = "red"
		}
		fmt.Fprintf(builder, "%s%s\n",
			f.paint("cyan", options, "Expiration: "),
			f.paint(name, options, "%s", f.formatExpirationStatus(suppressed.ExpiresAt, suppressed.Expired)))
	}

	f.appendDetailedMatch(builder, suppressed.Match, options)
}

func (f *Formatter) displayFilename(path string) string {
	if path == "" {
		return "-"
	}
	return path
}

// getSmartFilename shows the base name, adding the parent directory when two
// files share a base name
func (f *Formatter) getSmartFilename(fullPath string, allMatches []detector.Match) string {
	if fullPath == "" {
		return "-"
	}
	basename := filepath.Base(fullPath)
	if basename == fullPath {
		return fullPath
	}

	for _, match := range allMatches {
		if match.Filename != fullPath && filepath.Base(match.Filename) == basename {
			return filepath.Join(filepath.Base(filepath.Dir(fullPath)), basename)
		}
	}
	return basename
}

func (f *Formatter) formatExpirationStatus(expiresAt *time.Time, expired bool) string {
	if expiresAt == nil {
		return "never expires"
	}

	if expired {
		switch daysAgo := int(time.Since(*expiresAt).Hours() / 24); daysAgo {
		case 0:
			return "expired today"
		case 1:
			return "expired 1 day ago"
		default:
			return fmt.Sprintf("expired %d days ago", daysAgo)
		}
	}

	switch daysUntil := int(time.Until(*expiresAt).Hours() / 24); daysUntil {
	case 0:
		return "expires today"
	case 1:
		return "expires in 1 day"
	default:
		return fmt.Sprintf("expires in %d days", daysUntil)
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
