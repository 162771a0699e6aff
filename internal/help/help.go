// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// CheckInfo contains standardized information about a check
type CheckInfo struct {
	Name                string             // Name of the check (e.g., "PHONE")
	ShortDescription    string             // Short description for the checks list
	DetailedDescription string             // Detailed description of what the check does
	Categories          []CategoryInfo     // Categories the check can report
	ConfidenceFactors   []ConfidenceFactor // Factors affecting confidence
	PositiveKeywords    []string           // Keywords that increase confidence
	NegativeKeywords    []string           // Keywords that decrease confidence
	Examples            []string           // Usage examples
}

// CategoryInfo describes one reported category
type CategoryInfo struct {
	Name        string
	Description string
	Example     string
}

// ConfidenceFactor represents a factor that affects confidence scoring
type ConfidenceFactor struct {
	Name        string  // Name of the factor
	Description string  // Description of the factor
	Weight      float64 // Score contributed by the factor
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System manages help content for the application
type System struct {
	out       io.Writer
	providers map[string]Provider
	colors    map[string]*color.Color
}

// NewSystem creates a new help system writing to out
func NewSystem(out io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":    color.New(color.FgWhite, color.Bold),
		"header":   color.New(color.FgBlue, color.Bold),
		"item":     color.New(color.FgCyan),
		"positive": color.New(color.FgGreen),
		"negative": color.New(color.FgRed),
		"example":  color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}

	return &System{
		out:       out,
		providers: make(map[string]Provider),
		colors:    colors,
	}
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Fprintln(h.out, "Phone Scan - Phone Number Extraction Tool")
	fmt.Fprintln(h.out, "=========================================")
	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "USAGE:")
	fmt.Fprintln(h.out, "  phone-scan [options] [file ...]   # reads stdin when no file is given")
	fmt.Fprintln(h.out, "  phone-scan --web [--port <port>]  # HTTP API mode")
	fmt.Fprintln(h.out, "  phone-scan --benchmark            # throughput benchmark")
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --file\t<path>\tFile, directory or glob to scan (repeatable, or pass as arguments)")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles")
	fmt.Fprintln(w, "  --format\t<format>\tOutput format: text, json, csv, yaml, junit, sarif (default: text)")
	fmt.Fprintln(w, "  --categories\t<list>\tCategories to report, comma separated, or all (default: all)")
	fmt.Fprintln(w, "  --confidence\t<levels>\tConfidence levels to display: high,medium,low,all (default: all)")
	fmt.Fprintln(w, "  --recursive\t\tRecursively scan directories")
	fmt.Fprintln(w, "  --exclude\t<glob>\tSkip matching files or directories (repeatable)")
	fmt.Fprintln(w, "  --workers\t<n>\tNumber of files scanned in parallel")
	fmt.Fprintln(w, "  --suppression-file\t<path>\tYAML file of suppressed numbers")
	fmt.Fprintln(w, "  --generate-suppressions\t\tWrite a disabled suppression rule for every finding")
	fmt.Fprintln(w, "  --verbose\t\tDisplay detailed information for each finding")
	fmt.Fprintln(w, "  --debug\t\tLog scan steps to stderr")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --show-match\t\tDisplay the matched number (otherwise shows [REDACTED])")
	fmt.Fprintln(w, "  --output\t<path>\tWrite results to a file instead of stdout")
	fmt.Fprintln(w, "  --quiet\t\tSuppress progress output")
	fmt.Fprintln(w, "  --web\t\tStart the HTTP API")
	fmt.Fprintln(w, "  --port\t<port>\tHTTP API port (default: 8080)")
	fmt.Fprintln(w, "  --benchmark\t\tRun the throughput benchmark")
	fmt.Fprintln(w, "  --bench-duration\t<dur>\tBenchmark duration (default: 3s)")
	fmt.Fprintln(w, "  --list-formats\t\tList output formats")
	fmt.Fprintln(w, "  --help-categories\t\tDescribe every category")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	w.Flush()
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "EXIT STATUS:")
	fmt.Fprintln(h.out, "  0 no numbers found, 1 numbers found, 2 error")
}

// ShowCheckHelp displays detailed help for a check, returning false when the
// check is unknown
func (h *System) ShowCheckHelp(checkName string) bool {
	provider, ok := h.providers[strings.ToLower(checkName)]
	if !ok {
		return false
	}
	info := provider.GetCheckInfo()

	h.colors["title"].Fprintf(h.out, "%s - %s\n\n", info.Name, info.ShortDescription)
	fmt.Fprintln(h.out, info.DetailedDescription)
	fmt.Fprintln(h.out)

	if len(info.Categories) > 0 {
		h.colors["header"].Fprintln(h.out, "CATEGORIES:")
		w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
		for _, c := range info.Categories {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", h.colors["item"].Sprint(c.Name), c.Description, c.Example)
		}
		w.Flush()
		fmt.Fprintln(h.out)
	}

	if len(info.ConfidenceFactors) > 0 {
		h.colors["header"].Fprintln(h.out, "CONFIDENCE:")
		for _, f := range info.ConfidenceFactors {
			if f.Weight > 0 {
				fmt.Fprintf(h.out, "  %s (%.0f): %s\n", f.Name, f.Weight, f.Description)
			} else {
				fmt.Fprintf(h.out, "  %s: %s\n", f.Name, f.Description)
			}
		}
		fmt.Fprintln(h.out)
	}

	if len(info.PositiveKeywords) > 0 {
		h.colors["positive"].Fprintf(h.out, "Positive keywords: %s\n", strings.Join(info.PositiveKeywords, ", "))
	}
	if len(info.NegativeKeywords) > 0 {
		h.colors["negative"].Fprintf(h.out, "Negative keywords: %s\n", strings.Join(info.NegativeKeywords, ", "))
	}

	if len(info.Examples) > 0 {
		fmt.Fprintln(h.out)
		h.colors["header"].Fprintln(h.out, "EXAMPLES:")
		for _, e := range info.Examples {
			h.colors["example"].Fprintf(h.out, "  %s\n", e)
		}
	}
	return true
}
