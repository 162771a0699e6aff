// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package junit

import (
	"encoding/xml"
	"fmt"
	"strings"

	"phone-scan/internal/detector"
	"phone-scan/internal/formatters"
	"phone-scan/internal/formatters/shared"
)

// TestSuites is the JUnit document root
type TestSuites struct {
	XMLName    xml.Name    `xml:"testsuites"`
	Name       string      `xml:"name,attr"`
	Tests      int         `xml:"tests,attr"`
	Failures   int         `xml:"failures,attr"`
	Errors     int         `xml:"errors,attr"`
	Time       string      `xml:"time,attr"`
	TestSuites []TestSuite `xml:"testsuite"`
}

// TestSuite groups test cases
type TestSuite struct {
	XMLName   xml.Name   `xml:"testsuite"`
	Name      string     `xml:"name,attr"`
	Tests     int        `xml:"tests,attr"`
	Failures  int        `xml:"failures,attr"`
	Errors    int        `xml:"errors,attr"`
	Time      string     `xml:"time,attr"`
	TestCases []TestCase `xml:"testcase"`
}

// TestCase is one scanned file
type TestCase struct {
	XMLName   xml.Name `xml:"testcase"`
	Name      string   `xml:"name,attr"`
	ClassName string   `xml:"classname,attr"`
	Time      string   `xml:"time,attr"`
	Failure   *Failure `xml:"failure,omitempty"`
	Skipped   *Skipped `xml:"skipped,omitempty"`
}

// Failure lists the numbers found in a file
type Failure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Skipped marks a file whose findings were all suppressed
type Skipped struct {
	Message string `xml:"message,attr"`
}

// Formatter implements JUnit XML output formatting. Every file with
// findings becomes a failing test case.
type Formatter struct{}

// NewFormatter creates a new JUnit formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "junit"
}

func (f *Formatter) Description() string {
	return "JUnit XML format for CI/CD integration and test reporting"
}

func (f *Formatter) FileExtension() string {
	return ".xml"
}

func (f *Formatter) MIMEType() string {
	return "application/xml"
}

func (f *Formatter) Format(matches []detector.Match, suppressedMatches []detector.SuppressedMatch, options formatters.FormatterOptions) (string, error) {
	filteredMatches := shared.FilterMatchesByConfidence(matches, options)

	testSuites := TestSuites{
		Name: "phone-scan",
		Time: "0.000",
	}

	scanSuite := TestSuite{
		Name:      "phone-scan",
		Time:      "0.000",
		TestCases: []TestCase{},
	}
	files, groups := groupByFile(filteredMatches)
	for _, filename := range files {
		failure := f.createFailure(groups[filename], options)
		scanSuite.TestCases = append(scanSuite.TestCases, TestCase{
			Name:      displayName(filename),
			ClassName: "phone-scan",
			Time:      "0.000",
			Failure:   &failure,
		})
		scanSuite.Tests++
		scanSuite.Failures++
	}

	if len(suppressedMatches) > 0 {
		suppressedSuite := TestSuite{
			Name: "suppressed-findings",
			Time: "0.000",
		}

		suppressed := make([]detector.Match, 0, len(suppressedMatches))
		for _, s := range suppressedMatches {
			suppressed = append(suppressed, s.Match)
		}
		files, groups := groupByFile(suppressed)
		for _, filename := range files {
			suppressedSuite.TestCases = append(suppressedSuite.TestCases, TestCase{
				Name:      displayName(filename) + " (suppressed)",
				ClassName: "suppressed-findings",
				Time:      "0.000",
				Skipped:   &Skipped{Message: fmt.Sprintf("%d suppressed phone numbers", len(groups[filename]))},
			})
			suppressedSuite.Tests++
		}
		testSuites.TestSuites = append(testSuites.TestSuites, suppressedSuite)
		testSuites.Tests += suppressedSuite.Tests
	}

	testSuites.TestSuites = append(testSuites.TestSuites, scanSuite)
	testSuites.Tests += scanSuite.Tests
	testSuites.Failures += scanSuite.Failures

	xmlData, err := xml.MarshalIndent(testSuites, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JUnit XML: %w", err)
	}
	return xml.Header + string(xmlData), nil
}

// groupByFile groups matches by filename, keeping first-seen file order
func groupByFile(matches []detector.Match) ([]string, map[string][]detector.Match) {
	var order []string
	groups := make(map[string][]detector.Match)
	for _, match := range matches {
		if _, seen := groups[match.Filename]; !seen {
			order = append(order, match.Filename)
		}
		groups[match.Filename] = append(groups[match.Filename], match)
	}
	return order, groups
}

func displayName(filename string) string {
	if filename == "" {
		return "stdin"
	}
	return filename
}

func (f *Formatter) createFailure(matches []detector.Match, options formatters.FormatterOptions) Failure {
	var message string
	failureType := "PHONE_NUMBERS"
	if len(matches) == 1 {
		failureType = matches[0].Category.String()
		message = fmt.Sprintf("%s found", failureType)
		if options.ShowMatch {
			message += ": " + matches[0].Text
		}
	} else {
		message = fmt.Sprintf("%d phone numbers detected", len(matches))
	}

	var content strings.Builder
	for i, match := range matches {
		if i > 0 {
			content.WriteString("\n")
		}
		fmt.Fprintf(&content, "Line %d, column %d: %s detected with %.1f%% confidence (%s)",
			match.LineNumber, match.Column, match.Category, match.Confidence, shared.GetConfidenceLevel(match.Confidence))
		if options.ShowMatch {
			fmt.Fprintf(&content, "\nMatch: %s", match.Text)
		}
		if options.Verbose && match.Context.FullLine != "" {
			fmt.Fprintf(&content, "\nContext: %s", shared.RedactLine(match.Context.FullLine, match, options))
		}
	}

	return Failure{
		Message: message,
		Type:    failureType,
		Content: content.String(),
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
