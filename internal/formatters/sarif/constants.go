// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sarif

import "phone-scan/internal/phone"

const (
	// SARIFSchemaURL is the URL to the SARIF 2.1.0 JSON schema
	SARIFSchemaURL = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/refs/heads/main/sarif-2.1/schema/sarif-schema-2.1.0.json"

	// SARIFVersion is the SARIF specification version
	SARIFVersion = "2.1.0"

	// ToolName is the driver name reported in every run
	ToolName = "Phone Scan"
)

// Result levels
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelNote    = "note"
	LevelNone    = "none"
)

// SuppressionKindExternal marks results silenced by the suppression file
const SuppressionKindExternal = "external"

// RuleDescription contains the description information for a detection rule
type RuleDescription struct {
	Short string
	Full  string
	Help  string
}

const phoneHelp = "Phone numbers are personal data under GDPR, CCPA and similar regulations. " +
	"Remove the number or move it to a protected configuration store. " +
	"Numbers that are meant to be public, such as a support line, can be added to the suppression file."

// RuleDescriptions maps categories to their rule descriptions
var RuleDescriptions = map[phone.Category]RuleDescription{
	phone.FormattedDomestic: {
		Short: "Formatted Domestic Phone Number",
		Full:  "A 10 digit phone number written with separators or a parenthesised area code was detected.",
		Help:  phoneHelp,
	},
	phone.FormattedTollFree: {
		Short: "Toll-Free Phone Number",
		Full:  "An 11 digit phone number with trunk prefix 1 and separators was detected.",
		Help:  phoneHelp,
	},
	phone.InternationalPlus: {
		Short: "International Phone Number",
		Full:  "A phone number in international form, '+' followed by 7 to 15 digits, was detected.",
		Help:  phoneHelp,
	},
	phone.Plain10Digit: {
		Short: "Unformatted 10 Digit Phone Number",
		Full:  "A run of exactly 10 digits with an area code starting 2 to 5 was detected.",
		Help:  phoneHelp + " Unformatted digit runs can also be identifiers; check the surrounding text.",
	},
	phone.Plain11Digit: {
		Short: "Unformatted 11 Digit Phone Number",
		Full:  "A run of exactly 11 digits starting with trunk prefix 1 was detected.",
		Help:  phoneHelp + " Unformatted digit runs can also be identifiers; check the surrounding text.",
	},
	phone.Mobile10Digit: {
		Short: "Mobile Phone Number",
		Full:  "A 10 digit mobile number, unformatted or split into two groups of five, was detected.",
		Help:  phoneHelp,
	},
}

// GetRuleDescription returns the rule description for a category, falling
// back to a generic description
func GetRuleDescription(category phone.Category) RuleDescription {
	if desc, exists := RuleDescriptions[category]; exists {
		return desc
	}
	return RuleDescription{
		Short: "Phone Number Detected",
		Full:  "A phone number of category " + category.String() + " was detected.",
		Help:  phoneHelp,
	}
}
