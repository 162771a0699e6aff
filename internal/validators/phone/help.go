// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"phone-scan/internal/help"
	"phone-scan/internal/phone"
)

// GetCheckInfo returns standardized information about the phone check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "PHONE",
		ShortDescription: "Detects phone numbers and classifies their format",
		DetailedDescription: `The phone check scans raw bytes in three passes: '+' prefixed international numbers, separated domestic and toll-free numbers, and unseparated 10 or 11 digit runs.

Overlapping candidates are resolved by offset, with earlier passes winning ties, so "+1 234-567-8900" is reported once as an international number.

Confidence starts from the category and is raised by nearby words such as "call" or "mobile" and lowered by words such as "order" or "invoice".`,

		Categories: []help.CategoryInfo{
			{Name: phone.FormattedDomestic.String(), Description: "10 digits with separators", Example: "(234) 567-8900, 234-567-8900, 234.567.8900"},
			{Name: phone.FormattedTollFree.String(), Description: "11 digits with separators and trunk digit 1", Example: "1-800-555-1234"},
			{Name: phone.InternationalPlus.String(), Description: "'+' followed by 7-15 digits", Example: "+44 (20) 7946 0958"},
			{Name: phone.Plain10Digit.String(), Description: "10 digits, area code starting 2-5", Example: "2345678901"},
			{Name: phone.Plain11Digit.String(), Description: "11 digits starting with 1", Example: "12345678901"},
			{Name: phone.Mobile10Digit.String(), Description: "10 digit mobile, or space separated 10 digits", Example: "9876543210, 98765 43210"},
			{Name: phone.International00.String(), Description: "reserved, never reported", Example: ""},
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "International", Description: "Starts with '+'", Weight: baseConfidence[phone.InternationalPlus]},
			{Name: "Formatted", Description: "Domestic or toll-free with separators", Weight: baseConfidence[phone.FormattedDomestic]},
			{Name: "Plain", Description: "Unseparated digit run", Weight: baseConfidence[phone.Plain10Digit]},
			{Name: "Context", Description: "Phone words nearby +10, identifier words nearby -25", Weight: 0},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,

		Examples: []string{
			"phone-scan contacts.csv",
			"phone-scan --categories INTERNATIONAL_PLUS,MOBILE_10_DIGIT --format json notes.txt",
			"cat log.txt | phone-scan --confidence high",
		},
	}
}
