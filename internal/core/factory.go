// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"strings"

	"phone-scan/internal/observability"
	"phone-scan/internal/phone"
	phonevalidator "phone-scan/internal/validators/phone"
)

// NewValidator builds the phone validator for a scan. A nil categories map
// reports every category.
func NewValidator(categories map[phone.Category]bool, observer *observability.StandardObserver) *phonevalidator.Validator {
	validator := phonevalidator.NewValidator()
	validator.SetCategories(categories)
	if observer != nil {
		validator.SetObserver(observer)
	}
	return validator
}

// ParseCategories converts category tags into a filter map. An empty list
// or the single value "all" returns nil, which enables every category.
func ParseCategories(categories []string) (map[phone.Category]bool, error) {
	var tags []string
	for _, c := range categories {
		for _, tag := range strings.Split(c, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	if len(tags) == 0 || (len(tags) == 1 && strings.EqualFold(tags[0], "all")) {
		return nil, nil
	}

	result := make(map[phone.Category]bool, len(tags))
	for _, tag := range tags {
		category, err := phone.ParseCategory(tag)
		if err != nil || category == phone.Unknown {
			return nil, fmt.Errorf("unknown category %q (valid: %s)", tag, strings.Join(categoryNames(), ", "))
		}
		result[category] = true
	}
	return result, nil
}

// ParseConfidenceLevels converts a comma-separated list of confidence levels
// into a map of enabled levels
func ParseConfidenceLevels(levels string) map[string]bool {
	result := map[string]bool{
		"high":   false,
		"medium": false,
		"low":    false,
	}

	if levels == "all" || levels == "" {
		result["high"] = true
		result["medium"] = true
		result["low"] = true
		return result
	}

	for _, level := range strings.Split(levels, ",") {
		switch l := strings.ToLower(strings.TrimSpace(level)); l {
		case "high", "medium", "low":
			result[l] = true
		case "all":
			result["high"] = true
			result["medium"] = true
			result["low"] = true
		}
	}

	return result
}

func categoryNames() []string {
	names := make([]string, 0, len(phone.Categories()))
	for _, c := range phone.Categories() {
		names = append(names, c.String())
	}
	return names
}
