// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sarif

import (
	"sort"

	"phone-scan/internal/phone"
)

// RuleManager collects one rule per category seen while building a report
type RuleManager struct {
	rules map[string]*SARIFRule
}

// NewRuleManager creates a new RuleManager instance
func NewRuleManager() *RuleManager {
	return &RuleManager{
		rules: make(map[string]*SARIFRule),
	}
}

// GetOrCreateRule returns the rule for a category, creating it on first use
func (rm *RuleManager) GetOrCreateRule(category phone.Category) *SARIFRule {
	id := category.String()
	if rule, exists := rm.rules[id]; exists {
		return rule
	}

	desc := GetRuleDescription(category)
	rule := &SARIFRule{
		ID:               id,
		ShortDescription: SARIFMessage{Text: desc.Short},
		FullDescription:  SARIFMessage{Text: desc.Full},
		Help:             SARIFMessage{Text: desc.Help},
	}
	rm.rules[id] = rule
	return rule
}

// GetAllRules returns every rule created so far, sorted by ID
func (rm *RuleManager) GetAllRules() []SARIFRule {
	rules := make([]SARIFRule, 0, len(rm.rules))
	for _, rule := range rm.rules {
		rules = append(rules, *rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}
