// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package suppressions

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"phone-scan/internal/detector"
	"phone-scan/internal/paths"

	"gopkg.in/yaml.v3"
)

// DefaultSuppressionFile is used when no path is configured
const DefaultSuppressionFile = ".phone-scan-suppressions.yaml"

// SuppressionRule represents a single suppression rule
type SuppressionRule struct {
	ID         string            `json:"id" yaml:"id"`
	Hash       string            `json:"hash" yaml:"hash"`
	Reason     string            `json:"reason" yaml:"reason"`
	Enabled    bool              `json:"enabled" yaml:"enabled"`
	CreatedBy  string            `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedAt  time.Time         `json:"created_at" yaml:"created_at"`
	LastSeenAt *time.Time        `json:"last_seen_at,omitempty" yaml:"last_seen_at,omitempty"`
	ExpiresAt  *time.Time        `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// SuppressionConfig represents the suppression configuration file
type SuppressionConfig struct {
	Version string            `yaml:"version"`
	Rules   []SuppressionRule `yaml:"rules"`
}

// SuppressionManager silences known numbers, such as a company switchboard,
// wherever they appear. Rules match on the hash of a number's digits, so
// "(234) 567-8900" and "234.567.8900" share one rule.
type SuppressionManager struct {
	configPath string
	config     *SuppressionConfig
	enabled    bool
	loadErr    error
}

// NewSuppressionManager creates a new suppression manager. An empty path
// uses DefaultSuppressionFile when it exists in the working directory, then
// the per-user suppressions file.
func NewSuppressionManager(configPath string) *SuppressionManager {
	if configPath == "" {
		if _, err := os.Stat(DefaultSuppressionFile); err == nil {
			configPath = DefaultSuppressionFile
		} else if userFile := paths.GetSuppressionsFile(); userFile != "" {
			if _, err := os.Stat(userFile); err == nil {
				configPath = userFile
			}
		}
	}

	manager := &SuppressionManager{
		configPath: configPath,
		enabled:    true,
	}

	manager.loadConfig()
	return manager
}

func emptyConfig() *SuppressionConfig {
	return &SuppressionConfig{
		Version: "1.0",
		Rules:   []SuppressionRule{},
	}
}

// loadConfig loads the suppression configuration. A missing file is an
// empty rule set; a malformed one is remembered and reported by LoadError.
func (sm *SuppressionManager) loadConfig() {
	sm.config = emptyConfig()
	if sm.configPath == "" {
		return
	}

	data, err := os.ReadFile(filepath.Clean(sm.configPath))
	if err != nil {
		if !os.IsNotExist(err) {
			sm.loadErr = fmt.Errorf("failed to read suppression file: %w", err)
		}
		return
	}

	var config SuppressionConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		sm.loadErr = fmt.Errorf("failed to parse suppression file %s: %w", sm.configPath, err)
		return
	}
	if config.Rules == nil {
		config.Rules = []SuppressionRule{}
	}

	sm.config = &config
}

// LoadError returns the error hit while reading the suppression file, if any
func (sm *SuppressionManager) LoadError() error {
	return sm.loadErr
}

// GenerateHash returns the hex SHA-256 of a number's digits
func GenerateHash(digits string) string {
	hash := sha256.Sum256([]byte(digits))
	return hex.EncodeToString(hash[:])
}

// findRule returns the enabled rule for hash, preferring one that has not
// expired
func (sm *SuppressionManager) findRule(hash string) (rule *SuppressionRule, expired bool) {
	if !sm.enabled || sm.config == nil {
		return nil, false
	}

	now := time.Now()
	for i := range sm.config.Rules {
		r := &sm.config.Rules[i]
		if r.Hash != hash || !r.Enabled {
			continue
		}
		if r.ExpiresAt != nil && now.After(*r.ExpiresAt) {
			rule, expired = r, true
			continue
		}
		return r, false
	}
	return rule, expired
}

// IsSuppressed checks if a finding should be suppressed
func (sm *SuppressionManager) IsSuppressed(match detector.Match) (bool, *SuppressionRule) {
	rule, expired := sm.findRule(GenerateHash(match.Digits))
	if rule == nil || expired {
		return false, nil
	}
	found := *rule
	return true, &found
}

// GetExpiredRule returns the enabled but expired rule for a finding, if any
func (sm *SuppressionManager) GetExpiredRule(match detector.Match) *SuppressionRule {
	rule, expired := sm.findRule(GenerateHash(match.Digits))
	if !expired {
		return nil
	}
	found := *rule
	return &found
}

// Filter splits matches into those to report and those silenced by a rule.
// Matches whose rule has expired are reported and also listed as expired
// suppressions.
func (sm *SuppressionManager) Filter(matches []detector.Match) ([]detector.Match, []detector.SuppressedMatch) {
	if !sm.enabled || len(sm.config.Rules) == 0 {
		return matches, nil
	}

	kept := make([]detector.Match, 0, len(matches))
	var suppressed []detector.SuppressedMatch
	for _, match := range matches {
		if ok, rule := sm.IsSuppressed(match); ok {
			suppressed = append(suppressed, detector.SuppressedMatch{
				Match:        match,
				SuppressedBy: rule.ID,
				RuleReason:   rule.Reason,
				ExpiresAt:    rule.ExpiresAt,
			})
			continue
		}
		if rule := sm.GetExpiredRule(match); rule != nil {
			suppressed = append(suppressed, detector.SuppressedMatch{
				Match:        match,
				SuppressedBy: rule.ID,
				RuleReason:   rule.Reason,
				ExpiresAt:    rule.ExpiresAt,
				Expired:      true,
			})
		}
		kept = append(kept, match)
	}
	return kept, suppressed
}

func (sm *SuppressionManager) nextID(offset int) string {
	maxID := 0
	for _, existingRule := range sm.config.Rules {
		var num int
		if _, err := fmt.Sscanf(existingRule.ID, "SUP-%08d", &num); err == nil && num > maxID {
			maxID = num
		}
	}
	return fmt.Sprintf("SUP-%08d", maxID+offset+1)
}

func ruleMetadata(match detector.Match) map[string]string {
	return map[string]string{
		"category":    match.Category.String(),
		"digit_count": fmt.Sprintf("%d", len(match.Digits)),
		"filename":    filepath.Base(match.Filename),
		"line_number": fmt.Sprintf("%d", match.LineNumber),
	}
}

// AddSuppression adds a new suppression rule for the number in match. Rules
// without an expiry never expire.
func (sm *SuppressionManager) AddSuppression(match detector.Match, reason, createdBy string, expiresAt *time.Time) error {
	hash := GenerateHash(match.Digits)
	for _, rule := range sm.config.Rules {
		if rule.Hash == hash {
			return fmt.Errorf("suppression rule %s already exists for this number", rule.ID)
		}
	}

	sm.config.Rules = append(sm.config.Rules, SuppressionRule{
		ID:        sm.nextID(0),
		Hash:      hash,
		Reason:    reason,
		Enabled:   true,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		Metadata:  ruleMetadata(match),
	})
	return sm.saveConfig()
}

// GenerateSuppressionRules creates a rule for every distinct number in
// matches and refreshes last_seen_at on rules that already exist
func (sm *SuppressionManager) GenerateSuppressionRules(matches []detector.Match, reason string, enabled bool) error {
	existing := make(map[string]int, len(sm.config.Rules))
	for i := range sm.config.Rules {
		existing[sm.config.Rules[i].Hash] = i
	}

	now := time.Now()
	added, updated := 0, 0
	var newRules []SuppressionRule
	for _, match := range matches {
		hash := GenerateHash(match.Digits)
		if i, ok := existing[hash]; ok {
			if i >= 0 {
				sm.config.Rules[i].LastSeenAt = &now
			}
			updated++
			continue
		}

		newRules = append(newRules, SuppressionRule{
			ID:         sm.nextID(added),
			Hash:       hash,
			Reason:     reason,
			Enabled:    enabled,
			CreatedAt:  now,
			LastSeenAt: &now,
			Metadata:   ruleMetadata(match),
		})
		// Negative index marks a rule added in this call
		existing[hash] = -1
		added++
	}
	sm.config.Rules = append(sm.config.Rules, newRules...)

	if added > 0 || updated > 0 {
		return sm.saveConfig()
	}
	return nil
}

// RemoveSuppression removes a suppression rule by ID
func (sm *SuppressionManager) RemoveSuppression(id string) error {
	for i, rule := range sm.config.Rules {
		if rule.ID == id {
			sm.config.Rules = append(sm.config.Rules[:i], sm.config.Rules[i+1:]...)
			return sm.saveConfig()
		}
	}

	return fmt.Errorf("suppression rule with ID %s not found", id)
}

// ListSuppressions returns all suppression rules
func (sm *SuppressionManager) ListSuppressions() []SuppressionRule {
	return sm.config.Rules
}

// CleanupExpired removes expired suppression rules
func (sm *SuppressionManager) CleanupExpired() (int, error) {
	now := time.Now()
	originalCount := len(sm.config.Rules)

	activeRules := make([]SuppressionRule, 0, originalCount)
	for _, rule := range sm.config.Rules {
		if rule.ExpiresAt == nil || now.Before(*rule.ExpiresAt) {
			activeRules = append(activeRules, rule)
		}
	}

	sm.config.Rules = activeRules
	removed := originalCount - len(activeRules)
	if removed > 0 {
		return removed, sm.saveConfig()
	}
	return 0, nil
}

// saveConfig saves the suppression configuration to file
func (sm *SuppressionManager) saveConfig() error {
	if sm.configPath == "" {
		sm.configPath = DefaultSuppressionFile
	}

	data, err := yaml.Marshal(sm.config)
	if err != nil {
		return fmt.Errorf("failed to marshal suppression config: %w", err)
	}

	if dir := filepath.Dir(sm.configPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write with restrictive permissions
	if err := os.WriteFile(sm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write suppression config: %w", err)
	}

	return nil
}

// SetEnabled enables or disables the suppression manager
func (sm *SuppressionManager) SetEnabled(enabled bool) {
	sm.enabled = enabled
}

// IsEnabled returns whether the suppression manager is enabled
func (sm *SuppressionManager) IsEnabled() bool {
	return sm.enabled
}

// GetConfigPath returns the path to the suppression config file
func (sm *SuppressionManager) GetConfigPath() string {
	return sm.configPath
}
