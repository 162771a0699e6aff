// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package suppressions

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"phone-scan/internal/detector"
	"phone-scan/internal/phone"
)

func newTestMatch(text, digits, filename string) detector.Match {
	return detector.Match{
		Text:       text,
		Digits:     digits,
		Category:   phone.FormattedDomestic,
		Filename:   filename,
		LineNumber: 1,
		Confidence: 85,
	}
}

func TestGenerateHash(t *testing.T) {
	got := GenerateHash("2345678900")
	if len(got) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(got))
	}
	if got != GenerateHash("2345678900") {
		t.Error("hash should be deterministic")
	}
	if got == GenerateHash("2345678901") {
		t.Error("different digits should hash differently")
	}
}

func TestNewSuppressionManager_NoFile(t *testing.T) {
	sm := NewSuppressionManager("/nonexistent/path.yaml")
	if sm == nil {
		t.Fatal("expected non-nil manager")
	}
	if !sm.IsEnabled() {
		t.Error("suppression manager should be enabled by default")
	}
	if sm.LoadError() != nil {
		t.Errorf("missing file should not be an error, got %v", sm.LoadError())
	}
}

func TestNewSuppressionManager_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rules: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}

	sm := NewSuppressionManager(path)
	if sm.LoadError() == nil {
		t.Error("expected load error for malformed file")
	}
	if len(sm.ListSuppressions()) != 0 {
		t.Error("malformed file should leave no rules")
	}
}

func TestAddAndIsSuppressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suppressions.yaml")

	sm := NewSuppressionManager(path)
	match := newTestMatch("(234) 567-8900", "2345678900", "test.txt")

	if err := sm.AddSuppression(match, "switchboard", "tester", nil); err != nil {
		t.Fatalf("AddSuppression failed: %v", err)
	}

	suppressed, rule := sm.IsSuppressed(match)
	if !suppressed || rule == nil {
		t.Fatal("match should be suppressed")
	}
	if rule.Reason != "switchboard" {
		t.Errorf("expected reason 'switchboard', got %q", rule.Reason)
	}
	if rule.ID != "SUP-00000001" {
		t.Errorf("unexpected rule ID %q", rule.ID)
	}

	// Same digits in a different format and file are covered by the same rule
	other := newTestMatch("234.567.8900", "2345678900", "other.txt")
	if suppressed, _ := sm.IsSuppressed(other); !suppressed {
		t.Error("rule should match on digits regardless of formatting")
	}

	if err := sm.AddSuppression(other, "again", "tester", nil); err == nil {
		t.Error("expected duplicate rule error")
	}
}

func TestIsSuppressed_NotSuppressed(t *testing.T) {
	sm := NewSuppressionManager("")
	match := newTestMatch("9876543210", "9876543210", "file.txt")

	suppressed, rule := sm.IsSuppressed(match)
	if suppressed {
		t.Error("match should not be suppressed")
	}
	if rule != nil {
		t.Error("expected nil rule for unsuppressed match")
	}
}

func TestRemoveSuppression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suppressions.yaml")

	sm := NewSuppressionManager(path)
	match := newTestMatch("1-800-555-1234", "18005551234", "doc.txt")

	if err := sm.AddSuppression(match, "helpline", "tester", nil); err != nil {
		t.Fatalf("AddSuppression failed: %v", err)
	}

	rules := sm.ListSuppressions()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	if err := sm.RemoveSuppression(rules[0].ID); err != nil {
		t.Fatalf("RemoveSuppression failed: %v", err)
	}

	if suppressed, _ := sm.IsSuppressed(match); suppressed {
		t.Error("match should no longer be suppressed after removal")
	}
	if err := sm.RemoveSuppression("SUP-99999999"); err == nil {
		t.Error("expected error removing unknown rule")
	}
}

func TestExpiredRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suppressions.yaml")

	sm := NewSuppressionManager(path)
	match := newTestMatch("555-123-4567", "5551234567", "file.txt")

	past := time.Now().Add(-time.Hour)
	if err := sm.AddSuppression(match, "expired", "tester", &past); err != nil {
		t.Fatalf("AddSuppression failed: %v", err)
	}

	if suppressed, _ := sm.IsSuppressed(match); suppressed {
		t.Error("expired suppression should not suppress match")
	}
	if rule := sm.GetExpiredRule(match); rule == nil || rule.Reason != "expired" {
		t.Error("expected expired rule to be reported")
	}

	kept, suppressed := sm.Filter([]detector.Match{match})
	if len(kept) != 1 || len(suppressed) != 1 || !suppressed[0].Expired {
		t.Errorf("expired rule should keep the match and flag it, got kept=%d suppressed=%v", len(kept), suppressed)
	}

	removed, err := sm.CleanupExpired()
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 expired rule removed, got %d", removed)
	}
}

func TestFilter(t *testing.T) {
	sm := NewSuppressionManager(filepath.Join(t.TempDir(), "suppressions.yaml"))
	switchboard := newTestMatch("(234) 567-8900", "2345678900", "a.txt")
	mobile := newTestMatch("9876543210", "9876543210", "a.txt")

	if err := sm.AddSuppression(switchboard, "switchboard", "tester", nil); err != nil {
		t.Fatal(err)
	}

	kept, suppressed := sm.Filter([]detector.Match{switchboard, mobile})
	if len(kept) != 1 || kept[0].Text != "9876543210" {
		t.Errorf("unexpected kept matches %v", kept)
	}
	if len(suppressed) != 1 || suppressed[0].SuppressedBy != "SUP-00000001" || suppressed[0].Expired {
		t.Errorf("unexpected suppressed matches %v", suppressed)
	}

	sm.SetEnabled(false)
	kept, suppressed = sm.Filter([]detector.Match{switchboard, mobile})
	if len(kept) != 2 || suppressed != nil {
		t.Error("disabled manager should not filter")
	}
}

func TestSetEnabled(t *testing.T) {
	sm := NewSuppressionManager("")
	sm.SetEnabled(false)
	if sm.IsEnabled() {
		t.Error("expected manager to be disabled")
	}
	sm.SetEnabled(true)
	if !sm.IsEnabled() {
		t.Error("expected manager to be enabled")
	}
}

func TestGenerateSuppressionRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suppressions.yaml")

	sm := NewSuppressionManager(path)
	matches := []detector.Match{
		newTestMatch("234-567-8900", "2345678900", "f.txt"),
		newTestMatch("(234) 567-8900", "2345678900", "f.txt"),
		newTestMatch("9876543210", "9876543210", "f.txt"),
	}

	if err := sm.GenerateSuppressionRules(matches, "bulk suppress", false); err != nil {
		t.Fatalf("GenerateSuppressionRules failed: %v", err)
	}

	rules := sm.ListSuppressions()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[1].ID != "SUP-00000002" {
		t.Errorf("expected sequential IDs, got %q", rules[1].ID)
	}
	// Generated rules are disabled until reviewed
	if suppressed, _ := sm.IsSuppressed(matches[0]); suppressed {
		t.Error("disabled rule should not suppress")
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "suppressions.yaml")

	sm1 := NewSuppressionManager(path)
	match := newTestMatch("+44 20 7946 0958", "442079460958", "card.txt")
	if err := sm1.AddSuppression(match, "london office", "tester", nil); err != nil {
		t.Fatalf("AddSuppression failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("suppression file should have been created")
	}

	sm2 := NewSuppressionManager(path)
	if suppressed, _ := sm2.IsSuppressed(match); !suppressed {
		t.Error("suppression should persist across manager instances")
	}
	if sm2.GetConfigPath() != path {
		t.Errorf("expected config path %q, got %q", path, sm2.GetConfigPath())
	}
}
