// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"phone-scan/internal/detector"
	"phone-scan/internal/phone"
	"phone-scan/internal/suppressions"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("phone-suppress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		suppressionFile = fs.String("suppression-file", "", "Path to suppression configuration file (default: "+suppressions.DefaultSuppressionFile+")")
		action          = fs.String("action", "", "Action to perform: list, add, remove, cleanup")
		id              = fs.String("id", "", "Suppression rule ID (for remove action)")
		number          = fs.String("number", "", "Phone number to suppress, in any format (for add action)")
		reason          = fs.String("reason", "", "Reason for suppression (for add action)")
		createdBy       = fs.String("created-by", os.Getenv("USER"), "Author recorded on the rule (for add action)")
		expires         = fs.Duration("expires-in", 0, "Expire the rule after this long, e.g. 720h (for add action)")
	)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *action == "" {
		fmt.Fprintln(stderr, "Error: --action is required")
		fmt.Fprintln(stderr, "Usage: phone-suppress --action <list|add|remove|cleanup> [options]")
		return 1
	}

	manager := suppressions.NewSuppressionManager(*suppressionFile)
	if err := manager.LoadError(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch *action {
	case "list":
		listSuppressions(stdout, manager)
	case "add":
		if *number == "" {
			fmt.Fprintln(stderr, "Error: --number is required for add action")
			return 1
		}
		return addSuppression(stdout, stderr, manager, *number, *reason, *createdBy, *expires)
	case "remove":
		if *id == "" {
			fmt.Fprintln(stderr, "Error: --id is required for remove action")
			return 1
		}
		if err := manager.RemoveSuppression(*id); err != nil {
			fmt.Fprintf(stderr, "Error removing suppression: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Successfully removed suppression rule: %s\n", *id)
	case "cleanup":
		removed, err := manager.CleanupExpired()
		if err != nil {
			fmt.Fprintf(stderr, "Error cleaning up suppressions: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Cleaned up %d expired suppression rules\n", removed)
	default:
		fmt.Fprintf(stderr, "Error: Unknown action '%s'\n", *action)
		fmt.Fprintln(stderr, "Valid actions: list, add, remove, cleanup")
		return 1
	}
	return 0
}

func listSuppressions(out io.Writer, manager *suppressions.SuppressionManager) {
	rules := manager.ListSuppressions()
	if len(rules) == 0 {
		fmt.Fprintln(out, "No suppression rules found.")
		return
	}

	fmt.Fprintf(out, "Found %d suppression rules:\n\n", len(rules))
	for _, rule := range rules {
		fmt.Fprintf(out, "ID: %s\n", rule.ID)
		fmt.Fprintf(out, "Hash: %s\n", rule.Hash)
		fmt.Fprintf(out, "Reason: %s\n", rule.Reason)
		fmt.Fprintf(out, "Enabled: %v\n", rule.Enabled)
		if rule.CreatedBy != "" {
			fmt.Fprintf(out, "Created By: %s\n", rule.CreatedBy)
		}
		fmt.Fprintf(out, "Created At: %s\n", rule.CreatedAt.Format("2006-01-02 15:04:05"))
		if rule.ExpiresAt != nil {
			fmt.Fprintf(out, "Expires At: %s\n", rule.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
		if len(rule.Metadata) > 0 {
			fmt.Fprintln(out, "Metadata:")
			keys := make([]string, 0, len(rule.Metadata))
			for k := range rule.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %s\n", k, rule.Metadata[k])
			}
		}
		fmt.Fprintln(out, "---")
	}
}

// addSuppression suppresses the number given on the command line. The
// number must scan as exactly one phone number.
func addSuppression(stdout, stderr io.Writer, manager *suppressions.SuppressionManager, number, reason, createdBy string, expiresIn time.Duration) int {
	found := phone.Extract([]byte(number))
	if len(found) != 1 {
		fmt.Fprintf(stderr, "Error: %q is not a single phone number\n", number)
		return 1
	}

	match := detector.Match{
		Text:     string(found[0].Raw),
		Digits:   string(found[0].Digits),
		Category: found[0].Category,
	}
	var expiresAt *time.Time
	if expiresIn > 0 {
		t := time.Now().Add(expiresIn)
		expiresAt = &t
	}

	if err := manager.AddSuppression(match, reason, createdBy, expiresAt); err != nil {
		fmt.Fprintf(stderr, "Error adding suppression: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Suppressed %s (%s) in %s\n", match.Category, suppressions.GenerateHash(match.Digits)[:8], manager.GetConfigPath())
	return 0
}
