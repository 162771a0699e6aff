// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SkippedFile is a file left out of a scan and the reason why
type SkippedFile struct {
	Path   string
	Reason string
}

// FileSet is the outcome of expanding the scan arguments
type FileSet struct {
	Files   []string
	Skipped []SkippedFile
}

// CollectFiles expands files, directories and glob patterns into the list of
// regular files to scan. Directories are scanned one level deep unless
// recursive is set. Paths whose base name or full path match an exclude
// pattern are dropped, and files larger than maxFileSize (when positive) are
// reported as skipped.
func CollectFiles(paths []string, recursive bool, excludePatterns []string, maxFileSize int64) (*FileSet, error) {
	set := &FileSet{}
	seen := make(map[string]bool)

	add := func(path string, info fs.FileInfo) {
		path = filepath.Clean(path)
		if seen[path] || isExcluded(path, excludePatterns) {
			return
		}
		seen[path] = true
		if maxFileSize > 0 && info.Size() > maxFileSize {
			set.Skipped = append(set.Skipped, SkippedFile{
				Path:   path,
				Reason: fmt.Sprintf("file too large (%d bytes, max %d)", info.Size(), maxFileSize),
			})
			return
		}
		set.Files = append(set.Files, path)
	}

	for _, input := range paths {
		info, err := os.Stat(input)
		if err != nil {
			if !hasGlobMeta(input) {
				return nil, fmt.Errorf("path does not exist or is not accessible: %w", err)
			}
			if err := collectGlob(input, add); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case info.Mode().IsRegular():
			add(input, info)
		case info.IsDir():
			if err := collectDir(input, recursive, excludePatterns, add, set); err != nil {
				return nil, err
			}
		default:
			set.Skipped = append(set.Skipped, SkippedFile{Path: input, Reason: "not a regular file"})
		}
	}

	return set, nil
}

func collectGlob(pattern string, add func(string, fs.FileInfo)) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no files match pattern: %s", pattern)
	}
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		add(match, info)
	}
	return nil
}

func collectDir(root string, recursive bool, excludePatterns []string, add func(string, fs.FileInfo), set *FileSet) error {
	root = filepath.Clean(root)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Keep walking past unreadable entries
			set.Skipped = append(set.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && (!recursive || isExcluded(path, excludePatterns)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			set.Skipped = append(set.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			return nil
		}
		add(path, info)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	return nil
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// isExcluded reports whether the base name or the full path matches any
// pattern. Patterns were validated when the configuration was loaded.
func isExcluded(path string, patterns []string) bool {
	base := filepath.Base(path)
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return true
		}
	}
	return false
}
