// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"phone-scan/internal/config"
	"phone-scan/internal/core"
	"phone-scan/internal/formatters"
	"phone-scan/internal/help"
	"phone-scan/internal/observability"
	"phone-scan/internal/performance"
	"phone-scan/internal/suppressions"
	phonevalidator "phone-scan/internal/validators/phone"
	"phone-scan/internal/version"
	"phone-scan/internal/web"

	_ "phone-scan/internal/formatters/csv"
	_ "phone-scan/internal/formatters/json"
	_ "phone-scan/internal/formatters/junit"
	_ "phone-scan/internal/formatters/sarif"
	_ "phone-scan/internal/formatters/text"
	_ "phone-scan/internal/formatters/yaml"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Exit codes
const (
	exitNoMatches = 0
	exitMatches   = 1
	exitError     = 2
)

// cliFlags holds command line flag values
type cliFlags struct {
	files           stringList
	configFile      string
	profileName     string
	listProfiles    bool
	format          string
	categories      string
	confidence      string
	exclude         stringList
	recursive       bool
	workers         int
	suppressionFile string
	generateRules   bool
	verbose         bool
	debug           bool
	noColor         bool
	showMatch       bool
	quiet           bool
	outputFile      string
	webMode         bool
	port            int
	benchmark       bool
	benchDuration   time.Duration
	listFormats     bool
	helpCategories  bool
	showHelp        bool
	showVersion     bool
}

// stringList is a repeatable string flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// cli carries the streams a run writes to
type cli struct {
	fs     *flag.FlagSet
	flags  *cliFlags
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newFlagSet(flags *cliFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("phone-scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Var(&flags.files, "file", "Path to an input file, directory, or glob pattern (repeatable)")
	fs.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&flags.profileName, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&flags.listProfiles, "list-profiles", false, "List available profiles in config file")
	fs.StringVar(&flags.format, "format", "", "Output format: text, json, csv, yaml, junit, sarif (default: text)")
	fs.StringVar(&flags.categories, "categories", "", "Categories to report, comma separated, or 'all'")
	fs.StringVar(&flags.confidence, "confidence", "", "Confidence levels to display: high, medium, low, or combinations like 'high,medium'")
	fs.Var(&flags.exclude, "exclude", "Glob pattern of files or directories to skip (repeatable)")
	fs.BoolVar(&flags.recursive, "recursive", false, "Recursively scan directories")
	fs.IntVar(&flags.workers, "workers", 0, "Number of files scanned in parallel (default: number of CPUs)")
	fs.StringVar(&flags.suppressionFile, "suppression-file", "", "Path to suppression configuration file (default: "+suppressions.DefaultSuppressionFile+")")
	fs.BoolVar(&flags.generateRules, "generate-suppressions", false, "Write a suppression rule for every finding")
	fs.BoolVar(&flags.verbose, "verbose", false, "Display detailed information for each finding")
	fs.BoolVar(&flags.debug, "debug", false, "Log scan steps to stderr")
	fs.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&flags.showMatch, "show-match", false, "Display the matched number in findings")
	fs.BoolVar(&flags.quiet, "quiet", false, "Suppress progress output")
	fs.StringVar(&flags.outputFile, "output", "", "Path to output file (if not specified, output to stdout)")
	fs.BoolVar(&flags.webMode, "web", false, "Start the HTTP API instead of scanning")
	fs.IntVar(&flags.port, "port", 0, "Port for the HTTP API (default: 8080)")
	fs.BoolVar(&flags.benchmark, "benchmark", false, "Run the extraction throughput benchmark")
	fs.DurationVar(&flags.benchDuration, "bench-duration", 3*time.Second, "Benchmark duration")
	fs.BoolVar(&flags.listFormats, "list-formats", false, "List output formats")
	fs.BoolVar(&flags.helpCategories, "help-categories", false, "Describe every category")
	fs.BoolVar(&flags.showHelp, "help", false, "Show help information")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")

	return fs
}

// run executes one CLI invocation and returns the process exit code
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := &cliFlags{}
	fs := newFlagSet(flags, stderr)
	fs.Usage = func() {
		help.NewSystem(stderr, true).ShowGeneralHelp()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitNoMatches
		}
		return exitError
	}
	c := &cli{fs: fs, flags: flags, stdin: stdin, stdout: stdout, stderr: stderr}

	switch {
	case flags.showVersion:
		fmt.Fprintln(stdout, version.Info())
		return exitNoMatches
	case flags.showHelp:
		c.helpSystem(!isTerminal(stdout)).ShowGeneralHelp()
		return exitNoMatches
	case flags.helpCategories:
		c.helpSystem(!isTerminal(stdout)).ShowCheckHelp("phone")
		return exitNoMatches
	case flags.listFormats:
		c.printFormats()
		return exitNoMatches
	}

	cfg, err := loadConfiguration(flags.configFile, stderr)
	if err != nil {
		c.printError(err.Error())
		return exitError
	}
	if flags.listProfiles {
		c.printProfiles(cfg)
		return exitNoMatches
	}
	if flags.profileName != "" {
		if err := cfg.ApplyProfile(flags.profileName); err != nil {
			c.printError(err.Error())
			return exitError
		}
	}
	settings := resolveConfiguration(cfg, fs, flags)

	switch {
	case flags.webMode:
		return c.runWeb(ctx, cfg, settings)
	case flags.benchmark:
		return c.runBenchmark(ctx, settings)
	default:
		return c.runScan(ctx, settings)
	}
}

// loadConfiguration loads the named config file, or the first one found in
// the standard locations. A missing file falls back to defaults; a broken
// file named on the command line is an error.
func loadConfiguration(configFile string, stderr io.Writer) (*config.Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err == nil {
		return cfg, nil
	}
	if configFile != "" {
		return nil, err
	}
	fmt.Fprintf(stderr, "Warning: Error loading config file: %v\n", err)
	fmt.Fprintf(stderr, "Using default configuration\n")
	return config.LoadConfig("")
}

// resolveConfiguration overlays explicitly set flags on the config defaults
// (which already include the selected profile)
func resolveConfiguration(cfg *config.Config, fs *flag.FlagSet, flags *cliFlags) config.Settings {
	final := cfg.Defaults

	if isFlagSet(fs, "format") && flags.format != "" {
		final.Format = strings.ToLower(flags.format)
	}
	if isFlagSet(fs, "confidence") && flags.confidence != "" {
		final.ConfidenceLevels = flags.confidence
	}
	if isFlagSet(fs, "categories") && flags.categories != "" {
		final.Categories = flags.categories
	}
	if isFlagSet(fs, "workers") {
		final.Workers = flags.workers
	}
	if isFlagSet(fs, "suppression-file") {
		final.SuppressionFile = flags.suppressionFile
	}
	if len(flags.exclude) > 0 {
		final.ExcludePatterns = append(append([]string{}, final.ExcludePatterns...), flags.exclude...)
	}
	if isFlagSet(fs, "verbose") {
		final.Verbose = flags.verbose
	}
	if isFlagSet(fs, "debug") {
		final.Debug = flags.debug
	}
	if isFlagSet(fs, "no-color") {
		final.NoColor = flags.noColor
	}
	if isFlagSet(fs, "show-match") {
		final.ShowMatch = flags.showMatch
	}
	if isFlagSet(fs, "recursive") {
		final.Recursive = flags.recursive
	}

	if final.Format == "" {
		final.Format = "text"
	}
	if final.ConfidenceLevels == "" {
		final.ConfidenceLevels = "all"
	}
	if final.Categories == "" {
		final.Categories = "all"
	}
	return final
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func (c *cli) newObserver(debug bool) (*observability.StandardObserver, *observability.DebugObserver) {
	if debug {
		debugObs := observability.NewDebugObserver(c.stderr)
		return debugObs.StandardObserver, debugObs
	}
	return observability.NewStandardObserver(observability.ObservabilityMetrics, c.stderr), nil
}

func (c *cli) newSuppressionManager(settings config.Settings) *suppressions.SuppressionManager {
	manager := suppressions.NewSuppressionManager(settings.SuppressionFile)
	if err := manager.LoadError(); err != nil {
		fmt.Fprintf(c.stderr, "Warning: %v\n", err)
	}
	return manager
}

// runScan scans the input files, or stdin when none are given
func (c *cli) runScan(ctx context.Context, settings config.Settings) int {
	paths := append(append([]string{}, c.flags.files...), c.fs.Args()...)

	categories, err := core.ParseCategories([]string{settings.Categories})
	if err != nil {
		c.printError(err.Error())
		return exitError
	}
	if _, ok := formatters.Get(settings.Format); !ok {
		c.printError(fmt.Sprintf("Unsupported output format '%s'. Use one of: %s",
			settings.Format, strings.Join(formatters.List(), ", ")))
		return exitError
	}

	observer, debugObs := c.newObserver(settings.Debug)
	if debugObs != nil {
		debugObs.LogDetail("config", fmt.Sprintf("Categories: %s", settings.Categories))
		debugObs.LogDetail("config", fmt.Sprintf("Confidence levels: %s", settings.ConfidenceLevels))
		debugObs.LogDetail("config", fmt.Sprintf("Recursive scan: %v", settings.Recursive))
		debugObs.LogMetric("config", "input_paths", len(paths))
	}

	manager := c.newSuppressionManager(settings)
	scanConfig := core.ScanConfig{
		Paths:              paths,
		Recursive:          settings.Recursive,
		ExcludePatterns:    settings.ExcludePatterns,
		Categories:         categories,
		Workers:            settings.Workers,
		MaxFileSize:        settings.MaxFileSize,
		SuppressionManager: manager,
		Observer:           observer,
	}

	var result *core.ScanResult
	if len(paths) == 0 {
		if isTerminal(c.stdin) {
			c.helpSystem(!isTerminal(c.stderr)).ShowGeneralHelp()
			return exitError
		}
		result, err = core.ScanReader(c.stdin, "", scanConfig)
	} else {
		if c.showProgress(settings) {
			scanConfig.Progress = c.progress
		}
		result, err = core.ScanFiles(ctx, scanConfig)
	}
	if err != nil {
		c.printError(err.Error())
		return exitError
	}
	c.reportProblems(result)

	if c.flags.generateRules && len(result.Matches) > 0 {
		if err := manager.GenerateSuppressionRules(result.Matches, "Generated by phone-scan", false); err != nil {
			c.printError(fmt.Sprintf("failed to write suppression rules: %v", err))
			return exitError
		}
		fmt.Fprintf(c.stderr, "Wrote suppression rules for %d findings to %s (disabled until reviewed)\n",
			len(result.Matches), manager.GetConfigPath())
	}

	if code := c.writeOutput(settings, result); code != exitNoMatches {
		return code
	}
	if len(result.Matches) > 0 {
		return exitMatches
	}
	if result.Stats != nil && result.Stats.ProcessedFiles == 0 && result.Stats.FailedFiles > 0 {
		return exitError
	}
	return exitNoMatches
}

func (c *cli) writeOutput(settings config.Settings, result *core.ScanResult) int {
	noColor := settings.NoColor || os.Getenv("NO_COLOR") != ""
	if c.flags.outputFile != "" || !isTerminal(c.stdout) {
		noColor = true
	}

	options := formatters.FormatterOptions{
		ConfidenceLevel: core.ParseConfidenceLevels(settings.ConfidenceLevels),
		Verbose:         settings.Verbose,
		NoColor:         noColor,
		ShowMatch:       settings.ShowMatch,
	}
	output, err := formatters.Export(settings.Format, result.Matches, result.SuppressedMatches, options)
	if err != nil {
		c.printError(fmt.Sprintf("failed to format results: %v", err))
		return exitError
	}
	if output != "" && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}

	if c.flags.outputFile == "" {
		io.WriteString(c.stdout, output)
		return exitNoMatches
	}
	if err := os.WriteFile(filepath.Clean(c.flags.outputFile), []byte(output), 0o600); err != nil {
		c.printError(fmt.Sprintf("failed to write output file: %v", err))
		return exitError
	}
	if !c.flags.quiet {
		fmt.Fprintf(c.stderr, "Results written to %s\n", c.flags.outputFile)
	}
	return exitNoMatches
}

// reportProblems prints skipped and unreadable files to stderr
func (c *cli) reportProblems(result *core.ScanResult) {
	for _, skipped := range result.SkippedFiles {
		fmt.Fprintf(c.stderr, "Skipped %s: %s\n", skipped.Path, skipped.Reason)
	}
	if result.Stats == nil {
		return
	}
	for _, failure := range result.Stats.Failures {
		fmt.Fprintf(c.stderr, "Warning: %s: %v\n", failure.FilePath, failure.Err)
	}
}

func (c *cli) showProgress(settings config.Settings) bool {
	if c.flags.quiet || settings.Debug {
		return false
	}
	return isTerminal(c.stderr)
}

func (c *cli) progress(completed, total int, currentFile string) {
	fmt.Fprintf(c.stderr, "\rScanned %d/%d files", completed, total)
	if completed == total {
		fmt.Fprintln(c.stderr)
	}
}

func (c *cli) runWeb(ctx context.Context, cfg *config.Config, settings config.Settings) int {
	port := cfg.Web.Port
	if isFlagSet(c.fs, "port") {
		port = c.flags.port
	}
	if port <= 0 || port > 65535 {
		c.printError(fmt.Sprintf("invalid port %d", port))
		return exitError
	}
	if len(c.flags.files) > 0 || c.fs.NArg() > 0 {
		c.printError("--web does not take input files; upload them to /scan instead")
		return exitError
	}

	observer, _ := c.newObserver(settings.Debug)
	server := web.NewWebServer(web.Options{
		Port:               port,
		Settings:           settings,
		SuppressionManager: c.newSuppressionManager(settings),
		Observer:           observer,
		Log:                c.stdout,
	})
	if err := server.Start(ctx); err != nil {
		c.printError(err.Error())
		return exitError
	}
	return exitNoMatches
}

func (c *cli) runBenchmark(ctx context.Context, settings config.Settings) int {
	observer, _ := c.newObserver(settings.Debug)
	benchConfig := performance.DefaultBenchmarkConfig()
	benchConfig.Duration = c.flags.benchDuration
	if settings.Workers > 0 {
		benchConfig.Workers = settings.Workers
	}

	runner := performance.NewBenchmarkRunner(observer, benchConfig)
	if err := runner.GenerateSyntheticTestData(); err != nil {
		c.printError(err.Error())
		return exitError
	}
	results, err := runner.RunBenchmark(ctx)
	if err != nil {
		c.printError(fmt.Sprintf("benchmark failed: %v", err))
		return exitError
	}

	if settings.Format == "json" {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			c.printError(err.Error())
			return exitError
		}
		return exitNoMatches
	}
	performance.WriteReport(c.stdout, results)
	return exitNoMatches
}

func (c *cli) helpSystem(noColor bool) *help.System {
	system := help.NewSystem(c.stdout, noColor || c.flags.noColor)
	system.RegisterProvider(phonevalidator.NewValidator())
	return system
}

func (c *cli) printFormats() {
	for _, info := range formatters.GetSupportedFormats() {
		fmt.Fprintf(c.stdout, "%-6s %s\n", info.Name, info.Description)
	}
}

func (c *cli) printProfiles(cfg *config.Config) {
	fmt.Fprintln(c.stdout, "Available profiles:")
	for _, name := range cfg.ListProfiles() {
		profile := cfg.GetProfile(name)
		fmt.Fprintf(c.stdout, "  %-12s %s\n", name, profile.Description)
	}
}

func (c *cli) printError(message string) {
	errColor := color.New(color.FgRed, color.Bold)
	if c.flags.noColor || !isTerminal(c.stderr) {
		errColor.DisableColor()
	}
	errColor.Fprint(c.stderr, "Error: ")
	fmt.Fprintln(c.stderr, message)
}

// isTerminal reports whether w is a terminal
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
