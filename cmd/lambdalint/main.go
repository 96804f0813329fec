// Package main implements the CLI driver for the lambdalint linter.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/715d/lambdalint/pkg/lambdalint"
)

// Config holds all command-line configuration options for the lambdalint
// analyzer.
type Config struct {
	Paths      []string // class files, directories or jars to analyze
	Verbose    bool     // enables detailed output and statistics
	JSON       bool     // enables JSON output format
	ConfigFile string   // path to a .lambdalint.yaml config file
	Profile    bool     // enables CPU and memory profiling
}

const (
	exitFindings = 1
	exitError    = 2
)

var (
	// Set via ldflags during build.
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var cfg Config

func main() {
	var rootCmd = &cobra.Command{
		Use:   "lambdalint [paths...]",
		Short: "Find functional-interface and stream misuse in JVM class files",
		Long: `lambdalint scans compiled JVM class files for idiomatic misuse of
functional interfaces and stream chains.

It reports:
- Lambdas that are disguised identity functions or method references
- Redundant filter().filter() chains
- filter().findFirst().isPresent() chains that should be anyMatch()
- collect(...) results that are immediately indexed, sized or searched`,
		Example: `  lambdalint build/classes             # Analyze a directory of classes
  lambdalint app.jar lib.jar           # Analyze jars
  lambdalint -v Foo.class              # Verbose output
  lambdalint -json . > report.json     # JSON output to file`,
		Args:               cobra.ArbitraryArgs,
		RunE:               runCommand,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Version:            version,
	}

	// Set custom version template to include build info.
	rootCmd.SetVersionTemplate(fmt.Sprintf("lambdalint version %s\n  commit: %s\n  built:  %s\n", version, gitCommit, buildTime))

	// Define flags.
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&cfg.JSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Path to config file (default: .lambdalint.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Profile, "profile", false, "Enable CPU and memory profiling (writes cpu.prof and mem.prof to current directory)")

	if err := rootCmd.Execute(); err != nil {
		_ = teardown(nil, nil)
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		var cErr *codedError
		if errors.As(err, &cErr) {
			os.Exit(cErr.code)
		}
		os.Exit(exitError)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Paths = args
	} else {
		cfg.Paths = []string{"."}
	}

	slog.Info("starting functional-interface analysis", "paths", cfg.Paths)

	result, err := runAnalysis(cmd, &cfg)
	if err != nil {
		return errWithCode(fmt.Errorf("analyze: %w", err), exitError)
	}

	if err := writeResults(result, &cfg); err != nil {
		return errWithCode(fmt.Errorf("format results: %w", err), exitError)
	}

	if len(result.Findings) > 0 {
		return errWithCode(nil, exitFindings)
	}
	return nil
}

func runAnalysis(cmd *cobra.Command, cfg *Config) (*Result, error) {
	start := time.Now()

	conf, err := loadConfig(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("discovering class files", "paths", cfg.Paths)
	inputs, err := lambdalint.LoadClasses(cmd.Context(), lambdalint.LoaderOptions{Paths: cfg.Paths})
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	slog.Info("discovered class files", "num", len(inputs))

	opts := lambdalint.Options{Config: conf}
	if bar := newProgress(cfg, len(inputs)); bar != nil {
		opts.Progress = func(n int) { _ = bar.Add(n) }
		defer func() { _ = bar.Finish() }()
	}

	slog.Info("running analysis")
	analyzer := lambdalint.NewAnalyzer(opts)
	result, err := analyzer.Analyze(cmd.Context(), inputs)
	if err != nil {
		return nil, fmt.Errorf("analyzing classes: %w", err)
	}
	duration := time.Since(start)
	slog.Info("analysis completed", "dur", duration)

	return &Result{Result: result, Duration: duration}, nil
}

func loadConfig(cfg *Config) (*lambdalint.Config, error) {
	if cfg.ConfigFile != "" {
		return lambdalint.LoadConfig(cfg.ConfigFile)
	}
	conf, err := lambdalint.LoadConfig(lambdalint.DefaultConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return conf, err
}

// newProgress returns a progress bar for interactive runs, nil otherwise.
func newProgress(cfg *Config, total int) *progressbar.ProgressBar {
	if cfg.Verbose || cfg.JSON || total < 2 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("[scanning]"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

// Result combines the analyzer output with execution statistics.
type Result struct {
	*lambdalint.Result
	Duration time.Duration `json:"analysis_duration"`
}

func writeResults(result *Result, cfg *Config) error {
	var output string
	var err error

	if cfg.JSON {
		output, err = formatJSONOutput(result)
	} else {
		output = formatTextOutput(result, cfg)
	}

	if err != nil {
		return err
	}

	fmt.Print(output)
	return nil
}

func formatJSONOutput(result *Result) (string, error) {
	data, err := json.MarshalIndent(jOutput{
		Findings:  result.Findings,
		Stats:     result.Stats,
		Duration:  result.Duration.String(),
		Version:   version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling json output: %w", err)
	}
	return string(data), nil
}

func formatTextOutput(result *Result, cfg *Config) string {
	var output strings.Builder

	if cfg.Verbose {
		slog.Info("",
			"classes_scanned", result.Stats.ClassesScanned,
			"classes_skipped", result.Stats.ClassesSkipped,
			"findings", len(result.Findings),
			"analysis_duration", result.Duration.String())
	}

	if len(result.Findings) == 0 {
		slog.Info("no findings")
		return output.String()
	}

	// Group findings by class for better organization.
	byClass := make(map[string][]lambdalint.Finding)
	var classes []string
	for _, f := range result.Findings {
		if _, ok := byClass[f.Class]; !ok {
			classes = append(classes, f.Class)
		}
		byClass[f.Class] = append(byClass[f.Class], f)
	}

	for _, class := range classes {
		if len(classes) > 1 && cfg.Verbose {
			output.WriteString(fmt.Sprintf("\n%s:\n", class))
		}

		for _, f := range byClass[class] {
			loc := f.SourceFile
			if loc == "" {
				loc = f.Path
			}
			if !cfg.Verbose {
				// Compact format for non-verbose mode.
				output.WriteString(fmt.Sprintf("%s:%d %s %s\n", loc, f.Line, f.Kind, f.Method))
			} else {
				output.WriteString(fmt.Sprintf("  %s:%d %s in %s.%s (%s)\n",
					loc, f.Line, f.Kind, f.Class, f.Method, f.Message))
			}
		}
	}

	return output.String()
}

type jOutput struct {
	Findings  []lambdalint.Finding `json:"findings"`
	Stats     any                  `json:"stats"`
	Duration  string               `json:"analysis_duration"`
	Version   string               `json:"version"`
	Timestamp string               `json:"timestamp"`
}

var cpuProfile *os.File

func setup(_ *cobra.Command, _ []string) error {
	// Disable logger unless verbose flag is set.
	slog.SetDefault(slog.New(slog.DiscardHandler))
	if cfg.Verbose {
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
		if cfg.JSON {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		}
		logger := slog.New(handler)
		slog.SetDefault(logger)
	}

	if !cfg.Profile {
		return nil
	}

	// Start CPU profiling.
	var err error
	cpuProfile, err = os.Create("cpu.prof")
	if err != nil {
		return fmt.Errorf("creating cpu.prof: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuProfile); err != nil {
		_ = cpuProfile.Close()
		return fmt.Errorf("starting CPU profile: %w", err)
	}
	slog.Info("cpu profiling started", "file", "cpu.prof")
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if !cfg.Profile || cpuProfile == nil {
		return nil
	}

	// Stop CPU profiling and close file.
	pprof.StopCPUProfile()
	defer cpuProfile.Close()
	slog.Info("cpu profiling stopped", "file", "cpu.prof")

	// Write memory profile.
	memFile, err := os.Create("mem.prof")
	if err != nil {
		return fmt.Errorf("creating mem.prof: %w", err)
	}
	defer memFile.Close()
	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("writing memory profile: %w", err)
	}
	slog.Info("memory profiling completed", "file", "mem.prof")
	return nil
}

func errWithCode(err error, code int) error {
	return &codedError{err: err, code: code}
}

type codedError struct {
	err  error
	code int
}

func (e codedError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}
