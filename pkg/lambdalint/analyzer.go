package lambdalint

import (
	"context"
	"fmt"
	"log/slog"
	goruntime "runtime"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/715d/lambdalint/internal/classfile"
	"github.com/715d/lambdalint/internal/detect"
)

// Options holds configuration options for the analyzer.
type Options struct {
	// Config filters findings after analysis; nil means everything is
	// reported.
	Config *Config

	// Progress, when set, is called once per finished class. It must be
	// safe for concurrent use.
	Progress func(n int)
}

// Result is the output of one analyzer run.
type Result struct {
	Findings []Finding `json:"findings"`
	Stats    struct {
		ClassesScanned int            `json:"classes_scanned"`
		ClassesSkipped int            `json:"classes_skipped"`
		FindingsByKind map[string]int `json:"findings_by_kind"`
	} `json:"stats"`
}

// Analyzer runs the misuse detectors over a set of class inputs.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an analyzer with the given options.
func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// Analyze parses and scans every input concurrently and returns the merged,
// deterministically ordered findings. Unparseable inputs are skipped with a
// warning; they never fail the run.
func (a *Analyzer) Analyze(ctx context.Context, inputs []ClassInput) (*Result, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no class inputs provided")
	}

	// Lock-free concurrency pattern: pre-allocate a results slice with one
	// slot per input. Each goroutine writes only its own index, and the main
	// goroutine reads after Wait, so no locking is needed.
	results := make([][]Finding, len(inputs))
	var skipped atomic.Int64

	var wg errgroup.Group
	wg.SetLimit(goruntime.NumCPU())

	for idx, input := range inputs {
		wg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			findings, err := a.scanOne(input)
			if err != nil {
				slog.Warn("skipping class", "path", input.Path, "archive", input.Archive, "error", err)
				skipped.Add(1)
			} else {
				results[idx] = findings
			}
			if a.opts.Progress != nil {
				a.opts.Progress(1)
			}
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	result.Stats.ClassesScanned = len(inputs) - int(skipped.Load())
	result.Stats.ClassesSkipped = int(skipped.Load())
	result.Stats.FindingsByKind = make(map[string]int)

	for _, findings := range results {
		for _, f := range findings {
			if a.opts.Config != nil && !a.opts.Config.Allows(detect.Kind(f.Kind)) {
				continue
			}
			result.Findings = append(result.Findings, f)
			result.Stats.FindingsByKind[f.Kind]++
		}
	}

	sort.Slice(result.Findings, func(i, j int) bool {
		fi, fj := result.Findings[i], result.Findings[j]
		if fi.Archive != fj.Archive {
			return fi.Archive < fj.Archive
		}
		if fi.Path != fj.Path {
			return fi.Path < fj.Path
		}
		if fi.Line != fj.Line {
			return fi.Line < fj.Line
		}
		return fi.Kind < fj.Kind
	})

	return result, nil
}

// scanOne parses one class and runs a fresh detector over it. The detector
// contract is one class at a time per instance; a per-call value keeps the
// concurrent scans independent.
func (a *Analyzer) scanOne(input ClassInput) ([]Finding, error) {
	r, err := input.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cf, err := classfile.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing class: %w", err)
	}

	var det detect.Detector
	raw := det.Analyze(cf)

	findings := make([]Finding, 0, len(raw))
	for _, f := range raw {
		findings = append(findings, Finding{
			Kind:       string(f.Kind),
			Severity:   string(f.Kind.Severity()),
			Message:    Message(f.Kind),
			Class:      externalName(f.Class),
			Method:     f.Method,
			Descriptor: f.Descriptor,
			SourceFile: cf.SourceFile,
			Line:       f.Line,
			Path:       input.Path,
			Archive:    input.Archive,
		})
	}
	return findings, nil
}

// externalName converts an internal class name (com/example/Foo) to its
// source form (com.example.Foo).
func externalName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}
