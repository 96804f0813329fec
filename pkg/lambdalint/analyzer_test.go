package lambdalint

import (
	"bytes"
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/715d/lambdalint/internal/detect"
)

func memInput(path string, data []byte) ClassInput {
	return ClassInput{
		Path: path,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestAnalyze(t *testing.T) {
	a := NewAnalyzer(Options{})
	result, err := a.Analyze(context.Background(), []ClassInput{
		memInput("Sample.class", sampleClassBytes()),
	})
	require.NoError(t, err)

	require.Len(t, result.Findings, 1)
	f := result.Findings[0]
	assert.Equal(t, string(detect.KindFunctionIdentity), f.Kind)
	assert.Equal(t, "normal", f.Severity)
	assert.NotEmpty(t, f.Message)
	assert.Equal(t, "com.example.Sample", f.Class)
	assert.Equal(t, "caller", f.Method)
	assert.Equal(t, "Sample.java", f.SourceFile)
	assert.Equal(t, 10, f.Line)
	assert.Equal(t, "Sample.class", f.Path)

	assert.Equal(t, 1, result.Stats.ClassesScanned)
	assert.Equal(t, 0, result.Stats.ClassesSkipped)
	assert.Equal(t, map[string]int{string(detect.KindFunctionIdentity): 1}, result.Stats.FindingsByKind)
}

func TestAnalyzeSkipsUnparseableInputs(t *testing.T) {
	a := NewAnalyzer(Options{})
	result, err := a.Analyze(context.Background(), []ClassInput{
		memInput("Broken.class", brokenClassBytes()),
		memInput("Sample.class", sampleClassBytes()),
	})
	require.NoError(t, err)

	assert.Len(t, result.Findings, 1)
	assert.Equal(t, 1, result.Stats.ClassesScanned)
	assert.Equal(t, 1, result.Stats.ClassesSkipped)
}

func TestAnalyzeOrdersFindings(t *testing.T) {
	a := NewAnalyzer(Options{})
	result, err := a.Analyze(context.Background(), []ClassInput{
		memInput("b/Sample.class", sampleClassBytes()),
		memInput("a/Sample.class", sampleClassBytes()),
	})
	require.NoError(t, err)

	require.Len(t, result.Findings, 2)
	assert.Equal(t, "a/Sample.class", result.Findings[0].Path)
	assert.Equal(t, "b/Sample.class", result.Findings[1].Path)
}

func TestAnalyzeConfigFilter(t *testing.T) {
	cfg := &Config{Checks: map[string]bool{string(detect.KindFunctionIdentity): false}}
	a := NewAnalyzer(Options{Config: cfg})
	result, err := a.Analyze(context.Background(), []ClassInput{
		memInput("Sample.class", sampleClassBytes()),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Findings)
	assert.Equal(t, 1, result.Stats.ClassesScanned)
}

func TestAnalyzeReportsProgress(t *testing.T) {
	var done atomic.Int64
	a := NewAnalyzer(Options{Progress: func(n int) { done.Add(int64(n)) }})

	_, err := a.Analyze(context.Background(), []ClassInput{
		memInput("Sample.class", sampleClassBytes()),
		memInput("Clean.class", cleanClassBytes()),
		memInput("Broken.class", brokenClassBytes()),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), done.Load())
}

func TestAnalyzeRequiresInputs(t *testing.T) {
	a := NewAnalyzer(Options{})
	_, err := a.Analyze(context.Background(), nil)
	assert.Error(t, err)
}

func TestAnalyzeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAnalyzer(Options{})
	_, err := a.Analyze(ctx, []ClassInput{
		memInput("Sample.class", sampleClassBytes()),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
