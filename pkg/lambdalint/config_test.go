package lambdalint

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/715d/lambdalint/internal/detect"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
checks:
  function-identity-use: false
  combine-filters: true
min_severity: normal
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "normal", cfg.MinSeverity)
	assert.False(t, cfg.Checks["function-identity-use"])
	assert.True(t, cfg.Checks["combine-filters"])
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadConfigRejectsUnknownCheck(t *testing.T) {
	path := writeConfig(t, "checks:\n  no-such-check: true\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown check")
}

func TestLoadConfigRejectsUnknownSeverity(t *testing.T) {
	path := writeConfig(t, "min_severity: fatal\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown min_severity")
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "checks: [not\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigAllows(t *testing.T) {
	var nilCfg *Config
	assert.True(t, nilCfg.Allows(detect.KindFunctionIdentity))

	cfg := &Config{Checks: map[string]bool{string(detect.KindAvoidSize): false}}
	assert.False(t, cfg.Allows(detect.KindAvoidSize))
	assert.True(t, cfg.Allows(detect.KindAvoidContains))

	// combine-filters and use-any-match are low severity; a "normal" floor
	// drops them.
	strict := &Config{MinSeverity: string(detect.SeverityNormal)}
	assert.False(t, strict.Allows(detect.KindCombineFilters))
	assert.False(t, strict.Allows(detect.KindUseAnyMatch))
	assert.True(t, strict.Allows(detect.KindFunctionIdentity))
	assert.True(t, strict.Allows(detect.KindUseFindFirst))
}
