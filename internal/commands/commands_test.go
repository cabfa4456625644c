package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/cipherbench/internal/commands"
	"github.com/idelchi/cipherbench/internal/config"
)

// run executes the command tree with args and returns the resolved configuration and output.
func run(t *testing.T, args ...string) (*config.Config, string, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := &config.Config{}
	root := commands.NewRootCommand(cfg, "test")

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return cfg, out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("CIPHERBENCH_ENV_FILE", filepath.Join(dir, "empty.env"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.env"), nil, 0o600))

	return dir
}

func TestEnginesCommand(t *testing.T) {
	isolate(t)

	cfg, out, err := run(t, "ls", "--device", "none", "-i", "AES*")
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Device)
	assert.Equal(t, []string{"AES*"}, cfg.Include)
	assert.Contains(t, out, "AES-256-CTR/GPU-Kernel")
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("CIPHERBENCH_MAX_THREADS", "3")
	t.Setenv("CIPHERBENCH_LOG_LEVEL", "error")

	cfg, _, err := run(t, "engines", "--device", "none")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxThreads)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, "bench.env")

	require.NoError(t, os.WriteFile(env, []byte("CIPHERBENCH_POWER=none\n"), 0o600))
	t.Setenv("CIPHERBENCH_ENV_FILE", env)
	t.Cleanup(func() { os.Unsetenv("CIPHERBENCH_POWER") })

	cfg, _, err := run(t, "engines", "--device", "none")
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Power)
}

func TestMissingCustomEnvFile(t *testing.T) {
	t.Setenv("CIPHERBENCH_ENV_FILE", filepath.Join(t.TempDir(), "nope.env"))

	_, _, err := run(t, "engines")
	require.ErrorContains(t, err, "loading environment file")
}

func TestPlanPrecedence(t *testing.T) {
	dir := isolate(t)

	planPath := filepath.Join(dir, "plan.yml")
	require.NoError(t, os.WriteFile(planPath, []byte("iterations: 7\nwarmup: 2\nsizes: [4]\n"), 0o600))

	cfg, _, err := run(t, "check", "--plan", planPath, "--warmup", "1", "-i", "XOR/*")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Iterations, "plan overrides the default")
	assert.Equal(t, 1, cfg.Warmup, "explicit flag overrides the plan")
	assert.Equal(t, "4", cfg.Sizes)
}

func TestPlanBelowEnvironmentAndNegatedFlags(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CIPHERBENCH_ITERATIONS", "9")

	planPath := filepath.Join(dir, "plan.jsonc")
	require.NoError(t, os.WriteFile(planPath, []byte(`{"iterations": 7, "verify": true}`), 0o600))

	cfg, _, err := run(t, "check", "--plan", planPath, "--no-verify", "-i", "XOR/*")
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Iterations)
	assert.False(t, cfg.VerifyEnabled())
}

func TestShowExitsWithoutRunning(t *testing.T) {
	dir := isolate(t)
	output := filepath.Join(dir, "results.csv")

	cfg, _, err := run(t, "--show", "--sizes", "1", "--power", "none", "--device", "none",
		"--key", strings.Repeat("ab", 32), "--output", output)
	require.ErrorIs(t, err, cobraext.ErrExitGracefully)

	assert.True(t, cfg.Show)
	assert.Equal(t, output, cfg.Output)
	assert.NoFileExists(t, output)
}

func TestValidationFailure(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "engines", "--device", "quantum")
	require.Error(t, err)

	_, _, err = run(t, "engines", "--seed", "a", "--key", "00")
	require.Error(t, err)
}
