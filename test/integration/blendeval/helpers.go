package blendeval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/blendeval/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
	// OptimizerURL when empty the fake optimizer is used.
	OptimizerURL string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "blendeval"
	}

	// go test changes the CWD to the package directory, relative paths would break.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("BLENDEVAL_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("blendeval binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation   = "BLENDEVAL_INTEGRATION"
		envBinary       = "BLENDEVAL_INTEGRATION_BINARY"
		envOptimizerURL = "BLENDEVAL_INTEGRATION_OPTIMIZER_URL"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary:       os.Getenv(envBinary),
		OptimizerURL: os.Getenv(envOptimizerURL),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// OptimizerArgs returns the global flags selecting the optimizer.
func (c Config) OptimizerArgs() string {
	if c.OptimizerURL == "" {
		return "--fake-optimizer"
	}
	return "--optimizer-url " + c.OptimizerURL
}

// RunCmd runs a blendeval command with the given arguments, user and db path.
func RunCmd(ctx context.Context, config Config, dbPath, user, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --db-path %s --user %s %s %s", dbPath, user, config.OptimizerArgs(), cmdArgs)
	return testutils.RunBlendeval(ctx, nil, config.Binary, args, true)
}

// WriteFile writes a test input file and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write %s: %s", path, err)
	}
	return path
}
