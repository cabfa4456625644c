package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/cipherbench/internal/config"
	"github.com/idelchi/cipherbench/internal/plan"
)

// envFile names the variable pointing at the dotenv file, ".env" by default.
const envFile = "CIPHERBENCH_ENV_FILE"

// dotEnv loads variables from the dotenv file before viper resolves any setting.
// A missing default file is not an error.
func dotEnv(_ *cobra.Command, _ []string) error {
	path, custom := os.LookupEnv(envFile)
	if !custom {
		path = ".env"
	}

	err := godotenv.Load(path)

	switch {
	case err == nil:
		slog.Debug("loaded environment file", "path", path)

		return nil
	case !custom && errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("loading environment file %q: %w", path, err)
	}
}

// planDefaults registers the values of the plan file, if any, as viper defaults.
// Flags and environment variables given explicitly keep precedence over them.
func planDefaults(_ *cobra.Command, _ []string) error {
	path := viper.GetString("plan")
	if path == "" {
		return nil
	}

	p, err := plan.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("loading plan: %w", err)
	}

	for key, value := range p.Defaults() {
		viper.SetDefault(key, value)
	}

	slog.Debug("applied plan", "path", path, "name", p.Name)

	return nil
}

// configure returns the PersistentPreRunE handler: it runs the default viper binding
// with the dotenv and plan hooks, then unmarshals, shows or validates cfg.
func configure(root *cobra.Command, cfg *config.Config) func(*cobra.Command, []string) error {
	bind := root.PersistentPreRunE

	return func(cmd *cobra.Command, args []string) error {
		if err := bind(cmd, args); err != nil {
			return err
		}

		if err := cobraext.Validate(cfg, cfg); err != nil {
			return err //nolint:wrapcheck // already carries context
		}

		setupLogging(cfg.LogLevel)

		return nil
	}
}

func setupLogging(level string) {
	var lvl slog.Level

	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
