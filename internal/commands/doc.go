// Package commands provides the command-line interface for the cipherbench tool.
//
// It implements commands for:
//   - running the benchmark (root command)
//   - listing engines and their availability
//   - checking engine selection patterns
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands
