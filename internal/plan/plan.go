// Package plan loads run plans: YAML or JSONC files that preset benchmark settings.
//
// Fields left out of a plan keep their flag defaults, and flags given on the command line
// override the plan.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPlan is returned for plans with out-of-range values.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan presets a subset of the configuration.
type Plan struct {
	Name          string   `yaml:"name"           json:"name"`
	Sizes         []int    `yaml:"sizes"          json:"sizes"`
	Iterations    *int     `yaml:"iterations"     json:"iterations"`
	Warmup        *int     `yaml:"warmup"         json:"warmup"`
	Verify        *bool    `yaml:"verify"         json:"verify"`
	ThreadScaling *bool    `yaml:"thread_scaling" json:"thread_scaling"`
	MaxThreads    *int     `yaml:"max_threads"    json:"max_threads"`
	Include       []string `yaml:"include"        json:"include"`
	Exclude       []string `yaml:"exclude"        json:"exclude"`
	SweepTotal    *int     `yaml:"sweep_total"    json:"sweep_total"`
	BlockSizes    []string `yaml:"block_sizes"    json:"block_sizes"`
	Device        string   `yaml:"device"         json:"device"`
	Power         string   `yaml:"power"          json:"power"`
}

// LoadFromFile reads a plan, choosing the format by extension: .json and .jsonc are JSON with
// comments, anything else is YAML.
func LoadFromFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return ParseJSONC(data)
	default:
		return Parse(data)
	}
}

// Parse decodes a YAML plan.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan YAML: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// ParseJSONC decodes a JSON plan that may carry comments and trailing commas.
func ParseJSONC(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(jsonc.ToJSON(data), &p); err != nil {
		return nil, fmt.Errorf("parse plan JSON: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Validate checks value ranges. Remaining checks happen on the merged configuration.
func (p *Plan) Validate() error {
	for i, size := range p.Sizes {
		if size < 1 {
			return fmt.Errorf("%w: sizes[%d] = %d, must be positive", ErrInvalidPlan, i, size)
		}
	}

	if p.Iterations != nil && *p.Iterations < 1 {
		return fmt.Errorf("%w: iterations = %d, must be at least 1", ErrInvalidPlan, *p.Iterations)
	}

	if p.Warmup != nil && *p.Warmup < 0 {
		return fmt.Errorf("%w: warmup = %d, must not be negative", ErrInvalidPlan, *p.Warmup)
	}

	if p.MaxThreads != nil && *p.MaxThreads < 0 {
		return fmt.Errorf("%w: max_threads = %d, must not be negative", ErrInvalidPlan, *p.MaxThreads)
	}

	if p.SweepTotal != nil && *p.SweepTotal < 1 {
		return fmt.Errorf("%w: sweep_total = %d, must be positive", ErrInvalidPlan, *p.SweepTotal)
	}

	return nil
}

// Defaults returns the plan's settings keyed by flag name, for use as configuration
// defaults below explicit flags and environment variables.
func (p *Plan) Defaults() map[string]any {
	defaults := map[string]any{}

	if len(p.Sizes) > 0 {
		sizes := make([]string, len(p.Sizes))
		for i, size := range p.Sizes {
			sizes[i] = strconv.Itoa(size)
		}

		defaults["sizes"] = strings.Join(sizes, ",")
	}

	if p.Iterations != nil {
		defaults["iterations"] = *p.Iterations
	}

	if p.Warmup != nil {
		defaults["warmup"] = *p.Warmup
	}

	// The negated flags default to false, so a plan value only moves the positive one.
	if p.Verify != nil {
		defaults["verify"] = *p.Verify
	}

	if p.ThreadScaling != nil {
		defaults["thread-scaling"] = *p.ThreadScaling
	}

	if p.MaxThreads != nil {
		defaults["max-threads"] = *p.MaxThreads
	}

	if len(p.Include) > 0 {
		defaults["include"] = p.Include
	}

	if len(p.Exclude) > 0 {
		defaults["exclude"] = p.Exclude
	}

	if p.SweepTotal != nil {
		defaults["sweep-total"] = *p.SweepTotal
	}

	if len(p.BlockSizes) > 0 {
		defaults["block-sizes"] = strings.Join(p.BlockSizes, ",")
	}

	if p.Device != "" {
		defaults["device"] = p.Device
	}

	if p.Power != "" {
		defaults["power"] = p.Power
	}

	return defaults
}
