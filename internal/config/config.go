// Package config holds the analysis configuration: input/output locations,
// the minimum-claims threshold for detailed breakdowns, ranked-listing sizes,
// and the age bucket schema. Fields omitted from a JSON config file retain
// their defaults, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults for the analysis run. The age bucket schema is fixed: edges are
// half-open (lower inclusive, upper exclusive) and must carry exactly one
// label per bin.
const (
	DefaultInputPath          = "data/claims.csv"
	DefaultOutputDir          = "analysis"
	DefaultDBPath             = "analysis/run_history.db"
	DefaultMinClaimsForDetail = 30
	DefaultTopN               = 15
)

var (
	defaultAgeBinEdges  = []int{18, 25, 35, 45, 55, 65, 130}
	defaultAgeBinLabels = []string{"18-25", "26-35", "36-45", "46-55", "56-65", "65+"}
)

// Config represents the root configuration for an analysis run.
type Config struct {
	InputPath          *string  `json:"input_path,omitempty"`
	OutputDir          *string  `json:"output_dir,omitempty"`
	DBPath             *string  `json:"db_path,omitempty"`
	MinClaimsForDetail *int     `json:"min_claims_for_detail,omitempty"`
	TopN               *int     `json:"top_n,omitempty"`
	AgeBinEdges        []int    `json:"age_bin_edges,omitempty"`
	AgeBinLabels       []string `json:"age_bin_labels,omitempty"`
}

// Default returns a Config with all fields unset; the Get* methods supply
// the default values.
func Default() *Config {
	return &Config{}
}

// Load loads a Config from a JSON file.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.MinClaimsForDetail != nil && *c.MinClaimsForDetail < 1 {
		return fmt.Errorf("min_claims_for_detail must be >= 1, got %d", *c.MinClaimsForDetail)
	}
	if c.TopN != nil && *c.TopN < 1 {
		return fmt.Errorf("top_n must be >= 1, got %d", *c.TopN)
	}
	if len(c.AgeBinEdges) > 0 || len(c.AgeBinLabels) > 0 {
		if len(c.AgeBinEdges) < 2 {
			return fmt.Errorf("age_bin_edges needs at least 2 edges, got %d", len(c.AgeBinEdges))
		}
		if len(c.AgeBinLabels) != len(c.AgeBinEdges)-1 {
			return fmt.Errorf("age_bin_labels must have exactly %d entries, got %d",
				len(c.AgeBinEdges)-1, len(c.AgeBinLabels))
		}
		for i := 1; i < len(c.AgeBinEdges); i++ {
			if c.AgeBinEdges[i] <= c.AgeBinEdges[i-1] {
				return fmt.Errorf("age_bin_edges must be strictly increasing")
			}
		}
	}
	return nil
}

// GetInputPath returns the configured input path or the default.
func (c *Config) GetInputPath() string {
	if c.InputPath != nil {
		return *c.InputPath
	}
	return DefaultInputPath
}

// GetOutputDir returns the configured output directory or the default.
func (c *Config) GetOutputDir() string {
	if c.OutputDir != nil {
		return *c.OutputDir
	}
	return DefaultOutputDir
}

// GetDBPath returns the run-history database path. An explicit empty string
// disables run-history persistence.
func (c *Config) GetDBPath() string {
	if c.DBPath != nil {
		return *c.DBPath
	}
	return DefaultDBPath
}

// GetMinClaimsForDetail returns the minimum claims a warranty needs before it
// receives the full breakdown instead of a basic summary.
func (c *Config) GetMinClaimsForDetail() int {
	if c.MinClaimsForDetail != nil {
		return *c.MinClaimsForDetail
	}
	return DefaultMinClaimsForDetail
}

// GetTopN returns how many rows ranked chart listings display.
func (c *Config) GetTopN() int {
	if c.TopN != nil {
		return *c.TopN
	}
	return DefaultTopN
}

// GetAgeBinEdges returns the age bucket edges.
func (c *Config) GetAgeBinEdges() []int {
	if len(c.AgeBinEdges) > 0 {
		return c.AgeBinEdges
	}
	return defaultAgeBinEdges
}

// GetAgeBinLabels returns the age bucket labels.
func (c *Config) GetAgeBinLabels() []string {
	if len(c.AgeBinLabels) > 0 {
		return c.AgeBinLabels
	}
	return defaultAgeBinLabels
}
