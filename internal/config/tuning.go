package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for analysis tuning
// parameters. Fields are pointer-typed so a partial JSON file only
// overrides what it names; the Get* methods supply defaults for the
// rest.
type TuningConfig struct {
	// Capture params
	DefaultFPS *float64 `json:"default_fps,omitempty"`

	// Pre-pass params
	SmoothRotations *bool    `json:"smooth_rotations,omitempty"`
	SmoothingSigma  *float64 `json:"smoothing_sigma,omitempty"`
	RefinePlane     *bool    `json:"refine_plane,omitempty"`
	PlaneStrength   *float64 `json:"plane_strength,omitempty"`

	// Scoring params
	DefaultView *string `json:"default_view,omitempty"` // "frontal" or "lateral"

	// Server params
	ListenAddr   *string `json:"listen_addr,omitempty"`
	DatabasePath *string `json:"database_path,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches for the file in the current directory
// and common parent directories. Panics if the file cannot be loaded;
// intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.DefaultFPS != nil && *c.DefaultFPS <= 0 {
		return fmt.Errorf("default_fps must be positive, got %f", *c.DefaultFPS)
	}
	if c.SmoothingSigma != nil && *c.SmoothingSigma <= 0 {
		return fmt.Errorf("smoothing_sigma must be positive, got %f", *c.SmoothingSigma)
	}
	if c.PlaneStrength != nil {
		if *c.PlaneStrength < 0 || *c.PlaneStrength > 1 {
			return fmt.Errorf("plane_strength must be between 0 and 1, got %f", *c.PlaneStrength)
		}
	}
	if c.DefaultView != nil {
		switch *c.DefaultView {
		case "", "frontal", "lateral":
		default:
			return fmt.Errorf("default_view must be \"frontal\" or \"lateral\", got %q", *c.DefaultView)
		}
	}
	return nil
}

// GetDefaultFPS returns the default_fps value or the default.
func (c *TuningConfig) GetDefaultFPS() float64 {
	if c.DefaultFPS == nil {
		return 30.0 // default
	}
	return *c.DefaultFPS
}

// GetSmoothRotations returns the smooth_rotations value or the default.
func (c *TuningConfig) GetSmoothRotations() bool {
	if c.SmoothRotations == nil {
		return true // default: smooth when rotations are present
	}
	return *c.SmoothRotations
}

// GetSmoothingSigma returns the smoothing_sigma value or the default.
func (c *TuningConfig) GetSmoothingSigma() float64 {
	if c.SmoothingSigma == nil {
		return 2.0 // default
	}
	return *c.SmoothingSigma
}

// GetRefinePlane returns the refine_plane value or the default.
func (c *TuningConfig) GetRefinePlane() bool {
	if c.RefinePlane == nil {
		return false // default: refinement is opt-in
	}
	return *c.RefinePlane
}

// GetPlaneStrength returns the plane_strength value or the default.
func (c *TuningConfig) GetPlaneStrength() float64 {
	if c.PlaneStrength == nil {
		return 0.4 // default
	}
	return *c.PlaneStrength
}

// GetDefaultView returns the default_view value or the default.
func (c *TuningConfig) GetDefaultView() string {
	if c.DefaultView == nil || *c.DefaultView == "" {
		return "frontal" // default
	}
	return *c.DefaultView
}

// GetListenAddr returns the listen_addr value or the default.
func (c *TuningConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080" // default
	}
	return *c.ListenAddr
}

// GetDatabasePath returns the database_path value or the default.
func (c *TuningConfig) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return "swing_reports.db" // default
	}
	return *c.DatabasePath
}
