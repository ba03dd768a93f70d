package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetDefaultFPS() != 30.0 {
		t.Errorf("GetDefaultFPS() = %f, want 30.0", cfg.GetDefaultFPS())
	}
	if cfg.GetSmoothRotations() != true {
		t.Errorf("GetSmoothRotations() = %v, want true", cfg.GetSmoothRotations())
	}
	if cfg.GetSmoothingSigma() != 2.0 {
		t.Errorf("GetSmoothingSigma() = %f, want 2.0", cfg.GetSmoothingSigma())
	}
	if cfg.GetRefinePlane() != false {
		t.Errorf("GetRefinePlane() = %v, want false", cfg.GetRefinePlane())
	}
	if cfg.GetPlaneStrength() != 0.4 {
		t.Errorf("GetPlaneStrength() = %f, want 0.4", cfg.GetPlaneStrength())
	}
	if cfg.GetDefaultView() != "frontal" {
		t.Errorf("GetDefaultView() = %q, want \"frontal\"", cfg.GetDefaultView())
	}
	if cfg.GetListenAddr() != ":8080" {
		t.Errorf("GetListenAddr() = %q, want \":8080\"", cfg.GetListenAddr())
	}
	if cfg.GetDatabasePath() != "swing_reports.db" {
		t.Errorf("GetDatabasePath() = %q, want \"swing_reports.db\"", cfg.GetDatabasePath())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "default_fps": 60.0,
  "smooth_rotations": false,
  "smoothing_sigma": 1.5,
  "refine_plane": true,
  "plane_strength": 0.8,
  "default_view": "lateral",
  "listen_addr": ":9090",
  "database_path": "/tmp/swings.db"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetDefaultFPS() != 60.0 {
		t.Errorf("GetDefaultFPS() = %f, want 60.0", cfg.GetDefaultFPS())
	}
	if cfg.GetSmoothRotations() != false {
		t.Errorf("GetSmoothRotations() = %v, want false", cfg.GetSmoothRotations())
	}
	if cfg.GetSmoothingSigma() != 1.5 {
		t.Errorf("GetSmoothingSigma() = %f, want 1.5", cfg.GetSmoothingSigma())
	}
	if cfg.GetRefinePlane() != true {
		t.Errorf("GetRefinePlane() = %v, want true", cfg.GetRefinePlane())
	}
	if cfg.GetPlaneStrength() != 0.8 {
		t.Errorf("GetPlaneStrength() = %f, want 0.8", cfg.GetPlaneStrength())
	}
	if cfg.GetDefaultView() != "lateral" {
		t.Errorf("GetDefaultView() = %q, want \"lateral\"", cfg.GetDefaultView())
	}
	if cfg.GetListenAddr() != ":9090" {
		t.Errorf("GetListenAddr() = %q, want \":9090\"", cfg.GetListenAddr())
	}
	if cfg.GetDatabasePath() != "/tmp/swings.db" {
		t.Errorf("GetDatabasePath() = %q, want \"/tmp/swings.db\"", cfg.GetDatabasePath())
	}
}

func TestLoadTuningConfigPartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	// Only one field set; everything else falls back to defaults.
	if err := os.WriteFile(configPath, []byte(`{"plane_strength": 0.2}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetPlaneStrength() != 0.2 {
		t.Errorf("GetPlaneStrength() = %f, want 0.2", cfg.GetPlaneStrength())
	}
	if cfg.GetDefaultFPS() != 30.0 {
		t.Errorf("GetDefaultFPS() = %f, want default 30.0", cfg.GetDefaultFPS())
	}
	if cfg.SmoothingSigma != nil {
		t.Errorf("SmoothingSigma should be nil for partial config, got %v", *cfg.SmoothingSigma)
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigRejectsBadFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// Wrong extension.
	if _, err := LoadTuningConfig(filepath.Join(tmpDir, "config.yaml")); err == nil {
		t.Error("Expected error for non-json extension, got nil")
	}

	// Invalid JSON.
	badPath := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(badPath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuningConfig(badPath); err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{"empty is valid", EmptyTuningConfig(), false},
		{"negative fps", &TuningConfig{DefaultFPS: ptrFloat64(-1)}, true},
		{"zero sigma", &TuningConfig{SmoothingSigma: ptrFloat64(0)}, true},
		{"strength above one", &TuningConfig{PlaneStrength: ptrFloat64(1.5)}, true},
		{"strength in range", &TuningConfig{PlaneStrength: ptrFloat64(0.5)}, false},
		{"bad view", &TuningConfig{DefaultView: ptrString("overhead")}, true},
		{"lateral view", &TuningConfig{DefaultView: ptrString("lateral")}, false},
		{"smoothing off", &TuningConfig{SmoothRotations: ptrBool(false)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetDefaultFPS() != 30.0 {
		t.Errorf("defaults file default_fps = %f, want 30.0", cfg.GetDefaultFPS())
	}
	if cfg.GetDefaultView() != "frontal" {
		t.Errorf("defaults file default_view = %q, want \"frontal\"", cfg.GetDefaultView())
	}
}
