package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				FragmentLen:  200,
				MaxDegree:    4,
				RefreshSpeed: "250ms",
				ListenAddr:   ":9000",
				Watch:        &trueVal,
				ScanDir:      "/scans",
				Udev:         &trueVal,
				Out:          "out.bin",
				Force:        &falseVal,
				LogLevel:     "debug",
			},
			changed: map[string]bool{},
			initial: Config{Force: true},
			expected: Config{
				FragmentLen:  200,
				MaxDegree:    4,
				RefreshSpeed: 250 * time.Millisecond,
				ListenAddr:   ":9000",
				Watch:        true,
				ScanDir:      "/scans",
				Udev:         true,
				Out:          "out.bin",
				Force:        false,
				LogLevel:     "debug",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				FragmentLen: 200,
				ScanDir:     "/config/scans",
				Watch:       &trueVal,
			},
			changed: map[string]bool{"fragment-len": true, "watch": true},
			initial: Config{FragmentLen: 50},
			expected: Config{
				FragmentLen: 50, // unchanged because flag was set
				ScanDir:     "/config/scans",
			},
		},
		{
			name:       "ignores empty and non-positive values",
			fileConfig: FileConfig{MaxDegree: -1},
			changed:    map[string]bool{},
			initial:    Config{MaxDegree: 8, ListenAddr: "x"},
			expected:   Config{MaxDegree: 8, ListenAddr: "x"},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{RefreshSpeed: "fast"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyFileConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyFileConfig() unexpected error: %v", err)
				return
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("Config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
fragment_len = 120
max_degree = 6
refresh_speed = "80ms"
listen = "0.0.0.0:8420"
scan_dir = "/var/spool/qrship"
udev = true
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.FragmentLen != 120 {
		t.Errorf("FragmentLen = %v, want 120", fc.FragmentLen)
	}
	if fc.MaxDegree != 6 {
		t.Errorf("MaxDegree = %v, want 6", fc.MaxDegree)
	}
	if fc.RefreshSpeed != "80ms" {
		t.Errorf("RefreshSpeed = %v, want 80ms", fc.RefreshSpeed)
	}
	if fc.ListenAddr != "0.0.0.0:8420" {
		t.Errorf("ListenAddr = %v, want 0.0.0.0:8420", fc.ListenAddr)
	}
	if fc.ScanDir != "/var/spool/qrship" {
		t.Errorf("ScanDir = %v", fc.ScanDir)
	}
	if fc.Udev == nil || !*fc.Udev {
		t.Errorf("Udev = %v, want true", fc.Udev)
	}
	if fc.Force != nil {
		t.Errorf("Force = %v, want nil when absent", fc.Force)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
fragment_len = 10
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".qrship") {
		t.Errorf("DefaultConfigPath() = %v, should contain .qrship", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
