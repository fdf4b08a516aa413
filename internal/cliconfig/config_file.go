package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	FragmentLen  int    `toml:"fragment_len"`
	MaxDegree    int    `toml:"max_degree"`
	RefreshSpeed string `toml:"refresh_speed"`
	ListenAddr   string `toml:"listen"`
	Watch        *bool  `toml:"watch"`
	ScanDir      string `toml:"scan_dir"`
	Udev         *bool  `toml:"udev"`
	Out          string `toml:"out"`
	Force        *bool  `toml:"force"`
	LogLevel     string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.qrship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".qrship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("scan-dir", fc.ScanDir, &cfg.ScanDir)
	s.setString("out", fc.Out, &cfg.Out)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("refresh-speed", fc.RefreshSpeed, &cfg.RefreshSpeed); err != nil {
		return err
	}

	s.setInt("fragment-len", fc.FragmentLen, &cfg.FragmentLen)
	s.setInt("max-degree", fc.MaxDegree, &cfg.MaxDegree)

	s.setBool("watch", fc.Watch, &cfg.Watch)
	s.setBool("udev", fc.Udev, &cfg.Udev)
	s.setBool("force", fc.Force, &cfg.Force)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
