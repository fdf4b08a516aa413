package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (QRSHIP_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", os.Getenv("QRSHIP_LISTEN"), &cfg.ListenAddr)
	s.setString("scan-dir", os.Getenv("QRSHIP_SCAN_DIR"), &cfg.ScanDir)
	s.setString("out", os.Getenv("QRSHIP_OUT"), &cfg.Out)
	s.setString("log-level", os.Getenv("QRSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("refresh-speed", os.Getenv("QRSHIP_REFRESH_SPEED"), &cfg.RefreshSpeed); err != nil {
		return err
	}
	if err := s.setIntFromString("fragment-len", os.Getenv("QRSHIP_FRAGMENT_LEN"), &cfg.FragmentLen); err != nil {
		return err
	}
	if err := s.setIntFromString("max-degree", os.Getenv("QRSHIP_MAX_DEGREE"), &cfg.MaxDegree); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("QRSHIP_WATCH"), &cfg.Watch)
	s.setBoolFromString("udev", os.Getenv("QRSHIP_UDEV"), &cfg.Udev)
	s.setBoolFromString("force", os.Getenv("QRSHIP_FORCE"), &cfg.Force)

	return nil
}
