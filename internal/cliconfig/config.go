package cliconfig

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultListenAddr is where `qrship send` serves the playback page.
const DefaultListenAddr = "127.0.0.1:8420"

// Config holds CLI configuration for qrship.
type Config struct {
	FragmentLen  int
	MaxDegree    int
	RefreshSpeed time.Duration

	ListenAddr string
	Watch      bool

	ScanDir string
	Udev    bool
	Out     string
	Force   bool

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		FragmentLen:  100,
		MaxDegree:    8,
		RefreshSpeed: 100 * time.Millisecond,
		ListenAddr:   DefaultListenAddr,
		LogLevel:     "info",
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	if c.FragmentLen <= 0 {
		return fmt.Errorf("fragment length must be positive")
	}
	if c.MaxDegree <= 0 || c.MaxDegree > math.MaxUint16 {
		return fmt.Errorf("max degree must be between 1 and %d", math.MaxUint16)
	}
	if c.RefreshSpeed <= 0 {
		return fmt.Errorf("refresh speed must be positive")
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
