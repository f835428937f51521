package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"usbkey/internal/utils"
)

const (
	PathDefault         = "/etc/usb-key.conf"
	DeviceDirDefault    = "/dev/disk/by-uuid"
	MountPointDefault   = "/mnt"
	FSTypeDefault       = "ext4"
	ProbeTimeoutDefault = 10 * time.Second

	// EnvPath overrides PathDefault when no path is given on the command line.
	EnvPath = "USBKEY_CONFIG"

	// Placeholder is stored for USB/KEY when the file does not set them.
	// It never matches a real device.
	Placeholder = "(null)"
)

var ErrConfig = errors.New("config error")

// Config is loaded once and not modified afterwards.
type Config struct {
	TargetIdentifier string        `yaml:"usb"`
	KeyPath          string        `yaml:"key"`
	FSType           string        `yaml:"fstype"`
	MountPoint       string        `yaml:"mount"`
	DeviceDir        string        `yaml:"devdir"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	ReadOnly         bool          `yaml:"readonly"`
}

func Default() Config {
	return Config{
		TargetIdentifier: Placeholder,
		KeyPath:          Placeholder,
		FSType:           FSTypeDefault,
		MountPoint:       MountPointDefault,
		DeviceDir:        DeviceDirDefault,
		ProbeTimeout:     ProbeTimeoutDefault,
		ReadOnly:         true,
	}
}

// Path picks the config file: explicit argument, then $USBKEY_CONFIG, then
// PathDefault.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return PathDefault
}

// Load reads a config file. Files ending in .yaml/.yml are YAML, anything
// else is KEY=VALUE.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = FromYAML(data)
	default:
		cfg, err = FromKV(string(data))
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	return cfg, nil
}

// FromKV parses the KEY=VALUE format. USB and KEY are the two keys the
// unlock flow needs; FSTYPE, MOUNT, DEVDIR, PROBE_TIMEOUT and READONLY are
// optional.
func FromKV(content string) (Config, error) {
	cfg := Default()
	kv := utils.ParseKVEq(content)

	if v, ok := kv["USB"]; ok {
		cfg.TargetIdentifier = v
	}
	if v, ok := kv["KEY"]; ok {
		cfg.KeyPath = v
	}
	if v := kv["FSTYPE"]; v != "" {
		cfg.FSType = v
	}
	if v := kv["MOUNT"]; v != "" {
		cfg.MountPoint = v
	}
	if v := kv["DEVDIR"]; v != "" {
		cfg.DeviceDir = v
	}
	if v := kv["PROBE_TIMEOUT"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("PROBE_TIMEOUT: %w", err)
		}
		cfg.ProbeTimeout = d
	}
	if v := kv["READONLY"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("READONLY: %w", err)
		}
		cfg.ReadOnly = b
	}
	return cfg, cfg.validate()
}

// FromYAML parses the YAML form. Keys are the lower-case KEY=VALUE names.
func FromYAML(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.TargetIdentifier == "" {
		cfg.TargetIdentifier = Placeholder
	}
	if cfg.KeyPath == "" {
		cfg.KeyPath = Placeholder
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.FSType == "" {
		return errors.New("filesystem type is empty")
	}
	if c.MountPoint == "" {
		return errors.New("mount point is empty")
	}
	if c.DeviceDir == "" {
		return errors.New("device directory is empty")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	return nil
}

// Unset reports whether the target identifier was never configured.
func (c Config) Unset() bool {
	return c.TargetIdentifier == "" || c.TargetIdentifier == Placeholder
}
