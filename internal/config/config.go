package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tool settings. Defaults describe the production archive;
// a YAML file named by RADARPOINT_CONFIG overrides defaults, and RADARPOINT_*
// environment variables override both.
type Config struct {
	// Input directory and container layout.
	DataDir     string
	FileSuffix  string
	DatasetPath string
	WhereGroup  string
	WhatGroup   string
	HowGroup    string

	// Extraction parameters.
	TargetLat    float64
	TargetLon    float64
	ThresholdDBZ float64

	// FailFast aborts the whole scan on the first unreadable or unprojectable
	// file. When false such files are logged and skipped.
	FailFast bool

	// Archive download settings.
	ServerURL   string
	HTTPTimeout time.Duration

	LogLevel  string
	LogFormat string

	// PushgatewayURL enables run-metrics push when non-empty.
	PushgatewayURL string
}

// fileConfig is the YAML shape. Pointer fields distinguish "absent" from an
// explicit zero so a file can turn fail_fast off or set a zero threshold.
type fileConfig struct {
	DataDir        *string  `yaml:"data_dir"`
	FileSuffix     *string  `yaml:"file_suffix"`
	DatasetPath    *string  `yaml:"dataset_path"`
	WhereGroup     *string  `yaml:"where_group"`
	WhatGroup      *string  `yaml:"what_group"`
	HowGroup       *string  `yaml:"how_group"`
	TargetLat      *float64 `yaml:"target_lat"`
	TargetLon      *float64 `yaml:"target_lon"`
	ThresholdDBZ   *float64 `yaml:"threshold_dbz"`
	FailFast       *bool    `yaml:"fail_fast"`
	ServerURL      *string  `yaml:"server_url"`
	HTTPTimeout    *string  `yaml:"http_timeout"`
	LogLevel       *string  `yaml:"log_level"`
	LogFormat      *string  `yaml:"log_format"`
	PushgatewayURL *string  `yaml:"pushgateway_url"`
}

func defaults() *Config {
	return &Config{
		DataDir:      "./datafiles",
		FileSuffix:   ".h5",
		DatasetPath:  "/dataset1/data1/data",
		WhereGroup:   "/where",
		WhatGroup:    "/dataset1/what",
		HowGroup:     "/how",
		TargetLat:    43.492543,
		TargetLon:    25.500355,
		ThresholdDBZ: 40,
		FailFast:     true,
		ServerURL:    "http://83.228.89.166/",
		HTTPTimeout:  60 * time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load builds the configuration: defaults, then the optional YAML file named
// by RADARPOINT_CONFIG, then RADARPOINT_* environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("RADARPOINT_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.DataDir, fc.DataDir)
	setString(&c.FileSuffix, fc.FileSuffix)
	setString(&c.DatasetPath, fc.DatasetPath)
	setString(&c.WhereGroup, fc.WhereGroup)
	setString(&c.WhatGroup, fc.WhatGroup)
	setString(&c.HowGroup, fc.HowGroup)
	setFloat(&c.TargetLat, fc.TargetLat)
	setFloat(&c.TargetLon, fc.TargetLon)
	setFloat(&c.ThresholdDBZ, fc.ThresholdDBZ)
	setString(&c.ServerURL, fc.ServerURL)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.PushgatewayURL, fc.PushgatewayURL)
	if fc.FailFast != nil {
		c.FailFast = *fc.FailFast
	}
	if fc.HTTPTimeout != nil {
		d, err := time.ParseDuration(*fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("config file http_timeout: %w", err)
		}
		c.HTTPTimeout = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	applyString(&c.DataDir, "RADARPOINT_DATA_DIR")
	applyString(&c.FileSuffix, "RADARPOINT_FILE_SUFFIX")
	applyString(&c.DatasetPath, "RADARPOINT_DATASET_PATH")
	applyString(&c.WhereGroup, "RADARPOINT_WHERE_GROUP")
	applyString(&c.WhatGroup, "RADARPOINT_WHAT_GROUP")
	applyString(&c.HowGroup, "RADARPOINT_HOW_GROUP")
	applyString(&c.ServerURL, "RADARPOINT_SERVER_URL")
	applyString(&c.LogLevel, "RADARPOINT_LOG_LEVEL")
	applyString(&c.LogFormat, "RADARPOINT_LOG_FORMAT")
	applyString(&c.PushgatewayURL, "RADARPOINT_PUSHGATEWAY_URL")

	if err := applyFloat(&c.TargetLat, "RADARPOINT_TARGET_LAT"); err != nil {
		return err
	}
	if err := applyFloat(&c.TargetLon, "RADARPOINT_TARGET_LON"); err != nil {
		return err
	}
	if err := applyFloat(&c.ThresholdDBZ, "RADARPOINT_THRESHOLD_DBZ"); err != nil {
		return err
	}
	if err := applyBool(&c.FailFast, "RADARPOINT_FAIL_FAST"); err != nil {
		return err
	}
	if err := applyDuration(&c.HTTPTimeout, "RADARPOINT_HTTP_TIMEOUT"); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return errors.New("data dir is required")
	}
	if c.FileSuffix == "" {
		return errors.New("file suffix is required")
	}
	if c.DatasetPath == "" || c.WhereGroup == "" || c.WhatGroup == "" || c.HowGroup == "" {
		return errors.New("container paths (dataset, where, what, how) are required")
	}
	if c.TargetLat < -90 || c.TargetLat > 90 {
		return fmt.Errorf("target lat %v out of range [-90, 90]", c.TargetLat)
	}
	if c.TargetLon < -180 || c.TargetLon > 180 {
		return fmt.Errorf("target lon %v out of range [-180, 180]", c.TargetLon)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server url %q is not a valid http(s) URL", c.ServerURL)
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func applyString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}

func applyBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func applyDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
