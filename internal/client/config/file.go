package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/dragoncontacts/internal/flagx"
	"github.com/dmitrijs2005/dragoncontacts/internal/timex"
)

// fileConfig is a DTO used only for decoding config files. Durations use
// timex.Duration so they can be written as "90s" or integer nanoseconds.
type fileConfig struct {
	Storage   string `json:"storage" yaml:"storage"`
	DSN       string `json:"dsn" yaml:"dsn"`
	Namespace string `json:"namespace" yaml:"namespace"`

	SessionLifetime      timex.Duration `json:"session_lifetime" yaml:"session_lifetime"`
	RenewalWindow        timex.Duration `json:"renewal_window" yaml:"renewal_window"`
	SessionCheckInterval timex.Duration `json:"session_check_interval" yaml:"session_check_interval"`

	ViaCEPBaseURL   string         `json:"viacep_base_url" yaml:"viacep_base_url"`
	GeocoderBaseURL string         `json:"geocoder_base_url" yaml:"geocoder_base_url"`
	GeocoderAPIKey  string         `json:"geocoder_api_key" yaml:"geocoder_api_key"`
	HTTPTimeout     timex.Duration `json:"http_timeout" yaml:"http_timeout"`

	LogFormat string `json:"log_format" yaml:"log_format"`
	LogLevel  string `json:"log_level" yaml:"log_level"`

	S3Region       string `json:"s3_region" yaml:"s3_region"`
	S3AccessKey    string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3BaseEndpoint string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3Bucket       string `json:"s3_bucket" yaml:"s3_bucket"`
}

// parseFile overlays Config with values from the file named by -c/-config.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// Keys absent from the file leave the current value untouched.
func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.Storage, fc.Storage)
	setString(&cfg.DSN, fc.DSN)
	setString(&cfg.Namespace, fc.Namespace)

	setDuration(&cfg.SessionLifetime, fc.SessionLifetime)
	setDuration(&cfg.RenewalWindow, fc.RenewalWindow)
	setDuration(&cfg.SessionCheckInterval, fc.SessionCheckInterval)

	setString(&cfg.ViaCEPBaseURL, fc.ViaCEPBaseURL)
	setString(&cfg.GeocoderBaseURL, fc.GeocoderBaseURL)
	setString(&cfg.GeocoderAPIKey, fc.GeocoderAPIKey)
	setDuration(&cfg.HTTPTimeout, fc.HTTPTimeout)

	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogLevel, fc.LogLevel)

	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
	setString(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&cfg.S3Bucket, fc.S3Bucket)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
