package config

import (
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/client"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/kvstore"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/photos"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/dmitrijs2005/dragoncontacts/internal/logging"
	"github.com/dmitrijs2005/dragoncontacts/internal/session"
)

// Config holds runtime settings for the contacts CLI.
//
// Units: all durations are time.Duration. An empty S3Bucket disables photo
// uploads.
type Config struct {
	Storage   string
	DSN       string
	Namespace string

	SessionLifetime      time.Duration
	RenewalWindow        time.Duration
	SessionCheckInterval time.Duration

	ViaCEPBaseURL   string
	GeocoderBaseURL string
	GeocoderAPIKey  string
	HTTPTimeout     time.Duration

	LogFormat string
	LogLevel  string

	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
	S3Bucket       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Storage = kvstore.BackendSQLite
	c.DSN = "dragoncontacts.db"
	c.Namespace = common.DefaultNamespace
	c.SessionLifetime = session.DefaultLifetime
	c.RenewalWindow = session.DefaultRenewalWindow
	c.SessionCheckInterval = time.Minute
	c.ViaCEPBaseURL = client.DefaultViaCEPBaseURL
	c.GeocoderBaseURL = client.DefaultGeocoderBaseURL
	c.HTTPTimeout = 10 * time.Second
	c.LogFormat = logging.FormatText
	c.LogLevel = logging.LevelWarn
	c.S3Region = "us-east-1"
}

// StoreOptions returns the kvstore settings.
func (c *Config) StoreOptions() kvstore.Options {
	return kvstore.Options{Backend: c.Storage, DSN: c.DSN}
}

// PhotoOptions returns the S3 settings.
func (c *Config) PhotoOptions() photos.Options {
	return photos.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
