package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/flagx"
)

var knownFlags = []string{
	"-s", "-d", "-n",
	"-l", "-w", "-i",
	"-v", "-g", "-k", "-t",
	"-f", "-L",
	"-r", "-u", "-p", "-e", "-b",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   storage backend (memory, sqlite, postgres)
//	-d string   storage DSN: SQLite file path or PostgreSQL URL
//	-n string   contacts namespace
//	-l int      session lifetime (seconds)
//	-w int      session renewal window (seconds)
//	-i int      session check interval (seconds)
//	-v string   ViaCEP base URL
//	-g string   geocoder base URL
//	-k string   geocoder API key
//	-t int      HTTP timeout (seconds)
//	-f string   log format (text, json, zap)
//	-L string   log level (debug, info, warn, error)
//	-r string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//	-e string   S3 base endpoint
//	-b string   S3 bucket
//
// os.Args is filtered through flagx.FilterArgs first, so -c/-config and
// unknown flags do not interfere.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "storage backend: memory, sqlite or postgres")
	fs.StringVar(&cfg.DSN, "d", cfg.DSN, "storage DSN")
	fs.StringVar(&cfg.Namespace, "n", cfg.Namespace, "contacts namespace")

	lifetime := fs.Int("l", seconds(cfg.SessionLifetime), "session lifetime (in seconds)")
	window := fs.Int("w", seconds(cfg.RenewalWindow), "session renewal window (in seconds)")
	interval := fs.Int("i", seconds(cfg.SessionCheckInterval), "session check interval (in seconds)")

	fs.StringVar(&cfg.ViaCEPBaseURL, "v", cfg.ViaCEPBaseURL, "ViaCEP base URL")
	fs.StringVar(&cfg.GeocoderBaseURL, "g", cfg.GeocoderBaseURL, "geocoder base URL")
	fs.StringVar(&cfg.GeocoderAPIKey, "k", cfg.GeocoderAPIKey, "geocoder API key")
	timeout := fs.Int("t", seconds(cfg.HTTPTimeout), "HTTP timeout (in seconds)")

	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format: text, json or zap")
	fs.StringVar(&cfg.LogLevel, "L", cfg.LogLevel, "log level: debug, info, warn or error")

	fs.StringVar(&cfg.S3Region, "r", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for contact photos")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.SessionLifetime = time.Duration(*lifetime) * time.Second
	cfg.RenewalWindow = time.Duration(*window) * time.Second
	cfg.SessionCheckInterval = time.Duration(*interval) * time.Second
	cfg.HTTPTimeout = time.Duration(*timeout) * time.Second

	return nil
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
