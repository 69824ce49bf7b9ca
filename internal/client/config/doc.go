// Package config loads runtime configuration for the contacts CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// The format is chosen by extension (.yaml/.yml, otherwise JSON). Durations
// are strings like "90s" or integer nanoseconds:
//
//	storage: postgres
//	dsn: postgres://localhost:5432/contacts?sslmode=disable
//	session_lifetime: 1h
//	renewal_window: 5m
//	geocoder_api_key: xyz
//	s3_bucket: photos
//	log_level: info
//
// Environment variables are not read.
package config
