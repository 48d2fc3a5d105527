// SPDX-License-Identifier: Apache-2.0

// Package config loads service settings from defaults, an optional config
// file, a .env file and APPT_* environment variables, in increasing order of
// precedence. Command-line flags bound with BindPFlag override all of them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "APPT"

// Keys understood by Load.
const (
	KeyTimezone        = "timezone"
	KeyDefaultYear     = "default_year"
	KeyDepartmentsFile = "departments_file"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyLogFile         = "log.file"
	KeyOCREndpoint     = "ocr.endpoint"
	KeyOCRToken        = "ocr.token"
	KeyOCRTimeout      = "ocr.timeout"
	KeyOCRStrict       = "ocr.strict"
	KeyMaxImageBytes   = "intake.max_image_bytes"
)

// Config holds all service configuration.
type Config struct {
	Timezone string
	Location *time.Location
	// DefaultYear is assumed for absolute dates written without a year.
	DefaultYear int
	// DepartmentsFile replaces the built-in department table when set.
	DepartmentsFile string
	Log             LogConfig
	OCR             OCRConfig
	Intake          IntakeConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
	File   string // empty logs to stderr
}

// OCRConfig holds settings for the remote OCR engine.
type OCRConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
	Strict   bool
}

// IntakeConfig holds submission limits.
type IntakeConfig struct {
	MaxImageBytes int
}

// NewViper returns a viper instance with defaults and environment binding in
// place.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyTimezone, "Asia/Kolkata")
	v.SetDefault(KeyDefaultYear, 2023)
	v.SetDefault(KeyDepartmentsFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyOCREndpoint, "")
	v.SetDefault(KeyOCRToken, "")
	v.SetDefault(KeyOCRTimeout, "10s")
	v.SetDefault(KeyOCRStrict, false)
	v.SetDefault(KeyMaxImageBytes, 5<<20)
	return v
}

// LoadDotEnv copies variables from the given .env files (default ".env")
// into the process environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configFile (if not empty) into v and returns the validated
// configuration.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Config{
		Timezone:        v.GetString(KeyTimezone),
		DefaultYear:     v.GetInt(KeyDefaultYear),
		DepartmentsFile: v.GetString(KeyDepartmentsFile),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
			File:   v.GetString(KeyLogFile),
		},
		OCR: OCRConfig{
			Endpoint: v.GetString(KeyOCREndpoint),
			Token:    v.GetString(KeyOCRToken),
			Timeout:  v.GetDuration(KeyOCRTimeout),
			Strict:   v.GetBool(KeyOCRStrict),
		},
		Intake: IntakeConfig{
			MaxImageBytes: v.GetInt(KeyMaxImageBytes),
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || c.Timezone == "" {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	c.Location = loc

	if c.DefaultYear < 1 || c.DefaultYear > 9999 {
		return fmt.Errorf("default_year must be between 1 and 9999, got %d", c.DefaultYear)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.OCR.Timeout <= 0 {
		return fmt.Errorf("ocr.timeout must be positive, got %s", c.OCR.Timeout)
	}
	if c.Intake.MaxImageBytes <= 0 {
		return fmt.Errorf("intake.max_image_bytes must be positive, got %d", c.Intake.MaxImageBytes)
	}
	return nil
}
