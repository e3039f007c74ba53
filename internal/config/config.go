// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads CLI settings from config.json in the XDG config dir, SPARKQL_*
// environment variables and .env files. Secrets are not kept here; they go to the OS
// keychain.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"sparkql/client/internal/xdg"
)

// AppFs is the filesystem config and .env files are read from.
var AppFs = afero.NewOsFs()

// EnvPrefix prefixes environment overrides, e.g. SPARKQL_OUTPUT_FORMAT.
const EnvPrefix = "SPARKQL"

const fileName = "config.json"

// Config holds non-secret CLI settings.
type Config struct {
	// Remote is a connection string without a token. Connection strings carrying
	// secrets are stored in the keychain instead.
	Remote        string
	LogLevel      string
	Format        string
	MaxRows       int
	Timeout       time.Duration
	ValidatePlans bool
	ExportMode    string
}

func defaults(v *viper.Viper) {
	v.SetDefault("spark.remote", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("output.format", "table")
	v.SetDefault("output.max_rows", 1000)
	v.SetDefault("query.timeout", "0s")
	v.SetDefault("query.validate_plans", false)
	v.SetDefault("export.mode", "create")
}

// Load reads the configuration. A missing config file yields the defaults.
func Load() (Config, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads dir/config.json, after loading .env and .env.local from the working
// directory. Variables already in the environment win over .env; .env.local wins over both.
func LoadFrom(dir string) (Config, error) {
	if err := loadDotenv(".env", false); err != nil {
		return Config{}, err
	}
	if err := loadDotenv(".env.local", true); err != nil {
		return Config{}, err
	}

	v := newViper(dir)
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	return Config{
		Remote:        v.GetString("spark.remote"),
		LogLevel:      v.GetString("log_level"),
		Format:        v.GetString("output.format"),
		MaxRows:       v.GetInt("output.max_rows"),
		Timeout:       v.GetDuration("query.timeout"),
		ValidatePlans: v.GetBool("query.validate_plans"),
		ExportMode:    v.GetString("export.mode"),
	}, nil
}

// Save writes c to the XDG config dir with mode 0600.
func Save(c Config) error {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return err
	}
	return SaveTo(dir, c)
}

// SaveTo writes c to dir/config.json.
func SaveTo(dir string, c Config) error {
	v := newViper(dir)
	v.Set("spark.remote", c.Remote)
	v.Set("log_level", c.LogLevel)
	v.Set("output.format", c.Format)
	v.Set("output.max_rows", c.MaxRows)
	v.Set("query.timeout", c.Timeout.String())
	v.Set("query.validate_plans", c.ValidatePlans)
	v.Set("export.mode", c.ExportMode)
	if err := AppFs.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return v.WriteConfigAs(filepath.Join(dir, fileName))
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	v.SetConfigPermissions(0o600)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)
	return v
}

func loadDotenv(name string, override bool) error {
	f, err := AppFs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return err
	}
	for k, val := range vars {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}
