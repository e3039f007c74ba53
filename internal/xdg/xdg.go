// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves the XDG base directories used by sparkql: the config dir for
// config.json and the state dir for the shell history.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// AppName is the directory name under each base dir.
const AppName = "sparkql"

// ConfigDir returns $XDG_CONFIG_HOME/sparkql, falling back to ~/.config/sparkql.
// The directory is created with mode 0700 if missing.
func ConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/sparkql, falling back to ~/.local/state/sparkql.
func StateDir() (string, error) {
	return appDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func appDir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
