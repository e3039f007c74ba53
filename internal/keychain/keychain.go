// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain keeps sparkql secrets in the OS credential store: the saved Spark
// Connect connection string (which may carry a bearer token) and the PostgreSQL DSN
// used by result export.
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our credential store namespace.
const ServiceName = "sparkql"

// Keys used for secrets.
const (
	KeyRemote    = "spark_remote"
	KeyExportDSN = "export_dsn"
)

// ErrNotFound is returned when a key holds no value.
var ErrNotFound = errors.New("keychain: no value stored")

// Store is a thread-safe view of one keyring.
type Store struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

var (
	global    *Store
	globalMu  sync.Mutex
	openRingF = openRing
)

// New wraps ring. Tests pass a keyring.NewArrayKeyring.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Default returns the process-wide store backed by the OS keyring. A failed open is
// retried on the next call.
func Default() (*Store, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return global, nil
	}
	ring, err := openRingF()
	if err != nil {
		return nil, err
	}
	global = New(ring)
	return global, nil
}

func backends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}
}

func openRing() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         backends(),
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: ServiceName,
	})
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable; install 'pass' as a fallback: brew install pass gnupg && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// Save stores value under key.
func (s *Store) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

// Load returns the value under key, or ErrNotFound.
func (s *Store) Load(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(string(it.Data))
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// SaveRemote stores the Spark Connect connection string.
func (s *Store) SaveRemote(conn string) error { return s.Save(KeyRemote, conn) }

// LoadRemote returns the saved connection string.
func (s *Store) LoadRemote() (string, error) { return s.Load(KeyRemote) }

// SaveExportDSN stores the PostgreSQL DSN used by --into.
func (s *Store) SaveExportDSN(dsn string) error { return s.Save(KeyExportDSN, dsn) }

// LoadExportDSN returns the saved export DSN.
func (s *Store) LoadExportDSN() (string, error) { return s.Load(KeyExportDSN) }

// Clear removes every sparkql secret.
func (s *Store) Clear() error {
	return errors.Join(s.Delete(KeyRemote), s.Delete(KeyExportDSN))
}
