// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestStoreRoundTrip(t *testing.T) {
	s := New(keyring.NewArrayKeyring(nil))

	if _, err := s.LoadRemote(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadRemote() on empty store = %v, want ErrNotFound", err)
	}

	conn := "sc://spark.example.com:443/;token=abc;use_ssl=true"
	if err := s.SaveRemote(conn); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadRemote()
	if err != nil {
		t.Fatal(err)
	}
	if got != conn {
		t.Errorf("LoadRemote() = %q, want %q", got, conn)
	}

	if err := s.SaveExportDSN("postgres://u:p@localhost/db"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadExportDSN(); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadExportDSN() after Clear = %v, want ErrNotFound", err)
	}
}

func TestLoadBlankValue(t *testing.T) {
	s := New(keyring.NewArrayKeyring([]keyring.Item{{Key: KeyRemote, Data: []byte("  \n")}}))
	if _, err := s.LoadRemote(); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadRemote() = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingKey(t *testing.T) {
	s := New(keyring.NewArrayKeyring(nil))
	if err := s.Delete(KeyExportDSN); err != nil {
		t.Errorf("Delete() = %v, want nil", err)
	}
}

func TestDefaultRetriesFailedOpen(t *testing.T) {
	orig := openRingF
	t.Cleanup(func() {
		openRingF = orig
		global = nil
	})

	calls := 0
	openRingF = func() (keyring.Keyring, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("locked")
		}
		return keyring.NewArrayKeyring(nil), nil
	}

	if _, err := Default(); err == nil {
		t.Fatal("first Default() succeeded, want error")
	}
	s1, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	s2, _ := Default()
	if s1 != s2 || calls != 2 {
		t.Errorf("Default() not cached: calls=%d", calls)
	}
}
