// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportsPositionalArgs(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"3.5.0", true},
		{"3.5.1", true},
		{"4.0.0-preview1", true},
		{"3.4.1", false},
		{"3.5.0-SNAPSHOT", true},
	}
	for _, tt := range tests {
		got, err := SupportsPositionalArgs(tt.version)
		require.NoError(t, err, tt.version)
		assert.Equal(t, tt.want, got, tt.version)
	}

	_, err := SupportsPositionalArgs("not a version")
	assert.Error(t, err)
}
