// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLinesFor(t *testing.T) {
	tests := []struct {
		length, width, want int
	}{
		{0, 80, 2},
		{80, 80, 2},
		{81, 80, 3},
		{200, 80, 4},
		{10, 0, 2},
	}
	for _, tt := range tests {
		if got := LinesFor(tt.length, tt.width); got != tt.want {
			t.Errorf("LinesFor(%d, %d) = %d, want %d", tt.length, tt.width, got, tt.want)
		}
	}
}

func TestClearLines(t *testing.T) {
	var buf bytes.Buffer
	clearLines(&buf, 3)
	out := buf.String()
	if got := strings.Count(out, "\x1b[2K"); got != 3 {
		t.Errorf("cleared %d lines, want 3", got)
	}
	if got := strings.Count(out, "\x1b[1A"); got != 2 {
		t.Errorf("moved up %d times, want 2", got)
	}
}
