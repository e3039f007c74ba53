// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides small terminal helpers for prompts and spinners.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Interactive reports whether stdout is a terminal. Spinners and prompts are only
// shown when it is.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Width returns the terminal width, or 80 when it cannot be determined.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// LinesFor returns how many terminal lines textLength characters occupy at width,
// plus the line the cursor moves to after Enter.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	lines := (textLength + width - 1) / width
	if lines < 1 {
		lines = 1
	}
	return lines + 1
}

// ClearPreviousLines erases a prompt of textLength characters (prompt plus input)
// that the user just submitted.
func ClearPreviousLines(textLength int) {
	clearLines(os.Stdout, LinesFor(textLength, Width()))
}

func clearLines(w io.Writer, n int) {
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
