// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"sparkql/client/internal/terminal"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startSpinner shows text behind an animated frame with the elapsed time until the
// returned stop function is called. Nothing is drawn when stdout is not a terminal.
func startSpinner(text string) (stop func()) {
	if !terminal.Interactive() {
		return func() {}
	}
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for i := 0; ; i++ {
			select {
			case <-t.C:
				area.Update(fmt.Sprintf("%s %s %s", spinnerFrames[i%len(spinnerFrames)], text,
					pterm.Gray(fmt.Sprintf("(%.1fs)", time.Since(start).Seconds()))))
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			_ = area.Stop()
			cursor.Show()
		})
	}
}

func printSuccess(format string, a ...any) {
	pterm.Println("✅ " + fmt.Sprintf(format, a...))
}

func printWarning(format string, a ...any) {
	pterm.Println("⚠️  " + fmt.Sprintf(format, a...))
}

func printHint(format string, a ...any) {
	pterm.Println("   " + fmt.Sprintf(format, a...))
}
