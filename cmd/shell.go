// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	errs "sparkql/client/internal/errors"
	"sparkql/client/internal/logging"
	"sparkql/client/internal/render"
	"sparkql/client/internal/sqltext"
	"sparkql/client/internal/xdg"
	"sparkql/client/spark"
)

const shellHelp = `Statements end with ';' and may span several lines.

  \bind type:value ...  bind parameters for the next statement
  \format NAME          table, plain, json or csv
  \conf KEY ...         show Spark configuration values
  \set KEY=VALUE ...    set Spark configuration values
  \info                 show session details
  \q                    quit`

// shellCmd starts an interactive SQL prompt on one session.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive SQL prompt on one Spark session",
	Long: `The shell command opens one Spark Connect session and reads SQL statements from an
interactive prompt. Temporary views and configuration set in one statement stay visible
to the next. Ctrl-C cancels the running statement; \q or Ctrl-D leaves the shell.

` + shellHelp,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ctrl-C cancels single statements here, not the shell.
		base := context.WithoutCancel(cmd.Context())

		f, err := render.ParseFormat(cfg.Format)
		if err != nil {
			return err
		}

		remote, _ := resolveRemote()
		s, err := connectSession(base, remote)
		if err != nil {
			return err
		}
		defer s.Close()

		l, err := readline.NewEx(&readline.Config{
			Prompt:          "spark> ",
			HistoryFile:     historyFile(),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return err
		}
		defer l.Close()

		sh := &shell{sess: s, out: os.Stdout, format: f, maxRows: cfg.MaxRows, base: base}
		fmt.Printf("Connected to %s (Spark %s). Type \\? for help.\n", s.Endpoint(), s.ServerVersion())
		return sh.loop(l)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func historyFile() string {
	dir, err := xdg.StateDir()
	if err != nil {
		return ""
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

type shell struct {
	sess    *spark.Session
	out     io.Writer
	format  render.Format
	maxRows int
	base    context.Context

	buf   strings.Builder
	binds []spark.Literal
}

func (sh *shell) loop(l *readline.Instance) error {
	for {
		if sh.buf.Len() == 0 {
			l.SetPrompt("spark> ")
		} else {
			l.SetPrompt("   ... ")
		}
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 && sh.buf.Len() == 0 {
				return nil
			}
			sh.buf.Reset()
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if quit := sh.feed(line); quit {
			return nil
		}
	}
}

// feed handles one input line and reports whether the shell should exit.
func (sh *shell) feed(line string) bool {
	trimmed := strings.TrimSpace(line)
	if sh.buf.Len() == 0 {
		switch {
		case trimmed == "":
			return false
		case trimmed == "quit" || trimmed == "exit" || trimmed == `\q`:
			return true
		case strings.HasPrefix(trimmed, `\`):
			sh.meta(trimmed)
			return false
		}
	}

	if sh.buf.Len() > 0 {
		sh.buf.WriteByte('\n')
	}
	sh.buf.WriteString(line)
	if !statementComplete(sh.buf.String()) {
		return false
	}
	sql := sh.buf.String()
	sh.buf.Reset()
	sh.run(sql)
	return false
}

// statementComplete reports whether text ends a statement: a ';' outside quotes and
// comments as the last non-blank character.
func statementComplete(text string) bool {
	if !strings.HasSuffix(strings.TrimSpace(text), ";") {
		return false
	}
	return !sqltext.Scan(text).Unterminated
}

func (sh *shell) run(sql string) {
	binds := sh.binds
	sh.binds = nil

	ctx, stop := signal.NotifyContext(sh.base, os.Interrupt)
	defer stop()

	rs, err := runQuery(ctx, sh.sess, sql, binds)
	if err != nil {
		sh.fail(err)
		return
	}
	defer rs.Release()
	if err := printResult(sh.out, sh.format, rs, sh.maxRows); err != nil {
		sh.fail(err)
	}
}

func (sh *shell) fail(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(sh.out, "Canceled.")
	case errs.KindOf(err) != "":
		fmt.Fprintln(sh.out, logging.FormatFailure(err))
	default:
		fmt.Fprintln(sh.out, logging.PresentError("Error", err))
	}
}

func (sh *shell) meta(line string) {
	name, rest, _ := strings.Cut(line, " ")
	fields := strings.Fields(rest)

	switch name {
	case `\?`, `\h`, `\help`:
		fmt.Fprintln(sh.out, shellHelp)
	case `\bind`:
		lits, err := parseArgs(fields)
		if err != nil {
			sh.fail(err)
			return
		}
		sh.binds = lits
		parts := make([]string, len(lits))
		for i, l := range lits {
			parts[i] = l.String()
		}
		fmt.Fprintf(sh.out, "Next statement binds: %s\n", strings.Join(parts, ", "))
	case `\format`:
		f, err := render.ParseFormat(rest)
		if err != nil {
			sh.fail(err)
			return
		}
		sh.format = f
		fmt.Fprintf(sh.out, "Output format is %s.\n", f)
	case `\conf`:
		if len(fields) == 0 {
			fmt.Fprintln(sh.out, `usage: \conf KEY ...`)
			return
		}
		vals, err := sh.sess.GetConf(sh.base, fields...)
		if err != nil {
			sh.fail(err)
			return
		}
		for _, k := range fields {
			v, ok := vals[k]
			if !ok {
				v = pterm.Gray("(unset)")
			}
			fmt.Fprintf(sh.out, "%s = %s\n", k, v)
		}
	case `\set`:
		pairs, err := parsePairs(fields)
		if err != nil {
			sh.fail(err)
			return
		}
		if err := sh.sess.SetConf(sh.base, pairs); err != nil {
			sh.fail(err)
			return
		}
		fmt.Fprintf(sh.out, "Set %d value(s).\n", len(pairs))
	case `\info`:
		fmt.Fprintf(sh.out, "Endpoint:        %s\n", sh.sess.Endpoint())
		fmt.Fprintf(sh.out, "Spark version:   %s\n", sh.sess.ServerVersion())
		fmt.Fprintf(sh.out, "Session:         %s\n", sh.sess.ID())
		if id := sh.sess.ServerSideSessionID(); id != "" {
			fmt.Fprintf(sh.out, "Server session:  %s\n", id)
		}
	default:
		fmt.Fprintf(sh.out, "Unknown command %s. Type \\? for help.\n", name)
	}
}

// parsePairs turns key=value fields into a map.
func parsePairs(fields []string) (map[string]string, error) {
	if len(fields) == 0 {
		return nil, errors.New(`usage: \set KEY=VALUE ...`)
	}
	pairs := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%q is not KEY=VALUE", f)
		}
		pairs[k] = v
	}
	return pairs, nil
}
