package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"timid-lang/internal/config"
	"timid-lang/internal/driver"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
}

// ---- repl command ----

func runREPL(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	color := useColor(cfg.Color, cmd.ErrOrStderr())

	prompt := cfg.Prompt
	if color {
		prompt = promptStyle.Render(prompt)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       cfg.HistoryFile,
		InterruptPrompt:   "^C",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	banner, hint := "timid REPL", "(Ctrl+D to quit)"
	if color {
		banner, hint = bannerStyle.Render(banner), hintStyle.Render(hint)
	}
	_, _ = fmt.Fprintf(rl.Stdout(), "%s %s\n\n", banner, hint)

	d := driver.New(
		driver.WithLogger(config.GetLogger(ctx)),
		driver.WithDiagnostics(rl.Stderr()),
		driver.WithColor(color),
	)
	return replLoop(ctx, rl, rl.Stdout(), d.NewSession("<stdin>"), cfg)
}

// replLoop runs one line at a time until EOF. Each line is an
// independent run: an error on one line never fails the next.
func replLoop(ctx context.Context, in lineReader, out io.Writer, s *driver.Session, cfg *config.Config) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		// Skip empty input
		if strings.TrimSpace(line) == "" {
			continue
		}

		res := s.Run(ctx, line)
		if cfg.EchoTokens {
			if err := printTokens(out, cfg.Output, res.Tokens, nil); err != nil {
				return err
			}
		}
		if res.Failed() {
			continue
		}
		if err := printExpr(out, cfg.Output, res); err != nil {
			return err
		}
	}
}
