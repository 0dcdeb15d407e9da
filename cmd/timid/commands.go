package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"timid-lang/internal/config"
	"timid-lang/internal/driver"
)

// ---- tokens command ----

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Tokenize a file and print its tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			res, err := newDriver(cmd).TokenizeFile(ctx, args[0])
			if err != nil {
				return err
			}
			if err := printTokens(cmd.OutOrStdout(), cfg.Output, res.Tokens, res.Diagnostics); err != nil {
				return err
			}
			if res.Failed() {
				return &driver.ExitError{Code: driver.ExitDataErr}
			}
			return nil
		},
	}
}

// ---- parse command ----

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and print its expression",
		Long: `Parse a file and print its expression.

Text output is an S-expression; json and yaml output carry the full tree
with spans, plus any diagnostics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			res, err := newDriver(cmd).RunFile(ctx, args[0])
			if err != nil {
				return err
			}
			if cfg.Output != "text" || !res.Failed() {
				if err := printExpr(cmd.OutOrStdout(), cfg.Output, res); err != nil {
					return err
				}
			}
			if res.Failed() {
				return &driver.ExitError{Code: driver.ExitDataErr}
			}
			return nil
		},
	}
}

// ---- check command ----

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <files...>",
		Short: "Check files for lexical and syntax errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			results, err := newDriver(cmd).CheckFiles(ctx, args, cfg.Jobs)
			if err != nil {
				return err
			}
			if err := printCheck(cmd.OutOrStdout(), cfg.Output, results); err != nil {
				return err
			}
			for _, res := range results {
				if res.Failed() {
					return &driver.ExitError{Code: driver.ExitDataErr}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, fmt.Sprintf("Files checked in parallel (default %d)", config.DefaultJobs))
	return cmd
}

// ---- watch command ----

const watchDebounce = 100 * time.Millisecond

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-parse a file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := config.GetLogger(ctx)
			path := filepath.Clean(args[0])

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer func() { _ = watcher.Close() }()

			// Watch the directory so editors that replace the file are seen.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}

			rerun := func() {
				if err := runScript(cmd, path); err != nil && !isDataErr(err) {
					logger.Warn("run failed", "path", path, "error", err)
				}
			}
			rerun()
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", path)

			watchLoop(ctx, logger, watcher.Events, watcher.Errors, path, watchDebounce, rerun)
			return nil
		},
	}
}

// watchLoop calls rerun once events for target have been quiet for
// debounce. It returns when ctx is done or either channel closes.
func watchLoop(ctx context.Context, logger *slog.Logger, events <-chan fsnotify.Event, errs <-chan error,
	target string, debounce time.Duration, rerun func()) {
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			pending = time.After(debounce)
		case <-pending:
			pending = nil
			rerun()
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// isDataErr reports whether err only signals that diagnostics were printed.
func isDataErr(err error) bool {
	var exitErr *driver.ExitError
	return errors.As(err, &exitErr) && exitErr.Code == driver.ExitDataErr && exitErr.Err == nil
}
