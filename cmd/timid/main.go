// Command timid is the CLI entry point for the timid-lang front end.
//
// Usage:
//
//	timid                      Start interactive REPL
//	timid <script>             Lex and parse a script, print its AST
//	timid tokens <file>        Print tokens
//	timid parse  <file>        Print AST
//	timid check  <files...>    Check files concurrently
//	timid watch  <file>        Re-parse a file whenever it changes
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"timid-lang/internal/config"
	"timid-lang/internal/driver"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

var errUsage = errors.New("Usage: timid [script]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, newRootCmd(), os.Args[1:])
	stop()
	os.Exit(code)
}

// execute runs cmd with args and maps its error to a process exit code.
func execute(ctx context.Context, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return driver.ExitOK
	}

	var exitErr *driver.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return 1
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "timid [script]",
		Short: "Timid language front end",
		Long: `timid lexes and parses Timid expressions.

With no arguments it starts an interactive prompt. With one argument it
reads the script, reports any diagnostics and prints the parsed expression.`,
		Version: Version,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return &driver.ExitError{Code: driver.ExitUsage, Err: errUsage}
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			level, _ := cfg.Level() // validated by Load
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.FileUsed != "" {
				logger.Debug("using config file", "path", cfg.FileUsed)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runScript(cmd, args[0])
			}
			return runREPL(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &driver.ExitError{Code: driver.ExitUsage, Err: err}
	})

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./timid.yaml)")
	rootCmd.PersistentFlags().String("color", "", "Color diagnostics (auto|always|never)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (text|json|yaml)")
	rootCmd.PersistentFlags().Bool("echo-tokens", false, "Print tokens before the parsed expression")
	rootCmd.PersistentFlags().String("history-file", "", "REPL history file")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "always", "never"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newDriver builds a driver from the command's config and logger.
// Diagnostics go to the command's stderr.
func newDriver(cmd *cobra.Command) *driver.Driver {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	return driver.New(
		driver.WithLogger(config.GetLogger(ctx)),
		driver.WithDiagnostics(cmd.ErrOrStderr()),
		driver.WithColor(useColor(cfg.Color, cmd.ErrOrStderr())),
	)
}

// runScript is file mode: tokens (if enabled), then the AST, or exit 65.
func runScript(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	res, err := newDriver(cmd).RunFile(ctx, path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.EchoTokens {
		if err := printTokens(out, cfg.Output, res.Tokens, nil); err != nil {
			return err
		}
	}
	if res.Failed() {
		return &driver.ExitError{Code: driver.ExitDataErr}
	}
	return printExpr(out, cfg.Output, res)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "timid %s\n", Version)
			_, _ = fmt.Fprintf(w, "commit: %s\n", GitCommit)
			return nil
		},
	}
}
