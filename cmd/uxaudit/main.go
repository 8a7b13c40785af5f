// Package main provides the uxaudit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uxaudit/uxaudit/internal/app"
)

type rootFlags struct {
	dir        string
	configPath string
	include    string
	disable    string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "uxaudit:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "uxaudit",
		Short:         "Pre-commit UI/UX convention checks for front-end code",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.dir, "dir", ".", "directory inside the repository to audit")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to uxaudit.yaml (defaults apply when absent)")
	cmd.PersistentFlags().StringVar(&flags.include, "include", "", "comma-separated rule IDs to run exclusively (e.g. UX001,UX003)")
	cmd.PersistentFlags().StringVar(&flags.disable, "disable", "", "comma-separated rule IDs to skip")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newHookCmd(flags))
	return cmd
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Check staged files and exit non-zero on violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, flags)
		},
	}
}

// newHookCmd is the hidden entry installed git hooks call.
func newHookCmd(flags *rootFlags) *cobra.Command {
	hook := &cobra.Command{
		Use:    "hook",
		Short:  "Internal hook runner",
		Hidden: true,
	}
	hook.AddCommand(&cobra.Command{
		Use:   "run <hook-name>",
		Short: "Execute hook logic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "pre-commit" {
				// Unknown hook: silently succeed, never block operations.
				return nil
			}
			return runAudit(cmd, flags)
		},
	})
	return hook
}

func runAudit(cmd *cobra.Command, flags *rootFlags) error {
	log, err := newLogger(flags.debug)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	code, err := app.Run(cmd.Context(), log, cmd.OutOrStdout(), app.Options{
		Dir:        flags.dir,
		ConfigPath: flags.configPath,
		IncludeCSV: flags.include,
		DisableCSV: flags.disable,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
