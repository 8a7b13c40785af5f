// Package app wires configuration, git plumbing and the rule runner into the
// pre-commit entry point.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/uxaudit/uxaudit/internal/analyzers/runner"
	"github.com/uxaudit/uxaudit/internal/config"
	"github.com/uxaudit/uxaudit/internal/gitutil"
)

// Options configures one audit run.
type Options struct {
	Dir        string // any directory inside the repository
	ConfigPath string
	IncludeCSV string // comma-separated rule IDs to run exclusively
	DisableCSV string // comma-separated rule IDs to skip
}

// Run analyzes the staged files and writes the report to out. The returned
// exit code is 0 when every checked file passes and 1 when any violation was
// found. Environment errors (no repo, unreadable config) are returned as
// errors and also map to a non-zero exit.
func Run(ctx context.Context, log *zap.Logger, out io.Writer, opts Options) (int, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return 1, err
	}

	root, err := gitutil.RepoRoot(ctx, opts.Dir)
	if err != nil {
		return 1, fmt.Errorf("not a git repository: %w", err)
	}
	paths, err := gitutil.StagedFiles(ctx, root)
	if err != nil {
		return 1, fmt.Errorf("list staged files: %w", err)
	}

	var files []runner.File
	for _, p := range paths {
		if !cfg.MatchesExtension(p) || cfg.Ignored(p) {
			continue
		}
		raw, err := gitutil.WorkingTreeFile(root, p)
		if err != nil {
			log.Warn("cannot read staged file", zap.String("file", p), zap.Error(err))
			continue
		}
		diffText, err := gitutil.StagedDiff(ctx, root, p)
		if err != nil {
			log.Warn("cannot read staged diff", zap.String("file", p), zap.Error(err))
			diffText = ""
		}
		files = append(files, runner.File{Path: p, Raw: raw, DiffText: diffText})
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "uxaudit: no staged front-end files to check")
		return 0, nil
	}

	specs := buildSpecs(opts.IncludeCSV, opts.DisableCSV)
	findings, diags := runner.Run(ctx, log, root, cfg, files, specs)
	writeReport(out, findings, diags)
	if len(findings) > 0 {
		return 1, nil
	}
	return 0, nil
}
