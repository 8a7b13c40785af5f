// Package testutil runs a single analyzer against inline source, the way the
// analyzer tests exercise rules without any git plumbing.
package testutil

import (
	"context"

	"go.uber.org/zap"

	"github.com/uxaudit/uxaudit/internal/analyzers"
	"github.com/uxaudit/uxaudit/internal/config"
	"github.com/uxaudit/uxaudit/internal/diff"
	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// Options tweaks the synthetic pass built around the source.
type Options struct {
	// Config overrides the default configuration.
	Config *config.Config
	// DiffText is the staged diff; empty means the file is brand new and
	// every line counts as added.
	DiffText string
	// Root is the resolver's project root; empty disables cross-file
	// resolution hits (the resolver still runs and returns nil).
	Root string
}

// RunAnalyzerOnSrc parses src as the dialect implied by path, builds a pass
// with defaults, runs the analyzer and returns its violations.
func RunAnalyzerOnSrc(an *analyzers.Analyzer, path, src string) ([]analyzers.Violation, error) {
	return RunAnalyzerOnSrcOpts(an, path, src, Options{})
}

// RunAnalyzerOnSrcOpts is RunAnalyzerOnSrc with explicit options.
func RunAnalyzerOnSrcOpts(an *analyzers.Analyzer, path, src string, opts Options) ([]analyzers.Violation, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	unit := jsparse.Parse(context.Background(), path, []byte(src))
	fileDiff, err := diff.Parse(path, opts.DiffText)
	if err != nil {
		return nil, err
	}
	pass := &analyzers.Pass{
		Unit:     unit,
		Diff:     fileDiff,
		Config:   cfg,
		Resolver: analyzers.NewResolver(opts.Root, zap.NewNop()),
		Log:      zap.NewNop(),
	}
	return an.Run(pass)
}
