// Package runner drives the rule analyzers over the staged files and
// aggregates their findings.
package runner

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/uxaudit/uxaudit/internal/analyzers"
	"github.com/uxaudit/uxaudit/internal/config"
	"github.com/uxaudit/uxaudit/internal/diff"
	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// Spec pairs an analyzer with its catalog metadata.
type Spec struct {
	RuleID     string
	Title      string
	Suggestion string
	Analyzer   *analyzers.Analyzer
}

// Finding is one aggregated result. Rule 0 findings are tool diagnostics
// (an evaluator crashed); they are reported but never block the commit.
type Finding struct {
	RuleID     string
	Rule       int
	Title      string
	Suggestion string
	Filename   string
	Line       int
	Message    string
}

// File is one staged file handed to the runner: repo-relative path, working
// tree contents and the staged unified diff.
type File struct {
	Path     string
	Raw      []byte
	DiffText string
}

// Catalog returns all known rule specs in rule order.
func Catalog() []Spec {
	return []Spec{
		{RuleID: "UX001", Title: "No double-submit protection", Suggestion: "Guard submit handlers with a bound loading flag or a >=500ms debounce", Analyzer: analyzers.AnalyzerDoubleSubmit},
		{RuleID: "UX002", Title: "No loading indicator on initial fetch", Suggestion: "Show a spinner or table loading state while the page loads", Analyzer: analyzers.AnalyzerInitialLoad},
		{RuleID: "UX003", Title: "No success feedback after mutation", Suggestion: "Toast a success message after POST/PUT/DELETE requests", Analyzer: analyzers.AnalyzerSuccessToast},
		{RuleID: "UX004", Title: "List without empty state", Suggestion: "Render an empty-state branch for zero-length lists", Analyzer: analyzers.AnalyzerEmptyState},
		{RuleID: "UX005", Title: "Input without placeholder", Suggestion: "Add a placeholder to newly added inputs", Analyzer: analyzers.AnalyzerPlaceholder},
	}
}

// Run evaluates every spec against every file sequentially. One file's or
// one rule's failure never stops the run: parse failures skip the file,
// evaluator crashes degrade to a logged diagnostic with zero violations.
// Findings block the commit; diagnostics do not.
func Run(ctx context.Context, log *zap.Logger, root string, cfg *config.Config, files []File, specs []Spec) (findings, diags []Finding) {
	if log == nil {
		log = zap.NewNop()
	}
	resolver := analyzers.NewResolver(root, log)

	for _, f := range files {
		unit := jsparse.Parse(ctx, f.Path, f.Raw)
		if unit.Tree == nil && unit.Markup == "" {
			// Unparsable or tree-less file: a silent no-op, never an error.
			log.Debug("skipping un-analyzable file", zap.String("file", f.Path))
			continue
		}
		fileDiff, err := diff.Parse(f.Path, f.DiffText)
		if err != nil {
			log.Warn("bad diff, treating file as new", zap.String("file", f.Path), zap.Error(err))
			fileDiff = &diff.FileDiff{Path: f.Path, NewFile: true}
		}
		pass := &analyzers.Pass{
			Unit:     unit,
			Diff:     fileDiff,
			Config:   cfg,
			Resolver: resolver,
			Log:      log,
		}
		for _, spec := range specs {
			vs, err := safeRun(spec.Analyzer, pass)
			if err != nil {
				log.Warn("evaluator failed",
					zap.String("file", f.Path),
					zap.String("rule", spec.RuleID),
					zap.Error(err))
				diags = append(diags, Finding{
					RuleID:   spec.RuleID,
					Rule:     0,
					Title:    "evaluator crashed",
					Filename: f.Path,
					Message:  err.Error(),
				})
				continue
			}
			for _, v := range vs {
				suggestion := v.Suggestion
				if suggestion == "" {
					suggestion = spec.Suggestion
				}
				findings = append(findings, Finding{
					RuleID:     spec.RuleID,
					Rule:       spec.Analyzer.Rule,
					Title:      spec.Title,
					Suggestion: suggestion,
					Filename:   f.Path,
					Line:       v.Line,
					Message:    v.Message,
				})
			}
		}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Filename != findings[j].Filename {
			return findings[i].Filename < findings[j].Filename
		}
		return findings[i].Rule < findings[j].Rule
	})
	return findings, diags
}

// safeRun contains evaluator faults to one (file, rule) pair.
func safeRun(a *analyzers.Analyzer, pass *analyzers.Pass) (vs []analyzers.Violation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", a.Name, r)
		}
	}()
	return a.Run(pass)
}
