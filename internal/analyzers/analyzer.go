// Package analyzers implements the UI-convention rule checks that run against
// each staged front-end file.
package analyzers

import (
	"go.uber.org/zap"

	"github.com/uxaudit/uxaudit/internal/config"
	"github.com/uxaudit/uxaudit/internal/diff"
	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// Violation is one rule failure, local to the file the pass analyzed; the
// runner attaches the filename when it builds findings. Rule 0 is reserved
// for the runner's evaluator-crash sentinel; analyzers only ever emit their
// own rule number.
type Violation struct {
	Rule       int
	Line       int
	Message    string
	Suggestion string
}

// Analyzer is one rule check. Run walks the unit and returns the accumulated
// violations; it must not keep state between calls.
type Analyzer struct {
	Name string
	Rule int
	Doc  string
	Run  func(pass *Pass) ([]Violation, error)
}

// Pass carries everything one analyzer invocation may look at. All fields are
// per-file and read-only from the analyzer's point of view.
type Pass struct {
	Unit     *jsparse.SourceUnit
	Diff     *diff.FileDiff
	Config   *config.Config
	Resolver *Resolver
	Log      *zap.Logger

	strippedScript *string
	strippedMarkup *string
}

// RuleConfig returns the config block for rule n.
func (p *Pass) RuleConfig(n int) *config.RuleConfig {
	return p.Config.Rule(n)
}

// Enabled reports whether rule n should run for this pass.
func (p *Pass) Enabled(n int) bool {
	rc := p.Config.Rule(n)
	return rc.On() && !rc.WhitelistedPath(p.Unit.Path)
}

// RequestMethods returns the request-classifier keyword list. It is
// configured once, under rule 1 in the YAML, and shared by every rule that
// classifies calls.
func (p *Pass) RequestMethods() []string {
	return p.Config.Rule1.CustomKeywords.RequestMethods
}

// StrippedScript returns the comment/string-blanked view of the script
// region, computed lazily per pass.
func (p *Pass) StrippedScript() string {
	if p.strippedScript == nil {
		s := jsparse.StripCommentsAndStrings(string(p.Unit.Script))
		p.strippedScript = &s
	}
	return *p.strippedScript
}

// StrippedMarkup returns the markup region with HTML comments blanked.
func (p *Pass) StrippedMarkup() string {
	if p.strippedMarkup == nil {
		s := jsparse.StripMarkupComments(p.Unit.Markup)
		p.strippedMarkup = &s
	}
	return *p.strippedMarkup
}
