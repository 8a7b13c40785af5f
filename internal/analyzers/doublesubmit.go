package analyzers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// AnalyzerDoubleSubmit flags submit-style handlers that fire a request with
// no protection against double submission.
var AnalyzerDoubleSubmit = &Analyzer{
	Name: "ux001_doublesubmit",
	Rule: 1,
	Doc:  "flags confirm/click handlers that issue a request without loading/disabled protection",
	Run:  runDoubleSubmit,
}

var rule1ScopeRe = regexp.MustCompile(`onClick|onOk|onConfirm|onFinish|@click|@confirm|@finish|<[Bb]utton|a-button|el-button`)

func runDoubleSubmit(pass *Pass) ([]Violation, error) {
	if !pass.Enabled(1) {
		return nil, nil
	}
	if !pass.Diff.NewFile && !rule1ScopeRe.MatchString(pass.Diff.AddedText()) {
		return nil, nil
	}
	rc := pass.RuleConfig(1)
	root := pass.Unit.Root()
	src := pass.Unit.Script

	var out []Violation
	checked := map[string]bool{}
	for _, h := range pass.handlers() {
		if rc.WhitelistedKeyword(h.Name) || rc.WhitelistedKeyword(h.Element.Name) {
			continue
		}
		fn := resolveHandlerFunction(root, src, h)
		if fn == nil {
			continue
		}
		key := fmt.Sprintf("%d:%d", fn.StartByte(), fn.EndByte())
		if checked[key] {
			continue
		}
		checked[key] = true

		requests := RequestCalls(jsparse.FunctionBody(fn), src, pass.RequestMethods())
		if len(requests) == 0 {
			continue
		}
		if v := checkHandlerProtection(pass, h, fn, requests[0]); v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// checkHandlerProtection runs the protection heuristics in order and returns
// nil as soon as one confirms the handler is safe.
func checkHandlerProtection(pass *Pass, h Handler, fn, request *sitter.Node) *Violation {
	src := pass.Unit.Script

	if hasLeadingGuard(fn, src) {
		return nil
	}
	if prot, short := debounceProtection(pass, h, fn); prot {
		return nil
	} else if short {
		return &Violation{
			Rule:       1,
			Line:       h.Line,
			Message:    fmt.Sprintf("handler %q is debounced with a delay under 500ms, which does not prevent double submission", h.Name),
			Suggestion: "raise the debounce delay to at least 500ms or guard with a loading flag",
		}
	}
	if guard := flagGuardAround(fn, request, src); guard != nil {
		// The flag may be bound on a wrapper rather than the triggering
		// element itself, like confirmLoading on the Modal around a button.
		if elementBindsFlag(h.Element, guard.flag) || flagBoundAnywhere(pass, guard.flag) {
			return nil
		}
		// The flag exists and is toggled, but the UI never sees it.
		return &Violation{
			Rule:       1,
			Line:       h.Line,
			Message:    fmt.Sprintf("loading flag %q is set in handler %q but never bound to a loading/disabled attribute", guard.flag, h.Name),
			Suggestion: fmt.Sprintf("bind the flag to the element, e.g. loading={%s} or disabled={%s}", guard.flag, guard.flag),
		}
	}
	if disabledReferencesHandler(h) {
		return nil
	}
	if v, protected := actionFlagProtection(pass, h, fn); protected {
		return nil
	} else if v != nil {
		return v
	}
	return &Violation{
		Rule:       1,
		Line:       h.Line,
		Message:    fmt.Sprintf("handler %q sends a request without double-submit protection", h.Name),
		Suggestion: "guard the handler with a loading flag bound to the element, or debounce it (>=500ms)",
	}
}

// hasLeadingGuard checks the leading statements of the handler body for an
// early return on a busy flag: if (loading) return;.
var guardCondRe = regexp.MustCompile(`(?i)loading|submitting|pending|disabled`)

func hasLeadingGuard(fn *sitter.Node, src []byte) bool {
	body := jsparse.FunctionBody(fn)
	if body == nil || body.Type() != "statement_block" {
		return false
	}
	limit := int(body.NamedChildCount())
	if limit > 3 {
		limit = 3
	}
	for i := 0; i < limit; i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != "if_statement" {
			continue
		}
		cond := jsparse.Content(stmt.ChildByFieldName("condition"), src)
		if !guardCondRe.MatchString(cond) {
			continue
		}
		ret := false
		jsparse.Walk(stmt.ChildByFieldName("consequence"), func(n *sitter.Node) bool {
			if n.Type() == "return_statement" {
				ret = true
				return false
			}
			return true
		})
		if ret {
			return true
		}
	}
	return false
}

var (
	debounceCallRe  = regexp.MustCompile(`(?i)\b(debounce|throttle)\s*\(`)
	debounceDelayRe = regexp.MustCompile(`,\s*([0-9]+)\s*[,)]`)
)

// debounceProtection checks whether the handler is wrapped by a
// debounce/throttle call. protected is true for delays >=500ms or non-literal
// delays; short is true when an explicit literal delay is too small.
func debounceProtection(pass *Pass, h Handler, fn *sitter.Node) (protected, short bool) {
	texts := []string{h.Name}
	root := pass.Unit.Root()
	src := pass.Unit.Script
	for _, id := range handlerIdents(h.Name) {
		jsparse.Walk(root, func(n *sitter.Node) bool {
			if n.Type() != "variable_declarator" {
				return true
			}
			if jsparse.Content(n.ChildByFieldName("name"), src) != id {
				return true
			}
			texts = append(texts, jsparse.Content(n.ChildByFieldName("value"), src))
			return true
		})
	}
	for _, text := range texts {
		if !debounceCallRe.MatchString(text) {
			continue
		}
		m := debounceDelayRe.FindStringSubmatch(text)
		if m == nil {
			return true, false // non-literal delay counts as protection
		}
		delay, err := strconv.Atoi(m[1])
		if err != nil || delay >= 500 {
			return true, false
		}
		return false, true
	}
	return false, false
}

// disabledReferencesHandler accepts a markup disabled binding that mentions
// the handler name.
func disabledReferencesHandler(h Handler) bool {
	for _, attr := range []string{"disabled", ":disabled"} {
		v, ok := h.Element.Attr(attr)
		if !ok {
			continue
		}
		for _, id := range handlerIdents(h.Name) {
			if containsWord(v, id) {
				return true
			}
		}
	}
	return false
}

// actionFlagProtection handles connected-action handlers: the action's
// declared loading flag must be bound on the triggering element. Binding a
// different flag than the one the action declares is its own violation.
func actionFlagProtection(pass *Pass, h Handler, fn *sitter.Node) (*Violation, bool) {
	src := pass.Unit.Script
	var actionName string
	jsparse.Walk(jsparse.FunctionBody(fn), func(n *sitter.Node) bool {
		if actionName != "" {
			return false
		}
		if n.Type() == "call_expression" {
			if name := jsparse.CalleeName(n, src); strings.HasSuffix(name, "Action") {
				actionName = name
				return false
			}
		}
		return true
	})
	if actionName == "" {
		return nil, false
	}

	if b := pass.Resolver.Resolve(pass.Unit, actionName, true); b != nil {
		if elementBindsFlag(h.Element, b.LoadingName) {
			return nil, true
		}
	}
	loose := pass.Resolver.Resolve(pass.Unit, actionName, false)
	if loose == nil {
		// No information either way; fall through to "no evidence".
		return nil, false
	}
	if elementBindsFlag(h.Element, loose.LoadingName) {
		return nil, true
	}
	for _, attr := range loadingAttrNames {
		if v, ok := h.Element.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return &Violation{
				Rule:       1,
				Line:       h.Line,
				Message:    fmt.Sprintf("element binds %q to %q but action %q declares loading flag %q", attr, v, actionName, loose.LoadingName),
				Suggestion: fmt.Sprintf("bind the element to the %q flag the action toggles", loose.LoadingName),
			}, false
		}
	}
	return nil, false
}
