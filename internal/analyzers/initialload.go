package analyzers

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// AnalyzerInitialLoad flags list/detail pages whose initial data fetch shows
// no loading indicator.
var AnalyzerInitialLoad = &Analyzer{
	Name: "ux002_initialload",
	Rule: 2,
	Doc:  "flags effect-hook fetches on list/detail pages without a loading indicator",
	Run:  runInitialLoad,
}

var (
	effectHookRe   = regexp.MustCompile(`useEffect|useLayoutEffect|componentDidMount|\bmounted\b|\bcreated\b|onMounted`)
	listViewRe     = regexp.MustCompile(`\.map\s*\(|v-for=|<[Tt]able|a-table|el-table|DataGrid|List\b`)
	detailFetchRe  = regexp.MustCompile(`(?i)(get|fetch|query|load)Detail`)
	effectHookFns  = []string{"useEffect", "useLayoutEffect", "onMounted"}
	lifecycleNames = []string{"componentDidMount", "mounted", "created"}
)

func runInitialLoad(pass *Pass) ([]Violation, error) {
	if !pass.Enabled(2) {
		return nil, nil
	}
	if !pass.Diff.NewFile && !effectHookRe.MatchString(pass.Diff.AddedText()) {
		return nil, nil
	}
	root := pass.Unit.Root()
	if root == nil {
		return nil, nil
	}
	stripped := pass.StrippedScript()
	if !effectHookRe.MatchString(stripped) {
		return nil, nil
	}
	if !isListOrDetailView(pass, stripped) {
		return nil, nil
	}
	rc := pass.RuleConfig(2)
	src := pass.Unit.Script

	var out []Violation
	for _, effect := range effectCallbacks(root, src) {
		requests := RequestCalls(effect, src, pass.RequestMethods())
		for _, req := range requests {
			if rc.WhitelistedKeyword(jsparse.Content(jsparse.Callee(req), src)) {
				continue
			}
			if hasLoadingIndicator(pass, effect, req) {
				continue
			}
			out = append(out, Violation{
				Rule:       2,
				Line:       pass.Unit.FileLine(jsparse.Line(req)),
				Message:    fmt.Sprintf("initial fetch %q shows no loading indicator", jsparse.Content(jsparse.Callee(req), src)),
				Suggestion: "show a spinner while the page loads, e.g. <Spin spinning={loading}> or a table loading prop",
			})
			break // one finding per effect hook is enough
		}
	}
	return out, nil
}

func isListOrDetailView(pass *Pass, stripped string) bool {
	if listViewRe.MatchString(stripped) || detailFetchRe.MatchString(stripped) {
		return true
	}
	return pass.Unit.Markup != "" && listViewRe.MatchString(pass.StrippedMarkup())
}

// effectCallbacks returns the callback bodies of lifecycle/effect hooks:
// useEffect(() => {...}) arguments and componentDidMount/mounted/created
// method bodies.
func effectCallbacks(root *sitter.Node, src []byte) []*sitter.Node {
	var out []*sitter.Node
	jsparse.Walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "call_expression":
			name := jsparse.CalleeName(n, src)
			for _, hook := range effectHookFns {
				if name != hook {
					continue
				}
				if arg := jsparse.FirstArgument(n); arg != nil && jsparse.IsFunctionNode(arg) {
					out = append(out, jsparse.FunctionBody(arg))
				}
			}
		case "method_definition", "pair":
			var name string
			var fn *sitter.Node
			if n.Type() == "method_definition" {
				name = jsparse.Content(n.ChildByFieldName("name"), src)
				fn = n
			} else {
				name = strings.Trim(jsparse.Content(n.ChildByFieldName("key"), src), `"'`)
				v := n.ChildByFieldName("value")
				if v != nil && jsparse.IsFunctionNode(v) {
					fn = v
				}
			}
			for _, lc := range lifecycleNames {
				if name == lc && fn != nil {
					out = append(out, jsparse.FunctionBody(fn))
				}
			}
		}
		return true
	})
	return out
}

// hasLoadingIndicator checks the accepted evidence that the fetch drives a
// visible busy state.
func hasLoadingIndicator(pass *Pass, effectBody, request *sitter.Node) bool {
	src := pass.Unit.Script
	loadingMethods := pass.RuleConfig(2).CustomKeywords.LoadingMethods

	// A loading-method call before the request in the same block, or on the
	// completion path.
	found := false
	jsparse.Walk(effectBody, func(n *sitter.Node) bool {
		if found || n.Type() != "call_expression" {
			return true
		}
		name := jsparse.CalleeName(n, src)
		for _, lm := range loadingMethods {
			if name != lm {
				continue
			}
			if n.StartByte() < request.StartByte() || inCompletionCallback(n, src) {
				found = true
				return false
			}
		}
		return true
	})
	if found {
		return true
	}

	// setLoading(true) before / setLoading(false) after, with the flag bound
	// to a spinner/table/button in markup.
	fn := jsparse.EnclosingFunction(request)
	if fn == nil {
		fn = effectBody
	}
	if guard := flagGuardAround(fn, request, src); guard != nil {
		if flagBoundAnywhere(pass, guard.flag, "Spin", "Table", "Button", "Skeleton", "Loading") {
			return true
		}
	}

	// Shared flag resolved from the action declaration: rule 2 demands both a
	// props-side definition and a markup binding.
	var actionName string
	jsparse.Walk(effectBody, func(n *sitter.Node) bool {
		if actionName != "" {
			return false
		}
		if n.Type() == "call_expression" {
			if name := jsparse.CalleeName(n, src); strings.HasSuffix(name, "Action") {
				actionName = name
			}
		}
		return true
	})
	if actionName != "" {
		if b := pass.Resolver.Resolve(pass.Unit, actionName, false); b != nil {
			if flagDestructuredFromProps(pass, b.LoadingName) && flagBoundAnywhere(pass, b.LoadingName) {
				return true
			}
		}
	}
	return false
}

// flagDestructuredFromProps reports whether flag is pulled out of a
// props-like source: const { loading } = props / this.props / useSelector /
// mapState results.
func flagDestructuredFromProps(pass *Pass, flag string) bool {
	root := pass.Unit.Root()
	src := pass.Unit.Script
	found := false
	jsparse.Walk(root, func(n *sitter.Node) bool {
		if found || n.Type() != "variable_declarator" {
			return true
		}
		name := n.ChildByFieldName("name")
		if name == nil || name.Type() != "object_pattern" {
			return true
		}
		if !containsWord(jsparse.Content(name, src), flag) {
			return true
		}
		value := strings.ToLower(jsparse.Content(n.ChildByFieldName("value"), src))
		if strings.Contains(value, "props") || strings.Contains(value, "useselector") ||
			strings.Contains(value, "mapstate") || strings.Contains(value, "store") {
			found = true
			return false
		}
		return true
	})
	return found
}
