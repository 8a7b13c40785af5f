package analyzers

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// AnalyzerSuccessToast flags mutating requests whose success path never
// notifies the user.
var AnalyzerSuccessToast = &Analyzer{
	Name: "ux003_successtoast",
	Rule: 3,
	Doc:  "flags POST/PUT/DELETE-style requests with no success toast on the success path",
	Run:  runSuccessToast,
}

var (
	mutationVerbs    = []string{"post", "put", "delete", "patch"}
	mutationKeywords = []string{"add", "create", "update", "delete", "remove", "save", "submit", "edit", "modify", "del"}
	// Names that merely look like mutations.
	rule3Exclusions = []string{"toString", "includes", "input", "output"}
)

func runSuccessToast(pass *Pass) ([]Violation, error) {
	if !pass.Enabled(3) {
		return nil, nil
	}
	if !pass.Diff.NewFile && !ContainsRequestText(jsparse.StripCommentsAndStrings(pass.Diff.AddedText()), pass.RequestMethods()) {
		return nil, nil
	}
	root := pass.Unit.Root()
	if root == nil {
		return nil, nil
	}
	rc := pass.RuleConfig(3)
	src := pass.Unit.Script

	var out []Violation
	jsparse.Walk(root, func(n *sitter.Node) bool {
		if n.Type() != "call_expression" {
			return true
		}
		if !IsRequestCall(n, src, pass.RequestMethods()) {
			return true
		}
		name := jsparse.CalleeName(n, src)
		for _, ex := range rule3Exclusions {
			if strings.EqualFold(name, ex) {
				return true
			}
		}
		if !isMutatingCall(n, src) {
			return true
		}
		if rc.WhitelistedKeyword(name) || rc.WhitelistedKeyword(jsparse.Content(jsparse.Callee(n), src)) {
			return true
		}
		if successOnSuccessPath(n, src, rc.CustomKeywords.SuccessMethods) {
			return true
		}
		out = append(out, Violation{
			Rule:       3,
			Line:       pass.Unit.FileLine(jsparse.Line(n)),
			Message:    fmt.Sprintf("mutating request %q gives no success feedback", name),
			Suggestion: "call a success toast (e.g. message.success) after the request succeeds",
		})
		return true
	})
	return out, nil
}

// isMutatingCall classifies a request as POST/PUT/DELETE-like: verb in the
// method name, mutation keyword in a dispatch type or Action name, or an
// options object with method/type POST|PUT|DELETE.
func isMutatingCall(call *sitter.Node, src []byte) bool {
	name := jsparse.CalleeName(call, src)
	lower := strings.ToLower(name)
	for _, v := range mutationVerbs {
		if strings.HasSuffix(lower, v) || lower == v {
			return true
		}
	}
	if strings.HasSuffix(name, "Action") {
		for _, kw := range mutationKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	if name == "dispatch" {
		if t := dispatchTypeString(call, src); t != "" {
			lt := strings.ToLower(t)
			for _, kw := range mutationKeywords {
				if strings.Contains(lt, kw) {
					return true
				}
			}
		}
	}
	for _, arg := range jsparse.Arguments(call) {
		if arg.Type() != "object" {
			continue
		}
		for i := 0; i < int(arg.NamedChildCount()); i++ {
			pair := arg.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			key := strings.Trim(jsparse.Content(pair.ChildByFieldName("key"), src), `"'`)
			if key != "method" && key != "type" {
				continue
			}
			if v, ok := jsparse.StringValue(pair.ChildByFieldName("value"), src); ok {
				switch strings.ToUpper(v) {
				case "POST", "PUT", "DELETE", "PATCH":
					return true
				}
			}
		}
	}
	return false
}

// dispatchTypeString extracts the type literal of a dispatch payload.
func dispatchTypeString(call *sitter.Node, src []byte) string {
	arg := jsparse.FirstArgument(call)
	if arg == nil || arg.Type() != "object" {
		return ""
	}
	for i := 0; i < int(arg.NamedChildCount()); i++ {
		pair := arg.NamedChild(i)
		if pair.Type() != "pair" {
			continue
		}
		if strings.Trim(jsparse.Content(pair.ChildByFieldName("key"), src), `"'`) != "type" {
			continue
		}
		if v, ok := jsparse.StringValue(pair.ChildByFieldName("value"), src); ok {
			return v
		}
	}
	return ""
}

// successOnSuccessPath checks the request's success continuation for a
// configured success-toast call: a chained .then callback, or the statements
// after the await inside an async function.
func successOnSuccessPath(call *sitter.Node, src []byte, successMethods []string) bool {
	// Chained .then( ... ) on this call or anywhere up the member chain:
	// api.post(...).then(res => ...).
	for a := call; a != nil; a = a.Parent() {
		if a.Type() != "call_expression" {
			if a.Type() != "member_expression" && a.Type() != "await_expression" &&
				a.Type() != "expression_statement" && a.Type() != "parenthesized_expression" {
				break
			}
			continue
		}
		name := jsparse.CalleeName(a, src)
		if name == "then" {
			for _, arg := range jsparse.Arguments(a) {
				if containsSuccessCall(arg, src, successMethods) {
					return true
				}
			}
		}
	}

	// await pattern: statements following the await in the same block.
	if awaitExpr := enclosingAwait(call); awaitExpr != nil {
		stmt := enclosingStatement(awaitExpr)
		for s := stmt; s != nil; {
			next := s.NextNamedSibling()
			if next == nil {
				break
			}
			if containsSuccessCall(next, src, successMethods) {
				return true
			}
			s = next
		}
	}
	return false
}

func containsSuccessCall(node *sitter.Node, src []byte, successMethods []string) bool {
	found := false
	jsparse.Walk(node, func(n *sitter.Node) bool {
		if found || n.Type() != "call_expression" {
			return true
		}
		callee := jsparse.Content(jsparse.Callee(n), src)
		for _, sm := range successMethods {
			if sm == "" {
				continue
			}
			if callee == sm || strings.HasSuffix(callee, "."+sm) || strings.HasSuffix(callee, sm) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func enclosingAwait(n *sitter.Node) *sitter.Node {
	for a := n.Parent(); a != nil; a = a.Parent() {
		switch a.Type() {
		case "await_expression":
			return a
		case "statement_block", "program":
			return nil
		}
	}
	return nil
}

func enclosingStatement(n *sitter.Node) *sitter.Node {
	for a := n; a != nil; a = a.Parent() {
		p := a.Parent()
		if p != nil && (p.Type() == "statement_block" || p.Type() == "program") {
			return a
		}
	}
	return nil
}
