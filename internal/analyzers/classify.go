package analyzers

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

var (
	httpVerbs        = []string{"post", "get", "put", "delete", "patch", "request"}
	capitalVerbs     = []string{"Post", "Get", "Put", "Delete", "Patch"}
	lowerVerbs       = []string{"post", "get", "put", "delete", "patch"}
	loggingTokens    = []string{"console", "log", "warn", "error", "debug", "info"}
	serializerTokens = []string{"parse", "stringify"}
)

// IsRequestCall reports whether call (a call_expression or new_expression)
// performs a network/data request. The recognized shapes are checked in
// order; first match wins. requestMethods extends the fallback keyword list
// and comes from rule configuration.
func IsRequestCall(call *sitter.Node, src []byte, requestMethods []string) bool {
	if call == nil {
		return false
	}
	name := jsparse.CalleeName(call, src)
	object := jsparse.CalleeObject(call, src)
	calleeText := jsparse.Content(jsparse.Callee(call), src)
	lowerName := strings.ToLower(name)
	lowerCallee := strings.ToLower(calleeText)

	// 1. Core HTTP verb in the method name, unless it smells like logging.
	if name != "" && containsAny(lowerName, httpVerbs) && !containsAny(lowerCallee, loggingTokens) {
		return true
	}

	// 2. Connected action call: props.xxxAction() / this.props.xxxAction().
	if strings.HasSuffix(name, "Action") && isPropsRooted(object) {
		return true
	}

	// 3. http.Post / http.Get style client.
	if object == "http" {
		for _, v := range capitalVerbs {
			if name == v {
				return true
			}
		}
	}

	// 4. this.$http.post style client.
	if object == "this.$http" || strings.HasSuffix(object, "$http") {
		for _, v := range lowerVerbs {
			if name == v {
				return true
			}
		}
	}

	// 5. jQuery ajax.
	if calleeText == "$.ajax" || calleeText == "jQuery.ajax" {
		return true
	}
	if object == "ajax" && containsAny(lowerName, lowerVerbs) {
		return true
	}

	// 6-8. Bare well-known request functions.
	if object == "" {
		switch name {
		case "axios", "fetch", "fetchDataApi":
			return true
		}
	}

	// 9. props.dispatch({ type: ... }).
	if name == "dispatch" && isPropsRooted(object) {
		if arg := jsparse.FirstArgument(call); arg != nil && objectHasProperty(arg, src, "type") {
			return true
		}
	}

	// 10. Raw XMLHttpRequest usage.
	if call.Type() == "new_expression" && calleeText == "XMLHttpRequest" {
		return true
	}
	switch name {
	case "open", "send", "setRequestHeader":
		lo := strings.ToLower(object)
		if strings.Contains(lo, "xhr") || strings.Contains(lo, "http") {
			return true
		}
	}

	// 11. Configurable fallback keywords, minus logging and JSON helpers.
	if name != "" && !containsAny(lowerCallee, loggingTokens) && !containsAny(lowerName, serializerTokens) {
		for _, kw := range requestMethods {
			if kw != "" && strings.Contains(lowerName, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

// RequestCalls collects every request call in the subtree rooted at node.
func RequestCalls(node *sitter.Node, src []byte, requestMethods []string) []*sitter.Node {
	var out []*sitter.Node
	jsparse.Walk(node, func(n *sitter.Node) bool {
		switch n.Type() {
		case "call_expression", "new_expression":
			if IsRequestCall(n, src, requestMethods) {
				out = append(out, n)
			}
		}
		return true
	})
	return out
}

var requestTextRe = regexp.MustCompile(`(?i)\b(fetch|axios|ajax|xhr|fetchdataapi)\b|\$http|\.(post|put|patch|delete)\s*\(|\bdispatch\s*\(`)

// ContainsRequestText is the text-tier fallback for regions with no tree
// (markup, diff fragments). Input must already be comment/string stripped.
func ContainsRequestText(stripped string, requestMethods []string) bool {
	if requestTextRe.MatchString(stripped) {
		return true
	}
	ls := strings.ToLower(stripped)
	for _, kw := range requestMethods {
		if kw != "" && strings.Contains(ls, strings.ToLower(kw)+"(") {
			return true
		}
	}
	return false
}

func isPropsRooted(object string) bool {
	return object == "props" || object == "this.props" ||
		strings.HasPrefix(object, "props.") || strings.HasPrefix(object, "this.props.")
}

// objectHasProperty reports whether an object literal has a property with the
// given key name.
func objectHasProperty(obj *sitter.Node, src []byte, key string) bool {
	if obj == nil || obj.Type() != "object" {
		return false
	}
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		pair := obj.NamedChild(i)
		if pair.Type() != "pair" {
			continue
		}
		k := pair.ChildByFieldName("key")
		name := jsparse.Content(k, src)
		if name == key || strings.Trim(name, `"'`) == key {
			return true
		}
	}
	return false
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
