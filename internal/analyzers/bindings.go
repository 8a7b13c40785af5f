package analyzers

import (
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// loadingAttrNames are the attributes that surface a busy flag in the UI.
var loadingAttrNames = []string{
	"loading", "confirmLoading", "spinning", "disabled",
	":loading", ":confirm-loading", ":spinning", ":disabled",
}

var (
	wordResMu sync.Mutex
	wordRes   = map[string]*regexp.Regexp{}
)

func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	wordResMu.Lock()
	re, ok := wordRes[word]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
		wordRes[word] = re
	}
	wordResMu.Unlock()
	return re.MatchString(s)
}

// elementBindsFlag reports whether el binds flag through a loading-style
// attribute. Setting a flag without binding it to the UI is the classic
// near-miss this check exists to separate out.
func elementBindsFlag(el Element, flag string) bool {
	for _, attr := range loadingAttrNames {
		if v, ok := el.Attr(attr); ok && containsWord(v, flag) {
			return true
		}
	}
	return false
}

// flagBoundAnywhere reports whether flag is bound to a loading-style
// attribute on any element whose name contains one of elementNames
// (case-insensitive). Empty elementNames means any element.
func flagBoundAnywhere(p *Pass, flag string, elementNames ...string) bool {
	for _, el := range p.Elements() {
		if len(elementNames) > 0 && !nameMatchesAny(el.Name, elementNames) {
			continue
		}
		if elementBindsFlag(el, flag) {
			return true
		}
	}
	return false
}

func nameMatchesAny(name string, candidates []string) bool {
	ln := strings.ToLower(name)
	for _, c := range candidates {
		if strings.Contains(ln, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

// inCompletionCallback reports whether n sits inside a callback passed to a
// .then/.catch/.finally call.
func inCompletionCallback(n *sitter.Node, src []byte) bool {
	for a := n.Parent(); a != nil; a = a.Parent() {
		if a.Type() != "call_expression" {
			continue
		}
		switch jsparse.CalleeName(a, src) {
		case "then", "catch", "finally":
			return true
		}
	}
	return false
}

// flagMutation is one observed write to a boolean busy flag, either through a
// setXxx state setter or a direct assignment.
type flagMutation struct {
	flag  string
	value bool
	node  *sitter.Node
}

var setterRe = regexp.MustCompile(`^set[A-Z]`)

// flagMutations collects busy-flag writes inside fn: setLoading(true) style
// setter calls and loading = true style assignments.
func flagMutations(fn *sitter.Node, src []byte) []flagMutation {
	var out []flagMutation
	jsparse.Walk(fn, func(n *sitter.Node) bool {
		switch n.Type() {
		case "call_expression":
			name := jsparse.CalleeName(n, src)
			if !setterRe.MatchString(name) {
				return true
			}
			arg := jsparse.Content(jsparse.FirstArgument(n), src)
			if arg != "true" && arg != "false" {
				return true
			}
			out = append(out, flagMutation{flag: lowerFirst(name[3:]), value: arg == "true", node: n})
		case "assignment_expression":
			left := jsparse.Content(n.ChildByFieldName("left"), src)
			right := jsparse.Content(n.ChildByFieldName("right"), src)
			if right != "true" && right != "false" {
				return true
			}
			ll := strings.ToLower(left)
			if !strings.Contains(ll, "loading") && !strings.Contains(ll, "submitting") && !strings.Contains(ll, "pending") {
				return true
			}
			flag := left
			if i := strings.LastIndex(flag, "."); i >= 0 {
				flag = flag[i+1:]
			}
			out = append(out, flagMutation{flag: flag, value: right == "true", node: n})
		}
		return true
	})
	return out
}

// guardedFlag holds the outcome of matching a set-before/reset-after pair
// around a request call.
type guardedFlag struct {
	flag  string
	bound bool
}

// flagGuardAround looks for a flag set to true before the request call and
// reset to false on the completion path (then/catch/finally callback, or past
// the request in an async body).
func flagGuardAround(fn, request *sitter.Node, src []byte) *guardedFlag {
	muts := flagMutations(fn, src)
	for _, set := range muts {
		if !set.value || set.node.StartByte() >= request.StartByte() {
			continue
		}
		for _, reset := range muts {
			if reset.value || reset.flag != set.flag {
				continue
			}
			if inCompletionCallback(reset.node, src) || reset.node.StartByte() > request.EndByte() {
				return &guardedFlag{flag: set.flag}
			}
		}
	}
	return nil
}
