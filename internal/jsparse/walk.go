package jsparse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Walk visits node and its children depth-first. fn returning false prunes
// the subtree.
func Walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil || node.IsNull() {
		return
	}
	if !fn(node) {
		return
	}
	cursor := sitter.NewTreeCursor(node)
	defer cursor.Close()
	if ok := cursor.GoToFirstChild(); ok {
		for {
			Walk(cursor.CurrentNode(), fn)
			if ok := cursor.GoToNextSibling(); !ok {
				break
			}
		}
	}
}

// Content returns the source text of a node, or "" for nil nodes.
func Content(node *sitter.Node, src []byte) string {
	if node == nil || node.IsNull() {
		return ""
	}
	return node.Content(src)
}

// Line returns a node's 1-based start line.
func Line(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPoint().Row) + 1
}

// FindAll collects every descendant (including node itself) whose type is in
// types.
func FindAll(node *sitter.Node, types ...string) []*sitter.Node {
	var out []*sitter.Node
	Walk(node, func(n *sitter.Node) bool {
		for _, t := range types {
			if n.Type() == t {
				out = append(out, n)
				break
			}
		}
		return true
	})
	return out
}

// Callee returns the function expression of a call, following the "function"
// field with an index fallback for grammar variants.
func Callee(call *sitter.Node) *sitter.Node {
	if call == nil {
		return nil
	}
	if fn := call.ChildByFieldName("function"); fn != nil {
		return fn
	}
	if call.Type() == "new_expression" {
		if c := call.ChildByFieldName("constructor"); c != nil {
			return c
		}
	}
	if call.NamedChildCount() > 0 {
		return call.NamedChild(0)
	}
	return nil
}

// CalleeName returns the rightmost identifier of a call's callee: "post" for
// this.$http.post(...), "fetch" for fetch(...). Empty when unresolvable.
func CalleeName(call *sitter.Node, src []byte) string {
	fn := Callee(call)
	for fn != nil {
		switch fn.Type() {
		case "identifier", "property_identifier", "jsx_identifier":
			return Content(fn, src)
		case "member_expression":
			if p := fn.ChildByFieldName("property"); p != nil {
				return Content(p, src)
			}
			return ""
		case "parenthesized_expression", "non_null_expression", "await_expression":
			fn = fn.NamedChild(0)
		default:
			return ""
		}
	}
	return ""
}

// CalleeObject returns the receiver text of a member call ("this.props" for
// this.props.saveAction(...)), or "" for bare calls.
func CalleeObject(call *sitter.Node, src []byte) string {
	fn := Callee(call)
	if fn == nil || fn.Type() != "member_expression" {
		return ""
	}
	return Content(fn.ChildByFieldName("object"), src)
}

// FirstArgument returns the first argument node of a call, or nil.
func FirstArgument(call *sitter.Node) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		return args.NamedChild(i)
	}
	return nil
}

// Arguments returns all argument nodes of a call.
func Arguments(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, args.NamedChildCount())
	for i := 0; i < int(args.NamedChildCount()); i++ {
		out = append(out, args.NamedChild(i))
	}
	return out
}

// StringValue unwraps a string literal node to its text content. ok is false
// for non-string nodes.
func StringValue(node *sitter.Node, src []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Type() {
	case "string":
		var sb strings.Builder
		for i := 0; i < int(node.NamedChildCount()); i++ {
			c := node.NamedChild(i)
			if c.Type() == "string_fragment" {
				sb.WriteString(Content(c, src))
			}
		}
		if sb.Len() == 0 {
			// Some grammar versions expose no string_fragment child.
			return strings.Trim(Content(node, src), `"'`), true
		}
		return sb.String(), true
	case "template_string":
		return strings.Trim(Content(node, src), "`"), true
	}
	return "", false
}

// EnclosingFunction returns the nearest function-like ancestor of node.
func EnclosingFunction(node *sitter.Node) *sitter.Node {
	for n := node; n != nil; n = n.Parent() {
		if IsFunctionNode(n) {
			return n
		}
	}
	return nil
}

// IsFunctionNode reports whether n is any function-like construct.
func IsFunctionNode(n *sitter.Node) bool {
	switch n.Type() {
	case "function_declaration", "function", "function_expression",
		"arrow_function", "generator_function", "method_definition",
		"generator_function_declaration":
		return true
	}
	return false
}

// FunctionBody returns a function node's body (statement block or the bare
// expression of a concise arrow), or nil.
func FunctionBody(fn *sitter.Node) *sitter.Node {
	if fn == nil {
		return nil
	}
	if b := fn.ChildByFieldName("body"); b != nil {
		return b
	}
	if fn.NamedChildCount() > 0 {
		return fn.NamedChild(int(fn.NamedChildCount()) - 1)
	}
	return nil
}
