package analyzers

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// Element is one interactive/markup element, unified across JSX elements
// (backed by a tree node) and Vue template tags (text-scanned, Node nil).
type Element struct {
	Name  string
	Line  int // 1-based file line
	Attrs map[string]string
	Node  *sitter.Node
}

// Attr returns the raw value text of an attribute (JSX expression braces and
// quotes stripped). ok distinguishes empty values from absent attributes.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// HasAttr reports whether any of the attribute names is present.
func (e *Element) HasAttr(names ...string) bool {
	for _, n := range names {
		if _, ok := e.Attrs[n]; ok {
			return true
		}
	}
	return false
}

// Elements collects every element of the unit: JSX elements from the tree
// plus tags scanned from the Vue markup region.
func (p *Pass) Elements() []Element {
	var out []Element
	if root := p.Unit.Root(); root != nil {
		out = append(out, elementsFromTree(root, p.Unit.Script, p.Unit.ScriptLine)...)
	}
	if p.Unit.Markup != "" {
		out = append(out, elementsFromMarkup(p.StrippedMarkup(), p.Unit.MarkupLine)...)
	}
	return out
}

func elementsFromTree(root *sitter.Node, src []byte, lineOff int) []Element {
	nodes := jsparse.FindAll(root, "jsx_opening_element", "jsx_self_closing_element")
	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		el := Element{
			Name:  jsparse.Content(n.ChildByFieldName("name"), src),
			Line:  lineOff + jsparse.Line(n),
			Attrs: map[string]string{},
			Node:  n,
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			attr := n.NamedChild(i)
			if attr.Type() != "jsx_attribute" {
				continue
			}
			var key, val string
			for j := 0; j < int(attr.NamedChildCount()); j++ {
				c := attr.NamedChild(j)
				switch c.Type() {
				case "property_identifier", "jsx_identifier", "identifier", "jsx_namespace_name":
					if key == "" {
						key = jsparse.Content(c, src)
					}
				case "string":
					val, _ = jsparse.StringValue(c, src)
				case "jsx_expression":
					val = strings.TrimSpace(strings.Trim(jsparse.Content(c, src), "{}"))
				}
			}
			if key != "" {
				el.Attrs[key] = val
			}
		}
		if el.Name != "" {
			out = append(out, el)
		}
	}
	return out
}

var (
	markupTagRe  = regexp.MustCompile(`<([A-Za-z][\w.-]*)((?:[^<>"']|"[^"]*"|'[^']*')*?)/?>`)
	markupAttrRe = regexp.MustCompile(`([@:]?[\w.:-]+)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'))?`)
)

func elementsFromMarkup(markup string, lineOff int) []Element {
	var out []Element
	for _, m := range markupTagRe.FindAllStringSubmatchIndex(markup, -1) {
		name := markup[m[2]:m[3]]
		attrText := markup[m[4]:m[5]]
		el := Element{
			Name:  name,
			Line:  lineOff + strings.Count(markup[:m[0]], "\n") + 1,
			Attrs: map[string]string{},
		}
		for _, am := range markupAttrRe.FindAllStringSubmatch(attrText, -1) {
			key := am[1]
			val := am[2]
			if val == "" {
				val = am[3]
			}
			// Strip Vue event modifiers: @click.stop -> @click.
			if strings.HasPrefix(key, "@") || strings.HasPrefix(key, "v-on:") {
				if i := strings.Index(key, "."); i >= 0 {
					key = key[:i]
				}
			}
			if key != "" {
				el.Attrs[key] = val
			}
		}
		out = append(out, el)
	}
	return out
}

// handlerAttrs lists the confirm-style callback attributes, JSX camelCase and
// Vue directives both.
var handlerAttrs = []string{
	"onClick", "onOk", "onConfirm", "onFinish", "onSubmit",
	"@click", "@ok", "@confirm", "@finish", "@submit",
	"v-on:click", "v-on:ok", "v-on:confirm", "v-on:finish", "v-on:submit",
}

// Handler is a candidate event handler bound to an interactive element.
type Handler struct {
	Name    string
	Line    int
	Attr    string
	Element Element
}

// handlers finds every element/attribute pair that binds a confirm-style
// callback, with the binding expression text as the handler name.
func (p *Pass) handlers() []Handler {
	var out []Handler
	for _, el := range p.Elements() {
		for _, attr := range handlerAttrs {
			v, ok := el.Attr(attr)
			if !ok || strings.TrimSpace(v) == "" {
				continue
			}
			out = append(out, Handler{
				Name:    strings.TrimSpace(v),
				Line:    el.Line,
				Attr:    attr,
				Element: el,
			})
		}
	}
	return out
}

var identRe = regexp.MustCompile(`[A-Za-z_$][\w$]*`)

var jsKeywords = map[string]bool{
	"async": true, "await": true, "function": true, "return": true,
	"this": true, "true": true, "false": true, "null": true,
	"undefined": true, "new": true, "const": true, "let": true, "var": true,
}

// handlerIdents extracts candidate identifiers from a binding expression such
// as "handleAdd", "() => handleAdd(row)" or "debounce(handleAdd, 500)".
func handlerIdents(expr string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range identRe.FindAllString(expr, -1) {
		if jsKeywords[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// findFunction locates the function bound to name in the tree: declarations,
// arrow/function initializers, class methods and class fields, with a
// case-insensitive substring fallback for near-miss naming.
func findFunction(root *sitter.Node, src []byte, name string) *sitter.Node {
	if root == nil || name == "" {
		return nil
	}
	var exact, loose *sitter.Node
	match := func(candidate string, fn *sitter.Node) {
		if fn == nil || candidate == "" {
			return
		}
		if candidate == name {
			if exact == nil {
				exact = fn
			}
			return
		}
		if loose == nil &&
			(strings.EqualFold(candidate, name) ||
				strings.Contains(strings.ToLower(candidate), strings.ToLower(name)) ||
				strings.Contains(strings.ToLower(name), strings.ToLower(candidate))) {
			loose = fn
		}
	}
	jsparse.Walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_declaration", "generator_function_declaration", "method_definition":
			match(jsparse.Content(n.ChildByFieldName("name"), src), n)
		case "variable_declarator", "field_definition", "public_field_definition":
			value := n.ChildByFieldName("value")
			if value != nil && jsparse.IsFunctionNode(value) {
				match(jsparse.Content(n.ChildByFieldName("name"), src), value)
			} else if inner := wrappedFunction(value); inner != nil {
				// debounce(fn, delay) and friends bind the inner function.
				match(jsparse.Content(n.ChildByFieldName("name"), src), inner)
			}
		case "assignment_expression":
			right := n.ChildByFieldName("right")
			if right != nil && jsparse.IsFunctionNode(right) {
				left := jsparse.Content(n.ChildByFieldName("left"), src)
				if i := strings.LastIndex(left, "."); i >= 0 {
					left = left[i+1:]
				}
				match(left, right)
			}
		case "pair":
			// Vue options-API: methods: { handleAdd: function () {} }.
			value := n.ChildByFieldName("value")
			if value != nil && jsparse.IsFunctionNode(value) {
				match(strings.Trim(jsparse.Content(n.ChildByFieldName("key"), src), `"'`), value)
			}
		}
		return true
	})
	if exact != nil {
		return exact
	}
	return loose
}

// wrappedFunction returns the function argument of a wrapper call such as
// debounce(fn, 500) or useCallback(fn, deps).
func wrappedFunction(value *sitter.Node) *sitter.Node {
	if value == nil || value.Type() != "call_expression" {
		return nil
	}
	args := value.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if c := args.NamedChild(i); jsparse.IsFunctionNode(c) {
			return c
		}
	}
	return nil
}

// resolveHandlerFunction maps a handler binding to its function node. Inline
// arrows are their own function; otherwise each extracted identifier is
// looked up until one matches.
func resolveHandlerFunction(root *sitter.Node, src []byte, h Handler) *sitter.Node {
	if h.Element.Node != nil {
		if expr := inlineFunction(h.Element.Node, src, h.Attr); expr != nil {
			return expr
		}
	}
	for _, id := range handlerIdents(h.Name) {
		if fn := findFunction(root, src, id); fn != nil {
			return fn
		}
	}
	return nil
}

// inlineFunction returns the arrow/function node when the attribute value is
// an inline function expression.
func inlineFunction(opening *sitter.Node, src []byte, attrName string) *sitter.Node {
	for i := 0; i < int(opening.NamedChildCount()); i++ {
		attr := opening.NamedChild(i)
		if attr.Type() != "jsx_attribute" {
			continue
		}
		var key string
		var expr *sitter.Node
		for j := 0; j < int(attr.NamedChildCount()); j++ {
			c := attr.NamedChild(j)
			switch c.Type() {
			case "property_identifier", "jsx_identifier", "identifier":
				if key == "" {
					key = jsparse.Content(c, src)
				}
			case "jsx_expression":
				expr = c
			}
		}
		if key != attrName || expr == nil {
			continue
		}
		for j := 0; j < int(expr.NamedChildCount()); j++ {
			c := expr.NamedChild(j)
			if jsparse.IsFunctionNode(c) {
				return c
			}
		}
	}
	return nil
}

// lowerFirst turns a Loading-style suffix into its flag form: setLoading's
// suffix "Loading" becomes "loading".
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
