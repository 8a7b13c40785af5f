package analyzers

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// AnalyzerEmptyState flags non-table list renderings with no empty-state
// branch. Tables come with their own built-in empty rendering and are
// skipped.
var AnalyzerEmptyState = &Analyzer{
	Name: "ux004_emptystate",
	Rule: 4,
	Doc:  "flags list renderings without an empty-state component, text or length check",
	Run:  runEmptyState,
}

var (
	tableComponentRe = regexp.MustCompile(`<(Table|a-table|el-table|DataGrid|AgGrid|vxe-table)\b`)
	listRenderRe     = regexp.MustCompile(`\.map\s*\(|\.forEach\s*\(|v-for=`)
	emptyTextRe      = regexp.MustCompile(`(?i)no data|nothing here|暂无数据|没有数据|无数据`)
	lengthCheckRe    = regexp.MustCompile(`\.length\s*(===?\s*0|<\s*1|\)?\s*\?)|!\s*[\w.$]+\.length`)
)

func runEmptyState(pass *Pass) ([]Violation, error) {
	if !pass.Enabled(4) {
		return nil, nil
	}
	if !pass.Diff.NewFile && !listRenderRe.MatchString(pass.Diff.AddedText()) {
		return nil, nil
	}
	stripped := pass.StrippedScript()
	markup := pass.StrippedMarkup()
	whole := stripped + "\n" + markup

	if tableComponentRe.MatchString(whole) {
		return nil, nil
	}
	rc := pass.RuleConfig(4)

	render, renderText := findListRendering(pass, stripped, markup)
	if render == nil {
		return nil, nil
	}
	if rc.WhitelistedKeyword(renderText) || rc.WhitelistedKeyword(pass.Unit.Path) {
		return nil, nil
	}
	if hasEmptyState(pass, whole, rc.CustomKeywords.EmptyComponents) {
		return nil, nil
	}
	return []Violation{{
		Rule:       4,
		Line:       render.Line,
		Message:    "list rendering has no empty state",
		Suggestion: "render an empty-state component or a zero-length branch when the list is empty",
	}}, nil
}

// findListRendering locates the first list-rendering construct: a .map/
// .forEach over an array in the tree, a for-of loop building elements, or a
// v-for directive in markup. Tree evidence wins over the markup text scan.
func findListRendering(pass *Pass, stripped, markup string) (*Evidence, string) {
	src := pass.Unit.Script
	var text string
	ev := FirstEvidence(
		func() *Evidence {
			root := pass.Unit.Root()
			if root == nil {
				return nil
			}
			var line int
			jsparse.Walk(root, func(n *sitter.Node) bool {
				if line != 0 {
					return false
				}
				switch n.Type() {
				case "call_expression":
					name := jsparse.CalleeName(n, src)
					if name != "map" && name != "forEach" {
						return true
					}
					arg := jsparse.FirstArgument(n)
					if arg == nil || !jsparse.IsFunctionNode(arg) {
						return true
					}
					line = pass.Unit.FileLine(jsparse.Line(n))
					text = jsparse.Content(jsparse.Callee(n), src)
					return false
				case "for_in_statement", "for_statement":
					// Only counts when the loop body produces elements.
					body := jsparse.Content(n.ChildByFieldName("body"), src)
					if strings.Contains(body, "<") && strings.Contains(body, "push") ||
						strings.Contains(body, "createElement") {
						line = pass.Unit.FileLine(jsparse.Line(n))
						text = body
						return false
					}
				}
				return true
			})
			if line == 0 {
				return nil
			}
			return TreeEvidence(line)
		},
		func() *Evidence {
			i := strings.Index(markup, "v-for=")
			if markup == "" || i < 0 {
				return nil
			}
			text = lineAround(markup, i)
			return TextEvidence(pass.Unit.MarkupLine + strings.Count(markup[:i], "\n") + 1)
		},
	)
	return ev, text
}

func hasEmptyState(pass *Pass, whole string, emptyComponents []string) bool {
	for _, comp := range emptyComponents {
		if comp != "" && strings.Contains(whole, "<"+comp) {
			return true
		}
	}
	// Literal empty text lives inside strings and markup; check raw text too,
	// the stripped view blanks string contents.
	if emptyTextRe.MatchString(string(pass.Unit.Raw)) {
		return true
	}
	return lengthCheckRe.MatchString(whole)
}

func lineAround(s string, idx int) string {
	start := strings.LastIndexByte(s[:idx], '\n') + 1
	end := strings.IndexByte(s[idx:], '\n')
	if end < 0 {
		return s[start:]
	}
	return s[start : idx+end]
}
