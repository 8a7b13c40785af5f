package jsparse

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies the grammar used to parse a source file.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangVue        Language = "vue"
)

// SourceUnit is one staged file under analysis. Tree is nil when the script
// region could not be parsed; evaluators must treat such a file as
// un-analyzable rather than failing.
type SourceUnit struct {
	Path string
	Raw  []byte
	Lang Language

	// Script is the region that was parsed: the whole file for JS/TS
	// dialects, the first <script> block for Vue components.
	Script     []byte
	ScriptLine int // 0-based line of Script within Raw
	Tree       *sitter.Tree

	// Markup is the extracted template text for container formats where
	// markup does not share the script's tree. Empty for JSX dialects.
	Markup     string
	MarkupLine int
}

// Root returns the parsed root node, or nil when the file is unparsable.
func (u *SourceUnit) Root() *sitter.Node {
	if u == nil || u.Tree == nil {
		return nil
	}
	return u.Tree.RootNode()
}

// FileLine converts a line inside Script to a line in the original file
// (1-based).
func (u *SourceUnit) FileLine(scriptLine int) int {
	return u.ScriptLine + scriptLine
}

// LanguageForPath maps a file extension onto a grammar. ok is false for
// extensions the tool does not analyze.
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".vue":
		return LangVue, true
	}
	return "", false
}

var (
	vueScriptRe   = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	vueTemplateRe = regexp.MustCompile(`(?is)<template[^>]*>(.*)</template>`)
	vueScriptTSRe = regexp.MustCompile(`(?i)<script[^>]*\blang\s*=\s*["']tsx?["']`)
)

// Parse builds a SourceUnit for path. It never fails: syntax errors yield a
// unit with a nil Tree, which downstream evaluators skip.
func Parse(ctx context.Context, path string, raw []byte) *SourceUnit {
	lang, ok := LanguageForPath(path)
	if !ok {
		return &SourceUnit{Path: path, Raw: raw}
	}
	unit := &SourceUnit{Path: path, Raw: raw, Lang: lang}

	script := raw
	grammar := grammarFor(lang)
	if lang == LangVue {
		text := string(raw)
		if m := vueScriptRe.FindStringSubmatchIndex(text); m != nil {
			script = raw[m[2]:m[3]]
			unit.ScriptLine = strings.Count(text[:m[2]], "\n")
			if vueScriptTSRe.MatchString(text[m[0]:m[2]]) {
				grammar = typescript.GetLanguage()
			}
		} else {
			script = nil
		}
		// Last close tag so nested <template> slots stay inside the region.
		if m := vueTemplateRe.FindStringSubmatchIndex(text); m != nil {
			if end := strings.LastIndex(text, "</template>"); end > m[2] {
				unit.Markup = text[m[2]:end]
			} else {
				unit.Markup = text[m[2]:m[3]]
			}
			unit.MarkupLine = strings.Count(text[:m[2]], "\n")
		}
	}
	unit.Script = script
	if len(script) == 0 {
		return unit
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, script)
	if err != nil || tree == nil {
		return unit
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		// Syntax error: deliberately permissive, the file is skipped.
		return unit
	}
	unit.Tree = tree
	return unit
}

func grammarFor(lang Language) *sitter.Language {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	default:
		// The javascript grammar covers JSX, and Vue script blocks
		// default to plain javascript.
		return javascript.GetLanguage()
	}
}
