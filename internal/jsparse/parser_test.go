package jsparse

import (
	"context"
	"strings"
	"testing"
)

func TestLanguageForPath(t *testing.T) {
	cases := []struct {
		path string
		lang Language
		ok   bool
	}{
		{"src/a.js", LangJavaScript, true},
		{"src/a.jsx", LangJavaScript, true},
		{"src/a.mjs", LangJavaScript, true},
		{"src/a.ts", LangTypeScript, true},
		{"src/a.tsx", LangTSX, true},
		{"src/a.vue", LangVue, true},
		{"src/A.VUE", LangVue, true},
		{"src/a.css", "", false},
		{"Makefile", "", false},
	}
	for _, tc := range cases {
		lang, ok := LanguageForPath(tc.path)
		if lang != tc.lang || ok != tc.ok {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tc.path, lang, ok, tc.lang, tc.ok)
		}
	}
}

func TestParse_PlainJavaScript(t *testing.T) {
	unit := Parse(context.Background(), "a.js", []byte("const x = fetch('/x');\n"))
	if unit.Root() == nil {
		t.Fatal("expected a parse tree")
	}
	if unit.Markup != "" {
		t.Fatalf("plain JS has no markup region, got %q", unit.Markup)
	}
	if got := unit.FileLine(1); got != 1 {
		t.Fatalf("script line 1 must be file line 1, got %d", got)
	}
}

func TestParse_SyntaxErrorYieldsNilTree(t *testing.T) {
	unit := Parse(context.Background(), "a.js", []byte("const = = = ;;; function("))
	if unit.Root() != nil {
		t.Fatal("a syntax error must leave the tree nil")
	}
}

func TestParse_UnknownExtension(t *testing.T) {
	unit := Parse(context.Background(), "style.css", []byte(".a { color: red }"))
	if unit.Root() != nil || unit.Lang != "" {
		t.Fatal("unknown extensions are not parsed")
	}
}

func TestParse_VueComponent(t *testing.T) {
	src := `<template>
  <div>
    <a-button @click="handleAdd">Add</a-button>
  </div>
</template>
<script>
export default {
  methods: {
    handleAdd() { this.$http.post('/api/x') },
  },
};
</script>`
	unit := Parse(context.Background(), "page.vue", []byte(src))
	if unit.Root() == nil {
		t.Fatal("expected the script block to parse")
	}
	if !strings.Contains(string(unit.Script), "handleAdd()") {
		t.Fatalf("script region wrong: %q", unit.Script)
	}
	if !strings.Contains(unit.Markup, "a-button") {
		t.Fatalf("markup region wrong: %q", unit.Markup)
	}
	// <script> opens on file line 6; the first script line is its remainder.
	if unit.ScriptLine != 5 {
		t.Fatalf("expected script offset 5, got %d", unit.ScriptLine)
	}
	if got := unit.FileLine(2); got != 7 {
		t.Fatalf("script line 2 must be file line 7, got %d", got)
	}
}

func TestParse_VueTypeScriptBlock(t *testing.T) {
	src := `<script lang="ts">
const n: number = 1;
export default { name: 'Typed' };
</script>`
	unit := Parse(context.Background(), "typed.vue", []byte(src))
	if unit.Root() == nil {
		t.Fatal("expected the ts script block to parse")
	}
}

func TestParse_VueWithoutScriptBlock(t *testing.T) {
	src := `<template>
  <div v-for="item in items">{{ item }}</div>
</template>`
	unit := Parse(context.Background(), "pure.vue", []byte(src))
	if unit.Root() != nil {
		t.Fatal("no script block means no tree")
	}
	if !strings.Contains(unit.Markup, "v-for") {
		t.Fatalf("markup must still be extracted, got %q", unit.Markup)
	}
}
