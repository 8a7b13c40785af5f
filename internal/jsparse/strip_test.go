package jsparse

import (
	"strings"
	"testing"
)

func TestStripCommentsAndStrings_Comments(t *testing.T) {
	src := "fetch('/x') // fetch again\n/* fetch\n inside block */\nconst a = 1;"
	out := StripCommentsAndStrings(src)

	if len(out) != len(src) {
		t.Fatalf("length changed: %d != %d", len(out), len(src))
	}
	if strings.Count(out, "\n") != strings.Count(src, "\n") {
		t.Fatal("newlines not preserved")
	}
	if got := strings.Count(out, "fetch"); got != 1 {
		t.Fatalf("expected only the code-level fetch to survive, found %d", got)
	}
	if !strings.Contains(out, "const a = 1;") {
		t.Fatal("code after comments must be untouched")
	}
}

func TestStripCommentsAndStrings_Strings(t *testing.T) {
	src := `const msg = "call fetch()"; const tpl = ` + "`axios.post()`" + `; const s = 'xhr';`
	out := StripCommentsAndStrings(src)

	if len(out) != len(src) {
		t.Fatalf("length changed: %d != %d", len(out), len(src))
	}
	for _, word := range []string{"fetch", "axios", "xhr"} {
		if strings.Contains(out, word) {
			t.Fatalf("string contents must be blanked, %q survived in %q", word, out)
		}
	}
	if !strings.Contains(out, "const msg = ") {
		t.Fatal("code outside strings must survive")
	}
}

func TestStripCommentsAndStrings_EscapedQuote(t *testing.T) {
	src := `const s = 'it\'s fetch'; fetch('/x');`
	out := StripCommentsAndStrings(src)

	if len(out) != len(src) {
		t.Fatalf("length changed: %d != %d", len(out), len(src))
	}
	if got := strings.Count(out, "fetch"); got != 1 {
		t.Fatalf("escaped quote must not end the string early, found %d fetch", got)
	}
}

func TestStripCommentsAndStrings_UnterminatedString(t *testing.T) {
	src := "const s = 'oops\nfetch('/x');"
	out := StripCommentsAndStrings(src)

	if !strings.Contains(out, "fetch(") {
		t.Fatal("an unterminated literal must not swallow the rest of the file")
	}
}

func TestStripMarkupComments(t *testing.T) {
	src := "<div>\n  <!-- <el-input v-model=\"a\" /> -->\n  <a-button @click=\"handleAdd\">Add</a-button>\n</div>"
	out := StripMarkupComments(src)

	if len(out) != len(src) {
		t.Fatalf("length changed: %d != %d", len(out), len(src))
	}
	if strings.Contains(out, "el-input") {
		t.Fatal("commented-out markup must be blanked")
	}
	if !strings.Contains(out, `@click="handleAdd"`) {
		t.Fatal("directive attribute values are live code and must survive")
	}
}
