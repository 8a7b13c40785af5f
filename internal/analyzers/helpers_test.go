package analyzers

import (
	"context"
	"reflect"
	"testing"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

func TestHandlerIdents(t *testing.T) {
	cases := []struct {
		expr string
		want []string
	}{
		{"handleAdd", []string{"handleAdd"}},
		{"() => handleAdd(row)", []string{"handleAdd", "row"}},
		{"debounce(handleAdd, 500)", []string{"debounce", "handleAdd"}},
		{"async () => await this.save()", []string{"save"}},
	}
	for _, tc := range cases {
		got := handlerIdents(tc.expr)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%q: got %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestFindFunction(t *testing.T) {
	src := `
function handleSave() { return 1 }
const handleAdd = async () => { fetch('/x') };
const handleEdit = debounce(() => { fetch('/y') }, 600);
class Page {
  handleDelete() { fetch('/z') }
  handleReset = () => {};
}
const obj = { handleClose: function () {} };
`
	unit := jsparse.Parse(context.Background(), "page.jsx", []byte(src))
	root := unit.Root()
	if root == nil {
		t.Fatal("fixture must parse")
	}
	for _, name := range []string{"handleSave", "handleAdd", "handleEdit", "handleDelete", "handleReset", "handleClose"} {
		if findFunction(root, unit.Script, name) == nil {
			t.Errorf("findFunction(%q) = nil", name)
		}
	}
	if findFunction(root, unit.Script, "nonexistentThing") != nil {
		t.Error("unknown names must not resolve")
	}
}

func TestElementsFromMarkup(t *testing.T) {
	markup := `
  <a-button type="primary" @click.stop="handleAdd">Add</a-button>
  <el-input v-model="form.name" :placeholder="hint" />
`
	els := elementsFromMarkup(markup, 0)
	if len(els) != 2 {
		t.Fatalf("expected 2 elements, got %d: %+v", len(els), els)
	}
	btn := els[0]
	if btn.Name != "a-button" {
		t.Fatalf("unexpected element name %q", btn.Name)
	}
	// Event modifiers are stripped from the attribute key.
	if v, ok := btn.Attr("@click"); !ok || v != "handleAdd" {
		t.Fatalf("expected @click=handleAdd, got %q (%v)", v, ok)
	}
	input := els[1]
	if !input.HasAttr(":placeholder") {
		t.Fatalf("expected :placeholder on %+v", input)
	}
}

func TestElementsFromJSXTree(t *testing.T) {
	src := `
const Page = () => (
  <div>
    <Button loading={loading} onClick={handleAdd}>Add</Button>
    <Input placeholder="name" />
  </div>
);`
	unit := jsparse.Parse(context.Background(), "page.jsx", []byte(src))
	pass := &Pass{Unit: unit}
	els := pass.Elements()
	var button, input *Element
	for i := range els {
		switch els[i].Name {
		case "Button":
			button = &els[i]
		case "Input":
			input = &els[i]
		}
	}
	if button == nil || input == nil {
		t.Fatalf("missing elements: %+v", els)
	}
	if v, ok := button.Attr("onClick"); !ok || v != "handleAdd" {
		t.Fatalf("expected onClick=handleAdd, got %q (%v)", v, ok)
	}
	if v, ok := button.Attr("loading"); !ok || v != "loading" {
		t.Fatalf("expected loading binding, got %q (%v)", v, ok)
	}
	if v, ok := input.Attr("placeholder"); !ok || v != "name" {
		t.Fatalf("expected placeholder=name, got %q (%v)", v, ok)
	}
}
