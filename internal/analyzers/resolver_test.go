package analyzers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// writeProjectFile creates path under root, with parent directories.
func writeProjectFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// actionProject builds a minimal project with a namespace module and an api
// directory declaring saveUserAction with the given loading flag.
func actionProject(t *testing.T, flag string) (root string, unit *jsparse.SourceUnit) {
	t.Helper()
	root = t.TempDir()
	writeProjectFile(t, root, "src/constants/namespace.js",
		"export const NS_USER = defineNamespace('user');\n")
	writeProjectFile(t, root, "src/api/user/index.js",
		"export const saveUserAction = declareRequest('"+flag+"', '/api/user/save');\n")
	page := writeProjectFile(t, root, "src/pages/user/edit.jsx", `
import { NS_USER } from '@/constants/namespace';

const Edit = (props) => {
  const onSave = () => props.saveUserAction(props.form);
  return <Button onClick={onSave}>Save</Button>;
};`)
	raw, err := os.ReadFile(page)
	if err != nil {
		t.Fatal(err)
	}
	return root, jsparse.Parse(context.Background(), page, raw)
}

func TestResolver_NamespaceImportResolvesAction(t *testing.T) {
	root, unit := actionProject(t, "loading")
	r := NewResolver(root, zap.NewNop())

	b := r.Resolve(unit, "saveUserAction", true)
	if b == nil {
		t.Fatal("expected a binding")
	}
	if b.LoadingName != "loading" {
		t.Fatalf("expected flag %q, got %q", "loading", b.LoadingName)
	}
}

func TestResolver_StrictRejectsOtherFlags(t *testing.T) {
	root, unit := actionProject(t, "saving")
	r := NewResolver(root, zap.NewNop())

	if b := r.Resolve(unit, "saveUserAction", true); b != nil {
		t.Fatalf("strict mode must only accept the shared flag, got %+v", b)
	}
	loose := r.Resolve(unit, "saveUserAction", false)
	if loose == nil {
		t.Fatal("loose mode should still report the declared flag")
	}
	if loose.LoadingName != "saving" {
		t.Fatalf("expected flag %q, got %q", "saving", loose.LoadingName)
	}
}

func TestResolver_UnknownActionIsNil(t *testing.T) {
	root, unit := actionProject(t, "loading")
	r := NewResolver(root, zap.NewNop())

	if b := r.Resolve(unit, "deleteUserAction", false); b != nil {
		t.Fatalf("expected nil for an undeclared action, got %+v", b)
	}
}

func TestResolver_FallbackSearchWithoutNamespaceImport(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "src/services/userService.js",
		"export const saveUserAction = declareRequest('loading', '/api/user/save');\n")
	page := writeProjectFile(t, root, "src/pages/edit.jsx", `
const Edit = (props) => {
  const onSave = () => props.saveUserAction(props.form);
  return <Button onClick={onSave}>Save</Button>;
};`)
	raw, err := os.ReadFile(page)
	if err != nil {
		t.Fatal(err)
	}
	unit := jsparse.Parse(context.Background(), page, raw)

	r := NewResolver(root, zap.NewNop())
	b := r.Resolve(unit, "saveUserAction", true)
	if b == nil || b.LoadingName != "loading" {
		t.Fatalf("expected fallback search to find the declaration, got %+v", b)
	}
}

func TestResolver_ResultIsCached(t *testing.T) {
	root, unit := actionProject(t, "loading")
	r := NewResolver(root, zap.NewNop())

	first := r.Resolve(unit, "saveUserAction", true)
	if first == nil {
		t.Fatal("expected a binding")
	}

	// Remove the declaring file; a cached resolver must not re-scan.
	if err := os.RemoveAll(filepath.Join(root, "src", "api")); err != nil {
		t.Fatal(err)
	}
	second := r.Resolve(unit, "saveUserAction", true)
	if second != first {
		t.Fatalf("expected the cached binding, got %+v", second)
	}
}
