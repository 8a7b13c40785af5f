package analyzers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/uxaudit/uxaudit/internal/config"
	"github.com/uxaudit/uxaudit/internal/diff"
	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// runRuleOnSrc parses src as a brand-new file and runs one analyzer with the
// default configuration.
func runRuleOnSrc(t *testing.T, an *Analyzer, path, src string) []Violation {
	t.Helper()
	return runRuleOnSrcCfg(t, an, path, src, config.Default(), "")
}

func runRuleOnSrcCfg(t *testing.T, an *Analyzer, path, src string, cfg *config.Config, diffText string) []Violation {
	t.Helper()
	unit := jsparse.Parse(context.Background(), path, []byte(src))
	fileDiff, err := diff.Parse(path, diffText)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	pass := &Pass{
		Unit:     unit,
		Diff:     fileDiff,
		Config:   cfg,
		Resolver: NewResolver("", zap.NewNop()),
		Log:      zap.NewNop(),
	}
	vs, err := an.Run(pass)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return vs
}

// runRuleInProject parses one file of a temp project and runs an analyzer
// with the resolver rooted at the project, so cross-file action resolution
// takes part.
func runRuleInProject(t *testing.T, an *Analyzer, root, rel string) []Violation {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	unit := jsparse.Parse(context.Background(), path, raw)
	fileDiff, err := diff.Parse(path, "")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	pass := &Pass{
		Unit:     unit,
		Diff:     fileDiff,
		Config:   config.Default(),
		Resolver: NewResolver(root, zap.NewNop()),
		Log:      zap.NewNop(),
	}
	vs, err := an.Run(pass)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return vs
}

func TestDoubleSubmit_UnprotectedHandler(t *testing.T) {
	src := `
const Page = () => {
  const handleAdd = async () => { await fetch('/api/x') };
  return <Button onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(vs), vs)
	}
	if vs[0].Rule != 1 {
		t.Fatalf("expected rule 1, got %d", vs[0].Rule)
	}
}

func TestDoubleSubmit_BoundLoadingFlagProtects(t *testing.T) {
	src := `
const Page = () => {
  const [loading, setLoading] = useState(false);
  const handleAdd = async () => {
    setLoading(true);
    fetch('/api/x').finally(() => setLoading(false));
  };
  return <Button loading={loading} onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_WrapperElementBindingProtects(t *testing.T) {
	src := `
const Page = () => {
  const [loading, setLoading] = useState(false);
  const handleSave = async () => {
    setLoading(true);
    fetch('/api/x').finally(() => setLoading(false));
  };
  return (
    <Modal confirmLoading={loading}>
      <Button onClick={handleSave}>Save</Button>
    </Modal>
  );
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 0 {
		t.Fatalf("flag bound on the enclosing Modal counts, got %d: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_UnboundLoadingFlagIsDistinctViolation(t *testing.T) {
	src := `
const Page = () => {
  const [loading, setLoading] = useState(false);
  const handleAdd = async () => {
    setLoading(true);
    fetch('/api/x').finally(() => setLoading(false));
  };
  return <Button onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(vs), vs)
	}
	if !strings.Contains(vs[0].Message, "never bound") {
		t.Fatalf("expected the unbound-flag diagnostic, got %q", vs[0].Message)
	}
}

func TestDoubleSubmit_LeadingGuardProtects(t *testing.T) {
	src := `
const Page = () => {
  const handleAdd = async () => {
    if (loading) return;
    await fetch('/api/x');
  };
  return <Button onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_DebounceProtects(t *testing.T) {
	src := `
const Page = () => {
  const handleAdd = debounce(() => { fetch('/api/x') }, 800);
  return <Button onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_ShortDebounceFlagged(t *testing.T) {
	src := `
const Page = () => {
  const handleAdd = debounce(() => { fetch('/api/x') }, 100);
  return <Button onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(vs), vs)
	}
	if !strings.Contains(vs[0].Message, "500ms") {
		t.Fatalf("expected the short-debounce diagnostic, got %q", vs[0].Message)
	}
}

func TestDoubleSubmit_DisabledBindingProtects(t *testing.T) {
	src := `
const Page = () => {
  const handleAdd = () => { fetch('/api/x') };
  return <Button disabled={handleAdd.pending} onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_CommentedRequestDoesNotTrigger(t *testing.T) {
	src := `
const Page = () => {
  const handleAdd = () => {
    // fetch('/api/x')
  };
  return <Button onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_NonRequestHandlerIgnored(t *testing.T) {
	src := `
const Page = () => {
  const handleToggle = () => { setOpen(!open) };
  return <Button onClick={handleToggle}>Toggle</Button>;
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_HandlerCheckedOnce(t *testing.T) {
	src := `
const Page = () => {
  const handleAdd = () => { fetch('/api/x') };
  return (
    <div>
      <Button onClick={handleAdd}>Add</Button>
      <Button onClick={() => handleAdd()}>Add again</Button>
    </div>
  );
};`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(vs) != 1 {
		t.Fatalf("handler should be checked once, got %d violations: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_WhitelistKeywordExempts(t *testing.T) {
	cfg := config.Default()
	cfg.Rule1.Whitelist.Keywords = []string{"handleAdd"}
	src := `
const Page = () => {
  const handleAdd = () => { fetch('/api/x') };
  return <Button onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrcCfg(t, AnalyzerDoubleSubmit, "page.jsx", src, cfg, "")
	if len(vs) != 0 {
		t.Fatalf("whitelisted handler must not be flagged, got %+v", vs)
	}
}

func TestDoubleSubmit_DisabledRuleReturnsNothing(t *testing.T) {
	cfg := config.Default()
	off := false
	cfg.Rule1.Enabled = &off
	src := `
const Page = () => {
  const handleAdd = () => { fetch('/api/x') };
  return <Button onClick={handleAdd}>Add</Button>;
};`
	vs := runRuleOnSrcCfg(t, AnalyzerDoubleSubmit, "page.jsx", src, cfg, "")
	if len(vs) != 0 {
		t.Fatalf("disabled rule must not report, got %+v", vs)
	}
}

func TestDoubleSubmit_VueHandler(t *testing.T) {
	src := `
<template>
  <a-button @click="handleSave">Save</a-button>
</template>
<script>
export default {
  methods: {
    handleSave: function () {
      this.$http.post('/api/save', this.form);
    },
  },
};
</script>`
	vs := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.vue", src)
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(vs), vs)
	}
}

func TestDoubleSubmit_ActionFlagBoundProtects(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "src/constants/namespace.js",
		"export const NS_USER = defineNamespace('user');\n")
	writeProjectFile(t, root, "src/api/user/index.js",
		"export const saveUserAction = declareRequest('loading', '/api/user/save');\n")
	writeProjectFile(t, root, "src/pages/user/edit.jsx", `
import { NS_USER } from '@/constants/namespace';

const Edit = (props) => {
  const onSave = () => props.saveUserAction(props.form);
  return <Button loading={loading} onClick={onSave}>Save</Button>;
};`)

	vs := runRuleInProject(t, AnalyzerDoubleSubmit, root, "src/pages/user/edit.jsx")
	if len(vs) != 0 {
		t.Fatalf("action-declared flag bound on the element must protect, got %+v", vs)
	}
}

func TestDoubleSubmit_ActionDeclaresDifferentFlag(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "src/constants/namespace.js",
		"export const NS_USER = defineNamespace('user');\n")
	writeProjectFile(t, root, "src/api/user/index.js",
		"export const saveUserAction = declareRequest('saving', '/api/user/save');\n")
	writeProjectFile(t, root, "src/pages/user/edit.jsx", `
import { NS_USER } from '@/constants/namespace';

const Edit = (props) => {
  const onSave = () => props.saveUserAction(props.form);
  return <Button loading={otherFlag} onClick={onSave}>Save</Button>;
};`)

	vs := runRuleInProject(t, AnalyzerDoubleSubmit, root, "src/pages/user/edit.jsx")
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(vs), vs)
	}
	if !strings.Contains(vs[0].Message, `declares loading flag "saving"`) {
		t.Fatalf("expected the wrong-flag diagnostic, got %q", vs[0].Message)
	}
}

func TestDoubleSubmit_Idempotent(t *testing.T) {
	src := `
const Page = () => {
  const handleAdd = () => { fetch('/api/x') };
  return <Button onClick={handleAdd}>Add</Button>;
};`
	first := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	second := runRuleOnSrc(t, AnalyzerDoubleSubmit, "page.jsx", src)
	if len(first) != len(second) {
		t.Fatalf("evaluator is not idempotent: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("violation %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
