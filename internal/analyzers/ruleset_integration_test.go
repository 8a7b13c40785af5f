package analyzers_test

import (
	"testing"

	"github.com/uxaudit/uxaudit/internal/analyzers"
	"github.com/uxaudit/uxaudit/internal/analyzers/testutil"
	"github.com/uxaudit/uxaudit/internal/config"
)

// The per-rule details live in the in-package tests; these exercise each
// analyzer through the exported surface only.

func TestRuleSet_FlagsConventionBreaches(t *testing.T) {
	cases := []struct {
		name     string
		analyzer *analyzers.Analyzer
		path     string
		src      string
	}{
		{
			name:     "submit handler without protection",
			analyzer: analyzers.AnalyzerDoubleSubmit,
			path:     "page.jsx",
			src: `
const Page = () => {
  const handleSubmit = () => { axios.post('/api/x') };
  return <Button onClick={handleSubmit}>Go</Button>;
};`,
		},
		{
			name:     "list page fetch without spinner",
			analyzer: analyzers.AnalyzerInitialLoad,
			path:     "list.jsx",
			src: `
const List = () => {
  useEffect(() => { fetch('/api/rows') }, []);
  return <ul>{rows.map(r => <li>{r.id}</li>)}</ul>;
};`,
		},
		{
			name:     "mutation without toast",
			analyzer: analyzers.AnalyzerSuccessToast,
			path:     "save.js",
			src:      `const save = () => axios.delete('/api/x/1');`,
		},
		{
			name:     "list without empty state",
			analyzer: analyzers.AnalyzerEmptyState,
			path:     "list.jsx",
			src: `
const List = ({ rows }) => <ul>{rows.map(r => <li>{r.id}</li>)}</ul>;`,
		},
		{
			name:     "input without placeholder",
			analyzer: analyzers.AnalyzerPlaceholder,
			path:     "form.jsx",
			src:      `const Form = () => <Input value={v} />;`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vs, err := testutil.RunAnalyzerOnSrc(tc.analyzer, tc.path, tc.src)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(vs) != 1 {
				t.Fatalf("expected 1 violation, got %d: %+v", len(vs), vs)
			}
			if vs[0].Rule != tc.analyzer.Rule {
				t.Fatalf("violation carries rule %d, want %d", vs[0].Rule, tc.analyzer.Rule)
			}
		})
	}
}

func TestRuleSet_DiffScopeViaOptions(t *testing.T) {
	src := `const Form = () => (
  <div>
    <Input value={a} />
  </div>
);`
	vs, err := testutil.RunAnalyzerOnSrcOpts(analyzers.AnalyzerPlaceholder, "form.jsx", src, testutil.Options{
		DiffText: "@@ -1,0 +2,1 @@\n+  <div>\n",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("the input line was not added by this edit, got %+v", vs)
	}
}

func TestRuleSet_ConfigViaOptions(t *testing.T) {
	cfg := config.Default()
	off := false
	cfg.Rule3.Enabled = &off
	vs, err := testutil.RunAnalyzerOnSrcOpts(analyzers.AnalyzerSuccessToast, "save.js",
		`const save = () => axios.post('/api/x');`, testutil.Options{Config: cfg})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("disabled rule must stay silent, got %+v", vs)
	}
}
