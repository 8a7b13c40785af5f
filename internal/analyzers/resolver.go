package analyzers

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/uxaudit/uxaudit/internal/jsparse"
)

// declareCallName is the factory whose first string argument names the
// loading flag an action toggles: saveAction = declareRequest('loading', ...).
const declareCallName = "declareRequest"

// Binding is the result of resolving an action call to its loading flag.
type Binding struct {
	ActionName  string
	LoadingName string
}

// Resolver locates the remote module declaring an Action-suffixed call and
// extracts its loading-flag name. Resolution is heuristic: a nil result means
// "no additional information", never an error. Lives for one run; the cache
// is therefore process-lifetime at most.
type Resolver struct {
	Root string
	Log  *zap.Logger

	cache map[string]*Binding
}

// NewResolver returns a resolver rooted at the project directory.
func NewResolver(root string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{Root: root, Log: log.Named("resolver"), cache: map[string]*Binding{}}
}

var scriptExts = []string{".js", ".ts", ".jsx", ".tsx"}

// Resolve finds where actionName is declared and returns its loading-flag
// binding. In strict mode only the shared literal "loading" is accepted;
// loose mode returns whatever literal the declaration names, letting callers
// detect wrong-flag misuse.
func (r *Resolver) Resolve(unit *jsparse.SourceUnit, actionName string, strict bool) *Binding {
	if actionName == "" {
		return nil
	}
	key := actionName
	if strict {
		key = "strict:" + actionName
	}
	if b, ok := r.cache[key]; ok {
		return b
	}
	b := r.resolve(unit, actionName, strict)
	r.cache[key] = b
	return b
}

func (r *Resolver) resolve(unit *jsparse.SourceUnit, actionName string, strict bool) *Binding {
	candidates := r.namespaceFiles(unit)
	if len(candidates) == 0 {
		candidates = r.fallbackSearch(unit)
	}
	seen := map[string]bool{}
	for _, path := range candidates {
		if seen[path] {
			continue
		}
		seen[path] = true
		if b := r.scanDeclaringFile(path, actionName, strict); b != nil {
			return b
		}
	}
	return nil
}

// namespaceFiles resolves namespace/enumerate imports of the unit to the
// conventional action directories they name.
func (r *Resolver) namespaceFiles(unit *jsparse.SourceUnit) []string {
	root := unit.Root()
	if root == nil {
		return nil
	}
	var nsPaths []string
	for _, imp := range jsparse.FindAll(root, "import_statement") {
		src, ok := jsparse.StringValue(imp.ChildByFieldName("source"), unit.Script)
		if !ok {
			continue
		}
		lower := strings.ToLower(src)
		if !strings.Contains(lower, "namespace") && !strings.Contains(lower, "enumerate") {
			continue
		}
		if p := r.resolveImportPath(unit.Path, src); p != "" {
			nsPaths = append(nsPaths, p)
		}
	}

	var out []string
	for _, nsPath := range nsPaths {
		for _, value := range r.namespaceValues(nsPath) {
			for _, dir := range []string{"api", "models", "services"} {
				for _, ext := range scriptExts {
					p := filepath.Join(r.Root, "src", dir, value, "index"+ext)
					if fileExists(p) {
						out = append(out, p)
					}
				}
			}
		}
	}
	return out
}

// resolveImportPath tries the ordered candidate locations for an import
// specifier: alias-substituted project paths and current-file-relative paths,
// as a direct file or a directory index.
func (r *Resolver) resolveImportPath(fromFile, spec string) string {
	var bases []string
	switch {
	case strings.HasPrefix(spec, "@/"):
		bases = append(bases, filepath.Join(r.Root, "src", spec[2:]))
	case strings.HasPrefix(spec, "~/"):
		bases = append(bases, filepath.Join(r.Root, spec[2:]))
	case strings.HasPrefix(spec, "."):
		bases = append(bases, filepath.Join(filepath.Dir(fromFile), spec))
	default:
		bases = append(bases,
			filepath.Join(r.Root, "src", spec),
			filepath.Join(r.Root, spec),
			filepath.Join(filepath.Dir(fromFile), spec))
	}
	for _, base := range bases {
		if fileExists(base) && !isDir(base) {
			return base
		}
		for _, ext := range scriptExts {
			if p := base + ext; fileExists(p) {
				return p
			}
		}
		for _, ext := range scriptExts {
			if p := filepath.Join(base, "index"+ext); fileExists(p) {
				return p
			}
		}
	}
	return ""
}

// namespaceValues parses a namespace module and extracts the string values of
// exported NS_* constants, including defineNamespace('...') initializers.
func (r *Resolver) namespaceValues(path string) []string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	unit := jsparse.Parse(context.Background(), path, raw)
	root := unit.Root()
	if root == nil {
		return nil
	}
	var out []string
	for _, decl := range jsparse.FindAll(root, "variable_declarator") {
		name := jsparse.Content(decl.ChildByFieldName("name"), unit.Script)
		if !strings.HasPrefix(name, "NS_") {
			continue
		}
		value := decl.ChildByFieldName("value")
		if value == nil {
			continue
		}
		if s, ok := jsparse.StringValue(value, unit.Script); ok {
			out = append(out, s)
			continue
		}
		if value.Type() == "call_expression" && jsparse.CalleeName(value, unit.Script) == "defineNamespace" {
			if s, ok := jsparse.StringValue(jsparse.FirstArgument(value), unit.Script); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// fallbackSearch walks the current file's directory and the project root for
// action/api/service modules. Bounded by name patterns and the usual build
// output exclusions.
func (r *Resolver) fallbackSearch(unit *jsparse.SourceUnit) []string {
	roots := []string{filepath.Dir(unit.Path)}
	if r.Root != "" {
		roots = append(roots, r.Root)
	}
	var out []string
	seen := map[string]bool{}
	const maxCandidates = 200
	for _, dir := range roots {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				switch d.Name() {
				case "node_modules", "dist", "build", ".git":
					return filepath.SkipDir
				}
				return nil
			}
			if len(out) >= maxCandidates {
				return filepath.SkipAll
			}
			name := strings.ToLower(d.Name())
			if !hasScriptExt(name) {
				return nil
			}
			if strings.Contains(name, "action") || strings.Contains(name, "api") ||
				strings.Contains(name, "service") || strings.Contains(name, "model") {
				if !seen[path] {
					seen[path] = true
					out = append(out, path)
				}
			}
			return nil
		})
	}
	return out
}

// scanDeclaringFile looks for <actionName> = declareRequest('<flag>', ...) in
// path. The cheap substring pre-check keeps the resolver from parsing files
// that cannot possibly declare the action.
func (r *Resolver) scanDeclaringFile(path, actionName string, strict bool) *Binding {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if !bytes.Contains(raw, []byte(actionName)) || !bytes.Contains(raw, []byte(declareCallName)) {
		return nil
	}
	unit := jsparse.Parse(context.Background(), path, raw)
	root := unit.Root()
	if root == nil {
		return nil
	}
	var found *Binding
	jsparse.Walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		var name string
		var value *sitter.Node
		switch n.Type() {
		case "variable_declarator":
			name = jsparse.Content(n.ChildByFieldName("name"), unit.Script)
			value = n.ChildByFieldName("value")
		case "assignment_expression":
			name = jsparse.Content(n.ChildByFieldName("left"), unit.Script)
			if i := strings.LastIndex(name, "."); i >= 0 {
				name = name[i+1:]
			}
			value = n.ChildByFieldName("right")
		case "pair":
			name = strings.Trim(jsparse.Content(n.ChildByFieldName("key"), unit.Script), `"'`)
			value = n.ChildByFieldName("value")
		default:
			return true
		}
		if name != actionName || value == nil || value.Type() != "call_expression" {
			return true
		}
		if jsparse.CalleeName(value, unit.Script) != declareCallName {
			return true
		}
		flag, ok := jsparse.StringValue(jsparse.FirstArgument(value), unit.Script)
		if !ok {
			return true
		}
		if strict && flag != "loading" {
			return true
		}
		found = &Binding{ActionName: actionName, LoadingName: flag}
		return false
	})
	if found != nil {
		r.Log.Debug("resolved action loading flag",
			zap.String("action", actionName),
			zap.String("flag", found.LoadingName),
			zap.String("file", path))
	}
	return found
}

func hasScriptExt(name string) bool {
	for _, ext := range scriptExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
