package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// allowedGlobalPrefixes lists name prefixes for which all vars in the given
// package are treated as constant-like. Lipgloss styles and color palettes
// are immutable after init; that is the standard pattern in Bubble Tea
// applications.
var allowedGlobalPrefixes = map[string][]string{
	"tui": {"style", "color"},
	"ui":  {"graph"},
}

// TestNoMutableGlobalState scans all internal packages for package-level var
// declarations and flags any that are not constant-like:
//   - error sentinels (errors.New / fmt.Errorf)
//   - compile-time interface checks (var _ T = ...)
//   - simple and composite literals (lookup tables, weight vectors)
//   - explicitly allowlisted prefixes
//
// Everything else is mutable global state and belongs on a struct.
func TestNoMutableGlobalState(t *testing.T) {
	t.Parallel()

	dir := ".."
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading internal dir: %v", err)
	}

	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		pkg := e.Name()
		t.Run(pkg, func(t *testing.T) {
			t.Parallel()

			pkgDir := filepath.Join(dir, pkg)
			files, err := filepath.Glob(filepath.Join(pkgDir, "*.go"))
			if err != nil {
				t.Fatal(err)
			}

			fset := token.NewFileSet()
			for _, filePath := range files {
				node, err := parser.ParseFile(fset, filePath, nil, 0)
				if err != nil {
					t.Fatalf("parsing %s: %v", filePath, err)
				}
				for _, decl := range node.Decls {
					gd, ok := decl.(*ast.GenDecl)
					if !ok || gd.Tok != token.VAR {
						continue
					}
					for _, spec := range gd.Specs {
						vs, ok := spec.(*ast.ValueSpec)
						if !ok {
							continue
						}
						checkVarSpec(t, vs, allowedGlobalPrefixes[pkg], filePath)
					}
				}
			}
		})
	}
}

func checkVarSpec(t *testing.T, vs *ast.ValueSpec, prefixes []string, filePath string) {
	t.Helper()

	for i, name := range vs.Names {
		varName := name.Name
		if varName == "_" {
			continue
		}
		if hasAllowedPrefix(varName, prefixes) {
			continue
		}

		var val ast.Expr
		if i < len(vs.Values) {
			val = vs.Values[i]
		}
		if isErrorSentinel(vs.Type, val) || isSimpleLiteral(val) || isCompositeLiteral(val) {
			continue
		}

		t.Errorf("mutable global state in %s: var %s; use dependency injection or move to a function",
			filepath.Base(filePath), varName)
	}
}

func hasAllowedPrefix(varName string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(varName, p) {
			return true
		}
	}
	return false
}

// isErrorSentinel returns true if the var is typed error or initialized with
// errors.New(...) or fmt.Errorf(...).
func isErrorSentinel(typeExpr ast.Expr, val ast.Expr) bool {
	if ident, ok := typeExpr.(*ast.Ident); ok && ident.Name == "error" {
		return true
	}
	call, ok := val.(*ast.CallExpr)
	if !ok {
		return false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkgIdent, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	return (pkgIdent.Name == "errors" && sel.Sel.Name == "New") ||
		(pkgIdent.Name == "fmt" && sel.Sel.Name == "Errorf")
}

func isSimpleLiteral(val ast.Expr) bool {
	_, ok := val.(*ast.BasicLit)
	return ok
}

// Composite literals are constant-like lookup tables or configuration data;
// make() containers are not and stay flagged.
func isCompositeLiteral(val ast.Expr) bool {
	_, ok := val.(*ast.CompositeLit)
	return ok
}
