package parse

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

// parseGo extracts functions, methods, and imports from a Go source file
// using go/ast directly — the one language where a real grammar is always
// available without any third-party dependency, so there is no reason to
// fall back to regex scanning the way the other four languages do.
func parseGo(content []byte) (FileResult, error) {
	var res FileResult
	res.Language = "go"

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", content, parser.ParseComments)
	if err != nil {
		res.ParseFailed = true
		return res, nil
	}

	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		var alias string
		if imp.Name != nil {
			alias = imp.Name.Name
		}
		var symbols []string
		if alias != "" {
			symbols = []string{alias}
		}
		res.Imports = append(res.Imports, Import{
			Specifier: path,
			Symbols:   symbols,
			Line:      fset.Position(imp.Pos()).Line,
		})
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		name := fn.Name.Name
		startLine := fset.Position(fn.Pos()).Line
		endLine := fset.Position(fn.End()).Line

		sym := Symbol{
			Name:       name,
			StartLine:  startLine,
			EndLine:    endLine,
			IsExported: ast.IsExported(name),
			IsTest:     strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark"),
		}

		if fn.Recv != nil && len(fn.Recv.List) > 0 {
			recvType := exprString(fn.Recv.List[0].Type)
			recvType = strings.TrimPrefix(recvType, "*")
			sym.Kind = graph.KindMethod
			sym.ClassName = recvType
			sym.QualifiedName = recvType + "." + name
		} else {
			sym.Kind = graph.KindFunction
			sym.QualifiedName = name
		}

		if fn.Type.Results != nil {
			for _, r := range fn.Type.Results.List {
				sym.ReturnType = exprString(r.Type)
			}
		}
		for _, p := range fn.Type.Params.List {
			sym.ParamTypes = append(sym.ParamTypes, exprString(p.Type))
		}

		res.Symbols = append(res.Symbols, sym)
		symIdx := len(res.Symbols) - 1

		if fn.Body != nil {
			ast.Inspect(fn.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				callee, receiver := calleeAndReceiver(call.Fun)
				if callee == "" {
					return true
				}
				res.Calls = append(res.Calls, Call{
					CallerQualifiedName: res.Symbols[symIdx].QualifiedName,
					Callee:              callee,
					Receiver:            receiver,
					Line:                fset.Position(call.Pos()).Line,
				})
				return true
			})
		}
	}

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			switch t := ts.Type.(type) {
			case *ast.StructType:
				res.Symbols = append(res.Symbols, Symbol{
					Kind:          graph.KindClass,
					Name:          ts.Name.Name,
					QualifiedName: ts.Name.Name,
					StartLine:     fset.Position(ts.Pos()).Line,
					EndLine:       fset.Position(ts.End()).Line,
					IsExported:    ast.IsExported(ts.Name.Name),
				})
			case *ast.InterfaceType:
				sym := Symbol{
					Kind:          graph.KindInterface,
					Name:          ts.Name.Name,
					QualifiedName: ts.Name.Name,
					StartLine:     fset.Position(ts.Pos()).Line,
					EndLine:       fset.Position(ts.End()).Line,
					IsExported:    ast.IsExported(ts.Name.Name),
				}
				for _, m := range t.Methods.List {
					for _, n := range m.Names {
						sym.MethodsDeclared = append(sym.MethodsDeclared, n.Name)
					}
				}
				res.Symbols = append(res.Symbols, sym)
			default:
				res.Symbols = append(res.Symbols, Symbol{
					Kind:            graph.KindTypeAlias,
					Name:            ts.Name.Name,
					QualifiedName:   ts.Name.Name,
					StartLine:       fset.Position(ts.Pos()).Line,
					EndLine:         fset.Position(ts.End()).Line,
					IsExported:      ast.IsExported(ts.Name.Name),
					TargetSyntactic: exprString(ts.Type),
				})
			}
		}
	}

	return res, nil
}

func exprString(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Ident:
		return v.Name
	case *ast.StarExpr:
		return "*" + exprString(v.X)
	case *ast.SelectorExpr:
		return exprString(v.X) + "." + v.Sel.Name
	case *ast.ArrayType:
		return "[]" + exprString(v.Elt)
	default:
		return ""
	}
}

func calleeAndReceiver(fn ast.Expr) (callee, receiver string) {
	switch v := fn.(type) {
	case *ast.Ident:
		return v.Name, ""
	case *ast.SelectorExpr:
		return v.Sel.Name, exprString(v.X)
	default:
		return "", ""
	}
}
