package parse

import (
	"regexp"
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

var (
	pyDefPattern      = regexp.MustCompile(`^(\s*)(async\s+)?def\s+(\w+)\s*\(([^)]*)\)\s*(->\s*([^:]+))?:`)
	pyClassPattern    = regexp.MustCompile(`^(\s*)class\s+(\w+)\s*(\(([^)]*)\))?:`)
	pyDecoratorLine   = regexp.MustCompile(`^\s*@([\w.]+)`)
	pyImportPattern   = regexp.MustCompile(`^\s*import\s+([\w.]+)(\s+as\s+(\w+))?`)
	pyFromImport      = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\s+(.+)`)
	pyCallPattern     = regexp.MustCompile(`(?:^|[^.\w])([\w]+(?:\.[\w]+)?)\s*\(`)
	pySelfAttrAnnot   = regexp.MustCompile(`^\s*self\.(\w+)\s*:\s*["']?([\w.\[\], ]+)["']?`)
	pyParamTypePat    = regexp.MustCompile(`(\w+)\s*:\s*([\w.\[\], ]+?)(?:\s*=|$)`)
	pyVarAnnotPattern = regexp.MustCompile(`^\s*(\w+)\s*:\s*([\w.\[\], ]+)\s*=`)
	pyMainGuard       = regexp.MustCompile(`^(\s*)if\s+__name__\s*==\s*["']__main__["']\s*:`)
)

// parsePython extracts functions, classes, methods, decorators, calls,
// imports, and heritage from a Python source file using indentation and
// regex matching rather than a full grammar, in the same spirit as the
// teacher's regex-based extractors.
func parsePython(content []byte) (FileResult, error) {
	var res FileResult
	res.Language = "python"
	if hasUnbalancedDelimiters(content) {
		res.ParseFailed = true
		return res, nil
	}

	src := string(content)
	lines := strings.Split(src, "\n")

	type openBlock struct {
		sym      *Symbol
		indent   int
		className string // set while inside a class body
	}
	var classStack []openBlock // class blocks currently open, innermost last
	var pendingDecorators []string
	selfTypes := map[string]string{} // self.attr -> declared type, per class (reset per class)

	popClassesBelow := func(indent int) {
		for len(classStack) > 0 && indent <= classStack[len(classStack)-1].indent {
			classStack = classStack[:len(classStack)-1]
		}
	}

	currentClass := func() string {
		if len(classStack) == 0 {
			return ""
		}
		return classStack[len(classStack)-1].sym.Name
	}

	var currentFunc *Symbol

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := indentOf(line)

		if m := pyDecoratorLine.FindStringSubmatch(line); m != nil {
			pendingDecorators = append(pendingDecorators, m[1])
			continue
		}

		if m := pyClassPattern.FindStringSubmatch(line); m != nil {
			popClassesBelow(indent)
			name := m[2]
			var bases []string
			if m[4] != "" {
				for _, b := range strings.Split(m[4], ",") {
					b = strings.TrimSpace(b)
					if b != "" && !strings.Contains(b, "=") {
						bases = append(bases, b)
					}
				}
			}
			end := pythonBlockEnd(lines, i, indent)
			sym := &Symbol{
				Kind:           graph.KindClass,
				Name:           name,
				QualifiedName:  name,
				StartLine:      i + 1,
				EndLine:        end,
				Decorators:     pendingDecorators,
				BasesSyntactic: bases,
				IsExported:     true,
			}
			res.Symbols = append(res.Symbols, *sym)
			for _, b := range bases {
				res.Heritage = append(res.Heritage, Heritage{ClassName: name, Kind: "extends", ParentName: b})
			}
			classStack = append(classStack, openBlock{sym: sym, indent: indent})
			selfTypes = map[string]string{}
			pendingDecorators = nil
			continue
		}

		if m := pyDefPattern.FindStringSubmatch(line); m != nil {
			popClassesBelow(indent)
			name := m[3]
			params := m[4]
			returnType := strings.TrimSpace(m[6])
			cls := currentClass()
			end := pythonBlockEnd(lines, i, indent)
			body := strings.Join(lines[i:min(end, len(lines))], "\n")

			var paramTypes []string
			for _, pm := range pyParamTypePat.FindAllStringSubmatch(params, -1) {
				if pm[1] != "self" && pm[1] != "cls" {
					paramTypes = append(paramTypes, strings.TrimSpace(pm[2]))
				}
			}

			isTest := strings.HasPrefix(name, "test_")
			isProperty := containsDecorator(pendingDecorators, "property")
			sym := Symbol{
				Name:        name,
				StartLine:   i + 1,
				EndLine:     end,
				Signature:   strings.TrimSpace(trimmed),
				BodySnippet: firstNLines(body, 6),
				Decorators:  pendingDecorators,
				IsExported:  !strings.HasPrefix(name, "_"),
				IsTest:      isTest,
				IsProperty:  isProperty,
				ParamTypes:  paramTypes,
				ReturnType:  returnType,
			}
			if cls != "" {
				sym.Kind = graph.KindMethod
				sym.ClassName = cls
				sym.QualifiedName = cls + "." + name
				sym.IsCtor = name == "__init__" || name == "__new__"
			} else {
				sym.Kind = graph.KindFunction
				sym.QualifiedName = name
			}
			res.Symbols = append(res.Symbols, sym)
			currentFunc = &res.Symbols[len(res.Symbols)-1]
			pendingDecorators = nil
			continue
		}

		// A module-level `if __name__ == "__main__":` guard is its own
		// entry point (spec.md §4.9) independent of any enclosing def: the
		// script's real entry is this block, not whichever function was
		// last defined above it.
		if m := pyMainGuard.FindStringSubmatch(line); m != nil {
			popClassesBelow(indent)
			end := pythonBlockEnd(lines, i, indent)
			sym := Symbol{
				Kind:          graph.KindFunction,
				Name:          "__main__",
				QualifiedName: "__main__",
				StartLine:     i + 1,
				EndLine:       end,
				Signature:     strings.TrimSpace(trimmed),
			}
			res.Symbols = append(res.Symbols, sym)
			currentFunc = &res.Symbols[len(res.Symbols)-1]
			continue
		}

		// self.attr: Type assignment inside __init__, used for receiver-type
		// resolution of calls like self.attr.method().
		if m := pySelfAttrAnnot.FindStringSubmatch(line); m != nil {
			selfTypes[m[1]] = strings.TrimSpace(m[2])
		}

		if m := pyVarAnnotPattern.FindStringSubmatch(line); m != nil && currentFunc != nil {
			currentFunc.VarTypes = append(currentFunc.VarTypes, strings.TrimSpace(m[2]))
		}

		if m := pyImportPattern.FindStringSubmatch(line); m != nil {
			mod := m[1]
			sym := mod
			if m[3] != "" {
				sym = m[3]
			}
			res.Imports = append(res.Imports, Import{Specifier: mod, Symbols: []string{sym}, Line: i + 1})
			continue
		}
		if m := pyFromImport.FindStringSubmatch(line); m != nil {
			mod := m[1]
			var names []string
			for _, n := range strings.Split(m[2], ",") {
				n = strings.TrimSpace(strings.Trim(n, "()"))
				if n == "" {
					continue
				}
				if idx := strings.Index(n, " as "); idx >= 0 {
					n = strings.TrimSpace(n[:idx])
				}
				names = append(names, n)
			}
			res.Imports = append(res.Imports, Import{Specifier: mod, Symbols: names, Line: i + 1})
			continue
		}

		if currentFunc != nil && indent > 0 {
			callerQN := currentFunc.QualifiedName
			for _, cm := range pyCallPattern.FindAllStringSubmatch(trimmed, -1) {
				callee := cm[1]
				receiver := ""
				receiverType := ""
				if dot := strings.LastIndex(callee, "."); dot >= 0 {
					receiver = callee[:dot]
					callee = callee[dot+1:]
					if receiver == "self" {
						receiverType = currentClass()
					} else if t, ok := selfTypes[strings.TrimPrefix(receiver, "self.")]; ok {
						receiverType = t
					}
				}
				if isPythonKeyword(callee) {
					continue
				}
				res.Calls = append(res.Calls, Call{
					CallerQualifiedName: callerQN,
					Callee:              callee,
					Receiver:            receiver,
					ReceiverType:        receiverType,
					Line:                i + 1,
				})
			}
		}
	}

	return res, nil
}

func indentOf(line string) int {
	n := 0
	for _, c := range line {
		switch c {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// pythonBlockEnd returns the 1-based last line of the block opened at line i
// (0-based) with header indentation headerIndent.
func pythonBlockEnd(lines []string, i, headerIndent int) int {
	last := i + 1
	entered := false
	for j := i + 1; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		ind := indentOf(lines[j])
		if ind > headerIndent {
			entered = true
			last = j + 1
			continue
		}
		break
	}
	if !entered {
		return i + 1
	}
	return last
}

func containsDecorator(decs []string, suffix string) bool {
	for _, d := range decs {
		if d == suffix || strings.HasSuffix(d, "."+suffix) {
			return true
		}
	}
	return false
}

func firstNLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var pythonKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "with": true, "elif": true,
	"return": true, "yield": true, "not": true, "and": true, "or": true,
	"lambda": true, "assert": true, "except": true, "def": true, "class": true,
}

func isPythonKeyword(s string) bool {
	return pythonKeywords[s]
}
