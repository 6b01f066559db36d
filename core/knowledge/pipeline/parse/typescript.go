package parse

import (
	"regexp"
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

var (
	tsFunctionPattern  = regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s+(\w+)\s*\(([^)]*)\)\s*(:\s*([^{;]+))?`)
	tsArrowConstPattern = regexp.MustCompile(`^\s*(export\s+)?(const|let|var)\s+(\w+)\s*(:\s*[^=]+)?=\s*(async\s+)?\(([^)]*)\)\s*(:\s*([^=]+))?=>`)
	tsClassPattern     = regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(abstract\s+)?class\s+(\w+)\s*(extends\s+([\w.]+))?\s*(implements\s+([\w,\s.]+))?\s*\{?`)
	tsInterfacePattern = regexp.MustCompile(`^\s*(export\s+)?interface\s+(\w+)\s*(extends\s+([\w,\s.]+))?\s*\{?`)
	tsTypeAliasPattern = regexp.MustCompile(`^\s*(export\s+)?type\s+(\w+)(<[^>]*>)?\s*=\s*(.+)`)
	tsMethodPattern    = regexp.MustCompile(`^\s*(public\s+|private\s+|protected\s+)?(static\s+)?(async\s+)?(get\s+|set\s+)?(\*\s*)?(\w+)\s*\(([^)]*)\)\s*(:\s*([^{;]+))?\s*\{`)
	tsImportPattern    = regexp.MustCompile(`^\s*import\s+(type\s+)?(\{([^}]*)\}|(\w+)|\*\s+as\s+(\w+))\s+from\s+['"]([^'"]+)['"]`)
	tsRequirePattern   = regexp.MustCompile(`require\(['"]([^'"]+)['"]\)`)
	tsCallPattern      = regexp.MustCompile(`(?:^|[^.\w])([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?)\s*\(`)
	tsDecoratorLine    = regexp.MustCompile(`^\s*@(\w[\w.]*)`)
	tsFieldTypePattern = regexp.MustCompile(`^\s*(private\s+|public\s+|protected\s+|readonly\s+)*(\w+)\s*:\s*([\w.<>\[\] ]+)\s*;`)
)

var jsReservedWords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "typeof": true, "new": true, "await": true,
	"super": true,
}

// parseTypeScript extracts TS and JS symbols, calls, imports, and heritage.
// JSX usage is treated as an ordinary call to the component symbol, since a
// JSX tag is lexically just an identifier followed by attributes.
func parseTypeScript(content []byte, lang string) (FileResult, error) {
	var res FileResult
	res.Language = lang
	if hasUnbalancedDelimiters(content) {
		res.ParseFailed = true
		return res, nil
	}

	src := string(content)
	lines := strings.Split(src, "\n")

	type classCtx struct {
		name   string
		depth  int // brace depth at which the class body starts
	}
	var classStack []classCtx
	fieldTypes := map[string]string{} // per current class: field name -> type
	braceDepth := 0
	var pendingDecorators []string
	var currentFunc *Symbol

	currentClass := func() string {
		if len(classStack) == 0 {
			return ""
		}
		return classStack[len(classStack)-1].name
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := tsDecoratorLine.FindStringSubmatch(line); m != nil && !strings.Contains(line, "(") {
			pendingDecorators = append(pendingDecorators, m[1])
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if m := tsImportPattern.FindStringSubmatch(line); m != nil {
			var names []string
			if m[3] != "" {
				for _, n := range strings.Split(m[3], ",") {
					n = strings.TrimSpace(n)
					if idx := strings.Index(n, " as "); idx >= 0 {
						n = strings.TrimSpace(n[:idx])
					}
					if n != "" {
						names = append(names, n)
					}
				}
			} else if m[4] != "" {
				names = []string{m[4]}
			} else if m[5] != "" {
				names = []string{m[5]}
			}
			res.Imports = append(res.Imports, Import{Specifier: m[6], Symbols: names, Line: i + 1})
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}
		if m := tsRequirePattern.FindStringSubmatch(line); m != nil {
			res.Imports = append(res.Imports, Import{Specifier: m[1], Line: i + 1})
		}

		if m := tsInterfacePattern.FindStringSubmatch(line); m != nil {
			name := m[2]
			end := braceBlockEnd(lines, i)
			sym := Symbol{
				Kind:          graph.KindInterface,
				Name:          name,
				QualifiedName: name,
				StartLine:     i + 1,
				EndLine:       end,
				IsExported:    m[1] != "",
			}
			if m[4] != "" {
				for _, p := range strings.Split(m[4], ",") {
					p = strings.TrimSpace(p)
					if p != "" {
						sym.BasesSyntactic = append(sym.BasesSyntactic, p)
						res.Heritage = append(res.Heritage, Heritage{ClassName: name, Kind: "extends", ParentName: p})
					}
				}
			}
			for _, ln := range lines[i+1 : min(end, len(lines))] {
				if mm := tsMethodSignature.FindStringSubmatch(ln); mm != nil {
					sym.MethodsDeclared = append(sym.MethodsDeclared, mm[1])
				}
			}
			res.Symbols = append(res.Symbols, sym)
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if m := tsTypeAliasPattern.FindStringSubmatch(line); m != nil {
			name := m[2]
			res.Symbols = append(res.Symbols, Symbol{
				Kind:            graph.KindTypeAlias,
				Name:            name,
				QualifiedName:   name,
				StartLine:       i + 1,
				EndLine:         i + 1,
				IsExported:      m[1] != "",
				TargetSyntactic: strings.TrimSuffix(strings.TrimSpace(m[4]), ";"),
			})
			continue
		}

		if m := tsClassPattern.FindStringSubmatch(line); m != nil && strings.Contains(line, "class ") {
			name := m[4]
			end := braceBlockEnd(lines, i)
			var bases []string
			if m[6] != "" {
				bases = append(bases, m[6])
				res.Heritage = append(res.Heritage, Heritage{ClassName: name, Kind: "extends", ParentName: m[6]})
			}
			if m[8] != "" {
				for _, p := range strings.Split(m[8], ",") {
					p = strings.TrimSpace(p)
					if p != "" {
						bases = append(bases, p)
						res.Heritage = append(res.Heritage, Heritage{ClassName: name, Kind: "implements", ParentName: p})
					}
				}
			}
			res.Symbols = append(res.Symbols, Symbol{
				Kind:           graph.KindClass,
				Name:           name,
				QualifiedName:  name,
				StartLine:      i + 1,
				EndLine:        end,
				IsExported:     m[1] != "",
				Decorators:     pendingDecorators,
				BasesSyntactic: bases,
			})
			pendingDecorators = nil
			classStack = append(classStack, classCtx{name: name, depth: braceDepth})
			fieldTypes = map[string]string{}
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if cls := currentClass(); cls != "" {
			if m := tsFieldTypePattern.FindStringSubmatch(line); m != nil {
				fieldTypes[m[2]] = strings.TrimSpace(m[3])
			}
			if m := tsMethodPattern.FindStringSubmatch(line); m != nil {
				name := m[6]
				if name != "constructor" && jsReservedWords[name] {
					// falls through to generic handling below
				} else {
					end := braceBlockEnd(lines, i)
					res.Symbols = append(res.Symbols, Symbol{
						Kind:          graph.KindMethod,
						Name:          name,
						QualifiedName: cls + "." + name,
						ClassName:     cls,
						StartLine:     i + 1,
						EndLine:       end,
						Signature:     trimmed,
						Decorators:    pendingDecorators,
						IsExported:    true,
						IsCtor:        name == "constructor",
						IsProperty:    strings.Contains(m[4], "get") || strings.Contains(m[4], "set"),
						ReturnType:    strings.TrimSpace(m[9]),
					})
					currentFunc = &res.Symbols[len(res.Symbols)-1]
					pendingDecorators = nil
					braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
					continue
				}
			}
		}

		if m := tsFunctionPattern.FindStringSubmatch(line); m != nil {
			name := m[4]
			end := braceBlockEnd(lines, i)
			res.Symbols = append(res.Symbols, Symbol{
				Kind:          graph.KindFunction,
				Name:          name,
				QualifiedName: name,
				StartLine:     i + 1,
				EndLine:       end,
				Signature:     trimmed,
				IsExported:    m[1] != "" || m[2] != "",
				ReturnType:    strings.TrimSpace(m[7]),
			})
			currentFunc = &res.Symbols[len(res.Symbols)-1]
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if m := tsArrowConstPattern.FindStringSubmatch(line); m != nil {
			name := m[3]
			end := braceBlockEnd(lines, i)
			res.Symbols = append(res.Symbols, Symbol{
				Kind:          graph.KindFunction,
				Name:          name,
				QualifiedName: name,
				StartLine:     i + 1,
				EndLine:       end,
				Signature:     trimmed,
				IsExported:    m[1] != "",
				ReturnType:    strings.TrimSpace(m[8]),
			})
			currentFunc = &res.Symbols[len(res.Symbols)-1]
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if currentFunc != nil {
			for _, cm := range tsCallPattern.FindAllStringSubmatch(trimmed, -1) {
				callee := cm[1]
				receiver := ""
				receiverType := ""
				if dot := strings.LastIndex(callee, "."); dot >= 0 {
					receiver = callee[:dot]
					callee = callee[dot+1:]
					if receiver == "this" {
						receiverType = currentClass()
					} else if t, ok := fieldTypes[receiver]; ok {
						receiverType = t
					}
				}
				if jsReservedWords[callee] {
					continue
				}
				res.Calls = append(res.Calls, Call{
					CallerQualifiedName: currentFunc.QualifiedName,
					Callee:              callee,
					Receiver:            receiver,
					ReceiverType:        receiverType,
					Line:                i + 1,
				})
			}
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		for len(classStack) > 0 && braceDepth <= classStack[len(classStack)-1].depth {
			classStack = classStack[:len(classStack)-1]
		}
	}

	return res, nil
}

var tsMethodSignature = regexp.MustCompile(`^\s*(\w+)\s*\(`)

// braceBlockEnd returns the 1-based line on which the brace block opened on
// line i (0-based) closes, by counting braces across the following lines.
func braceBlockEnd(lines []string, i int) int {
	depth := strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
	if depth <= 0 {
		// Header with no opening brace yet (brace on next line) or a
		// single-line arrow body; scan forward for the first '{'.
		for j := i; j < len(lines) && j < i+3; j++ {
			if strings.Contains(lines[j], "{") {
				depth = 1
				i = j
				break
			}
		}
		if depth <= 0 {
			return i + 1
		}
	}
	for j := i + 1; j < len(lines); j++ {
		depth += strings.Count(lines[j], "{") - strings.Count(lines[j], "}")
		if depth <= 0 {
			return j + 1
		}
	}
	return len(lines)
}
