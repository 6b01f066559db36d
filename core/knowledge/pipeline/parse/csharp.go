package parse

import (
	"regexp"
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

var (
	csUsingPattern      = regexp.MustCompile(`^\s*using\s+(static\s+)?([\w.]+)\s*;`)
	csClassPattern      = regexp.MustCompile(`^\s*(public\s+|internal\s+|private\s+|protected\s+)*(abstract\s+|sealed\s+|static\s+|partial\s+)*class\s+(\w+)\s*(:\s*([\w,\s.<>]+))?\s*\{?`)
	csInterfacePattern  = regexp.MustCompile(`^\s*(public\s+|internal\s+)*interface\s+(\w+)\s*(:\s*([\w,\s.<>]+))?\s*\{?`)
	csEnumPattern       = regexp.MustCompile(`^\s*(public\s+|internal\s+)*enum\s+(\w+)\s*\{?`)
	csMethodPattern     = regexp.MustCompile(`^\s*(public\s+|private\s+|protected\s+|internal\s+)*(static\s+|virtual\s+|override\s+|abstract\s+|async\s+)*([\w.<>\[\],? ]+?)\s+(\w+)\s*\(([^)]*)\)\s*(\{|;|=>|$)`)
	csCtorPattern       = regexp.MustCompile(`^\s*(public\s+|private\s+|protected\s+|internal\s+)*(\w+)\s*\(([^)]*)\)\s*(:\s*(base|this)\([^)]*\))?\s*(\{|$)`)
	csAttributePattern  = regexp.MustCompile(`^\s*\[([\w]+)(\([^)]*\))?\]`)
	csFieldPattern      = regexp.MustCompile(`^\s*(private\s+|public\s+|protected\s+|internal\s+)*(readonly\s+)?([\w.<>\[\]]+)\s+(_?\w+)\s*;`)
	csCallPattern       = regexp.MustCompile(`(?:^|[^.\w])([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?)\s*\(`)
	csNewExprPattern    = regexp.MustCompile(`\bnew\s+([\w.<>\[\]]+)\s*\(`)
)

// parseCSharp extracts classes, interfaces, enums, methods, constructors,
// attributes, using directives, and calls. Constructors are stored with
// qualified name "ClassName.ctor" as spec.md mandates, rather than the
// source repo's colliding "ClassName" convention.
func parseCSharp(content []byte) (FileResult, error) {
	var res FileResult
	res.Language = "csharp"
	if hasUnbalancedDelimiters(content) {
		res.ParseFailed = true
		return res, nil
	}

	src := string(content)
	lines := strings.Split(src, "\n")

	type classCtx struct {
		name   string
		isIface bool
		depth  int
	}
	var classStack []classCtx
	fieldTypes := map[string]string{}
	braceDepth := 0
	var pendingAttrs []string
	var currentFunc *Symbol

	currentClass := func() (string, bool) {
		if len(classStack) == 0 {
			return "", false
		}
		top := classStack[len(classStack)-1]
		return top.name, top.isIface
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := csUsingPattern.FindStringSubmatch(line); m != nil {
			res.Imports = append(res.Imports, Import{Specifier: m[2], Line: i + 1})
			continue
		}

		if m := csAttributePattern.FindStringSubmatch(line); m != nil {
			pendingAttrs = append(pendingAttrs, m[1])
			continue
		}

		if m := csInterfacePattern.FindStringSubmatch(line); m != nil {
			name := m[2]
			end := braceBlockEnd(lines, i)
			sym := Symbol{
				Kind:          graph.KindInterface,
				Name:          name,
				QualifiedName: name,
				StartLine:     i + 1,
				EndLine:       end,
				IsExported:    true,
			}
			if m[4] != "" {
				for _, p := range strings.Split(m[4], ",") {
					p = strings.TrimSpace(p)
					if p != "" {
						res.Heritage = append(res.Heritage, Heritage{ClassName: name, Kind: "extends", ParentName: p})
					}
				}
			}
			for _, ln := range lines[i+1 : min(end, len(lines))] {
				if mm := csInterfaceMethodDecl.FindStringSubmatch(ln); mm != nil {
					sym.MethodsDeclared = append(sym.MethodsDeclared, mm[2])
					res.Symbols = append(res.Symbols, Symbol{
						Kind:          graph.KindMethod,
						Name:          mm[2],
						QualifiedName: name + "." + mm[2],
						ClassName:     name,
						StartLine:     i + 1,
						Signature:     strings.TrimSpace(ln),
						IsStub:        true,
						ReturnType:    strings.TrimSpace(mm[1]),
					})
				}
			}
			res.Symbols = append(res.Symbols, sym)
			pendingAttrs = nil
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if m := csEnumPattern.FindStringSubmatch(line); m != nil {
			name := m[2]
			end := braceBlockEnd(lines, i)
			var variants []string
			for _, ln := range lines[i+1 : min(end, len(lines))] {
				for _, v := range strings.Split(strings.TrimSuffix(strings.TrimSpace(ln), ","), ",") {
					v = strings.TrimSpace(v)
					v = strings.TrimSuffix(v, ",")
					if v != "" && v != "{" && v != "}" {
						variants = append(variants, v)
					}
				}
			}
			res.Symbols = append(res.Symbols, Symbol{
				Kind:          graph.KindEnum,
				Name:          name,
				QualifiedName: name,
				StartLine:     i + 1,
				EndLine:       end,
				IsExported:    true,
				Variants:      variants,
			})
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if m := csClassPattern.FindStringSubmatch(line); m != nil && strings.Contains(line, "class ") {
			name := m[3]
			end := braceBlockEnd(lines, i)
			var bases []string
			if m[5] != "" {
				for _, p := range strings.Split(m[5], ",") {
					p = strings.TrimSpace(p)
					if p == "" {
						continue
					}
					bases = append(bases, p)
					kind := "extends"
					if strings.HasPrefix(p, "I") && len(p) > 1 && p[1] >= 'A' && p[1] <= 'Z' {
						kind = "implements"
					}
					res.Heritage = append(res.Heritage, Heritage{ClassName: name, Kind: kind, ParentName: p})
				}
			}
			res.Symbols = append(res.Symbols, Symbol{
				Kind:           graph.KindClass,
				Name:           name,
				QualifiedName:  name,
				StartLine:      i + 1,
				EndLine:        end,
				IsExported:     true,
				Decorators:     pendingAttrs,
				BasesSyntactic: bases,
			})
			pendingAttrs = nil
			classStack = append(classStack, classCtx{name: name, depth: braceDepth})
			fieldTypes = map[string]string{}
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if cls, isIface := currentClass(); cls != "" && !isIface {
			if m := csFieldPattern.FindStringSubmatch(line); m != nil {
				fieldTypes[m[4]] = strings.TrimSpace(m[3])
			}

			if m := csCtorPattern.FindStringSubmatch(line); m != nil && m[2] == cls {
				end := braceBlockEnd(lines, i)
				sym := Symbol{
					Kind:          graph.KindMethod,
					Name:          "ctor",
					QualifiedName: cls + ".ctor",
					ClassName:     cls,
					StartLine:     i + 1,
					EndLine:       end,
					Signature:     trimmed,
					Decorators:    pendingAttrs,
					IsExported:    true,
					IsCtor:        true,
				}
				res.Symbols = append(res.Symbols, sym)
				currentFunc = &res.Symbols[len(res.Symbols)-1]
				pendingAttrs = nil
				braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
				continue
			}

			if m := csMethodPattern.FindStringSubmatch(line); m != nil && m[4] != cls {
				name := m[4]
				isStub := m[6] == ";"
				end := i + 1
				if !isStub {
					end = braceBlockEnd(lines, i)
				}
				sym := Symbol{
					Kind:          graph.KindMethod,
					Name:          name,
					QualifiedName: cls + "." + name,
					ClassName:     cls,
					StartLine:     i + 1,
					EndLine:       end,
					Signature:     trimmed,
					Decorators:    pendingAttrs,
					IsExported:    strings.Contains(line, "public"),
					IsOverride:    strings.Contains(line, "override"),
					IsStub:        isStub,
					ReturnType:    strings.TrimSpace(m[3]),
					IsTest:        containsDecorator(pendingAttrs, "Fact") || containsDecorator(pendingAttrs, "Test") || containsDecorator(pendingAttrs, "TestMethod"),
				}
				res.Symbols = append(res.Symbols, sym)
				currentFunc = &res.Symbols[len(res.Symbols)-1]
				pendingAttrs = nil
				braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
				continue
			}
		}

		if currentFunc != nil {
			cls, _ := currentClass()
			for _, cm := range csCallPattern.FindAllStringSubmatch(trimmed, -1) {
				callee := cm[1]
				receiver := ""
				receiverType := ""
				if dot := strings.LastIndex(callee, "."); dot >= 0 {
					receiver = callee[:dot]
					callee = callee[dot+1:]
					if receiver == "this" {
						receiverType = cls
					} else if t, ok := fieldTypes[receiver]; ok {
						receiverType = t
					}
				}
				res.Calls = append(res.Calls, Call{
					CallerQualifiedName: currentFunc.QualifiedName,
					Callee:              callee,
					Receiver:            receiver,
					ReceiverType:        receiverType,
					Line:                i + 1,
				})
			}
			for _, nm := range csNewExprPattern.FindAllStringSubmatch(trimmed, -1) {
				res.Calls = append(res.Calls, Call{
					CallerQualifiedName: currentFunc.QualifiedName,
					Callee:              nm[1] + ".ctor",
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

var csInterfaceMethodDecl = regexp.MustCompile(`^\s*([\w.<>\[\],? ]+?)\s+(\w+)\s*\(([^)]*)\)\s*;`)
