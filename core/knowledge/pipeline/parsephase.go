package pipeline

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/knowledge/pipeline/parse"
)

// CallSite is a raw call site carried forward from Phase 3 to the call
// tracer (Phase 5), with the caller already resolved to a symbol ID.
type CallSite struct {
	CallerID     string
	FilePath     string
	Callee       string
	Receiver     string
	ReceiverType string
	Line         int
}

// ImportStmt is a raw import carried forward to the import resolver
// (Phase 4), with the importing file already resolved to a File ID.
type ImportStmt struct {
	FileID    string
	FilePath  string
	Language  string
	Specifier string
	Symbols   []string
	Line      int
}

// TypeUse is a raw type reference carried forward to the type-reference
// resolver (Phase 7).
type TypeUse struct {
	SymbolID   string
	TypeName   string
	Role       graph.TypeRole
}

// ParseOutput is everything Phase 3 hands to the later resolver phases; it
// is not part of the graph itself, only the driver's working state for one
// pipeline run.
type ParseOutput struct {
	Calls     []CallSite
	Imports   []ImportStmt
	Heritage  []parse.Heritage // ClassName/ParentName are plain names, resolved in Phase 6
	TypeUses  []TypeUse
}

// RunParsers parses every accepted file in parallel, emits Function/Class/
// Method/Interface/TypeAlias/Enum nodes plus DEFINES/EXPORTS edges through
// sink, and returns the raw cross-file data later phases need. Per-file
// parse failures set parse_failed=true on the File node and are otherwise
// non-fatal, per the ParseError policy.
func RunParsers(ctx context.Context, entries []FileEntry, sink *graph.Sink) ParseOutput {
	var mu sync.Mutex
	var out ParseOutput
	var wg sync.WaitGroup

	sem := make(chan struct{}, 8)

	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(entry FileEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			res, _ := parse.Parse(entry.Path, entry.Content)
			fileID := graph.SymbolID(graph.KindFile, entry.Path, "")

			if res.ParseFailed {
				slog.Warn("file skipped", slog.String("phase", "parse"), slog.String("path", entry.Path))
				sink.AddNode(&graph.Node{
					ID:          fileID,
					Kind:        graph.KindFile,
					Path:        entry.Path,
					Name:        path.Base(entry.Path),
					Language:    res.Language,
					ByteSize:    int64(len(entry.Content)),
					Hash:        graph.HashContent(entry.Content),
					ParseFailed: true,
				})
				return
			}

			classIDByName := map[string]string{}
			for _, s := range res.Symbols {
				if s.Kind == graph.KindClass {
					classIDByName[s.Name] = graph.SymbolID(graph.KindClass, entry.Path, s.QualifiedName)
				}
			}

			var localCalls []CallSite
			var localImports []ImportStmt
			var localTypeUses []TypeUse

			for _, s := range res.Symbols {
				id := graph.SymbolID(s.Kind, entry.Path, s.QualifiedName)
				node := &graph.Node{
					ID:              id,
					Kind:            s.Kind,
					Path:            entry.Path,
					Name:            s.Name,
					StartLine:       s.StartLine,
					EndLine:         s.EndLine,
					Signature:       s.Signature,
					BodySnippet:     s.BodySnippet,
					Decorators:      s.Decorators,
					IsExported:      s.IsExported,
					IsTest:          s.IsTest,
					IsOverride:      s.IsOverride,
					IsProperty:      s.IsProperty,
					IsCtor:          s.IsCtor,
					IsStub:          s.IsStub,
					BasesSyntactic:  s.BasesSyntactic,
					MethodsDeclared: s.MethodsDeclared,
					TargetSyntactic: s.TargetSyntactic,
					Variants:        s.Variants,
				}
				if s.Kind == graph.KindMethod {
					node.ClassID = classIDByName[s.ClassName]
				}
				sink.AddNode(node)
				sink.AddEdge(&graph.Edge{SourceID: fileID, TargetID: id, Type: graph.EdgeDefines})
				if s.IsExported {
					sink.AddEdge(&graph.Edge{SourceID: fileID, TargetID: id, Type: graph.EdgeExports})
				}

				for _, t := range s.ParamTypes {
					localTypeUses = append(localTypeUses, TypeUse{SymbolID: id, TypeName: cleanTypeName(t), Role: graph.RoleParam})
				}
				if s.ReturnType != "" {
					localTypeUses = append(localTypeUses, TypeUse{SymbolID: id, TypeName: cleanTypeName(s.ReturnType), Role: graph.RoleReturn})
				}
				for _, t := range s.VarTypes {
					localTypeUses = append(localTypeUses, TypeUse{SymbolID: id, TypeName: cleanTypeName(t), Role: graph.RoleVariable})
				}
			}

			for _, c := range res.Calls {
				callerKind := graph.KindFunction
				for _, s := range res.Symbols {
					if s.QualifiedName == c.CallerQualifiedName && s.Kind == graph.KindMethod {
						callerKind = graph.KindMethod
						break
					}
				}
				callerID := graph.SymbolID(callerKind, entry.Path, c.CallerQualifiedName)
				localCalls = append(localCalls, CallSite{
					CallerID:     callerID,
					FilePath:     entry.Path,
					Callee:       c.Callee,
					Receiver:     c.Receiver,
					ReceiverType: c.ReceiverType,
					Line:         c.Line,
				})
			}

			for _, im := range res.Imports {
				localImports = append(localImports, ImportStmt{
					FileID:    fileID,
					FilePath:  entry.Path,
					Language:  res.Language,
					Specifier: im.Specifier,
					Symbols:   im.Symbols,
					Line:      im.Line,
				})
			}

			mu.Lock()
			out.Calls = append(out.Calls, localCalls...)
			out.Imports = append(out.Imports, localImports...)
			out.Heritage = append(out.Heritage, res.Heritage...)
			out.TypeUses = append(out.TypeUses, localTypeUses...)
			mu.Unlock()
		}(e)
	}

	wg.Wait()
	return out
}

func cleanTypeName(t string) string {
	return strings.TrimSpace(t)
}
