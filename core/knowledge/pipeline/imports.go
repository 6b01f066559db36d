package pipeline

import (
	"path"
	"sort"
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

var relativeExtensionsByLang = map[string][]string{
	"typescript": {".ts", ".tsx", ".js", ".jsx"},
	"javascript": {".js", ".jsx", ".ts", ".tsx"},
	"python":     {".py"},
}

// ResolveImports turns each raw import into an IMPORTS edge between File
// nodes, per spec.md §4.4. Bare specifiers that do not resolve to an
// in-repo path produce no edge and no error.
func ResolveImports(imports []ImportStmt, filePaths []string, sourceRoots []string, sink *graph.Sink) {
	exists := make(map[string]bool, len(filePaths))
	for _, p := range filePaths {
		exists[p] = true
	}

	for _, im := range imports {
		target, ok := resolveOneImport(im, exists, sourceRoots)
		if !ok {
			continue
		}
		sink.AddEdge(&graph.Edge{
			SourceID:        im.FileID,
			TargetID:        graph.SymbolID(graph.KindFile, target, ""),
			Type:            graph.EdgeImports,
			ImportedSymbols: im.Symbols,
		})
	}
}

func resolveOneImport(im ImportStmt, exists map[string]bool, sourceRoots []string) (string, bool) {
	spec := im.Specifier

	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		dir := path.Dir(im.FilePath)
		joined := path.Clean(path.Join(dir, spec))
		return resolveCandidate(joined, im.Language, exists)
	}

	if im.Language == "python" && !strings.HasPrefix(spec, ".") {
		// Package-absolute: "src.a.b" -> "src/a/b.py" (or relative to a
		// declared source root).
		asPath := strings.ReplaceAll(spec, ".", "/")
		if target, ok := resolveCandidate(asPath, im.Language, exists); ok {
			return target, true
		}
		for _, root := range sourceRoots {
			joined := path.Join(root, asPath)
			if target, ok := resolveCandidate(joined, im.Language, exists); ok {
				return target, true
			}
		}
		return "", false
	}

	if im.Language == "typescript" || im.Language == "javascript" {
		for _, root := range sourceRoots {
			joined := path.Join(root, spec)
			if target, ok := resolveCandidate(joined, im.Language, exists); ok {
				return target, true
			}
		}
	}

	// Bare specifier (node_modules package, .NET assembly, stdlib module):
	// not resolvable in-repo.
	return "", false
}

// resolveCandidate applies the tie-break order from spec.md §4.4: explicit
// extension match, then directory-index match, then lexicographic order.
func resolveCandidate(base, lang string, exists map[string]bool) (string, bool) {
	if exists[base] {
		return base, true
	}

	exts := relativeExtensionsByLang[lang]
	var candidates []string
	for _, ext := range exts {
		if exists[base+ext] {
			candidates = append(candidates, base+ext)
		}
	}
	if len(candidates) > 0 {
		sort.Strings(candidates)
		return candidates[0], true
	}

	var indexCandidates []string
	if lang == "python" {
		p := path.Join(base, "__init__.py")
		if exists[p] {
			indexCandidates = append(indexCandidates, p)
		}
	} else {
		for _, ext := range exts {
			p := path.Join(base, "index"+ext)
			if exists[p] {
				indexCandidates = append(indexCandidates, p)
			}
		}
	}
	if len(indexCandidates) > 0 {
		sort.Strings(indexCandidates)
		return indexCandidates[0], true
	}

	return "", false
}
