package pipeline

import (
	"path"
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/knowledge/pipeline/parse"
)

// BuildStructure creates the Folder/File node tree and CONTAINS edges for
// every entry the walker accepted. This is the only phase allowed to
// introduce Folder nodes.
func BuildStructure(entries []FileEntry, sink *graph.Sink) {
	folders := map[string]bool{}

	for _, e := range entries {
		for dir := path.Dir(e.Path); dir != "." && dir != "/" && !folders[dir]; dir = path.Dir(dir) {
			folders[dir] = true
		}
	}

	for dir := range folders {
		sink.AddNode(&graph.Node{
			ID:   graph.SymbolID(graph.KindFolder, dir, ""),
			Kind: graph.KindFolder,
			Path: dir,
			Name: path.Base(dir),
		})
	}

	for dir := range folders {
		parent := path.Dir(dir)
		if parent == "." || parent == "/" {
			continue
		}
		sink.AddEdge(&graph.Edge{
			SourceID: graph.SymbolID(graph.KindFolder, parent, ""),
			TargetID: graph.SymbolID(graph.KindFolder, dir, ""),
			Type:     graph.EdgeContains,
		})
	}

	for _, e := range entries {
		lang := parse.LanguageFor(e.Path)
		sink.AddNode(&graph.Node{
			ID:       graph.SymbolID(graph.KindFile, e.Path, ""),
			Kind:     graph.KindFile,
			Path:     e.Path,
			Name:     path.Base(e.Path),
			Language: lang,
			ByteSize: int64(len(e.Content)),
			Hash:     graph.HashContent(e.Content),
		})

		dir := path.Dir(e.Path)
		if dir == "." || dir == "/" {
			continue
		}
		sink.AddEdge(&graph.Edge{
			SourceID: graph.SymbolID(graph.KindFolder, dir, ""),
			TargetID: graph.SymbolID(graph.KindFile, e.Path, ""),
			Type:     graph.EdgeContains,
		})
	}
}

// NormalizePath turns an OS path into the repo-relative, forward-slash,
// no-leading-"./" form every phase expects.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return p
}
