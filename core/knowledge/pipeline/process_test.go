package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

func TestDetectProcesses_TracesFromDecoratedEntryPoint(t *testing.T) {
	g, sink := newTestGraph()
	file := &graph.Node{ID: graph.SymbolID(graph.KindFile, "app.py", ""), Kind: graph.KindFile, Path: "app.py", Language: "python"}
	entry := &graph.Node{
		ID: graph.SymbolID(graph.KindFunction, "app.py", "handle_request"), Kind: graph.KindFunction,
		Path: "app.py", Name: "handle_request", Decorators: []string{"app.route"},
	}
	step := &graph.Node{ID: graph.SymbolID(graph.KindFunction, "app.py", "load_data"), Kind: graph.KindFunction, Path: "app.py", Name: "load_data"}

	sink.AddNode(file)
	sink.AddNode(entry)
	sink.AddNode(step)
	sink.AddEdge(&graph.Edge{SourceID: entry.ID, TargetID: step.ID, Type: graph.EdgeCalls, Confidence: 1.0})
	sink.Close()

	sink2 := graph.NewSink(g, 64)
	DetectProcesses(g, sink2)
	sink2.Close()

	procs := g.NodesByKind(graph.KindProcess)
	require.Len(t, procs, 1)
	assert.Equal(t, entry.ID, procs[0].EntrySymbolID)
	assert.Contains(t, procs[0].Name, "handle_request")

	steps := g.In(procs[0].ID, graph.EdgeStepInProcess)
	require.Len(t, steps, 2)
}

func TestIsEntryPoint_CSharpMainAndHttpAttribute(t *testing.T) {
	main := &graph.Node{Name: "Main"}
	assert.True(t, isEntryPoint(main, "csharp"))

	controller := &graph.Node{Name: "Get", Decorators: []string{"HttpGet"}}
	assert.True(t, isEntryPoint(controller, "csharp"))

	plain := &graph.Node{Name: "Helper"}
	assert.False(t, isEntryPoint(plain, "csharp"))
}

func TestIsEntryPoint_PythonMainGuard(t *testing.T) {
	guard := &graph.Node{Name: "__main__"}
	assert.True(t, isEntryPoint(guard, "python"))

	plain := &graph.Node{Name: "helper"}
	assert.False(t, isEntryPoint(plain, "python"))
}

func TestAnalyzeDeadCode_MainGuardCallExemptsCallee(t *testing.T) {
	g, sink := newTestGraph()
	file := &graph.Node{ID: graph.SymbolID(graph.KindFile, "script.py", ""), Kind: graph.KindFile, Path: "script.py", Language: "python"}
	guard := &graph.Node{ID: graph.SymbolID(graph.KindFunction, "script.py", "__main__"), Kind: graph.KindFunction, Path: "script.py", Name: "__main__"}
	run := &graph.Node{ID: graph.SymbolID(graph.KindFunction, "script.py", "run"), Kind: graph.KindFunction, Path: "script.py", Name: "run"}

	sink.AddNode(file)
	sink.AddNode(guard)
	sink.AddNode(run)
	sink.AddEdge(&graph.Edge{SourceID: guard.ID, TargetID: run.ID, Type: graph.EdgeCalls, Confidence: 1.0})
	sink.Close()

	AnalyzeDeadCode(g)

	assert.False(t, g.Node(guard.ID).IsDead, "the __main__ guard itself is an entry point")
	assert.False(t, g.Node(run.ID).IsDead, "a function only reached from the __main__ guard is live")
}

func TestDeduplicateFlows_DropsHighOverlapSmallerFlow(t *testing.T) {
	big := flow{entry: &graph.Node{ID: "e1"}, visited: []string{"e1", "s1", "s2", "s3"}}
	small := flow{entry: &graph.Node{ID: "s1"}, visited: []string{"s1", "s2"}}

	out := deduplicateFlows([]flow{big, small})
	require.Len(t, out, 1)
	assert.Equal(t, "e1", out[0].entry.ID)
}
