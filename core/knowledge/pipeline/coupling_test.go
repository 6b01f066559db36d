package pipeline

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/search/git"
)

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(out))
}

func writeAndCommit(t *testing.T, dir, name, content, message string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	runGitCmd(t, dir, "add", name)
	runGitCmd(t, dir, "commit", "-m", message)
}

func TestDetectChangeCoupling_CoChangedFilesGetCoupledWithEdge(t *testing.T) {
	tmp, err := os.MkdirTemp("", "axon-coupling-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmp)

	runGitCmd(t, tmp, "init")
	runGitCmd(t, tmp, "config", "user.email", "test@example.com")
	runGitCmd(t, tmp, "config", "user.name", "Test User")

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(tmp, "a.py"), []byte(strings.Repeat("x", i+1)), 0644))
		runGitCmd(t, tmp, "add", "a.py")
		writeAndCommit(t, tmp, "b.py", strings.Repeat("y", i+1), "touch a and b")
	}

	client, err := git.NewGitClient(tmp)
	require.NoError(t, err)
	defer client.Close()

	g := graph.New()
	sink := graph.NewSink(g, 64)
	sink.AddNode(&graph.Node{ID: graph.SymbolID(graph.KindFile, "a.py", ""), Kind: graph.KindFile, Path: "a.py"})
	sink.AddNode(&graph.Node{ID: graph.SymbolID(graph.KindFile, "b.py", ""), Kind: graph.KindFile, Path: "b.py"})
	sink.Close()

	sink2 := graph.NewSink(g, 64)
	err = DetectChangeCoupling(client, g, sink2, CouplingOptions{WindowDays: 3650, MinCoChanges: 2, MinStrength: 0.1})
	sink2.Close()
	require.NoError(t, err)

	edges := g.Out(graph.SymbolID(graph.KindFile, "a.py", ""), graph.EdgeCoupledWith)
	require.Len(t, edges, 1)
	assert.Equal(t, graph.SymbolID(graph.KindFile, "b.py", ""), edges[0].TargetID)
	assert.GreaterOrEqual(t, edges[0].CoChanges, 2)
}
