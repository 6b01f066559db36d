package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

func TestParsePythonFunctionAndCall(t *testing.T) {
	src := `def f():
    g()

def g():
    pass
`
	res, err := Parse("a.py", []byte(src))
	require.NoError(t, err)
	require.Len(t, res.Symbols, 2)
	assert.Equal(t, "f", res.Symbols[0].Name)
	assert.Equal(t, graph.KindFunction, res.Symbols[0].Kind)
	require.Len(t, res.Calls, 1)
	assert.Equal(t, "g", res.Calls[0].Callee)
	assert.Equal(t, "f", res.Calls[0].CallerQualifiedName)
}

func TestParsePythonClassAndHeritage(t *testing.T) {
	src := `class Base:
    pass

class Derived(Base):
    def __init__(self):
        pass

    @property
    def value(self):
        return 1
`
	res, err := Parse("m.py", []byte(src))
	require.NoError(t, err)

	var derived *Symbol
	var ctor, prop *Symbol
	for i := range res.Symbols {
		s := &res.Symbols[i]
		switch {
		case s.Kind == graph.KindClass && s.Name == "Derived":
			derived = s
		case s.QualifiedName == "Derived.__init__":
			ctor = s
		case s.QualifiedName == "Derived.value":
			prop = s
		}
	}
	require.NotNil(t, derived)
	require.NotNil(t, ctor)
	require.NotNil(t, prop)
	assert.True(t, ctor.IsCtor)
	assert.True(t, prop.IsProperty)
	require.Len(t, res.Heritage, 1)
	assert.Equal(t, "extends", res.Heritage[0].Kind)
	assert.Equal(t, "Base", res.Heritage[0].ParentName)
}

func TestParseCSharpConstructorSuffix(t *testing.T) {
	src := `using System;

public class UserService
{
    private readonly IUserRepository _repo;

    public UserService(IUserRepository repo)
    {
        _repo = repo;
    }

    public void GetAll()
    {
        _repo.GetAll();
    }
}
`
	res, err := Parse("UserService.cs", []byte(src))
	require.NoError(t, err)

	var ctor, getAll *Symbol
	for i := range res.Symbols {
		s := &res.Symbols[i]
		if s.QualifiedName == "UserService.ctor" {
			ctor = s
		}
		if s.QualifiedName == "UserService.GetAll" {
			getAll = s
		}
	}
	require.NotNil(t, ctor)
	require.NotNil(t, getAll)
	assert.True(t, ctor.IsCtor)

	var found bool
	for _, c := range res.Calls {
		if c.CallerQualifiedName == "UserService.GetAll" && c.Callee == "GetAll" {
			found = true
			assert.Equal(t, "IUserRepository", c.ReceiverType)
		}
	}
	assert.True(t, found)
}

func TestParseTypeScriptInterfaceStub(t *testing.T) {
	src := `export interface IUserService {
    getUser(id: number): User;
}
`
	res, err := Parse("svc.ts", []byte(src))
	require.NoError(t, err)

	var iface *Symbol
	for i := range res.Symbols {
		if res.Symbols[i].Kind == graph.KindInterface {
			iface = &res.Symbols[i]
		}
	}
	require.NotNil(t, iface)
	assert.Contains(t, iface.MethodsDeclared, "getUser")
}

func TestLanguageForUnknownExtension(t *testing.T) {
	assert.Equal(t, "unknown", LanguageFor("README.md"))
	assert.Equal(t, "python", LanguageFor("a/b/c.py"))
	assert.Equal(t, "csharp", LanguageFor("Program.cs"))
}

func TestParseGoMethodAndInterface(t *testing.T) {
	src := `package svc

type Repo interface {
	Get(id int) string
}

type Service struct{}

func (s *Service) Get(id int) string {
	return repo.Get(id)
}
`
	res, err := Parse("svc.go", []byte(src))
	require.NoError(t, err)

	var method *Symbol
	var iface *Symbol
	for i := range res.Symbols {
		if res.Symbols[i].QualifiedName == "Service.Get" {
			method = &res.Symbols[i]
		}
		if res.Symbols[i].Kind == graph.KindInterface {
			iface = &res.Symbols[i]
		}
	}
	require.NotNil(t, method)
	require.NotNil(t, iface)
	assert.Contains(t, iface.MethodsDeclared, "Get")
}

func TestParseGoSetsParseFailedOnMalformedSource(t *testing.T) {
	res, err := Parse("broken.go", []byte("package svc\n\nfunc f(( {\n"))
	require.NoError(t, err)
	assert.True(t, res.ParseFailed)
	assert.Empty(t, res.Symbols)
}

func TestParsePythonSetsParseFailedOnUnbalancedDelimiters(t *testing.T) {
	res, err := Parse("broken.py", []byte("def f(a, b:\n    return [1, 2\n"))
	require.NoError(t, err)
	assert.True(t, res.ParseFailed)
	assert.Empty(t, res.Symbols)
}

func TestParseTypeScriptSetsParseFailedOnUnbalancedDelimiters(t *testing.T) {
	res, err := Parse("broken.ts", []byte("function f(a: number {\n  return a;\n"))
	require.NoError(t, err)
	assert.True(t, res.ParseFailed)
	assert.Empty(t, res.Symbols)
}

func TestParseCSharpSetsParseFailedOnUnbalancedDelimiters(t *testing.T) {
	res, err := Parse("Broken.cs", []byte("public class C {\n    public void M( {\n"))
	require.NoError(t, err)
	assert.True(t, res.ParseFailed)
	assert.Empty(t, res.Symbols)
}

func TestParsePythonMainGuardIsItsOwnEntrySymbol(t *testing.T) {
	src := `def run():
    pass

if __name__ == "__main__":
    run()
`
	res, err := Parse("script.py", []byte(src))
	require.NoError(t, err)
	require.Len(t, res.Symbols, 2)
	assert.Equal(t, "run", res.Symbols[0].Name)
	assert.Equal(t, "__main__", res.Symbols[1].Name)
	assert.Equal(t, graph.KindFunction, res.Symbols[1].Kind)

	require.Len(t, res.Calls, 1)
	assert.Equal(t, "run", res.Calls[0].Callee)
	assert.Equal(t, "__main__", res.Calls[0].CallerQualifiedName, "a call inside the __main__ guard should be attributed to the guard, not the last def above it")
}
