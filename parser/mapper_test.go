package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/codeir"
	"github.com/viant/codegraph/graphstore"
)

func TestIRToGraphCreatesFileAndFunctions(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	ir := &codeir.CodeIR{
		Module: &codeir.ModuleEntity{Name: "main", Language: "python", LineCount: 10},
		Functions: []codeir.FunctionEntity{
			{Name: "main", Visibility: codeir.VisibilityPublic, LineStart: 1, LineEnd: 5},
			{Name: "helper", Visibility: codeir.VisibilityPrivate, LineStart: 6, LineEnd: 9},
		},
		Calls: []codeir.CallRelation{{Caller: "main", Callee: "helper", Line: 3}},
	}

	info, err := IRToGraph(ir, store, "main.py")
	require.NoError(t, err)
	require.Len(t, info.Functions, 2)
	require.Equal(t, 3, store.NodeCount()) // file + 2 functions

	neighbors := store.GetNeighbors(info.FileID, graphstore.DirOut)
	require.Len(t, neighbors, 2)
}

func TestIRToGraphRecordsUnresolvedCalls(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	ir := &codeir.CodeIR{
		Functions: []codeir.FunctionEntity{{Name: "main"}},
		Calls:     []codeir.CallRelation{{Caller: "main", Callee: "external.Helper", Line: 2}},
	}
	info, err := IRToGraph(ir, store, "a.go")
	require.NoError(t, err)

	fn, err := store.GetNode(info.Functions[0])
	require.NoError(t, err)
	unresolved, ok := fn.Properties.GetStringList("unresolved_calls")
	require.True(t, ok)
	require.Equal(t, []string{"external.Helper"}, unresolved)
}

func TestIRToGraphReusesModuleAcrossFiles(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	ir1 := &codeir.CodeIR{Imports: []codeir.ImportRelation{{Importer: "a.py", Imported: "os"}}}
	ir2 := &codeir.CodeIR{Imports: []codeir.ImportRelation{{Importer: "b.py", Imported: "os"}}}

	_, err = IRToGraph(ir1, store, "a.py")
	require.NoError(t, err)
	_, err = IRToGraph(ir2, store, "b.py")
	require.NoError(t, err)

	require.Len(t, store.NodeIDsByType(graphstore.NodeModule), 1)
}

func TestIRToGraphClassMethodsGetParentClassEdge(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	ir := &codeir.CodeIR{
		Classes: []codeir.ClassEntity{
			{
				Name:    "Widget",
				Methods: []codeir.FunctionEntity{{Name: "render"}},
			},
		},
	}
	info, err := IRToGraph(ir, store, "widget.py")
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 1)

	method, err := store.GetNode(info.Functions[0])
	require.NoError(t, err)
	parent, ok := method.Properties.GetString("parent_class")
	require.True(t, ok)
	require.Equal(t, "Widget", parent)

	neighbors := store.GetNeighbors(info.Classes[0], graphstore.DirOut)
	require.Contains(t, neighbors, info.Functions[0])
}
