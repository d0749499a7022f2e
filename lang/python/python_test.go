package python

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/parser"
)

const sampleSource = `import os
from typing import List

class Widget:
    def render(self):
        return self._format()

    def _format(self):
        return "widget"

def new_widget():
    return Widget()
`

func TestParseSourceExtractsClassAndMethods(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "widget.py", store)
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 3)
	require.Len(t, info.Imports, 2)
}

func TestParseSourceResolvesSelfCall(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "widget.py", store)
	require.NoError(t, err)

	var renderID uint64
	for _, id := range info.Functions {
		n, err := store.GetNode(id)
		require.NoError(t, err)
		if name, _ := n.Properties.GetString("name"); name == "render" {
			renderID = id
		}
	}
	require.NotZero(t, renderID)
	require.NotEmpty(t, store.GetNeighbors(renderID, graphstore.DirOut))
}

func TestParseSourcePrivateMethodVisibility(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "widget.py", store)
	require.NoError(t, err)

	var found bool
	for _, id := range info.Functions {
		n, err := store.GetNode(id)
		require.NoError(t, err)
		if name, _ := n.Properties.GetString("name"); name == "_format" {
			found = true
			vis, _ := n.Properties.GetString("visibility")
			require.Equal(t, "private", vis)
		}
	}
	require.True(t, found)
}

func TestCanParse(t *testing.T) {
	f := New(parser.DefaultConfig())
	require.True(t, f.CanParse("widget.py"))
	require.False(t, f.CanParse("widget.go"))
}
