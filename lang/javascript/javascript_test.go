package javascript

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/parser"
)

const sampleSource = `import { useState } from 'react';

class Widget {
  render() {
    return this.format();
  }

  format() {
    return 'widget';
  }
}

const makeWidget = () => {
  return new Widget();
};
`

func TestParseSourceExtractsClassAndArrowFunction(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "widget.js", store)
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 3)
	require.Len(t, info.Imports, 1)
}

func TestParseSourceResolvesThisCall(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "widget.js", store)
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

func TestCanParse(t *testing.T) {
	f := New(parser.DefaultConfig())
	require.True(t, f.CanParse("widget.jsx"))
	require.True(t, f.CanParse("widget.ts"))
	require.False(t, f.CanParse("widget.py"))
}
