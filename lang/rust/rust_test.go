package rust

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/parser"
)

const sampleSource = `use std::fmt;

pub struct Widget {
    pub name: String,
}

impl Widget {
    pub fn render(&self) -> String {
        self.format()
    }

    fn format(&self) -> String {
        format!("widget:{}", self.name)
    }
}

pub trait Renderable {
    fn render(&self) -> String;
}
`

func TestParseSourceExtractsStructAndMethods(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "widget.rs", store)
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 2)
	require.Len(t, info.Traits, 1)
	require.Len(t, info.Imports, 1)
}

func TestParseSourceResolvesSelfCall(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "widget.rs", store)
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
	require.True(t, f.CanParse("widget.rs"))
	require.False(t, f.CanParse("widget.go"))
}
