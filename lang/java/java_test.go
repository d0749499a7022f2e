package java

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/parser"
)

const sampleSource = `package com.example.widgets;

import java.util.List;
import java.util.function.*;

public class Widget implements Renderable {
	private String name;

	public String render() {
		return this.format();
	}

	private String format() {
		return "widget:" + name;
	}
}
`

const sampleInterface = `package com.example.widgets;

public interface Renderable {
	String render();
}
`

func TestParseSourceExtractsClassAndMethods(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "Widget.java", store)
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 2)
	require.Len(t, info.Imports, 2)
}

func TestParseSourceExtractsInterface(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleInterface, "Renderable.java", store)
	require.NoError(t, err)
	require.Len(t, info.Traits, 1)
}

func TestParseSourceResolvesThisCall(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "Widget.java", store)
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
	neighbors := store.GetNeighbors(renderID, graphstore.DirOut)
	require.NotEmpty(t, neighbors)
}

func TestCanParse(t *testing.T) {
	f := New(parser.DefaultConfig())
	require.True(t, f.CanParse("Widget.java"))
	require.False(t, f.CanParse("widget.go"))
}
