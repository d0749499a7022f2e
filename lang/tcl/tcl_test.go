package tcl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/parser"
)

func newStore(t *testing.T) *graphstore.Store {
	t.Helper()
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestParserCreation(t *testing.T) {
	f := New(parser.DefaultConfig())
	require.Equal(t, "tcl", f.Language())
	require.Equal(t, []string{".tcl", ".sdc", ".upf"}, f.FileExtensions())
}

func TestCanParse(t *testing.T) {
	f := New(parser.DefaultConfig())
	require.True(t, f.CanParse("script.tcl"))
	require.True(t, f.CanParse("constraints.sdc"))
	require.True(t, f.CanParse("power.upf"))
	require.False(t, f.CanParse("main.go"))
}

func TestParseSourceSimpleProc(t *testing.T) {
	source := `proc greet {name} {
    puts "Hello $name"
}`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "greet.tcl", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 1)
}

func TestParseSourceMultipleProcs(t *testing.T) {
	source := `
proc add {a b} {
    return [expr {$a + $b}]
}

proc subtract {a b} {
    return [expr {$a - $b}]
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "math.tcl", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 2)
}

func TestParseSourceProcCallsAnotherProc(t *testing.T) {
	source := `
proc helper {x} {
    return [expr {$x * 2}]
}

proc main {y} {
    set z [helper $y]
    return $z
}
`
	f := New(parser.DefaultConfig())
	store := newStore(t)
	info, err := f.ParseSource(source, "calls.tcl", store)
	require.NoError(t, err)
	require.Len(t, info.Functions, 2)
}

func TestParseSourceNamespace(t *testing.T) {
	source := `
namespace eval utils {
    proc double {x} {
        return [expr {$x * 2}]
    }
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "ns.tcl", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
}

func TestParseSourceSdcClock(t *testing.T) {
	source := `
create_clock -name clk -period 10 [get_ports clk]
set_input_delay -clock clk 2 [get_ports data_in]
`
	f := New(parser.DefaultConfig())
	store := newStore(t)
	info, err := f.ParseSource(source, "constraints.sdc", store)
	require.NoError(t, err)

	node, err := store.GetNode(info.FileID)
	require.NoError(t, err)
	clocksJSON, ok := node.Properties.GetString("sdc_clocks")
	require.True(t, ok)
	require.True(t, strings.Contains(clocksJSON, "clk"))

	diag := f.LastDiagnostics()
	require.NotNil(t, diag)
	require.Len(t, diag.Sdc.Clocks, 1)
	require.Len(t, diag.Sdc.IoDelays, 1)
}

func TestParseSourceEdaFlow(t *testing.T) {
	source := `
read_verilog design.v
read_liberty stdcells.lib
compile
report_timing
write_def design.def
`
	f := New(parser.DefaultConfig())
	store := newStore(t)
	info, err := f.ParseSource(source, "flow.tcl", store)
	require.NoError(t, err)
	require.NotEmpty(t, info.Imports)

	node, err := store.GetNode(info.FileID)
	require.NoError(t, err)
	reads, ok := node.Properties.GetString("eda_design_reads")
	require.True(t, ok)
	require.True(t, strings.Contains(reads, "verilog"))

	writes, ok := node.Properties.GetString("eda_design_writes")
	require.True(t, ok)
	require.True(t, strings.Contains(writes, "def"))
}

func TestParseSourceSourceAndPackageImports(t *testing.T) {
	source := `
source helpers.tcl
package require Tk
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "deps.tcl", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Imports, 2)
}

func TestParseSourceEmptyFile(t *testing.T) {
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource("", "empty.tcl", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 0)
}

func TestParseSourceCommentsOnly(t *testing.T) {
	source := "# just a comment\n# another line\n"
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "comments.tcl", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 0)
}

func TestMetricsTracking(t *testing.T) {
	f := New(parser.DefaultConfig())
	_, err := f.ParseFile("testdata/does-not-exist.tcl", newStore(t))
	require.Error(t, err)
	require.Equal(t, 1, f.Metrics().FilesFailed)
}
