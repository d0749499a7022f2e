package tcl

import "testing"

func TestIsEdaCommand(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"read_verilog", true},
		{"write_def", true},
		{"compile", true},
		{"get_cells", true},
		{"sta::report_checks", true},
		{"puts", false},
	}
	for _, c := range cases {
		if got := IsEdaCommand(c.name); got != c.want {
			t.Errorf("IsEdaCommand(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestClassifyDesignRead(t *testing.T) {
	cmds := Tokenize(`read_verilog design.v`)
	classified := ClassifyEdaFromArgs(cmds[0].Name, cmds[0].Args)
	if classified.Kind != "design_read" || classified.FileType != "verilog" || classified.Path != "design.v" {
		t.Fatalf("unexpected classification: %+v", classified)
	}
}

func TestClassifyToolFlow(t *testing.T) {
	cmds := Tokenize(`global_placement -density 0.7`)
	classified := ClassifyEdaFromArgs(cmds[0].Name, cmds[0].Args)
	if classified.Kind != "tool_flow" || classified.Category != "placement" {
		t.Fatalf("unexpected classification: %+v", classified)
	}
}

func TestClassifyObjectQuery(t *testing.T) {
	cmds := Tokenize(`get_cells -hier *`)
	classified := ClassifyEdaFromArgs(cmds[0].Name, cmds[0].Args)
	if classified.Kind != "object_query" || classified.CollectionType != "cell" {
		t.Fatalf("unexpected classification: %+v", classified)
	}
}

func TestClassifyOpenroadNamespaced(t *testing.T) {
	classified := ClassifyEdaFromArgs("gpl::set_density", nil)
	if classified.Kind != "tool_flow" || classified.Category != "openroad" {
		t.Fatalf("unexpected classification: %+v", classified)
	}
}

func TestFindFileArgument(t *testing.T) {
	got := findFileArgument([]string{"-format", "verilog", "design.v"})
	if got != "design.v" {
		t.Fatalf("expected design.v, got %q", got)
	}
}
