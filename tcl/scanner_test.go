package tcl

import "testing"

func TestTokenizeSimpleProc(t *testing.T) {
	src := `proc greet {name} { puts "Hello $name" }`
	cmds := Tokenize(src)
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	if cmds[0].Name != "proc" {
		t.Fatalf("expected proc, got %q", cmds[0].Name)
	}
	if len(cmds[0].Args) != 3 {
		t.Fatalf("expected 3 args, got %d: %v", len(cmds[0].Args), cmds[0].Args)
	}
	if cmds[0].Args[0] != "greet" {
		t.Fatalf("expected name greet, got %q", cmds[0].Args[0])
	}
}

func TestTokenizeSkipsComments(t *testing.T) {
	src := "# a comment\nset x 1\n# another\nset y 2\n"
	cmds := Tokenize(src)
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d: %+v", len(cmds), cmds)
	}
}

func TestTokenizeSemicolonSeparated(t *testing.T) {
	src := "set x 1; set y 2"
	cmds := Tokenize(src)
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
}

func TestTokenizeBracketGroupNotSplit(t *testing.T) {
	src := "set_input_delay -clock clk 2 [get_ports {data in}]"
	cmds := Tokenize(src)
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	last := cmds[0].Args[len(cmds[0].Args)-1]
	if last != "[get_ports {data in}]" {
		t.Fatalf("expected bracket group kept intact, got %q", last)
	}
}

func TestTokenizeLineContinuation(t *testing.T) {
	src := "set_max_delay 2.0 \\\n    -from [get_ports a] -to [get_ports b]"
	cmds := Tokenize(src)
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
}

func TestExtractPortFromBracket(t *testing.T) {
	port, ok := extractPortFromBracket("[get_ports clk]")
	if !ok || port != "clk" {
		t.Fatalf("expected clk, got %q ok=%v", port, ok)
	}
}
