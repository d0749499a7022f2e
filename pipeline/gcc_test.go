package pipeline

import "testing"

func TestFindMatchingParenBalanced(t *testing.T) {
	code := "foo(bar(baz), qux)"
	end, ok := findMatchingParen(code, 3)
	if !ok {
		t.Fatal("expected balanced parens to resolve")
	}
	if code[end-1] != ')' {
		t.Fatalf("expected end to land on closing paren, got %q", code[end-1])
	}
}

func TestFindMatchingParenUnbalancedBailsOut(t *testing.T) {
	_, ok := findMatchingParen("foo(bar(baz", 3)
	if ok {
		t.Fatal("expected unbalanced parens to fail")
	}
}

func TestFindMatchingParenBailsOutPastMaxIterations(t *testing.T) {
	huge := make([]byte, maxScanIterations+10)
	huge[0] = '('
	for i := 1; i < len(huge); i++ {
		huge[i] = 'a'
	}
	_, ok := findMatchingParen(string(huge), 0)
	if ok {
		t.Fatal("expected scan to bail out before reaching end of a pathologically long unbalanced input")
	}
}

func TestFindStatementExprEnd(t *testing.T) {
	code := "x = ({ int a = 1; a; });"
	end, ok := findStatementExprEnd(code, 4)
	if !ok {
		t.Fatal("expected statement expression to resolve")
	}
	if code[end-1] != ')' {
		t.Fatalf("expected end to land on closing paren, got %q", code[end-1])
	}
}

func TestGccNeutralizerStripsAttribute(t *testing.T) {
	n := NewGccNeutralizer()
	result := n.Neutralize(`int x __attribute__((unused));`)
	if len(result.Transformations) == 0 {
		t.Fatal("expected at least one transformation")
	}
}
