package codeir

import "testing"

func TestFunctionHashStableAcrossCalls(t *testing.T) {
	fn := FunctionEntity{
		Name:       "Add",
		Signature:  "func Add(a, b int) int",
		LineStart:  10,
		LineEnd:    12,
		Parameters: []Parameter{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}},
	}
	if fn.Hash() != fn.Hash() {
		t.Fatal("hash must be deterministic across calls")
	}
}

func TestFunctionHashDiffersOnSignatureChange(t *testing.T) {
	base := FunctionEntity{Name: "Add", Signature: "func Add(a, b int) int", LineStart: 10, LineEnd: 12}
	changed := base
	changed.Signature = "func Add(a, b, c int) int"
	if base.Hash() == changed.Hash() {
		t.Fatal("expected hash to change when signature changes")
	}
}

func TestFunctionHashSameForIdenticalFunctions(t *testing.T) {
	a := FunctionEntity{Name: "Add", Signature: "func Add(a, b int) int", LineStart: 10, LineEnd: 12}
	b := FunctionEntity{Name: "Add", Signature: "func Add(a, b int) int", LineStart: 10, LineEnd: 12}
	if a.Hash() != b.Hash() {
		t.Fatal("identical functions must hash identically")
	}
}
