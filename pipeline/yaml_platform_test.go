package pipeline

import "testing"

const samplePlatformYAML = `
id: custom
name: Custom Platform
detection_patterns:
  - kind: include
    pattern: custom/header.h
    weight: 3.0
  - kind: macro
    pattern: CUSTOM_MODULE
    weight: 2.0
header_stubs:
  custom/header.h: "typedef unsigned int custom_t;"
attributes_to_strip:
  - __custom_attr
ops_structs:
  - struct_name: custom_ops
    fields:
      - name: open
        category: open
      - name: close
        category: close
call_normalizations:
  custom_alloc: malloc
`

func TestParsePlatformModule(t *testing.T) {
	p, err := ParsePlatformModule([]byte(samplePlatformYAML))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID() != "custom" || p.Name() != "Custom Platform" {
		t.Fatalf("unexpected identity: %s / %s", p.ID(), p.Name())
	}
	if len(p.DetectionPatterns()) != 2 {
		t.Fatalf("expected 2 detection patterns, got %d", len(p.DetectionPatterns()))
	}
	if !p.HeaderStubs().HasStub("custom/header.h") {
		t.Fatal("expected header stub to be registered")
	}
	if len(p.AttributesToStrip()) != 1 {
		t.Fatal("expected 1 attribute to strip")
	}
	structs := p.OpsStructs()
	if len(structs) != 1 || structs[0].StructName != "custom_ops" || len(structs[0].Fields) != 2 {
		t.Fatalf("unexpected ops structs: %+v", structs)
	}
	if p.CallNormalizations()["custom_alloc"] != "malloc" {
		t.Fatal("expected call normalization to be parsed")
	}
}

func TestParsePlatformModuleRequiresID(t *testing.T) {
	if _, err := ParsePlatformModule([]byte("name: Missing ID\n")); err == nil {
		t.Fatal("expected an error when id is missing")
	}
}

func TestYAMLPlatformUsableAsPlatformModule(t *testing.T) {
	p, err := ParsePlatformModule([]byte(samplePlatformYAML))
	if err != nil {
		t.Fatal(err)
	}
	reg := NewPlatformRegistry()
	reg.Register(p)
	if reg.Get("custom") == nil {
		t.Fatal("expected registry to accept a YAMLPlatform")
	}
}
