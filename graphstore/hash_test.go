package graphstore

import "testing"

func TestPropertyHashStableForSameContent(t *testing.T) {
	a := PropertyMap{"name": String("x"), "count": Int(3)}
	b := PropertyMap{"name": String("x"), "count": Int(3)}
	ha, err := propertyHash(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := propertyHash(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Fatal("expected equal property maps to hash equal")
	}
}

func TestWithNodeMutNoopWriteKeepsValue(t *testing.T) {
	s, err := InMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id, err := s.AddNode(NodeFunction, PropertyMap{"name": String("f")})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WithNodeMut(id, func(n *Node) {
		n.Properties["name"] = String("f")
	}); err != nil {
		t.Fatal(err)
	}
	n, err := s.GetNode(id)
	if err != nil {
		t.Fatal(err)
	}
	name, _ := n.Properties.GetString("name")
	if name != "f" {
		t.Fatalf("expected name to remain f, got %q", name)
	}
}
