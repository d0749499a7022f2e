package pipeline

import "sort"

// PositionMap makes a sorted []Transformation searchable so a byte
// offset in the transformed source (where tree-sitter parsed) can be
// translated back to the corresponding offset in the original source
// (what the caller's file actually contains), without rescanning every
// transformation per lookup.
type PositionMap struct {
	transforms []Transformation
}

// NewPositionMap sorts transforms by TransformedStart and returns a
// map ready for repeated ToOriginal lookups.
func NewPositionMap(transforms []Transformation) *PositionMap {
	sorted := make([]Transformation, len(transforms))
	copy(sorted, transforms)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TransformedStart < sorted[j].TransformedStart
	})
	return &PositionMap{transforms: sorted}
}

// ToOriginal translates a byte offset in the transformed source to the
// equivalent offset in the original source. A position that falls
// inside a transformation's replacement span maps to the start of what
// it replaced; a position after it is shifted by the cumulative
// original-minus-transformed length delta of every transformation
// before it.
func (m *PositionMap) ToOriginal(pos int) int {
	idx := sort.Search(len(m.transforms), func(i int) bool {
		return m.transforms[i].TransformedStart > pos
	})
	// idx is the count of transforms starting at or before pos; the
	// candidate containing pos, if any, is at idx-1.
	delta := 0
	for i := 0; i < idx; i++ {
		t := m.transforms[i]
		if pos < t.TransformedStart+t.TransformedLength {
			return t.OriginalStart
		}
		delta += t.OriginalLength - t.TransformedLength
	}
	return pos + delta
}

// ToOriginalRange translates a [start, end) byte range in the
// transformed source to the corresponding range in the original.
func (m *PositionMap) ToOriginalRange(start, end int) (int, int) {
	return m.ToOriginal(start), m.ToOriginal(end)
}
