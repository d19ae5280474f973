package mesh

import (
	"errors"
	"fmt"
	gomath "math"
)

// ErrFlatFragment is returned when a ring is requested from a fragment with
// no extent along Y.
var ErrFlatFragment = errors.New("fragment has no extent along Y")

// MakeArray returns count copies of f, copy i moved by offset*i.
func MakeArray(f *Fragment, count int, offset Point) *Fragment {
	out := &Fragment{Groups: map[string]VertexGroup{}}
	for i := 0; i < count; i++ {
		next := f.Translate(offset.Scale(float32(i)))
		out, _ = Extend(out, next)
	}
	return out
}

// MakeRing repeats f along Y and bends the strip into a closed ring around
// the X axis, centered on the origin. Copies are spaced by the fragment's
// Y extent.
func MakeRing(f *Fragment, duplicates int) (*Fragment, error) {
	if duplicates < 1 {
		return nil, fmt.Errorf("ring needs at least one copy, got %d", duplicates)
	}
	_, _, dim := f.Bounds()
	if dim.Y <= 0 {
		return nil, ErrFlatFragment
	}

	circumference := dim.Y * float32(duplicates)
	radius := circumference / (2 * gomath.Pi)

	ring := MakeArray(f, duplicates, Point{Y: dim.Y})
	ring = ring.Translate(Point{Z: radius})
	return ring.Bend(2 * gomath.Pi / circumference), nil
}

// TriangulateFan splits a convex polygon face into a triangle fan anchored at
// its first vertex, keeping the face's winding.
func TriangulateFan(face []uint32) ([]Triangle, error) {
	if len(face) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateFace, len(face))
	}

	tris := make([]Triangle, 0, len(face)-2)
	for i := 1; i < len(face)-1; i++ {
		tris = append(tris, Triangle{face[0], face[i], face[i+1]})
	}
	return tris, nil
}
