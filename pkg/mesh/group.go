package mesh

import (
	"fmt"
	gomath "math"
	"sort"
)

// Indices returns the vertex indices of the group in order.
func (g VertexGroup) Indices() Loop {
	out := make(Loop, len(g))
	for i, w := range g {
		out[i] = w.Index
	}
	return out
}

// Offset returns a copy of the group with every index shifted by offset.
func (g VertexGroup) Offset(offset uint32) VertexGroup {
	out := make(VertexGroup, len(g))
	for i, w := range g {
		out[i] = VertexWeight{Index: w.Index + offset, Weight: w.Weight}
	}
	return out
}

// Loop returns the named group as a boundary loop.
func (f *Fragment) Loop(name string) (Loop, error) {
	g, ok := f.Groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingGroup, name)
	}
	return g.Indices(), nil
}

// GroupNames returns the fragment's group names in sorted order.
func (f *Fragment) GroupNames() []string {
	names := make([]string, 0, len(f.Groups))
	for name := range f.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortRadial orders a group by its angle around the X axis, atan2(y, z),
// largest angle first, and closes it by repeating the first entry at the end.
// The input group is not modified.
func SortRadial(points PointSet, g VertexGroup) (VertexGroup, error) {
	if err := checkGroup(points, g); err != nil {
		return nil, err
	}

	out := make(VertexGroup, len(g), len(g)+1)
	copy(out, g)

	angle := func(w VertexWeight) float64 {
		p := points[w.Index]
		return gomath.Atan2(float64(p.Y), float64(p.Z))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return angle(out[i]) > angle(out[j])
	})

	return append(out, out[0]), nil
}

// SortAlong orders a group by increasing projection onto axis. The result
// stays open. The input group is not modified.
func SortAlong(points PointSet, g VertexGroup, axis Point) (VertexGroup, error) {
	if err := checkGroup(points, g); err != nil {
		return nil, err
	}

	out := append(VertexGroup(nil), g...)
	sort.SliceStable(out, func(i, j int) bool {
		return points[out[i].Index].Dot(axis) < points[out[j].Index].Dot(axis)
	})
	return out, nil
}

func checkGroup(points PointSet, g VertexGroup) error {
	if len(g) == 0 {
		return ErrEmptyGroup
	}
	for _, w := range g {
		if int(w.Index) >= len(points) {
			return fmt.Errorf("%w: group vertex %d of %d", ErrIndexOutOfRange, w.Index, len(points))
		}
	}
	return nil
}
