package mesh

import (
	"fmt"

	"go.uber.org/multierr"
)

// DistanceSquared returns the squared Euclidean distance between two points.
// It is only meant for ordering comparisons.
func DistanceSquared(p1, p2 Point) float32 {
	return p1.DistanceSquared(p2)
}

// OffsetIndices returns a copy of loop with every index shifted by offset.
func OffsetIndices(loop Loop, offset uint32) Loop {
	out := make(Loop, len(loop))
	for i, idx := range loop {
		out[i] = idx + offset
	}
	return out
}

// Concatenate returns a followed by b, and the offset at which b starts.
func Concatenate(a, b PointSet) (PointSet, uint32) {
	out := make(PointSet, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out, uint32(len(a))
}

// Validate checks that the loop can be bridged over a point set of the given size.
func (l Loop) Validate(points int) error {
	if len(l) < 2 {
		return fmt.Errorf("%w: %d vertices, need at least 2", ErrInvalidLoop, len(l))
	}

	var err error
	for pos, idx := range l {
		if int(idx) >= points {
			err = multierr.Append(err, fmt.Errorf("%w: position %d references vertex %d of %d",
				ErrInvalidLoop, pos, idx, points))
		}
	}
	return err
}

// Reverse returns the loop walked in the opposite direction.
func (l Loop) Reverse() Loop {
	out := make(Loop, len(l))
	for i, idx := range l {
		out[len(l)-1-i] = idx
	}
	return out
}

// Direction returns the vector from the loop's first point to its last.
// When the ends coincide it falls back to the first half of the path, from
// the first point to the middle one. Callers must validate the loop first.
func (l Loop) Direction(points PointSet) Point {
	d := points[l[len(l)-1]].Sub(points[l[0]])
	if d != (Point{}) {
		return d
	}
	return points[l[len(l)/2]].Sub(points[l[0]])
}

// Closed reports whether the loop ends on the point it starts from, either
// by index or by position, and encloses something.
func (l Loop) Closed(points PointSet) bool {
	if len(l) < 4 {
		return false
	}
	first, last := l[0], l[len(l)-1]
	return first == last || points[first] == points[last]
}

// Normal returns the Newell normal of the loop taken as a polygon. It
// follows the winding by the right-hand rule and its length is twice the
// enclosed area. The closing edge from last to first is included.
func (l Loop) Normal(points PointSet) Point {
	var n Point
	for i, idx := range l {
		next := l[(i+1)%len(l)]
		n = n.Add(points[idx].Cross(points[next]))
	}
	return n
}
