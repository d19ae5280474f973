// Package bridge stitches two open boundary loops together with a strip of
// triangles, advancing greedily along whichever loop gives the shorter
// diagonal.
package bridge

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// Bridge errors.
var (
	// ErrInvalidLoop is returned for loops shorter than 2 vertices or with
	// indices outside the point set.
	ErrInvalidLoop = mesh.ErrInvalidLoop

	// ErrOpposedLoops is returned by OrientCheck when the loops run in
	// opposite directions.
	ErrOpposedLoops = errors.New("loops are wound in opposite directions")
)

// Orientation selects how loops running in opposite directions are handled.
type Orientation int

const (
	OrientIgnore  Orientation = iota // Bridge as given; opposed loops produce a twisted strip
	OrientCheck                      // Fail with ErrOpposedLoops
	OrientCorrect                    // Reverse the second loop
)

// String returns the orientation mode name.
func (o Orientation) String() string {
	switch o {
	case OrientIgnore:
		return "ignore"
	case OrientCheck:
		return "check"
	case OrientCorrect:
		return "correct"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation converts a mode name to an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "ignore":
		return OrientIgnore, nil
	case "check":
		return OrientCheck, nil
	case "correct":
		return OrientCorrect, nil
	default:
		return OrientIgnore, fmt.Errorf("unknown orientation mode %q", s)
	}
}

// Options controls a bridge.
type Options struct {
	Orientation Orientation
}

// Bridge connects loop a to loop b, both indexing into points, and returns
// the triangles in traversal order. The first vertices of both loops are
// taken as already connected. Each triangle consumes one further vertex, so
// the result holds len(a)+len(b)-2 triangles.
//
// At each step the current vertex of a is compared against the current and
// the next vertex of b. A strictly shorter current diagonal advances a,
// anything else (ties included) advances b. Once a loop reaches its last
// vertex that vertex is consumed and the other loop drains against it.
func Bridge(points mesh.PointSet, a, b mesh.Loop) ([]mesh.Triangle, error) {
	return BridgeWithOptions(points, a, b, Options{})
}

// BridgeWithOptions is Bridge with orientation handling.
func BridgeWithOptions(points mesh.PointSet, a, b mesh.Loop, opts Options) ([]mesh.Triangle, error) {
	if err := multierr.Combine(
		wrapLoop("loop a", a.Validate(len(points))),
		wrapLoop("loop b", b.Validate(len(points))),
	); err != nil {
		return nil, err
	}

	if opts.Orientation != OrientIgnore && opposed(points, a, b) {
		if opts.Orientation == OrientCheck {
			return nil, ErrOpposedLoops
		}
		b = b.Reverse()
	}

	return walk(points, a, b), nil
}

// walk runs the advancing front over validated loops.
func walk(points mesh.PointSet, a, b mesh.Loop) []mesh.Triangle {
	tris := make([]mesh.Triangle, 0, len(a)+len(b)-2)

	// i and j are the next unconsumed positions in a and b.
	i, j := 1, 1
	for i < len(a) || j < len(b) {
		var advanceA bool
		switch {
		case j == len(b):
			advanceA = true
		case i == len(a):
			advanceA = false
		case i == len(a)-1:
			advanceA = true
		case j == len(b)-1:
			advanceA = false
		default:
			here := mesh.DistanceSquared(points[a[i]], points[b[j]])
			next := mesh.DistanceSquared(points[a[i]], points[b[j+1]])
			advanceA = here < next
		}

		if advanceA {
			tris = append(tris, mesh.Triangle{a[i-1], a[i], b[j-1]})
			i++
		} else {
			tris = append(tris, mesh.Triangle{a[i-1], b[j], b[j-1]})
			j++
		}
	}

	return tris
}

// opposed reports whether the loops run against each other. Two closed
// loops are compared by winding, anything else by direction of travel.
func opposed(points mesh.PointSet, a, b mesh.Loop) bool {
	if a.Closed(points) && b.Closed(points) {
		return a.Normal(points).Dot(b.Normal(points)) < 0
	}
	return a.Direction(points).Dot(b.Direction(points)) < 0
}

func wrapLoop(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
