// Package mesh holds the index-based mesh model: point sets, boundary loops,
// triangles, weighted vertex groups and the fragments built from them.
package mesh

import (
	"errors"

	"github.com/Faultbox/meshbridge/pkg/math"
)

// Mesh model errors.
var (
	ErrInvalidLoop     = errors.New("invalid loop")
	ErrMissingGroup    = errors.New("missing vertex group")
	ErrEmptyGroup      = errors.New("empty vertex group")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDegenerateFace  = errors.New("face has fewer than 3 vertices")
)

// Point is a position in model space.
type Point = math.Vec3

// PointSet is an ordered list of points, addressed by position.
type PointSet []Point

// Loop is an open polyline of indices into a PointSet.
// The last index is not implicitly connected back to the first.
type Loop []uint32

// Triangle is a face given as three indices into a PointSet.
type Triangle [3]uint32

// VertexWeight associates a vertex index with a deform weight.
type VertexWeight struct {
	Index  uint32
	Weight float32
}

// VertexGroup is an ordered list of weighted vertices.
// Boundary groups list their vertices in traversal order.
type VertexGroup []VertexWeight

// Fragment is an independently authored piece of triangulated mesh.
type Fragment struct {
	Points    PointSet
	Triangles []Triangle
	Groups    map[string]VertexGroup
}

// Combined is the result of joining two fragments.
type Combined struct {
	Fragment

	// Offset is the amount every index of the second fragment was shifted by.
	Offset uint32

	// Bridges holds, per bridged group, the triangles generated between the
	// two fragments. They are also part of Fragment.Triangles.
	Bridges map[string][]Triangle
}
