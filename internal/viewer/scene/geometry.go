package scene

import (
	"github.com/Faultbox/meshbridge/pkg/math"
	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// VertexStride is the number of floats per surface vertex: position,
// normal, color.
const VertexStride = 9

// Colors used for the surface.
var (
	SurfaceColor = math.Vec3{X: 0.70, Y: 0.72, Z: 0.76}
	BridgeColor  = math.Vec3{X: 0.95, Y: 0.55, Z: 0.15}
)

// Mesh is vertex data ready for upload.
type Mesh struct {
	// Surface holds three vertices per triangle, VertexStride floats each.
	// Normals are per face.
	Surface []float32

	// Lines holds one position pair per unique triangle edge.
	Lines []float32

	// Box holds the 12 edges of the bounding box as position pairs.
	Box []float32

	Lo, Hi math.Vec3

	Triangles int
	Bridged   int
}

// SurfaceVertices returns the number of vertices in Surface.
func (m *Mesh) SurfaceVertices() int32 {
	return int32(len(m.Surface) / VertexStride)
}

// LineVertices returns the number of vertices in Lines.
func (m *Mesh) LineVertices() int32 {
	return int32(len(m.Lines) / 3)
}

// Build flattens a fragment into draw data. Triangles listed in bridged are
// colored with BridgeColor, matched regardless of winding start.
func Build(f *mesh.Fragment, bridged []mesh.Triangle) *Mesh {
	highlight := make(map[mesh.Triangle]bool, len(bridged))
	for _, tri := range bridged {
		highlight[canonical(tri)] = true
	}

	m := &Mesh{
		Surface:   make([]float32, 0, len(f.Triangles)*3*VertexStride),
		Triangles: len(f.Triangles),
	}
	m.Lo, m.Hi, _ = f.Bounds()
	m.Box = BoxLines(m.Lo, m.Hi)

	type edge [2]uint32
	seen := make(map[edge]bool, len(f.Triangles)*3/2)

	for _, tri := range f.Triangles {
		color := SurfaceColor
		if highlight[canonical(tri)] {
			color = BridgeColor
			m.Bridged++
		}
		n := mesh.FaceNormal(f.Points, tri)

		for k, idx := range tri {
			p := f.Points[idx]
			m.Surface = append(m.Surface, p.X, p.Y, p.Z, n.X, n.Y, n.Z, color.X, color.Y, color.Z)

			e := edge{idx, tri[(k+1)%3]}
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			if seen[e] || e[0] == e[1] {
				continue
			}
			seen[e] = true
			a, b := f.Points[e[0]], f.Points[e[1]]
			m.Lines = append(m.Lines, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
		}
	}

	return m
}

// canonical rotates a triangle so its smallest index comes first, keeping
// the winding.
func canonical(t mesh.Triangle) mesh.Triangle {
	switch {
	case t[1] < t[0] && t[1] <= t[2]:
		return mesh.Triangle{t[1], t[2], t[0]}
	case t[2] < t[0] && t[2] < t[1]:
		return mesh.Triangle{t[2], t[0], t[1]}
	default:
		return t
	}
}

// BoxLines returns the 12 edges of the box lo..hi as 24 positions.
func BoxLines(lo, hi math.Vec3) []float32 {
	return []float32{
		// Bottom
		lo.X, lo.Y, lo.Z, hi.X, lo.Y, lo.Z,
		hi.X, lo.Y, lo.Z, hi.X, lo.Y, hi.Z,
		hi.X, lo.Y, hi.Z, lo.X, lo.Y, hi.Z,
		lo.X, lo.Y, hi.Z, lo.X, lo.Y, lo.Z,
		// Top
		lo.X, hi.Y, lo.Z, hi.X, hi.Y, lo.Z,
		hi.X, hi.Y, lo.Z, hi.X, hi.Y, hi.Z,
		hi.X, hi.Y, hi.Z, lo.X, hi.Y, hi.Z,
		lo.X, hi.Y, hi.Z, lo.X, hi.Y, lo.Z,
		// Sides
		lo.X, lo.Y, lo.Z, lo.X, hi.Y, lo.Z,
		hi.X, lo.Y, lo.Z, hi.X, hi.Y, lo.Z,
		hi.X, lo.Y, hi.Z, hi.X, hi.Y, hi.Z,
		lo.X, lo.Y, hi.Z, lo.X, hi.Y, hi.Z,
	}
}
