package mesh

import (
	"fmt"
	gomath "math"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshbridge/pkg/math"
)

// Clone returns a deep copy of the fragment.
func (f *Fragment) Clone() *Fragment {
	out := &Fragment{
		Points:    append(PointSet(nil), f.Points...),
		Triangles: append([]Triangle(nil), f.Triangles...),
		Groups:    make(map[string]VertexGroup, len(f.Groups)),
	}
	for name, g := range f.Groups {
		out.Groups[name] = append(VertexGroup(nil), g...)
	}
	return out
}

// Validate reports every triangle or group entry that points outside the
// fragment's point set.
func (f *Fragment) Validate() error {
	n := uint32(len(f.Points))

	var err error
	for i, tri := range f.Triangles {
		for _, idx := range tri {
			if idx >= n {
				err = multierr.Append(err, fmt.Errorf("%w: triangle %d references vertex %d of %d",
					ErrIndexOutOfRange, i, idx, n))
				break
			}
		}
	}
	for _, name := range f.GroupNames() {
		for _, w := range f.Groups[name] {
			if w.Index >= n {
				err = multierr.Append(err, fmt.Errorf("%w: group %q references vertex %d of %d",
					ErrIndexOutOfRange, name, w.Index, n))
			}
		}
	}
	return err
}

// Extend returns a new fragment holding a followed by b. Indices of b are
// shifted past a's points and groups sharing a name are concatenated, a's
// entries first. The returned offset is the shift applied to b.
func Extend(a, b *Fragment) (*Fragment, uint32) {
	points, offset := Concatenate(a.Points, b.Points)

	out := &Fragment{
		Points:    points,
		Triangles: make([]Triangle, 0, len(a.Triangles)+len(b.Triangles)),
		Groups:    make(map[string]VertexGroup, len(a.Groups)+len(b.Groups)),
	}
	out.Triangles = append(out.Triangles, a.Triangles...)
	for _, tri := range b.Triangles {
		out.Triangles = append(out.Triangles, Triangle{tri[0] + offset, tri[1] + offset, tri[2] + offset})
	}

	for name, g := range a.Groups {
		out.Groups[name] = append(VertexGroup(nil), g...)
	}
	for name, g := range b.Groups {
		out.Groups[name] = append(out.Groups[name], g.Offset(offset)...)
	}

	return out, offset
}

// Bounds returns the minimum and maximum corners and the dimensions of the
// fragment. An empty fragment yields zero vectors.
func (f *Fragment) Bounds() (lo, hi, dim Point) {
	if len(f.Points) == 0 {
		return Point{}, Point{}, Point{}
	}

	lo, hi = f.Points[0], f.Points[0]
	for _, p := range f.Points[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, hi.Sub(lo)
}

// Transform returns a copy of the fragment with every point multiplied by m.
// Winding is kept as is, so mirroring transforms flip the normals.
func (f *Fragment) Transform(m math.Mat4) *Fragment {
	out := f.Clone()
	for i, p := range out.Points {
		out.Points[i] = m.TransformVec3(p)
	}
	return out
}

// Translate returns a copy of the fragment moved by offset.
func (f *Fragment) Translate(offset Point) *Fragment {
	return f.Transform(math.Translate(offset.X, offset.Y, offset.Z))
}

// Scale returns a copy of the fragment scaled uniformly about the origin.
func (f *Fragment) Scale(factor float32) *Fragment {
	return f.Transform(math.Scale(factor, factor, factor))
}

// Bend returns a copy of the fragment wrapped around the X axis: z is taken
// as the radius and y*amount as the angle.
func (f *Fragment) Bend(amount float32) *Fragment {
	out := f.Clone()
	for i, p := range out.Points {
		s, c := gomath.Sincos(float64(p.Y * amount))
		out.Points[i].Y = float32(s) * p.Z
		out.Points[i].Z = float32(c) * p.Z
	}
	return out
}

// FaceNormal returns the unit normal of tri, following its winding.
// Degenerate triangles yield the zero vector.
func FaceNormal(points PointSet, tri Triangle) Point {
	v0 := points[tri[0]]
	e1 := points[tri[1]].Sub(v0)
	e2 := points[tri[2]].Sub(v0)
	return e1.Cross(e2).Normalize()
}

// MergeByDistance welds points closer than distance to an earlier point.
// Triangles that collapse are dropped and groups are remapped, keeping the
// first entry when two members weld together. This is O(n²). The fragment
// must be valid.
func (f *Fragment) MergeByDistance(distance float32) *Fragment {
	sqErr := distance * distance
	remap := make([]uint32, len(f.Points))

	var points PointSet
	for i, p := range f.Points {
		merged := false
		for j, existing := range points {
			if DistanceSquared(p, existing) < sqErr {
				remap[i] = uint32(j)
				merged = true
				break
			}
		}
		if !merged {
			points = append(points, p)
			remap[i] = uint32(len(points) - 1)
		}
	}

	out := &Fragment{
		Points: points,
		Groups: make(map[string]VertexGroup, len(f.Groups)),
	}
	for _, tri := range f.Triangles {
		t := Triangle{remap[tri[0]], remap[tri[1]], remap[tri[2]]}
		if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			continue
		}
		out.Triangles = append(out.Triangles, t)
	}
	for name, g := range f.Groups {
		seen := make(map[uint32]bool, len(g))
		var ng VertexGroup
		for _, w := range g {
			idx := remap[w.Index]
			if seen[idx] {
				continue
			}
			seen[idx] = true
			ng = append(ng, VertexWeight{Index: idx, Weight: w.Weight})
		}
		out.Groups[name] = ng
	}
	return out
}
