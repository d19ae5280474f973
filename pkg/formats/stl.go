package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// STL format errors.
var (
	ErrTruncatedSTL     = errors.New("truncated STL data")
	ErrSTLCountMismatch = errors.New("STL triangle count does not match data size")
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal + 3 vertices (12 float32) + uint16 attribute
)

// stlHeader fills the 80-byte header. It must not start with "solid",
// which readers take as the ASCII variant.
var stlHeader = [stlHeaderSize]byte{'m', 'e', 's', 'h', 'b', 'r', 'i', 'd', 'g', 'e'}

// EncodeSTL encodes the fragment's triangles as binary STL. Normals are
// computed from the winding; groups are not stored.
func EncodeSTL(f *mesh.Fragment) []byte {
	var buf bytes.Buffer
	buf.Grow(stlHeaderSize + 4 + stlTriangleSize*len(f.Triangles))

	buf.Write(stlHeader[:])
	binary.Write(&buf, binary.LittleEndian, uint32(len(f.Triangles)))

	for _, tri := range f.Triangles {
		n := mesh.FaceNormal(f.Points, tri)
		rec := [12]float32{n.X, n.Y, n.Z}
		for k, idx := range tri {
			p := f.Points[idx]
			rec[3+k*3] = p.X
			rec[4+k*3] = p.Y
			rec[5+k*3] = p.Z
		}
		binary.Write(&buf, binary.LittleEndian, rec)
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}

	return buf.Bytes()
}

// ParseSTL parses binary STL data into a triangle soup: every triangle gets
// its own three points. Use MergeByDistance to weld shared corners.
func ParseSTL(data []byte) (*mesh.Fragment, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, ErrTruncatedSTL
	}

	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	body := data[stlHeaderSize+4:]
	if uint64(len(body)) != uint64(count)*stlTriangleSize {
		return nil, fmt.Errorf("%w: %d triangles, %d bytes", ErrSTLCountMismatch, count, len(body))
	}

	f := &mesh.Fragment{
		Points:    make(mesh.PointSet, 0, count*3),
		Triangles: make([]mesh.Triangle, 0, count),
		Groups:    map[string]mesh.VertexGroup{},
	}

	for i := uint32(0); i < count; i++ {
		// The trailing attribute byte count is ignored.
		chunk := body[int(i)*stlTriangleSize:][:stlTriangleSize-2]

		var rec [12]float32
		if _, err := binary.Decode(chunk, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("triangle %d: %w", i, ErrTruncatedSTL)
		}

		base := uint32(len(f.Points))
		for k := 0; k < 3; k++ {
			f.Points = append(f.Points, mesh.Point{X: rec[3+k*3], Y: rec[4+k*3], Z: rec[5+k*3]})
		}
		f.Triangles = append(f.Triangles, mesh.Triangle{base, base + 1, base + 2})
	}

	return f, nil
}
