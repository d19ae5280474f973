package formats

import (
	"bytes"
	"fmt"

	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// EncodeOBJ writes the fragment as a single OBJ object. Face indices are
// 1-based as the format requires. Vertex weights are not representable and
// are left out.
func EncodeOBJ(name string, f *mesh.Fragment) []byte {
	var buf bytes.Buffer

	if name != "" {
		fmt.Fprintf(&buf, "o %s\n", name)
	}
	for _, p := range f.Points {
		fmt.Fprintf(&buf, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	for _, tri := range f.Triangles {
		fmt.Fprintf(&buf, "f %d %d %d\n", tri[0]+1, tri[1]+1, tri[2]+1)
	}

	return buf.Bytes()
}
