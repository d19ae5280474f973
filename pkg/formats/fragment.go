package formats

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// Fragment document errors.
var (
	ErrInvalidVertex = errors.New("invalid vertex")
	ErrInvalidFace   = errors.New("invalid face")
	ErrInvalidWeight = errors.New("invalid vertex weight")
)

// Document is a named mesh fragment, the YAML form handed over by the
// modeling-tool exporter.
type Document struct {
	Name     string
	Fragment *mesh.Fragment
}

// fragmentDoc is the on-disk layout.
//
//	name: tread
//	vertices:
//	  - [0, 0, 0]
//	faces:
//	  - [0, 1, 2]
//	groups:
//	  edge_left:
//	    - [0, 1]
type fragmentDoc struct {
	Name     string                 `yaml:"name,omitempty"`
	Vertices []flow[float32]        `yaml:"vertices"`
	Faces    []flow[uint32]         `yaml:"faces,omitempty"`
	Groups   map[string][]weightDoc `yaml:"groups,omitempty"`
}

// flow is a sequence written on a single line.
type flow[T any] []T

// MarshalYAML implements yaml.Marshaler.
func (s flow[T]) MarshalYAML() (interface{}, error) {
	var n yaml.Node
	if err := n.Encode([]T(s)); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return &n, nil
}

// weightDoc is a group entry written as [index, weight].
type weightDoc mesh.VertexWeight

// MarshalYAML implements yaml.Marshaler.
func (w weightDoc) MarshalYAML() (interface{}, error) {
	var idx, weight yaml.Node
	if err := idx.Encode(w.Index); err != nil {
		return nil, err
	}
	if err := weight.Encode(w.Weight); err != nil {
		return nil, err
	}
	return &yaml.Node{
		Kind:    yaml.SequenceNode,
		Style:   yaml.FlowStyle,
		Content: []*yaml.Node{&idx, &weight},
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *weightDoc) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
		return errors.Wrapf(ErrInvalidWeight, "line %d: want [index, weight]", value.Line)
	}
	if err := value.Content[0].Decode(&w.Index); err != nil {
		return errors.Wrapf(ErrInvalidWeight, "line %d: index: %v", value.Line, err)
	}
	if err := value.Content[1].Decode(&w.Weight); err != nil {
		return errors.Wrapf(ErrInvalidWeight, "line %d: weight: %v", value.Line, err)
	}
	return nil
}

// ParseFragment parses a fragment document. Polygon faces are split into
// triangle fans and the result is validated.
func ParseFragment(data []byte) (*Document, error) {
	var doc fragmentDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding fragment")
	}

	f := &mesh.Fragment{
		Points: make(mesh.PointSet, len(doc.Vertices)),
		Groups: make(map[string]mesh.VertexGroup, len(doc.Groups)),
	}

	for i, v := range doc.Vertices {
		if len(v) != 3 {
			return nil, errors.Wrapf(ErrInvalidVertex, "vertex %d has %d components", i, len(v))
		}
		f.Points[i] = mesh.Point{X: v[0], Y: v[1], Z: v[2]}
	}

	for i, face := range doc.Faces {
		tris, err := mesh.TriangulateFan(face)
		if err != nil {
			return nil, fmt.Errorf("%w: face %d: %w", ErrInvalidFace, i, err)
		}
		f.Triangles = append(f.Triangles, tris...)
	}

	for name, entries := range doc.Groups {
		g := make(mesh.VertexGroup, len(entries))
		for i, e := range entries {
			g[i] = mesh.VertexWeight(e)
		}
		f.Groups[name] = g
	}

	if err := f.Validate(); err != nil {
		return nil, errors.Wrapf(err, "fragment %q", doc.Name)
	}

	return &Document{Name: doc.Name, Fragment: f}, nil
}

// LoadFragment reads and parses a fragment document from disk.
func LoadFragment(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseFragment(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return doc, nil
}

// MarshalFragment encodes a fragment as a document.
func MarshalFragment(name string, f *mesh.Fragment) ([]byte, error) {
	doc := fragmentDoc{
		Name:     name,
		Vertices: make([]flow[float32], len(f.Points)),
		Faces:    make([]flow[uint32], len(f.Triangles)),
	}
	for i, p := range f.Points {
		doc.Vertices[i] = flow[float32]{p.X, p.Y, p.Z}
	}
	for i, tri := range f.Triangles {
		doc.Faces[i] = flow[uint32]{tri[0], tri[1], tri[2]}
	}
	if len(f.Groups) > 0 {
		doc.Groups = make(map[string][]weightDoc, len(f.Groups))
		for name, g := range f.Groups {
			entries := make([]weightDoc, len(g))
			for i, w := range g {
				entries[i] = weightDoc(w)
			}
			doc.Groups[name] = entries
		}
	}

	return yaml.Marshal(&doc)
}
