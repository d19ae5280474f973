package mesh

import (
	"errors"
	gomath "math"
	"reflect"
	"testing"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshbridge/pkg/math"
)

// makeStrip returns a fragment of n points along X with an "edge" group
// covering all of them and a triangle over the first three.
func makeStrip(n int, y float32) *Fragment {
	f := &Fragment{Groups: map[string]VertexGroup{}}
	var edge VertexGroup
	for i := 0; i < n; i++ {
		f.Points = append(f.Points, Point{X: float32(i), Y: y})
		edge = append(edge, VertexWeight{Index: uint32(i), Weight: 1})
	}
	if n >= 3 {
		f.Triangles = []Triangle{{0, 1, 2}}
	}
	f.Groups["edge"] = edge
	return f
}

func TestExtendEmpty(t *testing.T) {
	blank := &Fragment{}
	strip := makeStrip(3, 0)

	out, offset := Extend(blank, strip)
	if offset != 0 {
		t.Errorf("offset = %d, want 0", offset)
	}
	if want := []Triangle{{0, 1, 2}}; !reflect.DeepEqual(out.Triangles, want) {
		t.Errorf("triangles = %v, want %v", out.Triangles, want)
	}
}

func TestExtend(t *testing.T) {
	a := makeStrip(3, 0)
	b := makeStrip(3, 1)
	b.Groups["tip"] = VertexGroup{{Index: 2, Weight: 0.5}}

	out, offset := Extend(a, b)

	if offset != 3 {
		t.Errorf("offset = %d, want 3", offset)
	}
	if len(out.Points) != 6 {
		t.Errorf("points = %d, want 6", len(out.Points))
	}
	if want := []Triangle{{0, 1, 2}, {3, 4, 5}}; !reflect.DeepEqual(out.Triangles, want) {
		t.Errorf("triangles = %v, want %v", out.Triangles, want)
	}

	edge, err := out.Loop("edge")
	if err != nil {
		t.Fatalf("Loop(edge): %v", err)
	}
	if want := (Loop{0, 1, 2, 3, 4, 5}); !reflect.DeepEqual(edge, want) {
		t.Errorf("merged edge = %v, want %v", edge, want)
	}
	if want := (VertexGroup{{Index: 5, Weight: 0.5}}); !reflect.DeepEqual(out.Groups["tip"], want) {
		t.Errorf("tip group = %v, want %v", out.Groups["tip"], want)
	}

	// Inputs stay untouched
	if len(a.Groups["edge"]) != 3 || b.Triangles[0] != (Triangle{0, 1, 2}) {
		t.Error("Extend modified its inputs")
	}
}

func TestFragmentLoopMissing(t *testing.T) {
	f := makeStrip(3, 0)
	_, err := f.Loop("edge_right")
	if !errors.Is(err, ErrMissingGroup) {
		t.Errorf("expected ErrMissingGroup, got %v", err)
	}
}

func TestFragmentValidate(t *testing.T) {
	f := makeStrip(3, 0)
	if err := f.Validate(); err != nil {
		t.Fatalf("valid fragment: %v", err)
	}

	f.Triangles = append(f.Triangles, Triangle{0, 1, 7})
	f.Groups["bad"] = VertexGroup{{Index: 9}}

	err := f.Validate()
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("expected 2 combined errors, got %d: %v", n, err)
	}
}

func TestBounds(t *testing.T) {
	f := &Fragment{Points: PointSet{{X: -1, Y: 2, Z: 0}, {X: 3, Y: -2, Z: 1}, {X: 0, Y: 0, Z: 5}}}
	lo, hi, dim := f.Bounds()

	if want := (Point{X: -1, Y: -2, Z: 0}); lo != want {
		t.Errorf("min = %v, want %v", lo, want)
	}
	if want := (Point{X: 3, Y: 2, Z: 5}); hi != want {
		t.Errorf("max = %v, want %v", hi, want)
	}
	if want := (Point{X: 4, Y: 4, Z: 5}); dim != want {
		t.Errorf("dim = %v, want %v", dim, want)
	}

	lo, hi, dim = (&Fragment{}).Bounds()
	if lo != (Point{}) || hi != (Point{}) || dim != (Point{}) {
		t.Error("empty fragment should have zero bounds")
	}
}

func TestTranslate(t *testing.T) {
	f := makeStrip(2, 0)
	moved := f.Translate(Point{X: 1, Z: 2})

	if want := (Point{X: 2, Z: 2}); moved.Points[1] != want {
		t.Errorf("moved point = %v, want %v", moved.Points[1], want)
	}
	if f.Points[1] != (Point{X: 1}) {
		t.Error("Translate modified its receiver")
	}
}

func TestScaleAndTransform(t *testing.T) {
	f := makeStrip(2, 1)

	scaled := f.Scale(2)
	if want := (Point{X: 2, Y: 2}); scaled.Points[1] != want {
		t.Errorf("scaled point = %v, want %v", scaled.Points[1], want)
	}

	// Quarter turn about X takes +Y to +Z
	turned := f.Transform(math.RotateX(gomath.Pi / 2))
	if p := turned.Points[0]; !near(p.Y, 0) || !near(p.Z, 1) {
		t.Errorf("turned point = %v, want (0, 0, 1)", p)
	}
	if len(turned.Triangles) != len(f.Triangles) || len(turned.Groups) != len(f.Groups) {
		t.Error("Transform should keep topology and groups")
	}
}

func TestBend(t *testing.T) {
	// Quarter turn: y=1 with amount pi/2 puts a point of radius 2 on the Y axis.
	f := &Fragment{Points: PointSet{{X: 5, Y: 1, Z: 2}, {X: 0, Y: 0, Z: 3}}}
	bent := f.Bend(gomath.Pi / 2)

	p := bent.Points[0]
	if p.X != 5 || !near(p.Y, 2) || !near(p.Z, 0) {
		t.Errorf("bent point = %v, want (5, 2, 0)", p)
	}
	if q := bent.Points[1]; q != (Point{Z: 3}) {
		t.Errorf("point at angle 0 = %v, want (0, 0, 3)", q)
	}
}

func TestFaceNormal(t *testing.T) {
	points := PointSet{{}, {X: 2}, {Y: 3}, {X: 4}}

	if got, want := FaceNormal(points, Triangle{0, 1, 2}), (Point{Z: 1}); got != want {
		t.Errorf("FaceNormal() = %v, want %v", got, want)
	}
	if got, want := FaceNormal(points, Triangle{0, 2, 1}), (Point{Z: -1}); got != want {
		t.Errorf("reversed FaceNormal() = %v, want %v", got, want)
	}
	if got := FaceNormal(points, Triangle{0, 1, 3}); got != (Point{}) {
		t.Errorf("degenerate FaceNormal() = %v, want zero", got)
	}
}

func TestMergeByDistance(t *testing.T) {
	f := &Fragment{
		Points: PointSet{
			{X: 0}, {X: 1}, {X: 1.001}, {X: 2}, {Y: 1},
		},
		Triangles: []Triangle{
			{0, 1, 4},
			{1, 2, 4}, // collapses
			{2, 3, 4},
		},
		Groups: map[string]VertexGroup{
			"edge": {{Index: 0, Weight: 1}, {Index: 1, Weight: 1}, {Index: 2, Weight: 0.5}, {Index: 3, Weight: 1}},
		},
	}

	out := f.MergeByDistance(0.01)

	if len(out.Points) != 4 {
		t.Fatalf("points = %d, want 4", len(out.Points))
	}
	if want := []Triangle{{0, 1, 3}, {1, 2, 3}}; !reflect.DeepEqual(out.Triangles, want) {
		t.Errorf("triangles = %v, want %v", out.Triangles, want)
	}
	want := VertexGroup{{Index: 0, Weight: 1}, {Index: 1, Weight: 1}, {Index: 2, Weight: 1}}
	if !reflect.DeepEqual(out.Groups["edge"], want) {
		t.Errorf("edge = %v, want %v", out.Groups["edge"], want)
	}
}

func TestSortRadial(t *testing.T) {
	points := PointSet{
		{Z: 1},  // angle 0
		{Y: 1},  // angle pi/2
		{Z: -1}, // angle pi
		{Y: -1}, // angle -pi/2
	}
	g := VertexGroup{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}}

	got, err := SortRadial(points, g)
	if err != nil {
		t.Fatalf("SortRadial: %v", err)
	}
	if want := (Loop{2, 1, 0, 3, 2}); !reflect.DeepEqual(got.Indices(), want) {
		t.Errorf("SortRadial() = %v, want %v", got.Indices(), want)
	}
	if g[0].Index != 0 {
		t.Error("SortRadial modified its input")
	}

	if _, err := SortRadial(points, nil); !errors.Is(err, ErrEmptyGroup) {
		t.Errorf("expected ErrEmptyGroup, got %v", err)
	}
	if _, err := SortRadial(points, VertexGroup{{Index: 8}}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSortAlong(t *testing.T) {
	points := PointSet{{Y: 2}, {Y: -1}, {Y: 5, X: 9}, {Y: 0}}
	g := VertexGroup{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}}

	tests := []struct {
		name string
		axis Point
		want Loop
	}{
		{"increasing y", Point{Y: 1}, Loop{1, 3, 0, 2}},
		{"decreasing y", Point{Y: -1}, Loop{2, 0, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SortAlong(points, g, tt.axis)
			if err != nil {
				t.Fatalf("SortAlong: %v", err)
			}
			if !reflect.DeepEqual(got.Indices(), tt.want) {
				t.Errorf("SortAlong() = %v, want %v", got.Indices(), tt.want)
			}
		})
	}

	if _, err := SortAlong(points, nil, Point{Y: 1}); !errors.Is(err, ErrEmptyGroup) {
		t.Errorf("expected ErrEmptyGroup, got %v", err)
	}
}

func near(a, b float32) bool {
	d := a - b
	return d > -1e-5 && d < 1e-5
}
