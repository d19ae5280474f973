package bridge

import (
	"errors"
	gomath "math"
	"math/rand/v2"
	"reflect"
	"sort"
	"sync"
	"testing"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// line returns n points starting at origin, spaced by step.
func line(origin, step mesh.Point, n int) mesh.PointSet {
	out := make(mesh.PointSet, n)
	for i := range out {
		out[i] = origin.Add(step.Scale(float32(i)))
	}
	return out
}

// seq returns the loop {from, from+1, ..., from+n-1}.
func seq(from, n int) mesh.Loop {
	out := make(mesh.Loop, n)
	for i := range out {
		out[i] = uint32(from + i)
	}
	return out
}

// combine concatenates two point sets and returns the loops over them.
func combine(a, b mesh.PointSet) (mesh.PointSet, mesh.Loop, mesh.Loop) {
	points, offset := mesh.Concatenate(a, b)
	return points, seq(0, len(a)), mesh.OffsetIndices(seq(0, len(b)), offset)
}

func TestBridgeEqualStraightLoops(t *testing.T) {
	points, a, b := combine(
		mesh.PointSet{{X: 0}, {X: 1}, {X: 2}},
		mesh.PointSet{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
	)

	got, err := Bridge(points, a, b)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}

	want := []mesh.Triangle{{0, 1, 3}, {1, 2, 3}, {2, 4, 3}, {2, 5, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bridge() = %v, want %v", got, want)
	}
	checkStrip(t, a, b, got)
}

func TestBridgeMismatchedLengths(t *testing.T) {
	points, a, b := combine(
		line(mesh.Point{}, mesh.Point{X: 0.1}, 7),
		line(mesh.Point{Z: 1}, mesh.Point{X: 0.3}, 3),
	)

	got, err := Bridge(points, a, b)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}

	want := []mesh.Triangle{
		{0, 1, 7}, {1, 2, 7}, {2, 3, 7}, {3, 4, 7},
		{4, 8, 7}, {4, 9, 8},
		// b is used up: a drains against its last vertex
		{4, 5, 9}, {5, 6, 9},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bridge() = %v, want %v", got, want)
	}
	checkStrip(t, a, b, got)
}

func TestBridgeDrainsLongerSecondLoop(t *testing.T) {
	points, a, b := combine(
		line(mesh.Point{}, mesh.Point{X: 1}, 2),
		line(mesh.Point{Y: 1}, mesh.Point{X: 0.25}, 5),
	)

	got, err := Bridge(points, a, b)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}

	// a has a single vertex left, so it is consumed first and b fans off it.
	want := []mesh.Triangle{{0, 1, 2}, {1, 3, 2}, {1, 4, 3}, {1, 5, 4}, {1, 6, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bridge() = %v, want %v", got, want)
	}
	checkStrip(t, a, b, got)
}

func TestBridgeMinimalLoops(t *testing.T) {
	points, a, b := combine(
		mesh.PointSet{{X: 0}, {X: 1}},
		mesh.PointSet{{Y: 1}, {X: 1, Y: 1}},
	)

	got, err := Bridge(points, a, b)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}
	if want := []mesh.Triangle{{0, 1, 2}, {1, 3, 2}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Bridge() = %v, want %v", got, want)
	}
}

func TestBridgeInvalidLoops(t *testing.T) {
	points := line(mesh.Point{}, mesh.Point{X: 1}, 6)

	tests := []struct {
		name   string
		a, b   mesh.Loop
		errors int
	}{
		{"a has one vertex", mesh.Loop{0}, mesh.Loop{3, 4, 5}, 1},
		{"b is empty", mesh.Loop{0, 1, 2}, mesh.Loop{}, 1},
		{"index out of range", mesh.Loop{0, 1, 2}, mesh.Loop{3, 4, 6}, 1},
		{"both invalid", mesh.Loop{0}, mesh.Loop{9, 4}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bridge(points, tt.a, tt.b)
			if !errors.Is(err, ErrInvalidLoop) {
				t.Fatalf("expected ErrInvalidLoop, got %v", err)
			}
			if got != nil {
				t.Errorf("expected no triangles, got %v", got)
			}
			if n := len(multierr.Errors(err)); n != tt.errors {
				t.Errorf("expected %d errors, got %d: %v", tt.errors, n, err)
			}
		})
	}
}

func TestBridgeTieAdvancesSecondLoop(t *testing.T) {
	a := line(mesh.Point{}, mesh.Point{X: 1}, 4)

	tests := []struct {
		name  string
		b     mesh.PointSet
		first mesh.Triangle
	}{
		{
			// a[1] is exactly halfway between b[1] and b[2]
			name:  "tie",
			b:     mesh.PointSet{{Y: 1}, {X: 0.5, Y: 1}, {X: 1.5, Y: 1}, {X: 2.5, Y: 1}},
			first: mesh.Triangle{0, 5, 4},
		},
		{
			name:  "current diagonal shorter",
			b:     mesh.PointSet{{Y: 1}, {X: 0.5, Y: 1}, {X: 1.75, Y: 1}, {X: 2.5, Y: 1}},
			first: mesh.Triangle{0, 1, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, la, lb := combine(a, tt.b)
			got, err := Bridge(points, la, lb)
			if err != nil {
				t.Fatalf("Bridge: %v", err)
			}
			if got[0] != tt.first {
				t.Errorf("first triangle = %v, want %v", got[0], tt.first)
			}
			checkStrip(t, la, lb, got)
		})
	}
}

func TestBridgeIdenticalLoops(t *testing.T) {
	pts := line(mesh.Point{}, mesh.Point{X: 1}, 4)
	points, a, b := combine(pts, pts)

	got, err := Bridge(points, a, b)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}

	want := []mesh.Triangle{{0, 1, 4}, {1, 5, 4}, {1, 2, 5}, {2, 3, 5}, {3, 6, 5}, {3, 7, 6}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bridge() = %v, want %v", got, want)
	}
	for _, tri := range got {
		if n := mesh.FaceNormal(points, tri); n != (mesh.Point{}) {
			t.Errorf("triangle %v should be degenerate, normal %v", tri, n)
		}
	}
	checkStrip(t, a, b, got)
}

func TestBridgeProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for run := 0; run < 200; run++ {
		na := 2 + rng.IntN(20)
		nb := 2 + rng.IntN(20)

		pa := make(mesh.PointSet, na)
		x := float32(0)
		for i := range pa {
			x += 0.05 + rng.Float32()
			pa[i] = mesh.Point{X: x, Z: rng.Float32() * 0.1}
		}
		pb := make(mesh.PointSet, nb)
		x = 0
		for i := range pb {
			x += 0.05 + rng.Float32()
			pb[i] = mesh.Point{X: x, Y: 1 + rng.Float32()*0.1}
		}

		points, a, b := combine(pa, pb)
		first, err := Bridge(points, a, b)
		if err != nil {
			t.Fatalf("run %d: Bridge: %v", run, err)
		}
		second, _ := Bridge(points, a, b)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("run %d: output is not deterministic", run)
		}
		checkStrip(t, a, b, first)
	}
}

func TestBridgeConcurrent(t *testing.T) {
	points, a, b := combine(
		line(mesh.Point{}, mesh.Point{X: 0.1}, 50),
		line(mesh.Point{Z: 1}, mesh.Point{X: 0.13}, 37),
	)
	want, err := Bridge(points, a, b)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}

	var wg sync.WaitGroup
	results := make([][]mesh.Triangle, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Bridge(points, a, b)
		}()
	}
	wg.Wait()

	for i, got := range results {
		if !reflect.DeepEqual(got, want) {
			t.Errorf("goroutine %d got a different strip", i)
		}
	}
}

func TestBridgeOrientation(t *testing.T) {
	points, a, b := combine(
		line(mesh.Point{}, mesh.Point{X: 1}, 4),
		line(mesh.Point{Y: 1}, mesh.Point{X: 1.2}, 3),
	)
	reversed := b.Reverse()

	forward, err := Bridge(points, a, b)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}

	t.Run("ignore", func(t *testing.T) {
		got, err := BridgeWithOptions(points, a, reversed, Options{Orientation: OrientIgnore})
		if err != nil {
			t.Fatalf("BridgeWithOptions: %v", err)
		}
		if len(got) != len(a)+len(b)-2 {
			t.Errorf("got %d triangles, want %d", len(got), len(a)+len(b)-2)
		}
	})

	t.Run("check", func(t *testing.T) {
		_, err := BridgeWithOptions(points, a, reversed, Options{Orientation: OrientCheck})
		if !errors.Is(err, ErrOpposedLoops) {
			t.Errorf("expected ErrOpposedLoops, got %v", err)
		}
		if _, err := BridgeWithOptions(points, a, b, Options{Orientation: OrientCheck}); err != nil {
			t.Errorf("aligned loops should pass the check: %v", err)
		}
	})

	t.Run("correct", func(t *testing.T) {
		got, err := BridgeWithOptions(points, a, reversed, Options{Orientation: OrientCorrect})
		if err != nil {
			t.Fatalf("BridgeWithOptions: %v", err)
		}
		if !reflect.DeepEqual(got, forward) {
			t.Errorf("corrected bridge = %v, want %v", got, forward)
		}
	})
}

// ring returns n points on a circle of radius r around the X axis.
func ring(r float32, n int) mesh.PointSet {
	out := make(mesh.PointSet, n)
	for i := range out {
		s, c := gomath.Sincos(2 * gomath.Pi * float64(i) / float64(n))
		out[i] = mesh.Point{Y: r * float32(s), Z: r * float32(c)}
	}
	return out
}

func radialLoop(t *testing.T, points mesh.PointSet, from, n int) mesh.Loop {
	t.Helper()
	g := make(mesh.VertexGroup, n)
	for i := range g {
		g[i] = mesh.VertexWeight{Index: uint32(from + i), Weight: 1}
	}
	sorted, err := mesh.SortRadial(points, g)
	if err != nil {
		t.Fatalf("SortRadial: %v", err)
	}
	return sorted.Indices()
}

func TestBridgeOrientationClosedLoops(t *testing.T) {
	points, _ := mesh.Concatenate(ring(2, 8), ring(1, 6))
	a := radialLoop(t, points, 0, 8)
	b := radialLoop(t, points, 8, 6)
	reversed := b.Reverse()

	forward, err := Bridge(points, a, b)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}

	if _, err := BridgeWithOptions(points, a, b, Options{Orientation: OrientCheck}); err != nil {
		t.Errorf("rings sorted the same way should pass the check: %v", err)
	}
	if _, err := BridgeWithOptions(points, a, reversed, Options{Orientation: OrientCheck}); !errors.Is(err, ErrOpposedLoops) {
		t.Errorf("expected ErrOpposedLoops, got %v", err)
	}

	got, err := BridgeWithOptions(points, a, reversed, Options{Orientation: OrientCorrect})
	if err != nil {
		t.Fatalf("BridgeWithOptions: %v", err)
	}
	if !reflect.DeepEqual(got, forward) {
		t.Errorf("corrected bridge = %v, want %v", got, forward)
	}
}

func TestBridgeOrientationTriangles(t *testing.T) {
	points := mesh.PointSet{
		{Y: 1}, {Z: 1}, {Y: -1},
		{Y: 1}, {Z: -1}, {Y: -1},
	}
	a := mesh.Loop{0, 1, 2, 0}
	b := mesh.Loop{3, 4, 5, 3}

	if _, err := BridgeWithOptions(points, a, b, Options{Orientation: OrientCheck}); !errors.Is(err, ErrOpposedLoops) {
		t.Errorf("expected ErrOpposedLoops, got %v", err)
	}
}

func TestParseOrientation(t *testing.T) {
	for _, o := range []Orientation{OrientIgnore, OrientCheck, OrientCorrect} {
		got, err := ParseOrientation(o.String())
		if err != nil || got != o {
			t.Errorf("ParseOrientation(%q) = %v, %v", o.String(), got, err)
		}
	}
	if _, err := ParseOrientation("sideways"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

// checkStrip asserts the count, coverage and uniqueness properties of a
// bridge between a and b.
func checkStrip(t *testing.T, a, b mesh.Loop, tris []mesh.Triangle) {
	t.Helper()

	if want := len(a) + len(b) - 2; len(tris) != want {
		t.Errorf("got %d triangles, want %d", len(tris), want)
	}

	used := make(map[uint32]int)
	seen := make(map[[3]uint32]bool)
	for _, tri := range tris {
		for _, idx := range tri {
			used[idx]++
		}
		key := [3]uint32(tri)
		sort.Slice(key[:], func(i, j int) bool { return key[i] < key[j] })
		if seen[key] {
			t.Errorf("duplicate triangle %v", tri)
		}
		seen[key] = true
	}

	for _, loop := range []mesh.Loop{a, b} {
		for _, idx := range loop[1:] {
			if used[idx] == 0 {
				t.Errorf("vertex %d is not covered", idx)
			}
		}
	}

	// Consecutive triangles share an edge.
	for k := 1; k < len(tris); k++ {
		shared := 0
		for _, p := range tris[k-1] {
			for _, q := range tris[k] {
				if p == q {
					shared++
				}
			}
		}
		if shared != 2 {
			t.Errorf("triangles %v and %v share %d vertices, want 2", tris[k-1], tris[k], shared)
		}
	}
}
