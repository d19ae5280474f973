package bridge

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// GroupPair names the boundary group to use on each fragment. A swapped
// pair bridges from b's loop to a's, which flips the strip's winding.
type GroupPair struct {
	A    string
	B    string
	Swap bool
}

// String returns the pair as "a" or "a:b", prefixed with "~" when swapped.
func (p GroupPair) String() string {
	s := p.A
	if p.A != p.B {
		s += ":" + p.B
	}
	if p.Swap {
		s = "~" + s
	}
	return s
}

// ParseGroupPair reads the form written by GroupPair.String.
func ParseGroupPair(s string) (GroupPair, error) {
	swap := strings.HasPrefix(s, "~")
	a, b, found := strings.Cut(strings.TrimPrefix(s, "~"), ":")
	if !found {
		b = a
	}
	if a == "" || b == "" {
		return GroupPair{}, fmt.Errorf("bad group %q, want name, a:b or ~a:b", s)
	}
	return GroupPair{A: a, B: b, Swap: swap}, nil
}

// Join merges b into a and bridges each named group of a to the group of
// the same name in b. See JoinPairs.
func Join(a, b *mesh.Fragment, opts Options, groups ...string) (*mesh.Combined, error) {
	pairs := make([]GroupPair, len(groups))
	for i, g := range groups {
		pairs[i] = GroupPair{A: g, B: g}
	}
	return JoinPairs(a, b, opts, pairs...)
}

// JoinPairs merges b into a and bridges each pair's loop on a to its loop on
// b, or the other way round for swapped pairs. Bridge triangles follow the
// fragments' own triangles, in pair order. Nothing is returned unless every
// pair bridges; a and b are not modified.
func JoinPairs(a, b *mesh.Fragment, opts Options, pairs ...GroupPair) (*mesh.Combined, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("fragment a: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("fragment b: %w", err)
	}

	// Resolve every loop before doing any work.
	loopsA := make([]mesh.Loop, len(pairs))
	loopsB := make([]mesh.Loop, len(pairs))
	for i, p := range pairs {
		la, err := a.Loop(p.A)
		if err != nil {
			return nil, fmt.Errorf("fragment a: %w", err)
		}
		lb, err := b.Loop(p.B)
		if err != nil {
			return nil, fmt.Errorf("fragment b: %w", err)
		}
		loopsA[i], loopsB[i] = la, lb
	}

	merged, offset := mesh.Extend(a, b)

	results := make([][]mesh.Triangle, len(pairs))
	var g errgroup.Group
	for i := range pairs {
		g.Go(func() error {
			la, lb := loopsA[i], mesh.OffsetIndices(loopsB[i], offset)
			if pairs[i].Swap {
				la, lb = lb, la
			}
			tris, err := BridgeWithOptions(merged.Points, la, lb, opts)
			if err != nil {
				return fmt.Errorf("group %s: %w", pairs[i], err)
			}
			results[i] = tris
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &mesh.Combined{
		Fragment: *merged,
		Offset:   offset,
		Bridges:  make(map[string][]mesh.Triangle, len(pairs)),
	}
	for i, p := range pairs {
		out.Triangles = append(out.Triangles, results[i]...)
		out.Bridges[p.String()] = append(out.Bridges[p.String()], results[i]...)
	}
	return out, nil
}
