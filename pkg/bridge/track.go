package bridge

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/meshbridge/pkg/math"
	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// Boundary groups every track surface must carry.
const (
	TrackLeftGroup  = "edge_left"
	TrackRightGroup = "edge_right"
)

// DefaultTrackMergeDistance welds the seams between copies and the walls.
const DefaultTrackMergeDistance = 0.01

// ErrInvalidTrack is returned for track options that cannot describe a belt.
var ErrInvalidTrack = errors.New("invalid track")

// TrackShape is the path a track follows.
type TrackShape int

const (
	TrackLoop     TrackShape = iota // Closed band around the X axis
	TrackStraight                   // Unrolled along Y
)

// String returns the shape name.
func (s TrackShape) String() string {
	switch s {
	case TrackLoop:
		return "loop"
	case TrackStraight:
		return "straight"
	default:
		return fmt.Sprintf("TrackShape(%d)", int(s))
	}
}

// TrackOptions describes a belt built from an outer and an inner surface.
type TrackOptions struct {
	Shape TrackShape

	// Length is the circumference of a loop or the length of a straight
	// track. Zero takes the outer surface's Y extent times OuterRepeats.
	Length float32

	// Thickness separates the outer and inner surfaces.
	Thickness float32

	OuterRepeats int
	InnerRepeats int

	// MergeDistance welds the result. Zero means DefaultTrackMergeDistance.
	MergeDistance float32

	Orientation Orientation
}

// Track builds a belt. Each surface is stretched along Y to its pitch,
// Length/repeats, and repeated that many times; the outer surface sits
// Thickness/2 above Z=0 and the inner one below it. A loop is then bent
// around the X axis. Both surfaces need edge_left and edge_right groups:
// the right sidewall is bridged outer to inner and the left one inner to
// outer, so both walls face outwards. The result is welded.
//
// Surfaces are authored facing +Z for the outer and -Z for the inner one,
// spanning the track width along X.
func Track(outer, inner *mesh.Fragment, opts TrackOptions) (*mesh.Fragment, error) {
	if opts.OuterRepeats < 1 || opts.InnerRepeats < 1 {
		return nil, fmt.Errorf("%w: repeats must be at least 1, got %d outer and %d inner",
			ErrInvalidTrack, opts.OuterRepeats, opts.InnerRepeats)
	}
	if opts.Thickness < 0 {
		return nil, fmt.Errorf("%w: negative thickness %g", ErrInvalidTrack, opts.Thickness)
	}

	length := opts.Length
	if length == 0 {
		_, _, dim := outer.Bounds()
		length = dim.Y * float32(opts.OuterRepeats)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: length %g", ErrInvalidTrack, length)
	}

	outerBelt, err := belt(outer, opts.OuterRepeats, length, opts.Thickness/2)
	if err != nil {
		return nil, fmt.Errorf("outer surface: %w", err)
	}
	innerBelt, err := belt(inner, opts.InnerRepeats, length, -opts.Thickness/2)
	if err != nil {
		return nil, fmt.Errorf("inner surface: %w", err)
	}

	if opts.Shape == TrackLoop {
		radius := length / (2 * gomath.Pi)
		amount := 2 * gomath.Pi / length
		outerBelt = outerBelt.Translate(mesh.Point{Z: radius}).Bend(amount)
		innerBelt = innerBelt.Translate(mesh.Point{Z: radius}).Bend(amount)
	}

	if err := sortEdges(outerBelt, opts.Shape); err != nil {
		return nil, fmt.Errorf("outer surface: %w", err)
	}
	if err := sortEdges(innerBelt, opts.Shape); err != nil {
		return nil, fmt.Errorf("inner surface: %w", err)
	}

	combined, err := JoinPairs(outerBelt, innerBelt, Options{Orientation: opts.Orientation},
		GroupPair{A: TrackRightGroup, B: TrackRightGroup},
		GroupPair{A: TrackLeftGroup, B: TrackLeftGroup, Swap: true},
	)
	if err != nil {
		return nil, err
	}

	d := opts.MergeDistance
	if d == 0 {
		d = DefaultTrackMergeDistance
	}
	return combined.Fragment.MergeByDistance(d), nil
}

// belt fits f to one pitch of the track, lifts it to z and repeats it.
func belt(f *mesh.Fragment, repeats int, length, z float32) (*mesh.Fragment, error) {
	lo, _, dim := f.Bounds()
	if dim.Y <= 0 {
		return nil, mesh.ErrFlatFragment
	}

	pitch := length / float32(repeats)
	fit := math.Translate(0, 0, z).
		Mul(math.Scale(1, pitch/dim.Y, 1)).
		Mul(math.Translate(0, -lo.Y, 0))
	return mesh.MakeArray(f.Transform(fit), repeats, mesh.Point{Y: pitch}), nil
}

// sortEdges puts both sidewall groups of f in walking order. Loops are
// walked by decreasing angle and straight tracks by decreasing Y, which
// winds the walls the same way in both shapes.
func sortEdges(f *mesh.Fragment, shape TrackShape) error {
	for _, name := range []string{TrackLeftGroup, TrackRightGroup} {
		g, ok := f.Groups[name]
		if !ok {
			return fmt.Errorf("%w: %q", mesh.ErrMissingGroup, name)
		}

		var sorted mesh.VertexGroup
		var err error
		if shape == TrackLoop {
			sorted, err = mesh.SortRadial(f.Points, g)
		} else {
			sorted, err = mesh.SortAlong(f.Points, g, mesh.Point{Y: -1})
		}
		if err != nil {
			return fmt.Errorf("group %s: %w", name, err)
		}
		f.Groups[name] = sorted
	}
	return nil
}
