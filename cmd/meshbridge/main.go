// meshbridge joins mesh fragments by bridging their boundary loops.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	gomath "math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshbridge/internal/config"
	"github.com/Faultbox/meshbridge/internal/logger"
	"github.com/Faultbox/meshbridge/pkg/bridge"
	"github.com/Faultbox/meshbridge/pkg/formats"
	"github.com/Faultbox/meshbridge/pkg/math"
	"github.com/Faultbox/meshbridge/pkg/mesh"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	err := run(os.Args[1], os.Args[2:], os.Stdout)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		if !errors.Is(err, errUsage) {
			logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		}
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func run(command string, args []string, stdout io.Writer) error {
	switch command {
	case "join":
		return cmdJoin(args, stdout, false)
	case "bridge":
		return cmdJoin(args, stdout, true)
	case "info":
		return cmdInfo(args, stdout)
	case "array":
		return cmdArray(args, stdout)
	case "loop", "ring":
		return cmdLoop(args, stdout)
	case "merge":
		return cmdMerge(args, stdout)
	case "transform":
		return cmdTransform(args, stdout)
	case "track":
		return cmdTrack(args, stdout)
	case "config":
		return cmdConfig(args, stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshbridge - mesh fragment bridging utility

Usage:
  meshbridge <command> [options] <files>

Commands:
  join <a> <b>      Merge two fragments and bridge their loop groups
  bridge <a> <b>    Write only the bridge triangles between two fragments
  info <file>       Show points, triangles, groups and bounds
  array <file>      Repeat a fragment along an offset
  loop <file>       Repeat a fragment and bend it into a closed ring
  merge <file>      Weld points closer than a distance
  transform <file>  Scale, turn about X and move a fragment
  track <outer> <inner>
                    Build a closed belt from an outer and an inner surface
  config            Print the resolved config, or store it with -save

Shared options:
  -config path      Config file (default ./meshbridge.yaml)
  -debug            Debug logging
  -orient mode      ignore, check or correct opposed loops
  -format f         yaml, stl or obj (default from -o extension)
  -o path           Output path

Examples:
  meshbridge join -group edge_left -group edge_right a.yaml b.yaml -o tread.yaml
  meshbridge join -group rim_out:rim_in -orient correct a.yaml b.yaml -o out.stl
  meshbridge join -group edge -group ~rim -radial a.yaml b.yaml -o ring.yaml
  meshbridge loop -count 24 link.yaml -o chain.obj
  meshbridge track -thickness 2 -outer-repeats 40 -inner-repeats 20 tread.yaml teeth.yaml -o track.stl`)
}

// command holds what every subcommand sets up: its flags, config and the
// positional arguments.
type command struct {
	name  string
	fs    *flag.FlagSet
	flags config.Flags
	cfg   *config.Config
	args  []string
	log   *zap.Logger
}

func newCommand(name string) *command {
	c := &command{
		name: name,
		fs:   flag.NewFlagSet(name, flag.ContinueOnError),
	}
	c.flags.Register(c.fs)
	return c
}

// parse reads flags and positional arguments in any order, then loads the
// config and installs the logger.
func (c *command) parse(args []string, want int, usage string) error {
	var pos []string
	for {
		if err := c.fs.Parse(args); err != nil {
			return err
		}
		args = c.fs.Args()
		if len(args) == 0 {
			break
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
	if len(pos) != want {
		return fmt.Errorf("%w: meshbridge %s", errUsage, usage)
	}
	c.args = pos

	cfg, err := config.Load(&c.flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.Named(c.name)
	return nil
}

// write encodes f to the configured output path.
func (c *command) write(f *mesh.Fragment, stdout io.Writer) error {
	path := c.cfg.Output.Path
	format, err := c.cfg.OutputFormat(path)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := formats.WriteFile(path, format, name, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	c.log.Info("wrote mesh",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("points", len(f.Points)),
		zap.Int("triangles", len(f.Triangles)))
	fmt.Fprintf(stdout, "%s: %d points, %d triangles\n", path, len(f.Points), len(f.Triangles))
	return nil
}

// groupList collects repeated -group flags.
type groupList []bridge.GroupPair

func (g *groupList) String() string {
	names := make([]string, len(*g))
	for i, p := range *g {
		names[i] = p.String()
	}
	return strings.Join(names, ",")
}

// Set accepts "name", "a:b" or either with a "~" prefix.
func (g *groupList) Set(s string) error {
	pair, err := bridge.ParseGroupPair(s)
	if err != nil {
		return err
	}
	*g = append(*g, pair)
	return nil
}

func cmdJoin(args []string, stdout io.Writer, ribbonOnly bool) error {
	name := "join"
	if ribbonOnly {
		name = "bridge"
	}
	c := newCommand(name)
	var groups groupList
	c.fs.Var(&groups, "group", "Loop group to bridge, name or a:b (repeatable)")
	radial := c.fs.Bool("radial", false, "Sort loop groups by angle around X before bridging")
	if err := c.parse(args, 2, name+" [options] <a> <b>"); err != nil {
		return err
	}

	if len(groups) == 0 {
		for _, g := range c.cfg.Bridge.Groups {
			if err := groups.Set(g); err != nil {
				return err
			}
		}
	}
	if len(groups) == 0 {
		return fmt.Errorf("%w: no loop groups named", errUsage)
	}

	orient, err := c.cfg.Orientation()
	if err != nil {
		return err
	}

	a, err := formats.Load(c.args[0])
	if err != nil {
		return err
	}
	b, err := formats.Load(c.args[1])
	if err != nil {
		return err
	}

	fa, fb := a.Fragment, b.Fragment
	if *radial {
		if fa, err = sortGroups(fa); err != nil {
			return fmt.Errorf("%s: %w", c.args[0], err)
		}
		if fb, err = sortGroups(fb); err != nil {
			return fmt.Errorf("%s: %w", c.args[1], err)
		}
	}

	combined, err := bridge.JoinPairs(fa, fb, bridge.Options{Orientation: orient}, groups...)
	if err != nil {
		return err
	}

	for _, p := range groups {
		c.log.Debug("bridged loops",
			zap.String("group", p.String()),
			zap.Int("triangles", len(combined.Bridges[p.String()])))
	}

	out := &combined.Fragment
	if ribbonOnly {
		out = &mesh.Fragment{Points: combined.Points, Groups: map[string]mesh.VertexGroup{}}
		for _, p := range groups {
			out.Triangles = append(out.Triangles, combined.Bridges[p.String()]...)
		}
	}
	return c.write(out, stdout)
}

// sortGroups returns a copy of f with every group ordered by SortRadial.
func sortGroups(f *mesh.Fragment) (*mesh.Fragment, error) {
	out := f.Clone()
	for _, name := range out.GroupNames() {
		sorted, err := mesh.SortRadial(out.Points, out.Groups[name])
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", name, err)
		}
		out.Groups[name] = sorted
	}
	return out, nil
}

func cmdInfo(args []string, stdout io.Writer) error {
	c := newCommand("info")
	if err := c.parse(args, 1, "info <file>"); err != nil {
		return err
	}

	doc, err := formats.Load(c.args[0])
	if err != nil {
		return err
	}
	f := doc.Fragment
	lo, hi, dim := f.Bounds()

	fmt.Fprintf(stdout, "Fragment:  %s\n", doc.Name)
	fmt.Fprintf(stdout, "Points:    %d\n", len(f.Points))
	fmt.Fprintf(stdout, "Triangles: %d\n", len(f.Triangles))
	fmt.Fprintf(stdout, "Bounds:    (%g, %g, %g) - (%g, %g, %g)\n", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
	fmt.Fprintf(stdout, "Size:      %g x %g x %g\n", dim.X, dim.Y, dim.Z)

	names := f.GroupNames()
	if len(names) == 0 {
		return nil
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Groups:")
	for _, name := range names {
		fmt.Fprintf(stdout, "  %-16s %d\n", name, len(f.Groups[name]))
	}
	return nil
}

func cmdArray(args []string, stdout io.Writer) error {
	c := newCommand("array")
	count := c.fs.Int("count", 2, "Number of copies")
	dx := c.fs.Float64("dx", 0, "X offset between copies")
	dy := c.fs.Float64("dy", 0, "Y offset between copies")
	dz := c.fs.Float64("dz", 0, "Z offset between copies")
	if err := c.parse(args, 1, "array [options] <file>"); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("%w: -count must be at least 1", errUsage)
	}

	doc, err := formats.Load(c.args[0])
	if err != nil {
		return err
	}
	offset := mesh.Point{X: float32(*dx), Y: float32(*dy), Z: float32(*dz)}
	return c.write(mesh.MakeArray(doc.Fragment, *count, offset), stdout)
}

func cmdLoop(args []string, stdout io.Writer) error {
	c := newCommand("loop")
	count := c.fs.Int("count", 12, "Number of copies around the ring")
	if err := c.parse(args, 1, "loop [options] <file>"); err != nil {
		return err
	}

	doc, err := formats.Load(c.args[0])
	if err != nil {
		return err
	}
	ring, err := mesh.MakeRing(doc.Fragment, *count)
	if err != nil {
		return fmt.Errorf("%s: %w", c.args[0], err)
	}
	return c.write(ring, stdout)
}

func cmdMerge(args []string, stdout io.Writer) error {
	c := newCommand("merge")
	distance := c.fs.Float64("distance", -1, "Weld distance (default from config)")
	if err := c.parse(args, 1, "merge [options] <file>"); err != nil {
		return err
	}

	d := c.cfg.Bridge.MergeDistance
	if *distance >= 0 {
		d = float32(*distance)
	}

	doc, err := formats.Load(c.args[0])
	if err != nil {
		return err
	}
	merged := doc.Fragment.MergeByDistance(d)
	c.log.Debug("merged points",
		zap.Float32("distance", d),
		zap.Int("before", len(doc.Fragment.Points)),
		zap.Int("after", len(merged.Points)))
	return c.write(merged, stdout)
}

func cmdTransform(args []string, stdout io.Writer) error {
	c := newCommand("transform")
	scale := c.fs.Float64("scale", 1, "Uniform scale, applied first")
	rotX := c.fs.Float64("rotx", 0, "Rotation about X in degrees, applied after scaling")
	dx := c.fs.Float64("dx", 0, "X offset, applied last")
	dy := c.fs.Float64("dy", 0, "Y offset, applied last")
	dz := c.fs.Float64("dz", 0, "Z offset, applied last")
	if err := c.parse(args, 1, "transform [options] <file>"); err != nil {
		return err
	}
	if *scale == 0 {
		return fmt.Errorf("%w: -scale must not be zero", errUsage)
	}

	doc, err := formats.Load(c.args[0])
	if err != nil {
		return err
	}

	m := math.Translate(float32(*dx), float32(*dy), float32(*dz)).
		Mul(math.RotateX(float32(*rotX * gomath.Pi / 180))).
		Mul(math.Scale(float32(*scale), float32(*scale), float32(*scale)))
	return c.write(doc.Fragment.Transform(m), stdout)
}

func cmdTrack(args []string, stdout io.Writer) error {
	c := newCommand("track")
	thickness := c.fs.Float64("thickness", 1, "Belt thickness between the two surfaces")
	outerRepeats := c.fs.Int("outer-repeats", 12, "Copies of the outer surface")
	innerRepeats := c.fs.Int("inner-repeats", 12, "Copies of the inner surface")
	length := c.fs.Float64("length", 0, "Circumference or length (default outer Y extent * outer-repeats)")
	straight := c.fs.Bool("straight", false, "Leave the belt unrolled instead of bending it into a loop")
	distance := c.fs.Float64("distance", bridge.DefaultTrackMergeDistance, "Weld distance for the finished belt")
	if err := c.parse(args, 2, "track [options] <outer> <inner>"); err != nil {
		return err
	}

	orient, err := c.cfg.Orientation()
	if err != nil {
		return err
	}
	opts := bridge.TrackOptions{
		Shape:         bridge.TrackLoop,
		Length:        float32(*length),
		Thickness:     float32(*thickness),
		OuterRepeats:  *outerRepeats,
		InnerRepeats:  *innerRepeats,
		MergeDistance: float32(*distance),
		Orientation:   orient,
	}
	if *straight {
		opts.Shape = bridge.TrackStraight
	}

	outer, err := formats.Load(c.args[0])
	if err != nil {
		return err
	}
	inner, err := formats.Load(c.args[1])
	if err != nil {
		return err
	}

	track, err := bridge.Track(outer.Fragment, inner.Fragment, opts)
	if err != nil {
		if errors.Is(err, bridge.ErrInvalidTrack) {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return err
	}
	c.log.Debug("built track",
		zap.Stringer("shape", opts.Shape),
		zap.Int("outer_repeats", opts.OuterRepeats),
		zap.Int("inner_repeats", opts.InnerRepeats))
	return c.write(track, stdout)
}

func cmdConfig(args []string, stdout io.Writer) error {
	c := newCommand("config")
	save := c.fs.Bool("save", false, "Store the resolved config in the user config directory")
	if err := c.parse(args, 0, "config [-save] [options]"); err != nil {
		return err
	}

	if *save {
		if err := c.cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		c.log.Info("saved config", zap.String("path", config.UserConfigPath()))
		fmt.Fprintln(stdout, config.UserConfigPath())
		return nil
	}

	data, err := yaml.Marshal(c.cfg)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}
