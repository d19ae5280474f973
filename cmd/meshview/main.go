// meshview shows a mesh fragment, or two fragments joined with their bridge
// highlighted.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/meshbridge/internal/config"
	"github.com/Faultbox/meshbridge/internal/logger"
	"github.com/Faultbox/meshbridge/internal/viewer"
	"github.com/Faultbox/meshbridge/internal/viewer/scene"
	"github.com/Faultbox/meshbridge/pkg/bridge"
	"github.com/Faultbox/meshbridge/pkg/formats"
	"github.com/Faultbox/meshbridge/pkg/mesh"
)

func init() {
	// SDL and OpenGL calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	var flags config.Flags
	flags.RegisterViewer(flag.CommandLine)
	orient := flag.String("orient", "", "Loop orientation handling when joining: ignore, check, correct")
	group := flag.String("group", "", "Comma-separated loop groups to bridge when joining, each name or a:b (default from config)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage:
  meshview [options] [file]       Show a fragment (.yaml or .stl)
  meshview [options] <a> <b>      Join two fragments and highlight the bridge

Controls: drag to orbit, wheel to zoom, R resets the camera, W toggles
edges, B toggles the bounding box, Esc quits.

Options:`)
		flag.PrintDefaults()
	}
	flag.Parse()
	flags.Orient = *orient

	if err := run(&flags, *group, flag.Args()); err != nil {
		logger.Error("meshview failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func run(flags *config.Flags, group string, args []string) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	log := logger.Named("meshview")

	if len(args) == 0 {
		path, err := openFileDialog()
		if errors.Is(err, dialog.ErrCancelled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("file dialog: %w", err)
		}
		args = []string{path}
	}

	var (
		title   string
		f       *mesh.Fragment
		bridged []mesh.Triangle
	)
	switch len(args) {
	case 1:
		doc, err := formats.Load(args[0])
		if err != nil {
			return err
		}
		title, f = doc.Name, doc.Fragment

	case 2:
		names := cfg.Bridge.Groups
		if group != "" {
			names = strings.Split(group, ",")
		}
		pairs, err := groupPairs(names)
		if err != nil {
			return err
		}
		orient, err := cfg.Orientation()
		if err != nil {
			return err
		}
		combined, err := join(args[0], args[1], pairs, orient)
		if err != nil {
			return err
		}
		title = filepath.Base(args[0]) + " + " + filepath.Base(args[1])
		f = &combined.Fragment
		for _, p := range pairs {
			bridged = append(bridged, combined.Bridges[p.String()]...)
		}

	default:
		flag.Usage()
		return fmt.Errorf("expected one or two files, got %d", len(args))
	}

	m := scene.Build(f, bridged)
	log.Info("showing mesh",
		zap.String("title", title),
		zap.Int("points", len(f.Points)),
		zap.Int("triangles", m.Triangles),
		zap.Int("bridged", m.Bridged))

	return viewer.Run("meshview: "+title, m, viewer.Config{
		Width:     cfg.Viewer.Width,
		Height:    cfg.Viewer.Height,
		VSync:     cfg.Viewer.VSync,
		Wireframe: cfg.Viewer.Wireframe,
		FOV:       cfg.Viewer.FOV,
	}, log)
}

// groupPairs parses group names, each "name", "a:b" or "~a:b".
func groupPairs(names []string) ([]bridge.GroupPair, error) {
	pairs := make([]bridge.GroupPair, 0, len(names))
	for _, name := range names {
		p, err := bridge.ParseGroupPair(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func join(pathA, pathB string, pairs []bridge.GroupPair, orient bridge.Orientation) (*mesh.Combined, error) {
	a, err := formats.Load(pathA)
	if err != nil {
		return nil, err
	}
	b, err := formats.Load(pathB)
	if err != nil {
		return nil, err
	}
	return bridge.JoinPairs(a.Fragment, b.Fragment, bridge.Options{Orientation: orient}, pairs...)
}

// openFileDialog asks for a fragment file. It runs before the window opens,
// so it can block the main thread.
func openFileDialog() (string, error) {
	return dialog.File().
		Filter("Mesh fragments", "yaml", "yml", "stl").
		Filter("All Files", "*").
		Title("Open mesh fragment").
		Load()
}
