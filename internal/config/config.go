// Package config handles meshbridge configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshbridge/pkg/bridge"
	"github.com/Faultbox/meshbridge/pkg/formats"
)

// Config holds all tool settings.
type Config struct {
	Bridge  BridgeConfig  `yaml:"bridge"`
	Output  OutputConfig  `yaml:"output"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// BridgeConfig holds bridging defaults.
type BridgeConfig struct {
	Groups        []string `yaml:"groups"`         // Loop groups joined when none are named
	Orientation   string   `yaml:"orientation"`    // ignore, check or correct
	MergeDistance float32  `yaml:"merge_distance"` // Weld distance for the merge command
}

// OutputConfig holds where and how results are written.
type OutputConfig struct {
	Format string `yaml:"format"` // yaml, stl or obj; empty follows the output extension
	Path   string `yaml:"path"`
}

// ViewerConfig holds display settings for meshview.
type ViewerConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	VSync     bool    `yaml:"vsync"`
	Wireframe bool    `yaml:"wireframe"`
	FOV       float32 `yaml:"fov"` // Degrees
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Groups:        []string{"edge"},
			Orientation:   bridge.OrientIgnore.String(),
			MergeDistance: 0.0001,
		},
		Output: OutputConfig{
			Path: "out.yaml",
		},
		Viewer: ViewerConfig{
			Width:     1280,
			Height:    720,
			VSync:     true,
			Wireframe: true,
			FOV:       45,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var err error
	if _, e := bridge.ParseOrientation(c.Bridge.Orientation); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Bridge.MergeDistance < 0 {
		err = multierr.Append(err, fmt.Errorf("merge distance %g is negative", c.Bridge.MergeDistance))
	}
	if c.Output.Format != "" {
		if _, e := formats.ParseFormat(c.Output.Format); e != nil {
			err = multierr.Append(err, e)
		}
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size %dx%d", c.Viewer.Width, c.Viewer.Height))
	}
	return err
}

// Orientation returns the parsed bridge orientation mode.
func (c *Config) Orientation() (bridge.Orientation, error) {
	return bridge.ParseOrientation(c.Bridge.Orientation)
}

// OutputFormat resolves the output format, falling back to the extension
// of path.
func (c *Config) OutputFormat(path string) (formats.Format, error) {
	if c.Output.Format != "" {
		return formats.ParseFormat(c.Output.Format)
	}
	return formats.FormatFromPath(path)
}
