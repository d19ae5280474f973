package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config string
	Debug  bool
	Orient string
	Format string
	Output string
	Width  int
	Height int
}

// Register adds the shared flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Orient, "orient", "", "Loop orientation handling: ignore, check, correct")
	fs.StringVar(&f.Format, "format", "", "Output format: yaml, stl, obj")
	fs.StringVar(&f.Output, "o", "", "Output path")
}

// RegisterViewer adds the window flags to fs.
func (f *Flags) RegisterViewer(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Orient != "" {
		cfg.Bridge.Orientation = f.Orient
	}
	if f.Format != "" {
		cfg.Output.Format = f.Format
	}
	if f.Output != "" {
		cfg.Output.Path = f.Output
	}
	if f.Width > 0 {
		cfg.Viewer.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Viewer.Height = f.Height
	}
}
