// Package formats reads and writes mesh files: YAML fragment documents,
// binary STL and Wavefront OBJ.
package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshbridge/pkg/mesh"
)

// Format identifies a mesh file format.
type Format string

const (
	FormatYAML Format = "yaml" // Fragment document, keeps vertex groups
	FormatSTL  Format = "stl"  // Binary STL
	FormatOBJ  Format = "obj"  // Wavefront OBJ
)

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "stl":
		return FormatSTL, nil
	case "obj":
		return FormatOBJ, nil
	default:
		return "", fmt.Errorf("unknown mesh format %q", s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("no extension on %q", path)
	}
	return ParseFormat(ext)
}

// Encode writes a fragment in the given format.
func Encode(format Format, name string, f *mesh.Fragment) ([]byte, error) {
	switch format {
	case FormatYAML:
		return MarshalFragment(name, f)
	case FormatSTL:
		return EncodeSTL(f), nil
	case FormatOBJ:
		return EncodeOBJ(name, f), nil
	default:
		return nil, fmt.Errorf("unknown mesh format %q", format)
	}
}

// WriteFile encodes a fragment to path, creating parent directories.
func WriteFile(path string, format Format, name string, f *mesh.Fragment) error {
	data, err := Encode(format, name, f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a fragment document or an STL file, chosen by extension.
// STL files are named after the file and have no groups.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatYAML:
		return LoadFragment(path)
	case FormatSTL:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f, err := ParseSTL(data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return &Document{Name: name, Fragment: f}, nil
	default:
		return nil, fmt.Errorf("cannot read %s files", format)
	}
}
