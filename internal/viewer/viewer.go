// Package viewer shows a fragment in an SDL2 window with OpenGL, bridge
// triangles highlighted.
package viewer

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbridge/internal/viewer/scene"
	"github.com/Faultbox/meshbridge/pkg/math"
)

// Config holds display settings.
type Config struct {
	Width     int
	Height    int
	VSync     bool
	Wireframe bool    // Initial wireframe overlay state
	FOV       float32 // Vertical field of view in degrees
}

// Run opens a window showing m and blocks until it is closed with Esc or
// the window's close button. Call it from the main goroutine with the OS
// thread locked.
func Run(title string, m *scene.Mesh, cfg Config, log *zap.Logger) error {
	win, err := openWindow(title, cfg, log)
	if err != nil {
		return err
	}
	defer win.close()

	r, err := newRenderer(m, log)
	if err != nil {
		return err
	}
	defer r.close()

	cam := scene.NewOrbitCamera()
	cam.FitToBounds(m.Lo, m.Hi)

	width, height := win.drawableSize()
	r.resize(width, height)

	wireframe := cfg.Wireframe
	box := false
	win.setTitle(windowTitle(title, m, wireframe))

	var input inputState
	for {
		in := input.poll()
		if in.quit {
			return nil
		}
		if in.resized {
			width, height = win.drawableSize()
			r.resize(width, height)
			log.Debug("viewport resized", zap.Int32("width", width), zap.Int32("height", height))
		}
		if in.reset {
			cam.Reset()
		}
		if in.toggleWireframe {
			wireframe = !wireframe
			win.setTitle(windowTitle(title, m, wireframe))
		}
		if in.toggleBox {
			box = !box
		}
		if in.dragX != 0 || in.dragY != 0 {
			cam.HandleDrag(in.dragX, in.dragY)
		}
		if in.zoom != 0 {
			cam.HandleZoom(in.zoom)
		}

		aspect := float32(1)
		if height > 0 {
			aspect = float32(width) / float32(height)
		}
		near, far := cam.ClipPlanes()
		proj := math.Perspective(cfg.FOV*gomath.Pi/180, aspect, near, far)
		viewProj := proj.Mul(cam.ViewMatrix())

		// Headlight: light comes from the camera
		light := cam.Position().Sub(cam.Center).Normalize()
		r.draw(viewProj, light, wireframe, box)
		win.swap()
	}
}

func windowTitle(title string, m *scene.Mesh, wireframe bool) string {
	s := fmt.Sprintf("%s - %d triangles", title, m.Triangles)
	if m.Bridged > 0 {
		s += fmt.Sprintf(", %d bridged", m.Bridged)
	}
	if wireframe {
		s += " [wire]"
	}
	return s
}
