package viewer

import (
	"github.com/veandco/go-sdl2/sdl"
)

// frameInput is what happened since the previous frame.
type frameInput struct {
	quit            bool
	reset           bool
	toggleWireframe bool
	toggleBox       bool
	resized         bool

	dragX, dragY float32
	zoom         float32
}

// inputState tracks the mouse button held for orbiting.
type inputState struct {
	dragging bool
}

// poll drains the SDL event queue.
func (s *inputState) poll() frameInput {
	var in frameInput

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				in.resized = true
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			switch e.Keysym.Scancode {
			case sdl.SCANCODE_ESCAPE:
				in.quit = true
			case sdl.SCANCODE_R:
				in.reset = true
			case sdl.SCANCODE_W:
				in.toggleWireframe = !in.toggleWireframe
			case sdl.SCANCODE_B:
				in.toggleBox = !in.toggleBox
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				s.dragging = e.Type == sdl.MOUSEBUTTONDOWN
			}

		case *sdl.MouseMotionEvent:
			if s.dragging {
				in.dragX += float32(e.XRel)
				in.dragY += float32(e.YRel)
			}

		case *sdl.MouseWheelEvent:
			in.zoom += float32(e.Y)
		}
	}

	return in
}
