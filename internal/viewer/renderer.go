package viewer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshbridge/internal/viewer/scene"
	"github.com/Faultbox/meshbridge/pkg/math"
)

var (
	backgroundColor = [3]float32{0.1, 0.1, 0.15}
	edgeColor       = math.Vec3{X: 0.08, Y: 0.08, Z: 0.1}
	boxColor        = math.Vec3{X: 0.35, Y: 0.6, Z: 0.9}
)

const floatSize = 4

// renderer owns the GL objects for one mesh.
type renderer struct {
	surfaceProgram uint32
	lineProgram    uint32

	surfaceViewProj int32
	surfaceLightDir int32
	lineViewProj    int32
	lineColor       int32

	surfaceVAO, surfaceVBO uint32
	lineVAO, lineVBO       uint32
	boxVAO, boxVBO         uint32
	surfaceCount           int32
	lineCount              int32
	boxCount               int32
}

// newRenderer initializes GL and uploads m. The GL context must be current.
func newRenderer(m *scene.Mesh, log *zap.Logger) (*renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(backgroundColor[0], backgroundColor[1], backgroundColor[2], 1.0)

	r := &renderer{}
	var err error
	if r.surfaceProgram, err = compileProgram(surfaceVertexShader, surfaceFragmentShader); err != nil {
		return nil, fmt.Errorf("surface program: %w", err)
	}
	if r.lineProgram, err = compileProgram(lineVertexShader, lineFragmentShader); err != nil {
		r.close()
		return nil, fmt.Errorf("line program: %w", err)
	}
	r.surfaceViewProj = uniform(r.surfaceProgram, "uViewProj")
	r.surfaceLightDir = uniform(r.surfaceProgram, "uLightDir")
	r.lineViewProj = uniform(r.lineProgram, "uViewProj")
	r.lineColor = uniform(r.lineProgram, "uColor")

	r.upload(m)
	log.Debug("mesh uploaded",
		zap.Int32("surface_vertices", r.surfaceCount),
		zap.Int32("line_vertices", r.lineCount))
	return r, nil
}

// upload copies the mesh into fresh vertex buffers.
func (r *renderer) upload(m *scene.Mesh) {
	gl.GenVertexArrays(1, &r.surfaceVAO)
	gl.BindVertexArray(r.surfaceVAO)
	gl.GenBuffers(1, &r.surfaceVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.surfaceVBO)
	if len(m.Surface) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(m.Surface)*floatSize, gl.Ptr(m.Surface), gl.STATIC_DRAW)
	}
	stride := int32(scene.VertexStride * floatSize)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*floatSize)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, 6*floatSize)
	gl.EnableVertexAttribArray(2)
	r.surfaceCount = m.SurfaceVertices()

	r.lineVAO, r.lineVBO = uploadLines(m.Lines)
	r.lineCount = m.LineVertices()
	r.boxVAO, r.boxVBO = uploadLines(m.Box)
	r.boxCount = int32(len(m.Box) / 3)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// uploadLines stores bare positions for GL_LINES.
func uploadLines(positions []float32) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(positions) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(positions)*floatSize, gl.Ptr(positions), gl.STATIC_DRAW)
	}
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*floatSize, 0)
	gl.EnableVertexAttribArray(0)
	return vao, vbo
}

func (r *renderer) resize(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

// draw renders one frame. Edges are pulled towards the camera with polygon
// offset on the surface so they do not z-fight.
func (r *renderer) draw(viewProj math.Mat4, lightDir math.Vec3, wireframe, box bool) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(1, 1)
	gl.UseProgram(r.surfaceProgram)
	gl.UniformMatrix4fv(r.surfaceViewProj, 1, false, viewProj.Ptr())
	gl.Uniform3f(r.surfaceLightDir, lightDir.X, lightDir.Y, lightDir.Z)
	gl.BindVertexArray(r.surfaceVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, r.surfaceCount)
	gl.Disable(gl.POLYGON_OFFSET_FILL)

	gl.UseProgram(r.lineProgram)
	gl.UniformMatrix4fv(r.lineViewProj, 1, false, viewProj.Ptr())
	if wireframe && r.lineCount > 0 {
		gl.Uniform3f(r.lineColor, edgeColor.X, edgeColor.Y, edgeColor.Z)
		gl.BindVertexArray(r.lineVAO)
		gl.DrawArrays(gl.LINES, 0, r.lineCount)
	}
	if box {
		gl.Uniform3f(r.lineColor, boxColor.X, boxColor.Y, boxColor.Z)
		gl.BindVertexArray(r.boxVAO)
		gl.DrawArrays(gl.LINES, 0, r.boxCount)
	}

	gl.BindVertexArray(0)
}

func (r *renderer) close() {
	if r.surfaceVAO != 0 {
		gl.DeleteVertexArrays(1, &r.surfaceVAO)
		gl.DeleteBuffers(1, &r.surfaceVBO)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	if r.boxVAO != 0 {
		gl.DeleteVertexArrays(1, &r.boxVAO)
		gl.DeleteBuffers(1, &r.boxVBO)
	}
	if r.surfaceProgram != 0 {
		gl.DeleteProgram(r.surfaceProgram)
	}
	if r.lineProgram != 0 {
		gl.DeleteProgram(r.lineProgram)
	}
}
