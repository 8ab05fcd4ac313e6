// Package renderer draws the reconstructed cloth surface with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/drape/internal/engine/shader"
	"github.com/Faultbox/drape/internal/logger"
	"github.com/Faultbox/drape/internal/mesh"
	"github.com/Faultbox/drape/pkg/math"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool
}

// Renderer owns the cloth mesh buffers and the lit surface shader. Positions
// and normals are re-uploaded every frame; indices and UVs only when the grid
// topology changes.
type Renderer struct {
	config Config

	program     uint32
	uProjection int32
	uView       int32
	uLightDir   int32
	uFrontColor int32
	uBackColor  int32

	vao uint32
	vbo uint32
	ebo uint32

	vertexScratch  []float32
	vertexCapacity int
	indexCount     int32
	indexCapacity  int

	wireframe bool
}

const vertexShaderSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uProjection;
uniform mat4 uView;

out vec3 vNormal;
out vec2 vUV;

void main() {
	gl_Position = uProjection * uView * vec4(aPos, 1.0);
	vNormal = aNormal;
	vUV = aUV;
}
`

const fragmentShaderSrc = `
#version 410 core

in vec3 vNormal;
in vec2 vUV;

uniform vec3 uLightDir;
uniform vec3 uFrontColor;
uniform vec3 uBackColor;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	if (!gl_FrontFacing) {
		n = -n;
	}
	float diffuse = max(dot(n, -uLightDir), 0.0);
	float shade = 0.25 + 0.75 * diffuse;

	// Faint checker from the UVs so folds read even under flat light.
	float checker = mod(floor(vUV.x * 8.0) + floor(vUV.y * 8.0), 2.0);
	vec3 base = gl_FrontFacing ? uFrontColor : uBackColor;
	base *= 0.92 + 0.08 * checker;

	FragColor = vec4(base * shade, 1.0);
}
`

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:    cfg,
		wireframe: cfg.Wireframe,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	// Cloth is visible from both sides; the shader flips back-facing normals.
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	program, err := shader.CompileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloth shader: %w", err)
	}
	r.program = program
	r.uProjection = shader.MustGetUniform(program, "uProjection")
	r.uView = shader.MustGetUniform(program, "uView")
	r.uLightDir = shader.MustGetUniform(program, "uLightDir")
	r.uFrontColor = shader.MustGetUniform(program, "uFrontColor")
	r.uBackColor = shader.MustGetUniform(program, "uBackColor")

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	// Interleaved position + normal + UV, 8 floats per vertex.
	stride := int32(8 * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(6*4)))
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	gl.BindVertexArray(0)

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetWireframe toggles wireframe rendering.
func (r *Renderer) SetWireframe(on bool) {
	r.wireframe = on
}

// Wireframe reports the current fill mode.
func (r *Renderer) Wireframe() bool { return r.wireframe }

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	// Nothing to do for now - batched draws would be flushed here
}

// UploadSurface pushes the frame's positions and normals to the GPU. The
// index buffer is only re-uploaded when the triangle list changes size.
func (r *Renderer) UploadSurface(s *mesh.Surface) {
	n := len(s.Positions)
	if cap(r.vertexScratch) < n*8 {
		r.vertexScratch = make([]float32, 0, n*8)
	}
	r.vertexScratch = r.vertexScratch[:0]
	for i := 0; i < n; i++ {
		p, nm, uv := s.Positions[i], s.Normals[i], s.UVs[i]
		r.vertexScratch = append(r.vertexScratch,
			p.X, p.Y, p.Z,
			nm.X, nm.Y, nm.Z,
			uv.X, uv.Y,
		)
	}

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	byteLen := len(r.vertexScratch) * 4
	if byteLen > r.vertexCapacity {
		gl.BufferData(gl.ARRAY_BUFFER, byteLen, unsafe.Pointer(&r.vertexScratch[0]), gl.DYNAMIC_DRAW)
		r.vertexCapacity = byteLen
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, byteLen, unsafe.Pointer(&r.vertexScratch[0]))
	}

	if len(s.Indices) != r.indexCapacity {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(s.Indices)*4, unsafe.Pointer(&s.Indices[0]), gl.STATIC_DRAW)
		r.indexCapacity = len(s.Indices)
		logger.Debug("cloth index buffer rebuilt",
			zap.Int("triangles", s.TriangleCount()),
		)
	}
	r.indexCount = int32(len(s.Indices))
	gl.BindVertexArray(0)
}

// DrawCloth renders the uploaded surface with the given camera matrices.
func (r *Renderer) DrawCloth(projection, view math.Mat4) {
	if r.indexCount == 0 {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uProjection, 1, false, projection.Ptr())
	gl.UniformMatrix4fv(r.uView, 1, false, view.Ptr())

	light := math.Vec3{X: -0.4, Y: -0.8, Z: -0.45}.Normalize()
	gl.Uniform3f(r.uLightDir, light.X, light.Y, light.Z)
	gl.Uniform3f(r.uFrontColor, 0.78, 0.22, 0.24)
	gl.Uniform3f(r.uBackColor, 0.55, 0.16, 0.30)

	if r.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}

	gl.BindVertexArray(r.vao)
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	if r.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}
