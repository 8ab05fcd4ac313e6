// Package app implements the interactive cloth viewer loop.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/drape/internal/config"
	"github.com/Faultbox/drape/internal/engine/camera"
	"github.com/Faultbox/drape/internal/engine/input"
	"github.com/Faultbox/drape/internal/engine/renderer"
	"github.com/Faultbox/drape/internal/engine/window"
	"github.com/Faultbox/drape/internal/mesh"
	"github.com/Faultbox/drape/internal/session"
)

// Simulation steps cap so a long stall cannot catapult the cloth.
const maxFrameDt = 1.0 / 30.0

// App is the viewer instance: window, renderer, camera, input and one
// simulation session.
type App struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	session  *session.Session

	dragIndex  int
	dragDepth  float32
	lastMouseX int
	lastMouseY int
}

// New creates the viewer. The OpenGL context is created here, so it must run
// on the main thread.
func New(cfg *config.Config) (*App, error) {
	slog.Info("initializing viewer",
		"width", cfg.Graphics.Width,
		"height", cfg.Graphics.Height,
	)

	a := &App{
		cfg:       cfg,
		dragIndex: -1,
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      "Drape",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the OpenGL context the window just created.
	a.renderer, err = renderer.New(renderer.Config{
		Width:     cfg.Graphics.Width,
		Height:    cfg.Graphics.Height,
		Wireframe: cfg.Graphics.Wireframe,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.session, err = session.New(cfg)
	if err != nil {
		a.renderer.Close()
		a.window.Close()
		return nil, fmt.Errorf("failed to build simulation: %w", err)
	}

	a.input = input.New()
	a.camera = camera.NewOrbitCamera()

	slog.Info("viewer initialized")
	return a, nil
}

// Run starts the main loop.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	slog.Info("starting viewer loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now
		if dt > maxFrameDt {
			dt = maxFrameDt
		}

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()

		surface, err := a.session.Step(dt)
		if err != nil {
			if errors.Is(err, mesh.ErrGridUnresolved) {
				// Keep simulating; the next frame usually resolves.
				slog.Warn("mesh reconstruction failed", "error", err)
				continue
			}
			return fmt.Errorf("simulation step: %w", err)
		}

		a.renderer.Begin()
		a.renderer.UploadSurface(surface)
		a.renderer.DrawCloth(
			a.camera.ProjectionMatrix(a.window.AspectRatio()),
			a.camera.ViewMatrix(),
		)
		a.renderer.End()
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			slog.Debug("fps", "count", frameCount, "dt", fmt.Sprintf("%.2fms", dt*1000))
			a.window.SetTitle(fmt.Sprintf("Drape - %d fps", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (a *App) Close() {
	slog.Info("closing viewer")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			a.renderer.Resize(event.Width, event.Height)

		case input.EventKeyDown:
			a.handleKey(event.Key)

		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				a.beginDrag(event.MouseX, event.MouseY)
			}
			a.lastMouseX, a.lastMouseY = event.MouseX, event.MouseY

		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				a.dragIndex = -1
			}

		case input.EventMouseMove:
			dx := float32(event.MouseX - a.lastMouseX)
			dy := float32(event.MouseY - a.lastMouseY)
			a.lastMouseX, a.lastMouseY = event.MouseX, event.MouseY

			switch {
			case a.input.LeftHeld() && a.dragIndex >= 0:
				a.moveDrag(event.MouseX, event.MouseY)
			case a.input.RightHeld():
				a.camera.HandleDrag(dx, dy)
			}

		case input.EventMouseWheel:
			a.camera.HandleZoom(event.Scroll)
		}
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false

	case sdl.SCANCODE_R:
		if err := a.session.Reset(); err != nil {
			slog.Error("reset failed", "error", err)
		} else {
			slog.Info("cloth reset")
		}

	case sdl.SCANCODE_W:
		slog.Info("wind toggled", "enabled", a.session.ToggleWind())

	case sdl.SCANCODE_C:
		enabled := !a.session.Cloth().Settings.SelfCollision
		a.session.SetCollision(enabled)
		slog.Info("self-collision toggled", "enabled", enabled)

	case sdl.SCANCODE_A:
		a.session.ReleaseAnchors()
		slog.Info("anchors released")

	case sdl.SCANCODE_F:
		a.renderer.SetWireframe(!a.renderer.Wireframe())
	}
}

// beginDrag casts a ray through the clicked pixel and latches onto the
// nearest cloth point within the pick radius.
func (a *App) beginDrag(px, py int) {
	w, h := a.window.GetSize()
	origin, dir := a.camera.Ray(px, py, w, h, a.window.AspectRatio())

	idx := a.session.PickPoint(origin, dir, pickRadius(a.cfg))
	if idx < 0 {
		return
	}

	a.dragIndex = idx
	a.dragDepth = a.session.Cloth().Points[idx].Position.Sub(origin).Dot(dir)
	slog.Debug("drag started", "point", idx)
}

// moveDrag keeps the grabbed point at the original depth along the fresh ray.
func (a *App) moveDrag(px, py int) {
	w, h := a.window.GetSize()
	origin, dir := a.camera.Ray(px, py, w, h, a.window.AspectRatio())
	a.session.Drag(a.dragIndex, origin.Add(dir.Scale(a.dragDepth)))
}

func pickRadius(cfg *config.Config) float32 {
	// Half a cell of slack makes thin cloth grabbable.
	return cfg.Cloth.Spacing * 1.5
}
