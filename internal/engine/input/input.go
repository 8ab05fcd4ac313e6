// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
	Scroll float32
}

// Input handles all input processing. It keeps the mouse position and held
// button state across frames so drag interactions can read them directly.
type Input struct {
	events []Event

	mouseX, mouseY int
	leftHeld       bool
	rightHeld      bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			} else if e.Type == sdl.KEYUP {
				i.events = append(i.events, Event{
					Type: EventKeyUp,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseMotionEvent:
			i.mouseX, i.mouseY = int(e.X), int(e.Y)
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: i.mouseX,
				MouseY: i.mouseY,
			})

		case *sdl.MouseButtonEvent:
			i.mouseX, i.mouseY = int(e.X), int(e.Y)
			held := e.Type == sdl.MOUSEBUTTONDOWN
			switch e.Button {
			case sdl.BUTTON_LEFT:
				i.leftHeld = held
			case sdl.BUTTON_RIGHT:
				i.rightHeld = held
			}

			evType := EventMouseUp
			if held {
				evType = EventMouseDown
			}
			i.events = append(i.events, Event{
				Type:   evType,
				MouseX: i.mouseX,
				MouseY: i.mouseY,
				Button: e.Button,
			})

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseWheel,
				Scroll: float32(e.Y),
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// MousePosition returns the last known mouse position.
func (i *Input) MousePosition() (int, int) {
	return i.mouseX, i.mouseY
}

// LeftHeld reports whether the left mouse button is currently held.
func (i *Input) LeftHeld() bool { return i.leftHeld }

// RightHeld reports whether the right mouse button is currently held.
func (i *Input) RightHeld() bool { return i.rightHeld }
