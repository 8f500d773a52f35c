package input

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// SDL polls keyboard and mouse events from the SDL2 event queue. The host
// application owns window creation; this source only drains events.
type SDL struct{}

// NewSDL initializes the SDL event subsystem.
func NewSDL() (*SDL, error) {
	if err := sdl.Init(sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdl event init: %w", err)
	}
	return &SDL{}, nil
}

// Poll drains the SDL event queue, translating the event types an
// experiment responds to and dropping the rest.
func (s *SDL) Poll() ([]Event, error) {
	var events []Event
	now := time.Now()

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch t := ev.(type) {
		case *sdl.KeyboardEvent:
			kind := KeyDown
			if t.Type == sdl.KEYUP {
				kind = KeyUp
			}
			events = append(events, Event{
				Kind: kind,
				Key:  sdl.GetKeyName(t.Keysym.Sym),
				Time: now,
			})
		case *sdl.MouseButtonEvent:
			kind := MouseDown
			if t.Type == sdl.MOUSEBUTTONUP {
				kind = MouseUp
			}
			events = append(events, Event{Kind: kind, X: t.X, Y: t.Y, Time: now})
		case *sdl.MouseMotionEvent:
			events = append(events, Event{Kind: MouseMove, X: t.X, Y: t.Y, Time: now})
		case *sdl.QuitEvent:
			events = append(events, Event{Kind: Quit, Time: now})
		}
	}
	return events, nil
}

// Close shuts the event subsystem down.
func (s *SDL) Close() error {
	sdl.Quit()
	return nil
}
