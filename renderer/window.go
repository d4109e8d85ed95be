package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/field"
)

// Window is a field.Host over the raylib window. The main loop calls Poll
// once per iteration, then Frame inside BeginDrawing/EndDrawing.
type Window struct {
	*field.Loop

	width, height int
	nextListener  int
	listeners     map[int]func()
}

// NewWindow creates a host for an already initialized raylib window.
func NewWindow() *Window {
	return &Window{
		Loop:      field.NewLoop(nil),
		width:     rl.GetScreenWidth(),
		height:    rl.GetScreenHeight(),
		listeners: make(map[int]func()),
	}
}

// Viewport implements field.Host.
func (w *Window) Viewport() (float32, float32) {
	return float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
}

// DevicePixelRatio implements field.Host.
func (w *Window) DevicePixelRatio() float32 {
	return rl.GetWindowScaleDPI().X
}

// OnResize implements field.Host.
func (w *Window) OnResize(fn func()) func() {
	id := w.nextListener
	w.nextListener++
	w.listeners[id] = fn
	return func() { delete(w.listeners, id) }
}

// Poll checks for a window resize and notifies listeners.
func (w *Window) Poll() {
	if !rl.IsWindowResized() {
		return
	}
	width, height := rl.GetScreenWidth(), rl.GetScreenHeight()
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	for _, fn := range w.listeners {
		fn()
	}
}

// Frame runs due timers and the frame callbacks queued for this refresh.
func (w *Window) Frame() int {
	return w.RunFrame()
}

var _ field.Host = (*Window)(nil)
