package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Particles   int
	Connections int
	Radius      float32
	Width       float32
	Height      float32
	DPR         float32
	Frame       uint64
	FPS         int32
	Paused      bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	degree := float32(0)
	if data.Particles > 0 {
		degree = 2 * float32(data.Connections) / float32(data.Particles)
	}
	rl.DrawText(
		fmt.Sprintf("Particles: %d | Connections: %d | Degree: %.1f", data.Particles, data.Connections, degree),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | FPS: %d | %.0fx%.0f @%.2g | r=%.0f",
			data.Frame, data.FPS, data.Width, data.Height, data.DPR, data.Radius),
		10, 55, 16, rl.LightGray,
	)
	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	height := int32(len(telemetry.Phases)+2)*(r.Theme.LineHeight+2) + padding*2 + r.Theme.LineHeight

	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := r.DrawSectionHeader(x, p.y+padding, "Frame")
	y = r.DrawLabelValue(x, y, "Avg", stats.AvgFrameDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Max", stats.MaxFrameDuration.Round(time.Microsecond).String())

	for _, phase := range telemetry.Phases {
		pct := float32(stats.PhasePct[phase])
		y = r.DrawBar(x, y, phase, pct, 100, 40, p.width-padding*2)
	}
}
