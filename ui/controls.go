package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/config"
)

// Action is what the user asked for on the controls panel this frame.
type Action int

const (
	ActionNone   Action = iota
	ActionApply         // Re-mount with the draft values
	ActionReset         // Restore the draft from the defaults
	ActionReseed        // Re-mount with the current values and fresh particles
)

// Slider ranges for the draft values.
const (
	MinCount, MaxCount       = 0, 600
	MinSpeed, MaxSpeed       = 0.1, 6
	MinDistance, MaxDistance = 0.1, 3
)

// Draft holds the edited field values until they are applied.
type Draft struct {
	Count              int
	SpeedMultiplier    float64
	DistanceMultiplier float64
}

// DraftFrom copies the editable values out of cfg.
func DraftFrom(cfg *config.Config) Draft {
	return Draft{
		Count:              cfg.Field.Count,
		SpeedMultiplier:    cfg.Field.SpeedMultiplier,
		DistanceMultiplier: cfg.Field.DistanceMultiplier,
	}
}

// Clamped returns the draft limited to the slider ranges.
func (d Draft) Clamped() Draft {
	d.Count = int(clamp(float64(d.Count), MinCount, MaxCount))
	d.SpeedMultiplier = clamp(d.SpeedMultiplier, MinSpeed, MaxSpeed)
	d.DistanceMultiplier = clamp(d.DistanceMultiplier, MinDistance, MaxDistance)
	return d
}

// Differs reports whether applying the draft would change cfg.
func (d Draft) Differs(cfg *config.Config) bool {
	return d != DraftFrom(cfg)
}

// ApplyTo writes the draft into cfg and refreshes its derived values.
func (d Draft) ApplyTo(cfg *config.Config) {
	cfg.Field.Count = d.Count
	cfg.Field.SpeedMultiplier = d.SpeedMultiplier
	cfg.Field.DistanceMultiplier = d.DistanceMultiplier
	cfg.ComputeDerived()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ControlsPanel edits count, speed and distance with raygui sliders.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	Draft Draft
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// SetPosition moves the panel.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x, c.y = x, y
}

// Draw renders the panel and returns the button pressed, if any.
// dirty highlights the Apply button when the draft differs from the field.
func (c *ControlsPanel) Draw(dirty bool) Action {
	if !c.visible {
		return ActionNone
	}

	r := c.renderer
	padding := r.Theme.Padding
	sliderW := float32(c.width - padding*2 - 50)
	panelHeight := int32(220)

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := c.y + padding
	y = r.DrawSectionHeader(c.x+padding, y, "Field")

	slider := func(label, value string, v, lo, hi float32) float32 {
		rl.DrawText(label, int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
		nv := gui.SliderBar(rl.Rectangle{X: x, Y: float32(y), Width: sliderW, Height: 16}, "", "", v, lo, hi)
		rl.DrawText(value, int32(x+sliderW+8), y+2, r.Theme.FontSize, r.Theme.ValueColor)
		y += 26
		return nv
	}

	d := c.Draft
	d.Count = int(slider("Particles", fmt.Sprintf("%d", d.Count), float32(d.Count), MinCount, MaxCount))
	d.SpeedMultiplier = float64(slider("Speed", fmt.Sprintf("%.2fx", d.SpeedMultiplier),
		float32(d.SpeedMultiplier), MinSpeed, MaxSpeed))
	d.DistanceMultiplier = float64(slider("Distance", fmt.Sprintf("%.2fx", d.DistanceMultiplier),
		float32(d.DistanceMultiplier), MinDistance, MaxDistance))
	c.Draft = d.Clamped()

	bw := float32(c.width-padding*4) / 3
	by := float32(y + 4)
	action := ActionNone

	applyLabel := "Apply"
	if dirty {
		applyLabel = "Apply *"
	}
	if gui.Button(rl.Rectangle{X: x, Y: by, Width: bw, Height: 24}, applyLabel) {
		action = ActionApply
	}
	if gui.Button(rl.Rectangle{X: x + bw + float32(padding), Y: by, Width: bw, Height: 24}, "Reseed") {
		action = ActionReseed
	}
	if gui.Button(rl.Rectangle{X: x + 2*(bw+float32(padding)), Y: by, Width: bw, Height: 24}, "Defaults") {
		action = ActionReset
	}
	return action
}
