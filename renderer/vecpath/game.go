package vecpath

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pthm-cable/constellation/field"
)

// Game is both the ebiten.Game and the field.Host. Layout records size
// changes; Update delivers them to listeners before running the frame.
type Game struct {
	*field.Loop

	surface *Surface

	width, height int
	dpr           float32
	resized       bool

	nextListener int
	listeners    map[int]func()

	// OnFrame, if set, runs after every frame; returning false quits.
	OnFrame func() bool
}

// NewGame creates a host that presents surface.
func NewGame(surface *Surface, width, height int) *Game {
	return &Game{
		Loop:      field.NewLoop(nil),
		surface:   surface,
		width:     width,
		height:    height,
		dpr:       1,
		listeners: make(map[int]func()),
	}
}

// Viewport implements field.Host.
func (g *Game) Viewport() (float32, float32) {
	return float32(g.width), float32(g.height)
}

// DevicePixelRatio implements field.Host.
func (g *Game) DevicePixelRatio() float32 {
	return g.dpr
}

// OnResize implements field.Host.
func (g *Game) OnResize(fn func()) func() {
	id := g.nextListener
	g.nextListener++
	g.listeners[id] = fn
	return func() { delete(g.listeners, id) }
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.resized {
		g.resized = false
		for _, fn := range g.listeners {
			fn()
		}
	}
	g.RunFrame()
	if g.OnFrame != nil && !g.OnFrame() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	img := g.surface.Image()
	if img == nil {
		return
	}
	screen.DrawImage(img, nil)
}

// Layout implements ebiten.Game. The screen is laid out in physical
// pixels so the surface is presented without rescaling.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := float32(ebiten.Monitor().DeviceScaleFactor())
	if dpr < 1 {
		dpr = 1
	}
	if outsideWidth != g.width || outsideHeight != g.height || dpr != g.dpr {
		g.width, g.height, g.dpr = outsideWidth, outsideHeight, dpr
		g.resized = true
	}
	return int(float32(outsideWidth) * dpr), int(float32(outsideHeight) * dpr)
}

var (
	_ field.Host  = (*Game)(nil)
	_ ebiten.Game = (*Game)(nil)
)
