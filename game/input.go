package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/ui"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.pending = ui.ActionReseed
	}
}

// handleAction applies the control panel button pressed during the last Draw.
func (g *Game) handleAction() {
	action := g.pending
	g.pending = ui.ActionNone

	switch action {
	case ui.ActionApply:
		if !g.controls.Draft.Differs(g.cfg) {
			return
		}
		g.controls.Draft.ApplyTo(g.cfg)
		g.remount("controls")
	case ui.ActionReset:
		g.controls.Draft = ui.DraftFrom(config.Default())
		g.controls.Draft.ApplyTo(g.cfg)
		g.remount("defaults")
	case ui.ActionReseed:
		g.remount("reseed")
	}
}
