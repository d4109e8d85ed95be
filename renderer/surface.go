// Package renderer draws the particle field with raylib.
package renderer

import (
	"errors"
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/field"
)

// ErrNoWindow is returned by Configure before the raylib window exists.
var ErrNoWindow = errors.New("renderer: window not initialized")

// glowLayers are the halo rings drawn behind each particle, as
// (radius fraction of Glow, alpha fraction of the particle alpha).
var glowLayers = [...][2]float32{
	{1.0, 0.06},
	{0.6, 0.12},
	{0.3, 0.22},
}

// Surface is a field.Surface backed by a raylib render texture sized in
// physical pixels. Draw calls are issued in logical units through a 2D
// camera whose zoom is the device pixel ratio.
type Surface struct {
	target     rl.RenderTexture2D
	loaded     bool
	width      int
	height     int
	camera     rl.Camera2D
	background rl.Color
}

// NewSurface creates an unconfigured surface that clears to background.
func NewSurface(background color.RGBA) *Surface {
	return &Surface{
		background: background,
		camera:     rl.Camera2D{Zoom: 1},
	}
}

// Configure implements field.Surface. The texture is reallocated only when
// the pixel size changes.
func (s *Surface) Configure(pixelWidth, pixelHeight int, scale float32) error {
	if !rl.IsWindowReady() {
		return ErrNoWindow
	}

	if s.loaded && (pixelWidth != s.width || pixelHeight != s.height) {
		rl.UnloadRenderTexture(s.target)
		s.loaded = false
	}
	if !s.loaded {
		target := rl.LoadRenderTexture(int32(pixelWidth), int32(pixelHeight))
		if target.ID == 0 {
			return fmt.Errorf("renderer: allocating %dx%d render texture failed", pixelWidth, pixelHeight)
		}
		rl.SetTextureFilter(target.Texture, rl.FilterBilinear)
		s.target = target
		s.loaded = true
	}

	s.width, s.height = pixelWidth, pixelHeight
	s.camera = rl.Camera2D{Zoom: scale}
	return nil
}

// Clear implements field.Surface.
func (s *Surface) Clear() {
	if !s.loaded {
		return
	}
	rl.BeginTextureMode(s.target)
	rl.ClearBackground(s.background)
	rl.EndTextureMode()
}

// FillCircles implements field.Surface. Each particle gets a soft halo of
// Glow logical px under its solid core.
func (s *Surface) FillCircles(style field.ParticleStyle, circles []field.Circle) {
	if !s.loaded || len(circles) == 0 {
		return
	}

	core := style.RGBA()

	rl.BeginTextureMode(s.target)
	rl.BeginMode2D(s.camera)
	if style.Blend == field.BlendAdditive {
		rl.BeginBlendMode(rl.BlendAdditive)
	}

	if style.Glow > 0 {
		for _, layer := range glowLayers {
			halo := core
			halo.A = uint8(float32(core.A) * layer[1])
			for _, c := range circles {
				rl.DrawCircleV(rl.Vector2{X: c.X, Y: c.Y}, c.R+style.Glow*layer[0], halo)
			}
		}
	}
	for _, c := range circles {
		rl.DrawCircleV(rl.Vector2{X: c.X, Y: c.Y}, c.R, core)
	}

	if style.Blend == field.BlendAdditive {
		rl.EndBlendMode()
	}
	rl.EndMode2D()
	rl.EndTextureMode()
}

// StrokePath implements field.Surface. All segments go into one GL line
// batch, flushed once by EndMode2D.
func (s *Surface) StrokePath(style field.LineStyle, segments []field.Segment) {
	if !s.loaded || len(segments) == 0 {
		return
	}

	c := style.RGBA()
	width := style.Width * s.camera.Zoom
	if width < 1 {
		// GL lines are at least one pixel; fold the rest into alpha
		c.A = uint8(float32(c.A) * width)
		width = 1
	}

	rl.BeginTextureMode(s.target)
	rl.BeginMode2D(s.camera)
	rl.SetLineWidth(width)

	rl.Begin(rl.Lines)
	rl.Color4ub(c.R, c.G, c.B, c.A)
	for _, seg := range segments {
		rl.Vertex2f(seg.X1, seg.Y1)
		rl.Vertex2f(seg.X2, seg.Y2)
	}
	rl.End()

	rl.EndMode2D()
	rl.SetLineWidth(1)
	rl.EndTextureMode()
}

// Present draws the surface onto the current framebuffer, stretched to
// width x height screen units. Call between BeginDrawing and EndDrawing.
func (s *Surface) Present(width, height float32) {
	if !s.loaded {
		return
	}
	// Render textures are stored bottom-up
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(s.width), Height: -float32(s.height)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: width, Height: height}
	rl.DrawTexturePro(s.target.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

// PixelSize returns the backing texture size.
func (s *Surface) PixelSize() (width, height int) {
	return s.width, s.height
}

// Unload frees the render texture.
func (s *Surface) Unload() {
	if s.loaded {
		rl.UnloadRenderTexture(s.target)
		s.loaded = false
	}
}

var _ field.Surface = (*Surface)(nil)
