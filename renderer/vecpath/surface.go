// Package vecpath draws the particle field with Ebitengine's vector paths.
// It is kept apart from package renderer because both backends link their
// own GLFW.
package vecpath

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/pthm-cable/constellation/field"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Surface is a field.Surface backed by an offscreen ebiten.Image in
// physical pixels.
type Surface struct {
	img        *ebiten.Image
	scale      float32
	background color.RGBA

	vertices []ebiten.Vertex
	indices  []uint16
}

// NewSurface creates an unconfigured surface that clears to background.
func NewSurface(background color.RGBA) *Surface {
	return &Surface{background: background, scale: 1}
}

// Configure implements field.Surface.
func (s *Surface) Configure(pixelWidth, pixelHeight int, scale float32) error {
	if s.img != nil {
		b := s.img.Bounds()
		if b.Dx() != pixelWidth || b.Dy() != pixelHeight {
			s.img.Deallocate()
			s.img = nil
		}
	}
	if s.img == nil {
		s.img = ebiten.NewImage(pixelWidth, pixelHeight)
	}
	s.scale = scale
	return nil
}

// Image returns the backing image, or nil before Configure.
func (s *Surface) Image() *ebiten.Image {
	return s.img
}

// Clear implements field.Surface.
func (s *Surface) Clear() {
	if s.img == nil {
		return
	}
	s.img.Fill(s.background)
}

// FillCircles implements field.Surface. The glow is one extra translucent
// disc per particle.
func (s *Surface) FillCircles(style field.ParticleStyle, circles []field.Circle) {
	if s.img == nil || len(circles) == 0 {
		return
	}

	blend := ebiten.BlendSourceOver
	if style.Blend == field.BlendAdditive {
		blend = ebiten.BlendLighter
	}

	if style.Glow > 0 {
		var halo vector.Path
		for _, c := range circles {
			s.arc(&halo, c.X, c.Y, c.R+style.Glow*0.5)
		}
		glow := style
		glow.Alpha *= 0.2
		s.fill(&halo, glow.RGBA(), blend)
	}

	var path vector.Path
	for _, c := range circles {
		s.arc(&path, c.X, c.Y, c.R)
	}
	s.fill(&path, style.RGBA(), blend)
}

func (s *Surface) arc(p *vector.Path, x, y, r float32) {
	k := s.scale
	p.MoveTo((x+r)*k, y*k)
	p.Arc(x*k, y*k, r*k, 0, 2*math.Pi, vector.Clockwise)
	p.Close()
}

func (s *Surface) fill(p *vector.Path, c color.RGBA, blend ebiten.Blend) {
	s.vertices, s.indices = p.AppendVerticesAndIndicesForFilling(s.vertices[:0], s.indices[:0])
	s.draw(c, blend)
}

// StrokePath implements field.Surface. Every segment is a subpath of one
// vector.Path stroked in a single DrawTriangles call.
func (s *Surface) StrokePath(style field.LineStyle, segments []field.Segment) {
	if s.img == nil || len(segments) == 0 {
		return
	}

	k := s.scale
	var path vector.Path
	for _, seg := range segments {
		path.MoveTo(seg.X1*k, seg.Y1*k)
		path.LineTo(seg.X2*k, seg.Y2*k)
	}

	op := &vector.StrokeOptions{Width: style.Width * k}
	s.vertices, s.indices = path.AppendVerticesAndIndicesForStroke(s.vertices[:0], s.indices[:0], op)
	s.draw(style.RGBA(), ebiten.BlendSourceOver)
}

func (s *Surface) draw(c color.RGBA, blend ebiten.Blend) {
	// Vertex colours are premultiplied
	a := float32(c.A) / 0xff
	r := float32(c.R) / 0xff * a
	g := float32(c.G) / 0xff * a
	b := float32(c.B) / 0xff * a
	for i := range s.vertices {
		v := &s.vertices[i]
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = r, g, b, a
	}

	op := &ebiten.DrawTrianglesOptions{Blend: blend, AntiAlias: true}
	s.img.DrawTriangles(s.vertices, s.indices, whiteSubImage, op)
}

var _ field.Surface = (*Surface)(nil)
