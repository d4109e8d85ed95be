// Package field implements the particle field renderer: a frame loop that
// moves particles, finds every pair within the connection radius through a
// uniform grid, and paints particles and connections onto a Surface owned
// by a Host.
package field

import "time"

// FrameID identifies a scheduled frame callback.
type FrameID uint64

// Timer is a cancellable one-shot callback. Stop reports whether it
// prevented the callback from running; calling it again is a no-op.
type Timer interface {
	Stop() bool
}

// Host is the environment a renderer is mounted into. Every method must be
// safe to call at any time, and callbacks must run on the host's render
// goroutine, never concurrently with a frame.
type Host interface {
	// Viewport returns the logical size available to the field.
	Viewport() (width, height float32)
	// DevicePixelRatio returns physical pixels per logical pixel.
	DevicePixelRatio() float32
	Now() time.Time

	// RequestFrame schedules fn for the next display refresh.
	RequestFrame(fn func()) FrameID
	// CancelFrame drops a scheduled callback. Unknown or already-run ids are ignored.
	CancelFrame(id FrameID)
	// AfterFunc runs fn once after d on the render goroutine.
	AfterFunc(d time.Duration, fn func()) Timer
	// OnResize registers fn for viewport changes and returns a detach func.
	OnResize(fn func()) (detach func())
}

// Circle is one particle in the particle pass, in logical units.
type Circle struct {
	X, Y, R float32
}

// Segment is one connection in the connection pass, in logical units.
type Segment struct {
	X1, Y1, X2, Y2 float32
}

// Surface is a 2D drawing target. Coordinates passed to the draw calls are
// logical; the surface applies the scale given to Configure.
//
// FillCircles and StrokePath are self-contained passes: each applies its
// style before drawing and leaves no style state behind for the next pass.
type Surface interface {
	// Configure sizes the backing store in physical pixels and installs a
	// logical-to-physical scale. An error means the surface is unusable.
	Configure(pixelWidth, pixelHeight int, scale float32) error
	Clear()
	FillCircles(style ParticleStyle, circles []Circle)
	// StrokePath strokes every segment as one path with a single stroke.
	StrokePath(style LineStyle, segments []Segment)
}

// RandomSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float32() float32
}
