// Package systems contains the per-frame particle field systems.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/constellation/components"
)

// Bounds represents the logical canvas rectangle.
type Bounds struct {
	Width, Height float32
}

// MotionSystem advances particle positions and snapshots them by slot index.
type MotionSystem struct {
	filter *ecs.Filter4[components.Position, components.Velocity, components.Body, components.Slot]
	bounds Bounds
	margin float32
}

// NewMotionSystem creates a motion system over the given world.
func NewMotionSystem(w *ecs.World, bounds Bounds, margin float32) *MotionSystem {
	return &MotionSystem{
		filter: ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Slot](w),
		bounds: bounds,
		margin: margin,
	}
}

// SetBounds updates the canvas rectangle used for wrapping and clamping.
func (s *MotionSystem) SetBounds(bounds Bounds) {
	s.bounds = bounds
}

// Bounds returns the current canvas rectangle.
func (s *MotionSystem) Bounds() Bounds {
	return s.bounds
}

// Update integrates and wraps every particle, then writes its position and
// radius into points and radii at its slot index. Both slices must have
// length equal to the particle count.
func (s *MotionSystem) Update(points []Point, radii []float32) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, body, slot := query.Get()

		Integrate(pos, *vel)
		Wrap(pos, s.bounds.Width, s.bounds.Height, s.margin)

		points[slot.Index] = Point{X: pos.X, Y: pos.Y}
		radii[slot.Index] = body.Radius
	}
}

// Snapshot writes current positions and radii without moving anything.
func (s *MotionSystem) Snapshot(points []Point, radii []float32) {
	query := s.filter.Query()
	for query.Next() {
		pos, _, body, slot := query.Get()
		points[slot.Index] = Point{X: pos.X, Y: pos.Y}
		radii[slot.Index] = body.Radius
	}
}

// Place moves particles to the given positions, indexed by slot.
// Velocities are left untouched.
func (s *MotionSystem) Place(points []Point) {
	query := s.filter.Query()
	for query.Next() {
		pos, _, _, slot := query.Get()
		if slot.Index < len(points) {
			pos.X = points[slot.Index].X
			pos.Y = points[slot.Index].Y
		}
	}
}

// ClampAll pulls every particle into the current bounds.
func (s *MotionSystem) ClampAll() {
	query := s.filter.Query()
	for query.Next() {
		pos, _, _, _ := query.Get()
		Clamp(pos, s.bounds.Width, s.bounds.Height)
	}
}

// Integrate advances a position by one frame of velocity.
func Integrate(pos *components.Position, vel components.Velocity) {
	pos.X += vel.X
	pos.Y += vel.Y
}

// Wrap teleports a particle that left the canvas by more than margin to just
// past the opposite edge. The result always lies in
// [-margin, width+margin] x [-margin, height+margin].
func Wrap(pos *components.Position, width, height, margin float32) {
	if pos.X < -margin {
		pos.X = width + margin
	} else if pos.X > width+margin {
		pos.X = -margin
	}
	if pos.Y < -margin {
		pos.Y = height + margin
	} else if pos.Y > height+margin {
		pos.Y = -margin
	}
}

// Clamp pulls a position into [0, width] x [0, height]. Relative layout is not
// preserved; particles outside simply land on the nearest edge.
func Clamp(pos *components.Position, width, height float32) {
	pos.X = clampFloat(pos.X, 0, width)
	pos.Y = clampFloat(pos.Y, 0, height)
}
