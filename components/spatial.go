package components

// Position represents a particle's location in logical canvas pixels.
type Position struct {
	X, Y float32
}

// Velocity represents a particle's displacement per frame.
type Velocity struct {
	X, Y float32
}
