package components

// Body holds the drawn size of a particle. Fixed for the particle's lifetime.
type Body struct {
	Radius float32
}

// Slot records a particle's global index within its mount (0..count-1).
// Pair search orders particles by this index to skip self and duplicate pairs.
type Slot struct {
	Index int
}
