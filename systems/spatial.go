package systems

import "sort"

// Point is a particle position snapshot, indexed by slot.
type Point struct {
	X, Y float32
}

// Pair is a connection between two particles, always with I < J.
type Pair struct {
	I, J int
}

// SpatialGrid buckets particle indices into square cells so that a
// proximity search only has to look at a cell and its 8 neighbours.
//
// The grid covers [-margin, width+margin] x [-margin, height+margin], the
// full range a wrapped particle can occupy. With cellSize equal to the
// connection radius, two particles within that radius always sit in the same
// or Chebyshev-adjacent cells.
//
// Cell indices are computed in float64 with buckets a hair wider than
// cellSize, so a pair accepted by a float32 distance test against
// cellSize squared is never split across non-adjacent cells.
type SpatialGrid struct {
	cellSize float32
	bucket   float64 // cellSize widened by cellSlack
	originX  float64
	originY  float64
	cols     int
	rows     int
	cells    [][]int // flat grid of particle index lists
	occupied int
}

// NewSpatialGrid creates a spatial grid covering the given canvas plus margin.
func NewSpatialGrid(width, height, margin, cellSize float32) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &SpatialGrid{
		cellSize: cellSize,
		bucket:   float64(cellSize) * (1 + cellSlack),
	}
	g.Resize(width, height, margin)
	return g
}

// Resize recomputes the grid extents for a new canvas size and clears it.
// Cell storage is reused when the cell count does not grow.
func (g *SpatialGrid) Resize(width, height, margin float32) {
	g.originX = -float64(margin)
	g.originY = -float64(margin)
	g.cols = floorDiv(float64(width)-2*g.originX, g.bucket) + 1
	g.rows = floorDiv(float64(height)-2*g.originY, g.bucket) + 1

	n := g.cols * g.rows
	if cap(g.cells) >= n {
		g.cells = g.cells[:n]
	} else {
		cells := make([][]int, n)
		copy(cells, g.cells)
		g.cells = cells
	}
	g.Clear()
}

// Clear removes all particles from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.occupied = 0
}

// CellSize returns the cell edge length.
func (g *SpatialGrid) CellSize() float32 {
	return g.cellSize
}

// Dims returns the number of rows and columns.
func (g *SpatialGrid) Dims() (rows, cols int) {
	return g.rows, g.cols
}

// OccupiedCells returns how many cells hold at least one particle.
func (g *SpatialGrid) OccupiedCells() int {
	return g.occupied
}

// Cell returns the row and column holding (x, y). ok is false when the
// position lies outside the grid extents.
func (g *SpatialGrid) Cell(x, y float32) (row, col int, ok bool) {
	col = floorDiv(float64(x)-g.originX, g.bucket)
	row = floorDiv(float64(y)-g.originY, g.bucket)
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return row, col, false
	}
	return row, col, true
}

// Insert adds particle i at (x, y). Positions outside the extents are
// dropped and Insert returns false.
func (g *SpatialGrid) Insert(i int, x, y float32) bool {
	row, col, ok := g.Cell(x, y)
	if !ok {
		return false
	}
	idx := row*g.cols + col
	if len(g.cells[idx]) == 0 {
		g.occupied++
	}
	g.cells[idx] = append(g.cells[idx], i)
	return true
}

// Rebuild clears the grid and inserts every point by its index.
// Returns the number of points that fell outside the extents.
func (g *SpatialGrid) Rebuild(points []Point) int {
	g.Clear()
	dropped := 0
	for i, p := range points {
		if !g.Insert(i, p.X, p.Y) {
			dropped++
		}
	}
	return dropped
}

// PairsWithin appends every pair of particles whose squared distance is at
// most radiusSq and returns the extended slice. Each pair appears once with
// I < J. The grid must have been rebuilt from the same points, and radiusSq
// must not exceed CellSize squared.
func (g *SpatialGrid) PairsWithin(dst []Pair, points []Point, radiusSq float32) []Pair {
	for row := 0; row < g.rows; row++ {
		r0 := max(row-1, 0)
		r1 := min(row+1, g.rows-1)

		for col := 0; col < g.cols; col++ {
			cell := g.cells[row*g.cols+col]
			if len(cell) == 0 {
				continue
			}
			c0 := max(col-1, 0)
			c1 := min(col+1, g.cols-1)

			for _, i := range cell {
				p := points[i]
				for nr := r0; nr <= r1; nr++ {
					for nc := c0; nc <= c1; nc++ {
						for _, j := range g.cells[nr*g.cols+nc] {
							// Ordered by global index: skips self and the mirrored pair
							if j <= i {
								continue
							}
							dx := p.X - points[j].X
							dy := p.Y - points[j].Y
							if dx*dx+dy*dy <= radiusSq {
								dst = append(dst, Pair{I: i, J: j})
							}
						}
					}
				}
			}
		}
	}
	return dst
}

// BruteForcePairs is the O(n^2) reference for PairsWithin.
func BruteForcePairs(dst []Pair, points []Point, radiusSq float32) []Pair {
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			dx := points[i].X - points[j].X
			dy := points[i].Y - points[j].Y
			if dx*dx+dy*dy <= radiusSq {
				dst = append(dst, Pair{I: i, J: j})
			}
		}
	}
	return dst
}

// SortPairs orders pairs by I then J, for comparing pair sets.
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].I != pairs[b].I {
			return pairs[a].I < pairs[b].I
		}
		return pairs[a].J < pairs[b].J
	})
}

// Degrees counts connections per particle into dst (resized to n).
func Degrees(dst []int, pairs []Pair, n int) []int {
	if cap(dst) < n {
		dst = make([]int, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = 0
	}
	for _, p := range pairs {
		dst[p.I]++
		dst[p.J]++
	}
	return dst
}
