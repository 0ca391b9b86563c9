package core

// Grid is a fixed-size board of cells. The zero value of T means the cell is empty.
type Grid[T comparable] struct {
	width  int
	height int
	rows   [][]T
}

// NewGrid allocates an empty width x height grid.
func NewGrid[T comparable](width, height int) *Grid[T] {
	g := &Grid[T]{width: width, height: height}
	g.rows = make([][]T, height)
	for y := range g.rows {
		g.rows[y] = make([]T, width)
	}
	return g
}

// Width returns the number of columns.
func (g *Grid[T]) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid[T]) Height() int { return g.height }

// InBounds reports whether p lies on the grid.
func (g *Grid[T]) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// At returns the cell at p, or the zero value when p is off the grid.
func (g *Grid[T]) At(p Point) T {
	var zero T
	if !g.InBounds(p) {
		return zero
	}
	return g.rows[p.Y][p.X]
}

// Set writes v at p. Off-grid writes are ignored.
func (g *Grid[T]) Set(p Point, v T) {
	if !g.InBounds(p) {
		return
	}
	g.rows[p.Y][p.X] = v
}

// Occupied reports whether the cell at p holds a non-zero value.
func (g *Grid[T]) Occupied(p Point) bool {
	var zero T
	return g.At(p) != zero
}

// Fits reports whether shape s placed with its top-left corner at origin is
// inside the side and bottom walls and overlaps no occupied cell. Cells above
// the top row are allowed so pieces may enter from above.
func (g *Grid[T]) Fits(s Shape, origin Point) bool {
	for _, c := range s.Cells(origin) {
		if c.X < 0 || c.X >= g.width || c.Y >= g.height {
			return false
		}
		if c.Y >= 0 && g.Occupied(c) {
			return false
		}
	}
	return true
}

// RowFull reports whether row y has no empty cells.
func (g *Grid[T]) RowFull(y int) bool {
	var zero T
	for _, v := range g.rows[y] {
		if v == zero {
			return false
		}
	}
	return true
}

// ClearFullRows removes every full row, shifts the remaining rows down keeping
// their relative order and inserts the same number of empty rows at the top.
// It returns the number of rows removed.
func (g *Grid[T]) ClearFullRows() int {
	kept := make([][]T, 0, g.height)
	for y := range g.rows {
		if !g.RowFull(y) {
			kept = append(kept, g.rows[y])
		}
	}
	cleared := g.height - len(kept)
	if cleared == 0 {
		return 0
	}
	rows := make([][]T, 0, g.height)
	for range cleared {
		rows = append(rows, make([]T, g.width))
	}
	g.rows = append(rows, kept...)
	return cleared
}

// Clone returns a deep copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	c := NewGrid[T](g.width, g.height)
	for y := range g.rows {
		copy(c.rows[y], g.rows[y])
	}
	return c
}

// Equal reports whether both grids have the same size and cell contents.
func (g *Grid[T]) Equal(other *Grid[T]) bool {
	if g.width != other.width || g.height != other.height {
		return false
	}
	for y := range g.rows {
		for x := range g.rows[y] {
			if g.rows[y][x] != other.rows[y][x] {
				return false
			}
		}
	}
	return true
}

// Count returns the number of occupied cells.
func (g *Grid[T]) Count() int {
	var zero T
	n := 0
	for y := range g.rows {
		for _, v := range g.rows[y] {
			if v != zero {
				n++
			}
		}
	}
	return n
}
