package core

// Shape is a rectangular occupancy matrix indexed [row][col].
// A true cell is part of the shape.
type Shape [][]bool

// ParseShape builds a shape from rows of '#' (filled) and '.' (empty).
func ParseShape(rows ...string) Shape {
	s := make(Shape, len(rows))
	for y, row := range rows {
		s[y] = make([]bool, len(row))
		for x, ch := range row {
			s[y][x] = ch == '#'
		}
	}
	return s
}

// Width returns the number of columns.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Height returns the number of rows.
func (s Shape) Height() int {
	return len(s)
}

// Cells returns the filled cells of s translated by origin, in row-major order.
func (s Shape) Cells(origin Point) []Point {
	cells := make([]Point, 0, 4)
	for y, row := range s {
		for x, filled := range row {
			if filled {
				cells = append(cells, Point{X: origin.X + x, Y: origin.Y + y})
			}
		}
	}
	return cells
}

// RotateCW returns s rotated 90 degrees clockwise: the matrix is transposed
// and each resulting row reversed. The receiver is not modified.
func (s Shape) RotateCW() Shape {
	h, w := s.Height(), s.Width()
	out := make(Shape, w)
	for y := range w {
		out[y] = make([]bool, h)
		for x := range h {
			// transpose gives out[y][x] = s[x][y]; reversing the row mirrors x.
			out[y][x] = s[h-1-x][y]
		}
	}
	return out
}

// Equal reports whether two shapes have identical dimensions and cells.
func (s Shape) Equal(other Shape) bool {
	if s.Height() != other.Height() || s.Width() != other.Width() {
		return false
	}
	for y := range s {
		for x := range s[y] {
			if s[y][x] != other[y][x] {
				return false
			}
		}
	}
	return true
}

// String renders the shape with '#' and '.' rows separated by '/'.
func (s Shape) String() string {
	b := make([]byte, 0, s.Height()*(s.Width()+1))
	for y, row := range s {
		if y > 0 {
			b = append(b, '/')
		}
		for _, filled := range row {
			if filled {
				b = append(b, '#')
			} else {
				b = append(b, '.')
			}
		}
	}
	return string(b)
}
