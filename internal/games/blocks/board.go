package blocks

import (
	"errors"
	"strings"

	"github.com/vovakirdan/pet-arcade/internal/core"
)

// ErrLockConflict means a lock would write outside the board or over a
// placed cell. The run cannot continue from such a state.
var ErrLockConflict = errors.New("blocks: lock footprint conflicts with board")

// Board is the playfield of placed cells.
type Board = core.Grid[PieceType]

// NewBoard creates an empty width x height board.
func NewBoard(width, height int) *Board {
	return core.NewGrid[PieceType](width, height)
}

// Fits reports whether p can occupy its position on b.
func Fits(b *Board, p Piece) bool {
	return b.Fits(p.Shape, p.Pos)
}

// Lock writes p's footprint into b with p's tag. Every other cell is left
// untouched. If any footprint cell is off the board or already occupied the
// board is not modified and ErrLockConflict is returned.
func Lock(b *Board, p Piece) error {
	cells := p.Cells()
	for _, c := range cells {
		if !b.InBounds(c) || b.Occupied(c) {
			return ErrLockConflict
		}
	}
	for _, c := range cells {
		b.Set(c, p.Type)
	}
	return nil
}

// ClearLines removes every full row and returns how many were removed.
func ClearLines(b *Board) int {
	return b.ClearFullRows()
}

// DropDistance returns how many rows p can fall before it would collide.
func DropDistance(b *Board, p Piece) int {
	n := 0
	for Fits(b, p.Moved(0, n+1)) {
		n++
	}
	return n
}

// FormatBoard renders b one row per line, using piece letters and '.' for empty.
func FormatBoard(b *Board) string {
	var sb strings.Builder
	for y := range b.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range b.Width() {
			sb.WriteString(b.At(core.Point{X: x, Y: y}).String())
		}
	}
	return sb.String()
}
