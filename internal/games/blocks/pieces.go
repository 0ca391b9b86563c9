package blocks

import (
	"math/rand"

	"github.com/vovakirdan/pet-arcade/internal/core"
)

// PieceType tags a tetromino. The zero value marks an empty board cell.
type PieceType uint8

const (
	Empty PieceType = iota
	PieceI
	PieceO
	PieceT
	PieceS
	PieceZ
	PieceJ
	PieceL
)

// AllPieces lists the seven playable piece types.
var AllPieces = []PieceType{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}

var shapes = map[PieceType]core.Shape{
	PieceI: core.ParseShape("####"),
	PieceO: core.ParseShape("##", "##"),
	PieceT: core.ParseShape(".#.", "###"),
	PieceS: core.ParseShape(".##", "##."),
	PieceZ: core.ParseShape("##.", ".##"),
	PieceJ: core.ParseShape("#..", "###"),
	PieceL: core.ParseShape("..#", "###"),
}

var pieceColors = map[PieceType]core.Color{
	PieceI: core.ColorBrightCyan,
	PieceO: core.ColorBrightYellow,
	PieceT: core.ColorMagenta,
	PieceS: core.ColorBrightGreen,
	PieceZ: core.ColorBrightRed,
	PieceJ: core.ColorBlue,
	PieceL: core.ColorOrange,
}

// String returns the piece letter.
func (t PieceType) String() string {
	if t == Empty {
		return "."
	}
	if t > PieceL {
		return "?"
	}
	return string("IOTSZJL"[t-1])
}

// Color returns the render color of the piece.
func (t PieceType) Color() core.Color {
	return pieceColors[t]
}

// ShapeOf returns the spawn orientation of a piece type.
func ShapeOf(t PieceType) core.Shape {
	return shapes[t]
}

// Piece is the falling piece: a shape, its tag and its top-left board position.
type Piece struct {
	Type  PieceType
	Shape core.Shape
	Pos   core.Point
}

// Spawn places a new piece of type t at the top center of a board boardW wide.
func Spawn(t PieceType, boardW int) Piece {
	s := ShapeOf(t)
	return Piece{
		Type:  t,
		Shape: s,
		Pos:   core.Point{X: boardW/2 - s.Width()/2, Y: 0},
	}
}

// Moved returns a copy of p shifted by (dx, dy).
func (p Piece) Moved(dx, dy int) Piece {
	p.Pos = p.Pos.Add(core.Point{X: dx, Y: dy})
	return p
}

// Rotated returns a copy of p rotated clockwise around its top-left corner.
func (p Piece) Rotated() Piece {
	p.Shape = p.Shape.RotateCW()
	return p
}

// Cells returns the board cells the piece covers.
func (p Piece) Cells() []core.Point {
	return p.Shape.Cells(p.Pos)
}

// Queue is the lookahead of upcoming piece types. Every draw refills it so it
// never runs empty.
type Queue struct {
	rng   *rand.Rand
	items []PieceType
}

// NewQueue fills a queue of the given size from rng.
func NewQueue(rng *rand.Rand, size int) *Queue {
	q := &Queue{rng: rng, items: make([]PieceType, 0, max(size, 1))}
	for range max(size, 1) {
		q.items = append(q.items, q.draw())
	}
	return q
}

func (q *Queue) draw() PieceType {
	return AllPieces[q.rng.Intn(len(AllPieces))]
}

// Next removes the first upcoming piece and appends a fresh random one.
func (q *Queue) Next() PieceType {
	t := q.items[0]
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = q.draw()
	return t
}

// Peek returns a copy of the upcoming pieces in order.
func (q *Queue) Peek() []PieceType {
	return append([]PieceType(nil), q.items...)
}
