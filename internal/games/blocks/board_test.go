package blocks

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
)

func fillRow(b *Board, y int, skip ...int) {
	holes := make(map[int]bool, len(skip))
	for _, x := range skip {
		holes[x] = true
	}
	for x := range b.Width() {
		if !holes[x] {
			b.Set(core.Point{X: x, Y: y}, PieceI)
		}
	}
}

func TestLockWritesExactFootprint(t *testing.T) {
	b := NewBoard(10, 19)
	p := Spawn(PieceT, 10).Moved(0, 5)

	if err := Lock(b, p); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	want := map[core.Point]bool{}
	for _, c := range p.Cells() {
		want[c] = true
	}
	for y := range b.Height() {
		for x := range b.Width() {
			pt := core.Point{X: x, Y: y}
			got := b.At(pt)
			switch {
			case want[pt] && got != PieceT:
				t.Errorf("cell %v = %v, want T", pt, got)
			case !want[pt] && got != Empty:
				t.Errorf("cell %v = %v, want empty", pt, got)
			}
		}
	}
}

func TestLockConflictLeavesBoardUntouched(t *testing.T) {
	b := NewBoard(10, 19)
	b.Set(core.Point{X: 5, Y: 1}, PieceZ)
	before := b.Clone()

	err := Lock(b, Spawn(PieceT, 10))
	if !errors.Is(err, ErrLockConflict) {
		t.Fatalf("Lock error = %v, want ErrLockConflict", err)
	}
	if !b.Equal(before) {
		t.Error("board changed after rejected lock")
	}

	if err := Lock(b, Spawn(PieceI, 10).Moved(0, 19)); !errors.Is(err, ErrLockConflict) {
		t.Errorf("off-board lock error = %v", err)
	}
}

func TestClearLines(t *testing.T) {
	tests := []struct {
		name string
		full []int
		want int
	}{
		{"none", nil, 0},
		{"single", []int{18}, 1},
		{"double", []int{17, 18}, 2},
		{"split", []int{10, 18}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBoard(10, 19)
			b.Set(core.Point{X: 0, Y: 16}, PieceO) // marker above the full rows
			for _, y := range tc.full {
				fillRow(b, y)
			}

			if got := ClearLines(b); got != tc.want {
				t.Fatalf("ClearLines = %d, want %d", got, tc.want)
			}
			if b.Count() != 1 {
				t.Errorf("Count = %d, want only the marker", b.Count())
			}

			shift := 0
			for _, y := range tc.full {
				if y > 16 {
					shift++
				}
			}
			if b.At(core.Point{X: 0, Y: 16 + shift}) != PieceO {
				t.Errorf("marker not shifted down by %d rows:\n%s", shift, FormatBoard(b))
			}
		})
	}
}

func TestClearLinesKeepsPartialRows(t *testing.T) {
	b := NewBoard(4, 4)
	fillRow(b, 3)
	fillRow(b, 2, 1)

	if n := ClearLines(b); n != 1 {
		t.Fatalf("ClearLines = %d, want 1", n)
	}
	want := "....\n....\n....\nI.II"
	if got := FormatBoard(b); got != want {
		t.Errorf("board =\n%s\nwant\n%s", got, want)
	}
}

func TestDropDistance(t *testing.T) {
	b := NewBoard(10, 19)
	p := Spawn(PieceO, 10)
	if d := DropDistance(b, p); d != 17 {
		t.Errorf("empty board drop = %d, want 17", d)
	}

	b.Set(core.Point{X: 4, Y: 10}, PieceI)
	if d := DropDistance(b, p); d != 8 {
		t.Errorf("blocked drop = %d, want 8", d)
	}
}

func TestRotateCWShapes(t *testing.T) {
	got := ShapeOf(PieceI).RotateCW()
	if got.Width() != 1 || got.Height() != 4 {
		t.Errorf("rotated I is %dx%d, want 1x4", got.Width(), got.Height())
	}
	if !ShapeOf(PieceO).RotateCW().Equal(ShapeOf(PieceO)) {
		t.Error("O should be rotation invariant")
	}
	if s := ShapeOf(PieceT).RotateCW().String(); s != "#./##/#." {
		t.Errorf("rotated T = %q", s)
	}
}

func TestQueueLookahead(t *testing.T) {
	q := NewQueue(rand.New(rand.NewSource(7)), 2)
	peek := q.Peek()
	if len(peek) != 2 {
		t.Fatalf("Peek len = %d, want 2", len(peek))
	}
	if got := q.Next(); got != peek[0] {
		t.Errorf("Next = %v, want %v", got, peek[0])
	}
	if q.Peek()[0] != peek[1] {
		t.Error("queue did not shift")
	}
	if len(q.Peek()) != 2 {
		t.Error("queue did not refill")
	}
}

func TestScoringFunctions(t *testing.T) {
	timing := config.DefaultBlocksConfig().Timing

	if got := LineScore(4, 50); got != 200 {
		t.Errorf("LineScore(4) = %d", got)
	}
	if got := LevelFor(9, 10); got != 1 {
		t.Errorf("LevelFor(9) = %d, want 1", got)
	}
	if got := LevelFor(10, 10); got != 2 {
		t.Errorf("LevelFor(10) = %d, want 2", got)
	}
	if got := DropInterval(2, timing); got != 620*time.Millisecond {
		t.Errorf("DropInterval(2) = %v", got)
	}
	if got := DropInterval(50, timing); got != timing.MinDrop {
		t.Errorf("DropInterval(50) = %v, want floor %v", got, timing.MinDrop)
	}
	if got := SoftDropInterval(700*time.Millisecond, timing); got != 70*time.Millisecond {
		t.Errorf("SoftDropInterval(700ms) = %v", got)
	}
	if got := SoftDropInterval(80*time.Millisecond, timing); got != 50*time.Millisecond {
		t.Errorf("SoftDropInterval(80ms) = %v, want floor", got)
	}
}
