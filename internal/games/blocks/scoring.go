package blocks

import (
	"time"

	"github.com/vovakirdan/pet-arcade/internal/config"
)

// The functions in this file are side-effect free so a validator can
// recompute a run's score from its inputs.

// LineScore returns the points awarded for clearing lines at once.
func LineScore(lines, pointsPerLine int) int {
	return lines * pointsPerLine
}

// LevelFor returns the level reached after totalLines cleared lines.
func LevelFor(totalLines, linesPerLevel int) int {
	if linesPerLevel <= 0 {
		return 1
	}
	return totalLines/linesPerLevel + 1
}

// DropInterval returns the gravity interval at level:
// initial minus one step per level above the first, floored at the minimum.
func DropInterval(level int, t config.BlocksTiming) time.Duration {
	d := t.InitialDrop - time.Duration(level-1)*t.LevelStep
	return max(d, t.MinDrop)
}

// SoftDropInterval returns the accelerated gravity interval used while soft
// dropping: max(SoftDropMin, drop/SoftDropDivisor).
func SoftDropInterval(drop time.Duration, t config.BlocksTiming) time.Duration {
	div := t.SoftDropDivisor
	if div <= 0 {
		div = 1
	}
	return max(t.SoftDropMin, drop/time.Duration(div))
}
