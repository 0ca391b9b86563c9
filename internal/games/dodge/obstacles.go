package dodge

import (
	"math/rand"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
)

// Obstacle is a falling box the player must avoid.
type Obstacle struct {
	ID    int
	X, Y  int // top-left, board units
	W, H  int
	Speed int // units per tick
}

// Rect returns the collision rectangle for this obstacle.
func (o Obstacle) Rect() core.Rect {
	return core.NewRect(o.X, o.Y, o.W, o.H)
}

// ObstacleManager handles spawning, falling and removal of obstacles.
type ObstacleManager struct {
	obstacles []Obstacle
	rng       *rand.Rand
	cfg       *config.DodgeConfig
	nextID    int
	dodged    int
}

// NewObstacleManager creates an empty manager drawing from rng.
func NewObstacleManager(rng *rand.Rand, cfg *config.DodgeConfig) *ObstacleManager {
	return &ObstacleManager{
		obstacles: make([]Obstacle, 0, 16),
		rng:       rng,
		cfg:       cfg,
	}
}

// Fall moves every obstacle down by its speed, then removes those that left
// the board through the bottom edge. It returns how many were removed; each
// obstacle is counted once since it is gone afterwards.
func (om *ObstacleManager) Fall() int {
	for i := range om.obstacles {
		om.obstacles[i].Y += om.obstacles[i].Speed
	}

	bottom := om.cfg.Board.Height
	kept := om.obstacles[:0]
	removed := 0
	for _, o := range om.obstacles {
		if o.Y >= bottom {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	om.obstacles = kept
	om.dodged += removed
	return removed
}

// SpawnChance returns the per-tick spawn probability at tier.
func (om *ObstacleManager) SpawnChance(tier int) float64 {
	o := om.cfg.Obstacles
	return config.ScaleF(o.BaseSpawnChance, o.SpawnChancePerTier, tier, o.MaxSpawnChance)
}

// FallSpeed returns the speed given to obstacles spawned at tier.
func (om *ObstacleManager) FallSpeed(tier int) int {
	o := om.cfg.Obstacles
	return max(1, config.Scale(o.BaseFallSpeed, o.FallSpeedPerTier, tier))
}

// MaybeSpawn rolls the spawn chance for tier and, on success, adds an
// obstacle just above the board at a random column.
func (om *ObstacleManager) MaybeSpawn(tier int) bool {
	if om.rng.Float64() >= om.SpawnChance(tier) {
		return false
	}
	o := om.cfg.Obstacles
	span := max(1, om.cfg.Board.Width-o.Width+1)
	om.nextID++
	om.obstacles = append(om.obstacles, Obstacle{
		ID:    om.nextID,
		X:     om.rng.Intn(span),
		Y:     -o.Height,
		W:     o.Width,
		H:     o.Height,
		Speed: om.FallSpeed(tier),
	})
	return true
}

// Hit reports whether any on-board obstacle overlaps r.
func (om *ObstacleManager) Hit(r core.Rect) bool {
	for _, o := range om.obstacles {
		if r.Intersects(o.Rect()) {
			return true
		}
	}
	return false
}

// Obstacles returns the obstacles currently on the board.
func (om *ObstacleManager) Obstacles() []Obstacle {
	return om.obstacles
}

// Dodged returns how many obstacles have left the board.
func (om *ObstacleManager) Dodged() int {
	return om.dodged
}
