package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/blocks.yaml
var defaultBlocksYAML []byte

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

//go:embed defaults/dodge.yaml
var defaultDodgeYAML []byte

// DefaultBlocksConfig returns the default falling-block configuration.
func DefaultBlocksConfig() BlocksConfig {
	return BlocksConfig{
		Board: BlocksBoard{
			Width:     10,
			Height:    19,
			Lookahead: 2,
		},
		Timing: BlocksTiming{
			InitialDrop:     700 * time.Millisecond,
			MinDrop:         80 * time.Millisecond,
			LevelStep:       80 * time.Millisecond,
			SoftDropMin:     50 * time.Millisecond,
			SoftDropDivisor: 10,
		},
		Scoring: BlocksScoring{
			PointsPerLine: 50,
			LinesPerLevel: 10,
		},
		Reward: RewardConfig{GoldPerPoint: 1},
		Difficulty: DifficultyConfig{
			Enabled: true,
		},
	}
}

// DefaultSnakeConfig returns the default snake configuration.
func DefaultSnakeConfig() SnakeConfig {
	return SnakeConfig{
		Grid: SnakeGrid{
			Width:  15,
			Height: 21,
			StartX: 7,
			StartY: 10,
		},
		Timing:  SnakeTiming{Move: 200 * time.Millisecond},
		Scoring: SnakeScoring{PointsPerFood: 10},
		Reward:  RewardConfig{GoldPerPoint: 1},
	}
}

// DefaultDodgeConfig returns the default dodge configuration.
func DefaultDodgeConfig() DodgeConfig {
	return DodgeConfig{
		Board: DodgeBoard{
			Width:    200,
			Height:   200,
			CellSize: 10,
		},
		Player: DodgePlayer{
			Width:        20,
			Height:       10,
			BottomMargin: 10,
			Step:         10,
		},
		Obstacles: DodgeObstacles{
			Width:              10,
			Height:             10,
			BaseFallSpeed:      3,
			FallSpeedPerTier:   1,
			BaseSpawnChance:    0.08,
			SpawnChancePerTier: 0.04,
			MaxSpawnChance:     0.6,
		},
		Timing: DodgeTiming{
			Tick:   50 * time.Millisecond,
			Repeat: 60 * time.Millisecond,
			Clock:  time.Second,
		},
		Reward: RewardConfig{GoldPerPoint: 2},
		Difficulty: DifficultyConfig{
			Enabled:        true,
			SecondsPerTier: 10,
			MaxTier:        10,
		},
	}
}
