// Package config provides YAML-based minigame tuning, difficulty presets and
// the application configuration for the pet arcade.
package config

import "time"

// RewardConfig converts a final score into currency.
type RewardConfig struct {
	GoldPerPoint int `yaml:"gold_per_point"`
}

// BlocksConfig contains all configuration for the falling-block game.
type BlocksConfig struct {
	Board      BlocksBoard      `yaml:"board"`
	Timing     BlocksTiming     `yaml:"timing"`
	Scoring    BlocksScoring    `yaml:"scoring"`
	Reward     RewardConfig     `yaml:"reward"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// BlocksBoard defines the playfield size in cells.
type BlocksBoard struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	Lookahead int `yaml:"lookahead"`
}

// BlocksTiming defines gravity speeds.
type BlocksTiming struct {
	InitialDrop     time.Duration `yaml:"initial_drop"`
	MinDrop         time.Duration `yaml:"min_drop"`
	LevelStep       time.Duration `yaml:"level_step"`
	SoftDropMin     time.Duration `yaml:"soft_drop_min"`
	SoftDropDivisor int           `yaml:"soft_drop_divisor"`
}

// BlocksScoring defines line-clear scoring and leveling.
type BlocksScoring struct {
	PointsPerLine int `yaml:"points_per_line"`
	LinesPerLevel int `yaml:"lines_per_level"`
}

// SnakeConfig contains all configuration for the snake game.
type SnakeConfig struct {
	Grid    SnakeGrid    `yaml:"grid"`
	Timing  SnakeTiming  `yaml:"timing"`
	Scoring SnakeScoring `yaml:"scoring"`
	Reward  RewardConfig `yaml:"reward"`
}

// SnakeGrid defines the grid size and starting cell.
type SnakeGrid struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	StartX int `yaml:"start_x"`
	StartY int `yaml:"start_y"`
}

// SnakeTiming defines the movement interval.
type SnakeTiming struct {
	Move time.Duration `yaml:"move"`
}

// SnakeScoring defines food value.
type SnakeScoring struct {
	PointsPerFood int `yaml:"points_per_food"`
}

// DodgeConfig contains all configuration for the dodge game.
// Positions and sizes are in board units; CellSize units make one terminal cell.
type DodgeConfig struct {
	Board      DodgeBoard       `yaml:"board"`
	Player     DodgePlayer      `yaml:"player"`
	Obstacles  DodgeObstacles   `yaml:"obstacles"`
	Timing     DodgeTiming      `yaml:"timing"`
	Reward     RewardConfig     `yaml:"reward"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// DodgeBoard defines the board size in units.
type DodgeBoard struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	CellSize int `yaml:"cell_size"`
}

// DodgePlayer defines the player's box and movement.
type DodgePlayer struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	BottomMargin int `yaml:"bottom_margin"`
	Step         int `yaml:"step"`
}

// DodgeObstacles defines spawning and falling.
type DodgeObstacles struct {
	Width              int     `yaml:"width"`
	Height             int     `yaml:"height"`
	BaseFallSpeed      int     `yaml:"base_fall_speed"`
	FallSpeedPerTier   int     `yaml:"fall_speed_per_tier"`
	BaseSpawnChance    float64 `yaml:"base_spawn_chance"`
	SpawnChancePerTier float64 `yaml:"spawn_chance_per_tier"`
	MaxSpawnChance     float64 `yaml:"max_spawn_chance"`
}

// DodgeTiming defines the three dodge timers.
type DodgeTiming struct {
	Tick   time.Duration `yaml:"tick"`
	Repeat time.Duration `yaml:"repeat"`
	Clock  time.Duration `yaml:"clock"`
}

// DifficultyConfig defines the stepwise difficulty ramp.
type DifficultyConfig struct {
	Enabled        bool `yaml:"enabled"`
	StartTier      int  `yaml:"start_tier"`
	SecondsPerTier int  `yaml:"seconds_per_tier"`
	MaxTier        int  `yaml:"max_tier"` // 0 means unbounded
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. The empty string maps to normal.
func ParsePreset(s string) (DifficultyPreset, bool) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, true
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, true
	default:
		return "", false
	}
}

// StartTierForPreset returns the initial difficulty tier for a preset.
func StartTierForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyHard:
		return 2
	default:
		return 0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
