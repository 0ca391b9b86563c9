package session

import (
	"time"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
)

// RewardSource is implemented by engines that load their currency
// multiplier from their tuning file.
type RewardSource interface {
	GoldPerPoint() int
}

// DefaultGoldPerPoint returns the built-in currency multiplier for kind.
func DefaultGoldPerPoint(kind core.GameKind) int {
	switch kind {
	case core.KindBlocks:
		return config.DefaultBlocksConfig().Reward.GoldPerPoint
	case core.KindDodge:
		return config.DefaultDodgeConfig().Reward.GoldPerPoint
	case core.KindSnake:
		return config.DefaultSnakeConfig().Reward.GoldPerPoint
	}
	return 0
}

// TunedGoldPerPoint returns the multiplier the tuning file for kind sets,
// loading it the way the engine does (an empty path searches the usual
// locations). It falls back to DefaultGoldPerPoint.
func TunedGoldPerPoint(kind core.GameKind, path string) int {
	var reward config.RewardConfig
	var err error
	switch kind {
	case core.KindBlocks:
		var cfg config.BlocksConfig
		cfg, err = config.LoadBlocks(path)
		reward = cfg.Reward
	case core.KindDodge:
		var cfg config.DodgeConfig
		cfg, err = config.LoadDodge(path)
		reward = cfg.Reward
	case core.KindSnake:
		var cfg config.SnakeConfig
		cfg, err = config.LoadSnake(path)
		reward = cfg.Reward
	}
	if err != nil || reward.GoldPerPoint <= 0 {
		return DefaultGoldPerPoint(kind)
	}
	return reward.GoldPerPoint
}

// Reward converts a final score into currency.
func Reward(score, goldPerPoint int) int {
	return score * goldPerPoint
}

// TimeSpent returns the whole seconds between started and completed,
// floored and never negative. A missing start counts as zero.
func TimeSpent(started, completed time.Time) int {
	if started.IsZero() {
		return 0
	}
	d := completed.Sub(started)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
