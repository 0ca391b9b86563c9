package config

// DifficultyManager turns elapsed play time into a difficulty tier.
type DifficultyManager struct {
	cfg DifficultyConfig
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{cfg: cfg}
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.SecondsPerTier > 0
}

// Tier returns floor(elapsedSeconds / SecondsPerTier) offset by the start
// tier and capped at MaxTier. With progression off the start tier is returned.
func (d *DifficultyManager) Tier(elapsedSeconds int) int {
	tier := d.cfg.StartTier
	if d.IsEnabled() && elapsedSeconds > 0 {
		tier += elapsedSeconds / d.cfg.SecondsPerTier
	}
	if d.cfg.MaxTier > 0 && tier > d.cfg.MaxTier {
		tier = d.cfg.MaxTier
	}
	return tier
}

// Scale returns base + perTier*tier as an int.
func Scale(base, perTier, tier int) int {
	return base + perTier*tier
}

// ScaleF returns base + perTier*tier clamped to [0, ceiling].
func ScaleF(base, perTier float64, tier int, ceiling float64) float64 {
	v := base + perTier*float64(tier)
	if v < 0 {
		return 0
	}
	if ceiling > 0 && v > ceiling {
		return ceiling
	}
	return v
}
