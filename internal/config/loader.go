package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// load resolves a game config.
// Search order: customPath -> ~/.petarcade/configs/<name> -> ./configs/<name> -> embedded default.
// Files are decoded over the hardcoded defaults so partial files work.
func load[T any](name, customPath string, embedded []byte, defaults func() T) (T, error) {
	cfg := defaults()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	candidates := []string{userConfigPath(name), filepath.Join("configs", name)}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		fromFile := defaults()
		if err := yaml.Unmarshal(data, &fromFile); err == nil {
			return fromFile, nil
		}
	}

	if err := yaml.Unmarshal(embedded, &cfg); err != nil {
		return defaults(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// LoadBlocks loads falling-block configuration.
func LoadBlocks(customPath string) (BlocksConfig, error) {
	return load("blocks.yaml", customPath, defaultBlocksYAML, DefaultBlocksConfig)
}

// LoadSnake loads snake configuration.
func LoadSnake(customPath string) (SnakeConfig, error) {
	return load("snake.yaml", customPath, defaultSnakeYAML, DefaultSnakeConfig)
}

// LoadDodge loads dodge configuration.
func LoadDodge(customPath string) (DodgeConfig, error) {
	return load("dodge.yaml", customPath, defaultDodgeYAML, DefaultDodgeConfig)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".petarcade", "configs", filename)
}

// ApplyBlocksPreset adjusts gravity for a difficulty preset.
// The fixed preset keeps the initial speed for the whole run.
func ApplyBlocksPreset(cfg *BlocksConfig, preset DifficultyPreset) {
	cfg.Difficulty.Enabled = !IsFixedPreset(preset)
	switch preset {
	case DifficultyEasy:
		cfg.Timing.InitialDrop += 200 * time.Millisecond
	case DifficultyHard:
		cfg.Timing.InitialDrop = max(cfg.Timing.MinDrop, cfg.Timing.InitialDrop-200*time.Millisecond)
	}
}

// ApplySnakePreset adjusts snake speed for a difficulty preset.
func ApplySnakePreset(cfg *SnakeConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Timing.Move = cfg.Timing.Move * 5 / 4
	case DifficultyHard:
		cfg.Timing.Move = cfg.Timing.Move * 3 / 4
	}
}

// ApplyDodgePreset modifies the difficulty ramp for a preset.
func ApplyDodgePreset(cfg *DodgeConfig, preset DifficultyPreset) {
	cfg.Difficulty.Enabled = !IsFixedPreset(preset)
	cfg.Difficulty.StartTier = StartTierForPreset(preset)
	if preset == DifficultyEasy {
		cfg.Difficulty.SecondsPerTier = cfg.Difficulty.SecondsPerTier * 3 / 2
	}
}
