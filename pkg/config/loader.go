package config

import (
	"fmt"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs structural validation. The physical bounds are
// enforced when the configuration is resolved into core inputs; this layer
// only rejects what would make that resolution meaningless.
func validateConfig(cfg *Config) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.Geometry.OuterDiameter <= 0 || cfg.Geometry.WallThickness <= 0 {
		return fmt.Errorf("geometry: outer_diameter and wall_thickness must be positive")
	}
	if cfg.Material.YieldStrength <= 0 || cfg.Material.FractureToughness <= 0 {
		return fmt.Errorf("material: yield_strength and fracture_toughness must be positive")
	}
	if cfg.Crack.Depth == 0 && cfg.Crack.DepthRatio == 0 {
		return fmt.Errorf("crack: one of depth or depth_ratio is required")
	}
	if cfg.Crack.AspectRatio <= 0 {
		return fmt.Errorf("crack: aspect_ratio must be positive")
	}

	seen := make(map[string]bool)
	for _, p := range cfg.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameters: name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("parameters: duplicate name %s", p.Name)
		}
		seen[p.Name] = true
	}

	if cfg.Study != nil {
		if _, err := cfg.Study.GetBudget(); err != nil {
			return fmt.Errorf("study: invalid budget: %w", err)
		}
		if cfg.Study.AleatorySamples < 0 || cfg.Study.EpistemicSamples < 0 {
			return fmt.Errorf("study: sample counts cannot be negative")
		}
	}
	return nil
}
