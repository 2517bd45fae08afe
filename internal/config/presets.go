package config

import (
	"sort"

	"github.com/san-kum/meshsim/internal/meshgen"
)

func cloth(stiffness, damping float32, release string) *Config {
	cfg := DefaultConfig()
	cfg.Physics.Stiffness = stiffness
	cfg.Physics.Damping = damping
	cfg.Drag.Release = release
	return cfg
}

func face(stiffness, damping float32) *Config {
	cfg := DefaultConfig()
	cfg.Mesh = meshgen.Spec{Kind: "disc", Rings: 6, Segments: 24, Radius: 1.5}
	cfg.Physics.Gravity = 0
	cfg.Physics.Stiffness = stiffness
	cfg.Physics.Damping = damping
	cfg.Physics.Dt = 0.005
	cfg.Run.Frames = 1200
	return cfg
}

var Presets = map[string]map[string]*Config{
	"cloth": {
		"hanging": cloth(1000, 10, "hold"),
		"stiff":   cloth(4000, 20, "hold"),
		"loose":   cloth(250, 2, "throw"),
	},
	"face": {
		"jelly": face(300, 1),
		"firm":  face(1500, 15),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	clone := *cfg
	return &clone
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
