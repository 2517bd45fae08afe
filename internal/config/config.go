// Package config loads simulation settings from YAML and holds named presets.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/meshsim/internal/controller"
	"github.com/san-kum/meshsim/internal/meshgen"
	"github.com/san-kum/meshsim/internal/physics"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	DefaultFrames      = 600
	DefaultRecordEvery = 10
	DefaultRows        = 12
	DefaultCols        = 12
	DefaultSpacing     = 0.25
)

type Config struct {
	Mesh    meshgen.Spec  `yaml:"mesh"`
	Physics PhysicsConfig `yaml:"physics"`
	Drag    DragConfig    `yaml:"drag"`
	Run     RunConfig     `yaml:"run"`
	Logging LoggingConfig `yaml:"logging"`
}

type PhysicsConfig struct {
	Dt        float32 `yaml:"dt"`
	Gravity   float32 `yaml:"gravity"`
	Stiffness float32 `yaml:"stiffness"`
	Damping   float32 `yaml:"damping"`
}

type DragConfig struct {
	Release string `yaml:"release"`
}

type RunConfig struct {
	Frames      int    `yaml:"frames"`
	RecordEvery int    `yaml:"record_every"`
	Script      string `yaml:"script"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Mesh: meshgen.Spec{
			Kind:    "grid",
			Rows:    DefaultRows,
			Cols:    DefaultCols,
			Spacing: DefaultSpacing,
			PinTop:  true,
		},
		Physics: PhysicsConfig{
			Dt:        physics.DefaultTimeStep,
			Gravity:   physics.DefaultGravity.Y(),
			Stiffness: physics.DefaultStiffness,
			Damping:   physics.DefaultDamping,
		},
		Drag:    DragConfig{Release: controller.ReleaseHold.String()},
		Run:     RunConfig{Frames: DefaultFrames, RecordEvery: DefaultRecordEvery},
		Logging: LoggingConfig{Level: "info"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first problem found, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Physics.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Physics.Dt)
	case c.Physics.Stiffness < 0:
		return fmt.Errorf("%w: stiffness must not be negative", ErrInvalidConfig)
	case c.Physics.Damping < 0:
		return fmt.Errorf("%w: damping must not be negative", ErrInvalidConfig)
	case c.Run.Frames <= 0:
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidConfig, c.Run.Frames)
	case c.Run.RecordEvery < 0:
		return fmt.Errorf("%w: record_every must not be negative", ErrInvalidConfig)
	}
	if _, err := controller.ParseReleaseMode(c.Drag.Release); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Mesh.Kind {
	case "", "grid", "disc":
	case "file":
		if c.Mesh.Path == "" {
			return fmt.Errorf("%w: mesh kind file needs a path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown mesh kind %q", ErrInvalidConfig, c.Mesh.Kind)
	}
	return nil
}

// EngineOptions turns the physics section into engine options.
func (c *Config) EngineOptions() []physics.Option {
	return []physics.Option{
		physics.WithTimeStep(c.Physics.Dt),
		physics.WithGravity(mgl32.Vec3{0, c.Physics.Gravity, 0}),
		physics.WithStiffness(c.Physics.Stiffness),
		physics.WithDamping(c.Physics.Damping),
	}
}

// ControllerOptions returns everything controller.New needs besides the mesh.
func (c *Config) ControllerOptions(pins []uint32) ([]controller.Option, error) {
	mode, err := controller.ParseReleaseMode(c.Drag.Release)
	if err != nil {
		return nil, err
	}
	return []controller.Option{
		controller.WithEngine(c.EngineOptions()...),
		controller.WithReleaseMode(mode),
		controller.WithPins(pins...),
	}, nil
}
