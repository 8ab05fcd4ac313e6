// Package config handles simulation configuration loading and management.
package config

// Config holds all drape settings.
type Config struct {
	Cloth     ClothConfig     `yaml:"cloth"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Wind      WindConfig      `yaml:"wind"`
	Collision CollisionConfig `yaml:"collision"`
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ClothConfig holds the initial grid topology.
type ClothConfig struct {
	Cols      int     `yaml:"cols"`
	Rows      int     `yaml:"rows"`
	Spacing   float32 `yaml:"spacing"`
	Mass      float32 `yaml:"mass"`
	Stiffness float32 `yaml:"stiffness"`
	Anchors   string  `yaml:"anchors"` // none, corners, top_row
}

// PhysicsConfig holds integrator parameters.
type PhysicsConfig struct {
	Gravity              float32 `yaml:"gravity"`
	Substeps             int     `yaml:"substeps"`
	ConstraintIterations int     `yaml:"constraint_iterations"`
	Damping              float32 `yaml:"damping"`
	MaxVelocity          float32 `yaml:"max_velocity"`
}

// WindConfig holds the gust generator settings.
type WindConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Seed         int64   `yaml:"seed"`
	MaxMagnitude float32 `yaml:"max_magnitude"`
}

// CollisionConfig holds the approximate self-collision settings.
type CollisionConfig struct {
	Enabled bool    `yaml:"enabled"`
	Radius  float32 `yaml:"radius"`
}

// GraphicsConfig holds display and rendering settings for the viewer.
type GraphicsConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	Fullscreen  bool `yaml:"fullscreen"`
	VSync       bool `yaml:"vsync"`
	DoubleSided bool `yaml:"double_sided"`
	Wireframe   bool `yaml:"wireframe"`
}

// ServerConfig holds the streaming server settings.
type ServerConfig struct {
	Listen   string `yaml:"listen"`
	TickRate int    `yaml:"tick_rate"` // simulation ticks per second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Cloth: ClothConfig{
			Cols:      32,
			Rows:      24,
			Spacing:   0.1,
			Mass:      1,
			Stiffness: 0.9,
			Anchors:   "top_row",
		},
		Physics: PhysicsConfig{
			Gravity:              9.81,
			Substeps:             3,
			ConstraintIterations: 4,
			Damping:              0.02,
			MaxVelocity:          40,
		},
		Wind: WindConfig{
			Enabled:      true,
			Seed:         1,
			MaxMagnitude: 18,
		},
		Collision: CollisionConfig{
			Enabled: false,
			Radius:  0.08,
		},
		Graphics: GraphicsConfig{
			Width:       1280,
			Height:      720,
			Fullscreen:  false,
			VSync:       true,
			DoubleSided: true,
			Wireframe:   false,
		},
		Server: ServerConfig{
			Listen:   "127.0.0.1:8080",
			TickRate: 60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
