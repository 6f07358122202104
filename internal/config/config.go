package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultForce    = 30.0
	DefaultKp       = 10.0
	DefaultKi       = 0.1
	DefaultKd       = 5.0
)

type Config struct {
	Model      string  `koanf:"model" yaml:"model"`
	Links      int     `koanf:"links" yaml:"links"`
	Integrator string  `koanf:"integrator" yaml:"integrator"`
	Controller string  `koanf:"controller" yaml:"controller"`
	Dt         float64 `koanf:"dt" yaml:"dt"`
	Duration   float64 `koanf:"duration" yaml:"duration"`
	Seed       int64   `koanf:"seed" yaml:"seed"`
	DataDir    string  `koanf:"data_dir" yaml:"data_dir"`

	// InitState maps state channel names (e.g. "j0/q0/value") to initial
	// values; unnamed channels start at their coordinate defaults.
	InitState map[string]float64 `koanf:"init_state" yaml:"init_state,omitempty"`

	Reserves ReservesConfig `koanf:"reserves" yaml:"reserves"`
	Gains    GainsConfig    `koanf:"gains" yaml:"gains"`
}

// ReservesConfig controls reserve-actuator creation on built models.
type ReservesConfig struct {
	Enabled      bool    `koanf:"enabled" yaml:"enabled"`
	OptimalForce float64 `koanf:"optimal_force" yaml:"optimal_force"`
	SkipActuated bool    `koanf:"skip_actuated" yaml:"skip_actuated"`
}

type GainsConfig struct {
	Kp     float64 `koanf:"kp" yaml:"kp"`
	Ki     float64 `koanf:"ki" yaml:"ki"`
	Kd     float64 `koanf:"kd" yaml:"kd"`
	Target float64 `koanf:"target" yaml:"target"`
}

func Default() *Config {
	return &Config{
		Model:      "pendulum",
		Links:      1,
		Integrator: "rk4",
		Controller: "none",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		DataDir:    ".trajlab",
		Reserves: ReservesConfig{
			OptimalForce: DefaultForce,
			SkipActuated: true,
		},
		Gains: GainsConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
	}
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %f", c.Duration)
	}
	if c.Links < 1 {
		return fmt.Errorf("config: links must be at least 1, got %d", c.Links)
	}
	return nil
}

// BuildInitState assembles an initial state vector for the named channels,
// reading overrides from InitState.
func (c *Config) BuildInitState(stateNames []string) []float64 {
	x0 := make([]float64, len(stateNames))
	for i, name := range stateNames {
		if v, ok := c.InitState[name]; ok {
			x0[i] = v
		}
	}
	return x0
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
