package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gripsim/internal/gripper"
	"github.com/san-kum/gripsim/internal/pid"
	"github.com/san-kum/gripsim/internal/sim"
)

// Defaults mirror the stock gripper tuning: pure proportional control with a
// 10 N force budget, recomputed at 1 kHz.
const (
	DefaultUpdateRate  = 1000.0
	DefaultDt          = 0.0005
	DefaultDuration    = 2.0
	DefaultKp          = 2.5
	DefaultKi          = 0.0
	DefaultKd          = 0.0
	DefaultForceMin    = -10.0
	DefaultForceMax    = 10.0
	DefaultDebugPeriod = 3.0
)

// PIDConfig is one channel's tuning. The sample interval is not part of the
// file format; it is always derived from the update rate so the gains and
// the call cadence cannot disagree.
type PIDConfig struct {
	Kp       float64 `yaml:"kp"`
	Ki       float64 `yaml:"ki"`
	Kd       float64 `yaml:"kd"`
	ForceMin float64 `yaml:"force_min"`
	ForceMax float64 `yaml:"force_max"`
}

// Settings resolves the channel into controller settings for the given
// sample interval.
func (p PIDConfig) Settings(dt float64) pid.Settings {
	return pid.Settings{Kp: p.Kp, Ki: p.Ki, Kd: p.Kd, Dt: dt, Min: p.ForceMin, Max: p.ForceMax}
}

// DebugConfig gates the periodic gripper snapshot logging.
type DebugConfig struct {
	PrintToConsole bool    `yaml:"print_to_console"`
	PrintDelay     float64 `yaml:"print_delay"`
}

// PlantConfig tunes the simulated arm.
type PlantConfig struct {
	Inertia float64 `yaml:"inertia"`
	Damping float64 `yaml:"damping"`
	Spring  float64 `yaml:"spring"`
}

// PoseConfig is the initial joint pose in radians.
type PoseConfig struct {
	Wrist       float64 `yaml:"wrist"`
	LeftFinger  float64 `yaml:"left_finger"`
	RightFinger float64 `yaml:"right_finger"`
}

type Config struct {
	UpdateRate float64            `yaml:"update_rate"`
	Dt         float64            `yaml:"dt"`
	Duration   float64            `yaml:"duration"`
	Integrator string             `yaml:"integrator"`
	Joints     gripper.JointNames `yaml:"joints"`
	Wrist      PIDConfig          `yaml:"wrist_pid"`
	Finger     PIDConfig          `yaml:"finger_pid"`
	Debug      DebugConfig        `yaml:"debug"`
	Plant      PlantConfig        `yaml:"plant"`
	InitPose   PoseConfig         `yaml:"init_pose"`
	Command    gripper.Command    `yaml:"command"`
}

func defaultPID() PIDConfig {
	return PIDConfig{
		Kp:       DefaultKp,
		Ki:       DefaultKi,
		Kd:       DefaultKd,
		ForceMin: DefaultForceMin,
		ForceMax: DefaultForceMax,
	}
}

func DefaultConfig() *Config {
	return &Config{
		UpdateRate: DefaultUpdateRate,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Integrator: "rk4",
		Joints:     gripper.DefaultJointNames(),
		Wrist:      defaultPID(),
		Finger:     defaultPID(),
		Debug: DebugConfig{
			PrintToConsole: false,
			PrintDelay:     DefaultDebugPeriod,
		},
		Plant: PlantConfig{
			Inertia: 0.002,
			Damping: 0.02,
			Spring:  0.0,
		},
	}
}

// Load reads a yaml config over the defaults, so partial files only
// override what they mention.
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
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations the loop must not start with. Failures are
// returned, never fatal; the caller decides whether to abort.
func (c *Config) Validate() error {
	if c.UpdateRate <= 0 {
		return fmt.Errorf("config: update_rate must be positive, got %g", c.UpdateRate)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.Debug.PrintToConsole && c.Debug.PrintDelay <= 0 {
		return fmt.Errorf("config: debug print_delay must be positive, got %g", c.Debug.PrintDelay)
	}
	dt := c.ControlPeriod()
	if err := c.Wrist.Settings(dt).Validate(); err != nil {
		return fmt.Errorf("config: wrist_pid: %w", err)
	}
	if err := c.Finger.Settings(dt).Validate(); err != nil {
		return fmt.Errorf("config: finger_pid: %w", err)
	}
	if c.Plant.Inertia <= 0 {
		return fmt.Errorf("config: plant inertia must be positive, got %g", c.Plant.Inertia)
	}
	return nil
}

// ControlPeriod is the PID sample interval implied by the update rate.
func (c *Config) ControlPeriod() float64 {
	return 1.0 / c.UpdateRate
}

// WristSettings resolves the wrist channel with the derived sample interval.
func (c *Config) WristSettings() pid.Settings {
	return c.Wrist.Settings(c.ControlPeriod())
}

// FingerSettings resolves the shared finger channel settings.
func (c *Config) FingerSettings() pid.Settings {
	return c.Finger.Settings(c.ControlPeriod())
}

// SimConfig maps the file onto the runner's configuration.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:          c.Dt,
		UpdateRate:  c.UpdateRate,
		Duration:    c.Duration,
		Debug:       c.Debug.PrintToConsole,
		DebugPeriod: c.Debug.PrintDelay,
	}
}

// InitialState builds the plant state vector from the configured pose, with
// all joints at rest.
func (c *Config) InitialState() sim.State {
	return sim.State{c.InitPose.Wrist, c.InitPose.LeftFinger, c.InitPose.RightFinger, 0, 0, 0}
}
