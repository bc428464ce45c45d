package config

import "github.com/san-kum/gripsim/internal/gripper"

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

// Presets are named starting points for the common gripper maneuvers.
var Presets = map[string]*Config{
	// close the fingers on an object from a wide-open pose
	"grab": preset(func(c *Config) {
		c.InitPose = PoseConfig{Wrist: 0, LeftFinger: 0.5, RightFinger: -0.5}
		c.Command = gripper.Command{Wrist: 0, FingerOpening: 0}
	}),
	// open from closed while holding the wrist level
	"release": preset(func(c *Config) {
		c.Command = gripper.Command{Wrist: 0, FingerOpening: 1.0}
	}),
	// swing the wrist with the fingers held half open
	"wave": preset(func(c *Config) {
		c.Duration = 4.0
		c.InitPose = PoseConfig{LeftFinger: 0.25, RightFinger: -0.25}
		c.Command = gripper.Command{Wrist: 0.8, FingerOpening: 0.5}
	}),
	// low-gain variant for fragile payloads
	"soft": preset(func(c *Config) {
		c.Wrist.Kp = 0.8
		c.Finger.Kp = 0.8
		c.Wrist.ForceMin, c.Wrist.ForceMax = -3.0, 3.0
		c.Finger.ForceMin, c.Finger.ForceMax = -3.0, 3.0
		c.Duration = 4.0
		c.InitPose = PoseConfig{LeftFinger: 0.5, RightFinger: -0.5}
		c.Command = gripper.Command{Wrist: 0, FingerOpening: 0.1}
	}),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
