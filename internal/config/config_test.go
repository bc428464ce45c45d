package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UpdateRate != 1000.0 {
		t.Errorf("expected update rate 1000, got %f", cfg.UpdateRate)
	}
	if cfg.Wrist.Kp != 2.5 || cfg.Wrist.Ki != 0 || cfg.Wrist.Kd != 0 {
		t.Errorf("unexpected wrist gains: %+v", cfg.Wrist)
	}
	if cfg.Finger.ForceMin != -10.0 || cfg.Finger.ForceMax != 10.0 {
		t.Errorf("unexpected finger force limits: %+v", cfg.Finger)
	}
	if cfg.Debug.PrintToConsole {
		t.Error("debug should be off by default")
	}
	if cfg.Debug.PrintDelay != 3.0 {
		t.Errorf("expected debug delay 3.0, got %f", cfg.Debug.PrintDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero update rate", func(c *Config) { c.UpdateRate = 0 }},
		{"negative update rate", func(c *Config) { c.UpdateRate = -100 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"inverted wrist limits", func(c *Config) { c.Wrist.ForceMin, c.Wrist.ForceMax = 5, -5 }},
		{"inverted finger limits", func(c *Config) { c.Finger.ForceMin, c.Finger.ForceMax = 5, -5 }},
		{"debug with zero delay", func(c *Config) { c.Debug.PrintToConsole = true; c.Debug.PrintDelay = 0 }},
		{"zero inertia", func(c *Config) { c.Plant.Inertia = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestControlPeriodDerivedFromRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UpdateRate = 500.0

	if got := cfg.ControlPeriod(); got != 0.002 {
		t.Errorf("expected control period 0.002, got %f", got)
	}
	if got := cfg.WristSettings().Dt; got != 0.002 {
		t.Errorf("wrist settings should carry the derived dt, got %f", got)
	}
	if got := cfg.FingerSettings().Dt; got != 0.002 {
		t.Errorf("finger settings should carry the derived dt, got %f", got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gripper.yaml")
	data := []byte("update_rate: 250\nwrist_pid:\n  kp: 4.0\n  force_min: -20\n  force_max: 20\ncommand:\n  finger_opening: 0.4\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.UpdateRate != 250 {
		t.Errorf("expected update rate 250, got %f", cfg.UpdateRate)
	}
	if cfg.Wrist.Kp != 4.0 {
		t.Errorf("expected wrist kp 4.0, got %f", cfg.Wrist.Kp)
	}
	// untouched fields keep their defaults
	if cfg.Wrist.Ki != 0 || cfg.Finger.Kp != 2.5 {
		t.Errorf("defaults not preserved: wrist=%+v finger=%+v", cfg.Wrist, cfg.Finger)
	}
	if cfg.Command.FingerOpening != 0.4 {
		t.Errorf("expected finger opening 0.4, got %f", cfg.Command.FingerOpening)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Wrist.Kp = 3.25

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Wrist.Kp != 3.25 {
		t.Errorf("expected wrist kp 3.25, got %f", loaded.Wrist.Kp)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("grab")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitPose.LeftFinger != 0.5 {
		t.Errorf("expected open initial pose, got %f", cfg.InitPose.LeftFinger)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestInitialState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitPose = PoseConfig{Wrist: 0.1, LeftFinger: 0.2, RightFinger: -0.2}

	x0 := cfg.InitialState()
	if len(x0) != 6 {
		t.Fatalf("expected 6 states, got %d", len(x0))
	}
	if x0[0] != 0.1 || x0[1] != 0.2 || x0[2] != -0.2 {
		t.Errorf("unexpected pose: %v", x0[:3])
	}
	for i := 3; i < 6; i++ {
		if x0[i] != 0 {
			t.Errorf("expected joints at rest, velocity[%d]=%f", i-3, x0[i])
		}
	}
}
