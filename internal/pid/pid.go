package pid

import (
	"fmt"
	"math"
)

// Settings holds the gains, sample interval and output bounds for one
// control channel. A Settings value is consumed at construction and never
// mutated afterwards.
type Settings struct {
	Kp  float64
	Ki  float64
	Kd  float64
	Dt  float64
	Min float64
	Max float64
}

// Validate rejects settings the controller cannot safely run with. A zero or
// negative Dt would divide the derivative term by zero or flip its sign, so
// it is a construction-time error rather than a silent default.
func (s Settings) Validate() error {
	for _, v := range []float64{s.Kp, s.Ki, s.Kd, s.Dt, s.Min, s.Max} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("pid: settings contain a non-finite value")
		}
	}
	if s.Dt <= 0 {
		return fmt.Errorf("pid: dt must be positive, got %g", s.Dt)
	}
	if s.Min > s.Max {
		return fmt.Errorf("pid: force limits inverted, min %g > max %g", s.Min, s.Max)
	}
	return nil
}

// Controller is a single-channel discrete PID force controller with a fixed
// sample interval and saturating output. Each instance owns its own error
// history; instances are never shared between channels.
//
// Controller is not safe for concurrent use. It is designed to be called
// from a single control tick.
type Controller struct {
	name     string
	settings Settings
	integral float64
	prevErr  float64
}

// NewController validates the settings and returns a controller with zeroed
// error history. The name is diagnostic only, typically the joint name.
func NewController(name string, s Settings) (*Controller, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Controller{name: name, settings: s}, nil
}

// ComputeForce returns the clamped force for one desired/current pair and
// advances the error history. The integral accumulates without an anti-windup
// bound; saturation is only enforced on the final output. NaN inputs are not
// sanitized and propagate to the output.
func (c *Controller) ComputeForce(desired, current float64) float64 {
	err := desired - current

	c.integral += err * c.settings.Dt
	derivative := (err - c.prevErr) / c.settings.Dt

	out := c.settings.Kp*err + c.settings.Ki*c.integral + c.settings.Kd*derivative
	out = clamp(out, c.settings.Min, c.settings.Max)

	c.prevErr = err
	return out
}

// Reset clears the integral and previous error.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevErr = 0
}

// Name returns the diagnostic name given at construction.
func (c *Controller) Name() string { return c.name }

// Settings returns a copy of the settings the controller was built with.
func (c *Controller) Settings() Settings { return c.settings }

// GetParams returns the tunable gains for live adjustment.
func (c *Controller) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": c.settings.Kp,
		"Ki": c.settings.Ki,
		"Kd": c.settings.Kd,
	}
}

// SetParam adjusts a gain. Dt and the force limits are fixed at construction
// and cannot be retuned.
func (c *Controller) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("pid: %s is not finite", name)
	}
	switch name {
	case "Kp":
		c.settings.Kp = value
	case "Ki":
		c.settings.Ki = value
	case "Kd":
		c.settings.Kd = value
	default:
		return fmt.Errorf("pid: unknown param: %s", name)
	}
	return nil
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
