package physics

import (
	"fmt"

	"github.com/san-kum/gripsim/internal/sim"
)

const (
	DefaultInertia = 0.002
	DefaultDamping = 0.02
	DefaultSpring  = 0.0
)

// Arm models the gripper's three joints as independent damped rotational
// inertias driven by the applied forces:
//
//	I*a = F - b*v - k*theta
//
// The optional spring term pulls each joint back toward zero, standing in
// for the finger return springs on the real hardware. State layout is
// [wrist, left finger, right finger, wrist vel, left vel, right vel].
type Arm struct {
	Inertia float64
	Damping float64
	Spring  float64
}

func NewArm() *Arm {
	return &Arm{
		Inertia: DefaultInertia,
		Damping: DefaultDamping,
		Spring:  DefaultSpring,
	}
}

func (a *Arm) StateDim() int   { return 6 }
func (a *Arm) ControlDim() int { return 3 }

func (a *Arm) Derive(x sim.State, u sim.Control, t float64) sim.State {
	dx := make(sim.State, 6)
	for j := 0; j < 3; j++ {
		angle, vel := x[j], x[3+j]
		force := 0.0
		if j < len(u) {
			force = u[j]
		}
		dx[j] = vel
		dx[3+j] = (force - a.Damping*vel - a.Spring*angle) / a.Inertia
	}
	return dx
}

func (a *Arm) GetParams() map[string]float64 {
	return map[string]float64{
		"inertia": a.Inertia,
		"damping": a.Damping,
		"spring":  a.Spring,
	}
}

func (a *Arm) SetParam(name string, value float64) error {
	switch name {
	case "inertia":
		if value <= 0 {
			return fmt.Errorf("physics: inertia must be positive, got %g", value)
		}
		a.Inertia = value
	case "damping":
		a.Damping = value
	case "spring":
		a.Spring = value
	default:
		return fmt.Errorf("physics: unknown param: %s", name)
	}
	return nil
}
