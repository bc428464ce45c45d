package sim

import (
	"fmt"
	"math"
)

// State is the plant state vector. For the gripper arm the layout is
// [wrist, left finger, right finger] angles followed by their velocities.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control is the per-joint force vector applied to the plant.
type Control []float64

func (c Control) Clone() Control {
	out := make(Control, len(c))
	copy(out, c)
	return out
}

// System is a plant model: dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Integrator advances a plant state by one timestep.
type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Metric accumulates a scalar over the control ticks of a run.
type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every physics step.
type Observer interface {
	OnStep(x State, u Control, t float64)
}

// Configurable is implemented by plants and controllers that support live
// parameter tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Result collects the trajectory of one run. Forces are recorded once per
// physics step; between control ticks they repeat the held value.
type Result struct {
	Times   []float64
	States  []State
	Forces  []Control
	Metrics map[string]float64
	Errors  []error
}

// StepError marks the step at which a run went numerically bad.
type StepError struct {
	Step    int
	Time    float64
	Message string
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
