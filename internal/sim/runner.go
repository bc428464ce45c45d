package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/edaniels/golog"

	"github.com/san-kum/gripsim/internal/gripper"
)

// Config drives one closed-loop run. Dt is the physics timestep; UpdateRate
// is how often per second the force controllers are recomputed, matching the
// rate the PID sample interval was derived from. Debug snapshots are logged
// at the slower DebugPeriod.
type Config struct {
	Dt          float64
	UpdateRate  float64
	Duration    float64
	Debug       bool
	DebugPeriod float64
}

// ControlPeriod returns the seconds between control recomputations.
func (c Config) ControlPeriod() float64 {
	return 1.0 / c.UpdateRate
}

// Validate rejects configurations the loop cannot run with. Errors here are
// construction-time failures; the runner never silently corrects them.
func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %g", c.Dt)
	}
	if c.UpdateRate <= 0 {
		return fmt.Errorf("sim: update rate must be positive, got %g", c.UpdateRate)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("sim: duration must be positive, got %g", c.Duration)
	}
	if c.Debug && c.DebugPeriod <= 0 {
		return fmt.Errorf("sim: debug period must be positive, got %g", c.DebugPeriod)
	}
	return nil
}

// Runner closes the loop between a plant and a gripper manager: it steps the
// physics at Dt, recomputes forces once per control period from the latest
// command snapshot, and holds those forces between control ticks.
type Runner struct {
	plant     System
	integ     Integrator
	manager   *gripper.Manager
	cell      *gripper.Cell
	metrics   []Metric
	observers []Observer
	logger    golog.Logger
}

// NewRunner wires a plant, an integrator, the force controllers and the
// command cell together under a named logger.
func NewRunner(plant System, integ Integrator, manager *gripper.Manager, cell *gripper.Cell, logger golog.Logger) *Runner {
	return &Runner{
		plant:   plant,
		integ:   integ,
		manager: manager,
		cell:    cell,
		logger:  logger,
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Pose extracts the three joint angles from a plant state.
func Pose(x State) gripper.State {
	var p gripper.State
	if len(x) > 0 {
		p.Wrist = x[0]
	}
	if len(x) > 1 {
		p.LeftFinger = x[1]
	}
	if len(x) > 2 {
		p.RightFinger = x[2]
	}
	return p
}

// Run executes one closed-loop episode from x0. It returns the recorded
// trajectory; a NaN/Inf state stops the run early with the offending step
// recorded in Result.Errors.
func (r *Runner) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	controlEvery := stepsPer(cfg.ControlPeriod(), cfg.Dt)
	debugEvery := 0
	if cfg.Debug {
		debugEvery = stepsPer(cfg.DebugPeriod, cfg.Dt)
	}

	result := &Result{
		Times:   make([]float64, 0, steps+1),
		States:  make([]State, 0, steps+1),
		Forces:  make([]Control, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	var held gripper.Forces

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		// only recompute forces once per control period; the plant sees the
		// held value in between
		if i%controlEvery == 0 {
			cmd := r.cell.Snapshot()
			desired := cmd.Desired()
			current := Pose(x)
			held = r.manager.GetForces(desired, current)

			u := Control{held.Wrist, held.LeftFinger, held.RightFinger}
			for _, m := range r.metrics {
				m.Observe(x, u, t)
			}
		}

		// the debug gate runs on its own cadence, independent of the
		// control ticks
		if debugEvery > 0 && i%debugEvery == 0 {
			r.logSnapshot(Pose(x), r.cell.Snapshot().Desired(), held, t)
		}

		u := Control{held.Wrist, held.LeftFinger, held.RightFinger}
		for _, obs := range r.observers {
			obs.OnStep(x, u, t)
		}

		x = r.integ.Step(r.plant, x, u, t, cfg.Dt)
		t += cfg.Dt

		if !x.IsValid() {
			result.Errors = append(result.Errors, StepError{Step: i, Time: t, Message: "invalid state (NaN/Inf)"})
			break
		}

		result.States = append(result.States, x.Clone())
		result.Forces = append(result.Forces, u.Clone())
		result.Times = append(result.Times, t)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (r *Runner) logSnapshot(current, desired gripper.State, forces gripper.Forces, t float64) {
	names := r.manager.Names()
	r.logger.Debugf(
		"t=%.3f %s: current=%.4f desired=%.4f force=%.4f | %s: current=%.4f desired=%.4f force=%.4f | %s: current=%.4f desired=%.4f force=%.4f",
		t,
		names.Wrist, current.Wrist, desired.Wrist, forces.Wrist,
		names.LeftFinger, current.LeftFinger, desired.LeftFinger, forces.LeftFinger,
		names.RightFinger, current.RightFinger, desired.RightFinger, forces.RightFinger,
	)
}

// stepsPer converts a period into a whole number of physics steps, never
// fewer than one.
func stepsPer(period, dt float64) int {
	n := int(math.Round(period / dt))
	if n < 1 {
		n = 1
	}
	return n
}
