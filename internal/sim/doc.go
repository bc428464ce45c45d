// Package sim provides the closed-loop control core's host environment: the
// plant/integrator interfaces and the fixed-rate runner that feeds joint
// angles to the gripper manager and applies the resulting forces.
//
// The runner owns all timing. Force controllers are recomputed once per
// control period (1/update rate) against a snapshot of the latest command;
// between control ticks the plant integrates under a zero-order hold of the
// last forces. Debug snapshots are logged at a slower, independent period.
//
//	runner := sim.NewRunner(plant, integrators.NewRK4(), manager, cell, logger)
//	result, err := runner.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Runner instances are not thread-safe; concurrency enters only through the
// command cell, which producers may write from other goroutines.
package sim
