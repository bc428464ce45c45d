// Package physics provides the plant model the control loop is closed
// against in simulation.
//
// [Arm] implements the [sim.System] interface and also
// [sim.Configurable] for runtime parameter adjustment from the live view.
package physics
