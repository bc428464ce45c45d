package gripper

import (
	"fmt"
	"strings"

	"github.com/san-kum/gripsim/internal/pid"
)

// Manager owns the three PID channels for one gripper and turns a desired
// pose into per-joint forces. Both fingers are built from the same settings
// value but run independent controllers, so their error histories never
// alias.
//
// Manager performs no locking and no I/O; it expects a consistent
// (desired, current) snapshot from its caller each tick.
type Manager struct {
	names JointNames
	wrist *pid.Controller
	left  *pid.Controller
	right *pid.Controller
}

// NewManager builds the three controllers. Invalid settings on either
// channel fail construction; the manager never operates with a rejected
// configuration.
func NewManager(names JointNames, wrist, finger pid.Settings) (*Manager, error) {
	wristCtrl, err := pid.NewController(names.Wrist, wrist)
	if err != nil {
		return nil, fmt.Errorf("gripper: wrist channel: %w", err)
	}
	leftCtrl, err := pid.NewController(names.LeftFinger, finger)
	if err != nil {
		return nil, fmt.Errorf("gripper: left finger channel: %w", err)
	}
	rightCtrl, err := pid.NewController(names.RightFinger, finger)
	if err != nil {
		return nil, fmt.Errorf("gripper: right finger channel: %w", err)
	}
	return &Manager{names: names, wrist: wristCtrl, left: leftCtrl, right: rightCtrl}, nil
}

// GetForces runs one PID step per joint and returns the clamped forces.
// Total over its input domain: pathological angles are bounded by each
// channel's force clamp, NaN passes through.
func (m *Manager) GetForces(desired, current State) Forces {
	return Forces{
		Wrist:       m.wrist.ComputeForce(desired.Wrist, current.Wrist),
		LeftFinger:  m.left.ComputeForce(desired.LeftFinger, current.LeftFinger),
		RightFinger: m.right.ComputeForce(desired.RightFinger, current.RightFinger),
	}
}

// Reset clears the error history on all three channels.
func (m *Manager) Reset() {
	m.wrist.Reset()
	m.left.Reset()
	m.right.Reset()
}

// Names returns the joint labels the manager was built with.
func (m *Manager) Names() JointNames { return m.names }

// GetParams exposes the gains of all channels for live tuning, prefixed by
// channel. Both finger controllers share gains, so only one finger entry set
// is reported.
func (m *Manager) GetParams() map[string]float64 {
	params := make(map[string]float64)
	for k, v := range m.wrist.GetParams() {
		params["wrist."+k] = v
	}
	for k, v := range m.left.GetParams() {
		params["finger."+k] = v
	}
	return params
}

// SetParam retunes a gain on the named channel. Finger gains are applied to
// both finger controllers to keep the channels matched.
func (m *Manager) SetParam(name string, value float64) error {
	if gain, ok := strings.CutPrefix(name, "wrist."); ok {
		return m.wrist.SetParam(gain, value)
	}
	if gain, ok := strings.CutPrefix(name, "finger."); ok {
		if err := m.left.SetParam(gain, value); err != nil {
			return err
		}
		return m.right.SetParam(gain, value)
	}
	return fmt.Errorf("gripper: unknown param: %s", name)
}
