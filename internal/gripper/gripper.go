package gripper

// JointNames identifies the three gripper joints in the host environment.
// The names are diagnostic metadata only; they label the PID channels in
// logs and exports.
type JointNames struct {
	Wrist       string `yaml:"wrist"`
	LeftFinger  string `yaml:"left_finger"`
	RightFinger string `yaml:"right_finger"`
}

// DefaultJointNames returns the joint labels used when no configuration
// provides them.
func DefaultJointNames() JointNames {
	return JointNames{
		Wrist:       "wrist_joint",
		LeftFinger:  "left_finger_joint",
		RightFinger: "right_finger_joint",
	}
}

// State holds the three joint angles in radians. The same type carries both
// the current pose read from the joints and the desired pose derived from a
// Command. For a symmetric grasp the right finger angle is the negated
// counterpart of the left; that invariant is the producer's to keep, not
// this type's.
type State struct {
	Wrist       float64
	LeftFinger  float64
	RightFinger float64
}

// Forces holds the per-joint force commands in Newtons, each already clamped
// to its channel's limits.
type Forces struct {
	Wrist       float64
	LeftFinger  float64
	RightFinger float64
}

// Command is the 2-DOF abstract gripper command: a wrist angle and a total
// finger opening. FingerOpening is the full angular separation between the
// fingers and is expected to be non-negative.
type Command struct {
	Wrist         float64 `yaml:"wrist"`
	FingerOpening float64 `yaml:"finger_opening"`
}

// Desired decomposes the command into three joint targets. The fingers are
// mechanically mirrored about the gripper centerline: the left joint takes
// half the opening with positive sign, the right joint the other half
// negated. Changing either sign closes the gripper asymmetrically.
func (c Command) Desired() State {
	return State{
		Wrist:       c.Wrist,
		LeftFinger:  c.FingerOpening / 2.0,
		RightFinger: -c.FingerOpening / 2.0,
	}
}
