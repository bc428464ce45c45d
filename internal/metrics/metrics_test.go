package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/gripsim/internal/gripper"
	"github.com/san-kum/gripsim/internal/sim"
)

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()

	m.Observe(sim.State{}, sim.Control{1.0, -2.0, 3.0}, 0)
	m.Observe(sim.State{}, sim.Control{0, 0, 0}, 0.1)

	if got := m.Value(); math.Abs(got-3.0) > 1e-12 {
		t.Errorf("expected mean effort 3.0, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected 0 after reset")
	}
}

func TestSaturation(t *testing.T) {
	m := NewSaturation(Limit{-10, 10})

	m.Observe(sim.State{}, sim.Control{10.0, 0, 0}, 0)
	m.Observe(sim.State{}, sim.Control{5.0, -5.0, 0}, 0.1)
	m.Observe(sim.State{}, sim.Control{0, -10.0, 2.0}, 0.2)
	m.Observe(sim.State{}, sim.Control{0, 0, 0}, 0.3)

	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected saturation 0.5, got %f", got)
	}
}

func TestSaturationPerChannelLimits(t *testing.T) {
	// wide wrist limits, tight finger limits; trailing channels reuse the
	// last limit
	m := NewSaturation(Limit{-10, 10}, Limit{-3, 3})

	m.Observe(sim.State{}, sim.Control{5.0, 0, 0}, 0)    // wrist within its own bounds
	m.Observe(sim.State{}, sim.Control{0, 3.0, 0}, 0.1)  // left finger clamped
	m.Observe(sim.State{}, sim.Control{0, 0, -3.0}, 0.2) // right finger clamped
	m.Observe(sim.State{}, sim.Control{10.0, 0, 0}, 0.3) // wrist clamped

	if got := m.Value(); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("expected saturation 0.75, got %f", got)
	}
}

func TestTracking(t *testing.T) {
	cell := gripper.NewCell(gripper.Command{Wrist: 1.0, FingerOpening: 0})
	m := NewTracking(cell)

	// at the target: zero error
	m.Observe(sim.State{1.0, 0, 0, 0, 0, 0}, sim.Control{}, 0)
	if m.Value() != 0 {
		t.Errorf("expected 0 at target, got %f", m.Value())
	}

	m.Reset()

	// wrist off by 1: RMS over three joints is 1/sqrt(3)
	m.Observe(sim.State{0, 0, 0, 0, 0, 0}, sim.Control{}, 0)
	expected := 1.0 / math.Sqrt(3)
	if got := m.Value(); math.Abs(got-expected) > 1e-12 {
		t.Errorf("expected %f, got %f", expected, got)
	}
}
