package metrics

import (
	"math"

	"github.com/san-kum/gripsim/internal/gripper"
	"github.com/san-kum/gripsim/internal/sim"
)

// Tracking reports the RMS joint-angle error against the live command,
// read from the same cell the control loop consumes.
type Tracking struct {
	name    string
	cell    *gripper.Cell
	sumSq   float64
	samples int
}

func NewTracking(cell *gripper.Cell) *Tracking {
	return &Tracking{name: "tracking_rms", cell: cell}
}

func (m *Tracking) Name() string { return m.name }

func (m *Tracking) Observe(x sim.State, u sim.Control, t float64) {
	desired := m.cell.Snapshot().Desired()
	current := sim.Pose(x)

	for _, e := range []float64{
		desired.Wrist - current.Wrist,
		desired.LeftFinger - current.LeftFinger,
		desired.RightFinger - current.RightFinger,
	} {
		m.sumSq += e * e
	}
	m.samples++
}

func (m *Tracking) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(3*m.samples))
}

func (m *Tracking) Reset() {
	m.sumSq = 0
	m.samples = 0
}
