package metrics

import "github.com/san-kum/gripsim/internal/sim"

// Limit bounds one force channel.
type Limit struct {
	Min, Max float64
}

// Saturation reports the fraction of control ticks on which at least one
// channel hit its force clamp. A value near 1 means the gains are asking for
// more force than the limits allow and the integral term is likely winding
// up behind the clamp.
type Saturation struct {
	name    string
	limits  []Limit
	hits    int
	samples int
}

// NewSaturation takes one limit per force channel, in channel order. When a
// control vector is wider than the limits, trailing channels are judged
// against the last limit given.
func NewSaturation(limits ...Limit) *Saturation {
	return &Saturation{name: "saturation", limits: limits}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(x sim.State, u sim.Control, t float64) {
	s.samples++
	if len(s.limits) == 0 {
		return
	}
	for i, val := range u {
		l := s.limits[len(s.limits)-1]
		if i < len(s.limits) {
			l = s.limits[i]
		}
		if val <= l.Min || val >= l.Max {
			s.hits++
			break
		}
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.hits) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.hits = 0
	s.samples = 0
}
