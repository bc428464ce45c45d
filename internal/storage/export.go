package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gripsim/internal/sim"
)

// ExportData is the flat JSON form of one run for external tooling.
type ExportData struct {
	ID         string             `json:"id"`
	UpdateRate float64            `json:"update_rate"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Forces     [][]float64        `json:"forces"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes one run as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	data := ExportData{
		ID:         meta.ID,
		UpdateRate: meta.UpdateRate,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Integrator: meta.Integrator,
		Steps:      len(result.Times),
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Forces:     make([][]float64, len(result.Forces)),
		Metrics:    result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, f := range result.Forces {
		data.Forces[i] = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
