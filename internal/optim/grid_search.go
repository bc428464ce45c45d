package optim

import (
	"context"
	"math"

	"github.com/san-kum/gripsim/internal/sim"
)

// GridSearch sweeps controller parameters over fixed value grids and keeps
// the combination that minimizes a recorded metric. The caller supplies an
// evaluate function that runs one closed-loop episode for a candidate
// parameter set.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search returns the best parameter set and its metric value. Candidates
// whose evaluation fails are skipped; if every candidate fails, the best
// value stays +Inf and the returned params are nil.
func (g *GridSearch) Search(
	ctx context.Context,
	evaluate func(ctx context.Context, params map[string]float64) (*sim.Result, error),
	metricName string,
) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), evaluate, metricName, &best, &bestParams)
	return bestParams, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(ctx context.Context, params map[string]float64) (*sim.Result, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		result, err := evaluate(ctx, current)
		if err != nil {
			return nil
		}
		val, ok := result.Metrics[metricName]
		if !ok {
			return nil
		}
		if val < *best {
			*best = val
			candidate := make(map[string]float64, len(current))
			for k, v := range current {
				candidate[k] = v
			}
			*bestParams = candidate
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, current, evaluate, metricName, best, bestParams); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}
