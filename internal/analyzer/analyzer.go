// Package analyzer computes the geodesic distance-to-finish used by
// circuit.NextStates to populate State.DistanceLeft, and by the AI
// strategies as a heuristic. It triangulates the drivable road (cut
// at the starting line so the annulus becomes a simple polygon), builds a
// funnel tree rooted at the finish triangle, and answers per-cell distance
// queries by string-pulling the shortest path through that tree.
package analyzer

import (
	"errors"
	"math"

	"racetrack/internal/circuit"
	"racetrack/internal/config"
	"racetrack/internal/geometry"
)

// ErrUnreachable is returned by Distance for a cell the analyzer could not
// place in any triangle of the cut polygon — typically a cell inside the
// narrow seam introduced by the cut itself.
var ErrUnreachable = errors.New("analyzer: cell is not reachable from the finish")

// Analyzer is a circuit.DistanceAnalyzer backed by a Delaunay triangulation
// of the circuit's drivable road.
type Analyzer struct {
	finish      geometry.Point
	tree        *funnelTree
	distances   map[circuit.Cell]float64
	maxDistance float64
}

// New triangulates c's drivable road and precomputes the geodesic distance
// to finish for every cell c considers on-road. The caller is expected to
// call c.AttachAnalyzer(result) once this returns.
func New(c *circuit.Circuit, constants *config.Constants) (*Analyzer, error) {
	if constants == nil {
		constants = config.Default()
	}

	cut, err := cutAnnulus(c, constants)
	if err != nil {
		return nil, err
	}
	tree, err := buildFunnelTree(cut)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		finish:    cut.Finish,
		tree:      tree,
		distances: make(map[circuit.Cell]float64),
	}

	min, max := geometry.BoundingBox(c.DrivableRoad.Outer)
	for x := int(math.Floor(min.X)); x <= int(math.Ceil(max.X)); x++ {
		for y := int(math.Floor(min.Y)); y <= int(math.Ceil(max.Y)); y++ {
			cell := circuit.Cell{X: x, Y: y}
			p := cell.ToPoint()
			if !geometry.ContainsPoint(c.DrivableRoad, p) {
				continue
			}
			idx := tree.locate(p)
			if idx == -1 {
				continue // pruned: unreachable from the finish, e.g. inside the cut seam
			}
			gates := tree.gateChain(idx)
			path := stringPull(gates, p, a.finish)
			dist := pathLength(path) + constants.Analyzer.ExtraLength
			a.distances[cell] = dist
			if dist > a.maxDistance {
				a.maxDistance = dist
			}
		}
	}

	return a, nil
}

// Distance returns the precomputed geodesic distance from cell to the
// finish point, or ErrUnreachable if cell was never placed in a triangle.
func (a *Analyzer) Distance(cell circuit.Cell) (float64, error) {
	d, ok := a.distances[cell]
	if !ok {
		return 0, ErrUnreachable
	}
	return d, nil
}

// Contains reports whether cell has a known distance to finish.
func (a *Analyzer) Contains(cell circuit.Cell) bool {
	_, ok := a.distances[cell]
	return ok
}

// MaxDistance returns the largest distance-to-finish computed over every
// reachable cell, usable as an approximate lap length.
func (a *Analyzer) MaxDistance() float64 {
	return a.maxDistance
}
