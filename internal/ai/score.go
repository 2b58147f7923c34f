// Package ai implements the three computer opponents over circuit.NextStates:
// FixedDepth (exhaustive minimax), MonteCarlo (parallel random rollouts),
// and AStar (depth-bounded Hybrid-A* with continuous-state binning). All
// share one scoring convention: smaller is better.
package ai

import (
	"racetrack/internal/circuit"
	"racetrack/internal/config"
)

// score evaluates a leaf state under the shared convention: Crashed adds
// CrashScore on top of the distance score, Finished collapses to the round
// count plus MinimumScore (dominating every non-finishing score), and a
// Running state scores by remaining distance to finish.
func score(s circuit.State, c *circuit.Circuit, constants *config.Constants) float64 {
	switch s.Status {
	case circuit.StatusCrashed:
		return distanceScore(s, c) + constants.Scoring.CrashScore
	case circuit.StatusFinished:
		return s.Round + constants.Scoring.MinimumScore
	default:
		return distanceScore(s, c)
	}
}

func distanceScore(s circuit.State, c *circuit.Circuit) float64 {
	lapLength := c.LapLength()
	remainingLaps := float64(c.NumLaps - s.Lap - 1)
	return remainingLaps*lapLength + s.DistanceLeft
}
