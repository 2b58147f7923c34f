package ai

import (
	"context"

	"racetrack/internal/circuit"
	"racetrack/internal/config"
	"racetrack/internal/player"
)

// FixedDepth is an exhaustive minimax search to a fixed depth over
// successor states, ignoring other players after the first ply.
type FixedDepth struct {
	player.Base
	constants *config.Constants
}

// NewFixedDepth constructs a FixedDepth player.
func NewFixedDepth(name string, constants *config.Constants) *FixedDepth {
	if constants == nil {
		constants = config.Default()
	}
	return &FixedDepth{Base: player.NewBase(name), constants: constants}
}

// Play scores each allowed move by looking MaxDepth further plies ahead
// and returns the index with the lowest score.
func (f *FixedDepth) Play(ctx context.Context, c *circuit.Circuit, peers []player.Player) (int, bool) {
	moves := f.GetAllowedMoves()
	if len(moves) == 0 {
		return 0, false
	}

	best := 0
	bestScore := 0.0
	found := false
	for i, m := range moves {
		s, ok := f.evaluate(c, m, f.constants.FixedDepth.MaxDepth)
		if !ok {
			continue
		}
		if !found || s < bestScore {
			bestScore = s
			best = i
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}

// evaluate returns the minimax score of state, looking depth further plies
// ahead. A subtree with no legal move at all reports ok=false and is
// skipped by its parent.
func (f *FixedDepth) evaluate(c *circuit.Circuit, state circuit.State, depth int) (float64, bool) {
	if state.Terminal() || depth <= 0 {
		return score(state, c, f.constants), true
	}

	successors, err := c.NextStates(&state, nil)
	if err != nil || len(successors) == 0 {
		return 0, false
	}

	best := 0.0
	found := false
	for _, s := range successors {
		if v, ok := f.evaluate(c, s, depth-1); ok && (!found || v < best) {
			best = v
			found = true
		}
	}
	return best, found
}
