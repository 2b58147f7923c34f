package ai

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"racetrack/internal/circuit"
	"racetrack/internal/config"
	"racetrack/internal/player"
)

// MonteCarlo picks a move by fanning out NumThreads parallel workers, each
// running many random rollouts from a uniformly chosen root move, and
// combining the per-worker best (score, root index) by minimum score.
type MonteCarlo struct {
	player.Base
	constants *config.Constants
}

// NewMonteCarlo constructs a MonteCarlo player.
func NewMonteCarlo(name string, constants *config.Constants) *MonteCarlo {
	if constants == nil {
		constants = config.Default()
	}
	return &MonteCarlo{Base: player.NewBase(name), constants: constants}
}

type rolloutResult struct {
	score float64
	index int
	found bool
}

// Play runs the configured number of workers concurrently via errgroup and returns the
// root index of whichever worker's best rollout scored lowest.
func (m *MonteCarlo) Play(ctx context.Context, c *circuit.Circuit, peers []player.Player) (int, bool) {
	moves := m.GetAllowedMoves()
	if len(moves) == 0 {
		return 0, false
	}

	numWorkers := m.constants.MonteCarlo.NumThreads
	results := make([]rolloutResult, numWorkers)

	group, _ := errgroup.WithContext(ctx)
	for w := 0; w < numWorkers; w++ {
		w := w
		group.Go(func() error {
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)))
			results[w] = m.rollout(rng, c, moves)
			return nil
		})
	}
	_ = group.Wait()

	best := 0
	bestScore := 0.0
	found := false
	for _, r := range results {
		if !r.found {
			continue
		}
		if !found || r.score < bestScore {
			bestScore = r.score
			best = r.index
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}

// rollout performs a batch of uniformly-random playouts and remembers the
// single (score, root index) pair with the lowest score seen.
func (m *MonteCarlo) rollout(rng *rand.Rand, c *circuit.Circuit, moves []circuit.State) rolloutResult {
	spread := m.constants.MonteCarlo.NumRandomPlayMax - m.constants.MonteCarlo.NumRandomPlayMin
	numPlays := m.constants.MonteCarlo.NumRandomPlayMin
	if spread > 0 {
		numPlays += rng.Intn(spread + 1)
	}

	var result rolloutResult
	for p := 0; p < numPlays; p++ {
		rootIdx := rng.Intn(len(moves))
		state := moves[rootIdx]

		for depth := 0; !state.Terminal() && depth < m.constants.MonteCarlo.MaxDepth; depth++ {
			successors, err := c.NextStates(&state, nil)
			if err != nil || len(successors) == 0 {
				break
			}
			state = successors[rng.Intn(len(successors))]
		}

		s := score(state, c, m.constants)
		if !result.found || s < result.score {
			result = rolloutResult{score: s, index: rootIdx, found: true}
		}
	}
	return result
}
