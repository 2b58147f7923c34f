package registry

import (
	"racetrack/internal/ai"
	"racetrack/internal/config"
	"racetrack/internal/player"
)

// Default builds a Registry with every computer-player strategy registered
// under its conventional name. Registration is a set of explicit calls
// here, not a side effect of declaring a type somewhere.
func Default(constants *config.Constants) *Registry {
	r := New()
	r.Register("FixedDepthPlayer", func(name string) player.Player {
		return ai.NewFixedDepth(name, constants)
	})
	r.Register("MonteCarloPlayer", func(name string) player.Player {
		return ai.NewMonteCarlo(name, constants)
	})
	r.Register("AStarPlayer", func(name string) player.Player {
		return ai.NewAStar(name, constants)
	})
	return r
}
