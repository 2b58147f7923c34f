// Package player implements the per-car abstraction the race engine drives:
// a common Base (state, trajectory, allowed-moves, stop flag, each under
// its own lock) plus the Human variant that blocks a turn-task goroutine
// on a condition variable until a move is submitted or a timeout elapses.
// The computer strategies (package ai) embed Base directly.
package player

import (
	"context"
	"errors"

	"racetrack/internal/circuit"
)

// ErrHumanNotPlaying is returned by Human.SetNextMove when no turn is
// currently open for that player.
var ErrHumanNotPlaying = errors.New("player: move submitted outside the human's turn window")

// Player is the capability set every car variant satisfies: Human and the
// computer strategies in package ai.
type Player interface {
	Name() string

	// Play returns the index into GetAllowedMoves to commit to, or ok=false
	// if no move could be produced (a Human's timeout, or an empty move
	// set). It may block arbitrarily long (Human) or run to completion
	// synchronously (computer strategies).
	Play(ctx context.Context, c *circuit.Circuit, peers []Player) (index int, ok bool)

	// SetAllowedMoves computes this player's legal next-turn states,
	// excluding cells peers scheduled for the same round already occupy.
	SetAllowedMoves(c *circuit.Circuit, peers []Player) error
	GetAllowedMoves() []circuit.State

	SetState(s circuit.State)
	GetState() (circuit.State, bool)
	GetTrajectory() []circuit.Cell

	Stop(forced bool)
	IsStopped() bool
}
