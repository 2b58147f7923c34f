package race

import (
	"errors"

	"racetrack/internal/player"
)

// ErrNotYourTurn is returned by Play when the named viewer is not the
// current player, or the current player is not a Human.
var ErrNotYourTurn = errors.New("race: it is not this player's turn")

// Play submits a Human move on behalf of viewerName. It fails if viewerName
// is not the current player or the current player isn't a Human.
func (r *Race) Play(viewerName string, moveIndex int) error {
	r.snapshotLock.RLock()
	idx := r.playerToPlay
	var current player.Player
	if idx >= 0 && idx < len(r.players) {
		current = r.players[idx]
	}
	r.snapshotLock.RUnlock()

	if current == nil || current.Name() != viewerName {
		return ErrNotYourTurn
	}
	human, ok := current.(*player.Human)
	if !ok {
		return ErrNotYourTurn
	}
	if err := human.SetNextMove(moveIndex); err != nil {
		return err
	}
	return nil
}
