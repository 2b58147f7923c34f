package player

import (
	"racetrack/internal/circuit"
	"racetrack/internal/rwlock"
)

// trajectoryWindow is the number of most-recent cells GetTrajectory
// exposes; display code never renders more than this.
const trajectoryWindow = 6

// Base implements every Player method except Play; concrete variants embed
// it and supply Play themselves. State, trajectory, allowed-moves, and the
// stopped flag are each guarded by their own rwlock so reads never block on
// one another.
type Base struct {
	name string

	stateLock *rwlock.RWLock
	state     *circuit.State

	trajectoryLock *rwlock.RWLock
	trajectory     []circuit.Cell

	allowedLock *rwlock.RWLock
	allowed     []circuit.State

	stoppedLock *rwlock.RWLock
	stopped     bool
	forced      bool
}

// NewBase constructs a Base ready to embed in a concrete Player.
func NewBase(name string) Base {
	return Base{
		name:           name,
		stateLock:      rwlock.New(),
		trajectoryLock: rwlock.New(),
		allowedLock:    rwlock.New(),
		stoppedLock:    rwlock.New(),
	}
}

func (b *Base) Name() string { return b.name }

// SetAllowedMoves computes this player's legal next states via
// circuit.NextStates, excluding any cell a peer is scheduled to occupy in
// the same upcoming round.
func (b *Base) SetAllowedMoves(c *circuit.Circuit, peers []Player) error {
	var cur *circuit.State
	nextRound := 1.0
	if s, ok := b.GetState(); ok {
		cur = &s
		nextRound = s.Round + 1
	}

	exclude := make(map[circuit.Cell]bool)
	for _, p := range peers {
		ps, ok := p.GetState()
		if !ok {
			continue
		}
		if ps.Round == nextRound {
			exclude[ps.XY] = true
		}
	}

	moves, err := c.NextStates(cur, exclude)
	if err != nil {
		return err
	}

	b.allowedLock.Lock()
	b.allowed = moves
	b.allowedLock.Unlock()
	return nil
}

// GetAllowedMoves returns a copy of the most recently computed move list.
func (b *Base) GetAllowedMoves() []circuit.State {
	b.allowedLock.RLock()
	defer b.allowedLock.RUnlock()
	out := make([]circuit.State, len(b.allowed))
	copy(out, b.allowed)
	return out
}

// SetState commits a chosen move and appends it to the trajectory. A move
// landing after the player was stopped is dropped.
func (b *Base) SetState(s circuit.State) {
	if b.IsStopped() {
		return
	}
	b.stateLock.Lock()
	cp := s
	b.state = &cp
	b.stateLock.Unlock()

	b.trajectoryLock.Lock()
	b.trajectory = append(b.trajectory, s.XY)
	b.trajectoryLock.Unlock()
}

// GetState returns the current state and whether the player has moved yet.
func (b *Base) GetState() (circuit.State, bool) {
	b.stateLock.RLock()
	defer b.stateLock.RUnlock()
	if b.state == nil {
		return circuit.State{}, false
	}
	return *b.state, true
}

// GetTrajectory returns up to the last trajectoryWindow cells visited.
func (b *Base) GetTrajectory() []circuit.Cell {
	b.trajectoryLock.RLock()
	defer b.trajectoryLock.RUnlock()
	n := len(b.trajectory)
	start := 0
	if n > trajectoryWindow {
		start = n - trajectoryWindow
	}
	out := make([]circuit.Cell, n-start)
	copy(out, b.trajectory[start:])
	return out
}

// Stop marks the player as no longer participating. forced distinguishes an
// externally-imposed stop (race.Stop, a timed-out Human) from a natural one
// (the player's chosen move was terminal).
func (b *Base) Stop(forced bool) {
	b.stoppedLock.Lock()
	b.stopped = true
	if forced {
		b.forced = true
	}
	b.stoppedLock.Unlock()
}

// IsStopped reports whether the player has stopped, by any means.
func (b *Base) IsStopped() bool {
	b.stoppedLock.RLock()
	defer b.stoppedLock.RUnlock()
	return b.stopped
}

// WasForced reports whether the stop (if any) was externally imposed.
func (b *Base) WasForced() bool {
	b.stoppedLock.RLock()
	defer b.stoppedLock.RUnlock()
	return b.forced
}
