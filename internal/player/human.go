package player

import (
	"context"
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"racetrack/internal/circuit"
	"racetrack/internal/config"
)

// pollInterval is how often a blocked Play wakes to re-check its deadline
// and stop flag; nothing else broadcasts the cond on an external Stop.
const pollInterval = 2 * time.Second

// Human is a player whose move comes from an external caller (an HTTP
// handler submitting a move on the viewer's behalf) rather than an AI
// strategy. Play blocks until SetNextMove is called or the turn timeout elapses.
type Human struct {
	Base
	constants *config.Constants

	mu        sync.Mutex
	cond      *sync.Cond
	isPlaying bool
	hasMove   bool
	moveIndex int
}

// NewHuman constructs a Human player. constants supplies TimeoutSec; pass
// nil to use config.Default().
func NewHuman(name string, constants *config.Constants) *Human {
	if constants == nil {
		constants = config.Default()
	}
	h := &Human{Base: NewBase(name), constants: constants}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Play opens the turn window, then blocks until SetNextMove delivers a move
// or the timeout elapses, in which case it self-Stops with forced=true.
func (h *Human) Play(ctx context.Context, c *circuit.Circuit, peers []Player) (int, bool) {
	h.mu.Lock()
	h.isPlaying = true
	h.hasMove = false
	h.mu.Unlock()

	deadline := time.Now().Add(time.Duration(h.constants.TimeoutSec * float64(time.Second)))

	stopPolling := make(chan struct{})
	ticker := channerics.NewTicker(stopPolling, pollInterval)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ticker {
			h.mu.Lock()
			h.cond.Broadcast()
			h.mu.Unlock()
		}
	}()

	h.mu.Lock()
	for !h.hasMove && !h.IsStopped() && time.Now().Before(deadline) {
		h.cond.Wait()
	}
	gotMove := h.hasMove
	alreadyStopped := h.IsStopped()
	idx := h.moveIndex
	h.hasMove = false
	h.isPlaying = false
	h.mu.Unlock()

	close(stopPolling)
	<-done

	if gotMove {
		return idx, true
	}
	if !alreadyStopped {
		h.Stop(true)
	}
	return 0, false
}

// SetNextMove delivers index as this Human's move for the currently open
// turn. Returns ErrHumanNotPlaying if no turn is open.
func (h *Human) SetNextMove(index int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.isPlaying {
		return ErrHumanNotPlaying
	}
	h.moveIndex = index
	h.hasMove = true
	h.isPlaying = false
	h.cond.Broadcast()
	return nil
}
