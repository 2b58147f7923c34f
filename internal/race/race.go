// Package race implements the turn-scheduling engine: a background
// task that drives players in shuffled order, excluding cells peers will
// occupy in the same round, publishing a consistent snapshot to external
// readers, and supporting forced external cancellation.
package race

import (
	"context"
	"log"
	"math/rand"
	"time"

	"racetrack/internal/circuit"
	"racetrack/internal/player"
	"racetrack/internal/rwlock"
)

// Race owns a Circuit (shared, read-only) and a shuffled Player list
// (exclusive), running one background turn task per Start call.
type Race struct {
	circuit *circuit.Circuit

	mustStopLock *rwlock.RWLock
	mustStop     bool

	snapshotLock *rwlock.RWLock
	unshuffled   []player.Player
	players      []player.Player
	playerToPlay int // -1 once the race has ended

	done chan struct{}
}

// New returns a Race over circuit, not yet started.
func New(c *circuit.Circuit) *Race {
	return &Race{
		circuit:      c,
		mustStopLock: rwlock.New(),
		snapshotLock: rwlock.New(),
		playerToPlay: -1,
	}
}

// Start shuffles players to determine turn order, persists both the
// shuffled and original orderings, primes the first player's allowed moves,
// and launches the background turn task.
func (r *Race) Start(players []player.Player) {
	r.snapshotLock.Lock()
	r.unshuffled = append([]player.Player(nil), players...)
	shuffled := append([]player.Player(nil), players...)
	rand.New(rand.NewSource(time.Now().UnixNano())).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	r.players = shuffled
	r.playerToPlay = 0
	r.snapshotLock.Unlock()

	if len(shuffled) > 0 {
		_ = shuffled[0].SetAllowedMoves(r.circuit, shuffled)
	}

	r.done = make(chan struct{})
	go r.run()
}

// Stop forces the race to end: must_stop is set and every player is told to
// stop; a Human blocked in Play sees the stop at its next poll wakeup.
func (r *Race) Stop() {
	r.mustStopLock.Lock()
	r.mustStop = true
	r.mustStopLock.Unlock()

	r.snapshotLock.RLock()
	players := r.players
	r.snapshotLock.RUnlock()
	for _, p := range players {
		p.Stop(true)
	}
}

// Done returns a channel closed once the turn task has exited.
func (r *Race) Done() <-chan struct{} { return r.done }

func (r *Race) isMustStop() bool {
	r.mustStopLock.RLock()
	defer r.mustStopLock.RUnlock()
	return r.mustStop
}

func (r *Race) run() {
	defer close(r.done)
	log.Println("race started")
	defer log.Println("race finished")
	for {
		if r.isMustStop() {
			return
		}

		r.snapshotLock.RLock()
		idx := r.playerToPlay
		n := len(r.players)
		r.snapshotLock.RUnlock()
		if idx < 0 || idx >= n {
			return
		}

		p := r.players[idx]
		moves := p.GetAllowedMoves()

		var moveIndex int
		var ok bool
		if len(moves) > 0 {
			moveIndex, ok = p.Play(context.Background(), r.circuit, r.players)
		}

		r.snapshotLock.Lock()
		if !ok || moveIndex < 0 || moveIndex >= len(moves) {
			p.Stop(true)
		} else {
			chosen := moves[moveIndex]
			p.SetState(chosen)
			if chosen.Status != circuit.StatusRunning {
				p.Stop(false)
			}
		}

		next, allStopped := r.advance(idx)
		if allStopped {
			log.Println("all players stopped, ending race")
			r.playerToPlay = -1
			r.snapshotLock.Unlock()
			r.mustStopLock.Lock()
			r.mustStop = true
			r.mustStopLock.Unlock()
			return
		}
		r.playerToPlay = next
		// Recomputed under the write lock: a snapshot reader must never see
		// the new current player paired with a stale prior-turn move list.
		_ = r.players[next].SetAllowedMoves(r.circuit, r.players)
		r.snapshotLock.Unlock()
	}
}

// advance finds the next non-stopped player after start, wrapping mod N. If
// a full rotation finds none, the race is over.
func (r *Race) advance(start int) (next int, allStopped bool) {
	n := len(r.players)
	for i := 1; i <= n; i++ {
		cand := (start + i) % n
		if !r.players[cand].IsStopped() {
			return cand, false
		}
	}
	return -1, true
}
