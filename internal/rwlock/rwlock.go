// Package rwlock implements a reader/writer lock supporting promotion
// (upgrading a held read lock to a write lock without releasing it) and
// demotion (the reverse). The standard library's sync.RWMutex has no such
// operation, and "look up under read lock, then insert if missing" wants
// one: dropping the lock between the lookup and the insert opens a window
// another writer can use.
//
// Writers are never starved: once a writer is waiting, new readers block
// behind it. Only one promotion may be in flight at a time; a second,
// concurrent Promote call fails with ErrPromotionInProgress rather than
// risking the classic two-reader-promote deadlock.
package rwlock

import (
	"errors"
	"sync"
)

// ErrPromotionInProgress is returned by Promote when another reader already
// has a promotion request pending.
var ErrPromotionInProgress = errors.New("rwlock: a promotion is already in progress")

// ErrNotPromoting names the error for demoting a lock that is not held in
// write mode via a promotion (i.e. Lock was called directly). Demote itself
// does not check for this and returns no error.
var ErrNotPromoting = errors.New("rwlock: lock is not held via promotion")

// RWLock is a promotable reader/writer mutex.
type RWLock struct {
	mu             sync.Mutex
	cond           *sync.Cond
	readers        int
	writer         bool
	writersWaiting int
	promoting      bool
}

// New returns a ready-to-use RWLock.
func New() *RWLock {
	l := &RWLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// RLock acquires a read lock, blocking while a writer holds it or is waiting.
func (l *RWLock) RLock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.writer || l.writersWaiting > 0 {
		l.cond.Wait()
	}
	l.readers++
}

// RUnlock releases a read lock.
func (l *RWLock) RUnlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readers--
	if l.readers == 0 {
		l.cond.Broadcast()
	}
}

// Lock acquires the write lock directly (no held read lock).
func (l *RWLock) Lock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writersWaiting++
	for l.writer || l.readers > 0 {
		l.cond.Wait()
	}
	l.writersWaiting--
	l.writer = true
}

// Unlock releases a directly-acquired write lock.
func (l *RWLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = false
	l.cond.Broadcast()
}

// Promote upgrades a currently-held read lock to a write lock, without an
// intervening window where no lock is held. The caller must already hold a
// read lock (via RLock) and must release it via Demote or Unlock, not
// RUnlock, once promoted.
//
// Only one promotion may be pending at a time; a second caller attempting to
// promote concurrently gets ErrPromotionInProgress immediately rather than
// joining a wait queue that could deadlock against the first promoter (both
// hold a read lock the other's write-wait needs released).
func (l *RWLock) Promote() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.promoting {
		return ErrPromotionInProgress
	}
	l.promoting = true
	defer func() { l.promoting = false }()

	// Release our own read slot; we still logically hold "the" lock via the
	// promotion in progress, but must drain every other reader before
	// becoming the writer.
	l.readers--
	l.writersWaiting++
	for l.writer || l.readers > 0 {
		l.cond.Wait()
	}
	l.writersWaiting--
	l.writer = true
	return nil
}

// Demote downgrades a write lock acquired via Promote back to a read lock.
func (l *RWLock) Demote() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = false
	l.readers++
	l.cond.Broadcast()
}
