package rwlock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBasicLocking(t *testing.T) {
	Convey("Given a new RWLock", t, func() {
		l := New()

		Convey("Multiple readers can hold it concurrently", func() {
			l.RLock()
			l.RLock()
			So(l.readers, ShouldEqual, 2)
			l.RUnlock()
			l.RUnlock()
			So(l.readers, ShouldEqual, 0)
		})

		Convey("A writer excludes a concurrent reader until it unlocks", func() {
			l.Lock()
			acquired := make(chan struct{})
			go func() {
				l.RLock()
				close(acquired)
				l.RUnlock()
			}()

			select {
			case <-acquired:
				t.Fatal("reader acquired while writer held the lock")
			case <-time.After(20 * time.Millisecond):
			}

			l.Unlock()
			select {
			case <-acquired:
			case <-time.After(time.Second):
				t.Fatal("reader never acquired after writer released")
			}
		})

		Convey("A pending writer blocks new readers (no writer starvation)", func() {
			l.RLock() // first reader holds the lock

			writerDone := make(chan struct{})
			go func() {
				l.Lock()
				close(writerDone)
				l.Unlock()
			}()
			time.Sleep(20 * time.Millisecond) // let the writer start waiting

			secondReaderAcquired := make(chan struct{})
			go func() {
				l.RLock()
				close(secondReaderAcquired)
				l.RUnlock()
			}()

			select {
			case <-secondReaderAcquired:
				t.Fatal("second reader jumped ahead of a waiting writer")
			case <-time.After(20 * time.Millisecond):
			}

			l.RUnlock() // release the first reader; writer should now proceed
			select {
			case <-writerDone:
			case <-time.After(time.Second):
				t.Fatal("writer never acquired")
			}
			<-secondReaderAcquired
		})
	})
}

func TestPromoteDemote(t *testing.T) {
	Convey("Given a lock held by one reader", t, func() {
		l := New()
		l.RLock()

		Convey("Promote upgrades it to a write lock that excludes new readers until Demote", func() {
			err := l.Promote()
			So(err, ShouldBeNil)

			var raced int32
			blocked := make(chan struct{})
			go func() {
				l.RLock()
				atomic.AddInt32(&raced, 1)
				l.RUnlock()
				close(blocked)
			}()
			time.Sleep(20 * time.Millisecond)
			So(atomic.LoadInt32(&raced), ShouldEqual, 0)

			l.Demote()
			<-blocked
			So(atomic.LoadInt32(&raced), ShouldEqual, 1)
			l.RUnlock()
		})

		Convey("A second concurrent Promote fails with ErrPromotionInProgress", func() {
			var wg sync.WaitGroup
			promoting := make(chan struct{})
			release := make(chan struct{})
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.RLock()
				close(promoting)
				<-release
				_ = l.Promote()
				l.Unlock()
			}()

			<-promoting
			// give the goroutine a chance to enter Promote and set the flag
			time.Sleep(10 * time.Millisecond)
			close(release)
			time.Sleep(10 * time.Millisecond)

			err := l.Promote()
			So(err, ShouldEqual, ErrPromotionInProgress)

			l.RUnlock()
			wg.Wait()
		})
	})
}
