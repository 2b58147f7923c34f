package player

import (
	"context"
	"testing"
	"time"

	"racetrack/internal/config"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSetNextMoveRequiresOpenTurn(t *testing.T) {
	Convey("Given a Human with no turn open", t, func() {
		h := NewHuman("erin", config.Default())

		Convey("SetNextMove fails with ErrHumanNotPlaying", func() {
			err := h.SetNextMove(3)
			So(err, ShouldEqual, ErrHumanNotPlaying)
		})
	})
}

func TestHumanPlayReceivesMove(t *testing.T) {
	Convey("Given a Human whose turn is open", t, func() {
		h := NewHuman("frank", config.Default())

		Convey("A concurrent SetNextMove unblocks Play with that move", func() {
			go func() {
				// Give Play a moment to flip isPlaying before delivering the move.
				for i := 0; i < 100; i++ {
					if err := h.SetNextMove(5); err == nil {
						return
					}
					time.Sleep(time.Millisecond)
				}
			}()

			idx, ok := h.Play(context.Background(), nil, nil)
			So(ok, ShouldBeTrue)
			So(idx, ShouldEqual, 5)
			So(h.IsStopped(), ShouldBeFalse)
		})
	})
}

func TestHumanPlayTimesOut(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out a real poll interval")
	}
	Convey("Given a Human with a very short timeout and nobody submitting a move", t, func() {
		constants := config.Default()
		constants.TimeoutSec = 0.01

		h := NewHuman("gina", constants)

		Convey("Play returns ok=false and self-stops as forced", func() {
			idx, ok := h.Play(context.Background(), nil, nil)
			So(ok, ShouldBeFalse)
			So(idx, ShouldEqual, 0)
			So(h.IsStopped(), ShouldBeTrue)
			So(h.WasForced(), ShouldBeTrue)
		})
	})
}
