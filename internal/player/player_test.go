package player

import (
	"context"
	"testing"

	"racetrack/internal/circuit"
	"racetrack/internal/config"
	"racetrack/internal/geometry"

	. "github.com/smartystreets/goconvey/convey"
)

// stubPlayer satisfies the Player interface with a no-op Play, so tests can
// exercise Base's bookkeeping via a type peers can actually be populated
// with.
type stubPlayer struct{ Base }

func (s *stubPlayer) Play(context.Context, *circuit.Circuit, []Player) (int, bool) {
	return 0, false
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) Distance(circuit.Cell) (float64, error) { return 10, nil }
func (fakeAnalyzer) Contains(circuit.Cell) bool             { return true }
func (fakeAnalyzer) MaxDistance() float64                   { return 50 }

func buildCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	rec := circuit.TrackRecord{
		Name:         "rect",
		GridSize:     10,
		MaximumSpeed: 5,
		NumLaps:      2,
		StartingLine: [2]geometry.Point{{X: 70, Y: 0}, {X: 30, Y: 0}},
		OuterBorder: []geometry.Point{
			{X: -60, Y: -20}, {X: 60, Y: -20}, {X: 60, Y: 20}, {X: -60, Y: 20},
		},
		InnerBorder: []geometry.Point{
			{X: -40, Y: -10}, {X: 40, Y: -10}, {X: 40, Y: 10}, {X: -40, Y: 10},
		},
	}
	c, err := circuit.New(rec, config.Default())
	if err != nil {
		t.Fatalf("circuit.New: %v", err)
	}
	c.AttachAnalyzer(fakeAnalyzer{})
	return c
}

func TestBaseStateAndTrajectory(t *testing.T) {
	Convey("Given a fresh Base", t, func() {
		b := NewBase("alice")

		Convey("GetState reports not-yet-moved", func() {
			_, ok := b.GetState()
			So(ok, ShouldBeFalse)
		})

		Convey("SetState commits a copy and GetState returns it", func() {
			s := circuit.State{XY: circuit.Cell{X: 1, Y: 2}, Round: 1, Status: circuit.StatusRunning}
			b.SetState(s)
			got, ok := b.GetState()
			So(ok, ShouldBeTrue)
			So(got, ShouldResemble, s)
		})

		Convey("GetTrajectory keeps only the most recent window", func() {
			for i := 0; i < 10; i++ {
				b.SetState(circuit.State{XY: circuit.Cell{X: i, Y: 0}, Status: circuit.StatusRunning})
			}
			traj := b.GetTrajectory()
			So(len(traj), ShouldEqual, trajectoryWindow)
			So(traj[len(traj)-1], ShouldResemble, circuit.Cell{X: 9, Y: 0})
			So(traj[0], ShouldResemble, circuit.Cell{X: 4, Y: 0})
		})
	})
}

func TestBaseStop(t *testing.T) {
	Convey("Given a fresh Base", t, func() {
		b := NewBase("bob")

		Convey("It starts not stopped", func() {
			So(b.IsStopped(), ShouldBeFalse)
			So(b.WasForced(), ShouldBeFalse)
		})

		Convey("A voluntary stop sets stopped but not forced", func() {
			b.Stop(false)
			So(b.IsStopped(), ShouldBeTrue)
			So(b.WasForced(), ShouldBeFalse)
		})

		Convey("A forced stop sets both flags", func() {
			b.Stop(true)
			So(b.IsStopped(), ShouldBeTrue)
			So(b.WasForced(), ShouldBeTrue)
		})
	})
}

func TestSetAllowedMoves(t *testing.T) {
	Convey("Given a circuit and a fresh Base", t, func() {
		c := buildCircuit(t)
		b := NewBase("carol")

		Convey("With no prior state, it computes the starting moves", func() {
			err := b.SetAllowedMoves(c, nil)
			So(err, ShouldBeNil)
			moves := b.GetAllowedMoves()
			So(len(moves), ShouldEqual, len(c.StartingPoints))
		})

		Convey("A peer occupying a cell in the next round excludes that cell", func() {
			err := b.SetAllowedMoves(c, nil)
			So(err, ShouldBeNil)
			baseline := b.GetAllowedMoves()
			So(len(baseline), ShouldBeGreaterThan, 0)

			peer := &stubPlayer{Base: NewBase("dave")}
			peer.SetState(circuit.State{XY: baseline[0].XY, Round: 1, Status: circuit.StatusRunning})

			err = b.SetAllowedMoves(c, []Player{peer})
			So(err, ShouldBeNil)
			filtered := b.GetAllowedMoves()
			So(len(filtered), ShouldEqual, len(baseline)-1)
		})

		Convey("GetAllowedMoves returns an independent copy", func() {
			_ = b.SetAllowedMoves(c, nil)
			moves := b.GetAllowedMoves()
			if len(moves) > 0 {
				moves[0].Round = 999
			}
			again := b.GetAllowedMoves()
			if len(again) > 0 {
				So(again[0].Round, ShouldNotEqual, 999)
			}
		})
	})
}
