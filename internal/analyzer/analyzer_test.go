package analyzer

import (
	"testing"

	"racetrack/internal/circuit"
	"racetrack/internal/config"
	"racetrack/internal/geometry"

	. "github.com/smartystreets/goconvey/convey"
)

// rectAnnulusRecord builds a rectangular annulus track: an outer rectangle
// with a smaller rectangular hole, starting line running from outside the
// outer border to inside the hole through the right-hand band. The band is
// kept one cell wide so the circuit has a single starting cell, whose lap
// geodesic is exactly the analyzer's maximum distance.
func rectAnnulusRecord() circuit.TrackRecord {
	return circuit.TrackRecord{
		Name:         "rect",
		GridSize:     10,
		MaximumSpeed: 5,
		NumLaps:      2,
		StartingLine: [2]geometry.Point{{X: 70, Y: 0}, {X: 30, Y: 0}},
		OuterBorder: []geometry.Point{
			{X: -60, Y: -20}, {X: 55, Y: -20}, {X: 55, Y: 20}, {X: -60, Y: 20},
		},
		InnerBorder: []geometry.Point{
			{X: -40, Y: -10}, {X: 45, Y: -10}, {X: 45, Y: 10}, {X: -40, Y: 10},
		},
	}
}

func buildCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	c, err := circuit.New(rectAnnulusRecord(), config.Default())
	if err != nil {
		t.Fatalf("circuit.New: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	Convey("Given a valid rectangular annulus circuit", t, func() {
		c := buildCircuit(t)

		Convey("New builds an analyzer with a positive MaxDistance", func() {
			a, err := New(c, config.Default())
			So(err, ShouldBeNil)
			So(a, ShouldNotBeNil)
			So(a.MaxDistance(), ShouldBeGreaterThan, 0)
		})

		Convey("Every starting point is a full lap away from the finish", func() {
			a, err := New(c, config.Default())
			So(err, ShouldBeNil)
			for _, p := range c.StartingPoints {
				So(a.Contains(p), ShouldBeTrue)
				d, err := a.Distance(p)
				So(err, ShouldBeNil)
				So(d, ShouldAlmostEqual, a.MaxDistance(), 1e-3)
			}
		})

		Convey("A cell deep inside the hole is not contained", func() {
			a, err := New(c, config.Default())
			So(err, ShouldBeNil)
			So(a.Contains(circuit.Cell{X: -7, Y: 0}), ShouldBeFalse)
		})

		Convey("Distance on an unreachable cell returns ErrUnreachable", func() {
			a, err := New(c, config.Default())
			So(err, ShouldBeNil)
			_, err = a.Distance(circuit.Cell{X: 1000, Y: 1000})
			So(err, ShouldEqual, ErrUnreachable)
		})
	})
}

func TestStringPullNoGates(t *testing.T) {
	Convey("Given an empty gate chain (start and goal share a triangle)", t, func() {
		start := geometry.Point{X: 0, Y: 0}
		goal := geometry.Point{X: 10, Y: 0}

		Convey("stringPull returns the direct segment", func() {
			path := stringPull(nil, start, goal)
			So(len(path), ShouldEqual, 2)
			So(path[0], ShouldResemble, start)
			So(path[1], ShouldResemble, goal)
			So(pathLength(path), ShouldAlmostEqual, 10, 1e-9)
		})
	})
}

func TestStringPullAroundObstacle(t *testing.T) {
	Convey("Given a corridor that bends around a single gate", t, func() {
		start := geometry.Point{X: 0, Y: 0}
		goal := geometry.Point{X: 10, Y: 0}
		// A gate pinched tight near (5, 5) forces the path up and over it.
		gates := []gate{{
			Left:  geometry.Point{X: 5, Y: 5},
			Right: geometry.Point{X: 5, Y: 5},
		}}

		Convey("stringPull routes the path through the pinch point", func() {
			path := stringPull(gates, start, goal)
			So(path[0], ShouldResemble, start)
			So(path[len(path)-1], ShouldResemble, goal)
			So(pathLength(path), ShouldBeGreaterThan, start.Dist(goal))
		})
	})
}

func TestTriarea2(t *testing.T) {
	Convey("Given three points turning counterclockwise", t, func() {
		a := geometry.Point{X: 0, Y: 0}
		b := geometry.Point{X: 1, Y: 0}
		c := geometry.Point{X: 1, Y: 1}

		Convey("triarea2 is positive", func() {
			So(triarea2(a, b, c), ShouldBeGreaterThan, 0)
		})

		Convey("Reversing b and c flips the sign", func() {
			So(triarea2(a, c, b), ShouldBeLessThan, 0)
		})
	})
}
