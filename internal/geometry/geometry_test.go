package geometry

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func square(x0, y0, x1, y1 float64) Ring {
	return Ring{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	}
}

func TestContainsPointRing(t *testing.T) {
	Convey("Given a 10x10 square ring", t, func() {
		ring := square(0, 0, 10, 10)

		Convey("A point in the interior is contained", func() {
			So(ContainsPointRing(ring, Point{X: 5, Y: 5}), ShouldBeTrue)
		})

		Convey("A point well outside is not contained", func() {
			So(ContainsPointRing(ring, Point{X: 50, Y: 50}), ShouldBeFalse)
		})

		Convey("A point exactly on an edge is contained", func() {
			So(ContainsPointRing(ring, Point{X: 5, Y: 0}), ShouldBeTrue)
		})

		Convey("A point exactly on a corner is contained", func() {
			So(ContainsPointRing(ring, Point{X: 0, Y: 0}), ShouldBeTrue)
		})
	})
}

func TestContainsPointWithHole(t *testing.T) {
	Convey("Given an annulus (outer square with a square hole)", t, func() {
		poly := Polygon{
			Outer: square(0, 0, 10, 10),
			Hole:  square(4, 4, 6, 6),
		}

		Convey("A point in the road (between outer and hole) is contained", func() {
			So(ContainsPoint(poly, Point{X: 1, Y: 1}), ShouldBeTrue)
		})

		Convey("A point strictly inside the hole is not contained", func() {
			So(ContainsPoint(poly, Point{X: 5, Y: 5}), ShouldBeFalse)
		})

		Convey("A point on the hole's own boundary is contained (hole border is drivable)", func() {
			So(ContainsPoint(poly, Point{X: 4, Y: 5}), ShouldBeTrue)
		})

		Convey("A point outside the outer ring is not contained", func() {
			So(ContainsPoint(poly, Point{X: -1, Y: -1}), ShouldBeFalse)
		})
	})
}

func TestIntersect(t *testing.T) {
	Convey("Given two segments that cross in their interiors", t, func() {
		s1 := Segment{A: Point{X: 0, Y: 0}, B: Point{X: 10, Y: 10}}
		s2 := Segment{A: Point{X: 0, Y: 10}, B: Point{X: 10, Y: 0}}

		Convey("Intersect reports the crossing point", func() {
			p, ok := Intersect(s1, s2)
			So(ok, ShouldBeTrue)
			So(p.X, ShouldAlmostEqual, 5, 1e-9)
			So(p.Y, ShouldAlmostEqual, 5, 1e-9)
		})
	})

	Convey("Given two parallel, non-overlapping segments", t, func() {
		s1 := Segment{A: Point{X: 0, Y: 0}, B: Point{X: 10, Y: 0}}
		s2 := Segment{A: Point{X: 0, Y: 1}, B: Point{X: 10, Y: 1}}

		Convey("Intersect reports no intersection", func() {
			_, ok := Intersect(s1, s2)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given two segments that only touch at a shared endpoint", t, func() {
		s1 := Segment{A: Point{X: 0, Y: 0}, B: Point{X: 5, Y: 0}}
		s2 := Segment{A: Point{X: 5, Y: 0}, B: Point{X: 5, Y: 5}}

		Convey("Intersect still reports the touching point", func() {
			p, ok := Intersect(s1, s2)
			So(ok, ShouldBeTrue)
			So(p, ShouldResemble, Point{X: 5, Y: 0})
		})
	})
}

func TestSegmentInPolygon(t *testing.T) {
	Convey("Given a square polygon with no hole", t, func() {
		poly := Polygon{Outer: square(0, 0, 10, 10)}

		Convey("A segment fully inside is contained", func() {
			seg := Segment{A: Point{X: 1, Y: 1}, B: Point{X: 9, Y: 9}}
			So(SegmentInPolygon(poly, seg), ShouldBeTrue)
		})

		Convey("A segment that exits through an edge is not contained", func() {
			seg := Segment{A: Point{X: 1, Y: 1}, B: Point{X: 15, Y: 1}}
			So(SegmentInPolygon(poly, seg), ShouldBeFalse)
		})

		Convey("A segment starting on the boundary and staying inside is contained", func() {
			seg := Segment{A: Point{X: 0, Y: 5}, B: Point{X: 5, Y: 5}}
			So(SegmentInPolygon(poly, seg), ShouldBeTrue)
		})
	})
}

func TestBoundingBox(t *testing.T) {
	Convey("Given an irregular ring", t, func() {
		ring := Ring{{X: -2, Y: 3}, {X: 5, Y: -1}, {X: 1, Y: 8}}

		Convey("BoundingBox returns the min/max corners", func() {
			min, max := BoundingBox(ring)
			So(min, ShouldResemble, Point{X: -2, Y: -1})
			So(max, ShouldResemble, Point{X: 5, Y: 8})
		})
	})
}

func TestNormalizeAngle(t *testing.T) {
	Convey("Given angles outside [-pi, pi]", t, func() {
		Convey("An angle of 3*pi normalizes to pi", func() {
			So(NormalizeAngle(3*math.Pi), ShouldAlmostEqual, math.Pi, 1e-9)
		})
		Convey("An angle of -3*pi normalizes to -pi", func() {
			So(NormalizeAngle(-3*math.Pi), ShouldAlmostEqual, -math.Pi, 1e-9)
		})
		Convey("An angle already in range is unchanged", func() {
			So(NormalizeAngle(1.0), ShouldAlmostEqual, 1.0, 1e-9)
		})
	})
}
