// Package geometry implements the planar predicates the circuit and analyzer
// build on: point-in-ring containment, segment-in-polygon containment, and
// segment/segment intersection. Everything here is exact float64 arithmetic;
// the integer grid lives one layer up, in package circuit.
package geometry

import "math"

// Epsilon bounds the tolerance used when a predicate must decide whether a
// point lies exactly on a boundary rather than strictly inside/outside it.
const Epsilon = 1e-9

// Point is a planar point in circuit units (post grid-size scaling happens
// one layer up; geometry itself is scale-agnostic).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z-component of the 2D cross product p x q.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Length returns the Euclidean length of p treated as a vector.
func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Length() }

// Segment is a closed line segment [A, B].
type Segment struct {
	A, B Point
}

// Ring is a closed polygon boundary, listed without a repeated closing point.
type Ring []Point

// Polygon is a simple polygon with at most one interior hole, matching the
// circuit's "drivable road" annulus before it's cut for analysis, and the
// simply-connected shape after cutting.
type Polygon struct {
	Outer Ring
	Hole  Ring // nil/empty if there is no hole
}

// edges returns the closed sequence of edges of a ring.
func edges(r Ring) []Segment {
	if len(r) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(r))
	for i := range r {
		segs = append(segs, Segment{A: r[i], B: r[(i+1)%len(r)]})
	}
	return segs
}

// ContainsPointRing reports whether p lies inside or on ring r, using the
// standard even-odd ray-casting rule. Points exactly on the boundary are
// reported as contained, since callers (circuit starting-point enumeration,
// on-road checks) treat the boundary as part of the road.
func ContainsPointRing(r Ring, p Point) bool {
	if onBoundary(r, p) {
		return true
	}
	inside := false
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := r[i], r[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xIntersect := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

func onBoundary(r Ring, p Point) bool {
	for _, seg := range edges(r) {
		if distPointToSegment(p, seg) < Epsilon {
			return true
		}
	}
	return false
}

func distPointToSegment(p Point, seg Segment) float64 {
	d := seg.B.Sub(seg.A)
	length2 := d.Dot(d)
	if length2 == 0 {
		return p.Dist(seg.A)
	}
	t := p.Sub(seg.A).Dot(d) / length2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := seg.A.Add(d.Scale(t))
	return p.Dist(proj)
}

// ContainsPoint reports whether p lies within the drivable area of poly:
// inside the outer ring and outside the hole (if any).
func ContainsPoint(poly Polygon, p Point) bool {
	if !ContainsPointRing(poly.Outer, p) {
		return false
	}
	if len(poly.Hole) > 0 && strictlyInsideHole(poly.Hole, p) {
		return false
	}
	return true
}

// StrictlyContains reports whether p lies in the interior of poly with both
// boundaries excluded. Containment tests that classify a region by a single
// probe point (e.g. a triangle by its centroid) need the strict form: a
// probe exactly on the boundary belongs to neither side.
func StrictlyContains(poly Polygon, p Point) bool {
	if onBoundary(poly.Outer, p) {
		return false
	}
	if len(poly.Hole) > 0 && onBoundary(poly.Hole, p) {
		return false
	}
	return ContainsPoint(poly, p)
}

// strictlyInsideHole is like ContainsPointRing but treats the hole boundary
// itself as drivable (the road includes its own inner border).
func strictlyInsideHole(hole Ring, p Point) bool {
	if onBoundary(hole, p) {
		return false
	}
	return ContainsPointRing(hole, p)
}

// Intersect returns the single intersection point of two segments, if one
// exists. Collinear overlaps and parallel non-intersecting segments both
// report ok=false; starting-line crossing detection only ever wants a
// single crossing point or nothing.
func Intersect(s1, s2 Segment) (Point, bool) {
	r := s1.B.Sub(s1.A)
	s := s2.B.Sub(s2.A)
	denom := r.Cross(s)
	if math.Abs(denom) < Epsilon {
		return Point{}, false
	}
	qp := s2.A.Sub(s1.A)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return Point{}, false
	}
	return s1.A.Add(r.Scale(t)), true
}

// SegmentInPolygon reports whether the closed segment seg lies entirely
// within poly's drivable area: both endpoints inside, and no boundary edge
// of either ring crosses the segment's interior.
func SegmentInPolygon(poly Polygon, seg Segment) bool {
	if !ContainsPoint(poly, seg.A) || !ContainsPoint(poly, seg.B) {
		return false
	}
	for _, edge := range edges(poly.Outer) {
		if properCrossing(seg, edge) {
			return false
		}
	}
	for _, edge := range edges(poly.Hole) {
		if properCrossing(seg, edge) {
			return false
		}
	}
	return true
}

// properCrossing reports an intersection that is not merely the two
// segments touching at a shared endpoint (which is expected whenever seg
// starts or ends exactly on the boundary, e.g. a starting point).
func properCrossing(seg, edge Segment) bool {
	p, ok := Intersect(seg, edge)
	if !ok {
		return false
	}
	if nearEndpoint(p, seg) || nearEndpoint(p, edge) {
		return false
	}
	return true
}

func nearEndpoint(p Point, seg Segment) bool {
	return p.Dist(seg.A) < Epsilon || p.Dist(seg.B) < Epsilon
}

// Edges returns the closed sequence of edges of a ring, exported for callers
// (e.g. circuit construction) that need to test individual boundary edges.
func Edges(r Ring) []Segment { return edges(r) }

// Centroid returns the arithmetic mean of a ring's vertices, used by the
// analyzer to test triangle centroids against the cut polygon.
func Centroid(pts ...Point) Point {
	var sum Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	n := float64(len(pts))
	return Point{sum.X / n, sum.Y / n}
}

// BoundingBox returns the min/max corners of a ring.
func BoundingBox(r Ring) (min, max Point) {
	if len(r) == 0 {
		return
	}
	min, max = r[0], r[0]
	for _, p := range r[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return
}

// NormalizeAngle wraps a radian angle into [-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
