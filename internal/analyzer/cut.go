package analyzer

import (
	"errors"

	"racetrack/internal/circuit"
	"racetrack/internal/config"
	"racetrack/internal/geometry"
)

// ErrInvalidSeam is returned when the starting line cannot be located as a
// single crossing of a border ring, which circuit.New should already have
// rejected; surfaced here defensively.
var ErrInvalidSeam = errors.New("analyzer: starting line does not cross a border ring exactly once")

// cutResult is the simply-connected polygon produced by slitting the
// drivable annulus at the starting line, plus the finish point derived
// from the seam corners.
type cutResult struct {
	Vertices []geometry.Point
	Finish   geometry.Point
}

// cutAnnulus slits the outer/inner border rings at the starting line,
// producing one simple polygon whose two "ends" are flush with the line.
// Each ring's two cut ends are displaced off the line along the starting
// direction, by the configured offset and twice the offset respectively,
// so the seam edges cannot coincide and the result stays strictly simple.
func cutAnnulus(c *circuit.Circuit, constants *config.Constants) (cutResult, error) {
	offset := constants.Analyzer.OffsetFactor
	dir := c.StartingDirection.ToPoint()

	outerCut, err := cutRing(c.DrivableRoad.Outer, c.StartingLine, dir, offset)
	if err != nil {
		return cutResult{}, err
	}
	corners := []geometry.Point{outerCut[0], outerCut[len(outerCut)-1]}

	var vertices []geometry.Point
	if len(c.DrivableRoad.Hole) > 0 {
		innerCut, err := cutRing(c.DrivableRoad.Hole, c.StartingLine, dir, offset)
		if err != nil {
			return cutResult{}, err
		}
		corners = append(corners, innerCut[0], innerCut[len(innerCut)-1])

		// Walk the hole forward and the outer border backward so the
		// composite boundary is a single simple loop through both seams.
		reverseInPlace(outerCut)
		vertices = make([]geometry.Point, 0, len(innerCut)+len(outerCut))
		vertices = append(vertices, innerCut...)
		vertices = append(vertices, outerCut...)
	} else {
		vertices = outerCut
	}

	finish := geometry.Centroid(corners...).Sub(dir.Scale(1.5 * offset))
	return cutResult{Vertices: vertices, Finish: finish}, nil
}

// cutRing slits ring where the starting line crosses it. The ring is walked
// once starting just past the crossing, and the crossing point is replaced
// by two cut ends displaced off the line by offset and 2x offset, pushed
// backward relative to the walk so the gap opens behind the walk's start.
// The returned chain is normalized counterclockwise.
func cutRing(ring geometry.Ring, line geometry.Segment, dir geometry.Point, offset float64) ([]geometry.Point, error) {
	idx, crossing, ok := crossingEdge(ring, line)
	if !ok {
		return nil, ErrInvalidSeam
	}

	walked := reorderRingAfter(ring, idx)
	kept := walked[:0]
	for _, p := range walked {
		if p.Dist(crossing) < geometry.Epsilon {
			continue // the line crosses exactly at this vertex
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil, ErrInvalidSeam
	}

	factor := offset
	if kept[0].Sub(crossing).Dot(dir) <= 0 {
		factor = -offset
	}

	pts := make([]geometry.Point, 0, len(kept)+2)
	pts = append(pts, crossing.Sub(dir.Scale(factor)))
	pts = append(pts, kept...)
	pts = append(pts, crossing.Sub(dir.Scale(2*factor)))
	if !isCCW(pts) {
		reverseInPlace(pts)
	}
	return pts, nil
}

func crossingEdge(ring geometry.Ring, line geometry.Segment) (int, geometry.Point, bool) {
	for i, e := range geometry.Edges(ring) {
		if p, ok := geometry.Intersect(line, e); ok {
			return i, p, true
		}
	}
	return 0, geometry.Point{}, false
}

// reorderRingAfter returns every vertex of ring, starting with the one
// right after edgeIdx and wrapping around to end with ring[edgeIdx] itself
// — i.e. the whole boundary walked starting just past the cut.
func reorderRingAfter(ring geometry.Ring, edgeIdx int) []geometry.Point {
	n := len(ring)
	out := make([]geometry.Point, 0, n)
	start := (edgeIdx + 1) % n
	for i := 0; i < n; i++ {
		out = append(out, ring[(start+i)%n])
	}
	return out
}

// isCCW reports whether the closed chain has positive signed (shoelace) area.
func isCCW(pts []geometry.Point) bool {
	area := 0.0
	for i, p := range pts {
		area += p.Cross(pts[(i+1)%len(pts)])
	}
	return area > 0
}

func reverseInPlace(pts []geometry.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
