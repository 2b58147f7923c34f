package analyzer

import "racetrack/internal/geometry"

// stringPull runs the funnel algorithm over a chain of (left, right) portals
// from start to goal, returning the shortest path that stays within the
// corridor the portals describe. This is the standard "simple stupid funnel
// algorithm" used for navmesh path straightening, adapted to plain
// geometry.Point portals instead of a navmesh's polygon edges.
func stringPull(gates []gate, start, goal geometry.Point) []geometry.Point {
	portals := make([]gate, 0, len(gates)+2)
	portals = append(portals, gate{Left: start, Right: start})
	portals = append(portals, gates...)
	portals = append(portals, gate{Left: goal, Right: goal})

	path := []geometry.Point{start}
	apex := start
	left := start
	right := start
	apexIdx, leftIdx, rightIdx := 0, 0, 0

	for i := 1; i < len(portals); i++ {
		pLeft := portals[i].Left
		pRight := portals[i].Right

		if triarea2(apex, right, pRight) <= 0 {
			if apex == right || triarea2(apex, left, pRight) > 0 {
				right = pRight
				rightIdx = i
			} else {
				path = append(path, left)
				apex = left
				apexIdx = leftIdx
				left = apex
				right = apex
				leftIdx = apexIdx
				rightIdx = apexIdx
				i = apexIdx
				continue
			}
		}

		if triarea2(apex, left, pLeft) <= 0 {
			if apex == left || triarea2(apex, right, pLeft) > 0 {
				left = pLeft
				leftIdx = i
			} else {
				path = append(path, right)
				apex = right
				apexIdx = rightIdx
				left = apex
				right = apex
				leftIdx = apexIdx
				rightIdx = apexIdx
				i = apexIdx
				continue
			}
		}
	}

	if len(path) == 0 || path[len(path)-1] != goal {
		path = append(path, goal)
	}
	return path
}

// triarea2 returns twice the signed area of triangle (a, b, c); its sign
// gives the turn direction of the path a -> b -> c.
func triarea2(a, b, c geometry.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

func pathLength(path []geometry.Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i].Dist(path[i-1])
	}
	return total
}
