package analyzer

import (
	"errors"

	"github.com/fogleman/delaunay"

	"racetrack/internal/geometry"
)

// ErrDegenerateTriangulation is returned when no valid triangle of the cut
// polygon contains the finish point. Triangles not connected to the finish
// triangle are dropped from the tree without an error.
var ErrDegenerateTriangulation = errors.New("analyzer: could not locate a finish triangle")

// gate is a triangulation edge shared between a triangle and its parent in
// the funnel tree, expressed as the (left, right) portal pair a traveler
// crosses walking from the triangle toward the finish.
type gate struct {
	Left, Right geometry.Point
}

// triNode is one triangle in the funnel tree rooted at the finish triangle.
type triNode struct {
	Verts    [3]geometry.Point
	Centroid geometry.Point
	Parent   int // index into tree.nodes, -1 for the root
	Gate     gate
}

// funnelTree is the triangulation of the cut polygon, restricted to
// triangles whose centroid lies inside it, organized as a tree rooted at the
// triangle containing the finish point.
type funnelTree struct {
	nodes []triNode
	byTri map[int]int // delaunay triangle index -> nodes index, valid triangles only
}

func buildFunnelTree(cut cutResult) (*funnelTree, error) {
	pts := make([]delaunay.Point, len(cut.Vertices)+1)
	for i, p := range cut.Vertices {
		pts[i] = delaunay.Point{X: p.X, Y: p.Y}
	}
	finishIdx := len(cut.Vertices)
	pts[finishIdx] = delaunay.Point{X: cut.Finish.X, Y: cut.Finish.Y}

	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, err
	}

	poly := geometry.Polygon{Outer: geometry.Ring(cut.Vertices)}
	numTri := len(tri.Triangles) / 3

	valid := make([]bool, numTri)
	centroids := make([]geometry.Point, numTri)
	verts := make([][3]geometry.Point, numTri)
	for t := 0; t < numTri; t++ {
		a := toPoint(tri.Points[tri.Triangles[3*t]])
		b := toPoint(tri.Points[tri.Triangles[3*t+1]])
		c := toPoint(tri.Points[tri.Triangles[3*t+2]])
		verts[t] = [3]geometry.Point{a, b, c}
		centroids[t] = geometry.Centroid(a, b, c)
		// Strict containment: a centroid sitting exactly on the cut seam
		// belongs to a sliver bridging the slit, not to the road.
		valid[t] = geometry.StrictlyContains(poly, centroids[t])
	}

	rootTri := -1
	for t := 0; t < numTri; t++ {
		if valid[t] && pointInTriangle(cut.Finish, verts[t]) {
			rootTri = t
			break
		}
	}
	if rootTri == -1 {
		return nil, ErrDegenerateTriangulation
	}

	parent := make([]int, numTri)
	for i := range parent {
		parent[i] = -2 // unvisited
	}
	gates := make([]gate, numTri)
	parent[rootTri] = -1

	queue := []int{rootTri}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for k := 0; k < 3; k++ {
			e := 3*t + k
			opp := tri.Halfedges[e]
			if opp == -1 {
				continue
			}
			nt := opp / 3
			if !valid[nt] || parent[nt] != -2 {
				continue
			}
			parent[nt] = t
			gates[nt] = gate{
				Left:  toPoint(tri.Points[tri.Triangles[opp]]),
				Right: toPoint(tri.Points[tri.Triangles[nextHalfedge(opp)]]),
			}
			queue = append(queue, nt)
		}
	}

	ft := &funnelTree{byTri: make(map[int]int, numTri)}
	for t := 0; t < numTri; t++ {
		if !valid[t] || parent[t] == -2 {
			continue // unreachable from the finish triangle
		}
		idx := len(ft.nodes)
		ft.byTri[t] = idx
		ft.nodes = append(ft.nodes, triNode{
			Verts:    verts[t],
			Centroid: centroids[t],
			Parent:   -1,
			Gate:     gates[t],
		})
	}
	for t, idx := range ft.byTri {
		if p := parent[t]; p != -1 {
			if pIdx, ok := ft.byTri[p]; ok {
				ft.nodes[idx].Parent = pIdx
			}
		}
	}
	return ft, nil
}

// locate finds the tree node whose triangle contains p, or -1.
func (ft *funnelTree) locate(p geometry.Point) int {
	for i, n := range ft.nodes {
		if pointInTriangle(p, n.Verts) {
			return i
		}
	}
	return -1
}

// gateChain returns the portals from node idx up to (excluding) the root, in
// leaf-to-root order, as the funnel algorithm expects.
func (ft *funnelTree) gateChain(idx int) []gate {
	var gates []gate
	for idx != -1 {
		n := ft.nodes[idx]
		if n.Parent == -1 {
			break
		}
		gates = append(gates, n.Gate)
		idx = n.Parent
	}
	return gates
}

func nextHalfedge(e int) int {
	if e%3 == 2 {
		return e - 2
	}
	return e + 1
}

func toPoint(p delaunay.Point) geometry.Point { return geometry.Point{X: p.X, Y: p.Y} }

// pointInTriangle uses the sign of the three edge cross products; points on
// an edge are treated as inside, matching geometry's own boundary-inclusive
// convention.
func pointInTriangle(p geometry.Point, v [3]geometry.Point) bool {
	d1 := cross(v[0], v[1], p)
	d2 := cross(v[1], v[2], p)
	d3 := cross(v[2], v[0], p)

	hasNeg := d1 < -geometry.Epsilon || d2 < -geometry.Epsilon || d3 < -geometry.Epsilon
	hasPos := d1 > geometry.Epsilon || d2 > geometry.Epsilon || d3 > geometry.Epsilon
	return !(hasNeg && hasPos)
}

func cross(a, b, p geometry.Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}
