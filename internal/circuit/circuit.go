// Package circuit implements the track geometry and the successor-state
// generator that is the heart of the game's rules: on-road testing,
// starting-line crossing detection with hysteresis, and NextStates, the
// move generator every player and AI strategy consumes.
package circuit

import (
	"errors"
	"fmt"
	"math"

	"racetrack/internal/config"
	"racetrack/internal/geometry"
	"racetrack/internal/rwlock"
)

// Cell is an integer lattice point in circuit coordinates.
type Cell struct {
	X, Y int
}

// ToPoint converts a Cell to a floating-point geometry.Point.
func (c Cell) ToPoint() geometry.Point {
	return geometry.Point{X: float64(c.X), Y: float64(c.Y)}
}

// Add returns the cell-wise sum of c and o.
func (c Cell) Add(o Cell) Cell { return Cell{c.X + o.X, c.Y + o.Y} }

// Status is a car's lifecycle state, wire-visible as a small integer.
type Status int

const (
	StatusRunning Status = iota
	StatusCrashed
	StatusFinished
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusCrashed:
		return "Crashed"
	case StatusFinished:
		return "Finished"
	case StatusDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// State is an immutable per-turn car record. A State whose Status is not
// Running is terminal: NextStates produces no successor for it.
type State struct {
	XY           Cell
	Yaw          float64 // radians, normalized to [-pi, pi]
	Speed        float64
	Round        float64 // fractional turn count; see CrossingLine for the fractional part
	Lap          int     // 0-based completed laps
	DistanceLeft float64 // remaining geodesic distance to finish
	Status       Status
}

// Terminal reports whether the state admits no successor.
func (s State) Terminal() bool { return s.Status != StatusRunning }

// DistanceAnalyzer is the interface a Circuit consumes once a
// CircuitAnalyzer has been built over it (installed via AttachAnalyzer).
// Defined here, rather than imported from package analyzer, to avoid a
// circuit<->analyzer import cycle: analyzer depends on circuit's exported
// types, not the reverse.
type DistanceAnalyzer interface {
	Distance(cell Cell) (float64, error)
	Contains(cell Cell) bool
	MaxDistance() float64
}

// TrackRecord is the parsed form of the circuit file format; parsing the
// text format itself is package trackfile's job. The core accepts the
// parsed record directly.
type TrackRecord struct {
	Name         string            `json:"name"`
	GridSize     int               `json:"gridSize"` // 0 => defaults to 10
	MaximumSpeed int               `json:"maximumSpeed"`
	NumLaps      int               `json:"numLaps"` // 0 => defaults to 1
	StartingLine [2]geometry.Point `json:"startingLine"`
	InnerBorder  []geometry.Point  `json:"innerBorder"`
	OuterBorder  []geometry.Point  `json:"outerBorder"`
}

// ErrInvalidCircuit is returned when a track description is malformed: the
// starting line must cross both the inner and outer borders exactly once.
var ErrInvalidCircuit = errors.New("circuit: starting line must cross each border exactly once")

// ErrMaxLapsExceeded is returned when a track requests more laps than the
// configured maximum.
var ErrMaxLapsExceeded = errors.New("circuit: num_laps exceeds configured maximum")

// Circuit is immutable after construction; named track with grid size,
// lap count, max speed, starting line/direction, drivable road, and the
// cells along the starting line inside the road.
type Circuit struct {
	Name              string
	GridSize          int
	Origin            geometry.Point // raw first starting-line endpoint, for mapping cells back to display space
	MaxSpeed          float64
	NumLaps           int
	StartingLine      geometry.Segment
	StartingDirection Cell
	DrivableRoad      geometry.Polygon
	StartingPoints    []Cell

	constants *config.Constants
	analyzer  DistanceAnalyzer

	nextStatesCache map[State][]State
	nextStatesLock  *rwlock.RWLock

	onRoadCache map[cellPair]bool
	onRoadLock  *rwlock.RWLock

	crossingCache map[cellPair]crossingResult
	crossingLock  *rwlock.RWLock

	startCache     []State
	startCacheOnce bool
	startCacheLock *rwlock.RWLock
}

type cellPair struct {
	A, B Cell
}

type crossingResult struct {
	DLap   int
	DRound float64
}

// New builds a Circuit from a parsed track record. It shifts every
// coordinate so the first starting-line endpoint becomes the origin, scales
// by 1/gridSize, and builds the polygon-with-hole drivable area.
func New(rec TrackRecord, constants *config.Constants) (*Circuit, error) {
	if constants == nil {
		constants = config.Default()
	}

	gridSize := rec.GridSize
	if gridSize == 0 {
		gridSize = 10
	}
	numLaps := rec.NumLaps
	if numLaps == 0 {
		numLaps = 1
	}
	if numLaps > constants.MaxNumLaps {
		return nil, fmt.Errorf("%w: %d > %d", ErrMaxLapsExceeded, numLaps, constants.MaxNumLaps)
	}

	origin := rec.StartingLine[0]
	shift := func(p geometry.Point) geometry.Point {
		return geometry.Point{
			X: (p.X - origin.X) / float64(gridSize),
			Y: (p.Y - origin.Y) / float64(gridSize),
		}
	}

	startLine := geometry.Segment{A: shift(rec.StartingLine[0]), B: shift(rec.StartingLine[1])}

	outer := make(geometry.Ring, len(rec.OuterBorder))
	for i, p := range rec.OuterBorder {
		outer[i] = shift(p)
	}
	var hole geometry.Ring
	if len(rec.InnerBorder) > 0 {
		hole = make(geometry.Ring, len(rec.InnerBorder))
		for i, p := range rec.InnerBorder {
			hole[i] = shift(p)
		}
	}
	road := geometry.Polygon{Outer: outer, Hole: hole}

	if !crossesExactlyOnce(startLine, outer) {
		return nil, ErrInvalidCircuit
	}
	if len(hole) > 0 && !crossesExactlyOnce(startLine, hole) {
		return nil, ErrInvalidCircuit
	}

	dir := perpendicularInward(startLine, road)
	points := startingPoints(startLine, road)

	c := &Circuit{
		Name:              rec.Name,
		GridSize:          gridSize,
		Origin:            origin,
		MaxSpeed:          float64(rec.MaximumSpeed),
		NumLaps:           numLaps,
		StartingLine:      startLine,
		StartingDirection: dir,
		DrivableRoad:      road,
		StartingPoints:    points,
		constants:         constants,

		nextStatesCache: make(map[State][]State),
		nextStatesLock:  rwlock.New(),
		onRoadCache:     make(map[cellPair]bool),
		onRoadLock:      rwlock.New(),
		crossingCache:   make(map[cellPair]crossingResult),
		crossingLock:    rwlock.New(),
		startCacheLock:  rwlock.New(),
	}
	return c, nil
}

// LapLength returns the analyzer's MaxDistance, used by AI scoring as an
// approximate lap length. Zero if no analyzer has been attached yet.
func (c *Circuit) LapLength() float64 {
	if c.analyzer == nil {
		return 0
	}
	return c.analyzer.MaxDistance()
}

// AttachAnalyzer installs the circuit analyzer that supplies geodesic
// distances. Construction of Circuit and Analyzer is a two-step dance:
// the analyzer needs the finished Circuit to build its triangulation, and
// the Circuit needs the analyzer to answer Distance/Contains from then on.
func (c *Circuit) AttachAnalyzer(a DistanceAnalyzer) {
	c.analyzer = a
}

func crossesExactlyOnce(line geometry.Segment, ring geometry.Ring) bool {
	count := 0
	for _, edge := range geometry.Edges(ring) {
		if _, ok := geometry.Intersect(line, edge); ok {
			count++
		}
	}
	return count == 1
}

// perpendicularInward returns the unit integer vector perpendicular to the
// starting line, oriented into the drivable road.
func perpendicularInward(line geometry.Segment, poly geometry.Polygon) Cell {
	d := line.B.Sub(line.A)
	perp := geometry.Point{X: d.Y, Y: -d.X}
	length := perp.Length()
	if length == 0 {
		length = 1
	}
	unit := geometry.Point{X: perp.X / length, Y: perp.Y / length}

	cell := Cell{X: roundInt(unit.X), Y: roundInt(unit.Y)}
	mid := geometry.Centroid(line.A, line.B)
	probe := mid.Add(unit.Scale(0.5))
	if !geometry.ContainsPoint(poly, probe) {
		cell = Cell{X: -cell.X, Y: -cell.Y}
	}
	return cell
}

// startingPoints walks the starting line at unit-cell increments, keeping
// those cells that land inside the drivable road.
func startingPoints(line geometry.Segment, poly geometry.Polygon) []Cell {
	d := line.B.Sub(line.A)
	length := d.Length()
	if length == 0 {
		return nil
	}
	unit := geometry.Point{X: d.X / length, Y: d.Y / length}

	n := int(math.Floor(length))
	seen := make(map[Cell]bool, n)
	var pts []Cell
	for i := 0; i < n; i++ {
		p := line.A.Add(unit.Scale(float64(i)))
		cell := Cell{X: roundInt(p.X), Y: roundInt(p.Y)}
		if seen[cell] {
			continue
		}
		seen[cell] = true
		if geometry.ContainsPoint(poly, cell.ToPoint()) {
			pts = append(pts, cell)
		}
	}
	return pts
}

func roundInt(f float64) int {
	return int(math.Round(f))
}
