package circuit

import (
	"math"

	"racetrack/internal/geometry"
)

// OnRoad reports whether the closed segment [a, b] lies entirely inside the
// drivable polygon and b is in the analyzer's reachable set. Results are
// cached by (a, b); the cache is never invalidated since a Circuit is
// immutable once built.
func (c *Circuit) OnRoad(a, b Cell) bool {
	key := cellPair{A: a, B: b}

	c.onRoadLock.RLock()
	if v, ok := c.onRoadCache[key]; ok {
		c.onRoadLock.RUnlock()
		return v
	}

	if err := c.onRoadLock.Promote(); err != nil {
		// Another goroutine is already promoting this lock; recompute
		// without caching rather than risk a promotion deadlock.
		c.onRoadLock.RUnlock()
		return c.computeOnRoad(a, b)
	}
	defer func() {
		c.onRoadLock.Demote()
		c.onRoadLock.RUnlock()
	}()

	if v, ok := c.onRoadCache[key]; ok {
		return v
	}
	v := c.computeOnRoad(a, b)
	c.onRoadCache[key] = v
	return v
}

func (c *Circuit) computeOnRoad(a, b Cell) bool {
	if c.analyzer == nil || !c.analyzer.Contains(b) {
		return false
	}
	return geometry.SegmentInPolygon(c.DrivableRoad, segmentOf(a, b))
}

// CrossingLine computes the signed starting-line crossing between a
// (exclusive) and b (inclusive), applying the 0.5-unit hysteresis band
// around the line's endpoints to avoid double-counting grazing motion.
// Results are cached by (a, b).
func (c *Circuit) CrossingLine(a, b Cell) (dlap int, dround float64) {
	key := cellPair{A: a, B: b}

	c.crossingLock.RLock()
	if v, ok := c.crossingCache[key]; ok {
		c.crossingLock.RUnlock()
		return v.DLap, v.DRound
	}

	if err := c.crossingLock.Promote(); err != nil {
		c.crossingLock.RUnlock()
		return c.computeCrossing(a, b)
	}
	defer func() {
		c.crossingLock.Demote()
		c.crossingLock.RUnlock()
	}()

	if v, ok := c.crossingCache[key]; ok {
		return v.DLap, v.DRound
	}
	dlap, dround = c.computeCrossing(a, b)
	c.crossingCache[key] = crossingResult{DLap: dlap, DRound: dround}
	return dlap, dround
}

func (c *Circuit) computeCrossing(a, b Cell) (int, float64) {
	seg := segmentOf(a, b)
	p, ok := intersectLine(c.StartingLine, seg)
	if !ok {
		return 0, 0
	}

	ap, bp := a.ToPoint(), b.ToPoint()
	d := geometry.Point{X: bp.X - ap.X, Y: bp.Y - ap.Y}
	dir := c.StartingDirection.ToPoint()

	if d.Dot(dir) > 0 {
		dist := p.Dist(ap)
		if dist < 0.5 {
			return 0, 0
		}
		segLen := ap.Dist(bp)
		if segLen == 0 {
			return 1, 0
		}
		return 1, dist / segLen
	}

	dist := p.Dist(bp)
	if dist < 0.5 {
		return 0, 0
	}
	return -1, 0
}

// NextStates generates the legal successor States from state given the
// circuit's kinematic rules, less any cell present in exclude (the
// inter-car collision set the race engine supplies). A nil state means the
// race is about to begin: one Running State is produced per starting point.
func (c *Circuit) NextStates(state *State, exclude map[Cell]bool) ([]State, error) {
	var candidates []State
	var err error

	switch {
	case state == nil:
		candidates, err = c.startStates()
	case state.Status != StatusRunning:
		return nil, nil
	default:
		candidates, err = c.successorsOf(*state)
	}
	if err != nil {
		return nil, err
	}
	if len(exclude) == 0 {
		return candidates, nil
	}

	filtered := make([]State, 0, len(candidates))
	for _, s := range candidates {
		if exclude[s.XY] {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered, nil
}

func (c *Circuit) startStates() ([]State, error) {
	c.startCacheLock.RLock()
	if c.startCacheOnce {
		cached := c.startCache
		c.startCacheLock.RUnlock()
		return cached, nil
	}
	c.startCacheLock.RUnlock()

	c.startCacheLock.Lock()
	defer c.startCacheLock.Unlock()
	if c.startCacheOnce {
		return c.startCache, nil
	}

	yaw := math.Atan2(float64(c.StartingDirection.Y), float64(c.StartingDirection.X))
	var out []State
	for _, p := range c.StartingPoints {
		if c.analyzer == nil || !c.analyzer.Contains(p) {
			continue
		}
		dist, err := c.analyzer.Distance(p)
		if err != nil {
			continue
		}
		out = append(out, State{
			XY:           p,
			Yaw:          yaw,
			Speed:        0,
			Round:        1,
			Lap:          0,
			DistanceLeft: dist,
			Status:       StatusRunning,
		})
	}
	c.startCache = out
	c.startCacheOnce = true
	return out, nil
}

// successorsOf computes the cacheable candidate list for a Running state,
// before the per-call exclude filter is applied. The full State value
// (cell, yaw, speed, round, lap) is a valid, comparable cache key: it is
// exactly reproduced whenever the race engine replays the same state.
func (c *Circuit) successorsOf(state State) ([]State, error) {
	c.nextStatesLock.RLock()
	if v, ok := c.nextStatesCache[state]; ok {
		c.nextStatesLock.RUnlock()
		return v, nil
	}
	c.nextStatesLock.RUnlock()

	computed, err := c.computeSuccessors(state)
	if err != nil {
		return nil, err
	}

	c.nextStatesLock.Lock()
	c.nextStatesCache[state] = computed
	c.nextStatesLock.Unlock()
	return computed, nil
}

func (c *Circuit) computeSuccessors(state State) ([]State, error) {
	// Exception for the second turn: exactly one forced successor along
	// the starting direction. Known asymmetry: the forced cell can itself
	// be off-track if the starting direction carries the car straight back
	// over the starting line, in which case the successor crashes.
	if state.Round == 1 {
		xy := state.XY.Add(c.StartingDirection)
		s, err := c.buildSuccessor(state, xy)
		if err != nil {
			return nil, err
		}
		return []State{s}, nil
	}

	if state.Speed == 0 {
		neighbors := []Cell{
			{X: state.XY.X + 1, Y: state.XY.Y},
			{X: state.XY.X - 1, Y: state.XY.Y},
			{X: state.XY.X, Y: state.XY.Y + 1},
			{X: state.XY.X, Y: state.XY.Y - 1},
		}
		out := make([]State, 0, len(neighbors))
		for _, n := range neighbors {
			s, err := c.buildSuccessor(state, n)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}

	return c.generalSuccessors(state)
}

// generalSuccessors scans the cell neighborhood reachable at max speed,
// then applies the accept rule: the angular change is within the turn
// angle and the new speed is within [minSpeed, maxSpeed]. minSpeed is at
// least 0.5, so a moving car can never stand still.
func (c *Circuit) generalSuccessors(state State) ([]State, error) {
	minSpeed := math.Max(0.5, state.Speed-c.constants.MinusSpeed)
	maxSpeed := math.Min(c.MaxSpeed, state.Speed+c.constants.PlusSpeed)

	radius := int(math.Ceil(c.MaxSpeed)) + 1
	var out []State
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			d := geometry.Point{X: float64(dx), Y: float64(dy)}
			newSpeed := d.Length()
			if newSpeed < minSpeed-geometry.Epsilon {
				continue
			}
			if newSpeed > maxSpeed+geometry.Epsilon {
				continue
			}
			newYaw := math.Atan2(d.Y, d.X)
			delta := geometry.NormalizeAngle(newYaw - state.Yaw)
			if math.Abs(delta) > c.constants.TurnAngle+geometry.Epsilon {
				continue
			}

			xy := Cell{X: state.XY.X + dx, Y: state.XY.Y + dy}
			s, err := c.buildSuccessor(state, xy)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// buildSuccessor computes the full successor State for a transition from
// state to xy: on-road/crash status, lap/round bookkeeping (including
// finish detection), and the carried or refreshed distance-to-finish.
func (c *Circuit) buildSuccessor(state State, xy Cell) (State, error) {
	onRoad := c.OnRoad(state.XY, xy)
	status := StatusCrashed
	if onRoad {
		status = StatusRunning
	}

	dlap, dround := c.CrossingLine(state.XY, xy)
	newLap := state.Lap + dlap

	yaw := state.Yaw
	speed := 0.0
	if xy != state.XY {
		d := geometry.Point{X: float64(xy.X - state.XY.X), Y: float64(xy.Y - state.XY.Y)}
		yaw = math.Atan2(d.Y, d.X)
		speed = d.Length()
	}

	s := State{
		XY:    xy,
		Yaw:   yaw,
		Speed: speed,
		Lap:   newLap,
	}

	if newLap == c.NumLaps {
		s.Round = state.Round + dround
		if status == StatusRunning {
			status = StatusFinished
		}
		if status == StatusFinished {
			s.DistanceLeft = 0
		} else {
			s.DistanceLeft = state.DistanceLeft
		}
	} else {
		s.Round = state.Round + 1
		if status == StatusRunning {
			dist, err := c.analyzer.Distance(xy)
			if err != nil {
				return State{}, err
			}
			s.DistanceLeft = dist
		} else {
			s.DistanceLeft = state.DistanceLeft
		}
	}
	s.Status = status
	return s, nil
}

func segmentOf(a, b Cell) geometry.Segment {
	return geometry.Segment{A: a.ToPoint(), B: b.ToPoint()}
}

func intersectLine(line, seg geometry.Segment) (geometry.Point, bool) {
	return geometry.Intersect(line, seg)
}
