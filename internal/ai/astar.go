package ai

import (
	"container/heap"
	"context"
	"math"
	"math/rand"
	"time"

	"racetrack/internal/circuit"
	"racetrack/internal/config"
	"racetrack/internal/player"
)

// AStar is a depth-bounded Hybrid-A* search: continuous (cell, yaw, speed,
// lap) states are collapsed to a discrete key by quantizing yaw and speed,
// so the open set stays small enough to search within the depth bound.
type AStar struct {
	player.Base
	constants *config.Constants
	rng       *rand.Rand
}

// NewAStar constructs an AStar player.
func NewAStar(name string, constants *config.Constants) *AStar {
	if constants == nil {
		constants = config.Default()
	}
	return &AStar{
		Base:      player.NewBase(name),
		constants: constants,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// stateKey is the quantization bucket two distinct continuous states
// collapse to; a later state takes a key's g_score slot only with a
// strictly lower g, and on a tie the earlier state keeps it.
type stateKey struct {
	X, Y             int
	YawBin, SpeedBin int
	Lap              int
}

// key truncates yaw and speed onto their bins; yaw is already normalized
// to [-pi, pi] so the bin count is finite.
func (a *AStar) key(s circuit.State) stateKey {
	return stateKey{
		X:        s.XY.X,
		Y:        s.XY.Y,
		YawBin:   int(s.Yaw / a.constants.YawBinRadians()),
		SpeedBin: int(s.Speed / a.constants.AStar.SpeedBin),
		Lap:      s.Lap,
	}
}

// heapItem is one open-set entry. removed marks a lazily-deleted item
// superseded by a better g_score for the same key, rather than patching the
// heap in place.
type heapItem struct {
	f, g    float64
	depth   int
	state   circuit.State
	key     stateKey
	removed bool
	index   int
}

type priorityQueue []*heapItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].depth < pq[j].depth
}
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*heapItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// heuristic is the A* h: infinite for Crashed (prunes the branch in
// practice, since it will never be the minimum), the fractional round
// deficit for Finished, and the inflated distance-to-finish otherwise.
func (a *AStar) heuristic(s circuit.State, c *circuit.Circuit) float64 {
	const lengthToLapFactor = 0.25
	factor := lengthToLapFactor * a.constants.AStar.Factor

	switch s.Status {
	case circuit.StatusFinished:
		frac := s.Round - math.Floor(s.Round)
		if frac > 1e-3 {
			return frac - 1
		}
		return 0
	case circuit.StatusCrashed:
		return math.Inf(1)
	default:
		remainingLaps := float64(c.NumLaps - s.Lap - 1)
		return (remainingLaps*c.LapLength() + s.DistanceLeft) * factor
	}
}

// Play runs the bounded Hybrid-A* search over this player's allowed moves as
// search roots, returning the root index on the path to the best node
// popped before the depth bound or a Finished state is reached.
func (a *AStar) Play(ctx context.Context, c *circuit.Circuit, peers []player.Player) (int, bool) {
	moves := a.GetAllowedMoves()
	if len(moves) == 0 {
		return 0, false
	}

	gScore := make(map[stateKey]float64)
	bestItem := make(map[stateKey]*heapItem)
	cameFrom := make(map[stateKey]stateKey)
	startIndices := make(map[stateKey]int)

	pq := &priorityQueue{}
	heap.Init(pq)

	insert := func(s circuit.State, g float64, depth int, k stateKey) bool {
		if existing, ok := gScore[k]; ok && g >= existing {
			return false
		}
		gScore[k] = g
		item := &heapItem{f: g + a.heuristic(s, c), g: g, depth: depth, state: s, key: k}
		if prev, ok := bestItem[k]; ok {
			prev.removed = true
		}
		bestItem[k] = item
		heap.Push(pq, item)
		return true
	}

	for i, m := range moves {
		k := a.key(m)
		startIndices[k] = i
		insert(m, 0, 0, k)
	}

	var best *heapItem
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*heapItem)
		if item.removed {
			continue
		}
		if item.state.Status == circuit.StatusFinished || item.depth >= a.constants.AStar.MaxDepth {
			best = item
			break
		}
		successors, err := c.NextStates(&item.state, nil)
		if err != nil {
			continue
		}
		for _, s := range successors {
			// g counts turns taken, not distance driven; the heuristic's
			// length-to-lap factor converts the remaining distance into
			// the same unit.
			k := a.key(s)
			if insert(s, item.g+1, item.depth+1, k) && k != item.key {
				cameFrom[k] = item.key
			}
		}
	}

	if best == nil {
		return a.rng.Intn(len(moves)), true
	}
	if idx, ok := reconstructRootIndex(cameFrom, startIndices, best.key); ok {
		return idx, true
	}
	return a.rng.Intn(len(moves)), true
}

// reconstructRootIndex walks came_from from goal back to a root key (one
// absent from came_from, since roots are never anyone's successor), then
// looks up that root's index into allowed_moves.
func reconstructRootIndex(cameFrom map[stateKey]stateKey, startIndices map[stateKey]int, goal stateKey) (int, bool) {
	k := goal
	for {
		if parent, ok := cameFrom[k]; ok {
			k = parent
			continue
		}
		idx, ok := startIndices[k]
		return idx, ok
	}
}
