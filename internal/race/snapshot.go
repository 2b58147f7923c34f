package race

import (
	"math"

	"racetrack/internal/circuit"
)

// ScaledCell is a circuit.Cell scaled up to display/world units by the
// circuit's grid size, the form GetSnapshot exposes for rendering.
type ScaledCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MoveView is one candidate move offered to the player currently on turn.
type MoveView struct {
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Status circuit.Status `json:"status"`
}

// Snapshot is the read-only view external callers (the HTTP facade) render,
// taken atomically under the race's snapshot lock.
type Snapshot struct {
	PlayingNow   string                    `json:"playing_now"` // "" if no one is currently on turn
	IsTurn       bool                      `json:"is_turn"`     // true if PlayingNow == the requested viewer
	Moves        []MoveView                `json:"moves"`
	Positions    map[string][]ScaledCell   `json:"positions"`
	Rounds       map[string]float64        `json:"rounds"`
	Laps         map[string]int            `json:"laps"`
	Status       map[string]circuit.Status `json:"status"`
	DistanceLeft map[string]float64        `json:"distance_left"`
}

// GetSnapshot returns a consistent view of the race for viewerName: the
// current player's name and offered moves (if it's anyone's turn), plus
// every player's scaled trajectory, round, lap, status and remaining
// distance. A player whose last known status is Running but who has since
// been stopped externally is reported as Disconnected.
func (r *Race) GetSnapshot(viewerName string) Snapshot {
	r.snapshotLock.RLock()
	defer r.snapshotLock.RUnlock()

	snap := Snapshot{
		Positions:    make(map[string][]ScaledCell),
		Rounds:       make(map[string]float64),
		Laps:         make(map[string]int),
		Status:       make(map[string]circuit.Status),
		DistanceLeft: make(map[string]float64),
	}

	for _, p := range r.unshuffled {
		name := p.Name()
		snap.Positions[name] = r.scaleTrajectory(p.GetTrajectory())

		s, ok := p.GetState()
		if ok {
			snap.Rounds[name] = s.Round
			snap.Laps[name] = s.Lap
			snap.DistanceLeft[name] = s.DistanceLeft
		} else {
			snap.Rounds[name] = 0
			snap.Laps[name] = 0
			snap.DistanceLeft[name] = -1
		}

		status := circuit.StatusRunning
		if ok {
			status = s.Status
		}
		if p.IsStopped() && (!ok || s.Status == circuit.StatusRunning) {
			status = circuit.StatusDisconnected
		}
		snap.Status[name] = status
	}

	if r.playerToPlay >= 0 && r.playerToPlay < len(r.players) {
		cur := r.players[r.playerToPlay]
		snap.PlayingNow = cur.Name()
		snap.IsTurn = cur.Name() == viewerName
		for _, m := range cur.GetAllowedMoves() {
			sc := r.scaleCell(m.XY)
			snap.Moves = append(snap.Moves, MoveView{X: sc.X, Y: sc.Y, Status: m.Status})
		}
	}

	return snap
}

// scaleCell maps a grid cell back to the raw display coordinates of the
// circuit record: scale by grid size, then undo the origin shift applied
// at circuit construction.
func (r *Race) scaleCell(c circuit.Cell) ScaledCell {
	g := r.circuit.GridSize
	o := r.circuit.Origin
	return ScaledCell{
		X: c.X*g + int(math.Round(o.X)),
		Y: c.Y*g + int(math.Round(o.Y)),
	}
}

func (r *Race) scaleTrajectory(cells []circuit.Cell) []ScaledCell {
	out := make([]ScaledCell, len(cells))
	for i, c := range cells {
		out[i] = r.scaleCell(c)
	}
	return out
}
