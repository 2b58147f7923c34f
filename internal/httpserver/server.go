// Package httpserver is the thin HTTP/JSON facade over the game core:
// serving the raw circuit record, race snapshots (over plain JSON and a
// push websocket), and the Play/Start/Stop entry points. Session/lobby
// management lives a layer above; this package wires only the surface the
// core itself defines.
package httpserver

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"

	"racetrack/internal/circuit"
	"racetrack/internal/player"
	"racetrack/internal/race"
	"racetrack/internal/registry"
)

// broadcastResolution bounds how often GetSnapshot is polled for push to
// websocket subscribers; one race can have many viewers, so this is
// independent of each viewer's own publish rate in snapshotPublisher.
const broadcastResolution = 150 * time.Millisecond

// Server wires one circuit/race pair to an HTTP API. A real deployment
// would route this behind a game lobby keyed by circuit/session name; that
// layer is out of the core's scope and not modeled here.
type Server struct {
	addr     string
	record   circuit.TrackRecord
	circuit  *circuit.Circuit
	registry *registry.Registry

	mu   sync.RWMutex
	race *race.Race

	subscribersMu sync.Mutex
	subscribers   []chan any
}

// New wires a Server over an already-constructed circuit.
func New(addr string, record circuit.TrackRecord, c *circuit.Circuit, reg *registry.Registry) *Server {
	return &Server{
		addr:     addr,
		record:   record,
		circuit:  c,
		registry: reg,
	}
}

// Router builds the gorilla/mux router exposing the core's HTTP surface.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/circuit", s.serveCircuit).Methods(http.MethodGet)
	r.HandleFunc("/snapshot", s.serveSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket).Methods(http.MethodGet)
	r.HandleFunc("/start", s.serveStart).Methods(http.MethodPost)
	r.HandleFunc("/stop", s.serveStop).Methods(http.MethodPost)
	r.HandleFunc("/play", s.servePlay).Methods(http.MethodPost)
	return r
}

// Serve blocks, serving the HTTP API on addr.
func (s *Server) Serve() error {
	return http.ListenAndServe(s.addr, s.Router())
}

func (s *Server) currentRace() *race.Race {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.race
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html><head><title>{{.Name}}</title></head>
<body>
<h1>{{.Name}}</h1>
<p>grid {{.GridSize}}, max speed {{.MaximumSpeed}}, laps {{.NumLaps}}</p>
<div id="snapshot"></div>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => { document.getElementById("snapshot").textContent = ev.data; };
</script>
</body></html>`))

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	_ = indexTemplate.Execute(w, s.record)
}

// serveCircuit implements CircuitJSONData: the raw, unscaled circuit record.
func (s *Server) serveCircuit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.record)
}

// serveSnapshot implements RaceSnapshot(viewer_id).
func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	rc := s.currentRace()
	if rc == nil {
		http.Error(w, "race not started", http.StatusConflict)
		return
	}
	viewer := r.URL.Query().Get("viewer")
	writeJSON(w, rc.GetSnapshot(viewer))
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	updates := s.subscribe()
	defer s.unsubscribe(updates)

	pub, err := newSnapshotPublisher(updates, w, r)
	if err != nil {
		return
	}
	if err := pub.sync(); err != nil {
		log.Printf("websocket client disconnected: %v", err)
	}
}

// serveStart implements Start(players): a JSON body naming players by
// {name, strategy}; strategy "" means Human.
func (s *Server) serveStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Players []struct {
			Name     string `json:"name"`
			Strategy string `json:"strategy"`
		} `json:"players"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	players := make([]player.Player, 0, len(req.Players))
	for _, p := range req.Players {
		if p.Strategy == "" {
			players = append(players, player.NewHuman(p.Name, nil))
			continue
		}
		cp, err := s.registry.CreatePlayer(p.Strategy, p.Name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		players = append(players, cp)
	}

	rc := race.New(s.circuit)
	rc.Start(players)

	s.mu.Lock()
	s.race = rc
	s.mu.Unlock()

	go s.broadcastLoop(rc)

	w.WriteHeader(http.StatusAccepted)
}

// broadcastLoop fans a polled snapshot out to every connected viewer until
// the race ends. GetSnapshot viewer-scopes IsTurn, so each subscriber
// would ideally get its own viewer-keyed snapshot; lacking a per-viewer
// identity on the subscriber channel, this publishes the viewer-neutral
// snapshot (viewer "", so IsTurn is false) and leaves per-viewer framing
// to the client.
func (s *Server) broadcastLoop(rc *race.Race) {
	ticks := channerics.NewTicker(rc.Done(), broadcastResolution)
	for range ticks {
		snap := rc.GetSnapshot("")
		s.subscribersMu.Lock()
		for _, ch := range s.subscribers {
			select {
			case ch <- snap:
			default:
			}
		}
		s.subscribersMu.Unlock()
	}
}

func (s *Server) serveStop(w http.ResponseWriter, r *http.Request) {
	rc := s.currentRace()
	if rc == nil {
		http.Error(w, "race not started", http.StatusConflict)
		return
	}
	rc.Stop()
	w.WriteHeader(http.StatusAccepted)
}

// servePlay implements Play(move_index, viewer_id).
func (s *Server) servePlay(w http.ResponseWriter, r *http.Request) {
	rc := s.currentRace()
	if rc == nil {
		http.Error(w, "race not started", http.StatusConflict)
		return
	}

	viewer := r.URL.Query().Get("viewer")
	moveIndex, err := strconv.Atoi(r.URL.Query().Get("move"))
	if err != nil {
		http.Error(w, "invalid move index", http.StatusBadRequest)
		return
	}

	if err := rc.Play(viewer, moveIndex); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) subscribe() chan any {
	ch := make(chan any, 1)
	s.subscribersMu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.subscribersMu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan any) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()
	for i, c := range s.subscribers {
		if c == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
