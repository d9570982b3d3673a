// Package telemetry serves a live population-state stream over
// websocket: the same ping/pong keepalive constants and
// read-pump-drives-control-frames pattern as a single-client prototype,
// generalized to gorilla/mux routing and multiple concurrent viewers
// instead of two bare http.HandleFunc registrations for one client.
package telemetry

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 1 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
	publishPeriod    = 200 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ClassifierView is one macro-classifier's serializable summary.
type ClassifierView struct {
	Condition string  `json:"condition"`
	Action    string  `json:"action"`
	Err       float64 `json:"err"`
	Fit       float64 `json:"fit"`
	Num       int     `json:"num"`
	Exp       int     `json:"exp"`
}

// Snapshot is the population-state payload pushed to every connected
// client (spec's external interfaces §6: the engine is otherwise a pure
// library, so any live view is an out-of-core collaborator).
type Snapshot struct {
	Time        int              `json:"time"`
	MacroCount  int              `json:"macro_count"`
	Numerosity  int              `json:"numerosity"`
	MeanFitness float64          `json:"mean_fitness"`
	Classifiers []ClassifierView `json:"classifiers,omitempty"`
}

// SnapshotFunc produces the current snapshot; the engine supplies this so
// telemetry never imports the engine package back.
type SnapshotFunc func() Snapshot

// Server streams SnapshotFunc's output to any number of websocket
// clients at a fixed publish rate.
type Server struct {
	addr     string
	snapshot SnapshotFunc
	limiter  *connLimiter

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// connsPerMinute bounds how many websocket upgrades a single remote
// address may perform per minute.
const connsPerMinute = 30

// NewServer builds a telemetry server that will poll snapshot for
// publication once Serve is running.
func NewServer(addr string, snapshot SnapshotFunc) *Server {
	return &Server{
		addr:     addr,
		snapshot: snapshot,
		limiter:  newConnLimiter(connsPerMinute),
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// Serve blocks, serving the /ws endpoint and a periodic broadcaster.
func (s *Server) Serve() error {
	go s.broadcastLoop()

	if err := http.ListenAndServe(s.addr, s.router()); err != nil {
		return fmt.Errorf("telemetry: serve: %w", err)
	}
	return nil
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.serveWebsocket)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(publishPeriod)
	defer ticker.Stop()
	for range ticker.C {
		snap := s.snapshot()
		s.mu.Lock()
		for ws := range s.clients {
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				continue
			}
			if err := ws.WriteJSON(snap); err != nil {
				log.Println("telemetry: publish failed:", err)
			}
		}
		s.mu.Unlock()
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	if ok, _ := s.limiter.allow(r.RemoteAddr); !ok {
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.clients[ws] = struct{}{}
	s.mu.Unlock()

	defer s.closeWebsocket(ws)
	s.pumpControlFrames(ws)
}

// pumpControlFrames keeps the connection's ping/pong handling alive; a
// read call must run continuously for gorilla/websocket to dispatch
// control frames.
func (s *Server) pumpControlFrames(ws *websocket.Conn) {
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-pinger.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) closeWebsocket(ws *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, ws)
	s.mu.Unlock()

	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.AfterFunc(closeGracePeriod, func() { ws.Close() })
}
