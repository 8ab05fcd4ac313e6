// Package server streams reconstructed cloth meshes to websocket clients and
// accepts control messages back from them.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faultbox/drape/internal/config"
	"github.com/Faultbox/drape/internal/mesh"
	"github.com/Faultbox/drape/internal/session"
	"github.com/Faultbox/drape/pkg/math"
)

// MeshFrame is one broadcast snapshot of the simulation.
type MeshFrame struct {
	Type      string       `json:"type"`
	Frame     uint64       `json:"frame"`
	Time      float32      `json:"time"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Positions [][3]float32 `json:"positions"`
	Normals   [][3]float32 `json:"normals"`
	Indices   []uint32     `json:"indices,omitempty"`
	Wind      WindState    `json:"wind"`
}

// WindState mirrors the current wind settings in each frame.
type WindState struct {
	Enabled   bool       `json:"enabled"`
	Magnitude float32    `json:"magnitude"`
	Direction [3]float32 `json:"direction"`
}

// ControlMessage is a client request to change the running simulation.
type ControlMessage struct {
	Type     string      `json:"type"` // wind, collision, reset, drag
	Enabled  *bool       `json:"enabled,omitempty"`
	Index    *int        `json:"index,omitempty"`
	Position *[3]float32 `json:"position,omitempty"`
}

// Server owns the tick loop and the connected client set. The session is
// only touched under simMu: the tick loop and the per-client control readers
// both take it.
type Server struct {
	cfg  *config.Config
	sess *session.Session

	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	simMu     sync.Mutex
	frame     uint64
	elapsed   float32
	lastFrame *MeshFrame
	indices   []uint32
}

// New creates a streaming server around an existing session.
func New(cfg *config.Config, sess *session.Session) *Server {
	return &Server{
		cfg:  cfg,
		sess: sess,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Run serves websocket clients until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	httpSrv := &http.Server{
		Addr:    s.cfg.Server.Listen,
		Handler: mux,
	}

	tickCtx, cancelTicks := context.WithCancel(ctx)
	defer cancelTicks()
	go s.tickLoop(tickCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("streaming server listening", "addr", s.cfg.Server.Listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler returns the websocket handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// StartTicks runs the tick loop until ctx is cancelled. Exposed so embedders
// using Handler can drive the simulation themselves.
func (s *Server) StartTicks(ctx context.Context) {
	go s.tickLoop(ctx)
}

func (s *Server) tickLoop(ctx context.Context) {
	rate := s.cfg.Server.TickRate
	if rate <= 0 {
		rate = 60
	}
	dt := 1.0 / float32(rate)

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := s.step(dt)
			if err != nil {
				if errors.Is(err, mesh.ErrGridUnresolved) {
					slog.Warn("mesh reconstruction failed", "error", err)
					continue
				}
				slog.Error("simulation step failed", "error", err)
				continue
			}
			s.broadcast(frame)
		}
	}
}

func (s *Server) step(dt float32) (*MeshFrame, error) {
	s.simMu.Lock()
	defer s.simMu.Unlock()

	surface, err := s.sess.Step(dt)
	if err != nil {
		return nil, err
	}

	s.frame++
	s.elapsed += dt
	frame := s.buildFrame(surface)
	s.lastFrame = frame
	return frame, nil
}

// buildFrame copies the surface into wire form. Indices are only included on
// the first frame and after a topology change; clients cache them.
func (s *Server) buildFrame(surface *mesh.Surface) *MeshFrame {
	frame := &MeshFrame{
		Type:      "mesh",
		Frame:     s.frame,
		Time:      s.elapsed,
		Width:     surface.Width,
		Height:    surface.Height,
		Positions: packVec3(surface.Positions),
		Normals:   packVec3(surface.Normals),
	}

	if s.lastFrame == nil ||
		s.lastFrame.Width != surface.Width || s.lastFrame.Height != surface.Height {
		frame.Indices = surface.Indices
	}
	s.indices = surface.Indices

	settings := s.sess.Cloth().Settings
	frame.Wind = WindState{
		Enabled:   s.sess.WindEnabled(),
		Magnitude: settings.WindMagnitude,
		Direction: [3]float32{settings.WindDirection.X, settings.WindDirection.Y, settings.WindDirection.Z},
	}
	return frame
}

func (s *Server) broadcast(frame *MeshFrame) {
	s.clientsMu.RLock()
	var failed []*websocket.Conn
	for conn, mu := range s.clients {
		mu.Lock()
		err := conn.WriteJSON(frame)
		mu.Unlock()
		if err != nil {
			slog.Warn("websocket write failed", "error", err)
			conn.Close()
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, conn := range failed {
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMu
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	slog.Info("client connected", "remote", r.RemoteAddr)

	// New clients get the latest frame with the full index list so they can
	// render before the next tick.
	s.sendInitialFrame(conn, connMu)

	for {
		var msg ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "error", err)
			}
			break
		}
		s.applyControl(msg)
	}

	slog.Info("client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) sendInitialFrame(conn *websocket.Conn, connMu *sync.Mutex) {
	s.simMu.Lock()
	var frame *MeshFrame
	if s.lastFrame != nil {
		f := *s.lastFrame
		f.Indices = s.indices
		frame = &f
	}
	s.simMu.Unlock()

	if frame == nil {
		return
	}
	connMu.Lock()
	if err := conn.WriteJSON(frame); err != nil {
		slog.Warn("initial frame write failed", "error", err)
	}
	connMu.Unlock()
}

func (s *Server) applyControl(msg ControlMessage) {
	s.simMu.Lock()
	defer s.simMu.Unlock()

	switch msg.Type {
	case "wind":
		if msg.Enabled != nil {
			s.sess.SetWind(*msg.Enabled)
			slog.Info("wind control", "enabled", *msg.Enabled)
		}
	case "collision":
		if msg.Enabled != nil {
			s.sess.SetCollision(*msg.Enabled)
			slog.Info("collision control", "enabled", *msg.Enabled)
		}
	case "reset":
		if err := s.sess.Reset(); err != nil {
			slog.Error("reset failed", "error", err)
		} else {
			// Force the next frame to carry indices again.
			s.lastFrame = nil
			slog.Info("cloth reset by client")
		}
	case "drag":
		if msg.Index != nil && msg.Position != nil {
			p := math.Vec3{X: msg.Position[0], Y: msg.Position[1], Z: msg.Position[2]}
			s.sess.Drag(*msg.Index, p)
		}
	default:
		slog.Warn("unknown control message", "type", msg.Type)
	}
}

func packVec3(src []math.Vec3) [][3]float32 {
	out := make([][3]float32, len(src))
	for i, v := range src {
		out[i] = [3]float32{v.X, v.Y, v.Z}
	}
	return out
}
