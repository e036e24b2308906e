// Package relay implements the WebSocket signaling relay peers use to find
// each other. Clients register as host or guest in a room; the relay then
// forwards offer, answer and ICE candidate messages to the opposite role
// without looking inside them.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/gorilla/websocket"
)

// room holds at most one client per role.
type room struct {
	host  *client
	guest *client
}

func (r *room) get(role Role) *client {
	if role == RoleHost {
		return r.host
	}
	return r.guest
}

func (r *room) set(role Role, c *client) {
	if role == RoleHost {
		r.host = c
	} else {
		r.guest = c
	}
}

func (r *room) empty() bool { return r.host == nil && r.guest == nil }

// Server accepts WebSocket connections and routes messages between the
// clients of each room.
type Server struct {
	cfg      *Config
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	rooms   map[string]*room
	clients map[*client]struct{}
}

// NewServer creates a relay. A nil logger discards output.
func NewServer(cfg *Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:     cfg,
		log:     log,
		rooms:   make(map[string]*room),
		clients: make(map[*client]struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin()}
	return s
}

func (s *Server) checkOrigin() func(*http.Request) bool {
	switch {
	case len(s.cfg.AllowedOrigins) == 0:
		return nil // gorilla's same-origin check
	case slices.Contains(s.cfg.AllowedOrigins, "*"):
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(s.cfg.AllowedOrigins, origin)
	}
}

// Handler returns an http.Handler serving the relay at the configured path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, s)
	return mux
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newClient(conn, s.cfg, s.log.With("remote", r.RemoteAddr))
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	c.log.Debug("connected")
	go c.writeLoop()
	c.readLoop(s.handle)
	s.drop(c)
	c.log.Debug("disconnected")
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Address, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("relay listening", "addr", s.cfg.Address, "path", s.cfg.Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("relay: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("relay shutdown: %w", err)
	}
	return nil
}

// Close disconnects every client. Hijacked connections outlive http.Server.Shutdown.
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// RoomCount returns the number of rooms with at least one client.
func (s *Server) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// handle routes one frame from c.
func (s *Server) handle(c *client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.send(errorEnvelope(fmt.Errorf("malformed message: %w", err)))
		return
	}

	if env.Type == TypeRegister {
		if err := s.register(c, env); err != nil {
			c.log.Info("register rejected", "role", env.Role, "room", env.Room, "err", err)
			c.send(errorEnvelope(err))
		}
		return
	}

	if err := s.forward(c, env.Type, data); err != nil {
		c.send(errorEnvelope(err))
	}
}

func (s *Server) register(c *client, env Envelope) error {
	if !env.Role.valid() {
		return fmt.Errorf("invalid role %q", env.Role)
	}
	name := env.Room
	if name == "" {
		name = DefaultRoom
	}

	s.mu.Lock()
	if c.role != "" {
		s.mu.Unlock()
		return fmt.Errorf("already registered as %s", c.role)
	}
	rm := s.rooms[name]
	if rm == nil {
		rm = &room{}
		s.rooms[name] = rm
	}
	if rm.get(env.Role) != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s in room %q", ErrRoleTaken, env.Role, name)
	}
	rm.set(env.Role, c)
	c.role, c.room = env.Role, name
	peer := rm.get(env.Role.Other())
	s.mu.Unlock()

	c.log.Info("registered", "role", env.Role, "room", name)
	c.send(encode(Envelope{Type: TypeRegistered, Role: env.Role, Room: name}))
	if peer != nil {
		peer.send(encode(Envelope{Type: TypePeerJoined, Role: env.Role, Room: name}))
		c.send(encode(Envelope{Type: TypePeerJoined, Role: peer.role, Room: name}))
	}
	return nil
}

// forward relays data to the opposite role of c's room byte for byte.
func (s *Server) forward(c *client, typ string, data []byte) error {
	s.mu.Lock()
	role, name := c.role, c.room
	var peer *client
	if rm := s.rooms[name]; rm != nil && role != "" {
		peer = rm.get(role.Other())
	}
	s.mu.Unlock()

	if role == "" {
		return fmt.Errorf("%w: send %q first", errNotRegistered, TypeRegister)
	}
	target, err := forwardTarget(typ, role)
	if err != nil {
		return err
	}
	if peer == nil {
		return fmt.Errorf("%w: no %s in room %q", errNoPeer, target, name)
	}
	peer.send(data)
	return nil
}

// drop forgets a closed client and tells its peer.
func (s *Server) drop(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	var peer *client
	if rm := s.rooms[c.room]; rm != nil && c.role != "" && rm.get(c.role) == c {
		rm.set(c.role, nil)
		peer = rm.get(c.role.Other())
		if rm.empty() {
			delete(s.rooms, c.room)
		}
	}
	role, name := c.role, c.room
	s.mu.Unlock()

	if peer != nil {
		peer.send(encode(Envelope{Type: TypePeerLeft, Role: role, Room: name}))
	}
}
