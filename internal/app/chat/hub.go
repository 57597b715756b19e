/*
Package chat contains the core logic for live sessions and message fan-out.

This file defines the Hub, the central manager of all open sessions. It owns
the live-channel collection, serializes registration and removal through its
Run loop, and fans broadcast frames out to every open session.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/registry"
	"chatrelay/internal/pkg/logx"
)

const (
	// buffer for queued broadcast frames.
	broadcastChannelBuffer = 1024

	// buffer for pending unregistrations, so the Run loop can schedule a
	// disconnect for a stalled session from inside a fan-out.
	unregisterChannelBuffer = 32
)

// Hub coordinates all open sessions and the broadcast fan-out.
type Hub struct {
	// registry is the shared user roster, also mutated by the HTTP gateway.
	registry *registry.Registry

	// sessions holds every currently open session.
	sessions map[*Session]struct{}

	// register queues sessions whose channel just opened.
	register chan *Session

	// unregister queues sessions whose channel closed or stalled.
	unregister chan *Session

	// broadcast queues frames to fan out to every open session.
	broadcast chan frame

	// stopChan signals the Run loop to terminate.
	stopChan chan struct{}

	// done is closed when the Run loop has finished.
	done chan struct{}

	// stopOnce guards stopChan closure.
	stopOnce sync.Once

	// mu protects access to the sessions map.
	mu sync.RWMutex

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub bound to the shared user registry.
func NewHub(reg *registry.Registry) *Hub {
	return &Hub{
		registry:   reg,
		sessions:   make(map[*Session]struct{}),
		register:   make(chan *Session),
		unregister: make(chan *Session, unregisterChannelBuffer),
		broadcast:  make(chan frame, broadcastChannelBuffer),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Registry returns the shared user roster.
func (h *Hub) Registry() *registry.Registry {
	return h.registry
}

// Register queues a session whose channel just opened.
func (h *Hub) Register(s *Session) {
	select {
	case h.register <- s:
	case <-h.stopChan:
		h.logger.Warn().Msg("Register ignored: hub is shutting down.")
	}
}

// Unregister queues a session for removal. It never blocks; if the queue is
// full the session's ReadPump has already terminated and the connection is
// closed regardless.
func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s:
	default:
		h.logger.Warn().Msg("Unregister channel full, skipping session cleanup.")
	}
}

// BroadcastRoster serializes the current roster as a users-list message and
// queues it for fan-out to every open session.
func (h *Hub) BroadcastRoster() {
	payload, err := NewUsersListMessage(h.registry.Snapshot())
	if err != nil {
		h.logger.Error().Err(err).Msg("Error marshaling roster for broadcast.")
		return
	}
	h.enqueueBroadcast(frame{payload: payload})
}

// BroadcastRaw queues an arbitrary payload for verbatim fan-out to every open
// session, the original sender included.
func (h *Hub) BroadcastRaw(payload []byte, binary bool) {
	h.enqueueBroadcast(frame{payload: payload, binary: binary})
}

func (h *Hub) enqueueBroadcast(f frame) {
	select {
	case h.broadcast <- f:
	default:
		h.logger.Warn().Msg("Broadcast channel full, dropping frame.")
	}
}

// Run starts the Hub's main event loop. It handles session registration,
// removal, and broadcast fan-out until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	h.logger.Info().Msg("Hub event loop started.")

	for {
		select {
		case s := <-h.register:
			h.addSession(s)

		case s := <-h.unregister:
			h.removeSession(s)

		case f := <-h.broadcast:
			h.fanOut(f)

		case <-h.stopChan:
			h.closeAllSessions()
			h.logger.Info().Msg("Hub event loop stopped.")
			return
		}
	}
}

// addSession registers an open session and sends it the current roster
// snapshot, unsolicited, as the first message on the channel.
func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	total := len(h.sessions)
	h.mu.Unlock()

	h.logger.Info().Str("remote_addr", s.RemoteAddr()).Int("total_sessions", total).Msg("Session opened.")

	payload, err := NewUsersListMessage(h.registry.Snapshot())
	if err != nil {
		h.logger.Error().Err(err).Msg("Error marshaling roster for new session.")
		return
	}
	s.enqueue(frame{payload: payload})
}

// removeSession destroys a session. If the session had announced a user, that
// user leaves the roster and the updated roster is broadcast, so disconnected
// clients do not linger as ghosts.
func (h *Hub) removeSession(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	if ok {
		delete(h.sessions, s)
	}
	total := len(h.sessions)
	h.mu.Unlock()

	if !ok {
		return
	}

	close(s.send)
	h.logger.Info().Str("remote_addr", s.RemoteAddr()).Int("total_sessions", total).Msg("Session closed.")

	if name := s.boundUser(); name != "" {
		if h.registry.Remove(name) {
			h.BroadcastRoster()
		}
	}
}

// fanOut delivers one frame to every open session. Sends are non-blocking; a
// session whose queue is full is scheduled for removal so one stalled
// receiver never delays the others.
func (h *Hub) fanOut(f frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.sessions {
		if s.enqueue(f) {
			continue
		}

		h.logger.Warn().Str("remote_addr", s.RemoteAddr()).Msg("Session send queue full, scheduling disconnect.")
		h.Unregister(s)
	}
}

// closeAllSessions tears down every remaining session during shutdown.
func (h *Hub) closeAllSessions() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.sessions {
		delete(h.sessions, s)
		close(s.send)
		s.closeConn()
	}
}

// Shutdown stops the Run loop and waits for it to finish.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	<-h.done

	h.logger.Info().Msg("Hub shutdown complete.")
}
