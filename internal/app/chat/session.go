/*
Package chat contains the core logic for live sessions and message fan-out.

This file defines the Session struct, representing one open WebSocket channel.
It manages the channel lifecycle, the read and write pumps, and the dispatch
of inbound control messages.
*/
package chat

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatrelay/internal/app/user"
	"chatrelay/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// buffer for frames queued toward one session.
	sendQueueBuffer = 256
)

// Session represents one open channel and its optional user association.
// The association is set only by a successful new-user announcement on this
// channel; HTTP registration alone never binds a channel.
type Session struct {
	// hub owning this session.
	hub *Hub

	// underlying WebSocket connection.
	conn *websocket.Conn

	// send queues outbound frames toward the WritePump.
	send chan frame

	// mu protects userName.
	mu sync.Mutex

	// userName is the display name announced on this channel, or empty.
	userName string

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a Session for a freshly upgraded connection.
func NewSession(hub *Hub, conn *websocket.Conn) *Session {
	sessionLogger := logx.Logger().With().
		Str("component", "Session").
		Str("remote_addr", conn.RemoteAddr().String()).
		Logger()

	return &Session{
		hub:    hub,
		conn:   conn,
		send:   make(chan frame, sendQueueBuffer),
		logger: sessionLogger,
	}
}

// RemoteAddr returns the remote address of the underlying connection.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

// bindUser records the display name announced on this channel.
func (s *Session) bindUser(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userName = name
}

// boundUser returns the display name announced on this channel, or empty.
func (s *Session) boundUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userName
}

// enqueue attempts a non-blocking delivery of one frame to this session.
// It reports false when the queue is full or already closed; the hub may
// close the send channel while other goroutines still hold the session, so
// a send onto the closed channel is recovered here rather than propagated.
func (s *Session) enqueue(f frame) (queued bool) {
	defer func() {
		if recover() != nil {
			queued = false
		}
	}()

	select {
	case s.send <- f:
		return true
	default:
		return false
	}
}

// closeConn closes the underlying connection, logging unexpected errors.
func (s *Session) closeConn() {
	if err := s.conn.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("Session connection close error")
	}
}

// ReadPump reads messages from the channel until it closes, dispatching each
// inbound message. It enforces the read limit and the pong deadline, and
// performs cleanup when the connection terminates.
func (s *Session) ReadPump() {
	defer func() {
		s.hub.Unregister(s)
		s.closeConn()
	}()

	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		s.dispatch(messageType, raw)
	}
}

// dispatch parses one inbound message and routes it to its handler.
// Failures are logged and swallowed; one bad message never terminates the
// channel.
func (s *Session) dispatch(messageType int, raw []byte) {
	var envelope struct {
		Type string          `json:"type"`
		User json.RawMessage `json:"user,omitempty"`
	}

	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("Session sent invalid JSON")
		return
	}

	switch envelope.Type {
	case TypeNewUser:
		s.handleNewUser(envelope.User)

	case TypeExit:
		s.handleExit(envelope.User)

	case TypeGetUsers:
		s.handleGetUsers()

	case TypeSend:
		// forwarded verbatim to every open session, the sender included
		s.hub.BroadcastRaw(raw, messageType == websocket.BinaryMessage)

	default:
		s.logger.Warn().Str("msg_type", envelope.Type).Msg("Session sent unsupported message type")
	}
}

// handleNewUser announces a user on this channel. On success the roster is
// broadcast to everyone; on a name collision only this session is told why.
func (s *Session) handleNewUser(rawUser json.RawMessage) {
	var u user.User
	if len(rawUser) == 0 || json.Unmarshal(rawUser, &u) != nil {
		s.logger.Warn().Msg("Session sent new-user without a valid user payload")
		return
	}

	if customErr := s.hub.Registry().RegisterExisting(u); customErr != nil {
		s.sendNicknameError(customErr.Message)
		return
	}

	s.bindUser(u.Name)
	s.hub.BroadcastRoster()
}

// handleExit removes the named user from the roster. The roster is rebroadcast
// only when a user was actually removed; the exiting session gets no reply.
func (s *Session) handleExit(rawUser json.RawMessage) {
	var u user.User
	if len(rawUser) == 0 || json.Unmarshal(rawUser, &u) != nil {
		s.logger.Warn().Msg("Session sent exit without a valid user payload")
		return
	}

	if strings.EqualFold(u.Name, s.boundUser()) {
		s.bindUser("")
	}

	if s.hub.Registry().Remove(u.Name) {
		s.hub.BroadcastRoster()
	}
}

// handleGetUsers replies to this session only with the current roster.
func (s *Session) handleGetUsers() {
	payload, err := NewUsersListMessage(s.hub.Registry().Snapshot())
	if err != nil {
		s.logger.Error().Err(err).Msg("Error marshaling roster for get-users reply")
		return
	}

	if !s.enqueue(frame{payload: payload}) {
		s.logger.Warn().Msg("Session send queue full, dropping get-users reply")
	}
}

// sendNicknameError reports a rejected announcement back to this session only.
func (s *Session) sendNicknameError(reason string) {
	payload, err := NewNicknameErrorMessage(reason)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error marshaling nickname-error message")
		return
	}

	if !s.enqueue(frame{payload: payload}) {
		s.logger.Warn().Msg("Session send queue full, dropping nickname-error")
	}
}

// WritePump writes queued frames to the connection and keeps the heartbeat
// alive with periodic pings. It terminates when the send channel closes or a
// write fails.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		s.closeConn()
	}()

	for {
		select {
		case f, ok := <-s.send:
			if !s.writeQueuedFrame(f, ok) {
				return
			}

		case <-ticker.C:
			if !s.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns false when the WritePump loop should terminate.
func (s *Session) writeQueuedFrame(f frame, ok bool) bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := s.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			s.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	messageType := websocket.TextMessage
	if f.binary {
		messageType = websocket.BinaryMessage
	}

	if err := s.conn.WriteMessage(messageType, f.payload); err != nil {
		s.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic Ping to maintain the connection heartbeat.
// Returns false when the WritePump loop should terminate.
func (s *Session) writePingMessage() bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		s.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
