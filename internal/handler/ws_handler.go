/*
Package handler provides the HTTP handler for WebSocket connection upgrading.

This file contains HandleWebSocket, which upgrades the HTTP connection,
creates the session, and starts its read and write pumps.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/pkg/logx"
)

// HandleWebSocket creates an HTTP HandlerFunc that upgrades the connection and
// registers the resulting session with the hub. The read pump runs on the
// handler goroutine until the channel closes.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		session := chat.NewSession(deps.Hub, conn)

		go session.WritePump()

		deps.Hub.Register(session)

		logx.Info("WebSocket connection established", "remote_addr", session.RemoteAddr())

		session.ReadPump()
	}
}
