/*
Package chat contains the core logic for live sessions and message fan-out.

This file defines the wire shapes of the channel protocol: the inbound
control-message envelope and the outbound server messages.
*/
package chat

import (
	"encoding/json"

	"chatrelay/internal/app/user"
)

// Inbound control message types sent by clients.
const (
	TypeNewUser  = "new-user"
	TypeExit     = "exit"
	TypeGetUsers = "get-users"
	TypeSend     = "send"
)

// Outbound message types sent by the server.
const (
	TypeUsersList     = "users-list"
	TypeNicknameError = "nickname-error"
)

// UsersListMessage carries a roster snapshot to clients.
type UsersListMessage struct {
	Type  string      `json:"type"`
	Users []user.User `json:"users"`
}

// NicknameErrorMessage reports a rejected announcement to the sender only.
type NicknameErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewUsersListMessage serializes a users-list message for the given roster.
func NewUsersListMessage(users []user.User) ([]byte, error) {
	return json.Marshal(UsersListMessage{
		Type:  TypeUsersList,
		Users: users,
	})
}

// NewNicknameErrorMessage serializes a nickname-error message with the given reason.
func NewNicknameErrorMessage(message string) ([]byte, error) {
	return json.Marshal(NicknameErrorMessage{
		Type:    TypeNicknameError,
		Message: message,
	})
}

// frame is one outbound websocket message together with its original kind,
// so verbatim forwarding preserves text/binary framing.
type frame struct {
	payload []byte
	binary  bool
}
