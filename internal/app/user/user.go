/*
Package user contains the core data structure for user identity.

It defines the User value passed between the registry, the channel protocol,
and HTTP responses.
*/
package user

// User represents one registered chat participant.
// Users are plain values; the registry owns the authoritative collection and
// copies are serialized into outbound messages.
type User struct {
	// ID is the opaque unique identifier for the user.
	ID string `json:"id"`

	// Name is the display name claimed at registration.
	Name string `json:"name"`
}
