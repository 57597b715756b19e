/*
Package randx provides generation of unique identifiers.
*/
package randx

import "github.com/google/uuid"

// UserID generates a UUID v4 string used as the opaque identifier of a registered user.
func UserID() string {
	return uuid.NewString()
}
