/*
Package registry holds the in-memory roster of registered users.

The Registry is the single owner of the user collection. Both the HTTP
registration gateway and the channel protocol mutate it, so every
check-and-insert runs under one lock to keep the uniqueness invariant
under concurrent registrations.
*/
package registry

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"chatrelay/internal/app/user"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/randx"
)

// Registry is the ordered, name-unique collection of registered users.
// Names are unique under case-insensitive comparison; insertion order is
// preserved and is the roster order exposed to clients.
type Registry struct {
	// mu protects users.
	mu sync.RWMutex

	// users is the roster in insertion order.
	users []user.User

	// structured logger with Registry context.
	logger zerolog.Logger
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		logger: logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// nameTakenLocked reports whether name matches an existing user case-insensitively.
// Callers must hold mu.
func (r *Registry) nameTakenLocked(name string) bool {
	return lo.SomeBy(r.users, func(u user.User) bool {
		return strings.EqualFold(u.Name, name)
	})
}

// Register creates a user with a freshly generated identifier and appends it
// to the roster. It fails with ErrNameTaken when the name is already held,
// leaving the roster unchanged.
func (r *Registry) Register(name string) (user.User, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTakenLocked(name) {
		r.logger.Warn().Str("name", name).Msg("Registration rejected: name already taken.")
		return user.User{}, errs.NewError(errs.ErrNameTaken)
	}

	newUser := user.User{
		ID:   randx.UserID(),
		Name: name,
	}
	r.users = append(r.users, newUser)

	r.logger.Info().Str("user_id", newUser.ID).Str("name", newUser.Name).Msg("New user registered.")
	return newUser, nil
}

// RegisterExisting appends a caller-supplied user record, preserving its
// identifier. It is used when a client announces itself over its channel
// after out-of-band registration. The uniqueness check is the same as Register.
func (r *Registry) RegisterExisting(u user.User) *errs.CustomError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTakenLocked(u.Name) {
		r.logger.Warn().Str("name", u.Name).Msg("Announcement rejected: nickname already taken.")
		return errs.NewError(errs.ErrNicknameTaken)
	}

	r.users = append(r.users, u)

	r.logger.Info().Str("user_id", u.ID).Str("name", u.Name).Msg("Existing user announced.")
	return nil
}

// Remove deletes the user whose name matches case-insensitively and reports
// whether anything was removed. A missing name is a no-op, not an error.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.users)
	r.users = lo.Reject(r.users, func(u user.User, _ int) bool {
		return strings.EqualFold(u.Name, name)
	})

	removed := len(r.users) != before
	if removed {
		r.logger.Info().Str("name", name).Msg("User removed from roster.")
	}
	return removed
}

// Snapshot returns a point-in-time copy of the roster in insertion order.
// The returned slice is never nil so it serializes as an empty JSON array.
func (r *Registry) Snapshot() []user.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]user.User, len(r.users))
	copy(snapshot, r.users)
	return snapshot
}
