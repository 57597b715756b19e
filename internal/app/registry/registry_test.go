package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"chatrelay/internal/app/user"
	"chatrelay/internal/pkg/errs"
)

func TestRegister_GeneratesIDAndAppends(t *testing.T) {
	reg := New()

	alice, customErr := reg.Register("Alice")
	require.Nil(t, customErr)
	require.NotEmpty(t, alice.ID)
	require.Equal(t, "Alice", alice.Name)

	bob, customErr := reg.Register("Bob")
	require.Nil(t, customErr)
	require.NotEqual(t, alice.ID, bob.ID)

	require.Equal(t, []user.User{alice, bob}, reg.Snapshot())
}

func TestRegister_CaseInsensitiveCollision(t *testing.T) {
	reg := New()

	_, customErr := reg.Register("Alice")
	require.Nil(t, customErr)

	_, customErr = reg.Register("alice")
	require.NotNil(t, customErr)
	require.Equal(t, errs.ErrNameTaken, customErr.Code)

	// failed registration leaves the roster unchanged
	require.Len(t, reg.Snapshot(), 1)
}

func TestRegisterExisting_PreservesSuppliedID(t *testing.T) {
	reg := New()

	bob := user.User{ID: "x", Name: "Bob"}
	require.Nil(t, reg.RegisterExisting(bob))

	snapshot := reg.Snapshot()
	require.Len(t, snapshot, 1)
	require.Equal(t, "x", snapshot[0].ID)
}

func TestRegisterExisting_CaseInsensitiveCollision(t *testing.T) {
	reg := New()

	_, customErr := reg.Register("Bob")
	require.Nil(t, customErr)

	rejectErr := reg.RegisterExisting(user.User{ID: "x", Name: "BOB"})
	require.NotNil(t, rejectErr)
	require.Equal(t, errs.ErrNicknameTaken, rejectErr.Code)
	require.Len(t, reg.Snapshot(), 1)
}

func TestRemove_CaseInsensitiveAndOrderPreserving(t *testing.T) {
	reg := New()

	alice, _ := reg.Register("Alice")
	_, customErr := reg.Register("Bob")
	require.Nil(t, customErr)
	carol, _ := reg.Register("Carol")

	require.True(t, reg.Remove("BOB"))
	require.Equal(t, []user.User{alice, carol}, reg.Snapshot())

	// removing an absent name is a no-op
	require.False(t, reg.Remove("Bob"))
	require.Len(t, reg.Snapshot(), 2)
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	reg := New()

	_, customErr := reg.Register("Alice")
	require.Nil(t, customErr)

	snapshot := reg.Snapshot()
	snapshot[0].Name = "Mallory"

	require.Equal(t, "Alice", reg.Snapshot()[0].Name)
}

func TestSnapshot_EmptyRosterIsNotNil(t *testing.T) {
	reg := New()

	snapshot := reg.Snapshot()
	require.NotNil(t, snapshot)
	require.Empty(t, snapshot)
}

func TestRegister_ConcurrentSameNameSingleWinner(t *testing.T) {
	reg := New()

	names := []string{"Dave", "dave", "DAVE", "dAvE"}
	var successes atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if _, customErr := reg.Register(name); customErr == nil {
				successes.Add(1)
			}
		}(names[i%len(names)])
	}
	wg.Wait()

	require.Equal(t, int32(1), successes.Load())
	require.Len(t, reg.Snapshot(), 1)
}
