package swiftgate_test

import (
	"context"
	"sync"
	"testing"

	"github.com/sagarc03/swiftgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Run("defaults container", func(t *testing.T) {
		sess, err := swiftgate.NewSession("AUTH_test", "")

		require.NoError(t, err)
		assert.Equal(t, "AUTH_test", sess.Account())
		assert.Equal(t, swiftgate.DefaultContainer, sess.Container())
		assert.False(t, sess.Authenticated())
		assert.Empty(t, sess.Token())
	})

	t.Run("custom container", func(t *testing.T) {
		sess, err := swiftgate.NewSession("AUTH_test", "photos")

		require.NoError(t, err)
		assert.Equal(t, "photos", sess.Container())
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		_, err := swiftgate.NewSession("", "photos")
		assert.ErrorIs(t, err, swiftgate.ErrInvalidInput)

		_, err = swiftgate.NewSession("AUTH_test", "a/b")
		assert.ErrorIs(t, err, swiftgate.ErrInvalidInput)
	})
}

func TestSession_ConcurrentCredentials(t *testing.T) {
	client, srv, _ := newTestClient(t, swiftgate.Options{})
	srv.AddUser("alice", "k1", "TOKEN_A")
	srv.AddUser("bob", "k2", "TOKEN_B")

	alice, err := swiftgate.NewSession(testAccount, "")
	require.NoError(t, err)
	bob, err := swiftgate.NewSession(testAccount, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, client.Authenticate(context.Background(), alice, "alice", "k1"))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, client.Authenticate(context.Background(), bob, "bob", "k2"))
		}()
	}
	wg.Wait()

	assert.Equal(t, "TOKEN_A", alice.Token())
	assert.Equal(t, "TOKEN_B", bob.Token())
}
