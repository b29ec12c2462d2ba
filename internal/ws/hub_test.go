package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"debate-relay/internal/relay"
)

func TestHubAddAndRemove(t *testing.T) {
	hub := NewHub()

	hub.Add("c1", nil, ConnInfo{ConnID: "c1", UserID: "A"})
	info, ok := hub.Info("c1")
	require.True(t, ok)
	require.Equal(t, "A", info.UserID)

	hub.Remove("c1")
	_, ok = hub.Info("c1")
	require.False(t, ok)
}

func TestHubSendToAbsentConnectionIsGone(t *testing.T) {
	hub := NewHub()

	err := hub.Send("missing", []byte(`{}`))
	require.ErrorIs(t, err, relay.ErrConnectionGone)
}
