package inmemory

import (
	"log/slog"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/streamvault/server/internal/repository/connection"
	"github.com/streamvault/server/pkg/wsrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnRepo(t *testing.T) {
	r := NewRepo(slog.Default())

	conn1 := wsrouter.NewConn(&websocket.Conn{})
	conn2 := wsrouter.NewConn(&websocket.Conn{})

	require.NoError(t, r.Add(conn1, "p1"))
	require.NoError(t, r.Add(conn2, "p2"))

	assert.ErrorIs(t, r.Add(conn1, "p3"), connection.ErrAlreadyExists)

	got, err := r.GetConn("p1")
	require.NoError(t, err)
	assert.Same(t, conn1, got)

	id, err := r.GetParticipantId(conn2)
	require.NoError(t, err)
	assert.Equal(t, "p2", id)

	_, err = r.GetConn("ghost")
	assert.ErrorIs(t, err, connection.ErrNotFound)

	// both directions are cleaned up together
	id, err = r.RemoveByConn(conn1)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	_, err = r.GetConn("p1")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	_, err = r.GetParticipantId(conn1)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	removed, err := r.RemoveByParticipantId("p2")
	require.NoError(t, err)
	assert.Same(t, conn2, removed)

	_, err = r.RemoveByParticipantId("p2")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}
