package redis

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/streamvault/server/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})

	return NewRepo(rc, slog.Default())
}

func TestParticipantTenureOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		err := r.SetParticipant(ctx, &room.SetParticipantParams{
			ParticipantId: id,
			RoomCode:      "ROOM42",
			Username:      "user-" + id,
		})
		require.NoError(t, err)
	}

	ids, err := r.GetParticipantIds(ctx, "ROOM42")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids, "ids must come back in join order")

	// removing from the middle keeps the order of the rest
	err = r.RemoveParticipant(ctx, &room.RemoveParticipantParams{
		ParticipantId: "b",
		RoomCode:      "ROOM42",
	})
	require.NoError(t, err)

	ids, err = r.GetParticipantIds(ctx, "ROOM42")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, ids)

	// a rejoin lands at the end, tenure restarts
	err = r.SetParticipant(ctx, &room.SetParticipantParams{
		ParticipantId: "b",
		RoomCode:      "ROOM42",
		Username:      "user-b",
	})
	require.NoError(t, err)

	ids, err = r.GetParticipantIds(ctx, "ROOM42")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids)
}

func TestParticipantFields(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	err := r.SetParticipant(ctx, &room.SetParticipantParams{
		ParticipantId: "p1",
		RoomCode:      "ROOM42",
		Username:      "alice",
		IsHost:        true,
	})
	require.NoError(t, err)

	require.NoError(t, r.UpdateParticipantIsMuted(ctx, "ROOM42", "p1", true))
	require.NoError(t, r.UpdateParticipantIsHostMuted(ctx, "ROOM42", "p1", true))
	require.NoError(t, r.UpdateParticipantIsSpeaking(ctx, "ROOM42", "p1", true))

	p, err := r.GetParticipant(ctx, &room.GetParticipantParams{
		ParticipantId: "p1",
		RoomCode:      "ROOM42",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.True(t, p.IsHost)
	assert.True(t, p.IsMuted)
	assert.True(t, p.IsHostMuted)
	assert.True(t, p.IsSpeaking)

	_, err = r.GetParticipant(ctx, &room.GetParticipantParams{
		ParticipantId: "ghost",
		RoomCode:      "ROOM42",
	})
	assert.ErrorIs(t, err, room.ErrParticipantNotFound)
}

func TestChatHistoryTrimmed(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < messageHistoryLimit+20; i++ {
		err := r.AddChatMessage(ctx, &room.AddChatMessageParams{
			RoomCode:  "ROOM42",
			MessageId: fmt.Sprintf("m%d", i),
			Username:  "alice",
			Message:   fmt.Sprintf("message %d", i),
			Timestamp: int64(i),
		})
		require.NoError(t, err)
	}

	messages, err := r.GetChatMessages(ctx, "ROOM42")
	require.NoError(t, err)
	require.Len(t, messages, messageHistoryLimit)
	assert.Equal(t, "m20", messages[0].Id, "oldest overflow must be dropped")
	assert.Equal(t, fmt.Sprintf("m%d", messageHistoryLimit+19), messages[len(messages)-1].Id)
}

func TestSessionLifecycle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	err := r.SetCreateRoomSession(ctx, &room.SetCreateRoomSessionParams{
		ConnectToken: "token1",
		Username:     "alice",
		ContentType:  "show",
		ContentId:    "show-1",
		EpisodeId:    "ep-1",
	})
	require.NoError(t, err)

	session, err := r.GetCreateRoomSession(ctx, "token1")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, "show", session.ContentType)
	assert.Equal(t, "ep-1", session.EpisodeId)

	require.NoError(t, r.RemoveCreateRoomSession(ctx, "token1"))

	_, err = r.GetCreateRoomSession(ctx, "token1")
	assert.ErrorIs(t, err, room.ErrSessionNotFound)

	err = r.SetJoinRoomSession(ctx, &room.SetJoinRoomSessionParams{
		ConnectToken: "token2",
		Username:     "bob",
		RoomCode:     "ROOM42",
	})
	require.NoError(t, err)

	joinSession, err := r.GetJoinRoomSession(ctx, "token2")
	require.NoError(t, err)
	assert.Equal(t, "ROOM42", joinSession.RoomCode)

	// session kinds do not cross
	_, err = r.GetJoinRoomSession(ctx, "token1")
	assert.ErrorIs(t, err, room.ErrSessionNotFound)
}

func TestUnmuteRequests(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	err := r.SetUnmuteRequest(ctx, &room.SetUnmuteRequestParams{
		RoomCode:    "ROOM42",
		TargetId:    "guest",
		RequesterId: "host",
	})
	require.NoError(t, err)

	requesterId, err := r.GetUnmuteRequest(ctx, "ROOM42", "guest")
	require.NoError(t, err)
	assert.Equal(t, "host", requesterId)

	err = r.RemoveUnmuteRequest(ctx, &room.RemoveUnmuteRequestParams{
		RoomCode: "ROOM42",
		TargetId: "guest",
	})
	require.NoError(t, err)

	_, err = r.GetUnmuteRequest(ctx, "ROOM42", "guest")
	assert.ErrorIs(t, err, room.ErrUnmuteRequestNotFound)

	require.NoError(t, r.SetUnmuteRequest(ctx, &room.SetUnmuteRequestParams{
		RoomCode:    "ROOM42",
		TargetId:    "guest2",
		RequesterId: "host",
	}))
	require.NoError(t, r.ClearUnmuteRequests(ctx, "ROOM42"))

	_, err = r.GetUnmuteRequest(ctx, "ROOM42", "guest2")
	assert.ErrorIs(t, err, room.ErrUnmuteRequestNotFound)
}

func TestRemoveRoomDeletesState(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetRoom(ctx, &room.SetRoomParams{
		RoomCode:    "ROOM42",
		ContentType: "show",
		ContentId:   "show-1",
		CreatedAt:   123,
	}))
	require.NoError(t, r.SetPlayer(ctx, &room.SetPlayerParams{
		RoomCode:     "ROOM42",
		PlaybackRate: 1.0,
	}))
	require.NoError(t, r.AddChatMessage(ctx, &room.AddChatMessageParams{
		RoomCode:  "ROOM42",
		MessageId: "m1",
		Username:  "alice",
		Message:   "hi",
	}))

	exists, err := r.IsRoomExists(ctx, "ROOM42")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.RemoveRoom(ctx, "ROOM42"))

	exists, err = r.IsRoomExists(ctx, "ROOM42")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = r.GetPlayer(ctx, "ROOM42")
	assert.ErrorIs(t, err, room.ErrPlayerNotFound)

	messages, err := r.GetChatMessages(ctx, "ROOM42")
	require.NoError(t, err)
	assert.Empty(t, messages)
}
