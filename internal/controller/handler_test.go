package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/streamvault/server/internal/service/room"
	"github.com/streamvault/server/pkg/wsrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderingRoomService stamps every message with a sequence number taken under
// its own lock, so the order messages were processed in is observable on the
// wire.
type orderingRoomService struct {
	iRoomService

	mu     sync.Mutex
	seq    int64
	nextId int
	conns  []*wsrouter.Conn
}

func (s *orderingRoomService) GetJoinSessionRoomCode(ctx context.Context, connectToken string) (string, error) {
	return "ROOM42", nil
}

func (s *orderingRoomService) JoinRoom(ctx context.Context, params *room.JoinRoomParams) (room.JoinRoomResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	others := make([]*wsrouter.Conn, len(s.conns))
	copy(others, s.conns)
	s.conns = append(s.conns, params.Conn)
	s.nextId++

	return room.JoinRoomResponse{
		RoomCode:          "ROOM42",
		JoinedParticipant: room.Participant{Id: fmt.Sprintf("p%d", s.nextId)},
		Player:            room.Player{PlaybackRate: 1.0, SubtitleIndex: -1},
		OtherConns:        others,
	}, nil
}

func (s *orderingRoomService) SendMessage(ctx context.Context, params *room.SendMessageParams) (room.SendMessageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	conns := make([]*wsrouter.Conn, len(s.conns))
	copy(conns, s.conns)

	return room.SendMessageResponse{
		Message: room.ChatMessage{
			Id:        fmt.Sprintf("m%d", s.seq),
			Message:   params.Message,
			Timestamp: s.seq,
		},
		Conns: conns,
	}, nil
}

func (s *orderingRoomService) DisconnectParticipant(ctx context.Context, params *room.DisconnectParticipantParams) (room.DisconnectParticipantResponse, error) {
	return room.DisconnectParticipantResponse{IsRoomDestroyed: true}, nil
}

func dialTestRoom(t *testing.T, srvURL string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srvURL, "http") + "/api/v1/ws/room/join?connect-token=token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var joined Output
	require.NoError(t, conn.ReadJSON(&joined))
	require.Equal(t, "joinedRoom", joined.Type)

	return conn
}

// Two participants hammer the chat at once. Every receiver must see the
// messages in the order the room processed them, never a later message before
// an earlier one.
func TestBroadcastsFollowProcessingOrder(t *testing.T) {
	svc := &orderingRoomService{}
	srv := httptest.NewServer(NewController(svc, slog.Default()).GetMux())
	t.Cleanup(srv.Close)

	conn1 := dialTestRoom(t, srv.URL)
	conn2 := dialTestRoom(t, srv.URL)

	const perSender = 25

	var wg sync.WaitGroup
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				assert.NoError(t, conn.WriteJSON(map[string]any{
					"type":    "sendMessage",
					"payload": map[string]string{"message": fmt.Sprintf("msg %d", i)},
				}))
			}
		}(conn)
	}

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		var lastSeq int64
		for received := 0; received < 2*perSender; {
			var out Output
			require.NoError(t, conn.ReadJSON(&out))

			// the first participant also sees the second one join
			if out.Type == "participantJoined" {
				continue
			}
			require.Equal(t, "chatMessage", out.Type)
			received++

			raw, err := json.Marshal(out.Payload)
			require.NoError(t, err)
			var msg room.ChatMessage
			require.NoError(t, json.Unmarshal(raw, &msg))

			assert.Greater(t, msg.Timestamp, lastSeq, "message delivered out of processing order")
			lastSeq = msg.Timestamp
		}
	}
	wg.Wait()
}
