package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/streamvault/server/internal/service/room"
	"github.com/streamvault/server/pkg/ctxlogger"
	"github.com/streamvault/server/pkg/wsrouter"
)

type joinedRoomOutput struct {
	RoomCode      string             `json:"room_code"`
	ParticipantId string             `json:"participant_id"`
	Participants  []room.Participant `json:"participants"`
	Content       room.Content       `json:"content"`
	Player        room.Player        `json:"player"`
	Messages      []room.ChatMessage `json:"messages"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	connectToken := r.URL.Query().Get("connect-token")
	if connectToken == "" {
		c.writeJSON(w, http.StatusBadRequest, envelope{"error": "connect-token is required"})
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}
	conn := wsrouter.NewConn(ws)

	// the room code is not known to anyone else until the snapshot below is
	// delivered, so creation needs no room lock
	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		ConnectToken: connectToken,
		Conn:         conn,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to create room", "error", err)
		c.writeToConn(r.Context(), conn, &Output{Type: "error", Payload: map[string]string{
			"message": "invalid connect token",
		}})
		conn.Close()
		return
	}

	ctx := context.WithValue(r.Context(), roomCodeCtxKey, resp.RoomCode)
	ctx = context.WithValue(ctx, participantIdCtxKey, resp.ParticipantId)
	ctx = ctxlogger.AppendCtx(ctx,
		slog.String("room_code", resp.RoomCode),
		slog.String("participant_id", resp.ParticipantId),
	)

	c.writeToConn(ctx, conn, &Output{Type: "joinedRoom", Payload: joinedRoomOutput{
		RoomCode:      resp.RoomCode,
		ParticipantId: resp.ParticipantId,
		Participants:  []room.Participant{resp.Creator},
		Content:       resp.Content,
		Player:        resp.Player,
		Messages:      []room.ChatMessage{},
	}})

	defer c.disconnect(ctx, resp.RoomCode, resp.ParticipantId)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	connectToken := r.URL.Query().Get("connect-token")
	if connectToken == "" {
		c.writeJSON(w, http.StatusBadRequest, envelope{"error": "connect-token is required"})
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}
	conn := wsrouter.NewConn(ws)

	roomCode, err := c.roomService.GetJoinSessionRoomCode(r.Context(), connectToken)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to resolve join session", "error", err)
		c.writeToConn(r.Context(), conn, &Output{Type: "error", Payload: map[string]string{
			"message": "invalid connect token",
		}})
		conn.Close()
		return
	}

	// hold the room lock from the join mutation through the snapshot write,
	// so no concurrent broadcast can slip in between
	unlock := c.lockRoom(roomCode)

	resp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		ConnectToken: connectToken,
		Conn:         conn,
	})
	if err != nil {
		unlock()
		c.logger.DebugContext(r.Context(), "failed to join room", "error", err)

		message := "invalid connect token"
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			message = "room not found"
		case errors.Is(err, room.ErrParticipantLimitReached):
			message = "room is full"
		}
		c.writeToConn(r.Context(), conn, &Output{Type: "error", Payload: map[string]string{
			"message": message,
		}})
		conn.Close()
		return
	}

	ctx := context.WithValue(r.Context(), roomCodeCtxKey, resp.RoomCode)
	ctx = context.WithValue(ctx, participantIdCtxKey, resp.JoinedParticipant.Id)
	ctx = ctxlogger.AppendCtx(ctx,
		slog.String("room_code", resp.RoomCode),
		slog.String("participant_id", resp.JoinedParticipant.Id),
	)

	c.broadcast(ctx, resp.OtherConns, &Output{Type: "participantJoined", Payload: map[string]any{
		"participant":  resp.JoinedParticipant,
		"participants": resp.Participants,
	}})

	c.writeToConn(ctx, conn, &Output{Type: "joinedRoom", Payload: joinedRoomOutput{
		RoomCode:      resp.RoomCode,
		ParticipantId: resp.JoinedParticipant.Id,
		Participants:  resp.Participants,
		Content:       resp.Content,
		Player:        resp.Player,
		Messages:      resp.Messages,
	}})

	unlock()

	defer c.disconnect(ctx, resp.RoomCode, resp.JoinedParticipant.Id)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

// disconnect runs when a read loop ends, whatever the reason. It is a no-op
// when leaveRoom already tore the participant down.
func (c controller) disconnect(ctx context.Context, roomCode, participantId string) {
	unlock := c.lockRoom(roomCode)
	defer unlock()

	resp, err := c.roomService.DisconnectParticipant(ctx, &room.DisconnectParticipantParams{
		ParticipantId: participantId,
		RoomCode:      roomCode,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "participant already disconnected", "error", err)
		return
	}

	if resp.IsRoomDestroyed {
		c.roomLocks.Delete(roomCode)
		return
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "participantLeft", Payload: map[string]any{
		"participant_id": participantId,
		"participants":   resp.Participants,
	}})

	if resp.PromotedHost != nil {
		c.broadcast(ctx, resp.Conns, &Output{Type: "hostChanged", Payload: map[string]any{
			"participant":  *resp.PromotedHost,
			"participants": resp.Participants,
		}})
		c.writeToConn(ctx, resp.PromotedConn, &Output{Type: "isHostUpdated", Payload: map[string]bool{
			"is_host": true,
		}})
	}
}
