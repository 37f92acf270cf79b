package room

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/streamvault/server/internal/repository/room"
	"github.com/streamvault/server/pkg/wsrouter"
)

type SendMessageParams struct {
	Message  string
	SenderId string
	RoomCode string
}

type SendMessageResponse struct {
	Message ChatMessage
	Conns   []*wsrouter.Conn
}

// SendMessage appends to the room log with a server-assigned id and
// timestamp. Ordering is the per-room serialization order. The text passes
// through untouched, attachment micro-formats are a client concern.
func (s *service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	unlock := s.lockRoom(params.RoomCode)
	defer unlock()

	participant, err := s.getParticipant(ctx, params.RoomCode, params.SenderId)
	if err != nil {
		return SendMessageResponse{}, err
	}

	message := ChatMessage{
		Id:        uuid.NewString(),
		Username:  participant.Username,
		Message:   params.Message,
		Timestamp: nowUnixMilli(),
	}

	if err := s.roomRepo.AddChatMessage(ctx, &room.AddChatMessageParams{
		RoomCode:  params.RoomCode,
		MessageId: message.Id,
		Username:  message.Username,
		Message:   message.Message,
		Timestamp: message.Timestamp,
	}); err != nil {
		return SendMessageResponse{}, fmt.Errorf("failed to add chat message: %w", err)
	}

	conns, err := s.getConnsByRoomCode(ctx, params.RoomCode)
	if err != nil {
		return SendMessageResponse{}, err
	}

	return SendMessageResponse{
		Message: message,
		Conns:   conns,
	}, nil
}
