package room

import (
	"context"

	"github.com/google/uuid"
	"github.com/streamvault/server/pkg/wsrouter"
	"golang.org/x/exp/slices"
)

// reactions the client animates; anything else is dropped without error so
// clients on newer allow-lists do not get kicked into an error state
var allowedReactions = []string{"❤️", "😂", "😮", "😢", "👏", "🔥", "👍", "🎉"}

type SendReactionParams struct {
	Emoji    string
	SenderId string
	RoomCode string
}

type SendReactionResponse struct {
	// nil when the emoji was dropped
	Reaction *Reaction
	Conns    []*wsrouter.Conn
}

// SendReaction is broadcast-only, reactions are never persisted.
func (s *service) SendReaction(ctx context.Context, params *SendReactionParams) (SendReactionResponse, error) {
	if _, err := s.getParticipant(ctx, params.RoomCode, params.SenderId); err != nil {
		return SendReactionResponse{}, err
	}

	if !slices.Contains(allowedReactions, params.Emoji) {
		s.logger.DebugContext(ctx, "reaction dropped", "emoji", params.Emoji)
		return SendReactionResponse{}, nil
	}

	conns, err := s.getConnsByRoomCode(ctx, params.RoomCode)
	if err != nil {
		return SendReactionResponse{}, err
	}

	return SendReactionResponse{
		Reaction: &Reaction{
			Id:    uuid.NewString(),
			Emoji: params.Emoji,
		},
		Conns: conns,
	}, nil
}
