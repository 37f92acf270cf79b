package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streamvault/server/internal/repository/room"
)

// message history kept per room for the join snapshot
const messageHistoryLimit = 100

func (r repo) getMessagesKey(roomCode string) string {
	return "room:" + roomCode + ":messages"
}

func (r repo) AddChatMessage(ctx context.Context, params *room.AddChatMessageParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	message := room.ChatMessage{
		Id:        params.MessageId,
		Username:  params.Username,
		Message:   params.Message,
		Timestamp: params.Timestamp,
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}

	pipe := r.rc.TxPipeline()

	messagesKey := r.getMessagesKey(params.RoomCode)
	pipe.RPush(ctx, messagesKey, payload)
	pipe.LTrim(ctx, messagesKey, -messageHistoryLimit, -1)
	pipe.Expire(ctx, messagesKey, roomExpireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to add chat message: %w", err)
	}

	return nil
}

func (r repo) GetChatMessages(ctx context.Context, roomCode string) ([]room.ChatMessage, error) {
	values, err := r.rc.LRange(ctx, r.getMessagesKey(roomCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}

	messages := make([]room.ChatMessage, 0, len(values))
	for _, value := range values {
		var message room.ChatMessage
		if err := json.Unmarshal([]byte(value), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}

		messages = append(messages, message)
	}

	return messages, nil
}
