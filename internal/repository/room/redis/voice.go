package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/streamvault/server/internal/repository/room"
)

func (r repo) getUnmuteRequestsKey(roomCode string) string {
	return "room:" + roomCode + ":unmute-requests"
}

func (r repo) SetUnmuteRequest(ctx context.Context, params *room.SetUnmuteRequestParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	requestsKey := r.getUnmuteRequestsKey(params.RoomCode)
	pipe.HSet(ctx, requestsKey, params.TargetId, params.RequesterId)
	pipe.Expire(ctx, requestsKey, roomExpireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set unmute request: %w", err)
	}

	return nil
}

func (r repo) GetUnmuteRequest(ctx context.Context, roomCode, targetId string) (string, error) {
	requesterId, err := r.rc.HGet(ctx, r.getUnmuteRequestsKey(roomCode), targetId).Result()
	if err != nil {
		if err == redis.Nil {
			return "", room.ErrUnmuteRequestNotFound
		}

		return "", fmt.Errorf("failed to get unmute request: %w", err)
	}

	return requesterId, nil
}

func (r repo) RemoveUnmuteRequest(ctx context.Context, params *room.RemoveUnmuteRequestParams) error {
	return r.rc.HDel(ctx, r.getUnmuteRequestsKey(params.RoomCode), params.TargetId).Err()
}

func (r repo) ClearUnmuteRequests(ctx context.Context, roomCode string) error {
	return r.rc.Del(ctx, r.getUnmuteRequestsKey(roomCode)).Err()
}
