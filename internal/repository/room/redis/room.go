package redis

import (
	"context"
	"fmt"

	"github.com/streamvault/server/internal/repository/room"
)

func (r repo) getRoomKey(roomCode string) string {
	return "room:" + roomCode
}

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	roomModel := room.Room{
		ContentType: params.ContentType,
		ContentId:   params.ContentId,
		EpisodeId:   params.EpisodeId,
		CreatedAt:   params.CreatedAt,
	}
	roomKey := r.getRoomKey(params.RoomCode)
	pipe.HSet(ctx, roomKey, roomModel)
	pipe.Expire(ctx, roomKey, roomExpireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomCode string) (room.Room, error) {
	cmd := r.rc.HGetAll(ctx, r.getRoomKey(roomCode))
	if err := cmd.Err(); err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	var roomModel room.Room
	if err := cmd.Scan(&roomModel); err != nil {
		return room.Room{}, fmt.Errorf("failed to scan room: %w", err)
	}

	return roomModel, nil
}

func (r repo) IsRoomExists(ctx context.Context, roomCode string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getRoomKey(roomCode)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}

	return res > 0, nil
}

func (r repo) UpdateRoomContent(ctx context.Context, params *room.UpdateRoomContentParams) error {
	roomKey := r.getRoomKey(params.RoomCode)
	cmd := r.rc.Exists(ctx, roomKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, roomKey,
		"content_type", params.ContentType,
		"content_id", params.ContentId,
		"episode_id", params.EpisodeId,
	).Err(); err != nil {
		return fmt.Errorf("failed to update room content: %w", err)
	}

	return nil
}

// RemoveRoom deletes every key belonging to the room. Participant hashes are
// removed by the caller while it still knows their ids.
func (r repo) RemoveRoom(ctx context.Context, roomCode string) error {
	r.logger.DebugContext(ctx, "called", "room_code", roomCode)
	pipe := r.rc.TxPipeline()

	pipe.Del(ctx, r.getRoomKey(roomCode))
	pipe.Del(ctx, r.getParticipantListKey(roomCode))
	pipe.Del(ctx, r.getPlayerKey(roomCode))
	pipe.Del(ctx, r.getMessagesKey(roomCode))
	pipe.Del(ctx, r.getUnmuteRequestsKey(roomCode))

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	return nil
}
