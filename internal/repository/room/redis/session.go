package redis

import (
	"context"
	"fmt"

	"github.com/streamvault/server/internal/repository/room"
)

func (r repo) getCreateRoomSessionKey(connectToken string) string {
	return "create-room-session:" + connectToken
}

func (r repo) getJoinRoomSessionKey(connectToken string) string {
	return "join-room-session:" + connectToken
}

func (r repo) SetCreateRoomSession(ctx context.Context, params *room.SetCreateRoomSessionParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	session := room.CreateRoomSession{
		Username:    params.Username,
		ContentType: params.ContentType,
		ContentId:   params.ContentId,
		EpisodeId:   params.EpisodeId,
	}
	sessionKey := r.getCreateRoomSessionKey(params.ConnectToken)
	pipe.HSet(ctx, sessionKey, session)
	pipe.Expire(ctx, sessionKey, sessionExpireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set create room session: %w", err)
	}

	return nil
}

func (r repo) GetCreateRoomSession(ctx context.Context, connectToken string) (room.CreateRoomSession, error) {
	cmd := r.rc.HGetAll(ctx, r.getCreateRoomSessionKey(connectToken))
	if err := cmd.Err(); err != nil {
		return room.CreateRoomSession{}, fmt.Errorf("failed to get create room session: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.CreateRoomSession{}, room.ErrSessionNotFound
	}

	var session room.CreateRoomSession
	if err := cmd.Scan(&session); err != nil {
		return room.CreateRoomSession{}, fmt.Errorf("failed to scan create room session: %w", err)
	}

	return session, nil
}

func (r repo) RemoveCreateRoomSession(ctx context.Context, connectToken string) error {
	return r.rc.Del(ctx, r.getCreateRoomSessionKey(connectToken)).Err()
}

func (r repo) SetJoinRoomSession(ctx context.Context, params *room.SetJoinRoomSessionParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	session := room.JoinRoomSession{
		Username: params.Username,
		RoomCode: params.RoomCode,
	}
	sessionKey := r.getJoinRoomSessionKey(params.ConnectToken)
	pipe.HSet(ctx, sessionKey, session)
	pipe.Expire(ctx, sessionKey, sessionExpireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set join room session: %w", err)
	}

	return nil
}

func (r repo) GetJoinRoomSession(ctx context.Context, connectToken string) (room.JoinRoomSession, error) {
	cmd := r.rc.HGetAll(ctx, r.getJoinRoomSessionKey(connectToken))
	if err := cmd.Err(); err != nil {
		return room.JoinRoomSession{}, fmt.Errorf("failed to get join room session: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.JoinRoomSession{}, room.ErrSessionNotFound
	}

	var session room.JoinRoomSession
	if err := cmd.Scan(&session); err != nil {
		return room.JoinRoomSession{}, fmt.Errorf("failed to scan join room session: %w", err)
	}

	return session, nil
}

func (r repo) RemoveJoinRoomSession(ctx context.Context, connectToken string) error {
	return r.rc.Del(ctx, r.getJoinRoomSessionKey(connectToken)).Err()
}
