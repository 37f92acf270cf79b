package redis

import (
	"context"
	"fmt"

	"github.com/streamvault/server/internal/repository/room"
)

func (r repo) getParticipantKey(roomCode, participantId string) string {
	return "room:" + roomCode + ":participant:" + participantId
}

func (r repo) getParticipantListKey(roomCode string) string {
	return "room:" + roomCode + ":participantlist"
}

func (r repo) SetParticipant(ctx context.Context, params *room.SetParticipantParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	participant := room.Participant{
		Username:    params.Username,
		IsHost:      params.IsHost,
		IsMuted:     params.IsMuted,
		IsHostMuted: params.IsHostMuted,
		IsSpeaking:  params.IsSpeaking,
	}
	participantKey := r.getParticipantKey(params.RoomCode, params.ParticipantId)
	pipe.HSet(ctx, participantKey, participant)
	pipe.Expire(ctx, participantKey, roomExpireDuration)

	participantListKey := r.getParticipantListKey(params.RoomCode)
	r.addWithIncrement(ctx, pipe, participantListKey, params.ParticipantId)
	pipe.Expire(ctx, participantListKey, roomExpireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set participant: %w", err)
	}

	return nil
}

func (r repo) GetParticipant(ctx context.Context, params *room.GetParticipantParams) (room.Participant, error) {
	cmd := r.rc.HGetAll(ctx, r.getParticipantKey(params.RoomCode, params.ParticipantId))
	if err := cmd.Err(); err != nil {
		return room.Participant{}, fmt.Errorf("failed to get participant: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.Participant{}, room.ErrParticipantNotFound
	}

	var participant room.Participant
	if err := cmd.Scan(&participant); err != nil {
		return room.Participant{}, fmt.Errorf("failed to scan participant: %w", err)
	}

	return participant, nil
}

// GetParticipantIds returns ids in join order, so the first element is the
// longest-tenured participant.
func (r repo) GetParticipantIds(ctx context.Context, roomCode string) ([]string, error) {
	ids, err := r.rc.ZRange(ctx, r.getParticipantListKey(roomCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get participant ids: %w", err)
	}

	return ids, nil
}

func (r repo) RemoveParticipant(ctx context.Context, params *room.RemoveParticipantParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	pipe.Del(ctx, r.getParticipantKey(params.RoomCode, params.ParticipantId))
	pipe.ZRem(ctx, r.getParticipantListKey(params.RoomCode), params.ParticipantId)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	return nil
}

func (r repo) updateParticipantField(ctx context.Context, roomCode, participantId, field string, value any) error {
	participantKey := r.getParticipantKey(roomCode, participantId)
	cmd := r.rc.Exists(ctx, participantKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return room.ErrParticipantNotFound
	}

	return r.rc.HSet(ctx, participantKey, field, value).Err()
}

func (r repo) UpdateParticipantIsHost(ctx context.Context, roomCode, participantId string, isHost bool) error {
	return r.updateParticipantField(ctx, roomCode, participantId, "is_host", isHost)
}

func (r repo) UpdateParticipantIsMuted(ctx context.Context, roomCode, participantId string, isMuted bool) error {
	return r.updateParticipantField(ctx, roomCode, participantId, "is_muted", isMuted)
}

func (r repo) UpdateParticipantIsHostMuted(ctx context.Context, roomCode, participantId string, isHostMuted bool) error {
	return r.updateParticipantField(ctx, roomCode, participantId, "is_host_muted", isHostMuted)
}

func (r repo) UpdateParticipantIsSpeaking(ctx context.Context, roomCode, participantId string, isSpeaking bool) error {
	return r.updateParticipantField(ctx, roomCode, participantId, "is_speaking", isSpeaking)
}
