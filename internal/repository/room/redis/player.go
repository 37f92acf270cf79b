package redis

import (
	"context"
	"fmt"

	"github.com/streamvault/server/internal/repository/room"
)

func (r repo) getPlayerKey(roomCode string) string {
	return "room:" + roomCode + ":player"
}

func (r repo) SetPlayer(ctx context.Context, params *room.SetPlayerParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	player := room.Player{
		IsPlaying:     params.IsPlaying,
		CurrentTime:   params.CurrentTime,
		PlaybackRate:  params.PlaybackRate,
		SubtitleIndex: params.SubtitleIndex,
		UpdatedAt:     params.UpdatedAt,
	}
	playerKey := r.getPlayerKey(params.RoomCode)
	pipe.HSet(ctx, playerKey, player)
	pipe.Expire(ctx, playerKey, roomExpireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (r repo) GetPlayer(ctx context.Context, roomCode string) (room.Player, error) {
	cmd := r.rc.HGetAll(ctx, r.getPlayerKey(roomCode))
	if err := cmd.Err(); err != nil {
		return room.Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.Player{}, room.ErrPlayerNotFound
	}

	var player room.Player
	if err := cmd.Scan(&player); err != nil {
		return room.Player{}, fmt.Errorf("failed to scan player: %w", err)
	}

	return player, nil
}

func (r repo) UpdatePlayerState(ctx context.Context, params *room.UpdatePlayerStateParams) error {
	playerKey := r.getPlayerKey(params.RoomCode)
	cmd := r.rc.Exists(ctx, playerKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return room.ErrPlayerNotFound
	}

	if err := r.rc.HSet(ctx, playerKey,
		"is_playing", params.IsPlaying,
		"current_time", params.CurrentTime,
		"playback_rate", params.PlaybackRate,
		"updated_at", params.UpdatedAt,
	).Err(); err != nil {
		return fmt.Errorf("failed to update player state: %w", err)
	}

	return nil
}

func (r repo) UpdatePlayerSubtitle(ctx context.Context, roomCode string, subtitleIndex int) error {
	playerKey := r.getPlayerKey(roomCode)
	cmd := r.rc.Exists(ctx, playerKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return room.ErrPlayerNotFound
	}

	if err := r.rc.HSet(ctx, playerKey, "subtitle_index", subtitleIndex).Err(); err != nil {
		return fmt.Errorf("failed to update player subtitle: %w", err)
	}

	return nil
}
