package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamvault/server/internal/repository/room"
	"github.com/streamvault/server/pkg/wsrouter"
)

func defaultPlayer() Player {
	return Player{
		IsPlaying:     false,
		CurrentTime:   0,
		PlaybackRate:  1.0,
		SubtitleIndex: -1,
		UpdatedAt:     nowUnixMilli(),
	}
}

// estimatePosition extrapolates the playback position from the last anchored
// state. While paused the anchored position is exact.
func estimatePosition(player room.Player, nowMs int64) float64 {
	if !player.IsPlaying {
		return player.CurrentTime
	}

	elapsed := float64(nowMs-player.UpdatedAt) / 1000
	if elapsed < 0 {
		elapsed = 0
	}

	return player.CurrentTime + elapsed*player.PlaybackRate
}

type PlayerStateResponse struct {
	Player Player
	Conns  []*wsrouter.Conn
}

// applyTransportChange runs a host-only transport mutation under the room
// lock. mutate receives the stored player and returns the desired
// {isPlaying, currentTime, playbackRate}.
func (s *service) applyTransportChange(ctx context.Context, roomCode, senderId string, mutate func(player room.Player) (bool, float64, float64)) (PlayerStateResponse, error) {
	unlock := s.lockRoom(roomCode)
	defer unlock()

	if err := s.checkIfParticipantHost(ctx, roomCode, senderId); err != nil {
		return PlayerStateResponse{}, err
	}

	player, err := s.roomRepo.GetPlayer(ctx, roomCode)
	if err != nil {
		return PlayerStateResponse{}, fmt.Errorf("failed to get player: %w", err)
	}

	isPlaying, currentTime, playbackRate := mutate(player)

	updatedAt := nowUnixMilli()
	if err := s.roomRepo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomCode:     roomCode,
		IsPlaying:    isPlaying,
		CurrentTime:  currentTime,
		PlaybackRate: playbackRate,
		UpdatedAt:    updatedAt,
	}); err != nil {
		return PlayerStateResponse{}, fmt.Errorf("failed to update player state: %w", err)
	}

	conns, err := s.getConnsByRoomCode(ctx, roomCode)
	if err != nil {
		return PlayerStateResponse{}, err
	}

	return PlayerStateResponse{
		Player: Player{
			IsPlaying:     isPlaying,
			CurrentTime:   currentTime,
			PlaybackRate:  playbackRate,
			SubtitleIndex: player.SubtitleIndex,
			UpdatedAt:     updatedAt,
		},
		Conns: conns,
	}, nil
}

type PlayVideoParams struct {
	AtTime   float64
	SenderId string
	RoomCode string
}

func (s *service) PlayVideo(ctx context.Context, params *PlayVideoParams) (PlayerStateResponse, error) {
	return s.applyTransportChange(ctx, params.RoomCode, params.SenderId, func(player room.Player) (bool, float64, float64) {
		return true, params.AtTime, player.PlaybackRate
	})
}

type PauseVideoParams struct {
	AtTime   float64
	SenderId string
	RoomCode string
}

func (s *service) PauseVideo(ctx context.Context, params *PauseVideoParams) (PlayerStateResponse, error) {
	return s.applyTransportChange(ctx, params.RoomCode, params.SenderId, func(player room.Player) (bool, float64, float64) {
		return false, params.AtTime, player.PlaybackRate
	})
}

type SeekVideoParams struct {
	ToTime   float64
	SenderId string
	RoomCode string
}

// SeekVideo moves the position regardless of play state.
func (s *service) SeekVideo(ctx context.Context, params *SeekVideoParams) (PlayerStateResponse, error) {
	return s.applyTransportChange(ctx, params.RoomCode, params.SenderId, func(player room.Player) (bool, float64, float64) {
		return player.IsPlaying, params.ToTime, player.PlaybackRate
	})
}

type SetPlaybackRateParams struct {
	PlaybackRate float64
	SenderId     string
	RoomCode     string
}

// SetPlaybackRate re-anchors the position before switching rate, otherwise
// extrapolation from the old anchor would drift by the rate delta.
func (s *service) SetPlaybackRate(ctx context.Context, params *SetPlaybackRateParams) (PlayerStateResponse, error) {
	return s.applyTransportChange(ctx, params.RoomCode, params.SenderId, func(player room.Player) (bool, float64, float64) {
		return player.IsPlaying, estimatePosition(player, nowUnixMilli()), params.PlaybackRate
	})
}

type SetSubtitleParams struct {
	SubtitleIndex int
	SenderId      string
	RoomCode      string
}

type SetSubtitleResponse struct {
	SubtitleIndex int
	Conns         []*wsrouter.Conn
}

// SetSubtitle is decoupled from transport state so that subtitle switches
// never trigger a seek on the clients.
func (s *service) SetSubtitle(ctx context.Context, params *SetSubtitleParams) (SetSubtitleResponse, error) {
	unlock := s.lockRoom(params.RoomCode)
	defer unlock()

	if err := s.checkIfParticipantHost(ctx, params.RoomCode, params.SenderId); err != nil {
		return SetSubtitleResponse{}, err
	}

	if err := s.roomRepo.UpdatePlayerSubtitle(ctx, params.RoomCode, params.SubtitleIndex); err != nil {
		return SetSubtitleResponse{}, fmt.Errorf("failed to update player subtitle: %w", err)
	}

	conns, err := s.getConnsByRoomCode(ctx, params.RoomCode)
	if err != nil {
		return SetSubtitleResponse{}, err
	}

	return SetSubtitleResponse{
		SubtitleIndex: params.SubtitleIndex,
		Conns:         conns,
	}, nil
}

type GetPlayerSyncParams struct {
	RoomCode string
}

// GetPlayerSync returns the current state with the position extrapolated to
// now, used for keepalive-triggered reconciliation pushes.
func (s *service) GetPlayerSync(ctx context.Context, params *GetPlayerSyncParams) (Player, error) {
	player, err := s.roomRepo.GetPlayer(ctx, params.RoomCode)
	if err != nil {
		if errors.Is(err, room.ErrPlayerNotFound) {
			return Player{}, ErrRoomNotFound
		}

		return Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	nowMs := nowUnixMilli()

	return Player{
		IsPlaying:     player.IsPlaying,
		CurrentTime:   estimatePosition(player, nowMs),
		PlaybackRate:  player.PlaybackRate,
		SubtitleIndex: player.SubtitleIndex,
		UpdatedAt:     nowMs,
	}, nil
}

type ChangeContentParams struct {
	ContentType string
	ContentId   string
	EpisodeId   string
	SenderId    string
	RoomCode    string
}

type ChangeContentResponse struct {
	Content Content
	Player  Player
	Conns   []*wsrouter.Conn
}

// ChangeContent swaps what the room is watching and resets the player, so
// clients switch video source from a known paused state.
func (s *service) ChangeContent(ctx context.Context, params *ChangeContentParams) (ChangeContentResponse, error) {
	unlock := s.lockRoom(params.RoomCode)
	defer unlock()

	if err := s.checkIfParticipantHost(ctx, params.RoomCode, params.SenderId); err != nil {
		return ChangeContentResponse{}, err
	}

	content, err := s.resolveContent(ctx, params.ContentType, params.ContentId, params.EpisodeId)
	if err != nil {
		return ChangeContentResponse{}, err
	}

	if err := s.roomRepo.UpdateRoomContent(ctx, &room.UpdateRoomContentParams{
		RoomCode:    params.RoomCode,
		ContentType: params.ContentType,
		ContentId:   params.ContentId,
		EpisodeId:   params.EpisodeId,
	}); err != nil {
		return ChangeContentResponse{}, fmt.Errorf("failed to update room content: %w", err)
	}

	player := defaultPlayer()
	if err := s.roomRepo.SetPlayer(ctx, &room.SetPlayerParams{
		RoomCode:      params.RoomCode,
		IsPlaying:     player.IsPlaying,
		CurrentTime:   player.CurrentTime,
		PlaybackRate:  player.PlaybackRate,
		SubtitleIndex: player.SubtitleIndex,
		UpdatedAt:     player.UpdatedAt,
	}); err != nil {
		return ChangeContentResponse{}, fmt.Errorf("failed to reset player: %w", err)
	}

	conns, err := s.getConnsByRoomCode(ctx, params.RoomCode)
	if err != nil {
		return ChangeContentResponse{}, err
	}

	s.logger.InfoContext(ctx, "content changed", "room_code", params.RoomCode, "content_id", params.ContentId)

	return ChangeContentResponse{
		Content: content,
		Player:  player,
		Conns:   conns,
	}, nil
}
