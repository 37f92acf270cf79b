package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streamvault/server/internal/service/room"
	"github.com/streamvault/server/pkg/wsrouter"
)

type emptyInput struct{}

func (c controller) handleAlive(ctx context.Context, conn *wsrouter.Conn, _ emptyInput) error {
	player, err := c.roomService.GetPlayerSync(ctx, &room.GetPlayerSyncParams{
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to get player sync: %w", err)
	}

	c.writeToConn(ctx, conn, &Output{Type: "video:sync", Payload: player})

	return nil
}

type sendMessageInput struct {
	Message string `json:"message"`
}

func (c controller) handleSendMessage(ctx context.Context, conn *wsrouter.Conn, input sendMessageInput) error {
	resp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		Message:  input.Message,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "chatMessage", Payload: resp.Message})

	return nil
}

type sendReactionInput struct {
	Emoji string `json:"emoji"`
}

func (c controller) handleSendReaction(ctx context.Context, conn *wsrouter.Conn, input sendReactionInput) error {
	resp, err := c.roomService.SendReaction(ctx, &room.SendReactionParams{
		Emoji:    input.Emoji,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to send reaction: %w", err)
	}

	// dropped reactions are not an error, there is just nothing to relay
	if resp.Reaction == nil {
		return nil
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "reaction", Payload: resp.Reaction})

	return nil
}

type videoPlayInput struct {
	Time float64 `json:"time"`
}

func (c controller) handleVideoPlay(ctx context.Context, conn *wsrouter.Conn, input videoPlayInput) error {
	resp, err := c.roomService.PlayVideo(ctx, &room.PlayVideoParams{
		AtTime:   input.Time,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to play video: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "video:sync", Payload: resp.Player})

	return nil
}

type videoPauseInput struct {
	Time float64 `json:"time"`
}

func (c controller) handleVideoPause(ctx context.Context, conn *wsrouter.Conn, input videoPauseInput) error {
	resp, err := c.roomService.PauseVideo(ctx, &room.PauseVideoParams{
		AtTime:   input.Time,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to pause video: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "video:sync", Payload: resp.Player})

	return nil
}

type videoSeekInput struct {
	Time float64 `json:"time"`
}

func (c controller) handleVideoSeek(ctx context.Context, conn *wsrouter.Conn, input videoSeekInput) error {
	resp, err := c.roomService.SeekVideo(ctx, &room.SeekVideoParams{
		ToTime:   input.Time,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to seek video: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "video:sync", Payload: resp.Player})

	return nil
}

type videoPlaybackRateInput struct {
	Rate float64 `json:"rate"`
}

func (c controller) handleVideoPlaybackRate(ctx context.Context, conn *wsrouter.Conn, input videoPlaybackRateInput) error {
	resp, err := c.roomService.SetPlaybackRate(ctx, &room.SetPlaybackRateParams{
		PlaybackRate: input.Rate,
		SenderId:     c.getParticipantIdFromCtx(ctx),
		RoomCode:     c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to set playback rate: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "video:sync", Payload: resp.Player})

	return nil
}

type videoSubtitleInput struct {
	Index int `json:"index"`
}

func (c controller) handleVideoSubtitle(ctx context.Context, conn *wsrouter.Conn, input videoSubtitleInput) error {
	resp, err := c.roomService.SetSubtitle(ctx, &room.SetSubtitleParams{
		SubtitleIndex: input.Index,
		SenderId:      c.getParticipantIdFromCtx(ctx),
		RoomCode:      c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to set subtitle: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "video:subtitle", Payload: map[string]int{
		"subtitle_index": resp.SubtitleIndex,
	}})

	return nil
}

type changeContentInput struct {
	ContentType string `json:"content_type"`
	ContentId   string `json:"content_id"`
	EpisodeId   string `json:"episode_id"`
}

func (c controller) handleChangeContent(ctx context.Context, conn *wsrouter.Conn, input changeContentInput) error {
	resp, err := c.roomService.ChangeContent(ctx, &room.ChangeContentParams{
		ContentType: input.ContentType,
		ContentId:   input.ContentId,
		EpisodeId:   input.EpisodeId,
		SenderId:    c.getParticipantIdFromCtx(ctx),
		RoomCode:    c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to change content: %w", err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "contentChanged", Payload: map[string]any{
		"content": resp.Content,
		"player":  resp.Player,
	}})

	return nil
}

type setMutedInput struct {
	Muted bool `json:"muted"`
}

func (c controller) handleSetMuted(ctx context.Context, conn *wsrouter.Conn, input setMutedInput) error {
	resp, err := c.roomService.SetMuted(ctx, &room.SetMutedParams{
		IsMuted:  input.Muted,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to set muted: %w", err)
	}

	c.broadcastParticipantUpdated(ctx, &resp)

	return nil
}

type hostMuteUserInput struct {
	TargetId string `json:"target_id"`
	Muted    bool   `json:"muted"`
}

func (c controller) handleHostMuteUser(ctx context.Context, conn *wsrouter.Conn, input hostMuteUserInput) error {
	resp, err := c.roomService.HostMuteParticipant(ctx, &room.HostMuteParticipantParams{
		TargetId: input.TargetId,
		IsMuted:  input.Muted,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to mute participant: %w", err)
	}

	if resp.UnmuteRequested {
		c.writeToConn(ctx, resp.TargetConn, &Output{Type: "voice:unmuteRequested", Payload: struct{}{}})
		return nil
	}

	c.broadcastParticipantUpdated(ctx, resp.Updated)
	c.writeToConn(ctx, resp.TargetConn, &Output{Type: "forceMuted", Payload: map[string]bool{
		"muted": true,
	}})

	return nil
}

type voiceSpeakingInput struct {
	Speaking bool `json:"speaking"`
}

func (c controller) handleVoiceSpeaking(ctx context.Context, conn *wsrouter.Conn, input voiceSpeakingInput) error {
	resp, err := c.roomService.SetSpeaking(ctx, &room.SetSpeakingParams{
		IsSpeaking: input.Speaking,
		SenderId:   c.getParticipantIdFromCtx(ctx),
		RoomCode:   c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to set speaking: %w", err)
	}

	c.broadcastParticipantUpdated(ctx, &resp)

	return nil
}

func (c controller) handleVoiceRequestUnmute(ctx context.Context, conn *wsrouter.Conn, _ emptyInput) error {
	resp, err := c.roomService.RequestUnmute(ctx, &room.RequestUnmuteParams{
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to request unmute: %w", err)
	}

	c.writeToConn(ctx, resp.HostConn, &Output{Type: "voice:requestUnmute", Payload: map[string]any{
		"participant": resp.Requester,
	}})

	return nil
}

type voiceUnmuteResponseInput struct {
	Accepted bool `json:"accepted"`
}

func (c controller) handleVoiceUnmuteResponse(ctx context.Context, conn *wsrouter.Conn, input voiceUnmuteResponseInput) error {
	resp, err := c.roomService.RespondUnmute(ctx, &room.RespondUnmuteParams{
		Accepted: input.Accepted,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to respond to unmute request: %w", err)
	}

	c.writeToConn(ctx, resp.RequesterConn, &Output{Type: "voice:unmuteResponse", Payload: map[string]bool{
		"accepted": resp.Accepted,
	}})

	if resp.Updated != nil {
		c.broadcastParticipantUpdated(ctx, resp.Updated)
	}

	return nil
}

type voiceSignalInput struct {
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

func (c controller) handleVoiceSignal(ctx context.Context, conn *wsrouter.Conn, input voiceSignalInput) error {
	resp, err := c.roomService.RelaySignal(ctx, &room.RelaySignalParams{
		TargetId: input.To,
		Data:     input.Data,
		SenderId: c.getParticipantIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to relay signal: %w", err)
	}

	c.writeToConn(ctx, resp.TargetConn, &Output{Type: "voice:signal", Payload: map[string]any{
		"from": resp.SenderId,
		"data": resp.Data,
	}})

	return nil
}

// handleLeaveRoom closes the connection; the read loop then runs the shared
// disconnect path, so explicit leave and connection loss behave identically.
func (c controller) handleLeaveRoom(ctx context.Context, conn *wsrouter.Conn, _ emptyInput) error {
	return conn.Close()
}

func (c controller) broadcastParticipantUpdated(ctx context.Context, resp *room.ParticipantUpdatedResponse) {
	c.broadcast(ctx, resp.Conns, &Output{Type: "participantUpdated", Payload: map[string]any{
		"participant":  resp.UpdatedParticipant,
		"participants": resp.Participants,
	}})
}
