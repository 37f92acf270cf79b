package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streamvault/server/internal/repository/room"
	"github.com/streamvault/server/pkg/wsrouter"
)

type ParticipantUpdatedResponse struct {
	UpdatedParticipant Participant
	Participants       []Participant
	Conns              []*wsrouter.Conn
}

func (s *service) participantUpdatedResponse(ctx context.Context, roomCode, participantId string) (ParticipantUpdatedResponse, error) {
	updated, err := s.getParticipant(ctx, roomCode, participantId)
	if err != nil {
		return ParticipantUpdatedResponse{}, err
	}

	participants, err := s.getParticipants(ctx, roomCode)
	if err != nil {
		return ParticipantUpdatedResponse{}, err
	}

	conns, err := s.getConnsByRoomCode(ctx, roomCode)
	if err != nil {
		return ParticipantUpdatedResponse{}, err
	}

	return ParticipantUpdatedResponse{
		UpdatedParticipant: Participant{
			Id:          participantId,
			Username:    updated.Username,
			IsHost:      updated.IsHost,
			IsMuted:     updated.IsMuted,
			IsHostMuted: updated.IsHostMuted,
			IsSpeaking:  updated.IsSpeaking,
		},
		Participants: participants,
		Conns:        conns,
	}, nil
}

type SetMutedParams struct {
	IsMuted  bool
	SenderId string
	RoomCode string
}

// SetMuted is the participant's own soft mute. Unmuting while hard-muted by
// the host is rejected, the participant has to go through the unmute request
// round trip instead.
func (s *service) SetMuted(ctx context.Context, params *SetMutedParams) (ParticipantUpdatedResponse, error) {
	unlock := s.lockRoom(params.RoomCode)
	defer unlock()

	participant, err := s.getParticipant(ctx, params.RoomCode, params.SenderId)
	if err != nil {
		return ParticipantUpdatedResponse{}, err
	}

	if !params.IsMuted && participant.IsHostMuted {
		return ParticipantUpdatedResponse{}, ErrPermissionDenied
	}

	if err := s.roomRepo.UpdateParticipantIsMuted(ctx, params.RoomCode, params.SenderId, params.IsMuted); err != nil {
		return ParticipantUpdatedResponse{}, fmt.Errorf("failed to update is muted: %w", err)
	}

	return s.participantUpdatedResponse(ctx, params.RoomCode, params.SenderId)
}

type SetSpeakingParams struct {
	IsSpeaking bool
	SenderId   string
	RoomCode   string
}

func (s *service) SetSpeaking(ctx context.Context, params *SetSpeakingParams) (ParticipantUpdatedResponse, error) {
	unlock := s.lockRoom(params.RoomCode)
	defer unlock()

	if err := s.roomRepo.UpdateParticipantIsSpeaking(ctx, params.RoomCode, params.SenderId, params.IsSpeaking); err != nil {
		if errors.Is(err, room.ErrParticipantNotFound) {
			return ParticipantUpdatedResponse{}, ErrParticipantNotFound
		}

		return ParticipantUpdatedResponse{}, fmt.Errorf("failed to update is speaking: %w", err)
	}

	return s.participantUpdatedResponse(ctx, params.RoomCode, params.SenderId)
}

type HostMuteParticipantParams struct {
	TargetId string
	IsMuted  bool
	SenderId string
	RoomCode string
}

type HostMuteParticipantResponse struct {
	// set when the mute was applied immediately
	Updated *ParticipantUpdatedResponse
	// set when an unmute request is now pending the target's consent
	UnmuteRequested bool
	TargetConn      *wsrouter.Conn
}

// HostMuteParticipant implements the consent asymmetry: a host-forced mute is
// authoritative and immediate, a host-initiated unmute only records a pending
// request that the target must accept.
func (s *service) HostMuteParticipant(ctx context.Context, params *HostMuteParticipantParams) (HostMuteParticipantResponse, error) {
	unlock := s.lockRoom(params.RoomCode)
	defer unlock()

	if err := s.checkIfParticipantHost(ctx, params.RoomCode, params.SenderId); err != nil {
		return HostMuteParticipantResponse{}, err
	}

	if _, err := s.getParticipant(ctx, params.RoomCode, params.TargetId); err != nil {
		return HostMuteParticipantResponse{}, err
	}

	targetConn, err := s.connRepo.GetConn(params.TargetId)
	if err != nil {
		return HostMuteParticipantResponse{}, ErrParticipantNotFound
	}

	if !params.IsMuted {
		if err := s.roomRepo.SetUnmuteRequest(ctx, &room.SetUnmuteRequestParams{
			RoomCode:    params.RoomCode,
			TargetId:    params.TargetId,
			RequesterId: params.SenderId,
		}); err != nil {
			return HostMuteParticipantResponse{}, fmt.Errorf("failed to set unmute request: %w", err)
		}

		return HostMuteParticipantResponse{
			UnmuteRequested: true,
			TargetConn:      targetConn,
		}, nil
	}

	if err := s.roomRepo.UpdateParticipantIsMuted(ctx, params.RoomCode, params.TargetId, true); err != nil {
		return HostMuteParticipantResponse{}, fmt.Errorf("failed to update is muted: %w", err)
	}
	if err := s.roomRepo.UpdateParticipantIsHostMuted(ctx, params.RoomCode, params.TargetId, true); err != nil {
		return HostMuteParticipantResponse{}, fmt.Errorf("failed to update is host muted: %w", err)
	}

	updated, err := s.participantUpdatedResponse(ctx, params.RoomCode, params.TargetId)
	if err != nil {
		return HostMuteParticipantResponse{}, err
	}

	s.logger.InfoContext(ctx, "participant hard-muted", "room_code", params.RoomCode, "target_id", params.TargetId)

	return HostMuteParticipantResponse{
		Updated:    &updated,
		TargetConn: targetConn,
	}, nil
}

type RespondUnmuteParams struct {
	Accepted bool
	SenderId string
	RoomCode string
}

type RespondUnmuteResponse struct {
	Accepted bool
	// set when the request was accepted and the mute state changed
	Updated *ParticipantUpdatedResponse
	// conn of the host that asked, to be told about a rejection
	RequesterConn *wsrouter.Conn
}

// RespondUnmute resolves a pending host-initiated unmute request. Only the
// target of the request may answer it.
func (s *service) RespondUnmute(ctx context.Context, params *RespondUnmuteParams) (RespondUnmuteResponse, error) {
	unlock := s.lockRoom(params.RoomCode)
	defer unlock()

	requesterId, err := s.roomRepo.GetUnmuteRequest(ctx, params.RoomCode, params.SenderId)
	if err != nil {
		if errors.Is(err, room.ErrUnmuteRequestNotFound) {
			return RespondUnmuteResponse{}, ErrNoPendingUnmuteRequest
		}

		return RespondUnmuteResponse{}, fmt.Errorf("failed to get unmute request: %w", err)
	}

	if err := s.roomRepo.RemoveUnmuteRequest(ctx, &room.RemoveUnmuteRequestParams{
		RoomCode: params.RoomCode,
		TargetId: params.SenderId,
	}); err != nil {
		return RespondUnmuteResponse{}, fmt.Errorf("failed to remove unmute request: %w", err)
	}

	// requester may have disconnected while the prompt was open
	requesterConn, _ := s.connRepo.GetConn(requesterId)

	if !params.Accepted {
		return RespondUnmuteResponse{RequesterConn: requesterConn}, nil
	}

	if err := s.roomRepo.UpdateParticipantIsMuted(ctx, params.RoomCode, params.SenderId, false); err != nil {
		return RespondUnmuteResponse{}, fmt.Errorf("failed to update is muted: %w", err)
	}
	if err := s.roomRepo.UpdateParticipantIsHostMuted(ctx, params.RoomCode, params.SenderId, false); err != nil {
		return RespondUnmuteResponse{}, fmt.Errorf("failed to update is host muted: %w", err)
	}

	updated, err := s.participantUpdatedResponse(ctx, params.RoomCode, params.SenderId)
	if err != nil {
		return RespondUnmuteResponse{}, err
	}

	return RespondUnmuteResponse{
		Accepted:      true,
		Updated:       &updated,
		RequesterConn: requesterConn,
	}, nil
}

type RequestUnmuteParams struct {
	SenderId string
	RoomCode string
}

type RequestUnmuteResponse struct {
	Requester Participant
	HostConn  *wsrouter.Conn
}

// RequestUnmute lets a hard-muted participant ask the host for an unmute.
// Pure relay, the host answers by issuing a hostMuteUser with muted=false.
func (s *service) RequestUnmute(ctx context.Context, params *RequestUnmuteParams) (RequestUnmuteResponse, error) {
	participant, err := s.getParticipant(ctx, params.RoomCode, params.SenderId)
	if err != nil {
		return RequestUnmuteResponse{}, err
	}

	if !participant.IsHostMuted {
		return RequestUnmuteResponse{}, ErrPermissionDenied
	}

	participants, err := s.getParticipants(ctx, params.RoomCode)
	if err != nil {
		return RequestUnmuteResponse{}, err
	}

	for _, p := range participants {
		if p.IsHost {
			hostConn, err := s.connRepo.GetConn(p.Id)
			if err != nil {
				return RequestUnmuteResponse{}, ErrParticipantNotFound
			}

			return RequestUnmuteResponse{
				Requester: Participant{
					Id:          params.SenderId,
					Username:    participant.Username,
					IsMuted:     participant.IsMuted,
					IsHostMuted: participant.IsHostMuted,
				},
				HostConn: hostConn,
			}, nil
		}
	}

	return RequestUnmuteResponse{}, ErrParticipantNotFound
}

type RelaySignalParams struct {
	TargetId string
	Data     json.RawMessage
	SenderId string
	RoomCode string
}

type RelaySignalResponse struct {
	SenderId   string
	Data       json.RawMessage
	TargetConn *wsrouter.Conn
}

// RelaySignal forwards an opaque signaling payload (offer/answer/ICE) to one
// peer in the same room. The payload is never inspected.
func (s *service) RelaySignal(ctx context.Context, params *RelaySignalParams) (RelaySignalResponse, error) {
	if _, err := s.getParticipant(ctx, params.RoomCode, params.SenderId); err != nil {
		return RelaySignalResponse{}, err
	}

	if _, err := s.getParticipant(ctx, params.RoomCode, params.TargetId); err != nil {
		return RelaySignalResponse{}, err
	}

	targetConn, err := s.connRepo.GetConn(params.TargetId)
	if err != nil {
		return RelaySignalResponse{}, ErrParticipantNotFound
	}

	return RelaySignalResponse{
		SenderId:   params.SenderId,
		Data:       params.Data,
		TargetConn: targetConn,
	}, nil
}
