package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/streamvault/server/internal/repository/room"
	"github.com/streamvault/server/pkg/wsrouter"
)

func normalizeRoomCode(roomCode string) string {
	return strings.ToUpper(strings.TrimSpace(roomCode))
}

func nowUnixMilli() int64 {
	return time.Now().UnixMilli()
}

func (s *service) getParticipants(ctx context.Context, roomCode string) ([]Participant, error) {
	participantIds, err := s.roomRepo.GetParticipantIds(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant ids: %w", err)
	}

	participants := make([]Participant, 0, len(participantIds))
	for _, participantId := range participantIds {
		participant, err := s.roomRepo.GetParticipant(ctx, &room.GetParticipantParams{
			ParticipantId: participantId,
			RoomCode:      roomCode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get participant: %w", err)
		}

		participants = append(participants, Participant{
			Id:          participantId,
			Username:    participant.Username,
			IsHost:      participant.IsHost,
			IsMuted:     participant.IsMuted,
			IsHostMuted: participant.IsHostMuted,
			IsSpeaking:  participant.IsSpeaking,
		})
	}

	return participants, nil
}

func (s *service) getConnsByRoomCode(ctx context.Context, roomCode string) ([]*wsrouter.Conn, error) {
	participantIds, err := s.roomRepo.GetParticipantIds(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant ids: %w", err)
	}

	conns := make([]*wsrouter.Conn, 0, len(participantIds))
	for _, participantId := range participantIds {
		conn, err := s.connRepo.GetConn(participantId)
		if err != nil {
			// participant may be between join and connect, skip
			continue
		}

		conns = append(conns, conn)
	}

	return conns, nil
}

func (s *service) getParticipant(ctx context.Context, roomCode, participantId string) (room.Participant, error) {
	participant, err := s.roomRepo.GetParticipant(ctx, &room.GetParticipantParams{
		ParticipantId: participantId,
		RoomCode:      roomCode,
	})
	if err != nil {
		if errors.Is(err, room.ErrParticipantNotFound) {
			return room.Participant{}, ErrParticipantNotFound
		}

		return room.Participant{}, err
	}

	return participant, nil
}

// checkIfParticipantHost guards every host-only operation.
func (s *service) checkIfParticipantHost(ctx context.Context, roomCode, participantId string) error {
	participant, err := s.getParticipant(ctx, roomCode, participantId)
	if err != nil {
		return err
	}

	if !participant.IsHost {
		return ErrPermissionDenied
	}

	return nil
}
