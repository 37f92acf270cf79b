package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/streamvault/server/internal/repository/room"
	"github.com/streamvault/server/pkg/catalog"
	"github.com/streamvault/server/pkg/wsrouter"
)

const roomCodeLength = 6

type CreateRoomCreateSessionParams struct {
	Username    string
	ContentType string
	ContentId   string
	EpisodeId   string
}

// CreateRoomCreateSession validates the content reference and stores a
// one-shot session under a connect token. The room itself is created when the
// client upgrades to websocket with that token.
func (s *service) CreateRoomCreateSession(ctx context.Context, params *CreateRoomCreateSessionParams) (string, error) {
	if err := s.validateContent(ctx, params.ContentType, params.ContentId, params.EpisodeId); err != nil {
		return "", err
	}

	connectToken := uuid.NewString()
	if err := s.roomRepo.SetCreateRoomSession(ctx, &room.SetCreateRoomSessionParams{
		ConnectToken: connectToken,
		Username:     params.Username,
		ContentType:  params.ContentType,
		ContentId:    params.ContentId,
		EpisodeId:    params.EpisodeId,
	}); err != nil {
		return "", fmt.Errorf("failed to set create room session: %w", err)
	}

	return connectToken, nil
}

type CreateRoomJoinSessionParams struct {
	Username string
	RoomCode string
}

func (s *service) CreateRoomJoinSession(ctx context.Context, params *CreateRoomJoinSessionParams) (string, error) {
	roomCode := normalizeRoomCode(params.RoomCode)

	exists, err := s.roomRepo.IsRoomExists(ctx, roomCode)
	if err != nil {
		return "", fmt.Errorf("failed to check if room exists: %w", err)
	}
	if !exists {
		return "", ErrRoomNotFound
	}

	connectToken := uuid.NewString()
	if err := s.roomRepo.SetJoinRoomSession(ctx, &room.SetJoinRoomSessionParams{
		ConnectToken: connectToken,
		Username:     params.Username,
		RoomCode:     roomCode,
	}); err != nil {
		return "", fmt.Errorf("failed to set join room session: %w", err)
	}

	return connectToken, nil
}

type CreateRoomParams struct {
	ConnectToken string
	Conn         *wsrouter.Conn
}

type CreateRoomResponse struct {
	RoomCode      string
	ParticipantId string
	Creator       Participant
	Content       Content
	Player        Player
}

func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	session, err := s.roomRepo.GetCreateRoomSession(ctx, params.ConnectToken)
	if err != nil {
		if errors.Is(err, room.ErrSessionNotFound) {
			return CreateRoomResponse{}, ErrConnectTokenInvalid
		}

		return CreateRoomResponse{}, fmt.Errorf("failed to get create room session: %w", err)
	}

	roomCode, err := s.generateRoomCode(ctx)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	content, err := s.resolveContent(ctx, session.ContentType, session.ContentId, session.EpisodeId)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	if err := s.roomRepo.SetRoom(ctx, &room.SetRoomParams{
		RoomCode:    roomCode,
		ContentType: session.ContentType,
		ContentId:   session.ContentId,
		EpisodeId:   session.EpisodeId,
		CreatedAt:   nowUnixMilli(),
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set room: %w", err)
	}

	player := defaultPlayer()
	if err := s.roomRepo.SetPlayer(ctx, &room.SetPlayerParams{
		RoomCode:      roomCode,
		IsPlaying:     player.IsPlaying,
		CurrentTime:   player.CurrentTime,
		PlaybackRate:  player.PlaybackRate,
		SubtitleIndex: player.SubtitleIndex,
		UpdatedAt:     player.UpdatedAt,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set player: %w", err)
	}

	participantId := uuid.NewString()
	if err := s.roomRepo.SetParticipant(ctx, &room.SetParticipantParams{
		ParticipantId: participantId,
		RoomCode:      roomCode,
		Username:      session.Username,
		IsHost:        true,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set participant: %w", err)
	}

	if err := s.connRepo.Add(params.Conn, participantId); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to add connection: %w", err)
	}

	if err := s.roomRepo.RemoveCreateRoomSession(ctx, params.ConnectToken); err != nil {
		s.logger.WarnContext(ctx, "failed to remove create room session", "error", err)
	}

	s.logger.InfoContext(ctx, "room created", "room_code", roomCode, "participant_id", participantId)

	return CreateRoomResponse{
		RoomCode:      roomCode,
		ParticipantId: participantId,
		Creator: Participant{
			Id:       participantId,
			Username: session.Username,
			IsHost:   true,
		},
		Content: content,
		Player:  player,
	}, nil
}

type JoinRoomParams struct {
	ConnectToken string
	Conn         *wsrouter.Conn
}

type JoinRoomResponse struct {
	RoomCode          string
	JoinedParticipant Participant
	Participants      []Participant
	Content           Content
	Player            Player
	Messages          []ChatMessage
	// conns of the participants that were already in the room
	OtherConns []*wsrouter.Conn
}

// GetJoinSessionRoomCode reports which room a pending join session targets,
// without consuming the session. The gateway uses it to serialize the join
// with the room's other traffic.
func (s *service) GetJoinSessionRoomCode(ctx context.Context, connectToken string) (string, error) {
	session, err := s.roomRepo.GetJoinRoomSession(ctx, connectToken)
	if err != nil {
		if errors.Is(err, room.ErrSessionNotFound) {
			return "", ErrConnectTokenInvalid
		}

		return "", fmt.Errorf("failed to get join room session: %w", err)
	}

	return session.RoomCode, nil
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	session, err := s.roomRepo.GetJoinRoomSession(ctx, params.ConnectToken)
	if err != nil {
		if errors.Is(err, room.ErrSessionNotFound) {
			return JoinRoomResponse{}, ErrConnectTokenInvalid
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to get join room session: %w", err)
	}

	unlock := s.lockRoom(session.RoomCode)
	defer unlock()

	roomModel, err := s.roomRepo.GetRoom(ctx, session.RoomCode)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return JoinRoomResponse{}, ErrRoomNotFound
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	participantIds, err := s.roomRepo.GetParticipantIds(ctx, session.RoomCode)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get participant ids: %w", err)
	}
	if len(participantIds) >= s.participantsLimit {
		return JoinRoomResponse{}, ErrParticipantLimitReached
	}

	otherConns, err := s.getConnsByRoomCode(ctx, session.RoomCode)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get conns: %w", err)
	}

	participantId := uuid.NewString()
	if err := s.roomRepo.SetParticipant(ctx, &room.SetParticipantParams{
		ParticipantId: participantId,
		RoomCode:      session.RoomCode,
		Username:      session.Username,
	}); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to set participant: %w", err)
	}

	// a failure past this point must not leave a ghost participant behind
	unregister := func() {
		s.connRepo.RemoveByParticipantId(participantId)
		if err := s.roomRepo.RemoveParticipant(ctx, &room.RemoveParticipantParams{
			ParticipantId: participantId,
			RoomCode:      session.RoomCode,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to unregister participant", "error", err)
		}
	}

	if err := s.connRepo.Add(params.Conn, participantId); err != nil {
		unregister()
		return JoinRoomResponse{}, fmt.Errorf("failed to add connection: %w", err)
	}

	if err := s.roomRepo.RemoveJoinRoomSession(ctx, params.ConnectToken); err != nil {
		s.logger.WarnContext(ctx, "failed to remove join room session", "error", err)
	}

	participants, err := s.getParticipants(ctx, session.RoomCode)
	if err != nil {
		unregister()
		return JoinRoomResponse{}, err
	}

	player, err := s.roomRepo.GetPlayer(ctx, session.RoomCode)
	if err != nil {
		unregister()
		return JoinRoomResponse{}, fmt.Errorf("failed to get player: %w", err)
	}

	messages, err := s.roomRepo.GetChatMessages(ctx, session.RoomCode)
	if err != nil {
		unregister()
		return JoinRoomResponse{}, fmt.Errorf("failed to get chat messages: %w", err)
	}

	content, err := s.resolveContent(ctx, roomModel.ContentType, roomModel.ContentId, roomModel.EpisodeId)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve content for snapshot", "error", err)
		content = Content{
			ContentType: roomModel.ContentType,
			ContentId:   roomModel.ContentId,
			EpisodeId:   roomModel.EpisodeId,
		}
	}

	chatMessages := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, ChatMessage(m))
	}

	s.logger.InfoContext(ctx, "participant joined", "room_code", session.RoomCode, "participant_id", participantId)

	return JoinRoomResponse{
		RoomCode: session.RoomCode,
		JoinedParticipant: Participant{
			Id:       participantId,
			Username: session.Username,
		},
		Participants: participants,
		Content:      content,
		Player: Player{
			IsPlaying:     player.IsPlaying,
			CurrentTime:   player.CurrentTime,
			PlaybackRate:  player.PlaybackRate,
			SubtitleIndex: player.SubtitleIndex,
			UpdatedAt:     player.UpdatedAt,
		},
		Messages:   chatMessages,
		OtherConns: otherConns,
	}, nil
}

type DisconnectParticipantParams struct {
	ParticipantId string
	RoomCode      string
}

type DisconnectParticipantResponse struct {
	Conns           []*wsrouter.Conn
	Participants    []Participant
	IsRoomDestroyed bool
	PromotedHost    *Participant
	PromotedConn    *wsrouter.Conn
}

// DisconnectParticipant handles both explicit leave and connection loss.
// When the host leaves, the longest-tenured remaining participant is promoted.
// The last participant leaving destroys the room.
func (s *service) DisconnectParticipant(ctx context.Context, params *DisconnectParticipantParams) (DisconnectParticipantResponse, error) {
	unlock := s.lockRoom(params.RoomCode)
	defer unlock()

	participant, err := s.getParticipant(ctx, params.RoomCode, params.ParticipantId)
	if err != nil {
		return DisconnectParticipantResponse{}, err
	}

	if _, err := s.connRepo.RemoveByParticipantId(params.ParticipantId); err != nil {
		s.logger.DebugContext(ctx, "connection already removed", "participant_id", params.ParticipantId)
	}

	if err := s.roomRepo.RemoveParticipant(ctx, &room.RemoveParticipantParams{
		ParticipantId: params.ParticipantId,
		RoomCode:      params.RoomCode,
	}); err != nil {
		return DisconnectParticipantResponse{}, fmt.Errorf("failed to remove participant: %w", err)
	}

	// pending unmute request targeting the leaver dies with them
	if err := s.roomRepo.RemoveUnmuteRequest(ctx, &room.RemoveUnmuteRequestParams{
		RoomCode: params.RoomCode,
		TargetId: params.ParticipantId,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to remove unmute request", "error", err)
	}

	remainingIds, err := s.roomRepo.GetParticipantIds(ctx, params.RoomCode)
	if err != nil {
		return DisconnectParticipantResponse{}, fmt.Errorf("failed to get participant ids: %w", err)
	}

	if len(remainingIds) == 0 {
		if err := s.roomRepo.RemoveRoom(ctx, params.RoomCode); err != nil {
			return DisconnectParticipantResponse{}, fmt.Errorf("failed to remove room: %w", err)
		}
		s.roomLocks.Delete(params.RoomCode)

		s.logger.InfoContext(ctx, "room destroyed", "room_code", params.RoomCode)

		return DisconnectParticipantResponse{IsRoomDestroyed: true}, nil
	}

	var promotedHost *Participant
	var promotedConn *wsrouter.Conn
	if participant.IsHost {
		// requests issued by the departed host are void
		if err := s.roomRepo.ClearUnmuteRequests(ctx, params.RoomCode); err != nil {
			s.logger.WarnContext(ctx, "failed to clear unmute requests", "error", err)
		}

		promotedId := remainingIds[0]
		if err := s.roomRepo.UpdateParticipantIsHost(ctx, params.RoomCode, promotedId, true); err != nil {
			return DisconnectParticipantResponse{}, fmt.Errorf("failed to promote host: %w", err)
		}

		promoted, err := s.getParticipant(ctx, params.RoomCode, promotedId)
		if err != nil {
			return DisconnectParticipantResponse{}, err
		}

		promotedHost = &Participant{
			Id:          promotedId,
			Username:    promoted.Username,
			IsHost:      promoted.IsHost,
			IsMuted:     promoted.IsMuted,
			IsHostMuted: promoted.IsHostMuted,
			IsSpeaking:  promoted.IsSpeaking,
		}

		if conn, err := s.connRepo.GetConn(promotedId); err == nil {
			promotedConn = conn
		}

		s.logger.InfoContext(ctx, "host promoted", "room_code", params.RoomCode, "participant_id", promotedId)
	}

	participants, err := s.getParticipants(ctx, params.RoomCode)
	if err != nil {
		return DisconnectParticipantResponse{}, err
	}

	conns, err := s.getConnsByRoomCode(ctx, params.RoomCode)
	if err != nil {
		return DisconnectParticipantResponse{}, err
	}

	return DisconnectParticipantResponse{
		Conns:        conns,
		Participants: participants,
		PromotedHost: promotedHost,
		PromotedConn: promotedConn,
	}, nil
}

func (s *service) generateRoomCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		roomCode := s.generator.GenerateRandomString(roomCodeLength)

		exists, err := s.roomRepo.IsRoomExists(ctx, roomCode)
		if err != nil {
			return "", fmt.Errorf("failed to check if room exists: %w", err)
		}
		if !exists {
			return roomCode, nil
		}
	}

	return "", errors.New("failed to generate unique room code")
}

func (s *service) validateContent(ctx context.Context, contentType, contentId, episodeId string) error {
	_, err := s.resolveContent(ctx, contentType, contentId, episodeId)
	return err
}

func (s *service) resolveContent(ctx context.Context, contentType, contentId, episodeId string) (Content, error) {
	contentData, err := s.catalog.Get(ctx, contentType, contentId)
	if err != nil {
		if errors.Is(err, catalog.ErrContentNotFound) {
			return Content{}, ErrInvalidContent
		}

		return Content{}, fmt.Errorf("failed to resolve content: %w", err)
	}

	if episodeId != "" {
		found := false
		for _, episode := range contentData.Episodes {
			if episode.Id == episodeId {
				found = true
				break
			}
		}
		if !found {
			return Content{}, ErrInvalidContent
		}
	}

	return Content{
		ContentType: contentType,
		ContentId:   contentId,
		EpisodeId:   episodeId,
		Title:       contentData.Title,
		PosterUrl:   contentData.PosterUrl,
	}, nil
}
