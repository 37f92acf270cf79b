package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/streamvault/server/internal/repository/room"
	"github.com/streamvault/server/pkg/catalog"
	"github.com/streamvault/server/pkg/randstr"
	"github.com/streamvault/server/pkg/wsrouter"
)

var (
	ErrRoomNotFound            = errors.New("room not found")
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrInvalidContent          = errors.New("invalid content")
	ErrConnectTokenInvalid     = errors.New("connect token invalid")
	ErrParticipantLimitReached = errors.New("participant limit reached")
	ErrNoPendingUnmuteRequest  = errors.New("no pending unmute request")
)

type iRoomRepo interface {
	// sessions
	SetCreateRoomSession(context.Context, *room.SetCreateRoomSessionParams) error
	GetCreateRoomSession(context.Context, string) (room.CreateRoomSession, error)
	RemoveCreateRoomSession(context.Context, string) error
	SetJoinRoomSession(context.Context, *room.SetJoinRoomSessionParams) error
	GetJoinRoomSession(context.Context, string) (room.JoinRoomSession, error)
	RemoveJoinRoomSession(context.Context, string) error
	// room
	SetRoom(context.Context, *room.SetRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	IsRoomExists(context.Context, string) (bool, error)
	UpdateRoomContent(context.Context, *room.UpdateRoomContentParams) error
	RemoveRoom(context.Context, string) error
	// participant
	SetParticipant(context.Context, *room.SetParticipantParams) error
	GetParticipant(context.Context, *room.GetParticipantParams) (room.Participant, error)
	GetParticipantIds(context.Context, string) ([]string, error)
	RemoveParticipant(context.Context, *room.RemoveParticipantParams) error
	UpdateParticipantIsHost(ctx context.Context, roomCode, participantId string, isHost bool) error
	UpdateParticipantIsMuted(ctx context.Context, roomCode, participantId string, isMuted bool) error
	UpdateParticipantIsHostMuted(ctx context.Context, roomCode, participantId string, isHostMuted bool) error
	UpdateParticipantIsSpeaking(ctx context.Context, roomCode, participantId string, isSpeaking bool) error
	// player
	SetPlayer(context.Context, *room.SetPlayerParams) error
	GetPlayer(context.Context, string) (room.Player, error)
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) error
	UpdatePlayerSubtitle(ctx context.Context, roomCode string, subtitleIndex int) error
	// chat
	AddChatMessage(context.Context, *room.AddChatMessageParams) error
	GetChatMessages(context.Context, string) ([]room.ChatMessage, error)
	// voice
	SetUnmuteRequest(context.Context, *room.SetUnmuteRequestParams) error
	GetUnmuteRequest(ctx context.Context, roomCode, targetId string) (string, error)
	RemoveUnmuteRequest(context.Context, *room.RemoveUnmuteRequestParams) error
	ClearUnmuteRequests(context.Context, string) error
}

type iConnRepo interface {
	Add(*wsrouter.Conn, string) error
	RemoveByConn(*wsrouter.Conn) (string, error)
	RemoveByParticipantId(string) (*wsrouter.Conn, error)
	GetConn(string) (*wsrouter.Conn, error)
	GetParticipantId(*wsrouter.Conn) (string, error)
}

type iContentCatalog interface {
	Get(ctx context.Context, contentType, contentId string) (*catalog.ContentData, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type service struct {
	roomRepo          iRoomRepo
	connRepo          iConnRepo
	catalog           iContentCatalog
	generator         iGenerator
	logger            *slog.Logger
	participantsLimit int
	roomLocks         sync.Map
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, contentCatalog iContentCatalog, participantsLimit int, logger *slog.Logger) *service {
	s := service{
		roomRepo:          roomRepo,
		connRepo:          connRepo,
		catalog:           contentCatalog,
		logger:            logger,
		participantsLimit: participantsLimit,
	}

	// no confusable characters, room codes are typed by hand
	letterBytes := []byte("ABCDEFGHJKMNPQRSTUVWXYZ23456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

// lockRoom serializes all mutations of a single room. Rooms are independent,
// handlers for different rooms run concurrently.
func (s *service) lockRoom(roomCode string) func() {
	v, _ := s.roomLocks.LoadOrStore(roomCode, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
