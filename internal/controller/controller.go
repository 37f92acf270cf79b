package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/streamvault/server/internal/service/room"
	"github.com/streamvault/server/pkg/validator"
	"github.com/streamvault/server/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoomCreateSession(context.Context, *room.CreateRoomCreateSessionParams) (string, error)
	CreateRoomJoinSession(context.Context, *room.CreateRoomJoinSessionParams) (string, error)
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetJoinSessionRoomCode(context.Context, string) (string, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	DisconnectParticipant(context.Context, *room.DisconnectParticipantParams) (room.DisconnectParticipantResponse, error)
	// playback
	PlayVideo(context.Context, *room.PlayVideoParams) (room.PlayerStateResponse, error)
	PauseVideo(context.Context, *room.PauseVideoParams) (room.PlayerStateResponse, error)
	SeekVideo(context.Context, *room.SeekVideoParams) (room.PlayerStateResponse, error)
	SetPlaybackRate(context.Context, *room.SetPlaybackRateParams) (room.PlayerStateResponse, error)
	SetSubtitle(context.Context, *room.SetSubtitleParams) (room.SetSubtitleResponse, error)
	GetPlayerSync(context.Context, *room.GetPlayerSyncParams) (room.Player, error)
	ChangeContent(context.Context, *room.ChangeContentParams) (room.ChangeContentResponse, error)
	// chat
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	SendReaction(context.Context, *room.SendReactionParams) (room.SendReactionResponse, error)
	// voice
	SetMuted(context.Context, *room.SetMutedParams) (room.ParticipantUpdatedResponse, error)
	SetSpeaking(context.Context, *room.SetSpeakingParams) (room.ParticipantUpdatedResponse, error)
	HostMuteParticipant(context.Context, *room.HostMuteParticipantParams) (room.HostMuteParticipantResponse, error)
	RespondUnmute(context.Context, *room.RespondUnmuteParams) (room.RespondUnmuteResponse, error)
	RequestUnmute(context.Context, *room.RequestUnmuteParams) (room.RequestUnmuteResponse, error)
	RelaySignal(context.Context, *room.RelaySignalParams) (room.RelaySignalResponse, error)
}

type controller struct {
	roomService iRoomService
	logger      *slog.Logger
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	roomLocks   *sync.Map
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := controller{
		roomService: roomService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:  validator.NewValidator(),
		roomLocks: &sync.Map{},
	}
	c.wsmux = c.getWSRouter()

	return &c
}

// lockRoom serializes every mutation of a room with the delivery of its
// broadcasts. Holding the lock until the fan-out completes keeps each
// participant channel in processing order.
func (c controller) lockRoom(roomCode string) func() {
	lock, _ := c.roomLocks.LoadOrStore(roomCode, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
