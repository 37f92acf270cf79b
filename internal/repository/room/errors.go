package room

import "errors"

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrUnmuteRequestNotFound = errors.New("unmute request not found")
)
