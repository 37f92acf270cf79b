package controller

import "context"

type contextKey int

const (
	roomCodeCtxKey contextKey = iota
	participantIdCtxKey
)

func (c controller) getRoomCodeFromCtx(ctx context.Context) string {
	roomCode, ok := ctx.Value(roomCodeCtxKey).(string)
	if !ok {
		return ""
	}

	return roomCode
}

func (c controller) getParticipantIdFromCtx(ctx context.Context) string {
	participantId, ok := ctx.Value(participantIdCtxKey).(string)
	if !ok {
		return ""
	}

	return participantId
}
