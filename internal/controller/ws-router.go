package controller

import (
	"github.com/streamvault/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw, c.wsLoggingMw, c.wsRoomLockMw)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "leaveRoom", c.handleLeaveRoom)

	wsrouter.Handle(mux, "sendMessage", c.handleSendMessage)
	wsrouter.Handle(mux, "sendReaction", c.handleSendReaction)

	wsrouter.Handle(mux, "video:play", c.handleVideoPlay)
	wsrouter.Handle(mux, "video:pause", c.handleVideoPause)
	wsrouter.Handle(mux, "video:seek", c.handleVideoSeek)
	wsrouter.Handle(mux, "video:playbackRate", c.handleVideoPlaybackRate)
	wsrouter.Handle(mux, "video:subtitle", c.handleVideoSubtitle)
	wsrouter.Handle(mux, "changeContent", c.handleChangeContent)

	wsrouter.Handle(mux, "setMuted", c.handleSetMuted)
	wsrouter.Handle(mux, "hostMuteUser", c.handleHostMuteUser)
	wsrouter.Handle(mux, "voice:speaking", c.handleVoiceSpeaking)
	wsrouter.Handle(mux, "voice:requestUnmute", c.handleVoiceRequestUnmute)
	wsrouter.Handle(mux, "voice:unmuteResponse", c.handleVoiceUnmuteResponse)
	wsrouter.Handle(mux, "voice:signal", c.handleVoiceSignal)

	return mux
}
