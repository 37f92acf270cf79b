package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/streamvault/server/internal/service/room"
)

type validateCreateRoomInput struct {
	Username    string `json:"username" validate:"required,max=32"`
	ContentType string `json:"content_type" validate:"required,oneof=show movie anime"`
	ContentId   string `json:"content_id" validate:"required"`
	EpisodeId   string `json:"episode_id"`
}

type validateCreateRoomResponse struct {
	ConnectToken string `json:"connect_token"`
}

func (c controller) validateCreateRoom(w http.ResponseWriter, r *http.Request) {
	var input validateCreateRoomInput

	if err := c.readJSON(r, &input); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		c.writeJSON(w, http.StatusUnprocessableEntity, envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(r.Context(), "validation failed", "errors", validationErrors)
		c.writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	connectToken, err := c.roomService.CreateRoomCreateSession(r.Context(), &room.CreateRoomCreateSessionParams{
		Username:    input.Username,
		ContentType: input.ContentType,
		ContentId:   input.ContentId,
		EpisodeId:   input.EpisodeId,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to create room session", "error", err)
		if errors.Is(err, room.ErrInvalidContent) {
			c.writeJSON(w, http.StatusUnprocessableEntity, envelope{"error": "content not found"})
			return
		}

		c.writeJSON(w, http.StatusInternalServerError, envelope{"error": "internal error"})
		return
	}

	c.writeJSON(w, http.StatusOK, envelope{"data": validateCreateRoomResponse{
		ConnectToken: connectToken,
	}})
}

type validateJoinRoomInput struct {
	Username string `json:"username" validate:"required,max=32"`
}

type validateJoinRoomResponse struct {
	ConnectToken string `json:"connect_token"`
}

func (c controller) validateJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := chi.URLParam(r, "room-code")
	if roomCode == "" {
		c.writeJSON(w, http.StatusNotFound, envelope{"error": "room not found"})
		return
	}

	var input validateJoinRoomInput

	if err := c.readJSON(r, &input); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		c.writeJSON(w, http.StatusUnprocessableEntity, envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(r.Context(), "validation failed", "errors", validationErrors)
		c.writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	connectToken, err := c.roomService.CreateRoomJoinSession(r.Context(), &room.CreateRoomJoinSessionParams{
		Username: input.Username,
		RoomCode: roomCode,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to create join session", "error", err)
		if errors.Is(err, room.ErrRoomNotFound) {
			c.writeJSON(w, http.StatusNotFound, envelope{"error": "room not found"})
			return
		}

		c.writeJSON(w, http.StatusInternalServerError, envelope{"error": "internal error"})
		return
	}

	c.writeJSON(w, http.StatusOK, envelope{"data": validateJoinRoomResponse{
		ConnectToken: connectToken,
	}})
}
