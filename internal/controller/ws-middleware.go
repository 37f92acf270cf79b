package controller

import (
	"context"
	"log/slog"

	"github.com/streamvault/server/pkg/ctxlogger"
	"github.com/streamvault/server/pkg/wsrouter"
)

func (c controller) wsRequestIdMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *wsrouter.Conn, payload any) error {
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedId()))
		return next(ctx, conn, payload)
	}
}

func (c controller) wsLoggingMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *wsrouter.Conn, payload any) error {
		c.logger.InfoContext(ctx, "message received",
			"message_type", wsrouter.GetMessageTypeFromCtx(ctx),
		)

		err := next(ctx, conn, payload)
		if err != nil {
			c.logger.DebugContext(ctx, "message handling failed",
				"message_type", wsrouter.GetMessageTypeFromCtx(ctx),
				"error", err,
			)
		}

		return err
	}
}

// wsRoomLockMw keeps the room locked while a message is handled, broadcasts
// included. Without it two mutations could fan out in the opposite order to
// how they were applied.
func (c controller) wsRoomLockMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *wsrouter.Conn, payload any) error {
		unlock := c.lockRoom(c.getRoomCodeFromCtx(ctx))
		defer unlock()

		return next(ctx, conn, payload)
	}
}
