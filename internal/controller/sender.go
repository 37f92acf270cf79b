package controller

import (
	"context"

	"github.com/streamvault/server/pkg/wsrouter"
)

// Output is the envelope for every server-to-client message.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c controller) writeToConn(ctx context.Context, conn *wsrouter.Conn, output *Output) {
	if conn == nil {
		return
	}

	if err := conn.WriteJSON(output); err != nil {
		c.logger.DebugContext(ctx, "failed to write to conn", "error", err, "message_type", output.Type)
	}
}

// broadcast is fire-and-forget: a dead conn is logged and skipped, its
// cleanup happens through its own read loop.
func (c controller) broadcast(ctx context.Context, conns []*wsrouter.Conn, output *Output) {
	for _, conn := range conns {
		c.writeToConn(ctx, conn, output)
	}
}
