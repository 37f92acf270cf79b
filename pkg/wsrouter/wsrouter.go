package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type errorOutput struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ParseError is returned when a payload does not match the schema
// registered for its message type.
type ParseError struct {
	MessageType string
	Err         error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("failed to parse %q payload: %v", e.MessageType, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

type HandlerFunc[T any] func(ctx context.Context, conn *Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type WSRouter struct {
	routes      map[string]HandlerFunc[any]
	middlewares []Middleware
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc[any])}
}

func (r *WSRouter) Use(middlewares ...Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// Handle registers a handler for a message type. Middlewares see the raw
// payload, decoding into T happens last.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *Conn, payload any) error {
		var input T
		if raw, ok := payload.(json.RawMessage); ok && len(raw) > 0 {
			if err := json.Unmarshal(raw, &input); err != nil {
				return ParseError{MessageType: messageType, Err: err}
			}
		}

		return handler(ctx, conn, input)
	}
}

func (r *WSRouter) wrap(handler HandlerFunc[any]) HandlerFunc[any] {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	return handler
}

// ServeConn reads messages from the connection until it is closed and routes
// them to registered handlers. Handler errors are reported to the client and
// do not stop the loop. Error frames go through the conn's write lock like
// every other write, so they never interleave with a concurrent broadcast.
func (r *WSRouter) ServeConn(ctx context.Context, conn *Conn) error {
	defer conn.Close()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			conn.WriteJSON(errorOutput{Type: "error", Payload: map[string]string{
				"message": fmt.Sprintf("unknown message type %q", msg.Type),
			}})
			continue
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		if err := r.wrap(handler)(msgCtx, conn, json.RawMessage(msg.Payload)); err != nil {
			conn.WriteJSON(errorOutput{Type: "error", Payload: map[string]string{
				"message": err.Error(),
			}})
		}
	}
}
