package wsrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text string `json:"text"`
}

type output struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func newTestConn(t *testing.T, r *WSRouter, serverConns chan<- *Conn) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ws, err := upgrader.Upgrade(w, req, nil)
		require.NoError(t, err)
		conn := NewConn(ws)
		if serverConns != nil {
			serverConns <- conn
		}
		r.ServeConn(context.Background(), conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestRouting(t *testing.T) {
	r := New()
	Handle(r, "echo", func(ctx context.Context, conn *Conn, input echoInput) error {
		return conn.WriteJSON(output{Type: "echoed", Payload: map[string]any{"text": input.Text}})
	})
	Handle(r, "fail", func(ctx context.Context, conn *Conn, _ struct{}) error {
		return errors.New("something went wrong")
	})

	conn := newTestConn(t, r, nil)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "echo",
		"payload": map[string]string{"text": "hello"},
	}))

	var out output
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "echoed", out.Type)
	assert.Equal(t, "hello", out.Payload["text"])

	// handler errors are reported, the loop keeps serving
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "fail"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "error", out.Type)
	assert.Contains(t, out.Payload["message"], "something went wrong")

	// unknown types too
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "nope"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "error", out.Type)
	assert.Contains(t, out.Payload["message"], "unknown message type")

	// still alive after both errors
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "echo",
		"payload": map[string]string{"text": "again"},
	}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "echoed", out.Type)
}

func TestMalformedPayload(t *testing.T) {
	r := New()
	Handle(r, "echo", func(ctx context.Context, conn *Conn, input echoInput) error {
		return conn.WriteJSON(output{Type: "echoed", Payload: map[string]any{"text": input.Text}})
	})

	conn := newTestConn(t, r, nil)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "echo",
		"payload": []int{1, 2, 3},
	}))

	var out output
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "error", out.Type)
	assert.Contains(t, out.Payload["message"], "failed to parse")
}

func TestMiddlewareSeesMessageType(t *testing.T) {
	r := New()

	sawType := make(chan string, 1)
	r.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *Conn, payload any) error {
			sawType <- GetMessageTypeFromCtx(ctx)
			return next(ctx, conn, payload)
		}
	})
	Handle(r, "ping", func(ctx context.Context, conn *Conn, _ struct{}) error {
		return conn.WriteJSON(output{Type: "pong"})
	})

	conn := newTestConn(t, r, nil)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))

	var out output
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "pong", out.Type)
	assert.Equal(t, "ping", <-sawType)
}

// Error frames written by the serve loop and writes coming from other
// goroutines share the conn's write lock, so neither corrupts the other.
func TestConcurrentWrites(t *testing.T) {
	r := New()
	Handle(r, "fail", func(ctx context.Context, conn *Conn, _ struct{}) error {
		return errors.New("something went wrong")
	})

	serverConns := make(chan *Conn, 1)
	conn := newTestConn(t, r, serverConns)
	serverConn := <-serverConns

	const n = 50

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			assert.NoError(t, conn.WriteJSON(map[string]any{"type": "fail"}))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			assert.NoError(t, serverConn.WriteJSON(output{
				Type:    "notice",
				Payload: map[string]any{"seq": fmt.Sprintf("%d", i)},
			}))
		}
	}()

	errorFrames, notices := 0, 0
	for i := 0; i < 2*n; i++ {
		var out output
		require.NoError(t, conn.ReadJSON(&out))
		switch out.Type {
		case "error":
			errorFrames++
		case "notice":
			notices++
		default:
			t.Fatalf("unexpected frame type %q", out.Type)
		}
	}
	wg.Wait()

	assert.Equal(t, n, errorFrames)
	assert.Equal(t, n, notices)
}

func TestParseErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := ParseError{MessageType: "echo", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), `"echo"`)
}
