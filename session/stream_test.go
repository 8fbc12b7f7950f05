package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/promptwizard/utils"
)

// scriptedConn is a Conn fed from a channel. When ignoreClose is set, Close
// does not unblock reads, which lets tests deliver an event that was already
// in flight when the client cancelled.
type scriptedConn struct {
	msgs        chan []byte
	closed      chan struct{}
	closeOnce   sync.Once
	ignoreClose bool
}

func newScriptedConn(ignoreClose bool) *scriptedConn {
	return &scriptedConn{
		msgs:        make(chan []byte, 16),
		closed:      make(chan struct{}),
		ignoreClose: ignoreClose,
	}
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	if c.ignoreClose {
		m, ok := <-c.msgs
		if !ok {
			return 0, nil, websocket.ErrCloseSent
		}
		return websocket.TextMessage, m, nil
	}
	select {
	case <-c.closed:
		return 0, nil, websocket.ErrCloseSent
	case m, ok := <-c.msgs:
		if !ok {
			return 0, nil, websocket.ErrCloseSent
		}
		return websocket.TextMessage, m, nil
	}
}

func (c *scriptedConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func openScripted(t *testing.T, conn *scriptedConn, onUpdate UpdateFunc) *Stream {
	t.Helper()
	opts := []StreamOption{
		WithLogger(utils.NewMockLogger()),
		WithDialFunc(func(ctx context.Context, url string) (Conn, error) {
			return conn, nil
		}),
	}
	if onUpdate != nil {
		opts = append(opts, WithUpdateFunc(onUpdate))
	}
	st, err := Open(context.Background(), "ws://test", "job-1", opts...)
	require.NoError(t, err)
	return st
}

func waitDone(t *testing.T, st *Stream) {
	t.Helper()
	select {
	case <-st.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish in time")
	}
}

func TestStreamCompletes(t *testing.T) {
	conn := newScriptedConn(false)
	var mu sync.Mutex
	var statuses []Status
	st := openScripted(t, conn, func(s Session) {
		mu.Lock()
		statuses = append(statuses, s.Status)
		mu.Unlock()
	})

	conn.msgs <- []byte(`{"type":"status","phase":"loading","message":"loading dataset"}`)
	conn.msgs <- []byte(`{"type":"progress","phase":"optimizing","progress":50,"message":"halfway"}`)
	conn.msgs <- []byte(`{"type":"log","level":"info","logger":"optimizer","message":"round done","timestamp":"t"}`)
	conn.msgs <- []byte(`{"type":"complete","success":true,"originalPrompt":"orig","optimizedPrompt":"better","message":"done"}`)

	waitDone(t, st)

	s := st.Session()
	assert.Equal(t, StatusCompleted, s.Status)
	require.NotNil(t, s.Result)
	assert.Equal(t, "orig", s.Result.OriginalPrompt)
	assert.Equal(t, "better", s.Result.OptimizedPrompt)
	require.Len(t, s.Logs, 1)
	assert.Equal(t, "round done", s.Logs[0].Message)
	assert.Equal(t, 50.0, s.Progress)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusStreaming, statuses[0], "first event promotes Connecting to Streaming")
	assert.Equal(t, StatusCompleted, statuses[len(statuses)-1])
}

func TestStreamServerError(t *testing.T) {
	conn := newScriptedConn(false)
	st := openScripted(t, conn, nil)

	conn.msgs <- []byte(`{"type":"error","message":"optimizer blew up"}`)
	waitDone(t, st)

	s := st.Session()
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, CauseServer, s.Cause)
	assert.Equal(t, "optimizer blew up", s.Error)
}

func TestStreamTransportFailure(t *testing.T) {
	conn := newScriptedConn(false)
	st := openScripted(t, conn, nil)

	conn.msgs <- []byte(`{"type":"status","phase":"init","message":"ok"}`)
	// Connection drops without a terminal event.
	close(conn.msgs)
	waitDone(t, st)

	s := st.Session()
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, CauseTransport, s.Cause, "transport loss must be distinguishable from a server error event")
	assert.Equal(t, transportFailureMessage, s.Error)
}

func TestStreamSkipsMalformedEvents(t *testing.T) {
	conn := newScriptedConn(false)
	st := openScripted(t, conn, nil)

	conn.msgs <- []byte(`garbage`)
	conn.msgs <- []byte(`{"type":"unknown-kind"}`)
	conn.msgs <- []byte(`{"type":"complete","originalPrompt":"a","optimizedPrompt":"b"}`)
	waitDone(t, st)

	assert.Equal(t, StatusCompleted, st.Session().Status)
}

// TestCancelDiscardsLateEvent covers the discard-after-cancel law: a complete
// event already in flight when the user cancels must not flip the session to
// Completed.
func TestCancelDiscardsLateEvent(t *testing.T) {
	conn := newScriptedConn(true) // Close does not unblock the pending read
	st := openScripted(t, conn, nil)

	st.Cancel()
	assert.Equal(t, StatusCancelled, st.Session().Status)

	// The terminal event arrives after cancellation was requested.
	conn.msgs <- []byte(`{"type":"complete","originalPrompt":"a","optimizedPrompt":"b"}`)
	waitDone(t, st)

	s := st.Session()
	assert.Equal(t, StatusCancelled, s.Status)
	assert.Nil(t, s.Result)
	assert.Empty(t, s.Error)
}

func TestCancelAfterTerminalIsNoOp(t *testing.T) {
	conn := newScriptedConn(false)
	st := openScripted(t, conn, nil)

	conn.msgs <- []byte(`{"type":"complete","originalPrompt":"a","optimizedPrompt":"b"}`)
	waitDone(t, st)
	require.Equal(t, StatusCompleted, st.Session().Status)

	st.Cancel()
	assert.Equal(t, StatusCompleted, st.Session().Status)
}

// TestStreamAgainstWebSocketServer exercises the default gorilla dialer
// against a real WebSocket endpoint.
func TestStreamAgainstWebSocketServer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/optimize/job-42", r.URL.Path)
		c, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer c.Close()

		events := []map[string]any{
			{"type": "status", "phase": "loading", "message": "loading"},
			{"type": "progress", "phase": "optimizing", "progress": 80, "message": "almost"},
			{"type": "complete", "success": true, "originalPrompt": "o", "optimizedPrompt": "p", "message": "done"},
		}
		for _, ev := range events {
			require.NoError(t, c.WriteJSON(ev))
		}
		// Wait for the client to close after the terminal event.
		_, _, _ = c.ReadMessage()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	st, err := Open(context.Background(), wsURL, "job-42", WithLogger(utils.NewMockLogger()))
	require.NoError(t, err)

	waitDone(t, st)
	s := st.Session()
	assert.Equal(t, StatusCompleted, s.Status)
	require.NotNil(t, s.Result)
	assert.Equal(t, "p", s.Result.OptimizedPrompt)
	assert.Equal(t, 80.0, s.Progress)
}
