package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weave-labs/promptwizard/utils"
)

// Conn is the subset of the WebSocket connection the stream needs. Tests
// substitute scripted connections through WithDialFunc.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// DialFunc opens the streaming connection for a job.
type DialFunc func(ctx context.Context, url string) (Conn, error)

// UpdateFunc observes every state change. It is called from the reader
// goroutine; observers must not block.
type UpdateFunc func(Session)

// Stream owns one WebSocket connection for one job and reduces its events in
// receipt order. There is no reconnect: a dropped connection is terminal for
// the session and the caller starts a new one.
type Stream struct {
	logger    utils.Logger
	dial      DialFunc
	onUpdate  UpdateFunc
	handshake time.Duration

	mu        sync.Mutex
	session   Session
	conn      Conn
	cancelled bool

	done chan struct{}
}

type StreamOption func(*Stream)

func WithLogger(logger utils.Logger) StreamOption {
	return func(st *Stream) {
		st.logger = logger
	}
}

// WithDialFunc replaces the WebSocket dialer, primarily for tests.
func WithDialFunc(dial DialFunc) StreamOption {
	return func(st *Stream) {
		st.dial = dial
	}
}

// WithUpdateFunc registers an observer for state changes.
func WithUpdateFunc(fn UpdateFunc) StreamOption {
	return func(st *Stream) {
		st.onUpdate = fn
	}
}

// WithHandshakeTimeout bounds the WebSocket handshake of the default dialer.
func WithHandshakeTimeout(d time.Duration) StreamOption {
	return func(st *Stream) {
		st.handshake = d
	}
}

// Open connects to the job's streaming endpoint and starts consuming events.
// The returned stream is already in StatusConnecting; the first server event
// moves it to StatusStreaming.
func Open(ctx context.Context, wsURL, jobID string, opts ...StreamOption) (*Stream, error) {
	st := &Stream{
		logger:    utils.NewLogger(utils.LogLevelWarn),
		session:   NewSession(jobID),
		handshake: 10 * time.Second,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(st)
	}
	if st.dial == nil {
		dialer := &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: st.handshake,
		}
		st.dial = func(ctx context.Context, url string) (Conn, error) {
			conn, _, err := dialer.DialContext(ctx, url, nil)
			if err != nil {
				return nil, err
			}
			return conn, nil
		}
	}

	url := fmt.Sprintf("%s/ws/optimize/%s", wsURL, jobID)
	conn, err := st.dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open optimization stream for job %s: %w", jobID, err)
	}
	st.conn = conn

	st.logger.Debug("optimization stream opened", "job_id", jobID, "url", url)
	go st.readLoop()
	return st, nil
}

// Session returns a snapshot of the current state. The Logs slice is shared
// but append-only, so the snapshot stays valid.
func (st *Stream) Session() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.session
}

// Done is closed when the session reaches a terminal state.
func (st *Stream) Done() <-chan struct{} {
	return st.done
}

// Cancel closes the connection and marks the session cancelled. Events
// already in flight are discarded, never applied. Cancelling a terminal
// session is a no-op.
func (st *Stream) Cancel() {
	st.mu.Lock()
	if st.session.Status.Terminal() {
		st.mu.Unlock()
		return
	}
	st.cancelled = true
	st.session = cancel(st.session)
	snapshot := st.session
	conn := st.conn
	st.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	st.notify(snapshot)
	st.logger.Info("optimization stream cancelled", "job_id", snapshot.JobID)
}

// readLoop consumes the connection until a terminal event, a transport
// failure, or cancellation. It is the only writer to session state besides
// Cancel, and both serialize on mu, so events reduce strictly in receipt
// order.
func (st *Stream) readLoop() {
	defer close(st.done)

	for {
		_, data, err := st.conn.ReadMessage()
		if err != nil {
			st.mu.Lock()
			if st.cancelled || st.session.Status.Terminal() {
				// Expected: we closed the connection ourselves.
				st.mu.Unlock()
				return
			}
			st.session = failTransport(st.session)
			snapshot := st.session
			st.mu.Unlock()

			_ = st.conn.Close()
			st.notify(snapshot)
			st.logger.Warn("optimization stream transport failure",
				"job_id", snapshot.JobID, "error", err)
			return
		}

		ev, err := ParseEvent(data)
		if err != nil {
			st.logger.Warn("discarding unparseable stream event", "error", err)
			continue
		}

		st.mu.Lock()
		if st.cancelled {
			// Discard-after-cancel: the event was in flight when the user
			// cancelled.
			st.mu.Unlock()
			return
		}
		st.session = Reduce(st.session, ev)
		snapshot := st.session
		st.mu.Unlock()

		st.notify(snapshot)

		if snapshot.Status.Terminal() {
			_ = st.conn.Close()
			st.logger.Info("optimization stream finished",
				"job_id", snapshot.JobID, "status", snapshot.Status)
			return
		}
	}
}

func (st *Stream) notify(s Session) {
	if st.onUpdate != nil {
		st.onUpdate(s)
	}
}
