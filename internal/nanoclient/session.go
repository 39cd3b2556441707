// Package nanoclient dials the aigames nano server and exposes the
// request/response primitive the rest of the client is built on.
package nanoclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/luyingjie/aigames-client/internal/protocol"
)

var (
	// ErrNotConnected is returned when a request is issued before the
	// session handshake has completed.
	ErrNotConnected = errors.New("session not established")
	// ErrClosed is returned to callers whose request was in flight when
	// the connection went away.
	ErrClosed = errors.New("connection closed")
	// ErrKicked means the server sent a kick packet.
	ErrKicked = errors.New("kicked by server")
)

// Error wraps any transport-level failure: dial, handshake, channel
// errors, or calling before Connect. Envelope codes are not errors at
// this layer.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "nano " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransport reports whether err originated in the transport session.
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

type handshakeRequest struct {
	Sys  handshakeSys   `json:"sys"`
	User map[string]any `json:"user"`
}

type handshakeSys struct {
	Type    string   `json:"type"`
	Version string   `json:"version"`
	RSA     struct{} `json:"rsa"`
}

type handshakeResponse struct {
	Code int `json:"code"`
	Sys  struct {
		Heartbeat float64 `json:"heartbeat"`
	} `json:"sys"`
}

type callResult struct {
	env *protocol.Envelope
	err error
}

type attempt struct {
	done chan struct{}
	err  error
}

// PushHandler receives server-initiated messages. The payload is the
// raw serialized body for the given route.
type PushHandler func(route string, data []byte)

// Session is the process-wide connection to the game server. Connect
// is idempotent, Request correlates responses by message id. A Session
// that loses its connection reports transport errors until Connect is
// called again.
type Session struct {
	log        zerolog.Logger
	url        string
	clientType string
	version    string
	onPush     PushHandler

	mu          sync.Mutex
	conn        *websocket.Conn
	established bool
	inflight    *attempt
	nextID      uint64
	pending     map[uint64]chan callResult
	stop        context.CancelFunc
	heartbeat   time.Duration
}

func New(url, clientType, version string, log zerolog.Logger) *Session {
	return &Session{
		log:        log,
		url:        url,
		clientType: clientType,
		version:    version,
		pending:    make(map[uint64]chan callResult),
	}
}

func (s *Session) SetPushHandler(h PushHandler) { s.onPush = h }

// Connected reports whether the handshake has completed and the
// connection is still up.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.established
}

// Connect establishes the connection and performs the handshake. It is
// a no-op when already established; concurrent callers share the one
// in-flight handshake. A failed attempt leaves the session down so a
// later call retries.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.established {
		s.mu.Unlock()
		return nil
	}
	if s.inflight != nil {
		att := s.inflight
		s.mu.Unlock()
		select {
		case <-att.done:
			return att.err
		case <-ctx.Done():
			return &Error{Op: "connect", Err: ctx.Err()}
		}
	}
	att := &attempt{done: make(chan struct{})}
	s.inflight = att
	s.mu.Unlock()

	err := s.handshake(ctx)

	s.mu.Lock()
	att.err = err
	s.inflight = nil
	s.established = err == nil
	s.mu.Unlock()
	close(att.done)
	return err
}

func (s *Session) handshake(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return &Error{Op: "dial", Err: err}
	}
	conn.SetReadLimit(1 << 20)

	body, err := json.Marshal(handshakeRequest{
		Sys:  handshakeSys{Type: s.clientType, Version: s.version},
		User: map[string]any{},
	})
	if err != nil {
		conn.Close(websocket.StatusInternalError, "")
		return &Error{Op: "handshake", Err: err}
	}
	if err := conn.Write(ctx, websocket.MessageBinary, encodePacket(packetHandshake, body)); err != nil {
		conn.Close(websocket.StatusProtocolError, "")
		return &Error{Op: "handshake", Err: err}
	}

	dec := &packetDecoder{}
	var resp handshakeResponse
	gotReply := false
	for !gotReply {
		_, data, err := conn.Read(ctx)
		if err != nil {
			conn.Close(websocket.StatusProtocolError, "")
			return &Error{Op: "handshake", Err: err}
		}
		pkts, err := dec.feed(data)
		if err != nil {
			conn.Close(websocket.StatusProtocolError, "")
			return &Error{Op: "handshake", Err: err}
		}
		for _, p := range pkts {
			if p.typ == packetHandshake {
				if err := json.Unmarshal(p.data, &resp); err != nil {
					conn.Close(websocket.StatusProtocolError, "")
					return &Error{Op: "handshake", Err: err}
				}
				gotReply = true
			}
		}
	}
	if resp.Code != protocol.StatusOK {
		conn.Close(websocket.StatusPolicyViolation, "")
		return &Error{Op: "handshake", Err: fmt.Errorf("server refused handshake: code %d", resp.Code)}
	}
	if err := conn.Write(ctx, websocket.MessageBinary, encodePacket(packetHandshakeAck, nil)); err != nil {
		conn.Close(websocket.StatusProtocolError, "")
		return &Error{Op: "handshake", Err: err}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	hb := time.Duration(resp.Sys.Heartbeat * float64(time.Second))

	s.mu.Lock()
	s.conn = conn
	s.stop = cancel
	s.heartbeat = hb
	s.mu.Unlock()

	go s.readLoop(runCtx, conn, dec)
	if hb > 0 {
		go s.heartbeatLoop(runCtx, conn, hb)
	}
	s.log.Info().Str("url", s.url).Dur("heartbeat", hb).Msg("session established")
	return nil
}

// Request sends a named remote call and waits for the matching
// response envelope. Callers own retry policy; there is none here.
func (s *Session) Request(ctx context.Context, route string, payload any) (*protocol.Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Op: route, Err: err}
	}

	s.mu.Lock()
	if !s.established || s.conn == nil {
		s.mu.Unlock()
		return nil, &Error{Op: route, Err: ErrNotConnected}
	}
	conn := s.conn
	s.nextID++
	id := s.nextID
	ch := make(chan callResult, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	msg, err := encodeMessage(message{typ: msgRequest, id: id, route: route, data: body})
	if err != nil {
		s.dropPending(id)
		return nil, &Error{Op: route, Err: err}
	}
	if err := conn.Write(ctx, websocket.MessageBinary, encodePacket(packetData, msg)); err != nil {
		s.dropPending(id)
		s.teardown(err)
		return nil, &Error{Op: route, Err: err}
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, &Error{Op: route, Err: res.err}
		}
		return res.env, nil
	case <-ctx.Done():
		s.dropPending(id)
		return nil, &Error{Op: route, Err: ctx.Err()}
	}
}

// Close tears the connection down and fails outstanding requests.
func (s *Session) Close() {
	s.teardown(ErrClosed)
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn, dec *packetDecoder) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.teardown(err)
			return
		}
		pkts, err := dec.feed(data)
		if err != nil {
			s.teardown(err)
			return
		}
		for _, p := range pkts {
			switch p.typ {
			case packetData:
				s.handleData(p.data)
			case packetHeartbeat:
				// server-side ack, nothing to do
			case packetKick:
				s.log.Warn().Msg("kicked by server")
				s.teardown(ErrKicked)
				return
			}
		}
	}
}

func (s *Session) handleData(data []byte) {
	m, err := decodeMessage(data)
	if err != nil {
		s.log.Debug().Err(err).Msg("undecodable message")
		return
	}
	switch m.typ {
	case msgResponse:
		s.mu.Lock()
		ch := s.pending[m.id]
		delete(s.pending, m.id)
		s.mu.Unlock()
		if ch == nil {
			s.log.Debug().Uint64("id", m.id).Msg("response without pending request")
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(m.data, &env); err != nil {
			ch <- callResult{err: err}
			return
		}
		ch <- callResult{env: &env}
	case msgPush:
		if s.onPush != nil {
			s.onPush(m.route, m.data)
			return
		}
		s.log.Debug().Str("route", m.route).Msg("push ignored")
	}
}

func (s *Session) heartbeatLoop(ctx context.Context, conn *websocket.Conn, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := conn.Write(ctx, websocket.MessageBinary, encodePacket(packetHeartbeat, nil)); err != nil {
				s.teardown(err)
				return
			}
		}
	}
}

func (s *Session) dropPending(id uint64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func (s *Session) teardown(cause error) {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	wasUp := s.established
	s.established = false
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	for id, ch := range s.pending {
		ch <- callResult{err: ErrClosed}
		delete(s.pending, id)
	}
	s.mu.Unlock()

	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "")
	}
	if wasUp && !errors.Is(cause, ErrClosed) {
		s.log.Warn().Err(cause).Msg("session lost")
	}
}
