package net

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ErrBackpressure is returned by Send when the client cannot keep up.
var ErrBackpressure = errors.New("output queue full")

// ErrClosed is returned by Send after the session has been closed.
var ErrClosed = errors.New("session closed")

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn *websocket.Conn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // game loop reads frames from here
	OutQueue chan []byte // writer goroutine reads from here

	IP       string
	PlayerID string // world entity id once HELLO succeeds (game loop only)
	Name     string

	writeTimeout time.Duration
	readTimeout  time.Duration
	maxMessage   int64
	onClose      func(*Session)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

// SessionOptions sizes the queues and deadlines of a session.
type SessionOptions struct {
	InQueueSize    int
	OutQueueSize   int
	MaxMessageSize int64
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
}

func NewSession(conn *websocket.Conn, id uint64, opts SessionOptions, log *zap.Logger) *Session {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = writeWait
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = pongWait
	}
	s := &Session{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan []byte, opts.InQueueSize),
		OutQueue:     make(chan []byte, opts.OutQueueSize),
		IP:           conn.RemoteAddr().String(),
		writeTimeout: opts.WriteTimeout,
		readTimeout:  opts.ReadTimeout,
		maxMessage:   opts.MaxMessageSize,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateConnected))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readPump()
	go s.writePump()
}

// Send encodes one flush worth of messages as a single frame and hands it to
// the writer. Called only from the game loop. A full queue disconnects the
// client.
func (s *Session) Send(batch []packet.Message) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(batch) == 0 {
		return nil
	}
	data, err := packet.EncodeBatch(batch)
	if err != nil {
		return err
	}
	select {
	case s.OutQueue <- data:
		return nil
	default:
		s.log.Warn("output queue full, dropping slow client")
		s.Close()
		return ErrBackpressure
	}
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed once the session shuts down.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readPump runs in its own goroutine and pushes text frames onto InQueue
// for the game loop to consume.
func (s *Session) readPump() {
	defer s.Close()

	if s.maxMessage > 0 {
		s.conn.SetReadLimit(s.maxMessage)
	}
	s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	})

	for {
		kind, payload, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))

		// Block until InQueue has space or the session closes. Dropping
		// frames would desync the client's position.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// writePump runs in its own goroutine. It writes queued frames and keeps the
// connection alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case data := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeCh:
			s.conn.SetWriteDeadline(time.Now().Add(time.Second))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
