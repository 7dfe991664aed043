package session

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"realmshard/pkg/entity"
	"realmshard/pkg/instance"
	"realmshard/pkg/validation"
)

// maxFrameBytes caps an inbound message's raw size, per spec §4.6.
const maxFrameBytes = 16 * 1024

// readDeadline is refreshed on every pong; a silent connection is dropped
// after this long.
const readDeadline = 60 * time.Second

// Session owns one client WebSocket connection: its auth/character state,
// its two rate limiters, and its vault scratch buffer. Fields touched by
// both the read loop and the instance event router are guarded by mu.
type Session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	world   World
	logger  *logrus.Entry

	validator *validation.InputValidator

	inputLimiter *rate.Limiter
	authLimiter  *rate.Limiter

	mu          sync.RWMutex
	token       string
	accountID   string
	username    string
	playerID    entity.ID
	characterID string
	inst        *instance.Instance
	vaultOpen   bool
	vaultBuffer []string

	closed bool
}

// NewSession wraps an accepted WebSocket connection.
func NewSession(conn *websocket.Conn, world World, validator *validation.InputValidator, logger *logrus.Entry) *Session {
	conn.SetReadLimit(maxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	return &Session{
		conn:         conn,
		world:        world,
		logger:       logger,
		validator:    validator,
		inputLimiter: newInputLimiter(),
		authLimiter:  newAuthLimiter(),
		playerID:     entity.NilID,
	}
}

// Send frames and writes an outbound message. Safe for concurrent use; the
// write mutex serializes access to the single underlying connection, since
// gorilla/websocket forbids concurrent writers.
func (s *Session) Send(msgType string, data interface{}) error {
	frame, err := encodeFrame(msgType, data)
	if err != nil {
		s.logger.WithError(err).WithField("type", msgType).Error("failed to encode outbound frame")
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Close tears down the connection and, if the session still has a
// resident player, detaches and saves it.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	inst, playerID := s.inst, s.playerID
	accountID, vaultOpen := s.accountID, s.vaultOpen
	s.mu.Unlock()

	if inst != nil && !playerID.IsNil() {
		s.world.Detach(playerID)
		s.world.Leave(inst, playerID)
	}
	if vaultOpen {
		s.world.CloseVault(accountID)
	}

	_ = s.conn.Close()
}

// IsClosed reports whether Close has already run.
func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// ReadLoop blocks reading frames until the connection errors or closes,
// dispatching each to Dispatch. Callers run this in its own goroutine.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		kind, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage && kind != websocket.TextMessage {
			continue
		}

		msgType, data, err := decodeFrame(raw)
		if err != nil {
			s.sendError("malformed message")
			continue
		}

		if isAuthMessage(msgType) && !s.authLimiter.Allow() {
			s.sendError("too many authentication attempts")
			continue
		}
		if !isAuthMessage(msgType) && !s.inputLimiter.Allow() {
			continue
		}

		if err := s.validator.ValidateMessage(msgType, data, int64(len(raw))); err != nil {
			s.sendError(err.Error())
			continue
		}

		s.Dispatch(msgType, data)
	}
}

func isAuthMessage(msgType string) bool {
	switch msgType {
	case "auth", "register", "authToken":
		return true
	default:
		return false
	}
}

func (s *Session) sendError(message string) {
	_ = s.Send("error", map[string]interface{}{"message": message})
}

func (s *Session) playerAndInstance() (*entity.Player, *instance.Instance, bool) {
	s.mu.RLock()
	inst, playerID := s.inst, s.playerID
	s.mu.RUnlock()

	if inst == nil || playerID.IsNil() {
		return nil, nil, false
	}
	p := inst.Player(playerID)
	if p == nil {
		return nil, nil, false
	}
	return p, inst, true
}
