package paradex

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 15 * time.Second

	// subscribeRequestID is the JSON-RPC id used for the single subscribe
	// request; heartbeat ids start above it so acks are distinguishable in
	// debug logs.
	subscribeRequestID = 1
	firstHeartbeatID   = 100
)

// Session is one live WebSocket connection to the Paradex JSON-RPC feed.
// The outbound half is shared between the subscribe call and the heartbeat
// goroutine, so every write is serialized behind writeMu.
type Session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	hbID uint64
}

// Dial opens a WebSocket connection to the given endpoint.
func Dial(ctx context.Context, wsURL string) (*Session, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("paradex: connect %s: %w", wsURL, err)
	}
	return &Session{conn: conn, hbID: firstHeartbeatID}, nil
}

// Subscribe sends the order-book subscribe request for the given market.
func (s *Session) Subscribe(market string) error {
	if err := s.writeJSON(NewSubscribeRequest(market, subscribeRequestID)); err != nil {
		return fmt.Errorf("paradex: subscribe order_book %s: %w", market, err)
	}
	return nil
}

// Heartbeat sends a heartbeat request with the next incrementing id. Only the
// heartbeat goroutine calls this, so the id counter needs no extra locking.
func (s *Session) Heartbeat() error {
	id := s.hbID
	s.hbID++
	if err := s.writeJSON(NewHeartbeatRequest(id)); err != nil {
		return fmt.Errorf("paradex: heartbeat id=%d: %w", id, err)
	}
	return nil
}

// ReadFrame returns the next inbound text frame. Non-text frames are skipped.
// A close frame from the server is reported as domain.ErrServerClose.
func (s *Session) ReadFrame() ([]byte, error) {
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, domain.ErrServerClose
			}
			return nil, fmt.Errorf("paradex: read: %w", err)
		}
		if msgType == websocket.TextMessage {
			return data, nil
		}
	}
}

// Close tears down the connection. Safe to call from a goroutine other than
// the reader; a blocked ReadFrame returns with an error.
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// ParseFrame decodes an inbound JSON-RPC frame envelope.
func ParseFrame(raw []byte) (*Frame, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("paradex: decode frame: %w", err)
	}
	return &frame, nil
}

// ParseBookData extracts the BookData payload from a subscription push frame.
func ParseBookData(frame *Frame) (*BookData, error) {
	if len(frame.Params) == 0 {
		return nil, fmt.Errorf("paradex: subscription push without params")
	}
	var params SubscriptionParams
	if err := json.Unmarshal(frame.Params, &params); err != nil {
		return nil, fmt.Errorf("paradex: decode subscription params: %w", err)
	}
	if len(params.Data) == 0 {
		return nil, fmt.Errorf("paradex: subscription push without data")
	}
	var data BookData
	if err := json.Unmarshal(params.Data, &data); err != nil {
		return nil, fmt.Errorf("paradex: decode book data: %w", err)
	}
	return &data, nil
}
