package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// handshakeTimeout bounds the WebSocket dial.
	handshakeTimeout = 15 * time.Second
)

// Session is one live WebSocket connection to the Hyperliquid feed. The
// outbound half is shared between the subscribe call and the heartbeat
// goroutine, so every write is serialized behind writeMu.
type Session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Dial opens a WebSocket connection to the given endpoint.
func Dial(ctx context.Context, wsURL string) (*Session, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: connect %s: %w", wsURL, err)
	}
	return &Session{conn: conn}, nil
}

// Subscribe sends the l2Book subscribe command for the given coin.
func (s *Session) Subscribe(coin string) error {
	if err := s.writeJSON(NewL2BookSubscribe(coin)); err != nil {
		return fmt.Errorf("hyperliquid: subscribe l2Book %s: %w", coin, err)
	}
	return nil
}

// Ping sends the venue keep-alive frame.
func (s *Session) Ping() error {
	return s.writeText([]byte(`{"method":"ping"}`))
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
			return nil, fmt.Errorf("hyperliquid: read: %w", err)
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
	return s.writeText(data)
}

func (s *Session) writeText(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// IsPong reports whether the raw frame is the venue's keep-alive
// acknowledgement. Hyperliquid pongs are detected by substring rather than a
// full parse.
func IsPong(raw []byte) bool {
	return bytes.Contains(raw, []byte(`"pong"`))
}
