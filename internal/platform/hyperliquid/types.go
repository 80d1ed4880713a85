package hyperliquid

import (
	"encoding/json"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

// SubscribeRequest is the outbound subscribe command.
type SubscribeRequest struct {
	Method       string       `json:"method"`
	Subscription Subscription `json:"subscription"`
}

// Subscription names the channel and coin to subscribe to.
type Subscription struct {
	Type string `json:"type"`
	Coin string `json:"coin"`
}

// NewL2BookSubscribe builds the subscribe command for the l2Book channel.
func NewL2BookSubscribe(coin string) SubscribeRequest {
	return SubscribeRequest{
		Method:       "subscribe",
		Subscription: Subscription{Type: "l2Book", Coin: coin},
	}
}

// Envelope is the top-level inbound frame: a channel name plus an opaque
// payload whose shape depends on the channel.
type Envelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// WireLevel is a single price level as sent on the wire.
type WireLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

// WireBook is the l2Book channel payload. Levels holds bids first, asks
// second; Time is the venue event time in milliseconds.
type WireBook struct {
	Coin   string         `json:"coin"`
	Levels [2][]WireLevel `json:"levels"`
	Time   int64          `json:"time"`
}

// ToDomainLevel converts a wire level to the normalized form.
func (l WireLevel) ToDomainLevel() domain.Level {
	return domain.Level{Price: l.Px, Size: l.Sz, Count: l.N}
}
