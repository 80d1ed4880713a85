package paradex

import (
	"encoding/json"
	"fmt"
)

// Update types carried in BookData.UpdateType.
const (
	UpdateTypeSnapshot = "s"
	UpdateTypeDelta    = "d"
)

// Request is an outbound JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  Params `json:"params"`
	ID      uint64 `json:"id"`
}

// Params is the request parameter object. Channel is empty for heartbeats.
type Params struct {
	Channel string `json:"channel,omitempty"`
}

// NewSubscribeRequest builds the subscribe request for the order-book channel
// of a market. The channel encodes a fixed snapshot cadence.
func NewSubscribeRequest(market string, id uint64) Request {
	return Request{
		JSONRPC: "2.0",
		Method:  "subscribe",
		Params:  Params{Channel: fmt.Sprintf("order_book.%s.snapshot@15@100ms", market)},
		ID:      id,
	}
}

// NewHeartbeatRequest builds a heartbeat request with the given id.
func NewHeartbeatRequest(id uint64) Request {
	return Request{
		JSONRPC: "2.0",
		Method:  "heartbeat",
		ID:      id,
	}
}

// Frame is a generic inbound JSON-RPC 2.0 frame. Exactly one of Result,
// Error, or Method/Params is meaningful: a Result is an ack for an earlier
// request, an Error is a protocol-level rejection, and Method "subscription"
// carries a book push in Params.
type Frame struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
	ID     *uint64         `json:"id"`
}

// SubscriptionParams is the params object of a subscription push.
type SubscriptionParams struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// WireLevel is one insert/update/delete entry. Side is "BUY" or "SELL";
// Price and Size are exact decimal text.
type WireLevel struct {
	Price string `json:"price"`
	Side  string `json:"side"`
	Size  string `json:"size"`
}

// BookData is the data payload of an order-book subscription push. A
// snapshot ("s") carries the full book in Inserts; a delta ("d") carries
// incremental Deletes, Updates, and Inserts. LastUpdatedAt is in
// microseconds.
type BookData struct {
	Inserts       []WireLevel `json:"inserts"`
	Deletes       []WireLevel `json:"deletes"`
	Updates       []WireLevel `json:"updates"`
	LastUpdatedAt int64       `json:"last_updated_at"`
	Market        string      `json:"market"`
	UpdateType    string      `json:"update_type"`
}

// LastUpdatedMs returns the venue event time normalized to milliseconds.
func (d *BookData) LastUpdatedMs() int64 {
	return d.LastUpdatedAt / 1000
}
