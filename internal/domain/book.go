package domain

import "strconv"

// Exchange identifies one of the two supported trading venues.
type Exchange string

const (
	ExchangeHyperliquid Exchange = "hyperliquid"
	ExchangeParadex     Exchange = "paradex"
)

// Label returns the human-readable venue name.
func (e Exchange) Label() string {
	switch e {
	case ExchangeHyperliquid:
		return "Hyperliquid"
	case ExchangeParadex:
		return "Paradex"
	default:
		return string(e)
	}
}

// Short returns the abbreviated venue tag used in rendered output.
func (e Exchange) Short() string {
	switch e {
	case ExchangeHyperliquid:
		return "HL"
	case ExchangeParadex:
		return "PDX"
	default:
		return "?"
	}
}

// Level is one normalized price level. Price and Size keep the exact text the
// venue sent so no precision is lost before display; Count is the number of
// resting orders at the price, 0 when the venue does not report it.
//
// A Level is never mutated after construction; book updates replace levels
// wholesale.
type Level struct {
	Price string `json:"price"`
	Size  string `json:"size"`
	Count int    `json:"count"`
}

// PriceFloat converts the price text to a float64, returning 0 when the text
// does not parse.
func (l Level) PriceFloat() float64 {
	v, err := strconv.ParseFloat(l.Price, 64)
	if err != nil {
		return 0
	}
	return v
}

// SizeFloat converts the size text to a float64, returning 0 when the text
// does not parse.
func (l Level) SizeFloat() float64 {
	v, err := strconv.ParseFloat(l.Size, 64)
	if err != nil {
		return 0
	}
	return v
}

// Notional returns price × size for the level.
func (l Level) Notional() float64 {
	return l.PriceFloat() * l.SizeFloat()
}

// OrderBook is the normalized per-venue book state. Bids are sorted by price
// descending and asks ascending; neither side exceeds the feed's top-N depth.
// An empty side is valid and means no resting liquidity, not an error.
type OrderBook struct {
	Exchange     Exchange `json:"exchange"`
	Symbol       string   `json:"symbol"`
	Bids         []Level  `json:"bids"`
	Asks         []Level  `json:"asks"`
	LastUpdateMs int64    `json:"last_update_ms"`
	Connected    bool     `json:"connected"`
	MessageCount int64    `json:"message_count"`
}

// NewOrderBook returns the empty initial state for a venue: no levels,
// disconnected, zero message count.
func NewOrderBook(exchange Exchange, symbol string) OrderBook {
	return OrderBook{
		Exchange: exchange,
		Symbol:   symbol,
	}
}

// BestBid returns the top-of-book bid price. The second return is false when
// the bid side is empty.
func (b *OrderBook) BestBid() (float64, bool) {
	if len(b.Bids) == 0 {
		return 0, false
	}
	return b.Bids[0].PriceFloat(), true
}

// BestAsk returns the top-of-book ask price. The second return is false when
// the ask side is empty.
func (b *OrderBook) BestAsk() (float64, bool) {
	if len(b.Asks) == 0 {
		return 0, false
	}
	return b.Asks[0].PriceFloat(), true
}

// Mid returns the midpoint of the best bid and ask, false when either side is
// empty.
func (b *OrderBook) Mid() (float64, bool) {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Spread returns best ask minus best bid, false when either side is empty.
func (b *OrderBook) Spread() (float64, bool) {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return ask - bid, true
}

// SpreadPct returns the spread as a percentage of the mid price, false when
// either side is empty or the mid is not positive.
func (b *OrderBook) SpreadPct() (float64, bool) {
	spread, okS := b.Spread()
	mid, okM := b.Mid()
	if !okS || !okM || mid <= 0 {
		return 0, false
	}
	return spread / mid * 100, true
}
