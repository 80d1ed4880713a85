package domain

// MergedLevel is a single row of the cross-venue book, tagged with the venue
// it came from. Merged levels are ephemeral: rebuilt on every merge call.
type MergedLevel struct {
	Price    float64  `json:"price"`
	Size     float64  `json:"size"`
	Exchange Exchange `json:"exchange"`
}

// Notional returns price × size for the merged level.
func (l MergedLevel) Notional() float64 {
	return l.Price * l.Size
}

// Signals are the derived cross-venue metrics. Pointer fields are nil when
// there is not enough data on either venue to compute them; an empty Exchange
// means no venue currently holds that side.
type Signals struct {
	// CrossSpread is the overall best ask minus the overall best bid across
	// both venues. Negative means the market is crossed between venues.
	CrossSpread    *float64 `json:"cross_spread"`
	CrossSpreadPct *float64 `json:"cross_spread_pct"`

	// BestBidExchange and BestAskExchange name the venue with the superior
	// top-of-book price. Ties go to Hyperliquid.
	BestBidExchange Exchange `json:"best_bid_exchange"`
	BestAskExchange Exchange `json:"best_ask_exchange"`

	// LiquidityImbalance is (bid_usd − ask_usd) / (bid_usd + ask_usd) over
	// the merged top-N, in [-1, 1]. Nil when both totals are zero.
	LiquidityImbalance *float64 `json:"liquidity_imbalance"`

	// TotalBidUSD and TotalAskUSD are Σ price×size over the merged,
	// depth-truncated sides.
	TotalBidUSD float64 `json:"total_bid_usd"`
	TotalAskUSD float64 `json:"total_ask_usd"`
}

// MergedBook is the cross-venue view produced by one merge call: the two
// venue books combined, truncated to the display depth, plus signals. It owns
// its Signals value and holds no history.
type MergedBook struct {
	Bids    []MergedLevel `json:"bids"`
	Asks    []MergedLevel `json:"asks"`
	Signals Signals       `json:"signals"`
}
