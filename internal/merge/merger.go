// Package merge combines the two venues' latest books into one cross-venue
// view and computes the derived signals. Build is a pure function of two
// snapshots; it keeps no state between calls.
package merge

import (
	"sort"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

// Build merges two per-venue books into a depth-truncated cross-venue book
// with signals. The two snapshots may differ in wall-clock freshness; the
// merger accepts that skew rather than trying to synchronize venue clocks.
func Build(a, b *domain.OrderBook, depth int) *domain.MergedBook {
	bids := mergeSide(a.Bids, a.Exchange, b.Bids, b.Exchange, depth, true)
	asks := mergeSide(a.Asks, a.Exchange, b.Asks, b.Exchange, depth, false)

	return &domain.MergedBook{
		Bids:    bids,
		Asks:    asks,
		Signals: computeSignals(a, b, bids, asks),
	}
}

// mergeSide concatenates both venues' levels (first venue first), sorts by
// price, and truncates to depth. The sort is stable, so on an exact price tie
// the first venue's levels precede the second's; equal prices from different
// venues stay separate rows, never aggregated.
func mergeSide(aLevels []domain.Level, aEx domain.Exchange, bLevels []domain.Level, bEx domain.Exchange, depth int, descending bool) []domain.MergedLevel {
	all := make([]domain.MergedLevel, 0, len(aLevels)+len(bLevels))
	for _, l := range aLevels {
		all = append(all, domain.MergedLevel{Price: l.PriceFloat(), Size: l.SizeFloat(), Exchange: aEx})
	}
	for _, l := range bLevels {
		all = append(all, domain.MergedLevel{Price: l.PriceFloat(), Size: l.SizeFloat(), Exchange: bEx})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if descending {
			return all[i].Price > all[j].Price
		}
		return all[i].Price < all[j].Price
	})

	if depth > 0 && len(all) > depth {
		all = all[:depth]
	}
	return all
}

func computeSignals(a, b *domain.OrderBook, mergedBids, mergedAsks []domain.MergedLevel) domain.Signals {
	var sig domain.Signals

	aBid, aHasBid := a.BestBid()
	aAsk, aHasAsk := a.BestAsk()
	bBid, bHasBid := b.BestBid()
	bAsk, bHasAsk := b.BestAsk()

	// Top-of-book attribution per side. The comparison favours the
	// first-named venue on an exact tie; a missing side defers to the other
	// venue.
	switch {
	case aHasBid && bHasBid:
		if aBid >= bBid {
			sig.BestBidExchange = a.Exchange
		} else {
			sig.BestBidExchange = b.Exchange
		}
	case aHasBid:
		sig.BestBidExchange = a.Exchange
	case bHasBid:
		sig.BestBidExchange = b.Exchange
	}

	switch {
	case aHasAsk && bHasAsk:
		if aAsk <= bAsk {
			sig.BestAskExchange = a.Exchange
		} else {
			sig.BestAskExchange = b.Exchange
		}
	case aHasAsk:
		sig.BestAskExchange = a.Exchange
	case bHasAsk:
		sig.BestAskExchange = b.Exchange
	}

	// Cross spread: overall best ask minus overall best bid, each side taken
	// independently across venues. Negative means the market is crossed.
	bestBid, hasBid := maxOf(aBid, aHasBid, bBid, bHasBid)
	bestAsk, hasAsk := minOf(aAsk, aHasAsk, bAsk, bHasAsk)
	if hasBid && hasAsk {
		spread := bestAsk - bestBid
		mid := (bestBid + bestAsk) / 2
		pct := 0.0
		if mid > 0 {
			pct = spread / mid * 100
		}
		sig.CrossSpread = &spread
		sig.CrossSpreadPct = &pct
	}

	// Notional totals and imbalance over the merged, depth-truncated sides,
	// not the venues' raw depth.
	for _, l := range mergedBids {
		sig.TotalBidUSD += l.Notional()
	}
	for _, l := range mergedAsks {
		sig.TotalAskUSD += l.Notional()
	}
	if total := sig.TotalBidUSD + sig.TotalAskUSD; total > 0 {
		imbalance := (sig.TotalBidUSD - sig.TotalAskUSD) / total
		sig.LiquidityImbalance = &imbalance
	}

	return sig
}

func maxOf(a float64, aOK bool, b float64, bOK bool) (float64, bool) {
	switch {
	case aOK && bOK:
		return max(a, b), true
	case aOK:
		return a, true
	case bOK:
		return b, true
	default:
		return 0, false
	}
}

func minOf(a float64, aOK bool, b float64, bOK bool) (float64, bool) {
	switch {
	case aOK && bOK:
		return min(a, b), true
	case aOK:
		return a, true
	case bOK:
		return b, true
	default:
		return 0, false
	}
}
