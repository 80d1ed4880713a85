// Package render produces the plain-text dashboard printed by the consumer
// loop: per-venue books side by side, the merged cross-venue ladder, and the
// derived signals.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

const colWidth = 34

// Board renders the full dashboard for one tick. depth caps the number of
// rows shown per side; the merged ladder is expected to already be truncated
// by the caller.
func Board(hl, pdx domain.OrderBook, merged *domain.MergedBook, depth int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  |  %s\n", venueHeader(hl), venueHeader(pdx))
	fmt.Fprintf(&b, "%-*s  |  %-*s\n", colWidth, venueStats(hl), colWidth, venueStats(pdx))
	b.WriteString(strings.Repeat("-", colWidth*2+5))
	b.WriteByte('\n')

	left := venueRows(hl, depth)
	right := venueRows(pdx, depth)
	for i := 0; i < len(left) || i < len(right); i++ {
		fmt.Fprintf(&b, "%-*s  |  %-*s\n", colWidth, row(left, i), colWidth, row(right, i))
	}

	b.WriteByte('\n')
	writeMerged(&b, merged, depth)
	writeSignals(&b, merged.Signals)

	return b.String()
}

func venueHeader(book domain.OrderBook) string {
	status := "DOWN"
	if book.Connected {
		status = "LIVE"
	}
	age := "-"
	if book.LastUpdateMs > 0 {
		ms := time.Now().UnixMilli() - book.LastUpdateMs
		if ms < 0 {
			ms = 0
		}
		age = fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%-*s", colWidth, fmt.Sprintf("%s %s [%s] msgs=%d age=%s",
		book.Exchange.Label(), book.Symbol, status, book.MessageCount, age))
}

// venueStats formats the venue's own top-of-book metrics. A venue missing
// either side shows dashes rather than zeros.
func venueStats(book domain.OrderBook) string {
	mid, okMid := book.Mid()
	spread, okSpread := book.Spread()
	if !okMid || !okSpread {
		return "mid=-  spread=-"
	}
	s := fmt.Sprintf("mid=%.2f  spread=%.2f", mid, spread)
	if pct, ok := book.SpreadPct(); ok {
		s += fmt.Sprintf(" (%.4f%%)", pct)
	}
	return s
}

// venueRows formats one venue's book as "bid_size @ bid_px | ask_px @ ask_size"
// rows, best levels first.
func venueRows(book domain.OrderBook, depth int) []string {
	rows := make([]string, 0, depth)
	for i := 0; i < depth; i++ {
		var bid, ask string
		if i < len(book.Bids) {
			bid = fmt.Sprintf("%10s @ %-10s", book.Bids[i].Size, book.Bids[i].Price)
		} else {
			bid = fmt.Sprintf("%10s @ %-10s", "", "")
		}
		if i < len(book.Asks) {
			ask = fmt.Sprintf("%s @ %s", book.Asks[i].Price, book.Asks[i].Size)
		}
		rows = append(rows, strings.TrimRight(bid+" "+ask, " "))
	}
	return rows
}

func row(rows []string, i int) string {
	if i < len(rows) {
		return rows[i]
	}
	return ""
}

func writeMerged(b *strings.Builder, merged *domain.MergedBook, depth int) {
	b.WriteString("MERGED\n")
	for i := 0; i < depth; i++ {
		var bid, ask string
		if i < len(merged.Bids) {
			l := merged.Bids[i]
			bid = fmt.Sprintf("%3s %12.4f @ %-12.2f", l.Exchange.Short(), l.Size, l.Price)
		} else {
			bid = strings.Repeat(" ", 31)
		}
		if i < len(merged.Asks) {
			l := merged.Asks[i]
			ask = fmt.Sprintf("%-12.2f @ %12.4f %3s", l.Price, l.Size, l.Exchange.Short())
		}
		fmt.Fprintf(b, "%s | %s\n", bid, strings.TrimRight(ask, " "))
	}
	b.WriteByte('\n')
}

func writeSignals(b *strings.Builder, sig domain.Signals) {
	b.WriteString("SIGNALS  ")
	if sig.CrossSpread != nil {
		fmt.Fprintf(b, "spread=%.2f", *sig.CrossSpread)
		if sig.CrossSpreadPct != nil {
			fmt.Fprintf(b, " (%.4f%%)", *sig.CrossSpreadPct)
		}
	} else {
		b.WriteString("spread=-")
	}
	if sig.BestBidExchange != "" {
		fmt.Fprintf(b, "  best_bid=%s", sig.BestBidExchange.Short())
	}
	if sig.BestAskExchange != "" {
		fmt.Fprintf(b, "  best_ask=%s", sig.BestAskExchange.Short())
	}
	if sig.LiquidityImbalance != nil {
		fmt.Fprintf(b, "  imbalance=%+.3f", *sig.LiquidityImbalance)
	}
	fmt.Fprintf(b, "  bid_usd=%.0f  ask_usd=%.0f\n", sig.TotalBidUSD, sig.TotalAskUSD)
}
