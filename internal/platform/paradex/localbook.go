package paradex

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

// MaxBookDepth is the number of levels kept per side of the derived view.
const MaxBookDepth = 20

// LocalBook is the private reconciliation state for one Paradex connection
// attempt. It maps exact price text to exact size text, one map per side.
// Keys are the verbatim wire text: "100" and "100.0" are distinct keys, and
// deletes only remove the exact text they name. The venue sends each price
// with a stable representation, so this never produces duplicate levels in
// practice, and it guarantees no rounding happens before keying.
//
// A LocalBook must be built fresh for every connection attempt; reconciled
// state is never trusted across a reconnect, and the derived view is only
// meaningful after the first snapshot arrives.
type LocalBook struct {
	bids map[string]string
	asks map[string]string
}

// NewLocalBook returns an empty reconciliation state.
func NewLocalBook() *LocalBook {
	return &LocalBook{
		bids: make(map[string]string),
		asks: make(map[string]string),
	}
}

// Apply routes a book message into the state. Snapshots discard everything
// and repopulate from the insert list; deltas apply deletes, then updates,
// then inserts, in exactly that order. It returns false for an unknown
// update type, leaving the state unchanged.
func (b *LocalBook) Apply(data *BookData) bool {
	switch data.UpdateType {
	case UpdateTypeSnapshot:
		b.applySnapshot(data)
		return true
	case UpdateTypeDelta:
		b.applyDelta(data)
		return true
	default:
		return false
	}
}

func (b *LocalBook) applySnapshot(data *BookData) {
	clear(b.bids)
	clear(b.asks)
	for _, lvl := range data.Inserts {
		b.upsert(lvl)
	}
}

func (b *LocalBook) applyDelta(data *BookData) {
	for _, lvl := range data.Deletes {
		b.remove(lvl)
	}
	for _, lvl := range data.Updates {
		b.upsert(lvl)
	}
	for _, lvl := range data.Inserts {
		b.upsert(lvl)
	}
}

// upsert writes price→size on the entry's side. Updates and inserts are
// deliberately identical: the wire distinguishes them but the reconciliation
// effect is the same.
func (b *LocalBook) upsert(lvl WireLevel) {
	b.side(lvl.Side)[lvl.Price] = lvl.Size
}

// remove drops the exact price from the entry's side. Removing an absent
// price is a no-op.
func (b *LocalBook) remove(lvl WireLevel) {
	delete(b.side(lvl.Side), lvl.Price)
}

func (b *LocalBook) side(side string) map[string]string {
	if side == "BUY" {
		return b.bids
	}
	return b.asks
}

// Levels materializes the published view: bids in descending price order,
// asks ascending, both truncated to depth. Order counts are always 0 since
// the venue does not report them.
func (b *LocalBook) Levels(depth int) (bids, asks []domain.Level) {
	return sortedSide(b.bids, depth, true), sortedSide(b.asks, depth, false)
}

func sortedSide(side map[string]string, depth int, descending bool) []domain.Level {
	type entry struct {
		price string
		size  string
		num   decimal.Decimal
	}
	entries := make([]entry, 0, len(side))
	for px, sz := range side {
		entries = append(entries, entry{price: px, size: sz, num: parsePrice(px)})
	}

	sort.Slice(entries, func(i, j int) bool {
		if descending {
			return entries[i].num.GreaterThan(entries[j].num)
		}
		return entries[i].num.LessThan(entries[j].num)
	})

	if depth > 0 && len(entries) > depth {
		entries = entries[:depth]
	}

	out := make([]domain.Level, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.Level{Price: e.price, Size: e.size, Count: 0})
	}
	return out
}

// parsePrice orders levels numerically while the map keys stay exact text.
// Unparsable text sorts as zero, matching the zero-coercion the float
// accessors apply elsewhere.
func parsePrice(text string) decimal.Decimal {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}
