package hyperliquid

import (
	"encoding/json"
	"fmt"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

// MaxBookDepth is the number of levels kept per side of the normalized book.
const MaxBookDepth = 20

// BookUpdate is a fully normalized l2Book message, ready to replace the
// published book's sides. Hyperliquid re-sends the complete top-of-book on
// every message, so no state is carried between updates.
type BookUpdate struct {
	Coin   string
	Bids   []domain.Level
	Asks   []domain.Level
	TimeMs int64
}

// ParseBook decodes an l2Book payload and converts it to a BookUpdate,
// truncating each side to MaxBookDepth. Sides shorter than the depth are
// returned as-is, without padding.
func ParseBook(data json.RawMessage) (*BookUpdate, error) {
	var wire WireBook
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode l2Book payload: %w", err)
	}
	return &BookUpdate{
		Coin:   wire.Coin,
		Bids:   convertSide(wire.Levels[0]),
		Asks:   convertSide(wire.Levels[1]),
		TimeMs: wire.Time,
	}, nil
}

func convertSide(side []WireLevel) []domain.Level {
	if len(side) > MaxBookDepth {
		side = side[:MaxBookDepth]
	}
	out := make([]domain.Level, 0, len(side))
	for _, l := range side {
		out = append(out, l.ToDomainLevel())
	}
	return out
}
