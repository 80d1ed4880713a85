package paradex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(levels ...WireLevel) *BookData {
	return &BookData{UpdateType: UpdateTypeSnapshot, Inserts: levels}
}

func bid(price, size string) WireLevel  { return WireLevel{Price: price, Size: size, Side: "BUY"} }
func ask(price, size string) WireLevel  { return WireLevel{Price: price, Size: size, Side: "SELL"} }

func TestSnapshotPopulatesBothSides(t *testing.T) {
	lb := NewLocalBook()
	require.True(t, lb.Apply(snapshot(
		bid("100.5", "1"), bid("100.0", "2"),
		ask("101.0", "3"), ask("101.5", "4"),
	)))

	bids, asks := lb.Levels(MaxBookDepth)
	require.Len(t, bids, 2)
	require.Len(t, asks, 2)
	assert.Equal(t, "100.5", bids[0].Price)
	assert.Equal(t, "100.0", bids[1].Price)
	assert.Equal(t, "101.0", asks[0].Price)
	assert.Equal(t, "101.5", asks[1].Price)
	assert.Zero(t, bids[0].Count)
}

func TestSnapshotDiscardsAllPriorState(t *testing.T) {
	lb := NewLocalBook()
	lb.Apply(snapshot(bid("100", "1"), bid("99", "1"), ask("101", "1")))
	lb.Apply(snapshot(bid("200", "5")))

	bids, asks := lb.Levels(MaxBookDepth)
	require.Len(t, bids, 1)
	assert.Equal(t, "200", bids[0].Price)
	assert.Equal(t, "5", bids[0].Size)
	assert.Empty(t, asks)
}

func TestDeltaAppliesDeleteThenUpdateThenInsert(t *testing.T) {
	lb := NewLocalBook()
	lb.Apply(snapshot(bid("100", "1")))

	// All three actions target the same price within one delta. The insert
	// must win: delete first, then update, then insert.
	lb.Apply(&BookData{
		UpdateType: UpdateTypeDelta,
		Deletes:    []WireLevel{bid("100", "0")},
		Updates:    []WireLevel{bid("100", "7")},
		Inserts:    []WireLevel{bid("100", "9")},
	})

	bids, _ := lb.Levels(MaxBookDepth)
	require.Len(t, bids, 1)
	assert.Equal(t, "9", bids[0].Size)
}

func TestDeltaDeleteOfAbsentPriceIsNoOp(t *testing.T) {
	lb := NewLocalBook()
	lb.Apply(snapshot(bid("100", "1")))
	lb.Apply(&BookData{
		UpdateType: UpdateTypeDelta,
		Deletes:    []WireLevel{bid("99.5", "0"), ask("500", "0")},
	})

	bids, asks := lb.Levels(MaxBookDepth)
	require.Len(t, bids, 1)
	assert.Equal(t, "100", bids[0].Price)
	assert.Empty(t, asks)
}

func TestDeltaUpdateAndInsertAreBothUpserts(t *testing.T) {
	lb := NewLocalBook()
	lb.Apply(snapshot(bid("100", "1")))

	// An "update" for an absent price creates the level, and an "insert" for
	// a present price overwrites it.
	lb.Apply(&BookData{
		UpdateType: UpdateTypeDelta,
		Updates:    []WireLevel{bid("99", "4")},
		Inserts:    []WireLevel{bid("100", "6")},
	})

	bids, _ := lb.Levels(MaxBookDepth)
	require.Len(t, bids, 2)
	assert.Equal(t, "100", bids[0].Price)
	assert.Equal(t, "6", bids[0].Size)
	assert.Equal(t, "99", bids[1].Price)
	assert.Equal(t, "4", bids[1].Size)
}

func TestUnknownUpdateTypeLeavesStateUnchanged(t *testing.T) {
	lb := NewLocalBook()
	lb.Apply(snapshot(bid("100", "1")))

	applied := lb.Apply(&BookData{UpdateType: "x", Inserts: []WireLevel{bid("50", "5")}})
	assert.False(t, applied)

	bids, _ := lb.Levels(MaxBookDepth)
	require.Len(t, bids, 1)
	assert.Equal(t, "100", bids[0].Price)
}

func TestLevelsSortedAndTruncated(t *testing.T) {
	lb := NewLocalBook()
	var levels []WireLevel
	for i := 0; i < 30; i++ {
		levels = append(levels,
			bid(fmt.Sprintf("%d", 1000+i), "1"),
			ask(fmt.Sprintf("%d", 2000+i), "1"),
		)
	}
	lb.Apply(snapshot(levels...))

	bids, asks := lb.Levels(MaxBookDepth)
	require.Len(t, bids, MaxBookDepth)
	require.Len(t, asks, MaxBookDepth)

	// Bids strictly descending, asks strictly ascending.
	for i := 1; i < len(bids); i++ {
		assert.Greater(t, bids[i-1].PriceFloat(), bids[i].PriceFloat())
	}
	for i := 1; i < len(asks); i++ {
		assert.Less(t, asks[i-1].PriceFloat(), asks[i].PriceFloat())
	}
	assert.Equal(t, "1029", bids[0].Price)
	assert.Equal(t, "2000", asks[0].Price)
}

func TestPriceKeysAreExactText(t *testing.T) {
	lb := NewLocalBook()
	// "100" and "100.0" are numerically equal but distinct wire texts; a
	// delete for one must not remove the other.
	lb.Apply(snapshot(bid("100", "1"), bid("100.0", "2")))
	lb.Apply(&BookData{
		UpdateType: UpdateTypeDelta,
		Deletes:    []WireLevel{bid("100.0", "0")},
	})

	bids, _ := lb.Levels(MaxBookDepth)
	require.Len(t, bids, 1)
	assert.Equal(t, "100", bids[0].Price)
	assert.Equal(t, "1", bids[0].Size)
}

func TestUnparsablePriceSortsAsZero(t *testing.T) {
	lb := NewLocalBook()
	lb.Apply(snapshot(bid("garbage", "1"), bid("50", "1")))

	bids, _ := lb.Levels(MaxBookDepth)
	require.Len(t, bids, 2)
	// The phantom level survives (zero-coercion is the documented behavior)
	// but sorts to the bottom of the bid side.
	assert.Equal(t, "50", bids[0].Price)
	assert.Equal(t, "garbage", bids[1].Price)
	assert.Equal(t, 0.0, bids[1].PriceFloat())
}

func TestTimestampNormalizedToMilliseconds(t *testing.T) {
	d := BookData{LastUpdatedAt: 1700000000123456}
	assert.Equal(t, int64(1700000000123), d.LastUpdatedMs())
}
