package book

import (
	"github.com/tidwall/btree"
)

// levels is the ordered multiset of PriceLevel for one side of the book.
type levels = btree.BTreeG[*PriceLevel]

// indexEntry is what OrderIndex stores per live order: its side and a
// direct handle to the LevelEntry, which in turn carries a back-pointer to
// the owning PriceLevel. Together these give O(1) locate and O(level size)
// erase without rescanning the side's price index.
type indexEntry struct {
	side  Side
	entry *LevelEntry
}

// Book is the limit order book for a single instrument. It exclusively
// owns both the per-side price levels and the order index; the index must
// always be a bijection between live OrderIDs and live LevelEntries.
type Book struct {
	bids *levels
	asks *levels

	bestBid Price
	bestAsk Price
	mid     Price

	index map[OrderID]indexEntry

	trades TradeStats
	errors ErrorStats
}

// New returns an empty order book.
func New() *Book {
	return &Book{
		bids:  btree.NewBTreeG(bidLess),
		asks:  btree.NewBTreeG(askLess),
		index: make(map[OrderID]indexEntry),
	}
}

func (b *Book) sideLevels(s Side) *levels {
	if s == Bid {
		return b.bids
	}
	return b.asks
}

// BestPrice returns the top-of-book price for the given side, or 0 if the
// side is empty. 0 is also a legal price for a genuine resting order (see
// SPEC_FULL.md §15); this sentinel is carried over from the reference
// implementation unchanged.
func (b *Book) BestPrice(s Side) Price {
	if s == Bid {
		return b.bestBid
	}
	return b.bestAsk
}

// IsCrossed reports whether the best bid is at or above the best ask. When
// both sides are empty this compares 0 >= 0 and is therefore true — an
// observable quirk the trade-validation logic in Trade depends on, and
// which must be preserved.
func (b *Book) IsCrossed() bool {
	return b.bestBid >= b.bestAsk
}

// Midpoint is the arithmetic mean of the best bid and best ask. It is 0 if
// the book is crossed or if either side is empty.
func (b *Book) Midpoint() Price {
	return b.mid
}

// OrderCount returns the number of live, distinct orders resting on the
// given side.
func (b *Book) OrderCount(s Side) int {
	count := 0
	b.sideLevels(s).Scan(func(lvl *PriceLevel) bool {
		count += len(lvl.Entries)
		return true
	})
	return count
}

// VolumeAt sums the volume of every live entry on side s whose price
// exactly equals price.
func (b *Book) VolumeAt(s Side, price Price) Volume {
	lvl, ok := b.sideLevels(s).Get(&PriceLevel{Price: price})
	if !ok {
		return 0
	}
	return lvl.volume()
}

// OrderInPosition returns the position-th (0-indexed) entry in the side's
// ordered iteration (best first), or nil if position is out of range. Used
// by the generator to sample existing resting orders.
func (b *Book) OrderInPosition(s Side, position int) *LevelEntry {
	if position < 0 {
		return nil
	}
	var found *LevelEntry
	remaining := position
	b.sideLevels(s).Scan(func(lvl *PriceLevel) bool {
		if remaining < len(lvl.Entries) {
			found = lvl.Entries[remaining]
			return false
		}
		remaining -= len(lvl.Entries)
		return true
	})
	return found
}

// TradeStats returns a copy of the current running trade tape.
func (b *Book) TradeStats() TradeStats {
	return b.trades
}

// ErrorStats returns a copy of the current error counters.
func (b *Book) ErrorStats() ErrorStats {
	return b.errors
}

// Add inserts a new resting order. Returns false (and increments exactly
// one error counter) if order_id/price/volume is negative, or if order_id
// already exists anywhere in the book. On failure the book is left
// byte-identical to its pre-call state.
func (b *Book) Add(s Side, orderID OrderID, price Price, volume Volume) bool {
	if !b.checkValidity3(orderID, price, volume) {
		return false
	}
	if _, exists := b.index[orderID]; exists {
		b.errors.DuplicateOrderIDs++
		return false
	}

	sl := b.sideLevels(s)
	lvl, ok := sl.Get(&PriceLevel{Price: price})
	if !ok {
		lvl = &PriceLevel{Price: price, Side: s}
		sl.Set(lvl)
	}

	entry := &LevelEntry{OrderID: orderID, Price: price, Volume: volume}
	lvl.append(entry)
	b.index[orderID] = indexEntry{side: s, entry: entry}

	b.updateBestPrice(s)
	return true
}

// Remove erases the given order from the book. Returns false if order_id
// is invalid, unknown, or resting on the other side.
func (b *Book) Remove(s Side, orderID OrderID) bool {
	if !b.checkValidity1(orderID) {
		return false
	}

	idx, ok := b.index[orderID]
	if !ok {
		b.errors.RemovesWithoutOrder++
		return false
	}
	if idx.side != s {
		b.errors.RemovesWithoutOrder++
		return false
	}

	b.eraseEntry(idx)
	b.updateBestPrice(s)
	return true
}

// Modify applies a (possibly price-changing) update to an existing order.
// A new volume of 0 behaves exactly as Remove. Equal-price modifies
// preserve time priority; price-changing modifies forfeit it, landing at
// the tail of the new price's equal-price run (cancel + re-add semantics).
func (b *Book) Modify(s Side, orderID OrderID, newPrice Price, newVolume Volume) bool {
	if !b.checkValidity3(orderID, newPrice, newVolume) {
		return false
	}

	idx, ok := b.index[orderID]
	if !ok {
		b.errors.ModifiesWithoutOrder++
		return false
	}
	if idx.side != s {
		b.errors.ModifiesWithoutOrder++
		return false
	}

	if newVolume == 0 {
		b.eraseEntry(idx)
		b.updateBestPrice(s)
		return true
	}

	if idx.entry.Price == newPrice {
		idx.entry.Volume = newVolume
		return true
	}

	// Price change: cancel + re-add, forfeiting time priority.
	b.eraseEntry(idx)

	sl := b.sideLevels(s)
	lvl, ok := sl.Get(&PriceLevel{Price: newPrice})
	if !ok {
		lvl = &PriceLevel{Price: newPrice, Side: s}
		sl.Set(lvl)
	}
	entry := &LevelEntry{OrderID: orderID, Price: newPrice, Volume: newVolume}
	lvl.append(entry)
	b.index[orderID] = indexEntry{side: s, entry: entry}

	b.updateBestPrice(s)
	return true
}

// Trade records an observed trade against the book's running trade tape.
// Trades never mutate the book's resting orders; they are validated
// against the currently crossed slice. The counter name
// TradeWithoutOrder is historical: it also fires on an empty book (which
// reports crossed per IsCrossed's quirk) since no price can lie in a
// nonexistent crossed slice — treat it as "trade rejected, no matching
// book state".
func (b *Book) Trade(price Price, volume Volume) bool {
	if !b.IsCrossed() {
		b.errors.TradeWithoutOrder++
		return false
	}
	if price > b.bestBid || price < b.bestAsk {
		b.errors.TradeWithoutOrder++
		return false
	}
	if b.bids.Len() == 0 && b.asks.Len() == 0 {
		b.errors.TradeWithoutOrder++
		return false
	}

	if price == b.trades.LastTradePrice {
		b.trades.CumulativeVolume += volume
	} else {
		b.trades.LastTradePrice = price
		b.trades.CumulativeVolume = volume
	}
	return true
}

// eraseEntry removes a live entry (found via the order index) from its
// owning level and the index, deleting the level from the side's tree if
// it becomes empty. Does not recompute best price/midpoint — callers do
// that once after all structural changes for the call are done.
func (b *Book) eraseEntry(idx indexEntry) {
	lvl := idx.entry.level
	lvl.remove(idx.entry)
	if lvl.empty() {
		b.sideLevels(idx.side).Delete(&PriceLevel{Price: lvl.Price})
	}
	delete(b.index, idx.entry.OrderID)
}

// updateBestPrice recomputes BestPrice[side] from the side's tree, then
// recomputes the midpoint. Invariant 2 in spec.md §3 holds immediately
// after this returns.
func (b *Book) updateBestPrice(s Side) {
	sl := b.sideLevels(s)
	top, ok := sl.Min()
	var price Price
	if ok {
		price = top.Price
	}
	if s == Bid {
		b.bestBid = price
	} else {
		b.bestAsk = price
	}
	b.updateMidpoint()
}

func (b *Book) updateMidpoint() {
	if b.IsCrossed() {
		b.mid = 0
		return
	}
	if b.bestBid == 0 || b.bestAsk == 0 {
		b.mid = 0
		return
	}
	b.mid = b.bestBid + (b.bestAsk-b.bestBid)*0.5
}

func (b *Book) checkValidity3(orderID OrderID, price Price, volume Volume) bool {
	if orderID < 0 || price < 0 || volume < 0 {
		b.errors.InvalidInputs++
		return false
	}
	return true
}

func (b *Book) checkValidity1(orderID OrderID) bool {
	if orderID < 0 {
		b.errors.InvalidInputs++
		return false
	}
	return true
}
