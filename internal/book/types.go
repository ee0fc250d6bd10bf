// Package book implements the in-memory limit order book: a dual-indexed
// mutable container (order id -> location, side -> price-ordered multiset
// of resting volumes) together with its event-application protocol and
// derived views.
package book

// Side partitions the book. Bid is ordered highest-price-first, Ask
// lowest-price-first; this is the only place the two sides are asymmetric.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Price is compared by exact equality throughout the book; there is no
// tick rounding here (a collaborator upstream, such as internal/feed's
// parser, may pre-round before calling in). 0 is the empty-side sentinel,
// which means a genuine order at price 0 is indistinguishable from "no
// orders on this side" in BestPrice/Midpoint. The reference implementation
// this module is modelled on carries the same sentinel; callers that care
// about price-0 orders should reject them at the parser boundary.
type Price = float64

// Volume is a non-negative resting quantity. A Modify that drives Volume
// to zero is treated as a Remove.
type Volume = int64

// OrderID uniquely identifies a resting order across both sides.
type OrderID = int64

// LevelEntry is one resting order: a (price, volume) pair plus the data
// needed to locate and erase it in O(level size) without rescanning the
// side's price index.
type LevelEntry struct {
	OrderID OrderID
	Price   Price
	Volume  Volume

	level *PriceLevel // owning level, for O(1) level lookup on remove/modify
}

// TradeStats tracks the running trade tape. CumulativeVolume accumulates
// while consecutive trades land on the same price and resets whenever the
// price changes.
type TradeStats struct {
	LastTradePrice   Price
	CumulativeVolume Volume
}

// ErrorStats tallies the book's six soft-error categories. Every failed
// mutation increments exactly one of these and otherwise leaves the book
// untouched.
type ErrorStats struct {
	DuplicateOrderIDs    int
	TradeWithoutOrder    int
	RemovesWithoutOrder  int
	ModifiesWithoutOrder int
	CrossedBookNoTrades  int
	InvalidInputs        int
}
