// Package generator substitutes a randomized event source for the feed
// parser: it drives a book.Book with plausible add/modify/remove events and,
// whenever a synthesized mutation leaves the book crossed, runs the uncross
// procedure (spec.md §4.4) that resolves it by feeding synthetic trades and
// compensating order actions back through the book's own public mutation
// API.
package generator

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"limitbook/internal/book"
	"limitbook/internal/rng"
)

// restingOrder is the generator's own record of a live order it placed. It
// is kept independent of the book's internal index — the generator never
// reaches into book internals to pick an order to mutate — so that a
// mismatch against the book's own counts can be recognized as the fatal
// bookkeeping bug §6 calls for, rather than trusted silently.
type restingOrder struct {
	id     book.OrderID
	price  book.Price
	volume book.Volume
}

// Option configures a Generator at construction time.
type Option func(*Generator)

// WithLogger attaches a zerolog.Logger for operational logging.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithPriceSpread bounds how far a freshly synthesized price can wander
// from the current reference price, in absolute price units.
func WithPriceSpread(spread float64) Option {
	return func(g *Generator) { g.priceSpread = spread }
}

// WithTickDecimals rounds every synthesized price to the given number of
// decimal places. -1 disables rounding.
func WithTickDecimals(decimals int) Option {
	return func(g *Generator) { g.tickDecimals = decimals }
}

// WithStartingMidpoint seeds the reference price used for the very first
// synthesized order, before either side has a touch price of its own.
func WithStartingMidpoint(mid float64) Option {
	return func(g *Generator) { g.startingMidpoint = mid }
}

// Generator synthesizes a randomized event stream against a book.Book.
type Generator struct {
	Book *book.Book

	rng *rng.Source
	out io.Writer
	log zerolog.Logger

	priceSpread      float64
	tickDecimals     int
	startingMidpoint float64

	nextOrderID book.OrderID
	shadow      [2][]restingOrder
}

// New returns a Generator that emits to out, drawing from a PRNG seeded
// with seed.
func New(b *book.Book, seed int64, out io.Writer, opts ...Option) *Generator {
	g := &Generator{
		Book:             b,
		rng:              rng.New(seed),
		out:              out,
		log:              zerolog.Nop(),
		priceSpread:      0.05,
		tickDecimals:     2,
		startingMidpoint: 100.0,
		nextOrderID:      1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run synthesizes numEvents top-level randomized mutations, emitting each
// to out, uncrossing the book after any mutation that leaves it crossed.
func (g *Generator) Run(numEvents int) {
	for i := 0; i < numEvents; i++ {
		g.emitRandomEvent()
		if g.Book.IsCrossed() && g.Book.OrderCount(book.Bid) > 0 && g.Book.OrderCount(book.Ask) > 0 {
			g.uncross()
		}
	}
}

// emitRandomEvent chooses and applies one add, modify, or remove. With no
// live orders on either side, only add is possible.
func (g *Generator) emitRandomEvent() {
	if len(g.shadow[book.Bid])+len(g.shadow[book.Ask]) == 0 {
		g.emitAdd()
		return
	}

	switch g.rng.IntN(10) {
	case 0, 1, 2, 3:
		g.emitAdd()
	case 4, 5, 6:
		g.emitRandomModify()
	default:
		g.emitRandomRemove()
	}
}

func (g *Generator) emitAdd() {
	side := book.Bid
	if g.rng.Bool() {
		side = book.Ask
	}
	price := g.referencePrice(side)
	volume := book.Volume(g.rng.Range(1, 1000))
	id := g.nextOrderID
	g.nextOrderID++

	io.WriteString(g.out, fmt.Sprintf("A,%d,%s,%d,%s\n", id, sideCode(side), volume, book.FormatPrice(price)))
	if !g.Book.Add(side, id, price, volume) {
		g.log.Error().Int64("order_id", id).Msg("generator synthesized an add the book rejected")
		return
	}
	g.remember(side, restingOrder{id: id, price: price, volume: volume})
}

// emitRandomModify mutates a randomly chosen live order in place: either a
// pure volume change (preserving time priority) or a price change
// (forfeiting it), mirroring the two modify shapes spec.md §4.2 describes.
func (g *Generator) emitRandomModify() {
	side, order, ok := g.pickLive()
	if !ok {
		g.emitAdd()
		return
	}

	newVolume := book.Volume(g.rng.Range(1, 1000))
	newPrice := order.price
	if g.rng.IntN(5) == 0 {
		newPrice = g.referencePrice(side)
	}

	io.WriteString(g.out, fmt.Sprintf("M,%d,%s,%d,%s\n", order.id, sideCode(side), newVolume, book.FormatPrice(newPrice)))
	if !g.Book.Modify(side, order.id, newPrice, newVolume) {
		g.log.Error().Int64("order_id", order.id).Msg("generator synthesized a modify the book rejected")
		return
	}
	g.update(side, order.id, newPrice, newVolume)
}

func (g *Generator) emitRandomRemove() {
	side, order, ok := g.pickLive()
	if !ok {
		g.emitAdd()
		return
	}

	io.WriteString(g.out, fmt.Sprintf("X,%d,%s,%d,%s\n", order.id, sideCode(side), order.volume, book.FormatPrice(order.price)))
	if !g.Book.Remove(side, order.id) {
		g.log.Error().Int64("order_id", order.id).Msg("generator synthesized a remove the book rejected")
		return
	}
	g.forget(side, order.id)
}

// uncross drains a crossed book exactly per spec.md §4.4: trades are staged
// and emitted only after the whole pass completes, followed by every
// compensating modify/remove action, so a reader of the output sees all
// trades before any order action.
func (g *Generator) uncross() {
	var trades []string
	var actions []string

	for g.Book.IsCrossed() && g.Book.OrderCount(book.Bid) > 0 && g.Book.OrderCount(book.Ask) > 0 {
		bidTouch := g.Book.OrderInPosition(book.Bid, 0)
		askTouch := g.Book.OrderInPosition(book.Ask, 0)
		if bidTouch == nil || askTouch == nil {
			break
		}
		// Copy the fields we need before any further mutation can move or
		// free the underlying entries.
		bidID, bidPrice, bidVolume := bidTouch.OrderID, bidTouch.Price, bidTouch.Volume
		askID, askPrice, askVolume := askTouch.OrderID, askTouch.Price, askTouch.Volume

		tradeVolume := bidVolume
		if askVolume < tradeVolume {
			tradeVolume = askVolume
		}

		trades = append(trades, fmt.Sprintf("T,%d,%s", tradeVolume, book.FormatPrice(askPrice)))
		if !g.Book.Trade(askPrice, tradeVolume) {
			panic(fmt.Sprintf("generator: book rejected its own synthesized trade at %v", askPrice))
		}

		bidStillHasVolume := bidVolume > tradeVolume

		if bidVolume == tradeVolume {
			actions = append(actions, fmt.Sprintf("X,%d,B,%d,%s", bidID, bidVolume, book.FormatPrice(bidPrice)))
			if !g.Book.Remove(book.Bid, bidID) {
				panic(fmt.Sprintf("generator: book rejected the uncross remove of bid %d", bidID))
			}
			g.forget(book.Bid, bidID)
		} else {
			newVolume := bidVolume - tradeVolume
			actions = append(actions, fmt.Sprintf("M,%d,B,%d,%s", bidID, newVolume, book.FormatPrice(bidPrice)))
			if !g.Book.Modify(book.Bid, bidID, bidPrice, newVolume) {
				panic(fmt.Sprintf("generator: book rejected the uncross modify of bid %d", bidID))
			}
			g.update(book.Bid, bidID, bidPrice, newVolume)
		}

		if bidStillHasVolume {
			actions = append(actions, fmt.Sprintf("X,%d,S,%d,%s", askID, askVolume, book.FormatPrice(askPrice)))
			if !g.Book.Remove(book.Ask, askID) {
				panic(fmt.Sprintf("generator: book rejected the uncross remove of ask %d", askID))
			}
			g.forget(book.Ask, askID)
		} else {
			newVolume := askVolume - tradeVolume
			actions = append(actions, fmt.Sprintf("M,%d,S,%d,%s", askID, newVolume, book.FormatPrice(askPrice)))
			if !g.Book.Modify(book.Ask, askID, askPrice, newVolume) {
				panic(fmt.Sprintf("generator: book rejected the uncross modify of ask %d", askID))
			}
			if newVolume == 0 {
				g.forget(book.Ask, askID)
			} else {
				g.update(book.Ask, askID, askPrice, newVolume)
			}
		}
	}

	for _, line := range trades {
		io.WriteString(g.out, line+"\n")
	}
	for _, line := range actions {
		io.WriteString(g.out, line+"\n")
	}
}

// referencePrice anchors a new price near the side's current touch, falling
// back to the opposite side's touch and finally to the configured starting
// midpoint when the book is empty.
func (g *Generator) referencePrice(side book.Side) book.Price {
	ref := g.Book.BestPrice(side)
	if ref == 0 {
		ref = g.Book.BestPrice(opposite(side))
	}
	if ref == 0 {
		ref = g.startingMidpoint
	}

	lo := ref - g.priceSpread
	if lo < 0 {
		lo = 0
	}
	return g.rng.Price(lo, ref+g.priceSpread, g.tickDecimals)
}

// pickLive returns a uniformly chosen live order across both sides'
// shadow state.
func (g *Generator) pickLive() (book.Side, restingOrder, bool) {
	total := len(g.shadow[book.Bid]) + len(g.shadow[book.Ask])
	if total == 0 {
		return 0, restingOrder{}, false
	}
	pick := g.rng.IntN(total)
	if pick < len(g.shadow[book.Bid]) {
		return book.Bid, g.shadow[book.Bid][pick], true
	}
	return book.Ask, g.shadow[book.Ask][pick-len(g.shadow[book.Bid])], true
}

// remember records a newly live order in the shadow state and checks it
// against the book's own count. Only called when the paired book mutation
// actually grew the book by one order (an add) — the count check would be
// premature otherwise.
func (g *Generator) remember(side book.Side, order restingOrder) {
	g.shadow[side] = append(g.shadow[side], order)
	g.checkConsistency(side)
}

// update rewrites an existing shadow record's price/volume in place. Used
// for a modify that leaves the order resting (no book count change), so it
// does not re-check consistency.
func (g *Generator) update(side book.Side, id book.OrderID, price book.Price, volume book.Volume) {
	orders := g.shadow[side]
	for i, o := range orders {
		if o.id == id {
			orders[i].price = price
			orders[i].volume = volume
			return
		}
	}
	panic(fmt.Sprintf("generator: shadow state has no record of order %d on %s — bijection invariant violated", id, side))
}

// forget erases a no-longer-live order from the shadow state by identity.
// Only called when the paired book mutation actually removed the order (a
// remove, or a modify-to-zero), so the book's count has also just dropped
// by one. Finding nothing to erase means the generator's shadow state has
// diverged from the book it drives — a fatal programmer error, never an
// expected outcome of legal input (spec.md §6).
func (g *Generator) forget(side book.Side, id book.OrderID) {
	orders := g.shadow[side]
	for i, o := range orders {
		if o.id == id {
			g.shadow[side] = append(orders[:i], orders[i+1:]...)
			g.checkConsistency(side)
			return
		}
	}
	panic(fmt.Sprintf("generator: shadow state has no record of order %d on %s — bijection invariant violated", id, side))
}

func (g *Generator) checkConsistency(side book.Side) {
	if len(g.shadow[side]) != g.Book.OrderCount(side) {
		panic(fmt.Sprintf("generator: shadow order count (%d) diverged from book order count (%d) on %s", len(g.shadow[side]), g.Book.OrderCount(side), side))
	}
}

func sideCode(s book.Side) string {
	if s == book.Bid {
		return "B"
	}
	return "S"
}

func opposite(s book.Side) book.Side {
	if s == book.Bid {
		return book.Ask
	}
	return book.Bid
}
