package book

import (
	"fmt"
	"strconv"
	"strings"
)

// Snapshot renders the full book as a single descending-price listing: for
// each distinct price, the price followed by one " B <volume>" or
// " S <volume>" run per LevelEntry at that price, in time order. It walks
// asks in reverse (descending) and bids forward (already descending),
// emitting the higher of the two current heads at each step — the same
// two-cursor merge as the reference implementation's print_ob, so a price
// that holds entries on both sides (only possible on a crossed book)
// prints as a single combined line instead of two.
func (b *Book) Snapshot() string {
	var sb strings.Builder

	bidLevels := collect(b.bids, false)
	askLevels := collect(b.asks, true)

	bi, ai := 0, 0
	currPrice := Price(0)
	havePrinted := false

	writeEntry := func(side byte, price Price, e *LevelEntry) {
		if !havePrinted || price != currPrice {
			if havePrinted {
				sb.WriteByte('\n')
			}
			sb.WriteString(formatPrice(price))
			currPrice = price
			havePrinted = true
		}
		sb.WriteByte(' ')
		sb.WriteByte(side)
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatInt(e.Volume, 10))
	}

	for bi < len(bidLevels) && ai < len(askLevels) {
		bidPrice := bidLevels[bi].Price
		askPrice := askLevels[ai].Price
		if askPrice >= bidPrice {
			for _, e := range askLevels[ai].Entries {
				writeEntry('S', askPrice, e)
			}
			ai++
		} else {
			for _, e := range bidLevels[bi].Entries {
				writeEntry('B', bidPrice, e)
			}
			bi++
		}
	}
	for ; ai < len(askLevels); ai++ {
		for _, e := range askLevels[ai].Entries {
			writeEntry('S', askLevels[ai].Price, e)
		}
	}
	for ; bi < len(bidLevels); bi++ {
		for _, e := range bidLevels[bi].Entries {
			writeEntry('B', bidLevels[bi].Price, e)
		}
	}

	return sb.String()
}

// collect returns a side's PriceLevels in the merge-ready order: ask
// levels descending (reverse of the tree's ascending order), bid levels
// descending (already the tree's natural order).
func collect(sl *levels, reverse bool) []*PriceLevel {
	out := make([]*PriceLevel, 0, sl.Len())
	if reverse {
		sl.Reverse(func(lvl *PriceLevel) bool {
			out = append(out, lvl)
			return true
		})
	} else {
		sl.Scan(func(lvl *PriceLevel) bool {
			out = append(out, lvl)
			return true
		})
	}
	return out
}

// formatPrice mirrors the reference's iostream-default double formatting
// closely enough for human/operator consumption: shortest round-tripping
// decimal representation, no trailing zeros.
func formatPrice(p Price) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// FormatMidpoint renders the midpoint the way the feed handler's per-line
// output expects: "NAN" when the midpoint is the zero sentinel, the
// formatted price otherwise.
func FormatMidpoint(mid Price) string {
	if mid == 0 {
		return "NAN"
	}
	return formatPrice(mid)
}

// FormatPrice exposes the book's canonical price rendering to collaborators
// outside the package (the generator's event-line emitter needs to print
// prices identically to Snapshot).
func FormatPrice(p Price) string {
	return formatPrice(p)
}

// FormatTrade renders the per-trade output fragment: "<cum>@<last>".
func FormatTrade(stats TradeStats) string {
	return fmt.Sprintf("%d@%s", stats.CumulativeVolume, formatPrice(stats.LastTradePrice))
}
