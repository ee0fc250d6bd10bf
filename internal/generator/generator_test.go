package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"limitbook/internal/book"
)

func newTestGenerator(out *strings.Builder) *Generator {
	return New(book.New(), 1, out)
}

func TestUncrossPartialFillModifiesBidRemovesAsk(t *testing.T) {
	var out strings.Builder
	g := newTestGenerator(&out)

	g.Book.Add(book.Bid, 1, 100, 50)
	g.remember(book.Bid, restingOrder{id: 1, price: 100, volume: 50})
	g.Book.Add(book.Ask, 2, 90, 30)
	g.remember(book.Ask, restingOrder{id: 2, price: 90, volume: 30})

	assert.True(t, g.Book.IsCrossed())
	g.uncross()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"T,30,90",
		"M,1,B,20,100",
		"X,2,S,30,90",
	}, lines)

	assert.Equal(t, 1, g.Book.OrderCount(book.Bid))
	assert.Equal(t, 0, g.Book.OrderCount(book.Ask))
	assert.EqualValues(t, 20, g.Book.VolumeAt(book.Bid, 100))
	assert.EqualValues(t, 30, g.Book.TradeStats().CumulativeVolume)
}

func TestUncrossEqualVolumeRemovesBoth(t *testing.T) {
	var out strings.Builder
	g := newTestGenerator(&out)

	g.Book.Add(book.Bid, 1, 100, 50)
	g.remember(book.Bid, restingOrder{id: 1, price: 100, volume: 50})
	g.Book.Add(book.Ask, 2, 90, 50)
	g.remember(book.Ask, restingOrder{id: 2, price: 90, volume: 50})

	g.uncross()

	assert.Equal(t, 0, g.Book.OrderCount(book.Bid))
	assert.Equal(t, 0, g.Book.OrderCount(book.Ask))
	assert.Empty(t, g.shadow[book.Bid])
	assert.Empty(t, g.shadow[book.Ask])

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, "T,50,90", lines[0])
	assert.Equal(t, "X,1,B,50,100", lines[1])
	assert.Equal(t, "M,2,S,0,90", lines[2])
}

func TestUncrossDrainsMultipleLevels(t *testing.T) {
	var out strings.Builder
	g := newTestGenerator(&out)

	g.Book.Add(book.Bid, 1, 101, 10)
	g.remember(book.Bid, restingOrder{id: 1, price: 101, volume: 10})
	g.Book.Add(book.Bid, 2, 100, 10)
	g.remember(book.Bid, restingOrder{id: 2, price: 100, volume: 10})
	g.Book.Add(book.Ask, 3, 90, 25)
	g.remember(book.Ask, restingOrder{id: 3, price: 90, volume: 25})

	g.uncross()

	assert.False(t, g.Book.IsCrossed() && g.Book.OrderCount(book.Bid) > 0 && g.Book.OrderCount(book.Ask) > 0)
	assert.Equal(t, 1, g.Book.OrderCount(book.Ask))
	assert.Equal(t, 0, g.Book.OrderCount(book.Bid))
	assert.EqualValues(t, 5, g.Book.VolumeAt(book.Ask, 90))
}

func TestRunNeverLeavesBookCrossedWithBothSidesPopulated(t *testing.T) {
	var out strings.Builder
	g := New(book.New(), 42, &out, WithStartingMidpoint(50), WithPriceSpread(2), WithTickDecimals(2))

	g.Run(200)

	bids := g.Book.OrderCount(book.Bid)
	asks := g.Book.OrderCount(book.Ask)
	if bids > 0 && asks > 0 {
		assert.False(t, g.Book.IsCrossed())
	}
}

func TestRunIsDeterministicForAGivenSeed(t *testing.T) {
	var out1, out2 strings.Builder
	New(book.New(), 7, &out1).Run(100)
	New(book.New(), 7, &out2).Run(100)

	assert.Equal(t, out1.String(), out2.String())
}

func TestRunProducesNonEmptyEventStream(t *testing.T) {
	var out strings.Builder
	g := New(book.New(), 3, &out)
	g.Run(10)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.NotEmpty(t, lines)
	for _, line := range lines {
		fields := strings.Split(line, ",")
		assert.Contains(t, []string{"A", "M", "X", "T"}, fields[0])
	}
}

func TestShadowStaysConsistentWithBookAcrossRandomMutations(t *testing.T) {
	var out strings.Builder
	g := New(book.New(), 99, &out)

	assert.NotPanics(t, func() {
		g.Run(500)
	})
	assert.Equal(t, len(g.shadow[book.Bid]), g.Book.OrderCount(book.Bid))
	assert.Equal(t, len(g.shadow[book.Ask]), g.Book.OrderCount(book.Ask))
}
