package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"limitbook/internal/book"
)

func TestParseTrade(t *testing.T) {
	p := newParser(-1)
	msg, err := p.parseLine("T,100,1.23")
	assert.NoError(t, err)
	assert.Equal(t, kindTrade, msg.kind)
	assert.EqualValues(t, 100, msg.tradeVolume)
	assert.Equal(t, 1.23, msg.tradePrice)
}

func TestParseOrderAdd(t *testing.T) {
	p := newParser(-1)
	msg, err := p.parseLine("A,1,B,100,1.23")
	assert.NoError(t, err)
	assert.Equal(t, kindOrder, msg.kind)
	assert.Equal(t, orderAdd, msg.orderType)
	assert.Equal(t, book.Bid, msg.side)
	assert.EqualValues(t, 1, msg.orderID)
}

func TestParseUnknownType(t *testing.T) {
	p := newParser(-1)
	_, err := p.parseLine("Z,1,B,100,1.23")
	assert.ErrorIs(t, err, errUnparsable)
}

func TestParseUnknownSide(t *testing.T) {
	p := newParser(-1)
	_, err := p.parseLine("A,1,Q,100,1.23")
	assert.ErrorIs(t, err, errUnparsable)
}

func TestParseWrongFieldCount(t *testing.T) {
	p := newParser(-1)
	_, err := p.parseLine("A,1,B,100")
	assert.ErrorIs(t, err, errUnparsable)
}

func TestParseTickRounding(t *testing.T) {
	p := newParser(2)
	msg, err := p.parseLine("T,100,1.2367")
	assert.NoError(t, err)
	assert.Equal(t, 1.24, msg.tradePrice)
}
