package feed

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"limitbook/internal/book"
)

// errUnparsable is returned for any line that doesn't match the grammar in
// spec.md §6: malformed field count, unknown type, unknown side, or
// trailing characters after the last required field.
var errUnparsable = errors.New("unparsable line")

// kind distinguishes the two record shapes the grammar allows.
type kind int

const (
	kindTrade kind = iota
	kindOrder
)

type orderType int

const (
	orderAdd orderType = iota
	orderModify
	orderRemove
)

// message is a parsed, validated line ready to be applied to a book.Book.
type message struct {
	kind kind

	// trade fields
	tradePrice  book.Price
	tradeVolume book.Volume

	// order fields
	orderType orderType
	orderID   book.OrderID
	side      book.Side
	price     book.Price
	volume    book.Volume
}

// tickDecimals, when non-negative, rounds every parsed price to that many
// decimal places via shopspring/decimal before it is handed to the core —
// the core itself never rounds (spec.md §3 / §9). -1 disables rounding.
type parser struct {
	tickDecimals int
}

func newParser(tickDecimals int) *parser {
	return &parser{tickDecimals: tickDecimals}
}

// parseLine parses one CSV line per the grammar:
//
//	trade := "T," int "," real
//	order := type "," int "," side "," int "," real
//	type  := "A" | "M" | "X"
//	side  := "B" | "S"
//
// Whitespace is not tolerated and trailing fields cause rejection.
func (p *parser) parseLine(line string) (message, error) {
	fields := strings.Split(line, ",")

	switch len(fields) {
	case 3:
		return p.parseTrade(fields)
	case 5:
		return p.parseOrder(fields)
	default:
		return message{}, errUnparsable
	}
}

func (p *parser) parseTrade(fields []string) (message, error) {
	if fields[0] != "T" {
		return message{}, errUnparsable
	}
	volume, err := parseVolume(fields[1])
	if err != nil {
		return message{}, errUnparsable
	}
	price, err := p.parsePrice(fields[2])
	if err != nil {
		return message{}, errUnparsable
	}
	return message{kind: kindTrade, tradeVolume: volume, tradePrice: price}, nil
}

func (p *parser) parseOrder(fields []string) (message, error) {
	var ot orderType
	switch fields[0] {
	case "A":
		ot = orderAdd
	case "M":
		ot = orderModify
	case "X":
		ot = orderRemove
	default:
		return message{}, errUnparsable
	}

	orderID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return message{}, errUnparsable
	}

	var side book.Side
	switch fields[2] {
	case "B":
		side = book.Bid
	case "S":
		side = book.Ask
	default:
		return message{}, errUnparsable
	}

	volume, err := parseVolume(fields[3])
	if err != nil {
		return message{}, errUnparsable
	}
	price, err := p.parsePrice(fields[4])
	if err != nil {
		return message{}, errUnparsable
	}

	return message{
		kind:      kindOrder,
		orderType: ot,
		orderID:   orderID,
		side:      side,
		price:     price,
		volume:    volume,
	}, nil
}

func parseVolume(field string) (book.Volume, error) {
	return strconv.ParseInt(field, 10, 64)
}

// parsePrice parses the textual price field with shopspring/decimal for
// exact base-10 parsing, optionally rounds it to tickDecimals places, and
// converts to the float64 the core compares with literal ==.
func (p *parser) parsePrice(field string) (book.Price, error) {
	d, err := decimal.NewFromString(field)
	if err != nil {
		return 0, errUnparsable
	}
	if p.tickDecimals >= 0 {
		d = d.Round(int32(p.tickDecimals))
	}
	f, _ := d.Float64()
	return f, nil
}
