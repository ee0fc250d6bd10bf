// Package feed is the external collaborator that turns a line-oriented CSV
// market-data stream into calls against the order book core, and renders
// its derived views back out per message (spec.md §4.3, §6).
package feed

import (
	"bufio"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"limitbook/internal/book"
)

// Handler owns a book.Book and the parse-failure tally that sits outside
// it (spec.md §7: parse errors and semantic errors are two domains that
// never mix).
type Handler struct {
	Book *book.Book

	parser *parser
	out    io.Writer
	log    zerolog.Logger

	printFrequency    int
	messagesProcessed int
	parseFailures     int
}

// Option configures a Handler at construction time.
type Option func(*Handler)

// WithTickDecimals rounds every parsed price to the given number of
// decimal places before it reaches the core. -1 (the default) disables
// rounding.
func WithTickDecimals(decimals int) Option {
	return func(h *Handler) { h.parser.tickDecimals = decimals }
}

// WithPrintFrequency dumps a full book snapshot every n applied messages.
// 0 disables the periodic dump.
func WithPrintFrequency(n int) Option {
	return func(h *Handler) { h.printFrequency = n }
}

// WithLogger attaches a zerolog.Logger for operational logging (parse
// failures, snapshot dumps). The zero value is a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// New returns a Handler writing per-line output to out.
func New(out io.Writer, opts ...Option) *Handler {
	h := &Handler{
		Book:         book.New(),
		parser:       newParser(-1),
		out:          out,
		log:          zerolog.Nop(),
		printFrequency: 0,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run reads lines from r until EOF, or until shouldContinue (if non-nil,
// checked before each line) returns false. Each line is fully applied via
// ProcessLine before the next is read, per spec.md §5's "one message fully
// applied before the next is read".
func (h *Handler) Run(r io.Reader, shouldContinue func() bool) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if shouldContinue != nil && !shouldContinue() {
			break
		}
		h.ProcessLine(scanner.Text())
	}
	return scanner.Err()
}

// ProcessLine applies a single line and writes its per-line output
// (spec.md §6). Unparseable lines increment the handler's own
// parse-failure counter and never reach the book.
func (h *Handler) ProcessLine(line string) {
	io.WriteString(h.out, line)
	io.WriteString(h.out, ": ")

	msg, err := h.parser.parseLine(line)
	if err != nil {
		h.parseFailures++
		h.log.Debug().Str("line", line).Msg("unparsable line")
		io.WriteString(h.out, " UNPARSABLE\n")
		return
	}

	switch msg.kind {
	case kindTrade:
		h.Book.Trade(msg.tradePrice, msg.tradeVolume)
		io.WriteString(h.out, book.FormatTrade(h.Book.TradeStats()))
		io.WriteString(h.out, "\n")
	case kindOrder:
		h.applyOrder(msg)
		io.WriteString(h.out, book.FormatMidpoint(h.Book.Midpoint()))
		io.WriteString(h.out, "\n")
	}

	h.messagesProcessed++
	if h.printFrequency != 0 && h.messagesProcessed == h.printFrequency {
		io.WriteString(h.out, "\nCurrent Orderbook:\n")
		io.WriteString(h.out, h.Book.Snapshot())
		io.WriteString(h.out, "\n\n")
		h.messagesProcessed = 0
	}
}

func (h *Handler) applyOrder(msg message) {
	switch msg.orderType {
	case orderAdd:
		h.Book.Add(msg.side, msg.orderID, msg.price, msg.volume)
	case orderModify:
		h.Book.Modify(msg.side, msg.orderID, msg.price, msg.volume)
	case orderRemove:
		h.Book.Remove(msg.side, msg.orderID)
	}
}

// ParseFailures returns the count of lines that failed to parse.
func (h *Handler) ParseFailures() int {
	return h.parseFailures
}

// WriteStats dumps the shutdown stats block per spec.md §6: the
// parse-failure count plus all six book error counters, labelled and
// ordered the way the reference feedhandler::print_stats does.
func (h *Handler) WriteStats(w io.Writer) {
	stats := h.Book.ErrorStats()
	io.WriteString(w, "\nERROR STATS:\n")
	writeStat(w, "unparseable", h.parseFailures)
	writeStat(w, "crossed book with no trades", stats.CrossedBookNoTrades)
	writeStat(w, "duplicate order ids", stats.DuplicateOrderIDs)
	writeStat(w, "invalid inputs", stats.InvalidInputs)
	writeStat(w, "modifies without order", stats.ModifiesWithoutOrder)
	writeStat(w, "removes without order", stats.RemovesWithoutOrder)
	writeStat(w, "trades without order", stats.TradeWithoutOrder)
	io.WriteString(w, "\n")
}

func writeStat(w io.Writer, label string, value int) {
	io.WriteString(w, "  "+label+": "+strconv.Itoa(value)+"\n")
}
