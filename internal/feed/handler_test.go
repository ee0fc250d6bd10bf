package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func process(t *testing.T, lines ...string) (*Handler, string) {
	t.Helper()
	var out strings.Builder
	h := New(&out)
	for _, line := range lines {
		h.ProcessLine(line)
	}
	return h, out.String()
}

func TestProcessLineOrderEventsEmitMidpoint(t *testing.T) {
	_, out := process(t,
		"A,1,S,321,1.23",
		"A,2,S,432,1.34",
		"A,3,B,123,1.21",
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "A,1,S,321,1.23: NAN", lines[0])
	assert.Equal(t, "A,2,S,432,1.34: NAN", lines[1])
	assert.Equal(t, "A,3,B,123,1.21: 1.22", lines[2])
}

func TestProcessLineTradeEmitsCumulativeVolume(t *testing.T) {
	_, out := process(t,
		"A,1,B,1000,1.23",
		"A,2,S,1000,1.23",
		"T,100,1.23",
		"T,200,1.23",
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "T,100,1.23: 100@1.23", lines[2])
	assert.Equal(t, "T,200,1.23: 300@1.23", lines[3])
}

func TestProcessLineUnparsable(t *testing.T) {
	h, out := process(t, "garbage line", "A,1,Q,10,1.0", "T,abc,1.0")
	assert.Equal(t, "garbage line:  UNPARSABLE\nA,1,Q,10,1.0:  UNPARSABLE\nT,abc,1.0:  UNPARSABLE\n", out)
	assert.Equal(t, 3, h.ParseFailures())
}

func TestProcessLineTrailingJunkRejected(t *testing.T) {
	h, out := process(t, "T,100,1.23junk")
	assert.Contains(t, out, "UNPARSABLE")
	assert.Equal(t, 1, h.ParseFailures())
}

func TestPeriodicSnapshotDump(t *testing.T) {
	var out strings.Builder
	h := New(&out, WithPrintFrequency(2))
	h.ProcessLine("A,1,B,100,1.21")
	h.ProcessLine("A,2,S,200,1.23")

	got := out.String()
	assert.Contains(t, got, "Current Orderbook:")
	assert.Contains(t, got, "1.23 S 200")
	assert.Contains(t, got, "1.21 B 100")
}

func TestTickDecimalsRoundsParsedPrice(t *testing.T) {
	var out strings.Builder
	h := New(&out, WithTickDecimals(2))
	h.ProcessLine("A,1,B,100,1.2163")
	assert.EqualValues(t, 1.22, h.Book.BestPrice(0))
}

func TestShutdownStatsDump(t *testing.T) {
	var out strings.Builder
	h := New(&out)
	h.ProcessLine("garbage")
	h.ProcessLine("A,1,B,100,1.0")
	h.ProcessLine("A,1,B,100,1.0") // duplicate id

	var stats strings.Builder
	h.WriteStats(&stats)
	got := stats.String()
	assert.Contains(t, got, "unparseable: 1")
	assert.Contains(t, got, "duplicate order ids: 1")
	assert.Contains(t, got, "crossed book with no trades: 0")
}
