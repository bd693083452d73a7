package watch

import (
	"fmt"
	"io"

	"github.com/quantwatch/signalboard/internal/models"
)

// LogSink renders the dashboard as text: the snapshot once, then one line
// per alert. It stands in for the browser page in headless deployments.
type LogSink struct {
	out io.Writer
}

// NewLogSink creates a LogSink writing to out.
func NewLogSink(out io.Writer) *LogSink {
	return &LogSink{out: out}
}

// RenderSnapshot prints the watchlist and the recent-signal history. The
// signals arrive newest first and are printed as-is.
func (s *LogSink) RenderSnapshot(stocks []*models.Stock, signals []*models.SignalWithName) {
	fmt.Fprintf(s.out, "== Watchlist (%d) ==\n", len(stocks))
	for _, stock := range stocks {
		date, _ := stock.AddedAt.DateAndClock()
		fmt.Fprintf(s.out, "  %s (%s)  added %s\n", stock.Name, stock.Code, date)
	}

	fmt.Fprintf(s.out, "== Recent signals (%d) ==\n", len(signals))
	for _, sig := range signals {
		s.printSignal(sig, "")
	}
}

// Alert prints one new classified signal.
func (s *LogSink) Alert(alert Alert) {
	s.printSignal(&alert.Signal, fmt.Sprintf(" [%s]", alert.Direction))
}

func (s *LogSink) printSignal(sig *models.SignalWithName, tag string) {
	date, clock := sig.Timestamp.DateAndClock()
	name := sig.Name
	if name == "" {
		name = sig.StockCode
	}
	fmt.Fprintf(s.out, "  %s %s  %s (%s)  %s  %s  %s%s\n",
		date, clock, name, sig.StockCode, sig.Timeframe, sig.SignalType, sig.Price, tag)
}
