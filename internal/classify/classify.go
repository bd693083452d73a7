// Package classify maps free-text signal descriptors to a display direction.
package classify

import "strings"

// Direction is the semantic reading of a signal for presentation.
type Direction int

const (
	Bullish Direction = iota
	Bearish
	Neutral
)

// String returns the lowercase name used in logs and alerts.
func (d Direction) String() string {
	switch d {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// Keyword sets mirror the collector's descriptor vocabulary: accumulation /
// support / bottom terms read bullish, distribution / resistance / top terms
// read bearish. English tokens are matched case-sensitively, as the collector
// always emits them uppercase.
var (
	bullishKeywords = []string{"买", "低", "底", "托盘", "价量背离", "BULL", "BUY"}
	bearishKeywords = []string{"卖", "高", "顶", "压盘", "BEAR", "SELL"}
)

// Classify returns the direction for a signal descriptor.
//
// Precedence is fixed: a bullish keyword match wins even when a bearish
// keyword is also present, and a descriptor matching neither set defaults to
// Bullish. Both behaviors are load-bearing compatibility with the existing
// display and must not change without a product decision; Neutral is never
// produced by the current rule set.
func Classify(signalType string) Direction {
	if containsAny(signalType, bullishKeywords) {
		return Bullish
	}
	if containsAny(signalType, bearishKeywords) {
		return Bearish
	}
	return Bullish
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
