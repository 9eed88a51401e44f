package extract

import (
	"errors"
	"strconv"
	"strings"

	"promptchart/pkg/category"
)

// leadingPrepositions are dropped from the front of a label ("of revenue" -> "revenue").
var leadingPrepositions = map[string]bool{
	"for":  true,
	"from": true,
	"by":   true,
	"in":   true,
	"of":   true,
}

// PatternExtractor is the deterministic fast path: it reads explicit
// "N% label" segments and never calls out to anything.
type PatternExtractor struct {
	matcher Matcher
}

// NewPatternExtractor returns an extractor driven by m. A nil matcher selects
// PercentMatcher.
func NewPatternExtractor(m Matcher) *PatternExtractor {
	if m == nil {
		m = PercentMatcher{}
	}
	return &PatternExtractor{matcher: m}
}

// Extract returns one category per distinct normalized label, in document
// order. The first occurrence of a label wins. The result is empty, never
// nil-with-error, when nothing matches.
func (e *PatternExtractor) Extract(text string) []category.Category {
	cats := []category.Category{}
	for m := range e.matcher.Matches(text) {
		// digit runs past int64 keep their magnitude rather than being dropped
		value, err := strconv.ParseFloat(m.Number, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			continue
		}
		name := NormalizeLabel(m.Label)
		if name == "" || category.Contains(cats, name) {
			continue
		}
		cats = append(cats, category.Category{Name: name, Value: value})
	}
	return cats
}

// NormalizeLabel lower-cases a raw label, removes one leading preposition
// and collapses internal whitespace.
func NormalizeLabel(label string) string {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) > 1 && leadingPrepositions[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}
