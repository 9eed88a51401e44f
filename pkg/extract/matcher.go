package extract

import (
	"iter"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Match is one candidate "<integer>% <label>" occurrence found in a text.
type Match struct {
	Number string // digits in front of the percent sign
	Label  string // raw label text, untrimmed
	Start  int    // byte offset of the first digit
	End    int    // byte offset just past the label
}

// Matcher finds candidate percentage segments. Implementations yield matches
// lazily, left to right, so callers can stop early.
type Matcher interface {
	Matches(text string) iter.Seq[Match]
}

var percentToken = regexp.MustCompile(`\d+%`)

// PercentMatcher recognises an integer followed by '%', optional whitespace
// and the shortest run of word characters, whitespace and hyphens that is
// followed by a comma, by the word "and" surrounded by whitespace, or by the
// end of the text. A segment with no such terminator is not a match.
type PercentMatcher struct{}

// Matches implements Matcher.
func (PercentMatcher) Matches(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		pos := 0
		for pos < len(text) {
			loc := percentToken.FindStringIndex(text[pos:])
			if loc == nil {
				return
			}
			start, afterPct := pos+loc[0], pos+loc[1]

			end, ok := labelEnd(text, afterPct)
			if !ok {
				pos = afterPct
				continue
			}

			m := Match{
				Number: text[start : afterPct-1],
				Label:  text[afterPct:end],
				Start:  start,
				End:    end,
			}
			if !yield(m) {
				return
			}
			pos = end
		}
	}
}

// labelEnd returns the end offset of the label that starts at from. Leading
// whitespace is consumed greedily; the label itself is the shortest non-empty
// run that ends at a terminator. When that fails, whitespace is given back one
// rune at a time, which can only produce blank labels.
func labelEnd(text string, from int) (int, bool) {
	runEnd := from
	for runEnd < len(text) {
		r, size := utf8.DecodeRuneInString(text[runEnd:])
		if !isLabelRune(r) {
			break
		}
		runEnd += size
	}
	if runEnd == from {
		return 0, false
	}

	bodyStart := from
	for bodyStart < runEnd {
		r, size := utf8.DecodeRuneInString(text[bodyStart:])
		if !unicode.IsSpace(r) {
			break
		}
		bodyStart += size
	}

	if bodyStart < runEnd {
		_, size := utf8.DecodeRuneInString(text[bodyStart:])
		for p := bodyStart + size; p <= runEnd; {
			if terminatesAt(text, p) {
				return p, true
			}
			if p == runEnd {
				break
			}
			_, size = utf8.DecodeRuneInString(text[p:])
			p += size
		}
	}

	_, first := utf8.DecodeRuneInString(text[from:])
	for p := bodyStart; p >= from+first; {
		if terminatesAt(text, p) {
			return p, true
		}
		_, size := utf8.DecodeLastRuneInString(text[:p])
		p -= size
	}
	return 0, false
}

func terminatesAt(text string, p int) bool {
	if p == len(text) || text[p] == ',' {
		return true
	}
	return andFollows(text, p)
}

// andFollows reports whether text[p:] starts with whitespace, "and", whitespace.
func andFollows(text string, p int) bool {
	i := skipSpace(text, p)
	if i == p || len(text)-i < 3 || text[i:i+3] != "and" {
		return false
	}
	return skipSpace(text, i+3) > i+3
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

func isLabelRune(r rune) bool {
	switch {
	case r == '_' || r == '-':
		return true
	case r < utf8.RuneSelf:
		return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || unicode.IsSpace(r)
	default:
		return unicode.IsSpace(r)
	}
}
