// Package normalize turns loosely typed name/value pairs into a percentage
// distribution that sums to 100.
package normalize

import (
	"errors"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"promptchart/pkg/category"
)

// ErrNoValidData is returned when nothing survives filtering.
var ErrNoValidData = errors.New("no valid data")

// DefaultTolerance is how far from 100 a total may drift before values are
// rescaled.
const DefaultTolerance = 0.1

var leadingNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Normalizer validates and rescales raw entries.
type Normalizer struct {
	// Tolerance is the accepted distance of the total from 100. Zero demands
	// an exact 100.
	Tolerance float64
	// SortByLeadingNumber orders categories by the first number in their name,
	// for range-like labels such as age brackets.
	SortByLeadingNumber bool
}

// New returns a Normalizer with the default tolerance.
func New() *Normalizer {
	return &Normalizer{Tolerance: DefaultTolerance}
}

// Normalize coerces, filters, optionally sorts and rescales entries. Input
// order is preserved unless sorting is enabled.
func (n *Normalizer) Normalize(entries []category.Entry) ([]category.Category, error) {
	cats := make([]category.Category, 0, len(entries))
	for _, e := range entries {
		name := coerceName(e.Name)
		value := coerceValue(e.Value)
		if name == "" || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			continue
		}
		cats = append(cats, category.Category{Name: name, Value: value})
	}
	if len(cats) == 0 {
		return nil, ErrNoValidData
	}

	if n.SortByLeadingNumber {
		slices.SortStableFunc(cats, func(a, b category.Category) int {
			return compareFloat(leadingBound(a.Name), leadingBound(b.Name))
		})
	}

	total := category.Total(cats)
	if total <= 0 {
		return nil, ErrNoValidData
	}
	if math.Abs(total-100) <= n.Tolerance {
		return cats, nil
	}

	scaled := make([]category.Category, 0, len(cats))
	for _, c := range cats {
		v := roundHalfUp(c.Value / total * 100)
		// a share that rounds away entirely would break the positive-value guarantee
		if v <= 0 {
			continue
		}
		scaled = append(scaled, category.Category{Name: c.Name, Value: v})
	}
	if len(scaled) == 0 {
		return nil, ErrNoValidData
	}
	return scaled, nil
}

// leadingBound is the first number in name. Names without one sort last.
func leadingBound(name string) float64 {
	m := leadingNumber.FindString(name)
	if m == "" {
		return math.MaxFloat64
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.MaxFloat64
	}
	return v
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// roundHalfUp rounds .5 towards +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// coerceName turns a scalar into a trimmed label. Missing, false, zero and
// non-scalar names yield "".
func coerceName(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 || math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		if t == 0 {
			return ""
		}
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// coerceValue converts a scalar to a number. Anything that does not convert
// cleanly becomes 0.
func coerceValue(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
