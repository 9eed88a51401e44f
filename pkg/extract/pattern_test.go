package extract

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptchart/pkg/category"
)

func TestPatternExtractor_Extract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []category.Category
	}{
		{
			name: "comma and 'and' separated",
			text: "15% regular items, 30% premium items and 55% deluxe items",
			want: []category.Category{
				{Name: "regular items", Value: 15},
				{Name: "premium items", Value: 30},
				{Name: "deluxe items", Value: 55},
			},
		},
		{
			name: "duplicate label keeps first",
			text: "40% software licenses, 40% software licenses",
			want: []category.Category{
				{Name: "software licenses", Value: 40},
			},
		},
		{
			name: "first occurrence value wins",
			text: "10% rent, 25% Rent",
			want: []category.Category{
				{Name: "rent", Value: 10},
			},
		},
		{
			name: "leading preposition stripped",
			text: "60% of revenue, 40% from services",
			want: []category.Category{
				{Name: "revenue", Value: 60},
				{Name: "services", Value: 40},
			},
		},
		{
			name: "whitespace collapsed and lower-cased",
			text: "70%   Cloud   Hosting, 30% on-prem",
			want: []category.Category{
				{Name: "cloud hosting", Value: 70},
				{Name: "on-prem", Value: 30},
			},
		},
		{
			name: "no percent sign",
			text: "3 items at $10 each",
			want: []category.Category{},
		},
		{
			name: "label without terminator is skipped",
			text: "50% cats. 50% dogs",
			want: []category.Category{
				{Name: "dogs", Value: 50},
			},
		},
		{
			name: "percent without label",
			text: "50%, 50% rest",
			want: []category.Category{
				{Name: "rest", Value: 50},
			},
		},
		{
			name: "percentage beyond int range",
			text: "099999999999999999999%a",
			want: []category.Category{
				{Name: "a", Value: 1e20},
			},
		},
		{
			name: "leading zeros",
			text: "007% spies, 93% civilians",
			want: []category.Category{
				{Name: "spies", Value: 7},
				{Name: "civilians", Value: 93},
			},
		},
		{
			name: "empty text",
			text: "",
			want: []category.Category{},
		},
	}

	ext := NewPatternExtractor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ext.Extract(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatternExtractor_DocumentOrder(t *testing.T) {
	got := NewPatternExtractor(nil).Extract("5% zeta, 10% alpha, 85% mu")
	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mu"}, names)
}

type fixedMatcher []Match

func (f fixedMatcher) Matches(string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, m := range f {
			if !yield(m) {
				return
			}
		}
	}
}

func TestPatternExtractor_CustomMatcher(t *testing.T) {
	m := fixedMatcher{
		{Number: "12", Label: "  In Europe "},
		{Number: "x", Label: "bad number"},
		{Number: "7", Label: "   "},
		{Number: "88", Label: "asia"},
	}
	got := NewPatternExtractor(m).Extract("ignored")
	assert.Equal(t, []category.Category{
		{Name: "europe", Value: 12},
		{Name: "asia", Value: 88},
	}, got)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "revenue", NormalizeLabel(" of revenue "))
	assert.Equal(t, "of", NormalizeLabel("of"), "a lone preposition is the label")
	assert.Equal(t, "of revenue", NormalizeLabel("for of revenue"), "only one preposition is removed")
	assert.Equal(t, "net margin", NormalizeLabel("Net\tMargin"))
	assert.Equal(t, "", NormalizeLabel("   "))
}
