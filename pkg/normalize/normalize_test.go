package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptchart/pkg/category"
)

func TestNormalize_PassThrough(t *testing.T) {
	in := []category.Category{
		{Name: "regular items", Value: 15},
		{Name: "premium items", Value: 30},
		{Name: "deluxe items", Value: 55},
	}
	got, err := New().Normalize(category.Entries(in))
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New()
	first, err := n.Normalize([]category.Entry{
		{Name: "a", Value: 1},
		{Name: "b", Value: 2},
		{Name: "c", Value: 7},
	})
	require.NoError(t, err)

	second, err := n.Normalize(category.Entries(first))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalize_Rescale(t *testing.T) {
	got, err := New().Normalize([]category.Entry{
		{Name: "a", Value: 30},
		{Name: "b", Value: 30},
		{Name: "c", Value: 30},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.Equal(t, float64(33), c.Value)
	}
	assert.LessOrEqual(t, math.Abs(category.Total(got)-100), 0.5*float64(len(got)))
}

func TestNormalize_RescaleBound(t *testing.T) {
	inputs := [][]float64{
		{1, 1, 1},
		{10, 20, 30, 40, 50},
		{0.5, 0.25, 0.25},
		{7, 13, 19, 23, 29, 31, 37},
		{250, 250},
	}
	for _, values := range inputs {
		entries := make([]category.Entry, 0, len(values))
		for i, v := range values {
			entries = append(entries, category.Entry{Name: string(rune('a' + i)), Value: v})
		}
		got, err := New().Normalize(entries)
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(category.Total(got)-100), 0.5*float64(len(got)), "values %v", values)
		for _, c := range got {
			assert.Greater(t, c.Value, float64(0))
			assert.Equal(t, math.Round(c.Value), c.Value, "rescaled values are integers")
		}
	}
}

func TestNormalize_WithinTolerance(t *testing.T) {
	entries := []category.Entry{
		{Name: "a", Value: 33.33},
		{Name: "b", Value: 33.33},
		{Name: "c", Value: 33.33},
	}
	got, err := New().Normalize(entries)
	require.NoError(t, err)
	assert.Equal(t, 33.33, got[0].Value, "99.99 is within 0.1 of 100")

	strict := &Normalizer{Tolerance: 0}
	got, err = strict.Normalize(entries)
	require.NoError(t, err)
	assert.Equal(t, float64(33), got[0].Value)
}

func TestNormalize_Coercion(t *testing.T) {
	got, err := New().Normalize([]category.Entry{
		{Name: "  padded  ", Value: "40"},
		{Name: "flag", Value: true},
		{Name: 2024, Value: 59},
		{Name: nil, Value: 10},
		{Name: "", Value: 10},
		{Name: "zero", Value: 0},
		{Name: "negative", Value: -5},
		{Name: "junk", Value: "abc"},
		{Name: "nan", Value: math.NaN()},
		{Name: "inf", Value: math.Inf(1)},
		{Name: "list", Value: []any{1}},
		{Name: map[string]any{"x": 1}, Value: 10},
		{},
	})
	require.NoError(t, err)
	assert.Equal(t, []category.Category{
		{Name: "padded", Value: 40},
		{Name: "flag", Value: 1},
		{Name: "2024", Value: 59},
	}, got)
}

func TestNormalize_NoValidData(t *testing.T) {
	for _, entries := range [][]category.Entry{
		nil,
		{},
		{{Name: "a", Value: 0}},
		{{Name: "", Value: 50}},
		{{Name: "a", Value: "n/a"}, {Name: "b", Value: false}},
	} {
		_, err := New().Normalize(entries)
		assert.ErrorIs(t, err, ErrNoValidData)
	}
}

func TestNormalize_AgeBracketsSorted(t *testing.T) {
	n := &Normalizer{Tolerance: DefaultTolerance, SortByLeadingNumber: true}
	got, err := n.Normalize([]category.Entry{
		{Name: "aged 25-34", Value: float64(40)},
		{Name: "aged 45+", Value: float64(35)},
		{Name: "aged 18-24", Value: float64(25)},
	})
	require.NoError(t, err)
	assert.Equal(t, []category.Category{
		{Name: "aged 18-24", Value: 25},
		{Name: "aged 25-34", Value: 40},
		{Name: "aged 45+", Value: 35},
	}, got)
}

func TestNormalize_SortWithoutNumberLast(t *testing.T) {
	n := &Normalizer{Tolerance: DefaultTolerance, SortByLeadingNumber: true}
	got, err := n.Normalize([]category.Entry{
		{Name: "unknown", Value: 10},
		{Name: "65+", Value: 20},
		{Name: "other", Value: 5},
		{Name: "9-17", Value: 65},
	})
	require.NoError(t, err)
	names := []string{got[0].Name, got[1].Name, got[2].Name, got[3].Name}
	assert.Equal(t, []string{"9-17", "65+", "unknown", "other"}, names, "stable for ties")
}

func TestNormalize_DropsSharesThatRoundToZero(t *testing.T) {
	got, err := New().Normalize([]category.Entry{
		{Name: "big", Value: 1000},
		{Name: "tiny", Value: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []category.Category{{Name: "big", Value: 100}}, got)
}
