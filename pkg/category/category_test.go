package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntriesKeepsOrderAndValues(t *testing.T) {
	cats := []Category{{Name: "a", Value: 10}, {Name: "b", Value: 90}}

	entries := Entries(cats)

	assert.Equal(t, []Entry{{Name: "a", Value: 10.0}, {Name: "b", Value: 90.0}}, entries)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 0.0, Total(nil))
	assert.InDelta(t, 100.0, Total([]Category{{"x", 33.3}, {"y", 66.7}}), 1e-9)
}

func TestContains(t *testing.T) {
	cats := []Category{{Name: "regular items", Value: 15}}

	assert.True(t, Contains(cats, "regular items"))
	assert.False(t, Contains(cats, "Regular Items"))
}
