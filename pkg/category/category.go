package category

// Category is one named share of a breakdown. After normalization the values
// of a set sum to 100 (within rounding).
type Category struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Entry is an unvalidated name/value pair as an extractor produced it.
// Name and Value keep whatever dynamic type they arrived with (string,
// float64, bool, nil, ...); the normalizer decides what they mean.
type Entry struct {
	Name  any `json:"name"`
	Value any `json:"value"`
}

// Entries converts already-typed categories into raw entries.
func Entries(cats []Category) []Entry {
	out := make([]Entry, 0, len(cats))
	for _, c := range cats {
		out = append(out, Entry{Name: c.Name, Value: c.Value})
	}
	return out
}

// Total returns the sum of all values.
func Total(cats []Category) float64 {
	var sum float64
	for _, c := range cats {
		sum += c.Value
	}
	return sum
}

// Contains reports whether a category with exactly this name is present.
func Contains(cats []Category, name string) bool {
	for _, c := range cats {
		if c.Name == name {
			return true
		}
	}
	return false
}
