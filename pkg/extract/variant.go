package extract

import "fmt"

// Variant selects the instruction sent to the model and how its output is
// ordered afterwards.
type Variant string

const (
	// VariantGeneral extracts arbitrary categories, turning quantity x price
	// mentions into percentage shares.
	VariantGeneral Variant = "general"
	// VariantAgeDemographics extracts age brackets; results are ordered by the
	// bracket's lower bound.
	VariantAgeDemographics Variant = "age_demographics"
)

// ParseVariant maps a config value to a Variant. An empty string selects
// VariantGeneral.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case "", VariantGeneral:
		return VariantGeneral, nil
	case VariantAgeDemographics:
		return VariantAgeDemographics, nil
	default:
		return "", fmt.Errorf("unknown extraction variant %q", s)
	}
}

// SortsByLeadingNumber reports whether categories of this variant are ranges
// that should be ordered by the first number in their name.
func (v Variant) SortsByLeadingNumber() bool {
	return v == VariantAgeDemographics
}

// Instruction returns the built-in system instruction for the variant.
func (v Variant) Instruction() string {
	if v == VariantAgeDemographics {
		return ageDemographicsInstruction
	}
	return generalInstruction
}

const generalInstruction = `Extract numerical data from the text and calculate the total value for each category. Return a JSON array where each object has 'name' and 'value' properties.

Instructions:
1. For items with quantity and price:
   - Multiply quantity by price to get total value
   - Example: "3 items at $10 each" = $30 total

2. Group items by category and sum their values:
   - Regular items
   - Premium/Deluxe items
   - Additional charges

3. Calculate percentage of total for each category:
   - If a total is mentioned, use that as reference
   - Otherwise, sum all values and calculate percentages

4. Return array of objects with:
   - name: Clear category name
   - value: Percentage (0-100)

Example Input:
"A large order was placed on Tuesday for 15 regular items at $10 each, 5 premium items at $25 each, and 2 deluxe items at $50 each, resulting in a total sale of $425."

Expected Output:
{
  "data": [
    {"name": "Regular Items", "value": 35},
    {"name": "Premium Items", "value": 29},
    {"name": "Deluxe Items", "value": 36}
  ]
}`

const ageDemographicsInstruction = `Extract an age distribution from the text. Each category is an age bracket and its value is the share of people in that bracket as a percentage (0-100).

Instructions:
1. Name every bracket by its age range, e.g. "18-24", "25-34", "65+".
2. If counts are given instead of percentages, convert them to percentages of the total.
3. Skip anything that is not an age bracket.

Return JSON of the form:
{
  "data": [
    {"name": "18-24", "value": 25},
    {"name": "25-34", "value": 40},
    {"name": "45+", "value": 35}
  ]
}`
