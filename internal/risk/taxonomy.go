// Package risk implements the local heuristic predictors for the tabular
// brain-health domains (stroke, alzheimers).
//
// Each predictor evaluates an ordered table of threshold predicates against
// a HealthProfile and maps the accumulated score to a probability and a
// category from the shared taxonomy. The predictors are deterministic and
// do no I/O; they serve both as the primary path when no remote model is
// configured and as the fallback path when the remote call fails.
package risk

// Category is a display label from the shared risk taxonomy.
type Category string

const (
	CategoryVeryLow  Category = "Very Low Risk"
	CategoryLow      Category = "Low Risk"
	CategoryModerate Category = "Moderate Risk"
	CategoryHigh     Category = "High Risk"
	CategoryVeryHigh Category = "Very High Risk"
)

// taxonomy maps ascending probability upper bounds to categories. The last
// bucket is the catch-all; bounds must stay strictly increasing.
var taxonomy = []struct {
	upper    float64
	category Category
}{
	{0.1, CategoryVeryLow},
	{0.2, CategoryLow},
	{0.4, CategoryModerate},
	{0.6, CategoryHigh},
	{1.0, CategoryVeryHigh},
}

// Categorize maps a probability to its taxonomy category. Out-of-range
// input is clamped rather than rejected.
func Categorize(probability float64) Category {
	p := clamp01(probability)
	for _, bucket := range taxonomy[:len(taxonomy)-1] {
		if p < bucket.upper {
			return bucket.category
		}
	}
	return CategoryVeryHigh
}

// CoarseLevel is the three-step level persisted with alzheimers
// assessments, distinct from the display category.
type CoarseLevel string

const (
	CoarseLow      CoarseLevel = "low"
	CoarseModerate CoarseLevel = "moderate"
	CoarseHigh     CoarseLevel = "high"
)

// Coarse maps a probability to the storage-oriented level.
func Coarse(probability float64) CoarseLevel {
	p := clamp01(probability)
	switch {
	case p < 0.1:
		return CoarseLow
	case p < 0.3:
		return CoarseModerate
	default:
		return CoarseHigh
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
