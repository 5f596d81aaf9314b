package risk

import "strings"

// countProbability maps the number of triggered alzheimers factors to a
// probability. Four or more factors saturate at the last entry.
var countProbability = []float64{0.05, 0.15, 0.30, 0.60, 0.80}

// ScoreAlzheimers runs the counting predictor: each present factor
// contributes one count, the count indexes a fixed probability table, and
// the probability yields both the display category and the coarse level
// persisted with the assessment.
func ScoreAlzheimers(profile HealthProfile) Prediction {
	factors := []string{}

	if profile.Age > 65 {
		factors = append(factors, "Age > 65")
	}
	if profile.MemoryComplaints {
		factors = append(factors, "Memory Complaints")
	}
	if profile.FamilyHistory {
		factors = append(factors, "Family History")
	}
	if profile.CognitiveScore != nil && *profile.CognitiveScore < 24 {
		factors = append(factors, "Low Cognitive Score")
	}
	if normalized(profile.Mobility) == "limited" {
		factors = append(factors, "Limited Mobility")
	}
	if normalized(profile.IndependentLiving) == "needs assistance" {
		factors = append(factors, "Needs Assistance")
	}

	count := len(factors)
	if count >= len(countProbability) {
		count = len(countProbability) - 1
	}
	probability := countProbability[count]

	return Prediction{
		Prediction:      string(Categorize(probability)),
		Probability:     probability,
		RiskFactors:     factors,
		ModelStatus:     ModelStatusFallback,
		InferenceTimeMs: localInferenceMs,
		RiskLevel:       Coarse(probability),
	}
}

func normalized(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
