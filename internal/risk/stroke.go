package risk

import (
	"math"
	"strings"
)

// The local predictors report a fixed nominal inference time so that
// identical inputs produce identical outputs.
const localInferenceMs = 1

// strokeFactor is one row of the stroke weight table: if the predicate
// holds, the weight is added and the label is appended, in table order.
// Within a bracket group only the highest matching row fires.
type strokeFactor struct {
	label   string
	weight  float64
	applies func(HealthProfile) bool
}

var strokeFactors = [][]strokeFactor{
	{{"Hypertension", 0.20, func(p HealthProfile) bool { return p.Hypertension == 1 }}},
	{{"Heart Disease", 0.25, func(p HealthProfile) bool { return p.HeartDisease == 1 }}},
	{
		{"Age > 75", 0.25, func(p HealthProfile) bool { return p.Age > 75 }},
		{"Age > 65", 0.15, func(p HealthProfile) bool { return p.Age > 65 }},
		{"Age > 55", 0.10, func(p HealthProfile) bool { return p.Age > 55 }},
		{"Age > 45", 0.05, func(p HealthProfile) bool { return p.Age > 45 }},
	},
	{
		{"Current Smoker", 0.15, func(p HealthProfile) bool { return smokingStatus(p) == "smokes" }},
		{"Former Smoker", 0.08, func(p HealthProfile) bool { return smokingStatus(p) == "formerly smoked" }},
	},
	{
		{"Glucose > 200", 0.20, func(p HealthProfile) bool { return p.AvgGlucoseLevel > 200 }},
		{"Glucose > 140", 0.15, func(p HealthProfile) bool { return p.AvgGlucoseLevel > 140 }},
		{"Glucose > 110", 0.05, func(p HealthProfile) bool { return p.AvgGlucoseLevel > 110 }},
	},
	{
		{"BMI > 35", 0.15, func(p HealthProfile) bool { return p.BMI > 35 }},
		{"BMI > 30", 0.10, func(p HealthProfile) bool { return p.BMI > 30 }},
		{"BMI > 25", 0.05, func(p HealthProfile) bool { return p.BMI > 25 }},
	},
	{{"Male Gender", 0.05, func(p HealthProfile) bool {
		return strings.EqualFold(strings.TrimSpace(p.Gender), "male")
	}}},
}

// ScoreStroke runs the weighted-linear stroke predictor: accumulate the
// weights of the triggered factors, squash through a logistic centered at
// 0.5 with steepness 5, and categorize. It never fails; absent or
// implausible fields simply do not trigger.
func ScoreStroke(profile HealthProfile) Prediction {
	total := 0.0
	factors := []string{}

	for _, group := range strokeFactors {
		for _, f := range group {
			if f.applies(profile) {
				total += f.weight
				factors = append(factors, f.label)
				break
			}
		}
	}

	probability := logistic(total)
	binary := 0
	if probability > 0.5 {
		binary = 1
	}

	return Prediction{
		Prediction:       string(Categorize(probability)),
		Probability:      probability,
		RiskFactors:      factors,
		ModelStatus:      ModelStatusFallback,
		InferenceTimeMs:  localInferenceMs,
		StrokePrediction: &binary,
	}
}

// logistic squashes an additive score into (0,1) with a smooth transition
// around 0.5 instead of hard clipping.
func logistic(score float64) float64 {
	return 1 / (1 + math.Exp(-5*(score-0.5)))
}

func smokingStatus(p HealthProfile) string {
	return strings.ToLower(strings.TrimSpace(p.SmokingStatus))
}
