package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreStroke_HypertensionAndAge(t *testing.T) {
	result := ScoreStroke(HealthProfile{
		Hypertension:    1,
		HeartDisease:    0,
		Age:             70,
		SmokingStatus:   "never smoked",
		AvgGlucoseLevel: 90,
		BMI:             22,
		Gender:          "Female",
	})

	// 0.20 (hypertension) + 0.15 (age > 65) = 0.35
	want := 1 / (1 + math.Exp(-5*(0.35-0.5)))
	require.InDelta(t, want, result.Probability, 1e-9)
	assert.InDelta(t, 0.321, result.Probability, 0.001)
	assert.Equal(t, string(CategoryModerate), result.Prediction)
	assert.Equal(t, []string{"Hypertension", "Age > 65"}, result.RiskFactors)
	assert.Equal(t, ModelStatusFallback, result.ModelStatus)
}

func TestScoreStroke_NoFactors(t *testing.T) {
	result := ScoreStroke(HealthProfile{
		Age:             30,
		SmokingStatus:   "never smoked",
		AvgGlucoseLevel: 85,
		BMI:             21,
		Gender:          "Female",
	})

	require.InDelta(t, 1/(1+math.Exp(2.5)), result.Probability, 1e-9)
	assert.Equal(t, string(CategoryVeryLow), result.Prediction)
	assert.Empty(t, result.RiskFactors)
	require.NotNil(t, result.StrokePrediction)
	assert.Equal(t, 0, *result.StrokePrediction)
}

func TestScoreStroke_BracketsAreExclusive(t *testing.T) {
	result := ScoreStroke(HealthProfile{Age: 80})
	assert.Equal(t, []string{"Age > 75"}, result.RiskFactors)

	result = ScoreStroke(HealthProfile{AvgGlucoseLevel: 250, BMI: 40, SmokingStatus: "smokes"})
	assert.Equal(t, []string{"Current Smoker", "Glucose > 200", "BMI > 35"}, result.RiskFactors)
}

func TestScoreStroke_Deterministic(t *testing.T) {
	profile := HealthProfile{
		Gender: "Male", Age: 68, Hypertension: 1, HeartDisease: 1,
		AvgGlucoseLevel: 150, BMI: 31, SmokingStatus: "formerly smoked",
	}
	first := ScoreStroke(profile)
	second := ScoreStroke(profile)
	assert.Equal(t, first, second)
}

func TestScoreStroke_Monotonic(t *testing.T) {
	base := HealthProfile{Age: 50, AvgGlucoseLevel: 100, BMI: 24, Gender: "Female"}
	low := ScoreStroke(base)

	base.BMI = 36
	high := ScoreStroke(base)

	assert.Greater(t, high.Probability, low.Probability)
}

func TestScoreStroke_ProbabilityBounds(t *testing.T) {
	profiles := []HealthProfile{
		{},
		{Age: -10, BMI: -5, AvgGlucoseLevel: -1},
		{Age: 200, BMI: 90, AvgGlucoseLevel: 900, Hypertension: 1, HeartDisease: 1, SmokingStatus: "smokes", Gender: "Male"},
	}
	for _, p := range profiles {
		result := ScoreStroke(p)
		assert.GreaterOrEqual(t, result.Probability, 0.0)
		assert.LessOrEqual(t, result.Probability, 1.0)
	}
}

func TestScoreStroke_BinaryFollowsProbability(t *testing.T) {
	result := ScoreStroke(HealthProfile{
		Age: 80, Hypertension: 1, HeartDisease: 1,
		AvgGlucoseLevel: 250, BMI: 40, SmokingStatus: "smokes", Gender: "Male",
	})
	require.NotNil(t, result.StrokePrediction)
	assert.Equal(t, 1, *result.StrokePrediction)
	assert.Greater(t, result.Probability, 0.5)
}
