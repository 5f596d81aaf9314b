package risk

import (
	"fmt"
	"strings"
)

// Domain selects which tabular predictor to run.
type Domain string

const (
	DomainStroke     Domain = "stroke"
	DomainAlzheimers Domain = "alzheimers"
)

// ParseDomain validates a caller-supplied domain string.
func ParseDomain(s string) (Domain, error) {
	switch Domain(strings.ToLower(strings.TrimSpace(s))) {
	case DomainStroke:
		return DomainStroke, nil
	case DomainAlzheimers:
		return DomainAlzheimers, nil
	default:
		return "", fmt.Errorf("unknown prediction domain %q", s)
	}
}

// HealthProfile carries the tabular health factors. No field is required:
// zero or out-of-range values are treated as "factor not present" by the
// predictors, never as an error.
type HealthProfile struct {
	Gender          string  `json:"gender"`
	Age             float64 `json:"age"`
	Hypertension    int     `json:"hypertension"`
	HeartDisease    int     `json:"heartDisease"`
	EverMarried     string  `json:"everMarried"`
	MaritalStatus   string  `json:"maritalStatus"`
	WorkType        string  `json:"workType"`
	ResidenceType   string  `json:"residenceType"`
	AvgGlucoseLevel float64 `json:"avgGlucoseLevel"`
	BMI             float64 `json:"bmi"`
	SmokingStatus   string  `json:"smokingStatus"`

	// Alzheimers-only factors. CognitiveScore is a pointer because a
	// missing score must not count as a low one.
	CognitiveScore    *float64 `json:"cognitiveScore,omitempty"`
	MemoryComplaints  bool     `json:"memoryComplaints"`
	FamilyHistory     bool     `json:"familyHistory"`
	Mobility          string   `json:"mobility"`
	IndependentLiving string   `json:"independentLiving"`
}

// Model status values carried on a Prediction.
const (
	ModelStatusProduction = "production"
	ModelStatusFallback   = "fallback"
)

// Prediction is the immutable result of a tabular prediction, local or
// remote. It is built once and serialized straight to the caller.
type Prediction struct {
	Prediction       string      `json:"prediction"`
	Probability      float64     `json:"probability"`
	RiskFactors      []string    `json:"riskFactors"`
	ModelStatus      string      `json:"modelStatus"`
	InferenceTimeMs  float64     `json:"inferenceTimeMs"`
	StrokePrediction *int        `json:"strokePrediction,omitempty"`
	RiskLevel        CoarseLevel `json:"riskLevel,omitempty"`
}

// Score runs the local predictor for the given domain.
func Score(domain Domain, profile HealthProfile) Prediction {
	if domain == DomainAlzheimers {
		return ScoreAlzheimers(profile)
	}
	return ScoreStroke(profile)
}
