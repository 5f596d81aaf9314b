// Package inference is the HTTP boundary to the externally hosted model
// endpoints. Callers treat any transport error, non-2xx status, or payload
// failing schema validation as a single failure mode: tabular callers fall
// back to the local predictor, image callers record the job as failed.
package inference

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/brainwise-app/brainwise-api/internal/risk"
)

// ErrBadResponse marks a 2xx response whose body failed schema validation.
var ErrBadResponse = errors.New("inference response failed validation")

// ScanType identifies an image-based analysis domain.
type ScanType string

const (
	ScanTumor      ScanType = "tumor"
	ScanAlzheimers ScanType = "alzheimers"
)

// ParseScanType validates a caller-supplied scan type.
func ParseScanType(s string) (ScanType, error) {
	switch ScanType(strings.ToLower(strings.TrimSpace(s))) {
	case ScanTumor:
		return ScanTumor, nil
	case ScanAlzheimers:
		return ScanAlzheimers, nil
	default:
		return "", fmt.Errorf("unknown scan type %q", s)
	}
}

// ScanResult is the normalized outcome of an image analysis.
type ScanResult struct {
	Prediction      string  `json:"prediction"`
	Confidence      float64 `json:"confidence"`
	ModelStatus     string  `json:"modelStatus"`
	InferenceTimeMs float64 `json:"inferenceTimeMs"`
}

// Config holds the per-domain endpoint URLs. Empty URLs disable the
// corresponding remote path.
type Config struct {
	StrokeURL     string
	AlzheimersURL string
	TumorURL      string
	Timeout       time.Duration
}

type Client struct {
	http    *resty.Client
	tabular map[risk.Domain]string
	imaging map[ScanType]string
	log     *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	// The alzheimers model is image-only (it takes a fileUrl); tabular
	// alzheimers predictions are served by the local predictor.
	tabular := map[risk.Domain]string{}
	if cfg.StrokeURL != "" {
		tabular[risk.DomainStroke] = cfg.StrokeURL
	}

	imaging := map[ScanType]string{}
	if cfg.TumorURL != "" {
		imaging[ScanTumor] = cfg.TumorURL
	}
	if cfg.AlzheimersURL != "" {
		imaging[ScanAlzheimers] = cfg.AlzheimersURL
	}

	return &Client{
		http:    resty.New().SetTimeout(timeout),
		tabular: tabular,
		imaging: imaging,
		log:     log,
	}
}

// Supports reports whether a remote endpoint is configured for the domain.
func (c *Client) Supports(domain risk.Domain) bool {
	_, ok := c.tabular[domain]
	return ok
}

// rawTabular is the wire shape of the tabular model response. Probability
// is a pointer so a missing field fails validation instead of reading as 0.
type rawTabular struct {
	Prediction       string   `json:"prediction"`
	Probability      *float64 `json:"probability"`
	StrokePrediction *int     `json:"stroke_prediction"`
	RiskFactors      []string `json:"risk_factors"`
	ExecutionTimeMs  float64  `json:"execution_time_ms"`
}

// PredictTabular posts the profile as form data to the model endpoint and
// normalizes the response. The field names cross the boundary in the model
// API's snake_case convention.
func (c *Client) PredictTabular(ctx context.Context, domain risk.Domain, profile risk.HealthProfile) (risk.Prediction, error) {
	url, ok := c.tabular[domain]
	if !ok {
		return risk.Prediction{}, fmt.Errorf("no endpoint configured for domain %q", domain)
	}

	c.log.Debug("calling tabular model", zap.String("domain", string(domain)), zap.String("url", url))

	var raw rawTabular
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(tabularForm(profile)).
		SetResult(&raw).
		Post(url)
	if err != nil {
		return risk.Prediction{}, fmt.Errorf("call %s model: %w", domain, err)
	}
	if resp.IsError() {
		return risk.Prediction{}, fmt.Errorf("%s model returned status %d", domain, resp.StatusCode())
	}
	if raw.Prediction == "" || raw.Probability == nil {
		return risk.Prediction{}, fmt.Errorf("%s model: %w", domain, ErrBadResponse)
	}

	factors := raw.RiskFactors
	if factors == nil {
		factors = []string{}
	}

	return risk.Prediction{
		Prediction:       raw.Prediction,
		Probability:      *raw.Probability,
		RiskFactors:      factors,
		ModelStatus:      risk.ModelStatusProduction,
		InferenceTimeMs:  raw.ExecutionTimeMs,
		StrokePrediction: raw.StrokePrediction,
	}, nil
}

// rawScan is the wire shape of the image model response. The endpoint
// reports failures as a 200 with an error field.
type rawScan struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

// AnalyzeScan submits the uploaded artifact's URL to the image model.
func (c *Client) AnalyzeScan(ctx context.Context, scan ScanType, inputRef string) (ScanResult, error) {
	url, ok := c.imaging[scan]
	if !ok {
		return ScanResult{}, fmt.Errorf("no endpoint configured for scan type %q", scan)
	}

	c.log.Debug("calling image model", zap.String("scanType", string(scan)), zap.String("url", url))

	started := time.Now()
	var raw rawScan
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"fileUrl": inputRef}).
		SetResult(&raw).
		Post(url)
	if err != nil {
		return ScanResult{}, fmt.Errorf("call %s model: %w", scan, err)
	}
	if resp.IsError() {
		return ScanResult{}, fmt.Errorf("%s model returned status %d", scan, resp.StatusCode())
	}
	if raw.Error != "" {
		return ScanResult{}, fmt.Errorf("%s model: %s", scan, raw.Error)
	}
	if raw.Prediction == "" {
		return ScanResult{}, fmt.Errorf("%s model: %w", scan, ErrBadResponse)
	}

	return ScanResult{
		Prediction:      raw.Prediction,
		Confidence:      raw.Confidence,
		ModelStatus:     risk.ModelStatusProduction,
		InferenceTimeMs: float64(time.Since(started).Milliseconds()),
	}, nil
}

// tabularForm maps profile fields to the model API's form names. The
// capitalized Residence_type is a quirk of the deployed model, not a typo.
func tabularForm(p risk.HealthProfile) map[string]string {
	return map[string]string{
		"gender":            p.Gender,
		"age":               formatFloat(p.Age),
		"hypertension":      strconv.Itoa(p.Hypertension),
		"heart_disease":     strconv.Itoa(p.HeartDisease),
		"ever_married":      p.EverMarried,
		"work_type":         p.WorkType,
		"Residence_type":    p.ResidenceType,
		"avg_glucose_level": formatFloat(p.AvgGlucoseLevel),
		"bmi":               formatFloat(p.BMI),
		"smoking_status":    p.SmokingStatus,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
