package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brainwise-app/brainwise-api/internal/assessments"
	"github.com/brainwise-app/brainwise-api/internal/inference"
	"github.com/brainwise-app/brainwise-api/internal/jobs"
	"github.com/brainwise-app/brainwise-api/internal/risk"
)

// TabularPredictor is the handler's view of the remote inference client.
type TabularPredictor interface {
	Supports(domain risk.Domain) bool
	PredictTabular(ctx context.Context, domain risk.Domain, profile risk.HealthProfile) (risk.Prediction, error)
}

// Handler serves the prediction and analysis-job routes.
type Handler struct {
	predictor    TabularPredictor // nil when no remote endpoints are configured
	orchestrator *jobs.Orchestrator
	history      assessments.Store
	log          *zap.Logger
	timeout      time.Duration
}

func NewHandler(predictor TabularPredictor, orchestrator *jobs.Orchestrator, history assessments.Store, log *zap.Logger) *Handler {
	return &Handler{
		predictor:    predictor,
		orchestrator: orchestrator,
		history:      history,
		log:          log,
		timeout:      15 * time.Second,
	}
}

type predictRequest struct {
	OwnerID string `json:"ownerId"`
	risk.HealthProfile
}

// Predict handles POST /api/predict/:domain. A remote-model failure is
// logged and recovered by the local predictor; for a valid request the
// caller always gets a 200 with a usable result.
func (h *Handler) Predict(c *gin.Context) {
	domain, err := risk.ParseDomain(c.Param("domain"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result := h.predict(c.Request.Context(), domain, req.HealthProfile)

	if req.OwnerID != "" {
		record := &assessments.Assessment{
			ID:          uuid.NewString(),
			OwnerID:     req.OwnerID,
			Domain:      string(domain),
			Category:    result.Prediction,
			Probability: result.Probability,
			RiskFactors: result.RiskFactors,
			RiskLevel:   string(result.RiskLevel),
			ModelStatus: result.ModelStatus,
			CreatedAt:   time.Now().UTC(),
		}
		if err := h.history.Record(c.Request.Context(), record); err != nil {
			h.log.Error("cannot record assessment", zap.String("ownerId", req.OwnerID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record assessment"})
			return
		}
	}

	c.JSON(http.StatusOK, result)
}

// predict tries the remote model first and falls back to the local
// predictor on any failure.
func (h *Handler) predict(ctx context.Context, domain risk.Domain, profile risk.HealthProfile) risk.Prediction {
	if h.predictor != nil && h.predictor.Supports(domain) {
		callCtx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		result, err := h.predictor.PredictTabular(callCtx, domain, profile)
		if err == nil {
			return result
		}
		h.log.Warn("remote inference failed, using local predictor",
			zap.String("domain", string(domain)), zap.Error(err))
	}
	return risk.Score(domain, profile)
}

type submitJobRequest struct {
	ScanType string `json:"scanType" binding:"required"`
	InputRef string `json:"inputRef" binding:"required"`
	OwnerID  string `json:"ownerId"`
}

// SubmitAnalysisJob handles POST /api/analysis-jobs.
func (h *Handler) SubmitAnalysisJob(c *gin.Context) {
	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scanType and inputRef are required"})
		return
	}

	scan, err := inference.ParseScanType(req.ScanType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.orchestrator.Submit(c.Request.Context(), req.OwnerID, scan, req.InputRef)
	if err != nil {
		h.log.Error("cannot submit analysis job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit analysis job"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"jobId": job.ID, "status": "processing"})
}

// GetAnalysisJob handles GET /api/analysis-jobs/:id.
func (h *Handler) GetAnalysisJob(c *gin.Context) {
	job, err := h.orchestrator.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis job not found"})
			return
		}
		h.log.Error("cannot load analysis job", zap.String("jobId", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListAssessments handles GET /api/assessments?ownerId=...
func (h *Handler) ListAssessments(c *gin.Context) {
	ownerID := c.Query("ownerId")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId is required"})
		return
	}

	list, err := h.history.ListByOwner(c.Request.Context(), ownerID, 50)
	if err != nil {
		h.log.Error("cannot list assessments", zap.String("ownerId", ownerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list assessments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessments": list})
}
