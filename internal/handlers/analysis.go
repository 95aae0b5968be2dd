package handlers

import (
	"errors"
	"net/http"

	"github.com/JonnyWalker81/lifeline/internal/apierror"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/repository"
	"github.com/JonnyWalker81/lifeline/internal/service"
	"github.com/gin-gonic/gin"
)

// AnalysisHandler handles report HTTP requests
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Analyze handles POST /api/v1/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	report, err := h.analysisService.Analyze(c.Request.Context(), req.Events, req.Options)
	if err != nil {
		writeServiceError(c, err, "failed to analyze events")
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetReport handles GET /api/v1/reports/:id
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	id := c.Param("id")
	requestID := apierror.GetRequestID(c)

	if err := service.ValidateReportID(id); err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidReportIDError(requestID, id, err.Error()))
		return
	}

	ctx := logger.WithReportID(c.Request.Context(), id)
	report, err := h.analysisService.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "Report", id))
			return
		}
		logger.Ctx(ctx).Error("failed to get report", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, report)
}
