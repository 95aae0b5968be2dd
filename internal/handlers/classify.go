package handlers

import (
	"errors"
	"net/http"

	"github.com/JonnyWalker81/lifeline/internal/apierror"
	"github.com/JonnyWalker81/lifeline/internal/classifier"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/service"
	"github.com/gin-gonic/gin"
)

// ClassifyHandler handles text classification HTTP requests
type ClassifyHandler struct {
	classificationService service.ClassificationService
}

// NewClassifyHandler creates a new classify handler
func NewClassifyHandler(classificationService service.ClassificationService) *ClassifyHandler {
	return &ClassifyHandler{
		classificationService: classificationService,
	}
}

// ClassifyTextRequest is the body of a single-text classification request
type ClassifyTextRequest struct {
	Text     string `json:"text" binding:"required"`
	Category string `json:"category"`
}

// ClassifyBatch handles POST /api/v1/classify
//
// The response holds activity records ready to be posted to /api/v1/analyze
// together with the texts that could not be classified.
func (h *ClassifyHandler) ClassifyBatch(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	batch, err := h.classificationService.ClassifyBatch(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// ClassifyText handles POST /api/v1/classify/text
func (h *ClassifyHandler) ClassifyText(c *gin.Context) {
	var req ClassifyTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	result, err := h.classificationService.ClassifyText(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ClassifyHandler) writeError(c *gin.Context, err error) {
	requestID := apierror.GetRequestID(c)

	switch {
	case errors.Is(err, classifier.ErrCircuitOpen):
		apierror.WriteProblem(c, apierror.NewClassifierUnavailableError(requestID, classifierRetryAfter))
	case errors.Is(err, classifier.ErrEmptyText):
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "text", Message: "is empty after cleaning", Code: "empty"},
		}))
	default:
		writeServiceError(c, err, "failed to classify text")
	}
}
