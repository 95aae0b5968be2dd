package handlers

import (
	"errors"

	"github.com/JonnyWalker81/lifeline/internal/apierror"
	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/gin-gonic/gin"
)

// classifierRetryAfter matches the classifier circuit breaker's open timeout.
const classifierRetryAfter = 30

// writeServiceError maps a service error to a problem response. Unknown
// errors are logged and reported as internal errors without their text.
func writeServiceError(c *gin.Context, err error, msg string) {
	requestID := apierror.GetRequestID(c)

	var verr *eventstore.ValidationError
	if errors.As(err, &verr) {
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: verr.Field, Message: verr.Reason, Code: "invalid"},
		}))
		return
	}

	logger.Ctx(c.Request.Context()).Error(msg, logger.Err(err))
	apierror.WriteProblem(c, apierror.NewInternalError(requestID))
}
