package apierror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestProblemDetailsJSON(t *testing.T) {
	retryAfter := 30
	problem := &ProblemDetails{
		Type:        TypeValidation,
		Title:       TitleValidation,
		Status:      http.StatusBadRequest,
		Detail:      "label: required field is missing from every record",
		Instance:    "/api/v1/analyze",
		RequestID:   "req-abc123",
		UserMessage: "Please fix the errors",
		RetryAfter:  &retryAfter,
		Errors: []FieldError{
			{Field: "label", Message: "required field is missing from every record", Code: "required"},
		},
	}

	data, err := json.Marshal(problem)
	if err != nil {
		t.Fatalf("Failed to marshal ProblemDetails: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	expected := map[string]interface{}{
		"type":         TypeValidation,
		"title":        TitleValidation,
		"status":       float64(http.StatusBadRequest),
		"instance":     "/api/v1/analyze",
		"request_id":   "req-abc123",
		"user_message": "Please fix the errors",
		"retry_after":  float64(30),
	}
	for key, want := range expected {
		if result[key] != want {
			t.Errorf("Expected %s=%v, got %v", key, want, result[key])
		}
	}

	errs, ok := result["errors"].([]interface{})
	if !ok || len(errs) != 1 {
		t.Errorf("Expected 1 error, got %v", result["errors"])
	}
}

func TestProblemDetailsJSONOmitsEmpty(t *testing.T) {
	problem := &ProblemDetails{
		Type:   TypeInternal,
		Title:  TitleInternal,
		Status: http.StatusInternalServerError,
	}

	data, err := json.Marshal(problem)
	if err != nil {
		t.Fatalf("Failed to marshal ProblemDetails: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	for _, key := range []string{"detail", "instance", "request_id", "user_message", "retry_after", "errors"} {
		if _, exists := result[key]; exists {
			t.Errorf("Expected %q to be omitted, but it was present", key)
		}
	}
}

func TestProblemDetailsError(t *testing.T) {
	withDetail := &ProblemDetails{Title: TitleNotFound, Detail: "report with ID 'x' was not found"}
	if withDetail.Error() != withDetail.Detail {
		t.Errorf("Error() = %q, want detail", withDetail.Error())
	}
	titleOnly := &ProblemDetails{Title: TitleInternal}
	if titleOnly.Error() != TitleInternal {
		t.Errorf("Error() = %q, want title", titleOnly.Error())
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		problem    *ProblemDetails
		wantType   string
		wantStatus int
		wantRetry  bool
	}{
		{"validation", NewValidationError("r", []FieldError{{Field: "timezone", Message: "unknown"}}), TypeValidation, http.StatusBadRequest, false},
		{"bad request", NewBadRequestError("r", "invalid JSON", "Invalid request body"), TypeBadRequest, http.StatusBadRequest, false},
		{"invalid report id", NewInvalidReportIDError("r", "abc", "not a UUID"), TypeInvalidReportID, http.StatusBadRequest, false},
		{"not found", NewNotFoundError("r", "report", "abc"), TypeNotFound, http.StatusNotFound, false},
		{"rate limit", NewRateLimitError("r", 60), TypeRateLimit, http.StatusTooManyRequests, true},
		{"internal", NewInternalError("r"), TypeInternal, http.StatusInternalServerError, false},
		{"classifier unavailable", NewClassifierUnavailableError("r", 30), TypeClassifierUnavailable, http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.problem.Type != tt.wantType || tt.problem.Status != tt.wantStatus {
				t.Errorf("got %s/%d, want %s/%d", tt.problem.Type, tt.problem.Status, tt.wantType, tt.wantStatus)
			}
			if tt.problem.RequestID != "r" {
				t.Errorf("RequestID = %q", tt.problem.RequestID)
			}
			if (tt.problem.RetryAfter != nil) != tt.wantRetry {
				t.Errorf("RetryAfter = %v, want set=%v", tt.problem.RetryAfter, tt.wantRetry)
			}
		})
	}
}

func TestNewValidationErrorDetail(t *testing.T) {
	single := NewValidationError("r", []FieldError{{Field: "timezone", Message: "unknown time zone"}})
	if single.Detail != "timezone: unknown time zone" {
		t.Errorf("Detail = %q", single.Detail)
	}
	multi := NewValidationError("r", []FieldError{{Field: "a"}, {Field: "b"}})
	if multi.Detail != "One or more fields failed validation" {
		t.Errorf("Detail = %q", multi.Detail)
	}
}

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/reports/abc", nil)

	WriteProblem(c, NewRateLimitError("req-1", 42))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != ContentTypeProblemJSON {
		t.Errorf("Content-Type = %q, want %q", ct, ContentTypeProblemJSON)
	}
	if ra := w.Header().Get("Retry-After"); ra != "42" {
		t.Errorf("Retry-After = %q, want 42", ra)
	}

	var body ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to unmarshal body: %v", err)
	}
	if body.Instance != "/api/v1/reports/abc" {
		t.Errorf("Instance = %q, want request path", body.Instance)
	}
}

func TestGetRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Request-ID", "from-header")

	if got := GetRequestID(c); got != "from-header" {
		t.Errorf("GetRequestID = %q, want from-header", got)
	}

	c.Set("request_id", "from-context")
	if got := GetRequestID(c); got != "from-context" {
		t.Errorf("GetRequestID = %q, want from-context", got)
	}
}
