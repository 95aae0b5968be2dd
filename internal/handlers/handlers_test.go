package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/apierror"
	"github.com/JonnyWalker81/lifeline/internal/classifier"
	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAnalysisService struct {
	analyzeFn   func(ctx context.Context, records []models.RawRecord, overrides *models.AnalyzeOptions) (*models.Report, error)
	getReportFn func(ctx context.Context, id string) (*models.Report, error)
}

func (m *mockAnalysisService) Analyze(ctx context.Context, records []models.RawRecord, overrides *models.AnalyzeOptions) (*models.Report, error) {
	return m.analyzeFn(ctx, records, overrides)
}

func (m *mockAnalysisService) GetReport(ctx context.Context, id string) (*models.Report, error) {
	return m.getReportFn(ctx, id)
}

type mockClassificationService struct {
	textFn  func(ctx context.Context, text, category string) (*models.Classification, error)
	batchFn func(ctx context.Context, req *models.ClassifyRequest) (*models.ClassificationBatch, error)
}

func (m *mockClassificationService) ClassifyText(ctx context.Context, text, category string) (*models.Classification, error) {
	return m.textFn(ctx, text, category)
}

func (m *mockClassificationService) ClassifyBatch(ctx context.Context, req *models.ClassifyRequest) (*models.ClassificationBatch, error) {
	return m.batchFn(ctx, req)
}

func newTestRouter(a *mockAnalysisService, c *mockClassificationService) *gin.Engine {
	router := gin.New()
	var classify *ClassifyHandler
	if c != nil {
		classify = NewClassifyHandler(c)
	}
	RegisterRoutes(router, NewAnalysisHandler(a), classify)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) apierror.ProblemDetails {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != apierror.ContentTypeProblemJSON {
		t.Errorf("Content-Type = %q, want %q", ct, apierror.ContentTypeProblemJSON)
	}
	var p apierror.ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("response is not a problem document: %v", err)
	}
	return p
}

func TestAnalyze(t *testing.T) {
	var gotRecords []models.RawRecord
	var gotOptions *models.AnalyzeOptions
	svc := &mockAnalysisService{
		analyzeFn: func(_ context.Context, records []models.RawRecord, overrides *models.AnalyzeOptions) (*models.Report, error) {
			gotRecords = records
			gotOptions = overrides
			r := &models.Report{ID: "0192f0c0-0000-7000-8000-000000000000"}
			r.Normalize()
			return r, nil
		},
	}
	router := newTestRouter(svc, nil)

	body := `{"events":[{"timestamp":"2024-03-01T08:00:00Z","label":"Work","confidence":0.9}],"options":{"qualifying_label":"Travel"}}`
	w := serve(router, http.MethodPost, "/api/v1/analyze", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(gotRecords) != 1 || gotRecords[0].Label.Value != "Work" {
		t.Errorf("records = %+v", gotRecords)
	}
	if gotOptions == nil || gotOptions.QualifyingLabel == nil || *gotOptions.QualifyingLabel != "Travel" {
		t.Errorf("options = %+v", gotOptions)
	}

	var report models.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.ID != "0192f0c0-0000-7000-8000-000000000000" {
		t.Errorf("ID = %q", report.ID)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "malformed json",
			body:       `{"events": [`,
			wantStatus: http.StatusBadRequest,
			wantType:   apierror.TypeBadRequest,
		},
		{
			name:       "validation error",
			body:       `{"events":[]}`,
			err:        &eventstore.ValidationError{Field: "timezone", Reason: "unknown time zone Mars/Base"},
			wantStatus: http.StatusBadRequest,
			wantType:   apierror.TypeValidation,
		},
		{
			name:       "unexpected error",
			body:       `{"events":[]}`,
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantType:   apierror.TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnalysisService{
				analyzeFn: func(context.Context, []models.RawRecord, *models.AnalyzeOptions) (*models.Report, error) {
					return nil, tt.err
				},
			}
			w := serve(newTestRouter(svc, nil), http.MethodPost, "/api/v1/analyze", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			p := decodeProblem(t, w)
			if p.Type != tt.wantType {
				t.Errorf("type = %q, want %q", p.Type, tt.wantType)
			}
			if strings.Contains(w.Body.String(), "disk on fire") {
				t.Error("internal error text leaked to the client")
			}
		})
	}
}

func TestAnalyze_ValidationErrorNamesField(t *testing.T) {
	svc := &mockAnalysisService{
		analyzeFn: func(context.Context, []models.RawRecord, *models.AnalyzeOptions) (*models.Report, error) {
			return nil, &eventstore.ValidationError{Field: "label", Reason: "required field is missing from every record"}
		},
	}
	w := serve(newTestRouter(svc, nil), http.MethodPost, "/api/v1/analyze", `{"events":[{"timestamp":"2024-03-01"}]}`)

	p := decodeProblem(t, w)
	if len(p.Errors) != 1 || p.Errors[0].Field != "label" {
		t.Errorf("errors = %+v", p.Errors)
	}
}

func TestGetReport(t *testing.T) {
	id, err := uuid.NewV7()
	if err != nil {
		t.Fatal(err)
	}
	known := id.String()
	missing, _ := uuid.NewV7()

	svc := &mockAnalysisService{
		getReportFn: func(_ context.Context, id string) (*models.Report, error) {
			if id == known {
				r := &models.Report{ID: known, GeneratedAt: time.Now().UTC()}
				r.Normalize()
				return r, nil
			}
			return nil, repository.ErrNotFound
		},
	}
	router := newTestRouter(svc, nil)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantType   string
	}{
		{"found", known, http.StatusOK, ""},
		{"not found", missing.String(), http.StatusNotFound, apierror.TypeNotFound},
		{"not a uuid", "abc", http.StatusBadRequest, apierror.TypeInvalidReportID},
		{"uuid v4", uuid.New().String(), http.StatusBadRequest, apierror.TypeInvalidReportID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/api/v1/reports/"+tt.id, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantType != "" {
				if p := decodeProblem(t, w); p.Type != tt.wantType {
					t.Errorf("type = %q, want %q", p.Type, tt.wantType)
				}
			}
		})
	}
}

func TestClassifyBatch(t *testing.T) {
	svc := &mockClassificationService{
		batchFn: func(_ context.Context, req *models.ClassifyRequest) (*models.ClassificationBatch, error) {
			if req.Category != "daily_routine" || len(req.Items) != 1 {
				t.Errorf("request = %+v", req)
			}
			return &models.ClassificationBatch{
				Records:  []models.RawRecord{{Label: models.NewString("Work")}},
				Failures: []models.ClassificationFailure{},
			}, nil
		},
	}
	router := newTestRouter(&mockAnalysisService{}, svc)

	body := `{"items":[{"timestamp":"2024-03-01T09:00:00Z","text":"standup meeting"}],"category":"daily_routine"}`
	w := serve(router, http.MethodPost, "/api/v1/classify", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var batch models.ClassificationBatch
	if err := json.Unmarshal(w.Body.Bytes(), &batch); err != nil {
		t.Fatal(err)
	}
	if len(batch.Records) != 1 || batch.Records[0].Label.Value != "Work" {
		t.Errorf("records = %+v", batch.Records)
	}
}

func TestClassify_Errors(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		body        string
		err         error
		wantStatus  int
		wantType    string
		wantRetryIn string
	}{
		{
			name:        "circuit open",
			path:        "/api/v1/classify",
			body:        `{"items":[]}`,
			err:         classifier.ErrCircuitOpen,
			wantStatus:  http.StatusBadGateway,
			wantType:    apierror.TypeClassifierUnavailable,
			wantRetryIn: "30",
		},
		{
			name:       "unknown category",
			path:       "/api/v1/classify",
			body:       `{"items":[],"category":"hobbies"}`,
			err:        &eventstore.ValidationError{Field: "category", Reason: `unknown category "hobbies"`},
			wantStatus: http.StatusBadRequest,
			wantType:   apierror.TypeValidation,
		},
		{
			name:       "missing items",
			path:       "/api/v1/classify",
			body:       `{"category":"life_events"}`,
			wantStatus: http.StatusBadRequest,
			wantType:   apierror.TypeBadRequest,
		},
		{
			name:       "empty text",
			path:       "/api/v1/classify/text",
			body:       `{"text":"!!!"}`,
			err:        classifier.ErrEmptyText,
			wantStatus: http.StatusBadRequest,
			wantType:   apierror.TypeValidation,
		},
		{
			name:        "text circuit open",
			path:        "/api/v1/classify/text",
			body:        `{"text":"went for a run"}`,
			err:         classifier.ErrCircuitOpen,
			wantStatus:  http.StatusBadGateway,
			wantType:    apierror.TypeClassifierUnavailable,
			wantRetryIn: "30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockClassificationService{
				textFn: func(context.Context, string, string) (*models.Classification, error) {
					return nil, tt.err
				},
				batchFn: func(context.Context, *models.ClassifyRequest) (*models.ClassificationBatch, error) {
					return nil, tt.err
				},
			}
			w := serve(newTestRouter(&mockAnalysisService{}, svc), http.MethodPost, tt.path, tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if p := decodeProblem(t, w); p.Type != tt.wantType {
				t.Errorf("type = %q, want %q", p.Type, tt.wantType)
			}
			if got := w.Header().Get("Retry-After"); got != tt.wantRetryIn {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetryIn)
			}
		})
	}
}

func TestClassifyText(t *testing.T) {
	svc := &mockClassificationService{
		textFn: func(_ context.Context, text, category string) (*models.Classification, error) {
			return &models.Classification{Label: "Exercise", Confidence: 0.8, KeywordsFound: []string{"run"}}, nil
		},
	}
	w := serve(newTestRouter(&mockAnalysisService{}, svc), http.MethodPost, "/api/v1/classify/text", `{"text":"went for a run"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"label":"Exercise"`)) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestClassifyRoutesOptional(t *testing.T) {
	w := serve(newTestRouter(&mockAnalysisService{}, nil), http.MethodPost, "/api/v1/classify", `{"items":[]}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a classifier", w.Code)
	}
}
