package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"formfill/internal/config"
	formfillErrors "formfill/internal/errors"
	"formfill/internal/observability"
	"formfill/internal/types"
)

func testAppConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AI: config.AIConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			APIKey:      "test-key",
			Timeout:     5 * time.Second,
			MaxRetries:  0,
			Temperature: 0.2,
		},
		Audit: config.AuditConfig{Enabled: true, Dir: t.TempDir()},
		Observability: config.ObservabilityConfig{
			Enabled: false,
			HealthCheck: config.HealthCheckConfig{
				Timeout: time.Second,
			},
		},
	}
}

func newTestServer(t *testing.T, apiKeys []string) *Server {
	t.Helper()
	logger := formfillErrors.NewLogger(slog.LevelError)
	srv, err := NewServer(testAppConfig(t), ServerConfig{
		Host:           "localhost",
		Port:           "0",
		Version:        "test",
		APIKeys:        apiKeys,
		MaxRequestSize: 1024 * 1024,
	}, logger)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func disabledObservability(t *testing.T, cfg *config.Config) *observability.ObservabilityManager {
	t.Helper()
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	if err != nil {
		t.Fatalf("NewObservabilityManager: %v", err)
	}
	return om
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "****"},
		{"short", "****"},
		{"12345678", "****"},
		{"123456789abcdef", "12345678****"},
	}
	for _, tt := range tests {
		if got := maskAPIKey(tt.input); got != tt.want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		serverKeys []string
		apiKey     string
		bearer     string
		wantStatus int
	}{
		{"no keys configured skips auth", nil, "", "", http.StatusOK},
		{"missing key", []string{"valid-key"}, "", "", http.StatusUnauthorized},
		{"invalid key", []string{"valid-key"}, "wrong", "", http.StatusUnauthorized},
		{"valid header key", []string{"valid-key"}, "valid-key", "", http.StatusOK},
		{"valid bearer token", []string{"valid-key"}, "", "valid-key", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.serverKeys)
			handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest("POST", "/api/answer", nil)
			if tt.apiKey != "" {
				r.Header.Set("X-API-Key", tt.apiKey)
			}
			if tt.bearer != "" {
				r.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			w := httptest.NewRecorder()

			handler(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAnswerHandlerValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	om := disabledObservability(t, srv.AppConfig)
	handler := srv.createAnswerHandler(om)

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{
			name:        "wrong content type",
			contentType: "text/plain",
			body:        `{"question":"hi"}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "malformed JSON",
			contentType: "application/json",
			body:        `{"question":`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "missing question",
			contentType: "application/json",
			body:        `{"options":["Yes","No"]}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "blank question",
			contentType: "application/json",
			body:        `{"question":"   "}`,
			wantStatus:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/answer", bytes.NewBufferString(tt.body))
			r.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			handler(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error response is not JSON: %v", err)
			}
			if resp.Error == "" {
				t.Error("error field should be set")
			}
		})
	}
}

func TestAnswerHandlerHeuristicPath(t *testing.T) {
	// A question the heuristic tier owns never reaches the model, so the
	// handler works without a live AI backend.
	srv := newTestServer(t, nil)
	om := disabledObservability(t, srv.AppConfig)
	handler := srv.createAnswerHandler(om)

	body := `{"question":"What is your disability percentage?","options":["0%","10%"]}`
	r := httptest.NewRequest("POST", "/api/answer", bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var answer struct {
		Action string `json:"action"`
		Value  string `json:"value"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &answer); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if answer.Source != "heuristic" {
		t.Errorf("source = %q, want heuristic", answer.Source)
	}
	if answer.Action != "select" || answer.Value != "0%" {
		t.Errorf("answer = %q/%q, want select/0%%", answer.Action, answer.Value)
	}

	// The interaction is persisted.
	stats, err := srv.Audit.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("audit records = %d, want 1", stats.Total)
	}
}

func TestNewServerCreatesSharedAIServices(t *testing.T) {
	// Services are built once at construction so circuit breaker state
	// survives across requests instead of resetting per call.
	srv := newTestServer(t, nil)
	if srv.AnswerAI == nil {
		t.Error("answer AI service should be created at server construction")
	}
	if srv.ExtractAI == nil {
		t.Error("extract AI service should be created at server construction")
	}
}

func TestAnswerFallsBackWithoutAIService(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.AI.APIKey = ""
	logger := formfillErrors.NewLogger(slog.LevelError)
	srv, err := NewServer(cfg, ServerConfig{
		Host:           "localhost",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: 1024 * 1024,
	}, logger)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if srv.AnswerAI != nil || srv.ExtractAI != nil {
		t.Fatal("AI services should be nil without an API key")
	}

	om := disabledObservability(t, cfg)
	answer, tokens := srv.answerQuestion(context.Background(), types.AnswerQuestionInput{
		Question: "Describe your ideal team culture",
	}, om)

	if answer.Source != types.SourceFallback {
		t.Errorf("source = %q, want fallback", answer.Source)
	}
	if strings.TrimSpace(answer.Value) == "" {
		t.Error("fallback answer should carry a value")
	}
	if tokens != 0 {
		t.Errorf("tokens = %d, want 0", tokens)
	}
}

func TestParseHandlerValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	om := disabledObservability(t, srv.AppConfig)
	handler := srv.createParseHandler(om)

	r := httptest.NewRequest("POST", "/api/profile/parse", bytes.NewBufferString(`{"resumeText":"  "}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestWriteAuditError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "not found maps to 404",
			err:        formfillErrors.NewIOError(formfillErrors.ErrCodeLogNotFound, "missing", nil),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id maps to 400",
			err:        formfillErrors.NewValidationError(formfillErrors.ErrCodeInvalidRequest, "bad id", nil),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "anything else maps to 500",
			err:        formfillErrors.NewIOError(formfillErrors.ErrCodeFileNotReadable, "io", nil),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeAuditError(w, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.MaxRequestSize = 16

	handler := srv.requestSizeLimitMiddleware()(func(w http.ResponseWriter, r *http.Request) {
		if err := parseJSONRequest(r, &map[string]any{}); err != nil {
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	body := bytes.NewBufferString(`{"question":"this body is longer than sixteen bytes"}`)
	r := httptest.NewRequest("POST", "/api/answer", body)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for oversized body", w.Code)
	}
}
