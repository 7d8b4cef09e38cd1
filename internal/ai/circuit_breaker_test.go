package ai

import (
	"errors"
	"testing"
	"time"

	"formfill/internal/config"

	"google.golang.org/genai"
)

func breakerConfig(enabled bool, minRequests uint32, threshold float64) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          enabled,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			MinRequests:      minRequests,
			FailureThreshold: threshold,
		},
	}
}

func TestDisabledCircuitBreakerIsNil(t *testing.T) {
	cfg := breakerConfig(false, 5, 0.6)

	cb := NewAICircuitBreaker("answer", cfg, nil)
	if cb != nil {
		t.Fatal("disabled breaker should be nil")
	}

	// A nil breaker executes directly and reports healthy.
	result, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	})
	if err != nil || result == nil {
		t.Fatalf("nil breaker Execute: result=%v err=%v", result, err)
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
	stats := cb.GetStats()
	if enabled, ok := stats["enabled"].(bool); !ok || enabled {
		t.Errorf("stats = %v, want enabled=false", stats)
	}
}

func TestCircuitBreakerTripsOnFailures(t *testing.T) {
	cfg := breakerConfig(true, 3, 0.6)
	cb := NewAICircuitBreaker("answer", cfg, nil)
	if cb == nil {
		t.Fatal("expected an enabled breaker")
	}

	failing := func() (*genai.GenerateContentResponse, error) {
		return nil, errors.New("model unavailable")
	}

	for range 3 {
		_, _ = cb.Execute(failing)
	}

	if cb.IsHealthy() {
		t.Error("breaker should be open after consecutive failures")
	}

	// An open breaker rejects without invoking the function.
	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return &genai.GenerateContentResponse{}, nil
	})
	if err == nil {
		t.Error("open breaker should reject")
	}
	if called {
		t.Error("open breaker must not invoke the function")
	}

	stats := cb.GetStats()
	if stats["state"] != "open" {
		t.Errorf("state = %v, want open", stats["state"])
	}
}

func TestIndependentBreakersPerOperation(t *testing.T) {
	answerCB := NewAICircuitBreaker("answer", breakerConfig(true, 3, 0.6), nil)
	extractCB := NewAICircuitBreaker("extract", breakerConfig(true, 3, 0.6), nil)

	failing := func() (*genai.GenerateContentResponse, error) {
		return nil, errors.New("model unavailable")
	}
	for range 3 {
		_, _ = answerCB.Execute(failing)
	}

	if answerCB.IsHealthy() {
		t.Error("answer breaker should be open")
	}
	if !extractCB.IsHealthy() {
		t.Error("extract breaker must be unaffected by answer failures")
	}

	answerStats := answerCB.GetStats()
	extractStats := extractCB.GetStats()
	if answerStats["name"] == extractStats["name"] {
		t.Error("breakers should have distinct names")
	}
}

func TestModelCircuitBreaker(t *testing.T) {
	cb := NewModelCircuitBreaker("answer", breakerConfig(true, 3, 0.6), nil)
	if cb == nil {
		t.Fatal("expected an enabled model breaker")
	}

	model, err := cb.ExecuteModel(func() (*genai.Model, error) {
		return &genai.Model{Name: "gemini-2.0-flash"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Name != "gemini-2.0-flash" {
		t.Errorf("model name = %q", model.Name)
	}
	if !cb.IsModelHealthy() {
		t.Error("breaker should be healthy after a success")
	}

	if disabled := NewModelCircuitBreaker("answer", breakerConfig(false, 3, 0.6), nil); disabled != nil {
		t.Error("disabled model breaker should be nil")
	}
}
