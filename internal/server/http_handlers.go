package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"formfill/internal/ai"
	formfillErrors "formfill/internal/errors"
	"formfill/internal/heuristics"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler provides a comprehensive health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "formfill",
		"version": s.Version,
	}

	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	response["circuit_breakers"] = s.checkCircuitBreakerHealth()

	response["audit_log"] = map[string]any{
		"enabled": s.Audit != nil && s.Audit.Enabled(),
	}

	// Overall health degrades when any model is unavailable. The heuristic
	// and fallback tiers keep answering, so this is degraded, not down.
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if modelInfo, ok := modelStatus.(*ai.ModelInfo); ok && !modelInfo.Available {
			overallHealthy = false
			break
		}
		if modelInfo, ok := modelStatus.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth checks the health of the models used by each operation
func (s *Server) checkAIModelsHealth() map[string]any {
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)

	if s.AnswerAI != nil {
		aiStatus["answer"] = s.AnswerAI.GetModelInfo(ctx)
	} else {
		aiStatus["answer"] = map[string]any{
			"available": false,
			"error":     "answer service is not configured",
		}
	}

	if s.ExtractAI != nil {
		aiStatus["extract"] = s.ExtractAI.GetModelInfo(ctx)
	} else {
		aiStatus["extract"] = map[string]any{
			"available": false,
			"error":     "extract service is not configured",
		}
	}

	return aiStatus
}

// checkCircuitBreakerHealth reports circuit breaker state for each AI operation
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)

	if s.AnswerAI != nil {
		circuitBreakerStatus["answer"] = s.AnswerAI.Provider.GetCircuitBreakerStats()
	} else {
		circuitBreakerStatus["answer"] = map[string]any{
			"available": false,
			"error":     "answer service is not configured",
		}
	}

	if s.ExtractAI != nil {
		circuitBreakerStatus["extract"] = s.ExtractAI.Provider.GetCircuitBreakerStats()
	} else {
		circuitBreakerStatus["extract"] = map[string]any{
			"available": false,
			"error":     "extract service is not configured",
		}
	}

	return circuitBreakerStatus
}

// statsHandler provides server statistics including rate limiting and audit counts
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "formfill",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"heuristics": map[string]any{
			"rules": heuristics.RuleNames(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.Audit != nil && s.Audit.Enabled() {
		if counts, err := s.Audit.Count(); err == nil {
			response["interactions"] = counts
		} else {
			s.Logger.LogError(err, "Failed to count interaction log records")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// logsHandler serves the interaction log collection: GET lists records with
// aggregate counts, DELETE clears the directory.
func (s *Server) logsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, stats, err := s.Audit.List()
		if err != nil {
			s.Logger.LogError(err, "Failed to list interaction log records")
			writeErrorResponse(w, "Failed to list interaction logs", err.Error(), http.StatusInternalServerError)
			return
		}
		response := map[string]any{
			"counts":  stats,
			"records": records,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Failed to encode logs response: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	case http.MethodDelete:
		deleted, err := s.Audit.DeleteAll()
		if err != nil {
			s.Logger.LogError(err, "Failed to delete interaction log records")
			writeErrorResponse(w, "Failed to delete interaction logs", err.Error(), http.StatusInternalServerError)
			return
		}
		s.Logger.Info("Interaction log records deleted", "count", deleted)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"deleted": deleted}); err != nil {
			log.Printf("Failed to encode logs response: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// logHandler serves a single interaction log record by ID.
func (s *Server) logHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		record, err := s.Audit.Read(id)
		if err != nil {
			writeAuditError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(record); err != nil {
			log.Printf("Failed to encode log response: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	case http.MethodDelete:
		if err := s.Audit.Delete(id); err != nil {
			writeAuditError(w, err)
			return
		}
		s.Logger.Info("Interaction log record deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeAuditError maps audit store errors to HTTP status codes
func writeAuditError(w http.ResponseWriter, err error) {
	var appErr *formfillErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case formfillErrors.ErrCodeLogNotFound:
			writeErrorResponse(w, "Interaction log not found", appErr.Message, http.StatusNotFound)
			return
		case formfillErrors.ErrCodeInvalidRequest:
			writeErrorResponse(w, "Invalid interaction log ID", appErr.Message, http.StatusBadRequest)
			return
		}
	}
	writeErrorResponse(w, "Failed to access interaction log", err.Error(), http.StatusInternalServerError)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
