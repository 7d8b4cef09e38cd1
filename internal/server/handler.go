package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"formfill/internal/ai"
	"formfill/internal/audit"
	"formfill/internal/heuristics"
	"formfill/internal/observability"
	"formfill/internal/profile"
	"formfill/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createAnswerHandler wraps the field answer pipeline with observability.
// Tiers run in order: heuristic rules, then the model, then the canned
// fallback. The endpoint itself never fails on an AI error.
func (s *Server) createAnswerHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("formfill.api")
		ctx, span := tracer.Start(ctx, "api.answer")
		defer span.End()

		var req AnswerRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Question) == "" {
			err := fmt.Errorf("missing question")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing question", "question field is required", http.StatusBadRequest)
			return
		}

		if len(req.ResumeText) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("resume text too large: %d chars", len(req.ResumeText))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Resume text too large", fmt.Sprintf("resumeText exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.question_length", len(req.Question)),
			attribute.Int("request.options_count", len(req.Options)),
			attribute.String("request.field_type", req.FieldType),
			attribute.String("operation", "answer"),
		)

		input := types.AnswerQuestionInput{
			Question:   req.Question,
			Options:    req.Options,
			FieldType:  req.FieldType,
			Profile:    profile.Resolve(req.Profile, req.ResumeText),
			ResumeText: req.ResumeText,
			JobDetails: req.JobDetails,
		}

		start := time.Now()
		answer, tokens := s.answerQuestion(ctx, input, om)
		duration := time.Since(start)

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "question_answered", true, om,
			attribute.String("source", string(answer.Source)),
			attribute.String("action", string(answer.Action)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("answer.source", string(answer.Source)),
			attribute.String("answer.action", string(answer.Action)),
		)

		s.writeAuditRecord(ctx, req, answer, duration, tokens, om)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(answer); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// answerQuestion runs the three answer tiers and always returns an answer.
// The returned token count is zero unless the model tier produced the answer.
func (s *Server) answerQuestion(ctx context.Context, input types.AnswerQuestionInput, om *observability.ObservabilityManager) (types.FieldAnswer, int64) {
	if answer := heuristics.Match(input); answer != nil {
		s.Logger.Debug("Question answered by heuristic rule",
			"rule", answer.Reason,
			"action", answer.Action)
		return *answer, 0
	}

	if s.AnswerAI == nil {
		s.Logger.Debug("Answer AI service not configured, using fallback answer")
		return ai.FallbackAnswer(input), 0
	}

	metrics := om.GetMetrics()
	var answer types.FieldAnswer
	var totalTokens int64
	err := metrics.TrackAIOperationWithTokens(ctx, "answer", func(ctx context.Context) *observability.AIOperationResult {
		output, tokenUsage, aiErr := s.AnswerAI.Provider.AnswerQuestion(ctx, input)
		answer = output
		if tokenUsage != nil {
			totalTokens = tokenUsage.TotalTokens
		}
		return &observability.AIOperationResult{
			Error:      aiErr,
			TokenUsage: (*observability.TokenUsage)(tokenUsage),
		}
	}, om)

	if err != nil {
		s.Logger.LogError(err, "AI answer failed, using fallback answer",
			"question_length", len(input.Question))
		return ai.FallbackAnswer(input), 0
	}

	return answer, totalTokens
}

// writeAuditRecord persists the interaction. Failures are logged and
// swallowed: the caller already has the answer.
func (s *Server) writeAuditRecord(ctx context.Context, req AnswerRequest, answer types.FieldAnswer, duration time.Duration, tokens int64, om *observability.ObservabilityManager) {
	if s.Audit == nil || !s.Audit.Enabled() {
		return
	}

	record := audit.Record{
		Question:  req.Question,
		Options:   req.Options,
		FieldType: req.FieldType,
		Answer:    answer,
		Model:     s.AppConfig.GetAnswerConfig().Model,
		Duration:  duration,
		Tokens:    tokens,
	}

	metrics := om.GetMetrics()
	id, err := s.Audit.Write(record)
	if err != nil {
		s.Logger.LogError(err, "Failed to write interaction log record")
		metrics.RecordBusinessMetric(ctx, "audit_record", false, om)
		return
	}

	metrics.RecordBusinessMetric(ctx, "audit_record", true, om)
	s.Logger.Debug("Interaction log record written", "id", id)
}

// createParseHandler wraps the resume parse handler with observability. The
// model does the extraction; when it fails, the regex scraper keeps the
// endpoint useful.
func (s *Server) createParseHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("formfill.api")
		ctx, span := tracer.Start(ctx, "api.parse")
		defer span.End()

		var req ParseRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "parse"),
		)

		result, source := s.parseResume(ctx, req.ResumeText, om)

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "profile_parsed", true, om,
			attribute.String("source", source))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("parse.source", source),
			attribute.Int("response.skills_count", len(result.Skills)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// parseResume extracts a profile with the model, falling back to the regex
// scraper. The returned source is "ai" or "regex".
func (s *Server) parseResume(ctx context.Context, resumeText string, om *observability.ObservabilityManager) (types.Profile, string) {
	if s.ExtractAI == nil {
		s.Logger.Debug("Extract AI service not configured, using regex resume parser")
		return profile.ParseResumeText(resumeText), "regex"
	}

	metrics := om.GetMetrics()
	var extracted types.Profile
	err := metrics.TrackAIOperationWithTokens(ctx, "extract", func(ctx context.Context) *observability.AIOperationResult {
		output, tokenUsage, aiErr := s.ExtractAI.Provider.ExtractProfile(ctx, types.ParseResumeInput{ResumeText: resumeText})
		extracted = output
		return &observability.AIOperationResult{
			Error:      aiErr,
			TokenUsage: (*observability.TokenUsage)(tokenUsage),
		}
	}, om)

	if err != nil || extracted.IsEmpty() {
		if err != nil {
			s.Logger.LogError(err, "AI extraction failed, using regex resume parser",
				"resume_length", len(resumeText))
		}
		return profile.ParseResumeText(resumeText), "regex"
	}

	// Regex-scraped values fill any gaps the model left.
	return profile.Merge(extracted, profile.ParseResumeText(resumeText)), "ai"
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
