package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"formfill/internal/config"
	formfillErrors "formfill/internal/errors"
	"formfill/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	operationType  string
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *formfillErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *formfillErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, formfillErrors.NewAIError(formfillErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		operationType:  operationType,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"operation_type", g.operationType,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"operation_type", g.operationType,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection refused) are worth retrying
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Google API errors with transient HTTP status codes
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// generate runs one model call with the operation timeout, circuit breaker,
// retries, and tracing. Callers decode the returned raw text themselves so
// that loose extraction can salvage fenced or prose-wrapped JSON.
func (g *GeminiProvider) generate(
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (string, *TokenUsage, error) {
	tracer := otel.Tracer("formfill.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	// The operation timeout bounds the whole call, retries included. The
	// answer operation keeps this short so form filling stays interactive.
	callCtx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(callCtx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if errors.Is(err, context.DeadlineExceeded) {
			return "", nil, formfillErrors.NewAIError(formfillErrors.ErrCodeAITimeout,
				"AI call timed out for "+operationName, err)
		}
		return "", nil, formfillErrors.NewAIError(formfillErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return result.Text(), tokenUsage, nil
}

// rawAnswer mirrors the answer response schema before repair.
type rawAnswer struct {
	Action string `json:"action"`
	Value  string `json:"value"`
	Reason string `json:"reason,omitempty"`
}

// AnswerQuestion implements AIProvider for single form field decisions
func (g *GeminiProvider) AnswerQuestion(ctx context.Context, input types.AnswerQuestionInput) (types.FieldAnswer, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForAnswer(input)
	genaiConfig := g.buildAnswerSchema()

	text, tokenUsage, err := g.generate(
		ctx,
		"answer_question",
		userPrompt,
		systemPrompt,
		genaiConfig,
		attribute.Int("input.question_length", len(input.Question)),
		attribute.Int("input.options_count", len(input.Options)),
		attribute.String("input.field_type", input.FieldType),
	)
	if err != nil {
		return types.FieldAnswer{}, nil, err
	}

	var raw rawAnswer
	if err := decodeLoose(text, &raw); err != nil {
		return types.FieldAnswer{}, tokenUsage, err
	}

	answer := RepairAnswer(types.FieldAnswer{
		Action: types.Action(raw.Action),
		Value:  raw.Value,
		Source: types.SourceAI,
		Reason: raw.Reason,
	}, input.Options)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("output.action", string(answer.Action)),
			attribute.Int("output.value_length", len(answer.Value)),
		)
	}

	return answer, tokenUsage, nil
}

// ExtractProfile implements AIProvider for structured resume extraction
func (g *GeminiProvider) ExtractProfile(ctx context.Context, input types.ParseResumeInput) (types.Profile, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForExtract(input.ResumeText)
	genaiConfig := g.buildExtractSchema()

	text, tokenUsage, err := g.generate(
		ctx,
		"extract_profile",
		userPrompt,
		systemPrompt,
		genaiConfig,
		attribute.Int("input.resume_length", len(input.ResumeText)),
	)
	if err != nil {
		return types.Profile{}, nil, err
	}

	var profile types.Profile
	if err := decodeLoose(text, &profile); err != nil {
		return types.Profile{}, tokenUsage, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.skills_count", len(profile.Skills)),
			attribute.Int("output.experience_count", len(profile.Experience)),
		)
	}

	return profile, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// buildAnswerSchema creates the schema for form field answer requests
func (g *GeminiProvider) buildAnswerSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"action": {
					Type: genai.TypeString,
					Enum: []string{"select", "type", "click", "check", "upload"},
				},
				"value":  {Type: genai.TypeString},
				"reason": {Type: genai.TypeString},
			},
			Required: []string{"action", "value"},
		},
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// buildExtractSchema creates the schema for resume extraction requests
func (g *GeminiProvider) buildExtractSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":     {Type: genai.TypeString},
				"email":    {Type: genai.TypeString},
				"phone":    {Type: genai.TypeString},
				"location": {Type: genai.TypeString},
				"skills": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"experience": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"title":       {Type: genai.TypeString},
							"company":     {Type: genai.TypeString},
							"duration":    {Type: genai.TypeString},
							"description": {Type: genai.TypeString},
						},
					},
				},
				"education": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"degree":      {Type: genai.TypeString},
							"field":       {Type: genai.TypeString},
							"institution": {Type: genai.TypeString},
							"year":        {Type: genai.TypeString},
						},
					},
				},
				"currentCtc":   {Type: genai.TypeString},
				"expectedCtc":  {Type: genai.TypeString},
				"noticePeriod": {Type: genai.TypeString},
			},
		},
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// getPromptsForAnswer returns system and user prompts for field answering
func (g *GeminiProvider) getPromptsForAnswer(input types.AnswerQuestionInput) (string, string) {
	systemPrompt := g.getSystemPrompt()
	userPrompt := g.getUserPrompt()

	fieldType := input.FieldType
	if fieldType == "" {
		fieldType = "text"
	}
	optionsText := "(none, free-form field)"
	if len(input.Options) > 0 {
		optionsText = strings.Join(input.Options, " | ")
	}

	profileJSON := "{}"
	if !input.Profile.IsEmpty() {
		if data, err := json.MarshalIndent(input.Profile, "", "  "); err == nil {
			profileJSON = string(data)
		}
	}

	resumeText := input.ResumeText
	if resumeText == "" {
		resumeText = "(not provided)"
	}

	formattedUserPrompt := fmt.Sprintf(userPrompt,
		input.Question, fieldType, optionsText, profileJSON, resumeText, formatJobDetails(input.JobDetails))

	return systemPrompt, formattedUserPrompt
}

// getPromptsForExtract returns system and user prompts for resume extraction
func (g *GeminiProvider) getPromptsForExtract(resumeText string) (string, string) {
	systemPrompt := g.getSystemPrompt()
	userPrompt := g.getUserPrompt()

	return systemPrompt, fmt.Sprintf(userPrompt, resumeText)
}

func formatJobDetails(job types.JobDetails) string {
	parts := make([]string, 0, 4)
	if job.Title != "" {
		parts = append(parts, "Title: "+job.Title)
	}
	if job.Company != "" {
		parts = append(parts, "Company: "+job.Company)
	}
	if job.Location != "" {
		parts = append(parts, "Location: "+job.Location)
	}
	if job.Description != "" {
		parts = append(parts, "Description: "+job.Description)
	}
	if len(parts) == 0 {
		return "(not provided)"
	}
	return strings.Join(parts, "\n")
}

// getSystemPrompt returns the system prompt for this provider's operation
func (g *GeminiProvider) getSystemPrompt() string {
	loadedPrompts := config.GetPromptsForOperation(g.operationType)

	switch g.operationType {
	case "answer":
		return resolvePrompt(
			loadedPrompts.SystemPrompt,
			g.config.CustomPrompts.SystemPrompts.AnswerQuestion,
			DefaultSystemPrompts.AnswerQuestion,
		)
	case "extract":
		return resolvePrompt(
			loadedPrompts.SystemPrompt,
			g.config.CustomPrompts.SystemPrompts.ExtractProfile,
			DefaultSystemPrompts.ExtractProfile,
		)
	default:
		return ""
	}
}

// getUserPrompt returns the user prompt template for this provider's operation
func (g *GeminiProvider) getUserPrompt() string {
	loadedPrompts := config.GetPromptsForOperation(g.operationType)

	switch g.operationType {
	case "answer":
		return resolvePrompt(
			loadedPrompts.UserPrompt,
			g.config.CustomPrompts.UserPrompts.AnswerQuestion,
			DefaultUserPrompts.AnswerQuestion,
		)
	case "extract":
		return resolvePrompt(
			loadedPrompts.UserPrompt,
			g.config.CustomPrompts.UserPrompts.ExtractProfile,
			DefaultUserPrompts.ExtractProfile,
		)
	default:
		return ""
	}
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// resolvePrompt selects the prompt string by priority:
// 1. Content loaded from a configured prompt file.
// 2. A prompt defined directly in the configuration.
// 3. The hardcoded default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
