package server

import (
	"time"

	"formfill/internal/ai"
	"formfill/internal/audit"
	"formfill/internal/config"
	formfillErrors "formfill/internal/errors"
	"formfill/internal/types"
)

// AnswerRequest is the request body for the answer endpoint.
type AnswerRequest struct {
	Question   string           `json:"question"`
	Options    []string         `json:"options,omitempty"`
	FieldType  string           `json:"fieldType,omitempty"`
	Profile    types.Profile    `json:"profile,omitempty"`
	ResumeText string           `json:"resumeText,omitempty"`
	JobDetails types.JobDetails `json:"jobDetails,omitempty"`
}

// ParseRequest is the request body for the profile parse endpoint.
type ParseRequest struct {
	ResumeText string `json:"resumeText"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// AI services, shared across requests so circuit breaker state
	// accumulates. Nil when the provider could not be configured.
	AnswerAI  *ai.Service
	ExtractAI *ai.Service

	// Interaction log store
	Audit *audit.Store

	// Stops the prompt file watcher on shutdown
	stopPromptWatcher func()

	// Logger
	Logger *formfillErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *formfillErrors.Logger) (*Server, error) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	auditStore, err := audit.NewStore(appCfg.Audit.Dir, appCfg.Audit.Enabled, logger)
	if err != nil {
		return nil, err
	}

	// An unconfigured provider is not fatal: the heuristic and fallback
	// tiers keep the answer endpoint working.
	answerConfig := appCfg.GetAnswerConfig()
	answerAI, err := ai.NewService(&answerConfig, "answer", logger)
	if err != nil {
		logger.Warn("Answer AI service unavailable, requests will use heuristics and fallback",
			"error", err.Error())
	}

	extractConfig := appCfg.GetExtractConfig()
	extractAI, err := ai.NewService(&extractConfig, "extract", logger)
	if err != nil {
		logger.Warn("Extract AI service unavailable, requests will use the regex resume parser",
			"error", err.Error())
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		AnswerAI:       answerAI,
		ExtractAI:      extractAI,
		Audit:          auditStore,
		Logger:         logger,
	}, nil
}
