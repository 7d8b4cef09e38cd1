package cli

import (
	"fmt"

	"formfill/internal/config"
	"formfill/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for form field answering and profile extraction",
	Long: `Start an HTTP server that provides REST API endpoints for answering job
application form questions and extracting candidate profiles from resumes.

Available endpoints:
- POST /api/answer: Decide an action and value for a form question
- POST /api/profile/parse: Extract a candidate profile from resume text
- GET/DELETE /api/logs: List or clear interaction log records
- GET/DELETE /api/logs/{id}: Fetch or delete a single interaction log record
- GET /health: Health check endpoint
- GET /stats: Server statistics, heuristic rules and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
}

// applyServeFlagOverrides layers serve flags the user set on top of the
// loaded server configuration. Unset flags leave the config values alone.
func applyServeFlagOverrides(cmd *cobra.Command, serverCfg *config.ServerConfig) {
	override := func(flagName string, target *string) {
		if value, err := cmd.Flags().GetString(flagName); err == nil && value != "" {
			*target = value
		}
	}

	override("port", &serverCfg.Port)
	override("host", &serverCfg.Host)
	override("tls-mode", &serverCfg.TLS.Mode)
	override("cert-file", &serverCfg.TLS.CertFile)
	override("key-file", &serverCfg.TLS.KeyFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeFlagOverrides(cmd, &cfg.Server)

	// Validate TLS configuration after applying overrides
	tempConfig := &config.Config{Server: cfg.Server}
	if err := tempConfig.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}

	srv, err := server.NewServer(cfg, serverCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
