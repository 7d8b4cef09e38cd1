package cli

import (
	"context"
	"fmt"

	"formfill/internal/ai"
	"formfill/internal/common"
	"formfill/internal/profile"
	"formfill/internal/types"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Extract a candidate profile from a resume",
	Long: `Extract a structured candidate profile from a resume file using AI.
The resume can be plain text or PDF. When the AI extraction fails, a regex
scraper produces a best-effort profile instead.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json or text")

	// Add completion for format flag
	_ = parseCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for extract operation
	extractAIConfig := cfg.GetExtractConfig()
	aiService, err := ai.NewService(&extractAIConfig, "extract", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.ParseResumeInput, error) {
		if len(contents) != 1 {
			return types.ParseResumeInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.ParseResumeInput{ResumeText: contents[0]}, nil
	}

	logDetails := func(input types.ParseResumeInput, cfg common.CommandConfig) {
		logger.Info("Starting profile extraction",
			"resume_chars", len(input.ResumeText),
			"output_format", cfg.OutputFormat)
	}

	// The extract tier falls back to the regex scraper, so the operation
	// itself never fails once the input is readable.
	extractOperation := func(ctx context.Context, input types.ParseResumeInput) (types.Profile, *ai.TokenUsage, error) {
		extracted, tokenUsage, aiErr := aiService.Provider.ExtractProfile(ctx, input)
		if aiErr != nil || extracted.IsEmpty() {
			if aiErr != nil {
				logger.LogError(aiErr, "AI extraction failed, using regex resume parser",
					"resume_length", len(input.ResumeText))
			}
			return profile.ParseResumeText(input.ResumeText), nil, nil
		}
		// Regex-scraped values fill any gaps the model left.
		return profile.Merge(extracted, profile.ParseResumeText(input.ResumeText)), tokenUsage, nil
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		parseConfig,
		args,
		createInput,
		extractOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to extract profile: %w", err)
	}
	logger.Info("Profile extraction completed successfully")
	return nil
}
