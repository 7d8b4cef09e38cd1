package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"formfill/internal/ai"
	"formfill/internal/common"
	"formfill/internal/config"
	"formfill/internal/errors"
	"formfill/internal/heuristics"
	"formfill/internal/profile"
	"formfill/internal/types"

	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Decide how to fill a single form field",
	Long: `Decide an action and value for a job application form question.
The question goes through heuristic rules first, then the AI model, then a
canned fallback, so the command always produces an answer. Provide the
candidate profile as a JSON file and/or a resume file (plain text or PDF).`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if answerConfig.OutputFormat == "" {
			answerConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(answerConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnswer,
}

var (
	answerConfig      common.CommandConfig
	answerOptions     []string
	answerFieldType   string
	answerProfileFile string
	answerResumeFile  string
	answerJobTitle    string
	answerJobCompany  string
)

func init() {
	answerCmd.Flags().StringVarP(&answerConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	answerCmd.Flags().StringVar(&answerConfig.OutputFormat, "format", "", "Output format: json or text")
	answerCmd.Flags().StringSliceVar(&answerOptions, "options", nil, "Allowed option values for select/radio fields")
	answerCmd.Flags().StringVar(&answerFieldType, "field-type", "", "Form field type: text, select, radio, checkbox, file")
	answerCmd.Flags().StringVar(&answerProfileFile, "profile-file", "", "Candidate profile JSON file")
	answerCmd.Flags().StringVar(&answerResumeFile, "resume-file", "", "Resume file (plain text or PDF)")
	answerCmd.Flags().StringVar(&answerJobTitle, "job-title", "", "Job title for context")
	answerCmd.Flags().StringVar(&answerJobCompany, "job-company", "", "Company name for context")

	// Add completion for format flag
	_ = answerCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnswer(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	input, err := buildAnswerInput(args[0], logger)
	if err != nil {
		return err
	}

	logger.Info("Answering form question",
		"question_length", len(input.Question),
		"options_count", len(input.Options),
		"field_type", input.FieldType,
		"output_format", answerConfig.OutputFormat)

	answer := answerQuestion(cmd.Context(), cfg, logger, input)

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(answer, answerConfig); err != nil {
		return fmt.Errorf("failed to write answer: %w", err)
	}

	logger.Info("Form question answered", "source", answer.Source, "action", answer.Action)
	return nil
}

// buildAnswerInput assembles the question input from flags. The profile file
// and resume file are both optional; resume-scraped values fill profile gaps.
func buildAnswerInput(question string, logger *errors.Logger) (types.AnswerQuestionInput, error) {
	var supplied types.Profile
	if answerProfileFile != "" {
		fileProcessor := common.NewFileProcessor(logger)
		content, err := fileProcessor.ReadFile(answerProfileFile)
		if err != nil {
			return types.AnswerQuestionInput{}, err
		}
		if err := json.Unmarshal([]byte(content), &supplied); err != nil {
			return types.AnswerQuestionInput{}, fmt.Errorf("failed to parse profile file %s: %w", answerProfileFile, err)
		}
	}

	var resumeText string
	if answerResumeFile != "" {
		text, err := profile.ReadResumeFile(answerResumeFile)
		if err != nil {
			return types.AnswerQuestionInput{}, err
		}
		resumeText = text
	}

	return types.AnswerQuestionInput{
		Question:   question,
		Options:    answerOptions,
		FieldType:  answerFieldType,
		Profile:    profile.Resolve(supplied, resumeText),
		ResumeText: resumeText,
		JobDetails: types.JobDetails{
			Title:   answerJobTitle,
			Company: answerJobCompany,
		},
	}, nil
}

// answerQuestion runs the three answer tiers and always returns an answer.
func answerQuestion(ctx context.Context, cfg *config.Config, logger *errors.Logger, input types.AnswerQuestionInput) types.FieldAnswer {
	if answer := heuristics.Match(input); answer != nil {
		logger.Debug("Question answered by heuristic rule", "rule", answer.Reason)
		return *answer
	}

	answerAIConfig := cfg.GetAnswerConfig()
	aiService, err := ai.NewService(&answerAIConfig, "answer", logger)
	if err != nil {
		logger.LogError(err, "Failed to create AI service, using fallback answer")
		return ai.FallbackAnswer(input)
	}

	answer, tokenUsage, err := aiService.Provider.AnswerQuestion(ctx, input)
	if err != nil {
		logger.LogError(err, "AI answer failed, using fallback answer",
			"question_length", len(input.Question))
		return ai.FallbackAnswer(input)
	}

	if tokenUsage != nil {
		logger.Info("AI token usage",
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens,
			"total_tokens", tokenUsage.TotalTokens)
	}

	return answer
}
