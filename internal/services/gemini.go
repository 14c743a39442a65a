package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
)

// GeminiService is a text-only provider backed by the Gemini API. It
// serves correction and summarization; transcription is not offered and
// reports failure-as-data so the stage layer can fall back.
type GeminiService struct {
	apiKey string
	logger logger.Logger
}

// NewGeminiService creates a Gemini-backed capability service.
func NewGeminiService(apiKey string, log logger.Logger) *GeminiService {
	return &GeminiService{apiKey: apiKey, logger: log}
}

func (s *GeminiService) generate(ctx context.Context, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

// Transcribe always fails as data: Gemini is wired for text tasks only.
func (s *GeminiService) Transcribe(ctx context.Context, audioPath, language, model string) *models.TranscriptionResult {
	return &models.TranscriptionResult{
		Language:      language,
		Model:         model,
		FailureReason: "gemini provider does not support transcription",
	}
}

func (s *GeminiService) Correct(ctx context.Context, text, targetLanguage, model string) *models.CorrectionResult {
	prompt := mistralCorrectionPrompt + "\n\n" + text

	content, err := s.generate(ctx, model, prompt)
	if err != nil {
		s.logger.Error(ctx, "gemini correction failed: %v", err)
		return &models.CorrectionResult{
			OriginalText:  text,
			Language:      targetLanguage,
			Model:         model,
			FailureReason: err.Error(),
		}
	}

	return &models.CorrectionResult{
		OriginalText:  text,
		CorrectedText: strings.TrimSpace(content),
		Language:      targetLanguage,
		Model:         model,
	}
}

func (s *GeminiService) Summarize(ctx context.Context, text, instructions string, wordLimit int, model string) *models.SummaryResult {
	prompt := instructions
	if prompt == "" {
		prompt = mistralSummaryPrompt
	}
	if wordLimit > 0 {
		prompt += fmt.Sprintf("\n\n請將摘要控制在約%d字以內。", wordLimit)
	}
	prompt += "\n\n請為以下內容製作摘要：\n\n" + text

	content, err := s.generate(ctx, model, prompt)
	if err != nil {
		s.logger.Error(ctx, "gemini summarization failed: %v", err)
		fallback := fmt.Sprintf("摘要生成失敗。原文長度：%d字符。請檢查網路連接或API配置。", len([]rune(text)))
		return &models.SummaryResult{
			Summary:            fallback,
			WordCount:          len([]rune(fallback)),
			Model:              model,
			CustomInstructions: instructions,
			FailureReason:      err.Error(),
		}
	}

	summary := strings.TrimSpace(content)
	return &models.SummaryResult{
		Summary:            summary,
		WordCount:          len([]rune(summary)),
		Model:              model,
		CustomInstructions: instructions,
	}
}
