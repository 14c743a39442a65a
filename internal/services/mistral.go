package services

import (
	"context"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
)

const mistralCorrectionPrompt = `你是一個很熟悉繁體中文的文字編輯，這是一段audio transcription，因為是AI產生的，可能有許多錯字與辨識不出來的問題。請你單純修正錯誤的文字，根據上下文給出最合理的修訂文字，不要額外說明。`

const mistralSummaryPrompt = `請為這段內容製作摘要，重點包括：
1. 主要的教導或信息
2. 重要的引用或原則
3. 實際的應用或呼籲
4. 見證或例子的核心要點

請用繁體中文（台灣）回應。`

// MistralService talks to the Mistral chat and Voxtral transcription APIs.
type MistralService struct {
	httpService
}

// NewMistralService creates a Mistral-backed capability service.
func NewMistralService(apiKey string, log logger.Logger) *MistralService {
	return &MistralService{
		httpService: newHTTPService(apiKey, providerConfig{
			name:              "mistral",
			baseURL:           "https://api.mistral.ai/v1",
			correctionPrompt:  mistralCorrectionPrompt,
			summaryPrompt:     mistralSummaryPrompt,
			defaultCorrection: "mistral-small-latest",
			defaultSummary:    "mistral-small-latest",
			defaultTranscribe: "voxtral-mini-latest",
		}, log),
	}
}

func (s *MistralService) Transcribe(ctx context.Context, audioPath, language, model string) *models.TranscriptionResult {
	if model == "" {
		model = s.config.defaultTranscribe
	}
	return s.transcribeAudio(ctx, audioPath, language, model)
}

func (s *MistralService) Correct(ctx context.Context, text, targetLanguage, model string) *models.CorrectionResult {
	if model == "" {
		model = s.config.defaultCorrection
	}
	return s.correctText(ctx, text, targetLanguage, model)
}

func (s *MistralService) Summarize(ctx context.Context, text, instructions string, wordLimit int, model string) *models.SummaryResult {
	if model == "" {
		model = s.config.defaultSummary
	}
	return s.summarizeText(ctx, text, instructions, wordLimit, model)
}
