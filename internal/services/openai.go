package services

import (
	"context"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
)

const openAICorrectionPrompt = `這是一段audio transcription，因為是AI產生的，可能有許多錯字與問題，我需要你把它轉成正確的格式。

請修正以下內容：
1. 修正錯字和語法錯誤
2. 使用繁體中文（台灣）
3. 適當的標點符號

只回傳修正後的文字，不要額外說明。`

const openAISummaryPrompt = `請為這段內容製作摘要，重點包括：
1. 主要的教導或信息
2. 重要的引用或原則
3. 實際的應用或呼籲
4. 見證或例子的核心要點

請用繁體中文（台灣）回應。`

// OpenAIService talks to the OpenAI chat and Whisper transcription APIs.
type OpenAIService struct {
	httpService
}

// NewOpenAIService creates an OpenAI-backed capability service.
func NewOpenAIService(apiKey string, log logger.Logger) *OpenAIService {
	return &OpenAIService{
		httpService: newHTTPService(apiKey, providerConfig{
			name:              "openai",
			baseURL:           "https://api.openai.com/v1",
			correctionPrompt:  openAICorrectionPrompt,
			summaryPrompt:     openAISummaryPrompt,
			defaultCorrection: "gpt-4o-mini",
			defaultSummary:    "gpt-4o-mini",
			defaultTranscribe: "gpt-4o-mini-transcribe",
		}, log),
	}
}

func (s *OpenAIService) Transcribe(ctx context.Context, audioPath, language, model string) *models.TranscriptionResult {
	if model == "" {
		model = s.config.defaultTranscribe
	}
	return s.transcribeAudio(ctx, audioPath, language, model)
}

func (s *OpenAIService) Correct(ctx context.Context, text, targetLanguage, model string) *models.CorrectionResult {
	if model == "" {
		model = s.config.defaultCorrection
	}
	return s.correctText(ctx, text, targetLanguage, model)
}

func (s *OpenAIService) Summarize(ctx context.Context, text, instructions string, wordLimit int, model string) *models.SummaryResult {
	if model == "" {
		model = s.config.defaultSummary
	}
	return s.summarizeText(ctx, text, instructions, wordLimit, model)
}
