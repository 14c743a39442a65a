package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
)

// Per-task request timeouts. Text operations are short; audio uploads are
// given much longer.
const (
	chatTimeout          = 30 * time.Second
	summarizeTimeout     = 45 * time.Second
	transcriptionTimeout = 120 * time.Second
)

// providerConfig carries the per-provider wire settings and prompts.
type providerConfig struct {
	name              string
	baseURL           string
	correctionPrompt  string
	summaryPrompt     string
	defaultCorrection string
	defaultSummary    string
	defaultTranscribe string
}

// httpService is the shared chat/transcription plumbing for HTTP-backed
// providers. Provider structs embed it and supply their config.
type httpService struct {
	apiKey string
	config providerConfig
	client *http.Client
	logger logger.Logger
}

func newHTTPService(apiKey string, config providerConfig, log logger.Logger) httpService {
	return httpService{
		apiKey: apiKey,
		config: config,
		client: &http.Client{},
		logger: log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type transcriptionResponse struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// chat performs a chat completion request and returns (content, modelUsed).
func (s *httpService) chat(ctx context.Context, messages []chatMessage, model string, temperature float64, maxTokens int, timeout time.Duration) (string, string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", model, fmt.Errorf("marshal chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", model, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", model, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", model, fmt.Errorf("chat request: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", model, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", model, fmt.Errorf("chat response has no choices")
	}

	modelUsed := parsed.Model
	if modelUsed == "" {
		modelUsed = model
	}
	return parsed.Choices[0].Message.Content, modelUsed, nil
}

// transcribeRequest uploads an audio file to the provider's transcription
// endpoint and returns (text, modelUsed).
func (s *httpService) transcribeRequest(ctx context.Context, audioPath, language, model string) (string, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", model, fmt.Errorf("audio file not found: %s", audioPath)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", model, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", model, fmt.Errorf("read audio file: %w", err)
	}
	_ = writer.WriteField("model", model)
	_ = writer.WriteField("language", language)
	_ = writer.WriteField("response_format", "verbose_json")
	if err := writer.Close(); err != nil {
		return "", model, err
	}

	ctx, cancel := context.WithTimeout(ctx, transcriptionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", model, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", model, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", model, fmt.Errorf("transcription request: status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", model, fmt.Errorf("decode transcription response: %w", err)
	}

	modelUsed := parsed.Model
	if modelUsed == "" {
		modelUsed = model
	}
	return parsed.Text, modelUsed, nil
}

// failedTranscription builds the failure-as-data result for transcription.
func (s *httpService) failedTranscription(ctx context.Context, err error, language, model string) *models.TranscriptionResult {
	s.logger.Error(ctx, "%s transcription failed: %v", s.config.name, err)
	return &models.TranscriptionResult{
		Language:      language,
		Model:         model,
		FailureReason: err.Error(),
	}
}

// failedCorrection builds the failure-as-data result for correction.
func (s *httpService) failedCorrection(ctx context.Context, err error, text, targetLanguage, model string) *models.CorrectionResult {
	s.logger.Error(ctx, "%s correction failed: %v", s.config.name, err)
	return &models.CorrectionResult{
		OriginalText:  text,
		Language:      targetLanguage,
		Model:         model,
		FailureReason: err.Error(),
	}
}

// failedSummary builds the failure-as-data result for summarization. The
// fallback apology text is deliberately distinguishable from a normal
// summary by the populated FailureReason, which is what callers check.
func (s *httpService) failedSummary(ctx context.Context, err error, text, instructions, model string) *models.SummaryResult {
	s.logger.Error(ctx, "%s summarization failed: %v", s.config.name, err)
	fallback := fmt.Sprintf("摘要生成失敗。原文長度：%d字符。請檢查網路連接或API配置。", len([]rune(text)))
	return &models.SummaryResult{
		Summary:            fallback,
		WordCount:          len([]rune(fallback)),
		Model:              model,
		CustomInstructions: instructions,
		FailureReason:      err.Error(),
	}
}

// correctText is the shared correction implementation.
func (s *httpService) correctText(ctx context.Context, text, targetLanguage, model string) *models.CorrectionResult {
	messages := []chatMessage{
		{Role: "system", Content: s.config.correctionPrompt},
		{Role: "user", Content: text},
	}

	content, modelUsed, err := s.chat(ctx, messages, model, 0.1, 2000, chatTimeout)
	if err != nil {
		return s.failedCorrection(ctx, err, text, targetLanguage, model)
	}

	s.logger.Info(ctx, "%s correction completed: %d -> %d chars", s.config.name, len(text), len(content))
	return &models.CorrectionResult{
		OriginalText:  text,
		CorrectedText: strings.TrimSpace(content),
		Language:      targetLanguage,
		Model:         modelUsed,
	}
}

// summarizeText is the shared summarization implementation. The word
// limit is advisory for real providers: it is passed as a prompt hint,
// never enforced by truncation.
func (s *httpService) summarizeText(ctx context.Context, text, instructions string, wordLimit int, model string) *models.SummaryResult {
	systemPrompt := instructions
	if systemPrompt == "" {
		systemPrompt = s.config.summaryPrompt
	}
	if wordLimit > 0 {
		systemPrompt += fmt.Sprintf("\n\n請將摘要控制在約%d字以內。", wordLimit)
	}

	maxTokens := 1000
	if wordLimit > 0 {
		maxTokens = wordLimit * 2
	}

	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "請為以下內容製作摘要：\n\n" + text},
	}

	content, modelUsed, err := s.chat(ctx, messages, model, 0.3, maxTokens, summarizeTimeout)
	if err != nil {
		return s.failedSummary(ctx, err, text, instructions, model)
	}

	summary := strings.TrimSpace(content)
	s.logger.Info(ctx, "%s summarization completed: %d chars", s.config.name, len(summary))
	return &models.SummaryResult{
		Summary:            summary,
		WordCount:          len([]rune(summary)),
		Model:              modelUsed,
		CustomInstructions: instructions,
	}
}

// transcribeAudio is the shared transcription implementation.
func (s *httpService) transcribeAudio(ctx context.Context, audioPath, language, model string) *models.TranscriptionResult {
	s.logger.Info(ctx, "starting %s transcription for chunk: %s", s.config.name, audioPath)

	text, modelUsed, err := s.transcribeRequest(ctx, audioPath, language, model)
	if err != nil {
		return s.failedTranscription(ctx, err, language, model)
	}

	s.logger.Info(ctx, "%s transcription completed: %d chars", s.config.name, len(text))
	return &models.TranscriptionResult{
		RawText:  strings.TrimSpace(text),
		Language: language,
		Model:    modelUsed,
	}
}
