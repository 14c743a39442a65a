package services

import (
	"context"
	"math/rand"
	"strings"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
)

// terminalPunctuation are the sentence-ending marks the mock appends when
// output lacks one.
var terminalPunctuation = []string{"。", "！", "？", "：", "；"}

func endsWithTerminal(s string) bool {
	for _, p := range terminalPunctuation {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return strings.HasSuffix(s, "\n")
}

// MockService is the offline capability implementation. It samples from a
// fixed reference pool; sampling is random but the response shape is fixed.
type MockService struct {
	logger logger.Logger

	sampleTexts []string
	corrections [][2]string
	summaries   []string
}

// NewMockService creates a mock capability service.
func NewMockService(log logger.Logger) *MockService {
	return &MockService{
		logger: log,
		sampleTexts: []string{
			"今天我要跟大家分享關於神的恩典的見證 神在我生命中做了奇妙的工作",
			"我們一起來讀詩篇二十三篇 耶和華是我的牧者 我必不致缺乏",
			"弟兄姊妹們 讓我們一起來禱告 求神賜給我們智慧和力量",
			"聖經告訴我們 神愛世人 甚至將他的獨生子賜給他們",
			"在這個困難的時刻 我們要倚靠聖靈的能力 相信神的計劃是美好的",
			"教會是神的家 我們要彼此相愛 彼此服事",
			"感謝主的恩典 讓我們今天能夠聚集在這裡 一同敬拜讚美神",
		},
		corrections: [][2]string{
			{"教会", "教會"},
			{"祷告", "禱告"},
			{"赞美", "讚美"},
			{"见证", "見證"},
			{"圣经", "聖經"},
			{"圣灵", "聖靈"},
		},
		summaries: []string{
			"這段內容探討了基督教信仰的核心價值，包括愛、寬恕和救贖的重要性。講者強調透過禱告和讀經來建立與上帝的關係。",
			"講者分享了個人的信仰見證，描述了上帝在生活中的引導和恩典。內容涵蓋了如何在困難中持守信仰，以及聖靈的工作。",
			"這是一篇關於教會生活和弟兄姊妹團契的分享，強調了彼此相愛和互相扶持的重要性。內容包含了實際的屬靈操練建議。",
			"本次討論主要聚焦於人工智慧技術的最新發展趨勢，包括機器學習演算法的改進以及在各行業的實際應用案例。",
			"內容涵蓋了技術的基礎理論、實際應用場景，以及未來發展方向的深入分析。",
		},
	}
}

// Transcribe returns a random sample transcript.
func (s *MockService) Transcribe(ctx context.Context, audioPath, language, model string) *models.TranscriptionResult {
	text := s.sampleTexts[rand.Intn(len(s.sampleTexts))]
	s.logger.Debug(ctx, "mock transcription for %s: %d chars", audioPath, len(text))

	return &models.TranscriptionResult{
		RawText:  text,
		Language: language,
		Model:    model,
	}
}

// Correct applies the fixed substitution table and normalizes spacing and
// terminal punctuation.
func (s *MockService) Correct(ctx context.Context, text, targetLanguage, model string) *models.CorrectionResult {
	corrected := text
	for _, pair := range s.corrections {
		corrected = strings.ReplaceAll(corrected, pair[0], pair[1])
	}
	corrected = strings.TrimSpace(strings.ReplaceAll(corrected, "  ", " "))

	if corrected != "" && !endsWithTerminal(corrected) {
		corrected += "。"
	}

	return &models.CorrectionResult{
		OriginalText:  text,
		CorrectedText: corrected,
		Language:      targetLanguage,
		Model:         model,
	}
}

// Summarize returns a random reference summary. A word limit is enforced
// by hard truncation at a character boundary; each CJK character counts
// as one word.
func (s *MockService) Summarize(ctx context.Context, text, instructions string, wordLimit int, model string) *models.SummaryResult {
	summary := s.summaries[rand.Intn(len(s.summaries))]

	if wordLimit > 0 {
		runes := []rune(summary)
		if len(runes) > wordLimit {
			summary = string(runes[:wordLimit]) + "..."
		}
	}

	return &models.SummaryResult{
		Summary:            summary,
		WordCount:          len([]rune(summary)),
		Model:              model,
		CustomInstructions: instructions,
	}
}
