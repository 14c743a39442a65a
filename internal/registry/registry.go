// Package registry maps model identifiers to providers and task types.
package registry

// Provider identifies an AI service provider.
type Provider string

const (
	ProviderOpenAI  Provider = "openai"
	ProviderMistral Provider = "mistral"
	ProviderGemini  Provider = "gemini"
	ProviderMock    Provider = "mock"
)

// TaskType is a pipeline stage a model can serve.
type TaskType string

const (
	TaskTranscription TaskType = "transcription"
	TaskCorrection    TaskType = "correction"
	TaskSummarization TaskType = "summarization"
)

// FallbackProvider is returned for unknown model ids so callers can
// proceed with a provider default instead of failing hard.
const FallbackProvider = ProviderMistral

type modelEntry struct {
	provider Provider
	tasks    []TaskType
}

var textTasks = []TaskType{TaskCorrection, TaskSummarization}

// models is the static registry table.
var models = map[string]modelEntry{
	// OpenAI
	"gpt-4.1-nano":           {ProviderOpenAI, textTasks},
	"gpt-4.1-mini":           {ProviderOpenAI, textTasks},
	"gpt-4o-mini":            {ProviderOpenAI, textTasks},
	"gpt-4o-mini-transcribe": {ProviderOpenAI, []TaskType{TaskTranscription}},
	"gpt-4o-transcribe":      {ProviderOpenAI, []TaskType{TaskTranscription}},
	"whisper-1":              {ProviderOpenAI, []TaskType{TaskTranscription}},

	// Mistral
	"mistral-small-latest": {ProviderMistral, textTasks},
	"mistral-medium-2505":  {ProviderMistral, textTasks},
	"voxtral-mini-latest":  {ProviderMistral, []TaskType{TaskTranscription}},
	"voxtral-small-latest": {ProviderMistral, []TaskType{TaskTranscription}},

	// Gemini
	"gemini-2.5-flash": {ProviderGemini, textTasks},

	// Mock
	"mock-model": {ProviderMock, []TaskType{TaskTranscription, TaskCorrection, TaskSummarization}},
}

var defaults = map[Provider]map[TaskType]string{
	ProviderOpenAI: {
		TaskTranscription: "gpt-4o-mini-transcribe",
		TaskCorrection:    "gpt-4o-mini",
		TaskSummarization: "gpt-4o-mini",
	},
	ProviderMistral: {
		TaskTranscription: "voxtral-mini-latest",
		TaskCorrection:    "mistral-small-latest",
		TaskSummarization: "mistral-small-latest",
	},
	ProviderGemini: {
		TaskCorrection:    "gemini-2.5-flash",
		TaskSummarization: "gemini-2.5-flash",
	},
	ProviderMock: {
		TaskTranscription: "mock-model",
		TaskCorrection:    "mock-model",
		TaskSummarization: "mock-model",
	},
}

// FallbackFor picks the provider to try when a model's own provider
// persistently fails: Mistral for everyone else, OpenAI when the failing
// provider is already Mistral. The fallback is always cross-provider.
func FallbackFor(provider Provider) Provider {
	if provider == FallbackProvider {
		return ProviderOpenAI
	}
	return FallbackProvider
}

// ProviderFor resolves the provider of a model id. Unknown ids resolve to
// the fallback provider rather than an error.
func ProviderFor(model string) Provider {
	if entry, ok := models[model]; ok {
		return entry.provider
	}
	return FallbackProvider
}

// DefaultModel returns the default model for a provider and task. Falls
// back to the mock model when the provider has no model for the task.
func DefaultModel(provider Provider, task TaskType) string {
	if byTask, ok := defaults[provider]; ok {
		if model, ok := byTask[task]; ok {
			return model
		}
	}
	return "mock-model"
}

// Validate reports whether a model is usable for the given provider and
// task. Provider may be empty to check the model against its own provider.
// Returns false for unknown models; callers fall back to a default model,
// never abort the job.
func Validate(provider Provider, model string, task TaskType) bool {
	entry, ok := models[model]
	if !ok {
		return false
	}
	if provider != "" && entry.provider != provider {
		return false
	}
	for _, t := range entry.tasks {
		if t == task {
			return true
		}
	}
	return false
}

// Known reports whether a model id is in the registry at all.
func Known(model string) bool {
	_, ok := models[model]
	return ok
}

// Models lists model ids for a provider and task.
func Models(provider Provider, task TaskType) []string {
	var out []string
	for id, entry := range models {
		if entry.provider != provider {
			continue
		}
		for _, t := range entry.tasks {
			if t == task {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// SupportedModels groups all model ids by provider.
func SupportedModels() map[Provider][]string {
	out := make(map[Provider][]string)
	for id, entry := range models {
		out[entry.provider] = append(out[entry.provider], id)
	}
	return out
}

// Resolve picks a usable (provider, model) pair for a task. A missing
// model yields the provider default; an incompatible model is replaced by
// the resolved provider's default.
func Resolve(provider Provider, model string, task TaskType) (Provider, string) {
	if model == "" {
		if provider == "" {
			provider = FallbackProvider
		}
		return provider, DefaultModel(provider, task)
	}
	if provider == "" {
		provider = ProviderFor(model)
	}
	if !Validate(provider, model, task) {
		return provider, DefaultModel(provider, task)
	}
	return provider, model
}
