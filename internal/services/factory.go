package services

import (
	"github.com/jchen-labs/media-summary/internal/config"
	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/registry"
)

// Factory creates capability service instances keyed by the provider a
// model belongs to. Services are constructed once and shared.
type Factory struct {
	byProvider map[registry.Provider]Capability
}

// NewFactory wires one service per provider from the configured API keys.
func NewFactory(cfg *config.Config, log logger.Logger) *Factory {
	return &Factory{
		byProvider: map[registry.Provider]Capability{
			registry.ProviderMock:    NewMockService(log),
			registry.ProviderOpenAI:  NewOpenAIService(cfg.Providers.OpenAIAPIKey, log),
			registry.ProviderMistral: NewMistralService(cfg.Providers.MistralAPIKey, log),
			registry.ProviderGemini:  NewGeminiService(cfg.Providers.GeminiAPIKey, log),
		},
	}
}

// NewMockFactory returns a factory that resolves every model to the mock
// service. Used in mock mode and tests.
func NewMockFactory(log logger.Logger) *Factory {
	mock := NewMockService(log)
	return &Factory{
		byProvider: map[registry.Provider]Capability{
			registry.ProviderMock:    mock,
			registry.ProviderOpenAI:  mock,
			registry.ProviderMistral: mock,
			registry.ProviderGemini:  mock,
		},
	}
}

// ForModel resolves the capability service for a model id. Unknown models
// resolve through the registry's fallback provider.
func (f *Factory) ForModel(model string) Capability {
	provider := registry.ProviderFor(model)
	if svc, ok := f.byProvider[provider]; ok {
		return svc
	}
	return f.byProvider[registry.ProviderMock]
}

// ForProvider resolves the capability service for a provider.
func (f *Factory) ForProvider(provider registry.Provider) Capability {
	if svc, ok := f.byProvider[provider]; ok {
		return svc
	}
	return f.byProvider[registry.ProviderMock]
}
