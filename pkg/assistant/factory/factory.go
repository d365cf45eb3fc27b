package factory

import (
	"context"
	"fmt"

	"github.com/kolshuk/kolshuk/internal/config"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/assistant"
	"github.com/kolshuk/kolshuk/pkg/assistant/providers/gemini"
	"github.com/kolshuk/kolshuk/pkg/assistant/providers/ollama"
	"github.com/kolshuk/kolshuk/pkg/assistant/providers/openai"
)

// New builds the configured provider. Provider selection is explicit:
// a misconfigured provider is an error, never a silent switch to
// another backend.
func New(ctx context.Context, cfg config.AssistantConfig, logger *Logger.Logger) (assistant.Assistant, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.New(cfg)
	case "gemini":
		return gemini.New(ctx, cfg)
	case "ollama":
		return ollama.New(cfg, logger)
	}
	return nil, fmt.Errorf("unknown assistant provider %q", cfg.Provider)
}
