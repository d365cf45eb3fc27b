package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/presbrey/ollamafarm"

	"github.com/kolshuk/kolshuk/internal/config"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/assistant"
)

const defaultModel = "llama3.2"

// ollamaAssistant fans requests out to whichever registered server is
// online. Created per process, safe for concurrent sessions.
type ollamaAssistant struct {
	farm  *ollamafarm.Farm
	model string
}

func New(cfg config.AssistantConfig, logger *Logger.Logger) (assistant.Assistant, error) {
	if len(cfg.OllamaURLs) == 0 {
		return nil, fmt.Errorf("no ollama servers configured")
	}
	farm := ollamafarm.New()
	for _, url := range cfg.OllamaURLs {
		if err := farm.RegisterURL(url, nil); err != nil {
			logger.Warnf("skipping ollama server %s: %v", url, err)
		}
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &ollamaAssistant{farm: farm, model: model}, nil
}

// Respond implements assistant.Assistant.
func (o *ollamaAssistant) Respond(
	ctx context.Context,
	query, language string,
	history []assistant.Message,
) (*assistant.Reply, error) {
	srv := o.farm.First(&ollamafarm.Where{Offline: false})
	if srv == nil {
		return nil, fmt.Errorf("no ollama server online for model %s", o.model)
	}

	msgs := make([]api.Message, 0, len(history)+2)
	msgs = append(msgs, api.Message{Role: string(assistant.SYSTEM), Content: assistant.SystemPrompt(language)})
	for _, m := range history {
		msgs = append(msgs, api.Message{Role: string(m.MsgRole), Content: m.Content})
	}
	msgs = append(msgs, api.Message{Role: string(assistant.USER), Content: query})

	stream := false
	req := api.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
	}

	var sb strings.Builder
	err := srv.Client().Chat(ctx, &req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, fmt.Errorf("ollama chat: empty response")
	}
	return assistant.ReplyFromText(text), nil
}
