package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kolshuk/kolshuk/internal/config"
	"github.com/kolshuk/kolshuk/pkg/assistant"
)

const defaultModel = "gemini-1.5-flash-latest"

type geminiAssistant struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg config.AssistantConfig) (assistant.Assistant, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &geminiAssistant{client: client, model: model}, nil
}

// Respond implements assistant.Assistant.
func (g *geminiAssistant) Respond(
	ctx context.Context,
	query, language string,
	history []assistant.Message,
) (*assistant.Reply, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(assistant.SystemPrompt(language))},
	}

	cs := model.StartChat()
	for _, m := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  geminiRole(m.MsgRole),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(query))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	text := flatten(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini generate: empty response")
	}
	return assistant.ReplyFromText(text), nil
}

func geminiRole(r assistant.Role) string {
	if r == assistant.ASSISTANT {
		return "model"
	}
	return "user"
}

func flatten(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
