package openai

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kolshuk/kolshuk/internal/config"
	"github.com/kolshuk/kolshuk/pkg/assistant"
)

type openAIAssistant struct {
	client openai.Client
	model  string
}

func New(cfg config.AssistantConfig) (assistant.Assistant, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	return openAIAssistant{
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		model:  model,
	}, nil
}

// Respond implements assistant.Assistant.
func (o openAIAssistant) Respond(
	ctx context.Context,
	query, language string,
	history []assistant.Message,
) (*assistant.Reply, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(assistant.SystemPrompt(language)))
	for _, m := range history {
		msgs = append(msgs, convertMsg(m))
	}
	msgs = append(msgs, openai.UserMessage(query))

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openai.ChatModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai completion: empty choices")
	}
	return assistant.ReplyFromText(completion.Choices[0].Message.Content), nil
}

func convertMsg(msg assistant.Message) openai.ChatCompletionMessageParamUnion {
	switch msg.MsgRole {
	case assistant.ASSISTANT:
		return openai.AssistantMessage(msg.Content)
	case assistant.SYSTEM:
		return openai.SystemMessage(msg.Content)
	}
	return openai.UserMessage(msg.Content)
}
