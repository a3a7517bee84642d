package classifier

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// ChatCompleter is the slice of the OpenAI client the classifier needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIModel classifies answers with an OpenAI chat model in JSON mode.
type OpenAIModel struct {
	client    ChatCompleter
	modelName string
	limiter   *rate.Limiter
}

// NewOpenAIModel builds a model from an API key.
func NewOpenAIModel(apiKey, modelName string, rps float64) (*OpenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai classifier needs an API key")
	}
	return NewOpenAIModelWithClient(openai.NewClient(apiKey), modelName, rps), nil
}

// NewOpenAIModelWithClient wraps an existing client, typically a fake in tests.
func NewOpenAIModelWithClient(client ChatCompleter, modelName string, rps float64) *OpenAIModel {
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return &OpenAIModel{
		client:    client,
		modelName: modelName,
		limiter:   newLimiter(rps),
	}
}

func (o *OpenAIModel) Name() string { return "openai" }

// Classify implements domain.SentimentModel.
func (o *OpenAIModel) Classify(ctx context.Context, text string) (domain.SentimentJudgment, error) {
	if err := waitTurn(ctx, o.limiter); err != nil {
		return domain.SentimentJudgment{}, err
	}

	req := openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(text)},
		},
		Temperature: 0,
		MaxTokens:   64,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.SentimentJudgment{}, fmt.Errorf("%w: openai chat completion: %v", domain.ErrClassifierUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return domain.SentimentJudgment{}, fmt.Errorf("%w: openai returned no choices", domain.ErrClassifierUnavailable)
	}
	return parseJudgment(resp.Choices[0].Message.Content)
}
