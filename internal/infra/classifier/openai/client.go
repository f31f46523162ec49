package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/ticket-triage/internal/domain/analysis"
	"github.com/bryanwahyu/ticket-triage/internal/domain/classify"
	"github.com/bryanwahyu/ticket-triage/internal/infra/classifier/prompt"
)

const maxTokens = 256

// Client is the external-service classifier variant. One chat completion
// per ticket, constrained to a JSON object; a failed call or an off-schema
// response is a hard failure with no fallback and no retry.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) Classify(ctx context.Context, title, description string) (classify.Result, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(title, description)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return classify.Result{}, classify.ErrQuotaExceeded
		}
		return classify.Result{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return classify.Result{}, fmt.Errorf("%w: empty completion", classify.ErrMalformedResponse)
	}

	parsed, err := prompt.Parse(resp.Choices[0].Message.Content)
	if err != nil {
		return classify.Result{}, fmt.Errorf("%w: %v", classify.ErrMalformedResponse, err)
	}

	category := analysis.Category(parsed.Category)
	priority := analysis.Priority(parsed.Priority)
	if !category.Valid() {
		return classify.Result{}, fmt.Errorf("%w: unknown category %q", classify.ErrMalformedResponse, parsed.Category)
	}
	if !priority.Valid() {
		return classify.Result{}, fmt.Errorf("%w: unknown priority %q", classify.ErrMalformedResponse, parsed.Priority)
	}

	return classify.Result{Category: category, Priority: priority, Notes: parsed.Notes}, nil
}
