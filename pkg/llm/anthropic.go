package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/youcodecowboy/disco-grid-sub000/pkg/anthropic"
)

// AnthropicClient adapts the Anthropic Messages API to Client.
type AnthropicClient struct {
	client anthropic.Client
}

// NewAnthropicClient wraps an anthropic.Client.
func NewAnthropicClient(c anthropic.Client) *AnthropicClient {
	return &AnthropicClient{client: c}
}

// Name identifies the provider in logs.
func (a *AnthropicClient) Name() string {
	return "anthropic"
}

// Chat sends one message. JSONMode has no Messages API equivalent and is
// carried by the prompt alone.
func (a *AnthropicClient) Chat(ctx context.Context, req Request) (*Response, error) {
	temp := req.Temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       req.Model,
		MaxTokens:   int64(req.MaxTokens),
		System:      anthropic.BuildCachedSystemBlocks(req.System),
		Messages:    []anthropic.Message{{Role: "user", Content: req.User}},
		Temperature: &temp,
	})
	if err != nil {
		if code := anthropic.StatusCode(err); code != 0 {
			return nil, &StatusError{StatusCode: code, Message: err.Error()}
		}
		return nil, eris.Wrap(err, "llm: anthropic chat")
	}

	return &Response{
		Content:      resp.Text(),
		FinishReason: finishReason(resp.StopReason),
		Model:        resp.Model,
		Usage: Usage{
			InputTokens:      int(resp.Usage.InputTokens),
			OutputTokens:     int(resp.Usage.OutputTokens),
			CacheWriteTokens: int(resp.Usage.CacheCreationInputTokens),
			CacheReadTokens:  int(resp.Usage.CacheReadInputTokens),
		},
	}, nil
}

func finishReason(stop string) string {
	switch stop {
	case "max_tokens":
		return FinishLength
	case "end_turn", "stop_sequence":
		return "stop"
	}
	return stop
}
