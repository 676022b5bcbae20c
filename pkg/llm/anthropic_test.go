package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/youcodecowboy/disco-grid-sub000/pkg/anthropic"
	anthropicmocks "github.com/youcodecowboy/disco-grid-sub000/pkg/anthropic/mocks"
)

func TestAnthropicClient_Chat(t *testing.T) {
	t.Parallel()

	ai := anthropicmocks.NewMockClient(t)
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 4096 &&
			len(req.System) == 1 && req.System[0].Text == "SYS" && req.System[0].CacheControl != nil &&
			len(req.Messages) == 1 && req.Messages[0].Content == "text" &&
			req.Temperature != nil && *req.Temperature == 0.1
	})).Return(&anthropic.MessageResponse{
		Model:      "claude-haiku-4-5-20251001",
		Content:    []anthropic.ContentBlock{{Type: "text", Text: `{"entities":[]}`}},
		StopReason: "max_tokens",
		Usage:      anthropic.TokenUsage{InputTokens: 1000, OutputTokens: 100, CacheReadInputTokens: 800},
	}, nil)

	c := NewAnthropicClient(ai)
	resp, err := c.Chat(context.Background(), Request{
		Model: "claude-haiku-4-5-20251001", System: "SYS", User: "text",
		Temperature: 0.1, MaxTokens: 4096, JSONMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"entities":[]}`, resp.Content)
	assert.Equal(t, FinishLength, resp.FinishReason)
	assert.Equal(t, 1000, resp.Usage.InputTokens)
	assert.Equal(t, 800, resp.Usage.CacheReadTokens)
	assert.Zero(t, resp.Usage.Cost, "priced by the gateway")
	assert.Equal(t, "anthropic", c.Name())
}

func TestAnthropicClient_StatusError(t *testing.T) {
	t.Parallel()

	ai := anthropicmocks.NewMockClient(t)
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.Wrap(&sdk.Error{
			StatusCode: http.StatusNotFound,
			Request:    httptest.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil),
			Response:   &http.Response{StatusCode: http.StatusNotFound},
		}, "anthropic: create message"))

	_, err := NewAnthropicClient(ai).Chat(context.Background(), Request{Model: "claude-nope"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.StatusCode)
	assert.True(t, se.ModelNotFound())
}

func TestAnthropicClient_NetworkError(t *testing.T) {
	t.Parallel()

	ai := anthropicmocks.NewMockClient(t)
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp: connection refused"))

	_, err := NewAnthropicClient(ai).Chat(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestFinishReason(t *testing.T) {
	t.Parallel()
	assert.Equal(t, FinishLength, finishReason("max_tokens"))
	assert.Equal(t, "stop", finishReason("end_turn"))
	assert.Equal(t, "stop", finishReason("stop_sequence"))
	assert.Equal(t, "tool_use", finishReason("tool_use"))
}
