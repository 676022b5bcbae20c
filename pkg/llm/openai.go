package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// OpenAIClient speaks the OpenAI-compatible chat completions protocol
// (OpenAI, OpenRouter, Groq, local gateways).
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	headers map[string]string
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAIClient) { o.client = c }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) OpenAIOption {
	return func(o *OpenAIClient) { o.headers[key] = value }
}

// NewOpenAIClient creates a client for baseURL, e.g. https://api.openai.com/v1.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration, opts ...OpenAIOption) *OpenAIClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		headers: make(map[string]string),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name identifies the provider in logs.
func (c *OpenAIClient) Name() string {
	return "openai-compatible"
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content          string `json:"content"`
			Reasoning        string `json:"reasoning"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (e *apiError) code() string {
	switch v := e.Code.(type) {
	case string:
		return v
	case nil:
		return e.Type
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Chat sends one chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req Request) (*Response, error) {
	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "llm: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "llm: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "llm: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "llm: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "decode: %v", err)
	}
	if parsed.Error != nil {
		return nil, &StatusError{StatusCode: resp.StatusCode, Code: parsed.Error.code(), Message: parsed.Error.Message}
	}

	out := &Response{Model: parsed.Model}
	if parsed.Usage != nil {
		out.Usage = Usage{InputTokens: parsed.Usage.PromptTokens, OutputTokens: parsed.Usage.CompletionTokens}
	}
	if len(parsed.Choices) == 0 {
		return out, nil
	}
	choice := parsed.Choices[0]
	out.Content = choice.Message.Content
	out.Reasoning = choice.Message.Reasoning
	if out.Reasoning == "" {
		out.Reasoning = choice.Message.ReasoningContent
	}
	out.FinishReason = choice.FinishReason
	return out, nil
}

func statusError(status int, raw []byte) *StatusError {
	var parsed struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil {
		return &StatusError{StatusCode: status, Code: parsed.Error.code(), Message: parsed.Error.Message}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &StatusError{StatusCode: status, Message: msg}
}
