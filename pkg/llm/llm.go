// Package llm is the provider-neutral chat transport used by the extraction
// gateway. Implementations perform exactly one upstream call per Chat.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Request is a single system+user chat completion.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	// JSONMode asks for a JSON object response where the provider supports it.
	JSONMode bool
}

// Response is the first completion choice.
type Response struct {
	Content string
	// Reasoning carries text some models return instead of, or next to, Content.
	Reasoning    string
	FinishReason string
	Model        string
	Usage        Usage
}

// Usage tracks token consumption of one call.
type Usage struct {
	InputTokens      int
	OutputTokens     int
	CacheWriteTokens int
	CacheReadTokens  int
	// Cost is set only when the provider reports it.
	Cost float64
}

// FinishLength is the normalized finish reason for a completion that hit
// its token ceiling.
const FinishLength = "length"

// Client sends chat completions.
type Client interface {
	Chat(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// ErrMalformedResponse marks a 2xx response whose envelope could not be read.
var ErrMalformedResponse = eris.New("llm: malformed response envelope")

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("llm: upstream status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("llm: upstream status %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the upstream status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// ModelNotFound reports whether the upstream rejected the model name.
func (e *StatusError) ModelNotFound() bool {
	if e.Code == "model_not_found" {
		return true
	}
	msg := strings.ToLower(e.Message)
	if e.StatusCode == 404 {
		return true
	}
	return strings.Contains(msg, "model_not_found") ||
		strings.Contains(msg, "not a valid model") ||
		strings.Contains(msg, "model not found") ||
		(strings.Contains(msg, "model") && strings.Contains(msg, "does not exist"))
}

type rateLimited struct {
	Client
	limiter *rate.Limiter
}

// RateLimited paces calls to c through limiter. Waiting honours ctx.
func RateLimited(c Client, limiter *rate.Limiter) Client {
	if limiter == nil {
		return c
	}
	return &rateLimited{Client: c, limiter: limiter}
}

func (r *rateLimited) Chat(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "llm: rate limit wait")
	}
	return r.Client.Chat(ctx, req)
}

// NewLimiter builds a limiter for rps requests per second. Zero or negative
// rps disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
