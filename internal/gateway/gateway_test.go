package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youcodecowboy/disco-grid-sub000/internal/cost"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/resilience"
	"github.com/youcodecowboy/disco-grid-sub000/pkg/llm"
)

type reply struct {
	resp *llm.Response
	err  error
}

// scriptedClient answers per model name and records every request.
type scriptedClient struct {
	mu       sync.Mutex
	replies  map[string]reply
	requests []llm.Request
}

func (s *scriptedClient) Chat(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	r, ok := s.replies[req.Model]
	if !ok {
		return nil, fmt.Errorf("no reply scripted for %s", req.Model)
	}
	return r.resp, r.err
}

func (s *scriptedClient) Name() string { return "scripted" }

func (s *scriptedClient) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func content(s string) reply {
	return reply{resp: &llm.Response{Content: s, FinishReason: "stop", Usage: llm.Usage{InputTokens: 100, OutputTokens: 20}}}
}

func newGateway(c llm.Client) *Gateway {
	return New(c, Config{Model: "small", FallbackModel: "large"})
}

func TestExtract_RequestShape(t *testing.T) {
	c := &scriptedClient{replies: map[string]reply{
		"small": content(`{"entities":[{"type":"ops_model","value":"MTO","confidence":3,"rawText":"custom orders"}]}`),
	}}
	g := newGateway(c)

	res, err := g.Extract(context.Background(), "We do custom orders", "operations", "balanced")
	require.NoError(t, err)
	require.Len(t, c.requests, 1)

	req := c.requests[0]
	assert.Equal(t, "small", req.Model)
	assert.Equal(t, "We do custom orders", req.User)
	assert.Contains(t, req.System, `"entities"`)
	assert.InDelta(t, 0.1, req.Temperature, 1e-9)
	assert.Equal(t, 4096, req.MaxTokens)
	assert.True(t, req.JSONMode)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, model.Entity{
		Type: "ops_model", Value: "MTO", Confidence: model.ConfidenceExplicit,
		RawText: "custom orders", Provenance: model.ProvenanceLLM,
	}, res.Entities[0])
	assert.Equal(t, "small", res.Model)
	assert.Equal(t, 100, res.Usage.InputTokens)
}

func TestExtract_InvalidContext(t *testing.T) {
	c := &scriptedClient{}
	g := newGateway(c)

	_, err := g.Extract(context.Background(), "text", "no_such_context", "balanced")
	require.Error(t, err)
	assert.Equal(t, Kind(""), KindOf(err))
	assert.Equal(t, 0, c.calls())
}

func TestExtract_ParsesFencedAndReasoning(t *testing.T) {
	tests := []struct {
		name string
		resp *llm.Response
	}{
		{"fenced", &llm.Response{Content: "```json\n{\"entities\":[{\"type\":\"shifts\",\"value\":2,\"confidence\":3}]}\n```"}},
		{"bare fence", &llm.Response{Content: "```\n{\"entities\":[{\"type\":\"shifts\",\"value\":2,\"confidence\":3}]}\n```"}},
		{"prose around", &llm.Response{Content: "Here you go: {\"entities\":[{\"type\":\"shifts\",\"value\":2,\"confidence\":3}]} Hope it helps."}},
		{"reasoning only", &llm.Response{Reasoning: `{"entities":[{"type":"shifts","value":2,"confidence":3}]}`}},
		{"content not json, reasoning json", &llm.Response{
			Content:   "I think there are two shifts.",
			Reasoning: `{"entities":[{"type":"shifts","value":2,"confidence":3}]}`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGateway(&scriptedClient{replies: map[string]reply{"small": {resp: tt.resp}}})
			res, err := g.Extract(context.Background(), "two shifts", "operations", "minimal")
			require.NoError(t, err)
			require.Len(t, res.Entities, 1)
			assert.Equal(t, 2.0, res.Entities[0].Value)
		})
	}
}

func TestExtract_FailureKinds(t *testing.T) {
	tests := []struct {
		name string
		r    reply
		want Kind
	}{
		{"truncated", reply{resp: &llm.Response{Content: `{"entities":[{"type":"shi`, FinishReason: llm.FinishLength}}, KindTruncated},
		{"empty", reply{resp: &llm.Response{FinishReason: "stop"}}, KindEmptyContent},
		{"unparseable", content("no json here at all"), KindParse},
		{"malformed envelope", reply{err: fmt.Errorf("wrap: %w", llm.ErrMalformedResponse)}, KindParse},
		{"server error", reply{err: &llm.StatusError{StatusCode: 500, Message: "boom"}}, KindUpstreamStatus},
		{"unauthorized", reply{err: &llm.StatusError{StatusCode: 401, Message: "bad key"}}, KindUpstreamStatus},
		{"network", reply{err: fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)}, KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &scriptedClient{replies: map[string]reply{"small": tt.r}}
			g := newGateway(c)

			_, err := g.Extract(context.Background(), "text", "operations", "balanced")
			require.Error(t, err)

			var ge *Error
			require.True(t, errors.As(err, &ge), "expected *gateway.Error, got %T", err)
			assert.Equal(t, tt.want, ge.Kind)
			assert.Equal(t, "small", ge.Model)
			assert.Equal(t, 1, c.calls(), "no retries outside model_not_found")
		})
	}
}

func TestExtract_TruncationMessageIsDistinct(t *testing.T) {
	c := &scriptedClient{replies: map[string]reply{
		"small": {resp: &llm.Response{Content: `{"entities":[`, FinishReason: llm.FinishLength}},
	}}
	_, err := newGateway(c).Extract(context.Background(), "text", "operations", "balanced")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestExtract_ModelNotFoundFallsBackOnce(t *testing.T) {
	c := &scriptedClient{replies: map[string]reply{
		"small": {err: &llm.StatusError{StatusCode: 404, Code: "model_not_found", Message: "The model small does not exist"}},
		"large": content(`{"entities":[{"type":"capacity","value":"50k","confidence":3}]}`),
	}}
	g := newGateway(c)

	res, err := g.Extract(context.Background(), "50k units a month", "operations", "balanced")
	require.NoError(t, err)
	require.Len(t, c.requests, 2)
	assert.Equal(t, "small", c.requests[0].Model)
	assert.Equal(t, "large", c.requests[1].Model)
	assert.Equal(t, "large", res.Model)
	assert.Equal(t, 50000.0, res.Entities[0].Value)
}

func TestExtract_FallbackFailureIsNotRetriedAgain(t *testing.T) {
	notFound := &llm.StatusError{StatusCode: 404, Code: "model_not_found", Message: "missing"}
	c := &scriptedClient{replies: map[string]reply{
		"small": {err: notFound},
		"large": {err: notFound},
	}}
	_, err := newGateway(c).Extract(context.Background(), "text", "operations", "balanced")
	require.Error(t, err)
	assert.Equal(t, KindModelNotFound, KindOf(err))
	assert.Equal(t, 2, c.calls())

	var ge *Error
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "large", ge.Model)
}

func TestExtract_NoFallbackConfigured(t *testing.T) {
	c := &scriptedClient{replies: map[string]reply{
		"small": {err: &llm.StatusError{StatusCode: 404, Message: "model not found"}},
	}}
	g := New(c, Config{Model: "small"})
	_, err := g.Extract(context.Background(), "text", "operations", "balanced")
	assert.Equal(t, KindModelNotFound, KindOf(err))
	assert.Equal(t, 1, c.calls())
}

func TestExtract_CircuitOpens(t *testing.T) {
	c := &scriptedClient{replies: map[string]reply{
		"small": {err: &llm.StatusError{StatusCode: 503, Message: "overloaded"}},
	}}
	breakers := resilience.NewBreakers(resilience.Config{Threshold: 2, Counts: resilience.IsUpstreamFailure})
	g := New(c, Config{Model: "small"}, WithBreakers(breakers))

	for i := 0; i < 2; i++ {
		_, err := g.Extract(context.Background(), "text", "operations", "balanced")
		assert.Equal(t, KindUpstreamStatus, KindOf(err))
	}
	_, err := g.Extract(context.Background(), "text", "operations", "balanced")
	assert.Equal(t, KindCircuitOpen, KindOf(err))
	assert.Equal(t, 2, c.calls())
	assert.Equal(t, resilience.Open, g.Breakers().Snapshots()["small"].State)
}

func TestExtract_ParseFailuresDoNotTripBreaker(t *testing.T) {
	c := &scriptedClient{replies: map[string]reply{"small": content("not json")}}
	breakers := resilience.NewBreakers(resilience.Config{Threshold: 1, Counts: resilience.IsUpstreamFailure})
	g := New(c, Config{Model: "small"}, WithBreakers(breakers))

	for i := 0; i < 3; i++ {
		_, err := g.Extract(context.Background(), "text", "operations", "balanced")
		assert.Equal(t, KindParse, KindOf(err))
	}
	assert.Equal(t, 3, c.calls())
}

func TestExtract_WorksWithRateLimitedClient(t *testing.T) {
	c := &scriptedClient{replies: map[string]reply{
		"small": content(`{"entities":[{"type":"shifts","value":3,"confidence":2}]}`),
	}}
	g := New(llm.RateLimited(c, llm.NewLimiter(100, 1)), Config{Model: "small"})
	res, err := g.Extract(context.Background(), "three shifts", "operations", "balanced")
	require.NoError(t, err)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, model.ConfidenceImplied, res.Entities[0].Confidence)
}

func TestExtract_PricesUnreportedCost(t *testing.T) {
	c := &scriptedClient{replies: map[string]reply{
		"small": content(`{"entities":[{"type":"shifts","value":2,"confidence":3}]}`),
	}}
	pricing := cost.NewCalculator(cost.Rates{"small": {Input: 1, Output: 10}})
	g := New(c, Config{Model: "small"}, WithPricing(pricing))

	res, err := g.Extract(context.Background(), "two shifts", "operations", "balanced")
	require.NoError(t, err)
	// 100 input, 20 output tokens
	assert.InDelta(t, 0.0001+0.0002, res.Usage.Cost, 1e-12)

	reported := content(`{"entities":[{"type":"shifts","value":2,"confidence":3}]}`)
	reported.resp.Usage.Cost = 0.5
	c.replies["small"] = reported
	res, err = g.Extract(context.Background(), "two shifts", "operations", "balanced")
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.Usage.Cost)
}

func TestExtract_PricesCacheTokens(t *testing.T) {
	r := content(`{"entities":[{"type":"shifts","value":2,"confidence":3}]}`)
	r.resp.Usage = llm.Usage{InputTokens: 1_000_000, CacheReadTokens: 1_000_000}
	c := &scriptedClient{replies: map[string]reply{"claude-haiku-4-5-20251001": r}}
	g := New(c, Config{Model: "claude-haiku-4-5-20251001"}, WithPricing(cost.NewCalculator(cost.DefaultRates())))

	res, err := g.Extract(context.Background(), "two shifts", "operations", "balanced")
	require.NoError(t, err)
	assert.InDelta(t, 0.80+0.08, res.Usage.Cost, 1e-9)
}
