package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/youcodecowboy/disco-grid-sub000/internal/gateway"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// --- LLM extractor mock ---

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Extract(ctx context.Context, text, contextName, strategy string) (*gateway.Result, error) {
	args := m.Called(ctx, text, contextName, strategy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Result), args.Error(1)
}

// staticKeyword returns a KeywordFunc that always yields a copy of entities.
func staticKeyword(entities ...model.Entity) KeywordFunc {
	return func(string) []model.Entity {
		return append([]model.Entity(nil), entities...)
	}
}
