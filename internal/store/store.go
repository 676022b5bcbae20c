// Package store persists onboarding contracts and the extractions applied
// to them. The core never depends on it; the CLI and HTTP shells do.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// ErrNotFound is returned when no contract exists for a key.
var ErrNotFound = eris.New("store: not found")

// ContractFilter specifies criteria for listing contracts.
type ContractFilter struct {
	Complete *bool `json:"complete,omitempty"`
	Limit    int   `json:"limit,omitempty"`
	Offset   int   `json:"offset,omitempty"`
}

// ContractSummary is a listing row.
type ContractSummary struct {
	IdempotencyKey string    `json:"idempotencyKey"`
	Version        string    `json:"version"`
	Complete       bool      `json:"complete"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Extraction is one recorded extraction run against a contract.
type Extraction struct {
	ID          string                 `json:"id"`
	ContractKey string                 `json:"contractKey"`
	Context     string                 `json:"context"`
	Result      model.ExtractionResult `json:"result"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Store defines contract session persistence.
type Store interface {
	// Contracts, keyed by metadata.idempotencyKey
	GetContract(ctx context.Context, key string) (*model.Contract, error)
	SaveContract(ctx context.Context, c model.Contract) error
	DeleteContract(ctx context.Context, key string) error
	ListContracts(ctx context.Context, filter ContractFilter) ([]ContractSummary, error)

	// Extraction log
	RecordExtraction(ctx context.Context, key, contextName string, res *model.ExtractionResult) (*Extraction, error)
	ListExtractions(ctx context.Context, key string, limit int) ([]Extraction, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func summarize(c model.Contract) ContractSummary {
	return ContractSummary{
		IdempotencyKey: c.Metadata.IdempotencyKey,
		Version:        c.Version,
		Complete:       c.Metadata.CompletedAt != nil,
		CreatedAt:      c.Metadata.CreatedAt,
		UpdatedAt:      c.Metadata.UpdatedAt,
	}
}

func checkKey(c model.Contract) error {
	if c.Metadata.IdempotencyKey == "" {
		return eris.New("store: contract has no idempotency key")
	}
	return nil
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return 100
	}
	return n
}
