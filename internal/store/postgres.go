package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// Pool is the subset of *pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS onboarding_contracts (
	idempotency_key TEXT PRIMARY KEY,
	version         TEXT NOT NULL,
	data            JSONB NOT NULL,
	completed       BOOLEAN NOT NULL DEFAULT false,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS onboarding_extractions (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	contract_key TEXT NOT NULL REFERENCES onboarding_contracts(idempotency_key) ON DELETE CASCADE,
	context      TEXT NOT NULL,
	result       JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_onboarding_contracts_updated_at ON onboarding_contracts(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_onboarding_extractions_contract_key ON onboarding_extractions(contract_key, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetContract(ctx context.Context, key string) (*model.Contract, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM onboarding_contracts WHERE idempotency_key = $1`, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: contract %s", key)
		}
		return nil, eris.Wrapf(err, "postgres: get contract %s", key)
	}
	var c model.Contract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal contract %s", key)
	}
	return &c, nil
}

func (s *PostgresStore) SaveContract(ctx context.Context, c model.Contract) error {
	if err := checkKey(c); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contract")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO onboarding_contracts (idempotency_key, version, data, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (idempotency_key) DO UPDATE SET version = $2, data = $3, completed = $4, updated_at = $6`,
		c.Metadata.IdempotencyKey, c.Version, data, c.Metadata.CompletedAt != nil,
		c.Metadata.CreatedAt, c.Metadata.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save contract %s", c.Metadata.IdempotencyKey)
}

func (s *PostgresStore) DeleteContract(ctx context.Context, key string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM onboarding_contracts WHERE idempotency_key = $1`, key)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete contract %s", key)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "contract %s", key)
	}
	return nil
}

func (s *PostgresStore) ListContracts(ctx context.Context, filter ContractFilter) ([]ContractSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM onboarding_contracts
		 WHERE ($1::boolean IS NULL OR completed = $1)
		 ORDER BY updated_at DESC, idempotency_key
		 LIMIT $2 OFFSET $3`,
		filter.Complete, limitOrDefault(filter.Limit), max(filter.Offset, 0),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contracts")
	}
	defer rows.Close()

	out := []ContractSummary{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan contract")
		}
		var c model.Contract
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal contract")
		}
		out = append(out, summarize(c))
	}
	return out, eris.Wrap(rows.Err(), "postgres: list contracts iterate")
}

func (s *PostgresStore) RecordExtraction(ctx context.Context, key, contextName string, res *model.ExtractionResult) (*Extraction, error) {
	if res == nil {
		return nil, eris.New("postgres: nil extraction result")
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal extraction")
	}
	e := &Extraction{
		ID:          uuid.New().String(),
		ContractKey: key,
		Context:     contextName,
		Result:      *res,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO onboarding_extractions (id, contract_key, context, result, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, key, contextName, data, e.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: record extraction for %s", key)
	}
	return e, nil
}

func (s *PostgresStore) ListExtractions(ctx context.Context, key string, limit int) ([]Extraction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, contract_key, context, result, created_at FROM onboarding_extractions
		 WHERE contract_key = $1 ORDER BY created_at DESC LIMIT $2`,
		key, limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list extractions for %s", key)
	}
	defer rows.Close()

	out := []Extraction{}
	for rows.Next() {
		var (
			e      Extraction
			result []byte
		)
		if err := rows.Scan(&e.ID, &e.ContractKey, &e.Context, &result, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan extraction")
		}
		if err := json.Unmarshal(result, &e.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal extraction")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list extractions iterate")
}
