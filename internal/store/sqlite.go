package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contracts (
	idempotency_key TEXT PRIMARY KEY,
	version         TEXT NOT NULL,
	data            TEXT NOT NULL,
	completed       INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS extractions (
	id           TEXT PRIMARY KEY,
	contract_key TEXT NOT NULL,
	context      TEXT NOT NULL,
	result       TEXT NOT NULL,
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contracts_updated_at ON contracts(updated_at);
CREATE INDEX IF NOT EXISTS idx_extractions_contract_key ON extractions(contract_key);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetContract(ctx context.Context, key string) (*model.Contract, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM contracts WHERE idempotency_key = ?`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: contract %s", key)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contract %s", key)
	}
	var c model.Contract
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal contract %s", key)
	}
	return &c, nil
}

func (s *SQLiteStore) SaveContract(ctx context.Context, c model.Contract) error {
	if err := checkKey(c); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contract")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contracts (idempotency_key, version, data, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (idempotency_key) DO UPDATE SET
		   version = excluded.version, data = excluded.data,
		   completed = excluded.completed, updated_at = excluded.updated_at`,
		c.Metadata.IdempotencyKey, c.Version, string(data), c.Metadata.CompletedAt != nil,
		c.Metadata.CreatedAt.UTC(), c.Metadata.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save contract %s", c.Metadata.IdempotencyKey)
}

// DeleteContract removes the contract and its extraction log.
func (s *SQLiteStore) DeleteContract(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin delete")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM contracts WHERE idempotency_key = ?`, key)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete contract %s", key)
	}
	if err := checkRowsAffected(res, key); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM extractions WHERE contract_key = ?`, key); err != nil {
		return eris.Wrapf(err, "sqlite: delete extractions %s", key)
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit delete")
}

func (s *SQLiteStore) ListContracts(ctx context.Context, filter ContractFilter) ([]ContractSummary, error) {
	query := `SELECT data FROM contracts WHERE 1=1`
	var args []any
	if filter.Complete != nil {
		query += ` AND completed = ?`
		args = append(args, *filter.Complete)
	}
	query += ` ORDER BY updated_at DESC, idempotency_key LIMIT ?`
	args = append(args, limitOrDefault(filter.Limit))
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contracts")
	}
	defer rows.Close()

	out := []ContractSummary{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contract")
		}
		var c model.Contract
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal contract")
		}
		out = append(out, summarize(c))
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list contracts iterate")
}

func (s *SQLiteStore) RecordExtraction(ctx context.Context, key, contextName string, res *model.ExtractionResult) (*Extraction, error) {
	if res == nil {
		return nil, eris.New("sqlite: nil extraction result")
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal extraction")
	}
	e := &Extraction{
		ID:          uuid.New().String(),
		ContractKey: key,
		Context:     contextName,
		Result:      *res,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extractions (id, contract_key, context, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, key, contextName, string(data), e.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: record extraction for %s", key)
	}
	return e, nil
}

func (s *SQLiteStore) ListExtractions(ctx context.Context, key string, limit int) ([]Extraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, contract_key, context, result, created_at FROM extractions
		 WHERE contract_key = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		key, limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list extractions for %s", key)
	}
	defer rows.Close()

	out := []Extraction{}
	for rows.Next() {
		var (
			e      Extraction
			result string
		)
		if err := rows.Scan(&e.ID, &e.ContractKey, &e.Context, &result, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan extraction")
		}
		if err := json.Unmarshal([]byte(result), &e.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal extraction")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list extractions iterate")
}

// helpers

func checkRowsAffected(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "contract %s", key)
	}
	return nil
}
