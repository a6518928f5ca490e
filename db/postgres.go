package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"

	"github.com/daccred/txlens.attest.so/models"
	"github.com/daccred/txlens.attest.so/tokens"
)

func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, db.Ping()
}

// TokenStore persists resolved token metadata so lookups survive restarts.
type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) GetToken(ctx context.Context, contractID, network string) (models.TokenMetadata, error) {
	var meta models.TokenMetadata
	var functionsJSON, eventsJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT contract_id, network, symbol, name, decimals, functions, events, updated_at
		FROM token_metadata WHERE contract_id = $1 AND network = $2`,
		contractID, network).Scan(
		&meta.Contract, &meta.Network, &meta.Symbol, &meta.Name, &meta.Decimals,
		&functionsJSON, &eventsJSON, &meta.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.TokenMetadata{}, tokens.ErrNotFound
	}
	if err != nil {
		return models.TokenMetadata{}, err
	}
	json.Unmarshal(functionsJSON, &meta.Functions)
	json.Unmarshal(eventsJSON, &meta.Events)
	return meta, nil
}

func (s *TokenStore) PutToken(ctx context.Context, meta models.TokenMetadata) error {
	functionsJSON, _ := json.Marshal(meta.Functions)
	eventsJSON, _ := json.Marshal(meta.Events)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_metadata (contract_id, network, symbol, name, decimals,
			functions, events, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (contract_id, network) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			functions = EXCLUDED.functions,
			events = EXCLUDED.events,
			updated_at = EXCLUDED.updated_at`,
		meta.Contract, meta.Network, meta.Symbol, meta.Name, meta.Decimals,
		functionsJSON, eventsJSON, meta.UpdatedAt)
	return err
}
