/*
Package storage
File: pilots.go
Description:
    Pilot records: experience, mint state and tokens per ship id.
    Saved on despawn, mint and shutdown; loaded when a client resumes a ship id.
*/

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/everforgeworks/plasma-siege/internal/game"
)

// ErrPilotNotFound is returned by LoadPilot for unknown ship ids.
var ErrPilotNotFound = errors.New("pilot not found")

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SavePilot upserts the persisted progress of one ship.
func (s *Store) SavePilot(ctx context.Context, rec game.PilotRecord) error {
	return savePilot(ctx, s.db, rec)
}

// SavePilots writes many records in one transaction.
func (s *Store) SavePilots(ctx context.Context, recs []game.PilotRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, rec := range recs {
		if err := savePilot(ctx, tx, rec); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func savePilot(ctx context.Context, db execer, rec game.PilotRecord) error {
	minted := 0
	if rec.IsMinted {
		minted = 1
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO pilots(ship_id, tier, experience, is_minted, mint_address, tokens, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ship_id) DO UPDATE SET
			tier = excluded.tier,
			experience = excluded.experience,
			is_minted = excluded.is_minted,
			mint_address = excluded.mint_address,
			tokens = excluded.tokens,
			updated_at = excluded.updated_at`,
		rec.ShipID, rec.Tier.String(), rec.Experience, minted, rec.MintAddress, rec.Tokens,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save pilot %s: %w", rec.ShipID, err)
	}
	return nil
}

// LoadPilot reads one record.
func (s *Store) LoadPilot(ctx context.Context, shipID string) (game.PilotRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ship_id, tier, experience, is_minted, mint_address, tokens
		FROM pilots WHERE ship_id = ?`, shipID)
	rec, err := scanPilot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return game.PilotRecord{}, fmt.Errorf("%w: %s", ErrPilotNotFound, shipID)
	}
	return rec, err
}

// ListPilots returns every record ordered by ship id.
func (s *Store) ListPilots(ctx context.Context) ([]game.PilotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ship_id, tier, experience, is_minted, mint_address, tokens
		FROM pilots ORDER BY ship_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.PilotRecord
	for rows.Next() {
		rec, err := scanPilot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeletePilot forgets a ship.
func (s *Store) DeletePilot(ctx context.Context, shipID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pilots WHERE ship_id = ?`, shipID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPilot(r rowScanner) (game.PilotRecord, error) {
	var (
		rec    game.PilotRecord
		tier   string
		minted int
	)
	if err := r.Scan(&rec.ShipID, &tier, &rec.Experience, &minted, &rec.MintAddress, &rec.Tokens); err != nil {
		return game.PilotRecord{}, err
	}
	t, err := game.ParseTier(tier)
	if err != nil {
		return game.PilotRecord{}, fmt.Errorf("pilot %s: %w", rec.ShipID, err)
	}
	rec.Tier = t
	rec.IsMinted = minted != 0
	return rec, nil
}
