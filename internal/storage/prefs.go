/*
Package storage
File: prefs.go
Description:
    Key/value flight preferences stored as named float fields (bools as 0/1).
*/

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/everforgeworks/plasma-siege/internal/game"
)

// Preference keys, shared with the desktop tuning panel.
const (
	KeyThrustPower     = "Ship_ThrustPower"
	KeyStrafePower     = "Ship_StrafePower"
	KeyLiftPower       = "Ship_LiftPower"
	KeyRotationSpeed   = "Ship_RotationSpeed"
	KeyBoostMultiplier = "Ship_BoostMultiplier"
	KeyFireRate        = "Ship_FireRate"
	KeyInvertPitch     = "Ship_InvertPitch"
	KeyInvertYaw       = "Ship_InvertYaw"
)

// HasKey reports whether a preference has ever been saved.
func (s *Store) HasKey(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM prefs WHERE key = ?`, key).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Float returns a stored float, or def when the key is missing.
func (s *Store) Float(ctx context.Context, key string, def float32) (float32, error) {
	var v float64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("pref %s: %w", key, err)
	}
	return float32(v), nil
}

func (s *Store) SetFloat(ctx context.Context, key string, v float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, float64(v))
	if err != nil {
		return fmt.Errorf("pref %s: %w", key, err)
	}
	return nil
}

// Bool values are stored as 1/0.
func (s *Store) Bool(ctx context.Context, key string, def bool) (bool, error) {
	d := float32(0)
	if def {
		d = 1
	}
	v, err := s.Float(ctx, key, d)
	return v == 1, err
}

func (s *Store) SetBool(ctx context.Context, key string, v bool) error {
	f := float32(0)
	if v {
		f = 1
	}
	return s.SetFloat(ctx, key, f)
}

// LoadFlightPrefs overlays saved preferences onto cfg.
// Nothing is loaded unless a previous session saved the thrust power.
// Saved values that fail validation leave cfg untouched and return a ConfigurationError.
func (s *Store) LoadFlightPrefs(ctx context.Context, cfg *game.FlightConfig) (bool, error) {
	ok, err := s.HasKey(ctx, KeyThrustPower)
	if err != nil || !ok {
		return false, err
	}

	next := *cfg
	if err := s.readFlightPrefs(ctx, &next); err != nil {
		return false, err
	}
	if err := next.Validate(); err != nil {
		return false, fmt.Errorf("saved flight preferences: %w", err)
	}
	*cfg = next
	return true, nil
}

func (s *Store) readFlightPrefs(ctx context.Context, cfg *game.FlightConfig) error {
	var err error

	floats := []struct {
		key string
		dst *float32
	}{
		{KeyThrustPower, &cfg.ThrustPower},
		{KeyStrafePower, &cfg.StrafePower},
		{KeyLiftPower, &cfg.LiftPower},
		{KeyRotationSpeed, &cfg.RotationSpeed},
		{KeyBoostMultiplier, &cfg.BoostMultiplier},
		{KeyFireRate, &cfg.FireRate},
	}
	for _, f := range floats {
		v, err := s.Float(ctx, f.key, *f.dst)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if cfg.InvertPitch, err = s.Bool(ctx, KeyInvertPitch, cfg.InvertPitch); err != nil {
		return err
	}
	cfg.InvertYaw, err = s.Bool(ctx, KeyInvertYaw, cfg.InvertYaw)
	return err
}

// SaveFlightPrefs writes every flight preference in one transaction.
func (s *Store) SaveFlightPrefs(ctx context.Context, cfg game.FlightConfig) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b2f := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}
	values := map[string]float64{
		KeyThrustPower:     float64(cfg.ThrustPower),
		KeyStrafePower:     float64(cfg.StrafePower),
		KeyLiftPower:       float64(cfg.LiftPower),
		KeyRotationSpeed:   float64(cfg.RotationSpeed),
		KeyBoostMultiplier: float64(cfg.BoostMultiplier),
		KeyFireRate:        float64(cfg.FireRate),
		KeyInvertPitch:     b2f(cfg.InvertPitch),
		KeyInvertYaw:       b2f(cfg.InvertYaw),
	}
	for k, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO prefs(key, value) VALUES(?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("pref %s: %w", k, err)
		}
	}
	return tx.Commit()
}
