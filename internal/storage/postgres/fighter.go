package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fightsim/internal/game/fighter"
)

// ErrFighterNotFound is returned when a fighter lookup yields no results.
var ErrFighterNotFound = errors.New("fighter not found")

// Outcome is one fighter's result in a bout.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// FighterRecord is a stored profile with its career record.
type FighterRecord struct {
	Profile   fighter.Profile
	Wins      int
	Losses    int
	Draws     int
	UpdatedAt time.Time
}

// FighterRepository provides fighter persistence operations.
type FighterRepository struct {
	db querier
}

// NewFighterRepository creates a FighterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewFighterRepository(db *pgxpool.Pool) *FighterRepository {
	return &FighterRepository{db: db}
}

// Upsert stores p under its name, replacing any earlier profile. The career
// record is left untouched.
//
// Precondition: p.Name must be non-empty.
func (r *FighterRepository) Upsert(ctx context.Context, p fighter.Profile) error {
	if p.Name == "" {
		return fmt.Errorf("upserting fighter: name must not be empty")
	}
	profile, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding fighter %q: %w", p.Name, err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO fighters (name, profile)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE
		 SET profile = EXCLUDED.profile, updated_at = NOW()`,
		p.Name, profile,
	)
	if err != nil {
		return fmt.Errorf("upserting fighter %q: %w", p.Name, err)
	}
	return nil
}

// Get retrieves a fighter by name.
//
// Postcondition: Returns the FighterRecord or ErrFighterNotFound.
func (r *FighterRepository) Get(ctx context.Context, name string) (FighterRecord, error) {
	rec, err := scanFighter(r.db.QueryRow(ctx,
		`SELECT profile, wins, losses, draws, updated_at
		 FROM fighters WHERE name = $1`,
		name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FighterRecord{}, ErrFighterNotFound
		}
		return FighterRecord{}, fmt.Errorf("querying fighter %q: %w", name, err)
	}
	return rec, nil
}

// List returns every fighter ordered by wins, then fewest losses, then name.
func (r *FighterRepository) List(ctx context.Context) ([]FighterRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT profile, wins, losses, draws, updated_at
		 FROM fighters ORDER BY wins DESC, losses ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing fighters: %w", err)
	}
	defer rows.Close()

	var out []FighterRecord
	for rows.Next() {
		rec, err := scanFighter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fighter: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecordResult adds one outcome to the named fighter's record.
//
// Postcondition: exactly one of wins, losses, or draws is incremented, or
// ErrFighterNotFound is returned.
func (r *FighterRepository) RecordResult(ctx context.Context, name string, outcome Outcome) error {
	var column string
	switch outcome {
	case OutcomeWin:
		column = "wins"
	case OutcomeLoss:
		column = "losses"
	case OutcomeDraw:
		column = "draws"
	default:
		return fmt.Errorf("recording result for %q: unknown outcome %q", name, outcome)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE fighters SET `+column+` = `+column+` + 1, updated_at = NOW() WHERE name = $1`,
		name,
	)
	if err != nil {
		return fmt.Errorf("recording result for %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFighterNotFound
	}
	return nil
}

func scanFighter(row pgx.Row) (FighterRecord, error) {
	var (
		rec     FighterRecord
		profile []byte
	)
	if err := row.Scan(&profile, &rec.Wins, &rec.Losses, &rec.Draws, &rec.UpdatedAt); err != nil {
		return FighterRecord{}, err
	}
	if err := json.Unmarshal(profile, &rec.Profile); err != nil {
		return FighterRecord{}, fmt.Errorf("decoding profile: %w", err)
	}
	return rec, nil
}
