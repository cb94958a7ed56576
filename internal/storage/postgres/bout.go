package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fightsim/internal/game/bout"
)

// ErrBoutNotFound is returned when a bout lookup yields no results.
var ErrBoutNotFound = errors.New("bout not found")

// ErrBoutExists is returned when saving a bout id that is already stored.
var ErrBoutExists = errors.New("bout already exists")

// BoutRecord is a stored bout result.
type BoutRecord struct {
	ID               string
	FighterA         string
	FighterB         string
	Winner           string
	Method           bout.Method
	EndRound         int
	EndTimeRemaining int
	Rounds           []bout.Round
	Log              []string
	CreatedAt        time.Time
}

// RecordFromState extracts the stored columns of a bout.
func RecordFromState(s bout.State) BoutRecord {
	return BoutRecord{
		ID:               s.ID,
		FighterA:         s.Fighters[bout.SideA].Profile.Name,
		FighterB:         s.Fighters[bout.SideB].Profile.Name,
		Winner:           s.Winner,
		Method:           s.Method,
		EndRound:         s.EndRound,
		EndTimeRemaining: s.EndTimeRemaining,
		Rounds:           s.Rounds,
		Log:              s.Log,
	}
}

// BoutRepository provides bout persistence operations.
type BoutRepository struct {
	db querier
}

// NewBoutRepository creates a BoutRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBoutRepository(db *pgxpool.Pool) *BoutRepository {
	return &BoutRepository{db: db}
}

// Save inserts a finished bout. Both fighters must already be stored.
//
// Postcondition: Returns ErrBoutExists on an id collision and
// ErrFighterNotFound when a fighter row is missing.
func (r *BoutRepository) Save(ctx context.Context, s bout.State) error {
	rec := RecordFromState(s)
	rounds, err := json.Marshal(rec.Rounds)
	if err != nil {
		return fmt.Errorf("encoding rounds of bout %s: %w", rec.ID, err)
	}
	log := rec.Log
	if log == nil {
		log = []string{}
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO bouts (id, fighter_a, fighter_b, winner, method, end_round, end_time_remaining, rounds, log)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.FighterA, rec.FighterB, rec.Winner, string(rec.Method),
		rec.EndRound, rec.EndTimeRemaining, rounds, log,
	)
	if err != nil {
		switch {
		case isDuplicateKeyError(err):
			return ErrBoutExists
		case isForeignKeyError(err):
			return ErrFighterNotFound
		}
		return fmt.Errorf("inserting bout %s: %w", rec.ID, err)
	}
	return nil
}

const boutColumns = `id, fighter_a, fighter_b, winner, method, end_round, end_time_remaining, rounds, log, created_at`

// Get retrieves a bout by id.
//
// Postcondition: Returns the BoutRecord or ErrBoutNotFound.
func (r *BoutRepository) Get(ctx context.Context, id string) (BoutRecord, error) {
	rec, err := scanBout(r.db.QueryRow(ctx,
		`SELECT `+boutColumns+` FROM bouts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BoutRecord{}, ErrBoutNotFound
		}
		return BoutRecord{}, fmt.Errorf("querying bout %s: %w", id, err)
	}
	return rec, nil
}

// ListByFighter returns up to limit bouts the named fighter took part in,
// newest first. A limit <= 0 returns every bout.
func (r *BoutRepository) ListByFighter(ctx context.Context, name string, limit int) ([]BoutRecord, error) {
	query := `SELECT ` + boutColumns + ` FROM bouts
		 WHERE fighter_a = $1 OR fighter_b = $1
		 ORDER BY created_at DESC, id ASC`
	args := []any{name}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bouts for %q: %w", name, err)
	}
	defer rows.Close()

	var out []BoutRecord
	for rows.Next() {
		rec, err := scanBout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bout: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanBout(row pgx.Row) (BoutRecord, error) {
	var (
		rec    BoutRecord
		method string
		rounds []byte
	)
	err := row.Scan(&rec.ID, &rec.FighterA, &rec.FighterB, &rec.Winner, &method,
		&rec.EndRound, &rec.EndTimeRemaining, &rounds, &rec.Log, &rec.CreatedAt)
	if err != nil {
		return BoutRecord{}, err
	}
	rec.Method = bout.Method(method)
	if err := json.Unmarshal(rounds, &rec.Rounds); err != nil {
		return BoutRecord{}, fmt.Errorf("decoding rounds: %w", err)
	}
	return rec, nil
}
