package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fightsim/internal/game/bout"
)

// Outcomes maps each fighter of a finished bout to its result. A bout stopped
// without a method records nothing.
func Outcomes(s bout.State) map[string]Outcome {
	a := s.Fighters[bout.SideA].Profile.Name
	b := s.Fighters[bout.SideB].Profile.Name
	switch {
	case s.Method == bout.MethodDraw:
		return map[string]Outcome{a: OutcomeDraw, b: OutcomeDraw}
	case s.Method.Decisive() && s.WinnerSide != bout.NoSide:
		winner := s.Fighters[s.WinnerSide].Profile.Name
		loser := s.Fighters[s.WinnerSide.Opponent()].Profile.Name
		return map[string]Outcome{winner: OutcomeWin, loser: OutcomeLoss}
	default:
		return map[string]Outcome{}
	}
}

// ResultStore saves finished bouts and updates both fighters' records in one
// transaction.
type ResultStore struct {
	pool *pgxpool.Pool
}

// NewResultStore creates a ResultStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultStore(db *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: db}
}

// SaveBout upserts both profiles, inserts the bout, and records each
// fighter's outcome.
//
// Postcondition: either every row is written or none is.
func (s *ResultStore) SaveBout(ctx context.Context, st bout.State) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		fighters := &FighterRepository{db: tx}
		bouts := &BoutRepository{db: tx}
		for _, f := range st.Fighters {
			if err := fighters.Upsert(ctx, f.Profile); err != nil {
				return err
			}
		}
		if err := bouts.Save(ctx, st); err != nil {
			return fmt.Errorf("saving bout %s: %w", st.ID, err)
		}
		for name, outcome := range Outcomes(st) {
			if err := fighters.RecordResult(ctx, name, outcome); err != nil {
				return err
			}
		}
		return nil
	})
}
