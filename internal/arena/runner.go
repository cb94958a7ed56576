// Package arena runs bouts in real time for the fight server: it resolves
// each side's brain, drives the engine's scheduler under a wall-clock
// ceiling, persists results, and serves live and finished snapshots.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
)

// ErrBoutNotFound is returned by Snapshot for an id that is neither live nor
// cached.
var ErrBoutNotFound = errors.New("arena: bout not found")

// Matchup describes one bout to run.
type Matchup struct {
	// ID names the bout; the engine generates one when empty.
	ID     string
	A, B   fighter.Profile
	BrainA string
	BrainB string
	// Seed makes the bout reproducible; nil uses crypto randomness.
	Seed *uint64
}

// ResultStore persists finished bouts.
type ResultStore interface {
	SaveBout(ctx context.Context, s bout.State) error
}

// BrainResolver maps a brain name to a decision provider. A nil provider
// means the engine's own pick.
type BrainResolver interface {
	Resolve(brain string) (bout.DecisionProvider, error)
}

// Result is one card entry's outcome.
type Result struct {
	State bout.State
	Err   error
}

// Runner owns live engines and recently finished snapshots.
//
// Runner is safe for concurrent use.
type Runner struct {
	cfg    config.ArenaConfig
	tuning bout.Tuning
	brains BrainResolver
	store  ResultStore
	logger *zap.Logger

	mu       sync.RWMutex
	live     map[string]*bout.Engine
	finished cache.Cache[string, bout.State]
}

// NewRunner creates a Runner. brains and store may be nil: every side then
// uses the internal pick, and results are only cached.
//
// Precondition: logger must be non-nil.
func NewRunner(cfg config.ArenaConfig, tuning bout.Tuning, brains BrainResolver, store ResultStore, logger *zap.Logger) *Runner {
	if logger == nil {
		panic("arena.NewRunner: logger must not be nil")
	}
	return &Runner{
		cfg:    cfg,
		tuning: tuning,
		brains: brains,
		store:  store,
		logger: logger,
		live:   make(map[string]*bout.Engine),
		finished: cache.NewCache[string, bout.State]().
			WithTTL(cfg.FinishedTTL).
			WithMaxKeys(cfg.FinishedMax).
			WithLRU(),
	}
}

func (r *Runner) providers(m Matchup) ([2]bout.DecisionProvider, error) {
	var out [2]bout.DecisionProvider
	if r.brains == nil {
		return out, nil
	}
	for i, brain := range [2]string{m.BrainA, m.BrainB} {
		p, err := r.brains.Resolve(brain)
		if err != nil {
			return out, fmt.Errorf("side %s brain %q: %w", bout.Sides[i], brain, err)
		}
		out[i] = p
	}
	return out, nil
}

// Run plays m in real time and blocks until the bout ends, the
// max_bout_duration ceiling passes, or ctx is cancelled. In the last two
// cases the bout is stopped without a winner.
//
// Postcondition: the returned state is complete and cached for Snapshot;
// a persistence failure is returned alongside the state.
func (r *Runner) Run(ctx context.Context, m Matchup) (bout.State, error) {
	providers, err := r.providers(m)
	if err != nil {
		return bout.State{}, err
	}
	var src dice.Source
	if m.Seed != nil {
		src = dice.NewSeededSource(*m.Seed)
	}

	done := make(chan bout.State, 1)
	eng := bout.NewEngine(m.A, m.B, bout.Config{
		ID:        m.ID,
		Tuning:    r.tuning,
		Source:    src,
		Logger:    r.logger,
		Providers: providers,
		Callbacks: bout.Callbacks{
			OnRoundEnd: func(rd bout.Round) {
				r.logger.Debug("round ended",
					zap.Int("round", rd.Number),
					zap.Int("actions", len(rd.Actions)),
				)
			},
			OnFightEnd: func(s bout.State) { done <- s },
		},
	})
	id := eng.ID()

	r.mu.Lock()
	r.live[id] = eng
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.live, id)
		r.mu.Unlock()
	}()

	start := time.Now()
	eng.Start()

	ceiling := time.NewTimer(r.cfg.MaxBoutDuration)
	defer ceiling.Stop()

	var final bout.State
	select {
	case final = <-done:
	case <-ceiling.C:
		r.logger.Warn("bout exceeded max duration, stopping",
			zap.String("bout_id", id),
			zap.Duration("max_bout_duration", r.cfg.MaxBoutDuration),
		)
		eng.Stop()
		final = <-done
	case <-ctx.Done():
		eng.Stop()
		final = <-done
	}

	r.finished.Set(id, final, 0)
	r.logger.Info("bout finished",
		zap.String("bout_id", id),
		zap.String("winner", final.Winner),
		zap.String("method", string(final.Method)),
		zap.Int("end_round", final.EndRound),
		zap.Duration("elapsed", time.Since(start)),
	)

	if r.store != nil {
		if err := r.store.SaveBout(context.WithoutCancel(ctx), final); err != nil {
			r.logger.Error("saving bout", zap.String("bout_id", id), zap.Error(err))
			return final, fmt.Errorf("saving bout %s: %w", id, err)
		}
	}
	return final, nil
}

// RunCard runs every matchup concurrently and returns the results in card
// order.
func (r *Runner) RunCard(ctx context.Context, card []Matchup) []Result {
	results := make([]Result, len(card))
	var wg sync.WaitGroup
	wg.Add(len(card))
	for i, m := range card {
		go func() {
			defer wg.Done()
			s, err := r.Run(ctx, m)
			results[i] = Result{State: s, Err: err}
		}()
	}
	wg.Wait()
	return results
}

// Snapshot returns the state of a live bout, or of a finished bout still in
// the cache.
func (r *Runner) Snapshot(id string) (bout.State, error) {
	r.mu.RLock()
	eng, ok := r.live[id]
	r.mu.RUnlock()
	if ok {
		return eng.State(), nil
	}
	if s, ok := r.finished.Get(id); ok {
		return s, nil
	}
	return bout.State{}, fmt.Errorf("%w: %s", ErrBoutNotFound, id)
}

// Live returns the ids of running bouts in sorted order.
func (r *Runner) Live() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.live))
	for id := range r.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Finished returns the ids of cached finished bouts in sorted order.
func (r *Runner) Finished() []string {
	ids := r.finished.Keys()
	sort.Strings(ids)
	return ids
}
