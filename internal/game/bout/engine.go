package bout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// Config carries an engine's collaborators. Every field is optional.
type Config struct {
	// ID names the bout; a random UUID is used when empty.
	ID string
	// Tuning defaults to DefaultTuning when zero. In a partly set Tuning, a
	// zero tick interval, round count, round length, decision timeout, crit
	// multiplier, accuracy ceiling, or cuts for stoppage takes its default.
	Tuning Tuning
	// Source defaults to a crypto-backed source.
	Source dice.Source
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Catalog defaults to the built-in technique catalog.
	Catalog   *technique.Catalog
	Callbacks Callbacks
	// Providers holds an optional external decision provider per side.
	Providers [2]DecisionProvider
	// Now stamps actions; defaults to time.Now.
	Now func() time.Time
}

// Engine runs one bout. All methods are safe for concurrent use.
//
// Invariant: at most one tick executes at a time, and State never observes a
// partially applied tick.
type Engine struct {
	tuning    Tuning
	catalog   *technique.Catalog
	roller    *dice.Roller
	logger    *zap.Logger
	callbacks Callbacks
	providers [2]DecisionProvider
	now       func() time.Time

	// tickMu is held for the whole of a tick, including callbacks. Every
	// writer of state holds it, so a tick may read state without mu.
	tickMu sync.Mutex

	mu            sync.RWMutex
	state         State
	begun         bool
	stopRequested bool

	schedMu   sync.Mutex
	schedStop chan struct{}
}

// NewEngine creates an engine for a bout between a and b.
//
// Precondition: a and b are well-formed profiles (see fighter.Sheet.WithDefaults).
// Postcondition: both fighters start at full health and stamina, standing;
// round 1 exists and is inactive until Start, Tick, or Run.
func NewEngine(a, b fighter.Profile, cfg Config) *Engine {
	cfg.Tuning = cfg.Tuning.withDefaults()
	if cfg.Source == nil {
		cfg.Source = dice.NewCryptoSource()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = technique.MustCatalog()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	logger := cfg.Logger.With(zap.String("bout_id", cfg.ID))
	return &Engine{
		tuning:    cfg.Tuning,
		catalog:   cfg.Catalog,
		roller:    dice.NewLoggedRoller(cfg.Source, logger),
		logger:    logger,
		callbacks: cfg.Callbacks,
		providers: cfg.Providers,
		now:       cfg.Now,
		state: State{
			ID:           cfg.ID,
			Fighters:     [2]FighterState{newFighterState(a), newFighterState(b)},
			CurrentRound: 1,
			Rounds:       []Round{{Number: 1, TimeRemaining: cfg.Tuning.RoundSeconds}},
			WinnerSide:   NoSide,
		},
	}
}

// ID returns the bout identifier.
func (e *Engine) ID() string { return e.state.ID }

// Tuning returns the engine's constants.
func (e *Engine) Tuning() Tuning { return e.tuning }

// State returns a deep copy of the current bout state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Complete reports whether the bout has ended.
func (e *Engine) Complete() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Complete
}

// begin activates round 1 the first time the bout is started or ticked.
func (e *Engine) begin() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.begun || e.state.Complete {
		return
	}
	e.begun = true
	e.state.Rounds[0].Active = true
	e.logger.Info("bout started",
		zap.String("fighter_a", e.state.Fighters[SideA].Profile.Name),
		zap.String("fighter_b", e.state.Fighters[SideB].Profile.Name),
	)
}

// Start activates round 1 and begins the real-time tick scheduler.
// It is a no-op while the scheduler is running or after the bout has ended.
func (e *Engine) Start() {
	if e.Complete() {
		return
	}
	e.begin()
	e.schedMu.Lock()
	defer e.schedMu.Unlock()
	if e.schedStop != nil {
		return
	}
	stop := make(chan struct{})
	e.schedStop = stop
	go e.schedule(stop)
}

// Pause halts the scheduler without changing the bout. A tick already in
// flight completes.
func (e *Engine) Pause() {
	e.schedMu.Lock()
	defer e.schedMu.Unlock()
	if e.schedStop != nil {
		close(e.schedStop)
		e.schedStop = nil
	}
}

// Resume restarts the scheduler unless the bout has ended.
func (e *Engine) Resume() {
	e.Start()
}

// Stop halts the scheduler and ends the bout with no winner. A tick already
// in flight completes first; the bout then ends at that tick's boundary.
//
// Postcondition: the bout is complete, or will be as soon as the in-flight
// tick returns; OnFightEnd fires at most once.
func (e *Engine) Stop() {
	e.Pause()
	e.mu.Lock()
	e.stopRequested = true
	e.mu.Unlock()
	if e.tickMu.TryLock() {
		e.emit(e.finishStopped())
		e.unlockTick()
	}
}

// schedule fires one tick per TickInterval until stop is closed or the bout ends.
func (e *Engine) schedule(stop <-chan struct{}) {
	ticker := time.NewTicker(e.tuning.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			e.Tick(context.Background())
			if e.Complete() {
				e.Pause()
				return
			}
		}
	}
}

// Run drives ticks back to back, ignoring TickInterval, until the bout ends
// or ctx is cancelled; on cancellation the bout is stopped.
//
// Postcondition: the returned state is complete.
func (e *Engine) Run(ctx context.Context) State {
	for !e.Complete() {
		if ctx.Err() != nil {
			e.Stop()
			break
		}
		e.Tick(ctx)
	}
	return e.State()
}

// Tick advances the bout by one second of fight time. It is a no-op once the
// bout has ended.
func (e *Engine) Tick(ctx context.Context) {
	e.tickMu.Lock()
	defer e.unlockTick()

	if e.stopPending() || e.Complete() {
		return
	}
	e.begin()
	e.emit(e.advance(ctx))
}

func (e *Engine) stopPending() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stopRequested && !e.state.Complete
}

// unlockTick releases tickMu and, if a Stop arrived while it was held,
// finishes the bout. Whoever releases tickMu last observes the request.
func (e *Engine) unlockTick() {
	for {
		e.tickMu.Unlock()
		if !e.stopPending() || !e.tickMu.TryLock() {
			return
		}
		e.emit(e.finishStopped())
	}
}

// events are the callbacks owed for one committed tick, in firing order.
type events struct {
	action   *Action
	roundEnd *Round
	fightEnd *State
}

func (e *Engine) emit(ev events) {
	if ev.action != nil && e.callbacks.OnAction != nil {
		e.callbacks.OnAction(*ev.action)
	}
	if ev.roundEnd != nil && e.callbacks.OnRoundEnd != nil {
		e.callbacks.OnRoundEnd(*ev.roundEnd)
	}
	if ev.fightEnd != nil && e.callbacks.OnFightEnd != nil {
		e.callbacks.OnFightEnd(*ev.fightEnd)
	}
}

func (e *Engine) finishStopped() events {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Complete {
		return events{}
	}
	r := &e.state.Rounds[len(e.state.Rounds)-1]
	r.Active = false
	e.complete(NoSide, MethodNone, r.TimeRemaining)
	e.logger.Info("bout stopped", zap.Int("round", e.state.CurrentRound), zap.Int("time_remaining", r.TimeRemaining))
	final := e.state.Clone()
	return events{fightEnd: &final}
}

// complete records the result.
//
// Precondition: e.mu is held for writing.
func (e *Engine) complete(winner Side, method Method, remaining int) {
	e.state.Complete = true
	e.state.Method = method
	e.state.WinnerSide = winner
	if winner != NoSide {
		e.state.Winner = e.state.Fighters[winner].Profile.Name
	}
	e.state.EndRound = e.state.CurrentRound
	e.state.EndTimeRemaining = remaining
}
