// Package watch keeps a local snapshot of the board and its current round
// synchronized with the remote account store.
package watch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xtechnoir/ore-alt-client/internal/game"
	"github.com/0xtechnoir/ore-alt-client/internal/observability"
	"github.com/0xtechnoir/ore-alt-client/internal/pda"
	"github.com/0xtechnoir/ore-alt-client/internal/store"
)

// DefaultInterval is the default poll cadence.
const DefaultInterval = 5 * time.Second

// State describes where the watcher is in its fetch cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Snapshot is the atomically published pair of decoded accounts. It is
// immutable: a new snapshot replaces the old one wholesale.
type Snapshot struct {
	Board     game.Board
	Round     game.Round
	FetchedAt time.Time
}

// RoundMismatchError reports a round account whose id disagrees with the
// board that referenced it, usually a race between the two reads. The next
// tick is expected to resolve it.
type RoundMismatchError struct {
	BoardRoundID uint64
	RoundID      uint64
}

func (e *RoundMismatchError) Error() string {
	return fmt.Sprintf("board points at round %d but round account has id %d", e.BoardRoundID, e.RoundID)
}

// Watcher polls the board and current round accounts and publishes the
// latest successfully decoded pair. There is exactly one writer (the loop);
// readers access the snapshot without locks.
type Watcher struct {
	store     store.AccountStore
	programID game.Pubkey
	boardAddr game.Pubkey
	interval  time.Duration
	logger    *log.Logger
	metrics   *observability.Metrics

	// wake requests an immediate tick; pending wakes coalesce.
	wake chan struct{}

	published atomic.Pointer[Snapshot]

	mu       sync.Mutex
	inFlight bool
	state    State
	lastErr  error
	failures int
}

// Options contains configuration for creating a Watcher.
type Options struct {
	Store     store.AccountStore
	ProgramID game.Pubkey
	Interval  time.Duration // Default: DefaultInterval
	Logger    *log.Logger
	Metrics   *observability.Metrics // Optional
}

// New creates a Watcher. The board address is derived here: a seed that
// violates the derivation bounds is a configuration error and surfaces
// immediately rather than on the first tick.
func New(opts Options) (*Watcher, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("watch: store is required")
	}

	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	boardAddr, err := pda.BoardAddress(opts.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("derive board address: %w", err)
	}

	return &Watcher{
		store:     opts.Store,
		programID: opts.ProgramID,
		boardAddr: boardAddr,
		interval:  interval,
		logger:    logger,
		metrics:   opts.Metrics,
		wake:      make(chan struct{}, 1),
		state:     StateIdle,
	}, nil
}

// BoardAddress returns the derived board account address.
func (w *Watcher) BoardAddress() game.Pubkey {
	return w.boardAddr
}

// Run polls until ctx is cancelled. It blocks. The first tick runs
// immediately; subsequent ticks follow the configured interval or an
// earlier Wake.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Printf("watching board %s every %v", w.boardAddr, w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Println("watcher stopping...")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		case <-w.wake:
			w.tick(ctx)
		}
	}
}

// Wake requests an immediate tick, e.g. when a subscription reports the
// board account changed. Multiple pending wakes coalesce into one.
func (w *Watcher) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns the most recently published snapshot, or nil if no tick
// has succeeded yet. The returned value must not be modified.
func (w *Watcher) Snapshot() *Snapshot {
	return w.published.Load()
}

// State returns the current loop state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastError returns the error from the most recent failed tick, or nil
// after a successful tick. It is tracked separately from the snapshot: a
// stale snapshot stays visible while the error is reported alongside it.
func (w *Watcher) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// ConsecutiveFailures returns how many ticks in a row have failed.
func (w *Watcher) ConsecutiveFailures() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures
}

// tick runs one fetch sequence. If a previous tick is still in flight the
// call returns without any store calls: at most one sequence at a time.
func (w *Watcher) tick(ctx context.Context) {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		w.logger.Println("tick still in flight, skipping")
		if m := w.metrics; m != nil {
			m.TicksTotal.WithLabelValues(observability.TickSkipped).Inc()
		}
		return
	}
	w.inFlight = true
	w.state = StateFetching
	w.mu.Unlock()

	start := time.Now()
	err := w.refresh(ctx)

	w.mu.Lock()
	w.inFlight = false
	if err != nil {
		w.state = StateFailed
		w.lastErr = err
		w.failures++
		failures := w.failures
		w.mu.Unlock()

		w.logger.Printf("tick failed (%d consecutive): %v", failures, err)
		if m := w.metrics; m != nil {
			m.TicksTotal.WithLabelValues(observability.TickFailure).Inc()
			m.ConsecutiveFailures.Set(float64(failures))
		}
		return
	}
	w.state = StateReady
	w.lastErr = nil
	w.failures = 0
	w.mu.Unlock()

	if m := w.metrics; m != nil {
		m.TicksTotal.WithLabelValues(observability.TickSuccess).Inc()
		m.ConsecutiveFailures.Set(0)
		m.LastSuccessTime.SetToCurrentTime()
		m.FetchDuration.Observe(time.Since(start).Seconds())
	}
}

// refresh fetches and decodes the board, then the round it points at, and
// publishes the pair. The round fetch strictly follows the board decode:
// the round address depends on the decoded round id. On any error the
// currently published snapshot is left untouched.
func (w *Watcher) refresh(ctx context.Context) error {
	raw, err := w.store.Fetch(ctx, w.boardAddr)
	if err != nil {
		return fmt.Errorf("fetch board %s: %w", w.boardAddr, err)
	}
	board, err := game.DecodeBoard(raw)
	if err != nil {
		return fmt.Errorf("decode board: %w", err)
	}

	roundAddr, err := pda.RoundAddress(w.programID, board.RoundID)
	if err != nil {
		return fmt.Errorf("derive round %d address: %w", board.RoundID, err)
	}
	raw, err = w.store.Fetch(ctx, roundAddr)
	if err != nil {
		return fmt.Errorf("fetch round %d at %s: %w", board.RoundID, roundAddr, err)
	}
	round, err := game.DecodeRound(raw)
	if err != nil {
		return fmt.Errorf("decode round %d: %w", board.RoundID, err)
	}

	if round.ID != board.RoundID {
		return &RoundMismatchError{BoardRoundID: board.RoundID, RoundID: round.ID}
	}

	// Advisory invariant: flag, publish anyway.
	if err := round.CheckTotals(); err != nil {
		w.logger.Printf("totals check: %v", err)
		if m := w.metrics; m != nil {
			m.TotalsViolations.Inc()
		}
	}

	prev := w.published.Load()
	w.published.Store(&Snapshot{
		Board:     *board,
		Round:     *round,
		FetchedAt: time.Now(),
	})

	if prev == nil || prev.Board.RoundID != board.RoundID {
		w.logger.Printf("round %d active, slots %d-%d, jackpot %d lamports",
			board.RoundID, board.StartSlot, board.EndSlot, round.Jackpot)
	}
	if m := w.metrics; m != nil {
		m.CurrentRound.Set(float64(board.RoundID))
		m.JackpotLamports.Set(float64(round.Jackpot))
		m.TotalDeposited.Set(float64(round.TotalDeposited))
	}

	return nil
}
