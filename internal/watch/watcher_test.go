package watch

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xtechnoir/ore-alt-client/internal/game"
	"github.com/0xtechnoir/ore-alt-client/internal/pda"
	"github.com/0xtechnoir/ore-alt-client/internal/store"
	"github.com/0xtechnoir/ore-alt-client/internal/store/stub"
)

func testProgramID() game.Pubkey {
	var pk game.Pubkey
	for i := range pk {
		pk[i] = byte(i + 1)
	}
	return pk
}

func testLogger() *log.Logger {
	return log.New(os.Stdout, "[test] ", log.LstdFlags)
}

func testBoard(roundID uint64) *game.Board {
	return &game.Board{RoundID: roundID, StartSlot: 1000, EndSlot: 2000}
}

func testRound(id uint64) *game.Round {
	r := &game.Round{
		ID:              id,
		ClaimExpirySlot: 3000,
		Jackpot:         9_000_000,
	}
	for i := range r.CellDeposits {
		r.CellDeposits[i] = uint64(i + 1)
		r.TotalDeposited += uint64(i + 1)
	}
	return r
}

// seedStore scripts a consistent board+round pair into the stub store.
func seedStore(t *testing.T, s *stub.Store, programID game.Pubkey, board *game.Board, round *game.Round) (boardAddr, roundAddr game.Pubkey) {
	t.Helper()

	boardAddr, err := pda.BoardAddress(programID)
	require.NoError(t, err)
	roundAddr, err = pda.RoundAddress(programID, board.RoundID)
	require.NoError(t, err)

	s.SetAccount(boardAddr, board.Marshal())
	s.SetAccount(roundAddr, round.Marshal())
	return boardAddr, roundAddr
}

func newTestWatcher(t *testing.T, s *stub.Store) *Watcher {
	t.Helper()

	w, err := New(Options{
		Store:     s,
		ProgramID: testProgramID(),
		Interval:  time.Hour, // ticks driven manually
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	return w
}

func TestWatcher_SuccessfulTick(t *testing.T) {
	s := stub.NewStore()
	seedStore(t, s, testProgramID(), testBoard(7), testRound(7))

	w := newTestWatcher(t, s)
	require.Nil(t, w.Snapshot())
	assert.Equal(t, StateIdle, w.State())

	w.tick(context.Background())

	snap := w.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(7), snap.Board.RoundID)
	assert.Equal(t, uint64(7), snap.Round.ID)
	assert.Equal(t, StateReady, w.State())
	assert.NoError(t, w.LastError())
	assert.Equal(t, 0, w.ConsecutiveFailures())
	assert.Equal(t, 2, s.Fetches(), "board then round, nothing else")
}

func TestWatcher_RoundMismatch(t *testing.T) {
	s := stub.NewStore()
	seedStore(t, s, testProgramID(), testBoard(7), testRound(7))

	w := newTestWatcher(t, s)
	w.tick(context.Background())
	first := w.Snapshot()
	require.NotNil(t, first)

	// The round account now claims id 8 while the board still says 7.
	roundAddr, err := pda.RoundAddress(testProgramID(), 7)
	require.NoError(t, err)
	s.SetAccount(roundAddr, testRound(8).Marshal())

	w.tick(context.Background())

	var mismatch *RoundMismatchError
	require.ErrorAs(t, w.LastError(), &mismatch)
	assert.Equal(t, uint64(7), mismatch.BoardRoundID)
	assert.Equal(t, uint64(8), mismatch.RoundID)
	assert.Equal(t, StateFailed, w.State())

	// Prior snapshot stays published.
	assert.Same(t, first, w.Snapshot())
}

func TestWatcher_RoundMismatch_FirstTick(t *testing.T) {
	s := stub.NewStore()
	seedStore(t, s, testProgramID(), testBoard(7), testRound(8))

	w := newTestWatcher(t, s)
	w.tick(context.Background())

	var mismatch *RoundMismatchError
	require.ErrorAs(t, w.LastError(), &mismatch)
	assert.Nil(t, w.Snapshot(), "no snapshot before the first success")
}

func TestWatcher_TransientError_KeepsSnapshot(t *testing.T) {
	s := stub.NewStore()
	boardAddr, _ := seedStore(t, s, testProgramID(), testBoard(7), testRound(7))

	w := newTestWatcher(t, s)
	w.tick(context.Background())
	first := w.Snapshot()
	require.NotNil(t, first)

	cause := errors.New("rpc: connection reset")
	s.FailWith(boardAddr, cause)

	w.tick(context.Background())
	w.tick(context.Background())

	assert.Same(t, first, w.Snapshot(), "stale-but-valid beats blank")
	assert.ErrorIs(t, w.LastError(), cause)
	assert.Equal(t, 2, w.ConsecutiveFailures())
	assert.Equal(t, StateFailed, w.State())

	// Recovery clears the error state.
	s.FailWith(boardAddr, nil)
	w.tick(context.Background())
	assert.NoError(t, w.LastError())
	assert.Equal(t, 0, w.ConsecutiveFailures())
	assert.Equal(t, StateReady, w.State())
	assert.NotSame(t, first, w.Snapshot())
}

func TestWatcher_BoardNotFound(t *testing.T) {
	s := stub.NewStore()

	w := newTestWatcher(t, s)
	w.tick(context.Background())

	assert.ErrorIs(t, w.LastError(), store.ErrNotFound)
	assert.Nil(t, w.Snapshot())
	assert.Equal(t, 1, s.Fetches(), "round fetch must not happen without a board")
}

func TestWatcher_EmptyRoundAccount(t *testing.T) {
	s := stub.NewStore()
	seedStore(t, s, testProgramID(), testBoard(7), testRound(7))

	roundAddr, err := pda.RoundAddress(testProgramID(), 7)
	require.NoError(t, err)
	s.SetAccount(roundAddr, []byte{})

	w := newTestWatcher(t, s)
	w.tick(context.Background())

	assert.ErrorIs(t, w.LastError(), game.ErrEmptyAccount)
	assert.Nil(t, w.Snapshot())
}

// blockingStore gates fetches so a tick can be held in flight.
type blockingStore struct {
	inner   *stub.Store
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingStore) Fetch(ctx context.Context, addr game.Pubkey) ([]byte, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.inner.Fetch(ctx, addr)
}

func TestWatcher_OverlappingTickSkipped(t *testing.T) {
	inner := stub.NewStore()
	seedStore(t, inner, testProgramID(), testBoard(7), testRound(7))

	bs := &blockingStore{
		inner:   inner,
		release: make(chan struct{}),
		started: make(chan struct{}),
	}

	w, err := New(Options{
		Store:     bs,
		ProgramID: testProgramID(),
		Interval:  time.Hour,
		Logger:    testLogger(),
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		w.tick(context.Background())
		close(done)
	}()

	<-bs.started

	// Timer fires while the first tick is blocked: must be a no-op.
	w.tick(context.Background())
	assert.Equal(t, 0, inner.Fetches(), "skipped tick made store calls")

	close(bs.release)
	<-done

	assert.Equal(t, 2, inner.Fetches(), "exactly one fetch sequence ran")
	require.NotNil(t, w.Snapshot())
}

func TestWatcher_RunAndCancel(t *testing.T) {
	s := stub.NewStore()
	seedStore(t, s, testProgramID(), testBoard(7), testRound(7))

	w, err := New(Options{
		Store:     s,
		ProgramID: testProgramID(),
		Interval:  10 * time.Millisecond,
		Logger:    testLogger(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return w.Snapshot() != nil
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_WakeTriggersTick(t *testing.T) {
	s := stub.NewStore()
	seedStore(t, s, testProgramID(), testBoard(7), testRound(7))

	w, err := New(Options{
		Store:     s,
		ProgramID: testProgramID(),
		Interval:  time.Hour, // only Wake can trigger ticks after the first
		Logger:    testLogger(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool {
		return w.Snapshot() != nil
	}, 2*time.Second, 5*time.Millisecond)

	boardAddr, err := pda.BoardAddress(testProgramID())
	require.NoError(t, err)
	s.SetAccount(boardAddr, testBoard(8).Marshal())
	roundAddr, err := pda.RoundAddress(testProgramID(), 8)
	require.NoError(t, err)
	s.SetAccount(roundAddr, testRound(8).Marshal())

	w.Wake()

	require.Eventually(t, func() bool {
		snap := w.Snapshot()
		return snap != nil && snap.Board.RoundID == 8
	}, 2*time.Second, 5*time.Millisecond)

	// Coalescing: piled-up wakes must not panic or block.
	w.Wake()
	w.Wake()
}

func TestWatcher_StateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
}
