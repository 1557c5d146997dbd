package singleton_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sghaida/osi/singleton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A constructed instance lives for the rest of the test binary, so every test
// below owns the probe types it requests.

// Instance – first construction and stability

type stableProbe struct {
	ready bool
	seq   int32
}

var stableInits atomic.Int32

func (p *stableProbe) InitSingleton() error {
	p.ready = true
	p.seq = stableInits.Add(1)
	return nil
}

func TestInstance_ConstructsOnceAndStaysStable(t *testing.T) {
	t.Parallel()

	first, err := singleton.Instance[stableProbe]()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.ready)
	assert.EqualValues(t, 1, first.seq)

	second, err := singleton.Instance[stableProbe]()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, stableInits.Load())
}

// Instance – concurrent callers

type raceProbe struct {
	payload string
}

var raceInits atomic.Int32

func (p *raceProbe) InitSingleton() error {
	raceInits.Add(1)
	p.payload = "ready"
	return nil
}

func TestInstance_ConcurrentCallersShareOneInstance(t *testing.T) {
	t.Parallel()

	const n = 100

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)

	results := make([]*raceProbe, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			<-start
			results[i], errs[i] = singleton.Instance[raceProbe]()
		}()
	}

	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i], "goroutine %d", i)
		require.NotNil(t, results[i], "goroutine %d", i)
		assert.Same(t, results[0], results[i], "goroutine %d", i)
		// The happens-before edge of publication: nobody may observe a
		// half-built instance.
		assert.Equal(t, "ready", results[i].payload, "goroutine %d", i)
	}
	assert.EqualValues(t, 1, raceInits.Load())
}

// Instance – construction failures retry

type flakyProbe struct {
	attempt int32
}

var (
	flakyAttempts atomic.Int32
	flakyHealed   atomic.Bool
)

var errFlaky = errors.New("backend unavailable")

func (p *flakyProbe) InitSingleton() error {
	p.attempt = flakyAttempts.Add(1)
	if !flakyHealed.Load() {
		return errFlaky
	}
	return nil
}

func TestInstance_ConstructionErrorIsNotCached(t *testing.T) {
	t.Parallel()

	_, err := singleton.Instance[flakyProbe]()
	require.Error(t, err)

	var cerr singleton.ConstructionError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Type, "flakyProbe")
	require.True(t, errors.Is(err, errFlaky))
	assert.EqualValues(t, 1, flakyAttempts.Load())
	assert.False(t, singleton.Initialized[flakyProbe]())

	// Second failure, same shape: the slot must have stayed empty.
	_, err = singleton.Instance[flakyProbe]()
	require.Error(t, err)
	assert.EqualValues(t, 2, flakyAttempts.Load())

	// Heal the backend; the next call constructs from a fresh zero value.
	flakyHealed.Store(true)
	got, err := singleton.Instance[flakyProbe]()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, 3, flakyAttempts.Load())
	assert.EqualValues(t, 3, got.attempt)
	assert.True(t, singleton.Initialized[flakyProbe]())

	// Constructed: the hook must never run again.
	_, err = singleton.Instance[flakyProbe]()
	require.NoError(t, err)
	assert.EqualValues(t, 3, flakyAttempts.Load())
}

// Instance – failures are per caller, not shared

type contestedProbe struct{}

var contestedAttempts atomic.Int32

var errContested = errors.New("still failing")

func (p *contestedProbe) InitSingleton() error {
	contestedAttempts.Add(1)
	return errContested
}

func TestInstance_ConcurrentFailuresAreIndependent(t *testing.T) {
	t.Parallel()

	const n = 8

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)

	errs := make([]error, n)

	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = singleton.Instance[contestedProbe]()
		}()
	}

	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.Error(t, errs[i], "goroutine %d", i)
		assert.True(t, errors.Is(errs[i], errContested), "goroutine %d", i)
	}
	// Each caller ran its own attempt instead of inheriting another
	// caller's failure.
	assert.EqualValues(t, n, contestedAttempts.Load())
	assert.False(t, singleton.Initialized[contestedProbe]())
}

// Instance – panics in the hook

type panicProbe struct {
	calm bool
}

var panicArmed atomic.Bool

func (p *panicProbe) InitSingleton() error {
	if panicArmed.CompareAndSwap(true, false) {
		panic("construction exploded")
	}
	p.calm = true
	return nil
}

func TestInstance_PanicDoesNotPoisonTheSlot(t *testing.T) {
	t.Parallel()

	panicArmed.Store(true)
	require.PanicsWithValue(t, "construction exploded", func() {
		_, _ = singleton.Instance[panicProbe]()
	})
	assert.False(t, singleton.Initialized[panicProbe]())

	got, err := singleton.Instance[panicProbe]()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.calm)
}

// MustInstance

type mustProbe struct {
	label string
}

func (p *mustProbe) InitSingleton() error {
	p.label = "must"
	return nil
}

func TestMustInstance_ReturnsTheInstance(t *testing.T) {
	t.Parallel()

	got := singleton.MustInstance[mustProbe]()
	require.NotNil(t, got)
	assert.Equal(t, "must", got.label)
	assert.Same(t, got, singleton.MustInstance[mustProbe]())
}

// MustRejected is exported on purpose so the eligibility check fails.
type MustRejected struct{ Whatever int }

func TestMustInstance_PanicsOnIneligibleType(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		require.NotNil(t, r)

		err, ok := r.(error)
		require.True(t, ok)

		var cfg singleton.ConfigurationError
		require.True(t, errors.As(err, &cfg))
		assert.Contains(t, cfg.Type, "MustRejected")
	}()

	_ = singleton.MustInstance[MustRejected]()
}

// Initialized

type dormantProbe struct {
	touched bool
}

func (p *dormantProbe) InitSingleton() error {
	p.touched = true
	return nil
}

func TestInitialized_LifecycleTransitions(t *testing.T) {
	t.Parallel()

	assert.False(t, singleton.Initialized[dormantProbe]())

	got, err := singleton.Instance[dormantProbe]()
	require.NoError(t, err)
	assert.True(t, got.touched)
	assert.True(t, singleton.Initialized[dormantProbe]())
}

func TestInitialized_FalseForRejectedTypes(t *testing.T) {
	t.Parallel()

	_, err := singleton.Instance[int]()
	require.Error(t, err)
	assert.False(t, singleton.Initialized[int]())
}
