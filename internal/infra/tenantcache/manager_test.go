package tenantcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type built struct {
	key, tenant string
	seq         int64
}

// counter cuenta builds por key.
type counter struct {
	mu    sync.Mutex
	per   map[string]int
	total atomic.Int64
	delay time.Duration
	fail  atomic.Bool
}

func newCounter() *counter { return &counter{per: map[string]int{}} }

func (c *counter) build(_ context.Context, tenantID, key string) (*built, error) {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.fail.Load() {
		return nil, errors.New("resolver down")
	}
	c.mu.Lock()
	c.per[key]++
	c.mu.Unlock()
	return &built{key: key, tenant: tenantID, seq: c.total.Add(1)}, nil
}

func (c *counter) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.per[key]
}

func newManager(t *testing.T, ttl time.Duration, maxEntries int, clock *fakeClock, c *counter) *Manager[*built] {
	t.Helper()
	m, err := New[*built](Options{TTL: ttl, MaxEntries: maxEntries, Now: clock.Now, Logger: zap.NewNop()}, c.build)
	require.NoError(t, err)
	return m
}

func TestNew_InvalidOptions(t *testing.T) {
	c := newCounter()
	_, err := New[*built](Options{TTL: 0, MaxEntries: 1}, c.build)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
	_, err = New[*built](Options{TTL: time.Second, MaxEntries: 0}, c.build)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
	_, err = New[*built](Options{TTL: time.Second, MaxEntries: 1}, nil)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}

func TestResolve_ReusesLiveEntry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newCounter()
	m := newManager(t, time.Minute, 10, clock, c)
	ctx := context.Background()

	a, err := m.Resolve(ctx, "sub1", "tenant-1")
	require.NoError(t, err)
	b, err := m.Resolve(ctx, "sub1", "tenant-1")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, c.count("sub1"))
	assert.Equal(t, "tenant-1", a.tenant)

	st := m.Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(1), st.Builds)
	assert.Equal(t, 10, st.MaxSize)
}

func TestResolve_ConcurrentFirstAccessBuildsOnce(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newCounter()
	c.delay = 50 * time.Millisecond
	m := newManager(t, time.Minute, 10, clock, c)

	const n = 64
	results := make([]*built, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			v, err := m.Resolve(context.Background(), "sub1", "tenant-1")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, c.count("sub1"))
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestResolve_DistinctKeysDoNotBlockEachOther(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newCounter()
	c.delay = 150 * time.Millisecond
	m := newManager(t, time.Minute, 10, clock, c)

	begin := time.Now()
	var wg sync.WaitGroup
	for _, k := range []string{"a", "b"} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_, err := m.Resolve(context.Background(), k, "")
			assert.NoError(t, err)
		}(k)
	}
	wg.Wait()
	elapsed := time.Since(begin)

	assert.Equal(t, 1, c.count("a"))
	assert.Equal(t, 1, c.count("b"))
	assert.Less(t, elapsed, 280*time.Millisecond, "builds for different keys ran serially")
}

func TestResolve_RebuildsAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newCounter()
	m := newManager(t, 10*time.Second, 10, clock, c)
	ctx := context.Background()

	first, err := m.Resolve(ctx, "sub1", "t")
	require.NoError(t, err)

	clock.Advance(9 * time.Second)
	again, err := m.Resolve(ctx, "sub1", "t")
	require.NoError(t, err)
	assert.Same(t, first, again)

	clock.Advance(1*time.Second + time.Millisecond)
	fresh, err := m.Resolve(ctx, "sub1", "t")
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, 2, c.count("sub1"))
}

func TestResolve_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newCounter()
	m := newManager(t, time.Hour, 3, clock, c)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_, err := m.Resolve(ctx, k, "")
		require.NoError(t, err)
	}
	// "a" pasa a ser la más reciente; "b" queda como LRU
	_, err := m.Resolve(ctx, "a", "")
	require.NoError(t, err)

	_, err = m.Resolve(ctx, "d", "")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, int64(1), m.Stats().Evictions)

	_, err = m.Resolve(ctx, "a", "")
	require.NoError(t, err)
	assert.Equal(t, 1, c.count("a"))

	_, err = m.Resolve(ctx, "b", "")
	require.NoError(t, err)
	assert.Equal(t, 2, c.count("b"), "evicted entry must be rebuilt")
}

func TestResolve_FailureIsSharedAndNotCached(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newCounter()
	c.delay = 30 * time.Millisecond
	c.fail.Store(true)
	m := newManager(t, time.Minute, 10, clock, c)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Resolve(context.Background(), "sub1", "t")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.EqualError(t, err, "resolver down")
	}
	assert.Equal(t, 0, m.Len())
	assert.GreaterOrEqual(t, m.Stats().BuildFailures, int64(1))

	c.fail.Store(false)
	v, err := m.Resolve(context.Background(), "sub1", "t")
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Equal(t, 1, m.Len())
}

func TestResolve_EmptyKeyIsOneBucket(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newCounter()
	m := newManager(t, time.Minute, 2, clock, c)

	for i := 0; i < 10; i++ {
		_, err := m.Resolve(context.Background(), "", fmt.Sprintf("tenant-%d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.count(""))
	assert.Equal(t, 1, m.Len())
}
