package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestSnapshotCachesWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var loads atomic.Int32

	s := NewSnapshot(time.Hour, func(ctx context.Context) (int, error) {
		return int(loads.Add(1)), nil
	})
	s.now = clock.Now

	v, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(59 * time.Minute)
	v, err = s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v, "value within TTL must come from the snapshot")

	clock.Advance(time.Minute)
	v, err = s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v, "expired snapshot must reload")
}

func TestSnapshotInvalidate(t *testing.T) {
	var loads atomic.Int32
	s := NewSnapshot(time.Hour, func(ctx context.Context) (int, error) {
		return int(loads.Add(1)), nil
	})

	_, err := s.Get(context.Background())
	require.NoError(t, err)
	_, ok := s.Age()
	assert.True(t, ok)

	s.Invalidate()
	_, ok = s.Age()
	assert.False(t, ok)

	v, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSnapshotInvalidateDuringLoadDiscardsResult(t *testing.T) {
	var loads atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	s := NewSnapshot(time.Hour, func(ctx context.Context) (int, error) {
		n := int(loads.Add(1))
		if n == 1 {
			close(started)
			<-release
		}
		return n, nil
	})

	done := make(chan int)
	go func() {
		v, err := s.Get(context.Background())
		assert.NoError(t, err)
		done <- v
	}()

	<-started
	s.Invalidate()
	close(release)
	assert.Equal(t, 1, <-done, "the caller still gets the value it loaded")

	_, ok := s.Age()
	assert.False(t, ok, "a load that raced Invalidate must not be cached")

	v, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSnapshotFailedRefreshKeepsPreviousValue(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	fail := false
	s := NewSnapshot(time.Minute, func(ctx context.Context) ([]string, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []string{"a", "b"}, nil
	})
	s.now = clock.Now

	_, err := s.Get(context.Background())
	require.NoError(t, err)

	fail = true
	clock.Advance(2 * time.Minute)
	_, err = s.Get(context.Background())
	require.Error(t, err)

	cur := s.current.Load()
	require.NotNil(t, cur)
	assert.Equal(t, []string{"a", "b"}, cur.value)
}

func TestMemoryClient(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(0, 0)}
	m := NewMemoryClient()
	m.now = clock.Now

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, m.Set(ctx, "forever", "v", 0))

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	clock.Advance(time.Minute)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok, "entry must expire after its TTL")
	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)

	require.NoError(t, m.Clear(ctx))
	_, ok, _ = m.Get(ctx, "forever")
	assert.False(t, ok)
}
