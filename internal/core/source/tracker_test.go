package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type mockLocator struct {
	mock.Mock
}

func (m *mockLocator) Locate(ctx context.Context, key string, searchPaths []string) (*Location, error) {
	args := m.Called(ctx, key, searchPaths)
	loc, _ := args.Get(0).(*Location)
	return loc, args.Error(1)
}

// countingLocator answers every key with a location in a fixed file
type countingLocator struct {
	calls atomic.Int64
	file  string
}

func (c *countingLocator) Locate(_ context.Context, key string, _ []string) (*Location, error) {
	c.calls.Add(1)
	return &Location{FilePath: c.file, LineNumber: len(key), Context: key}, nil
}

var paths = []string{"/home/u/.claude.json", "/work/app/.mcp.json"}

func TestTracker_TraceSource_CachesSuccessfulLookups(t *testing.T) {
	locator := new(mockLocator)
	loc := &Location{FilePath: "/work/app/.mcp.json", LineNumber: 3, Context: `"filesystem": {`}
	locator.On("Locate", mock.Anything, "mcpServers.filesystem", paths).Return(loc, nil).Once()

	tracker := NewTracker(locator)

	first, err := tracker.TraceSource(context.Background(), "mcpServers.filesystem", paths)
	require.NoError(t, err)
	second, err := tracker.TraceSource(context.Background(), "mcpServers.filesystem", paths)
	require.NoError(t, err)

	assert.Equal(t, *loc, *first)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, tracker.CacheSize())
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1, Entries: 1}, tracker.Stats())
	locator.AssertExpectations(t)
}

func TestTracker_TraceSource_ReturnsCopies(t *testing.T) {
	tracker := NewTracker(&countingLocator{file: "/a.json"})

	first, err := tracker.TraceSource(context.Background(), "settings.model", nil)
	require.NoError(t, err)
	first.FilePath = "/mutated"

	second, err := tracker.TraceSource(context.Background(), "settings.model", nil)
	require.NoError(t, err)
	assert.Equal(t, "/a.json", second.FilePath)
}

func TestTracker_TraceSource_NotFoundIsNotCached(t *testing.T) {
	locator := new(mockLocator)
	locator.On("Locate", mock.Anything, "agents.ghost", mock.Anything).Return(nil, nil).Twice()

	tracker := NewTracker(locator)

	for i := 0; i < 2; i++ {
		loc, err := tracker.TraceSource(context.Background(), "agents.ghost", paths)
		assert.NoError(t, err)
		assert.Nil(t, loc)
	}
	assert.Equal(t, 0, tracker.CacheSize())
	locator.AssertExpectations(t)
}

func TestTracker_TraceSource_LocatorFailure(t *testing.T) {
	cause := errors.New("permission denied")
	locator := new(mockLocator)
	locator.On("Locate", mock.Anything, "settings.model", mock.Anything).Return(nil, cause)

	tracker := NewTracker(locator)
	loc, err := tracker.TraceSource(context.Background(), "settings.model", paths)

	assert.Nil(t, loc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTraceFailed)
	assert.ErrorIs(t, err, cause)
	var traceErr *TraceError
	require.ErrorAs(t, err, &traceErr)
	assert.Equal(t, "settings.model", traceErr.Key)
	assert.Equal(t, 0, tracker.CacheSize())
}

func TestTracker_TraceSource_LocatorPanicBecomesTraceError(t *testing.T) {
	tracker := NewTracker(LocatorFunc(func(context.Context, string, []string) (*Location, error) {
		panic("boom")
	}))

	loc, err := tracker.TraceSource(context.Background(), "settings.model", nil)

	assert.Nil(t, loc)
	assert.ErrorIs(t, err, ErrTraceFailed)
	assert.Contains(t, err.Error(), "boom")
}

func TestTracker_TraceSource_RejectsInvalidKey(t *testing.T) {
	locator := new(mockLocator)
	tracker := NewTracker(locator)

	_, err := tracker.TraceSource(context.Background(), "", paths)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTraceFailed)
	locator.AssertNotCalled(t, "Locate", mock.Anything, mock.Anything, mock.Anything)
}

func TestTracker_SetTrackingEnabled_DisablesAndClears(t *testing.T) {
	locator := &countingLocator{file: "/a.json"}
	tracker := NewTracker(locator)

	_, err := tracker.TraceSource(context.Background(), "settings.model", nil)
	require.NoError(t, err)
	require.Equal(t, 1, tracker.CacheSize())

	tracker.SetTrackingEnabled(false)
	assert.False(t, tracker.IsTrackingEnabled())
	assert.Equal(t, 0, tracker.CacheSize())

	loc, err := tracker.TraceSource(context.Background(), "settings.model", nil)
	assert.NoError(t, err)
	assert.Nil(t, loc)
	assert.Equal(t, int64(1), locator.calls.Load())

	tracker.SetTrackingEnabled(true)
	loc, err = tracker.TraceSource(context.Background(), "settings.model", nil)
	require.NoError(t, err)
	assert.NotNil(t, loc)
	assert.Equal(t, int64(2), locator.calls.Load())
}

func TestTracker_SetTrackingEnabled_InFlightResultNotStored(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	tracker := NewTracker(LocatorFunc(func(context.Context, string, []string) (*Location, error) {
		close(started)
		<-release
		return &Location{FilePath: "/a.json", LineNumber: 1}, nil
	}))

	done := make(chan *Location)
	go func() {
		loc, _ := tracker.TraceSource(context.Background(), "settings.model", nil)
		done <- loc
	}()

	<-started
	tracker.SetTrackingEnabled(false)
	close(release)

	loc := <-done
	assert.NotNil(t, loc, "the caller still receives the answer")
	assert.Equal(t, 0, tracker.CacheSize())
}

func TestTracker_WithEnabledFalse_NeverCallsLocator(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		locator := &countingLocator{file: "/a.json"}
		tracker := NewTracker(locator, WithEnabled(false))

		keys := rapid.SliceOf(rapid.OneOf(
			rapid.StringMatching(`[a-z]{1,8}(\.[a-z]{1,8}){0,2}`),
			rapid.String(),
			rapid.SampledFrom([]string{"", "a..b", "mcpServers.", ".x"}),
		)).Draw(t, "keys")
		for _, key := range keys {
			loc, err := tracker.TraceSource(context.Background(), key, nil)
			assert.NoError(t, err)
			assert.Nil(t, loc)
		}
		assert.Equal(t, int64(0), locator.calls.Load())
	})
}

func TestTracker_Invalidate(t *testing.T) {
	locator := &countingLocator{file: "/a.json"}
	tracker := NewTracker(locator)
	ctx := context.Background()

	_, _ = tracker.TraceSource(ctx, "settings.model", []string{"/p1"})
	_, _ = tracker.TraceSource(ctx, "settings.model", []string{"/p2"})
	_, _ = tracker.TraceSource(ctx, "settings.theme", []string{"/p1"})
	require.Equal(t, 3, tracker.CacheSize())

	assert.Equal(t, 2, tracker.Invalidate("settings.model"))
	assert.Equal(t, 1, tracker.CacheSize())
	_, ok := tracker.Peek("settings.theme", []string{"/p1"})
	assert.True(t, ok)

	_, _ = tracker.TraceSource(ctx, "settings.model", []string{"/p1"})
	assert.Equal(t, int64(4), locator.calls.Load())
}

func TestTracker_InvalidatePath(t *testing.T) {
	files := map[string]string{"settings.model": "/a.json", "settings.theme": "/b.json", "agents.x": "/a.json"}
	tracker := NewTracker(LocatorFunc(func(_ context.Context, key string, _ []string) (*Location, error) {
		return &Location{FilePath: files[key], LineNumber: 1}, nil
	}))
	for key := range files {
		_, err := tracker.TraceSource(context.Background(), key, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, tracker.InvalidatePath("/a.json"))
	assert.Equal(t, 1, tracker.CacheSize())
	assert.Equal(t, 0, tracker.InvalidatePath("/missing.json"))
}

func TestTracker_InvalidatePath_DropsEntriesThatSearchedPath(t *testing.T) {
	user, project := "/home/u/.claude.json", "/p/.mcp.json"
	search := []string{project, user}
	answer := user
	tracker := NewTracker(LocatorFunc(func(_ context.Context, _ string, _ []string) (*Location, error) {
		return &Location{FilePath: answer, LineNumber: 2}, nil
	}))
	ctx := context.Background()

	loc, err := tracker.TraceSource(ctx, "mcpServers.github", search)
	require.NoError(t, err)
	require.Equal(t, user, loc.FilePath)
	_, err = tracker.TraceSource(ctx, "mcpServers.other", []string{user})
	require.NoError(t, err)

	// The project file now defines the key and ranks ahead of the user file
	answer = project
	assert.Equal(t, 1, tracker.InvalidatePath(project))
	assert.Equal(t, 1, tracker.CacheSize())

	loc, err = tracker.TraceSource(ctx, "mcpServers.github", search)
	require.NoError(t, err)
	assert.Equal(t, project, loc.FilePath)
}

func TestTracker_WithTTL_NonPositiveKeepsDefault(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		tracker := NewTracker(&countingLocator{file: "/a.json"}, WithTTL(ttl))
		assert.Equal(t, DefaultTTL, tracker.TTL())
	}
}

func TestTracker_Reconfigure(t *testing.T) {
	tracker := NewTracker(&countingLocator{file: "/a.json"}, WithTTL(time.Minute), WithMaxEntries(4))
	for i := 0; i < 4; i++ {
		_, err := tracker.TraceSource(context.Background(), fmt.Sprintf("settings.k%d", i), nil)
		require.NoError(t, err)
	}
	require.Equal(t, 4, tracker.CacheSize())

	assert.False(t, tracker.Reconfigure(2*time.Minute, 4))
	assert.Equal(t, 4, tracker.CacheSize())

	require.True(t, tracker.Reconfigure(time.Minute, 2))
	assert.Equal(t, 0, tracker.CacheSize())
	for i := 0; i < 4; i++ {
		_, err := tracker.TraceSource(context.Background(), fmt.Sprintf("settings.k%d", i), nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, tracker.CacheSize())
}

func TestTracker_ClearCache(t *testing.T) {
	tracker := NewTracker(&countingLocator{file: "/a.json"})
	for i := 0; i < 5; i++ {
		_, _ = tracker.TraceSource(context.Background(), fmt.Sprintf("settings.k%d", i), nil)
	}
	require.Equal(t, 5, tracker.CacheSize())

	tracker.ClearCache()

	assert.Equal(t, 0, tracker.CacheSize())
	assert.True(t, tracker.IsTrackingEnabled())
}

func TestTracker_EntriesExpireAfterTTL(t *testing.T) {
	locator := &countingLocator{file: "/a.json"}
	tracker := NewTracker(locator, WithTTL(50*time.Millisecond))

	_, err := tracker.TraceSource(context.Background(), "settings.model", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := tracker.Peek("settings.model", nil)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	_, err = tracker.TraceSource(context.Background(), "settings.model", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), locator.calls.Load())
}

func TestTracker_BoundedByMaxEntries(t *testing.T) {
	tracker := NewTracker(&countingLocator{file: "/a.json"}, WithMaxEntries(3))

	for i := 0; i < 10; i++ {
		_, err := tracker.TraceSource(context.Background(), fmt.Sprintf("settings.k%d", i), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, tracker.CacheSize())
	_, ok := tracker.Peek("settings.k9", nil)
	assert.True(t, ok)
	_, ok = tracker.Peek("settings.k0", nil)
	assert.False(t, ok)
}

func TestTracker_ConcurrentLookups(t *testing.T) {
	locator := &countingLocator{file: "/a.json"}
	tracker := NewTracker(locator)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("settings.k%d", i%5)
			loc, err := tracker.TraceSource(context.Background(), key, nil)
			assert.NoError(t, err)
			assert.Equal(t, key, loc.Context)
			if i%10 == 0 {
				tracker.Invalidate(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, tracker.CacheSize(), 5)
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "/a.json", Location{FilePath: "/a.json"}.String())
	assert.Equal(t, "/a.json:4", Location{FilePath: "/a.json", LineNumber: 4}.String())
	assert.Equal(t, "/a.json:4:2", Location{FilePath: "/a.json", LineNumber: 4, ColumnNumber: 2}.String())
}
