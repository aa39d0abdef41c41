package pagination

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

// seqFetcher serves canned pages in order and counts calls.
type seqFetcher struct {
	mu    sync.Mutex
	pages []Page[int]
	calls []int
	err   error
}

func (f *seqFetcher) fetch(_ context.Context, page int, _ string) (Page[int], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	if f.err != nil {
		return Page[int]{}, f.err
	}
	if page-1 >= len(f.pages) {
		return Page[int]{}, nil
	}
	return f.pages[page-1], nil
}

func (f *seqFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func ints(from, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from + i
	}
	return out
}

func TestLoadNext_SlidingWindowKeepsNewest(t *testing.T) {
	f := &seqFetcher{}
	for p := 0; p < 6; p++ {
		f.pages = append(f.pages, Page[int]{Items: ints(p*10, 10), HasNext: true})
	}
	c := New[int, string](f.fetch, "", Options{Policy: ByNextPointer})

	for i := 0; i < 6; i++ {
		ok, err := c.LoadNext(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}

	items := c.Items()
	require.Len(t, items, MaxItems)
	assert.Equal(t, 10, items[0])
	assert.Equal(t, 59, items[len(items)-1])
	assert.Equal(t, 7, c.Page())
}

func TestLoadNext_ConcurrentCallsIssueOneRequest(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context, page int, _ string) (Page[int], error) {
		calls.Add(1)
		<-release
		return Page[int]{Items: []int{1}, HasNext: true}, nil
	}
	c := New[int, string](fetch, "", Options{})

	var wg sync.WaitGroup
	results := make(chan bool, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		ok, _ := c.LoadNext(context.Background())
		results <- ok
	}()
	require.Eventually(t, c.Loading, time.Second, time.Millisecond)

	ok, err := c.LoadNext(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	close(release)
	wg.Wait()
	assert.True(t, <-results)
	assert.EqualValues(t, 1, calls.Load())
	assert.False(t, c.Loading())
}

func TestLoadNext_ExhaustionByNextPointer(t *testing.T) {
	f := &seqFetcher{pages: []Page[int]{
		{Items: ints(0, 3), HasNext: true},
		{Items: ints(3, 2), HasNext: false},
	}}
	c := New[int, string](f.fetch, "", Options{Policy: ByNextPointer})

	for i := 0; i < 2; i++ {
		_, err := c.LoadNext(context.Background())
		require.NoError(t, err)
	}
	assert.True(t, c.Exhausted())

	ok, err := c.LoadNext(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, f.callCount())

	ok, err = c.ResetAndReload(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, c.Exhausted())
	assert.Equal(t, 3, f.callCount())
	assert.Equal(t, []int{0, 1, 2}, c.Items())
}

func TestLoadNext_ExhaustionByEmptyPage(t *testing.T) {
	f := &seqFetcher{pages: []Page[int]{
		{Items: ints(0, 10)},
		{Items: ints(10, 10)},
		{},
	}}
	c := New[int, string](f.fetch, "", Options{Policy: ByEmptyPage})

	for i := 0; i < 3; i++ {
		ok, err := c.LoadNext(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Len(t, c.Items(), 20)
	assert.True(t, c.Exhausted())

	ok, err := c.LoadNext(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int{1, 2, 3}, f.calls)
}

func TestLoadNext_EmptyPagePolicyIgnoresHasNext(t *testing.T) {
	f := &seqFetcher{pages: []Page[int]{{Items: ints(0, 1), HasNext: false}}}
	c := New[int, string](f.fetch, "", Options{Policy: ByEmptyPage})

	_, err := c.LoadNext(context.Background())
	require.NoError(t, err)
	assert.False(t, c.Exhausted())
}

func TestLoadNext_FailureRetriesSamePage(t *testing.T) {
	boom := errors.New("boom")
	f := &seqFetcher{pages: []Page[int]{{Items: ints(0, 2), HasNext: true}}}
	c := New[int, string](f.fetch, "", Options{})

	_, err := c.LoadNext(context.Background())
	require.NoError(t, err)

	f.mu.Lock()
	f.err = boom
	f.mu.Unlock()
	ok, err := c.LoadNext(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, ok)
	assert.Equal(t, []int{0, 1}, c.Items())
	assert.False(t, c.Loading())
	assert.False(t, c.Exhausted())
	assert.Equal(t, 2, c.Page())

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	_, err = c.LoadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2}, f.calls)
}

func TestResetAndReload_WaitsForRunningLoad(t *testing.T) {
	release := make(chan struct{})
	var n, outstanding, maxOutstanding atomic.Int32
	var pages []int
	var mu sync.Mutex
	fetch := func(ctx context.Context, page int, q string) (Page[string], error) {
		cur := outstanding.Add(1)
		defer outstanding.Add(-1)
		for {
			m := maxOutstanding.Load()
			if cur <= m || maxOutstanding.CompareAndSwap(m, cur) {
				break
			}
		}
		mu.Lock()
		pages = append(pages, page)
		mu.Unlock()
		if n.Add(1) == 1 {
			<-release
			return Page[string]{Items: []string{"stale-" + q}, HasNext: true}, nil
		}
		return Page[string]{Items: []string{"fresh-" + q}, HasNext: true}, nil
	}
	c := New[string, string](fetch, "old", Options{})

	done := make(chan bool)
	go func() {
		ok, _ := c.LoadNext(context.Background())
		done <- ok
	}()
	require.Eventually(t, c.Loading, time.Second, time.Millisecond)

	c.SetQuery("new")
	ok, err := c.ResetAndReload(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, c.Loading())
	assert.Empty(t, c.Items())
	assert.EqualValues(t, 1, n.Load())

	close(release)
	assert.True(t, <-done)
	assert.EqualValues(t, 1, maxOutstanding.Load())
	assert.Equal(t, []int{1, 1}, pages)
	assert.Equal(t, []string{"fresh-new"}, c.Items())
	assert.Equal(t, 2, c.Page())
	assert.False(t, c.Loading())
}

func TestResetAndReload_RunningLoadFailureStillReloads(t *testing.T) {
	release := make(chan struct{})
	var n atomic.Int32
	fetch := func(ctx context.Context, page int, _ string) (Page[int], error) {
		if n.Add(1) == 1 {
			<-release
			return Page[int]{}, errors.New("boom")
		}
		return Page[int]{Items: []int{page}, HasNext: false}, nil
	}
	c := New[int, string](fetch, "", Options{})

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result)
	go func() {
		ok, err := c.LoadNext(context.Background())
		done <- result{ok, err}
	}()
	require.Eventually(t, c.Loading, time.Second, time.Millisecond)

	ok, err := c.ResetAndReload(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	close(release)
	r := <-done
	require.NoError(t, r.err)
	assert.True(t, r.ok)
	assert.Equal(t, []int{1}, c.Items())
	assert.True(t, c.Exhausted())
}

func TestClose_CancelsPendingReload(t *testing.T) {
	release := make(chan struct{})
	var n atomic.Int32
	fetch := func(ctx context.Context, page int, _ string) (Page[int], error) {
		n.Add(1)
		<-release
		return Page[int]{Items: []int{1}, HasNext: true}, nil
	}
	c := New[int, string](fetch, "", Options{})

	done := make(chan bool)
	go func() {
		ok, _ := c.LoadNext(context.Background())
		done <- ok
	}()
	require.Eventually(t, c.Loading, time.Second, time.Millisecond)

	_, err := c.ResetAndReload(context.Background())
	require.NoError(t, err)
	c.Close()
	close(release)

	assert.False(t, <-done)
	assert.EqualValues(t, 1, n.Load())
	assert.Empty(t, c.Items())
}

func TestClose_DiscardsInFlightAndBlocksLoads(t *testing.T) {
	release := make(chan struct{})
	fetch := func(ctx context.Context, page int, _ string) (Page[int], error) {
		<-release
		return Page[int]{Items: []int{1}, HasNext: true}, nil
	}
	c := New[int, string](fetch, "", Options{})

	done := make(chan bool)
	go func() {
		ok, _ := c.LoadNext(context.Background())
		done <- ok
	}()
	require.Eventually(t, c.Loading, time.Second, time.Millisecond)
	c.Close()
	close(release)

	assert.False(t, <-done)
	assert.Empty(t, c.Items())

	ok, err := c.ResetAndReload(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetQuery_DoesNotFetch(t *testing.T) {
	f := &seqFetcher{}
	c := New[int, string](f.fetch, "a", Options{})
	c.SetQuery("b")
	assert.Equal(t, "b", c.Query())
	assert.Equal(t, 0, f.callCount())
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "next-pointer", ByNextPointer.String())
	assert.Equal(t, "empty-page", ByEmptyPage.String())
}
