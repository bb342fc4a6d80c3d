package directory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/clientdata"
	"github.com/aristath/fundnav/internal/domain"
	testingpkg "github.com/aristath/fundnav/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	calls int32
	funds []domain.FundInfo
	err   error
}

func (f *fakeUpstream) FetchDirectory(_ context.Context) ([]domain.FundInfo, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.funds, f.err
}

var sampleFunds = []domain.FundInfo{
	{Code: "000001", Name: "华夏成长混合", Type: "混合型-灵活", Pinyin: "HXCZHH"},
	{Code: "161725", Name: "招商中证白酒指数(LOF)A", Type: "指数型-股票", Pinyin: "ZSZZBJZSLOFA"},
	{Code: "012414", Name: "招商中证白酒指数(LOF)C", Type: "指数型-股票", Pinyin: "ZSZZBJZSLOFC"},
}

func TestSearch(t *testing.T) {
	upstream := &fakeUpstream{funds: sampleFunds}
	s := NewService(upstream, nil, cache.NewStore(), time.Second, zerolog.Nop())

	tests := []struct {
		key      string
		expected []string
	}{
		{"白酒", []string{"161725", "012414"}},
		{"zszzbj", []string{"161725", "012414"}},
		{"0000", []string{"000001"}},
		{"  hxcz ", []string{"000001"}},
		{"不存在", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			results, err := s.Search(context.Background(), tt.key)
			require.NoError(t, err)
			codes := []string{}
			for _, f := range results {
				codes = append(codes, f.Code)
			}
			assert.Equal(t, tt.expected, codes)
		})
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&upstream.calls))
}

func TestSearch_CapsResults(t *testing.T) {
	funds := make([]domain.FundInfo, 100)
	for i := range funds {
		funds[i] = domain.FundInfo{Code: fmt.Sprintf("%06d", i), Name: "债券基金"}
	}
	s := NewService(&fakeUpstream{funds: funds}, nil, cache.NewStore(), time.Second, zerolog.Nop())

	results, err := s.Search(context.Background(), "债券")
	require.NoError(t, err)
	assert.Len(t, results, MaxResults)
}

func TestSearch_UpstreamDown(t *testing.T) {
	s := NewService(&fakeUpstream{err: errors.New("down")}, nil, cache.NewStore(), time.Second, zerolog.Nop())

	_, err := s.Search(context.Background(), "白酒")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestSearch_StaleFallback(t *testing.T) {
	repo := testingpkg.NewClientDataRepo(t)
	require.NoError(t, repo.Store(clientdata.TableFundDirectory, catalogKey, sampleFunds, -time.Hour))

	s := NewService(&fakeUpstream{err: errors.New("down")}, repo, cache.NewStore(), time.Second, zerolog.Nop())
	results, err := s.Search(context.Background(), "白酒")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestName(t *testing.T) {
	upstream := &fakeUpstream{funds: sampleFunds}
	s := NewService(upstream, nil, cache.NewStore(), time.Second, zerolog.Nop())

	// Cold cache: no download on the lookup path
	_, ok := s.Name(context.Background(), "161725")
	assert.False(t, ok)
	assert.Zero(t, atomic.LoadInt32(&upstream.calls))

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	name, ok := s.Name(context.Background(), "161725")
	assert.True(t, ok)
	assert.Equal(t, "招商中证白酒指数(LOF)A", name)

	_, ok = s.Name(context.Background(), "999999")
	assert.False(t, ok)
}

// blockingUpstream hangs until released or its context ends
type blockingUpstream struct {
	calls   int32
	started chan struct{}
	release chan struct{}
}

func newBlockingUpstream() *blockingUpstream {
	return &blockingUpstream{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (u *blockingUpstream) FetchDirectory(ctx context.Context) ([]domain.FundInfo, error) {
	atomic.AddInt32(&u.calls, 1)
	select {
	case u.started <- struct{}{}:
	default:
	}
	select {
	case <-u.release:
		return sampleFunds, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestName_HangingUpstreamIsNeverCalled(t *testing.T) {
	upstream := newBlockingUpstream()
	s := NewService(upstream, nil, cache.NewStore(), 10*time.Second, zerolog.Nop())

	start := time.Now()
	_, ok := s.Name(context.Background(), "161725")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&upstream.calls))
}

func TestName_ReadsStaleDirectoryFromDisk(t *testing.T) {
	repo := testingpkg.NewClientDataRepo(t)
	require.NoError(t, repo.Store(clientdata.TableFundDirectory, catalogKey, sampleFunds, -time.Hour))

	upstream := &fakeUpstream{err: errors.New("down")}
	s := NewService(upstream, repo, cache.NewStore(), time.Second, zerolog.Nop())

	name, ok := s.Name(context.Background(), "000001")
	assert.True(t, ok)
	assert.Equal(t, "华夏成长混合", name)
	assert.Zero(t, atomic.LoadInt32(&upstream.calls))
}

func TestSearch_StaleFallbackIsKeptInMemory(t *testing.T) {
	repo := testingpkg.NewClientDataRepo(t)
	require.NoError(t, repo.Store(clientdata.TableFundDirectory, catalogKey, sampleFunds, -time.Hour))

	upstream := &fakeUpstream{err: errors.New("down")}
	s := NewService(upstream, repo, cache.NewStore(), time.Second, zerolog.Nop())

	for i := 0; i < 3; i++ {
		results, err := s.Search(context.Background(), "白酒")
		require.NoError(t, err)
		assert.Len(t, results, 2)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&upstream.calls))
}

func TestSearch_CancelledCallerDoesNotFailOthers(t *testing.T) {
	upstream := newBlockingUpstream()
	s := NewService(upstream, nil, cache.NewStore(), 5*time.Second, zerolog.Nop())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Search(firstCtx, "白酒")
		firstErr <- err
	}()
	<-upstream.started

	type result struct {
		funds []domain.FundInfo
		err   error
	}
	second := make(chan result, 1)
	go func() {
		funds, err := s.Search(context.Background(), "白酒")
		second <- result{funds, err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, domain.ErrProviderUnavailable)

	close(upstream.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.funds, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&upstream.calls))
}

func TestRefreshJob(t *testing.T) {
	repo := testingpkg.NewClientDataRepo(t)
	upstream := &fakeUpstream{funds: sampleFunds}
	s := NewService(upstream, repo, cache.NewStore(), time.Second, zerolog.Nop())
	job := NewRefreshJob(s, zerolog.Nop())

	assert.Equal(t, "directory_refresh", job.Name())
	require.NoError(t, job.Run())

	var persisted []domain.FundInfo
	found, err := repo.GetIfFresh(clientdata.TableFundDirectory, catalogKey, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, persisted, 3)

	upstream.err = errors.New("down")
	assert.Error(t, job.Run())
}
