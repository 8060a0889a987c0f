package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackfiller struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *stubBackfiller) Backfill(ctx context.Context) (int, int, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	return 10, 2, s.err
}

func TestBackfillJob_Run(t *testing.T) {
	stub := &stubBackfiller{}
	job := NewBackfillJob(stub)
	assert.True(t, job.LastRun().IsZero())

	require.NoError(t, job.Run(context.Background()))
	assert.EqualValues(t, 1, stub.calls.Load())
	assert.False(t, job.LastRun().IsZero())

	stub.err = errors.New("boom")
	assert.Error(t, job.Run(context.Background()))
}

func TestBackfillJob_SkipsOverlappingRuns(t *testing.T) {
	stub := &stubBackfiller{release: make(chan struct{})}
	job := NewBackfillJob(stub)

	first := make(chan error)
	go func() { first <- job.Run(context.Background()) }()
	require.Eventually(t, func() bool { return stub.calls.Load() == 1 }, time.Second, time.Millisecond)

	assert.NoError(t, job.Run(context.Background()))
	assert.EqualValues(t, 1, stub.calls.Load())

	close(stub.release)
	assert.NoError(t, <-first)
}

func TestInitializeJobs_DisabledByDefault(t *testing.T) {
	assert.Nil(t, InitializeJobs(context.Background(), &stubBackfiller{}, 0))
}

func TestInitializeJobs_RunsOnSchedule(t *testing.T) {
	stub := &stubBackfiller{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := InitializeJobs(ctx, stub, 5*time.Millisecond)
	require.NotNil(t, job)
	assert.Eventually(t, func() bool { return stub.calls.Load() >= 2 }, time.Second, time.Millisecond)
}
