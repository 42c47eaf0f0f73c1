package pool_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/pool"
	"go.uber.org/mock/gomock"
)

// jobFinishing returns a job whose Wait blocks until release is closed.
func jobFinishing(ctrl *gomock.Controller, release <-chan struct{}, err error) *mocks.MockJob {
	job := mocks.NewMockJob(ctrl)
	job.EXPECT().Wait().DoAndReturn(func() error {
		<-release
		return err
	})
	return job
}

func finished() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestPool_BatchBarrier(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		spawner := mocks.NewMockSpawner(ctrl)
		ctx := context.Background()

		release := make(chan struct{})
		spawner.EXPECT().Spawn(gomock.Any(), domain.Command{"cc", "-o", "a", "a.c"}, gomock.Any()).
			Return(jobFinishing(ctrl, release, nil), nil)
		spawner.EXPECT().Spawn(gomock.Any(), domain.Command{"cc", "-o", "b", "b.c"}, gomock.Any()).
			Return(jobFinishing(ctrl, release, nil), nil)

		p := pool.New(spawner, 2, domain.SchedulingBatch)

		require.NoError(t, p.Barrier(ctx))
		require.NoError(t, p.Dispatch(ctx, 1, domain.Command{"cc", "-o", "a", "a.c"}, nil))
		require.NoError(t, p.Barrier(ctx), "one job does not fill a pool of two")
		require.NoError(t, p.Dispatch(ctx, 2, domain.Command{"cc", "-o", "b", "b.c"}, nil))
		assert.Equal(t, 2, p.Len())

		done := make(chan error)
		go func() { done <- p.Barrier(ctx) }()

		synctest.Wait()
		select {
		case <-done:
			t.Fatal("barrier returned before the batch finished")
		default:
		}

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, 0, p.Len())
	})
}

func TestPool_WaitAll_AccumulatesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	spawner := mocks.NewMockSpawner(ctrl)
	ctx := context.Background()

	errA := errors.New("a failed")
	errC := errors.New("c failed")
	spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).Return(jobFinishing(ctrl, finished(), errA), nil)
	spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).Return(jobFinishing(ctrl, finished(), nil), nil)
	spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).Return(jobFinishing(ctrl, finished(), errC), nil)

	p := pool.New(spawner, 8, domain.SchedulingBatch)
	for id := range domain.StepID(3) {
		require.NoError(t, p.Dispatch(ctx, id, domain.Command{"true"}, nil))
	}

	err := p.WaitAll(ctx)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errC)
	assert.Equal(t, 0, p.Len(), "pool is cleared even when jobs fail")

	require.NoError(t, p.WaitAll(ctx))
}

func TestPool_Join(t *testing.T) {
	ctrl := gomock.NewController(t)
	spawner := mocks.NewMockSpawner(ctrl)
	ctx := context.Background()

	failure := errors.New("link failed")
	spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).Return(jobFinishing(ctrl, finished(), nil), nil)
	spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).Return(jobFinishing(ctrl, finished(), failure), nil)

	p := pool.New(spawner, 4, domain.SchedulingBatch)
	require.NoError(t, p.Dispatch(ctx, 10, domain.Command{"true"}, nil))
	require.NoError(t, p.Dispatch(ctx, 20, domain.Command{"false"}, nil))

	require.NoError(t, p.Join(ctx, 10))
	require.NoError(t, p.Join(ctx, 99), "steps without jobs join trivially")
	require.ErrorIs(t, p.Join(ctx, 10, 20), failure)

	// Results survive a drain until the pool is reset.
	_ = p.WaitAll(ctx)
	require.ErrorIs(t, p.Join(ctx, 20), failure)

	require.NoError(t, p.Reset(ctx))
	require.NoError(t, p.Join(ctx, 20))
}

func TestPool_Join_Cancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		spawner := mocks.NewMockSpawner(ctrl)

		release := make(chan struct{})
		spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).Return(jobFinishing(ctrl, release, nil), nil)

		p := pool.New(spawner, 1, domain.SchedulingBatch)
		require.NoError(t, p.Dispatch(context.Background(), 1, domain.Command{"sleep", "1"}, nil))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, p.Join(ctx, 1), context.Canceled)

		close(release)
		require.NoError(t, p.Join(context.Background(), 1))
	})
}

func TestPool_Dispatch_SpawnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	spawner := mocks.NewMockSpawner(ctrl)

	spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrSpawn)

	p := pool.New(spawner, 2, domain.SchedulingBatch)
	err := p.Dispatch(context.Background(), 1, domain.Command{"missing"}, nil)

	require.ErrorIs(t, err, domain.ErrSpawn)
	assert.Equal(t, 0, p.Len())
}

func TestPool_Dispatch_CompletesVertex(t *testing.T) {
	ctrl := gomock.NewController(t)
	spawner := mocks.NewMockSpawner(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	failure := errors.New("exit 1")

	vertex.EXPECT().Stdout().Return(nil)
	vertex.EXPECT().Stderr().Return(nil)
	vertex.EXPECT().Complete(failure)
	spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).Return(jobFinishing(ctrl, finished(), failure), nil)

	p := pool.New(spawner, 2, domain.SchedulingBatch)
	require.NoError(t, p.Dispatch(context.Background(), 1, domain.Command{"false"}, vertex))

	require.ErrorIs(t, p.WaitAll(context.Background()), failure)
}

func TestPool_Window(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		spawner := mocks.NewMockSpawner(ctrl)
		ctx := context.Background()

		release := make(chan struct{})
		var spawned atomic.Int32
		spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Command, ports.SpawnOptions) (ports.Job, error) {
				spawned.Add(1)
				return jobFinishing(ctrl, release, nil), nil
			})
		spawner.EXPECT().Spawn(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Command, ports.SpawnOptions) (ports.Job, error) {
				spawned.Add(1)
				return jobFinishing(ctrl, finished(), nil), nil
			})

		p := pool.New(spawner, 1, domain.SchedulingWindow)
		require.NoError(t, p.Dispatch(ctx, 1, domain.Command{"first"}, nil))
		require.NoError(t, p.Barrier(ctx), "window mode has no barrier")

		done := make(chan error)
		go func() { done <- p.Dispatch(ctx, 2, domain.Command{"second"}, nil) }()

		synctest.Wait()
		assert.Equal(t, int32(1), spawned.Load(), "second job waits for a free slot")

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, int32(2), spawned.Load())
		require.NoError(t, p.WaitAll(ctx))
	})
}

func TestPool_New_ClampsCores(t *testing.T) {
	p := pool.New(nil, 0, domain.SchedulingBatch)
	assert.Equal(t, 1, p.Cores())
}
