package shell_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestSpawner_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info("hello")
	logger.EXPECT().Warn("oops")

	s := shell.NewSpawner(logger)
	job, err := s.Spawn(context.Background(), domain.Command{"sh", "-c", "echo hello; echo oops >&2"}, ports.SpawnOptions{})
	require.NoError(t, err)

	assert.Positive(t, job.Pid())
	assert.Nil(t, job.Stdin())
	assert.Nil(t, job.Output())
	assert.Equal(t, domain.Command{"sh", "-c", "echo hello; echo oops >&2"}, job.Command())

	require.NoError(t, job.Wait())
}

func TestSpawner_CopiesToExtraWriters(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info("line one")
	logger.EXPECT().Info("partial")

	var stdout bytes.Buffer
	s := shell.NewSpawner(logger)
	job, err := s.Spawn(context.Background(),
		domain.Command{"sh", "-c", "printf 'line one\\npartial'"},
		ports.SpawnOptions{Stdout: &stdout},
	)
	require.NoError(t, err)
	require.NoError(t, job.Wait())

	assert.Equal(t, "line one\npartial", stdout.String())
}

func TestSpawner_NonZeroExit(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	s := shell.NewSpawner(logger)
	job, err := s.Spawn(context.Background(), domain.Command{"sh", "-c", "exit 42"}, ports.SpawnOptions{})
	require.NoError(t, err)

	err = job.Wait()
	require.ErrorIs(t, err, domain.ErrProcessFailed)

	assert.Equal(t, 42, domain.ErrorMetadata(err)["exit_code"])
}

func TestSpawner_Signaled(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	s := shell.NewSpawner(logger)
	job, err := s.Spawn(context.Background(), domain.Command{"sh", "-c", "kill -TERM $$"}, ports.SpawnOptions{})
	require.NoError(t, err)

	err = job.Wait()
	require.ErrorIs(t, err, domain.ErrProcessSignaled)
	assert.NotErrorIs(t, err, domain.ErrProcessFailed)
}

func TestSpawner_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	s := shell.NewSpawner(logger)
	job, err := s.Spawn(ctx, domain.Command{"sleep", "30"}, ports.SpawnOptions{})
	require.NoError(t, err)

	cancel()

	err = job.Wait()
	require.ErrorIs(t, err, domain.ErrProcessSignaled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpawner_ExecFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	s := shell.NewSpawner(logger)
	job, err := s.Spawn(context.Background(), domain.Command{"kiln-no-such-program"}, ports.SpawnOptions{})

	require.ErrorIs(t, err, domain.ErrSpawn)
	assert.Nil(t, job)
}

func TestSpawner_EmptyCommand(t *testing.T) {
	s := shell.NewSpawner(mocks.NewMockLogger(gomock.NewController(t)))

	_, err := s.Spawn(context.Background(), nil, ports.SpawnOptions{})

	require.ErrorIs(t, err, domain.ErrSpawn)
}

func TestSpawner_RedirectOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	s := shell.NewSpawner(logger)
	job, err := s.Spawn(context.Background(),
		domain.Command{"sh", "-c", "echo out; echo err >&2"},
		ports.SpawnOptions{Redirect: ports.RedirectOutput},
	)
	require.NoError(t, err)
	require.NotNil(t, job.Output())

	out, err := io.ReadAll(job.Output())
	require.NoError(t, err)
	require.NoError(t, job.Output().Close())
	require.NoError(t, job.Wait())

	assert.Equal(t, "out\nerr\n", string(out))
}

func TestSpawner_RedirectStdin(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	s := shell.NewSpawner(logger)
	job, err := s.Spawn(context.Background(),
		domain.Command{"cat"},
		ports.SpawnOptions{Redirect: ports.RedirectStdin | ports.RedirectOutput},
	)
	require.NoError(t, err)

	_, err = io.WriteString(job.Stdin(), "piped\n")
	require.NoError(t, err)
	require.NoError(t, job.Stdin().Close())

	out, err := io.ReadAll(job.Output())
	require.NoError(t, err)
	require.NoError(t, job.Wait())

	assert.Equal(t, "piped\n", string(out))
}
