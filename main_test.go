package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests swap package-level function variables and must not run in
// parallel.

func TestSetupEnvironment(t *testing.T) {
	orig := NewEnvironmentFn
	defer func() { NewEnvironmentFn = orig }()

	NewEnvironmentFn = func(fs afero.Fs, environ *environment.Environment) (*environment.Environment, error) {
		assert.Nil(t, environ)
		return &environment.Environment{StorageDir: "/data/audio_files"}, nil
	}

	env, err := SetupEnvironment(afero.NewMemMapFs())
	require.NoError(t, err)
	assert.Equal(t, "/data/audio_files", env.StorageDir)
}

func TestRunEnvironmentFailure(t *testing.T) {
	origEnv, origLogger := NewEnvironmentFn, GetLoggerFn
	defer func() { NewEnvironmentFn, GetLoggerFn = origEnv, origLogger }()

	logger := logging.NewTestLogger()
	GetLoggerFn = func() *logging.Logger { return logger }
	NewEnvironmentFn = func(afero.Fs, *environment.Environment) (*environment.Environment, error) {
		return nil, errors.New("bad environment")
	}

	assert.Equal(t, 1, run(nil))
	assert.Contains(t, logger.GetOutput(), "failed to set up environment")
}

func TestRunExecutesRootCommand(t *testing.T) {
	origEnv, origRoot, origFs, origNotify := NewEnvironmentFn, NewRootCommandFn, NewOsFsFn, SignalNotifyFn
	defer func() {
		NewEnvironmentFn, NewRootCommandFn, NewOsFsFn, SignalNotifyFn = origEnv, origRoot, origFs, origNotify
	}()

	NewOsFsFn = afero.NewMemMapFs
	SignalNotifyFn = func(chan<- os.Signal, ...os.Signal) {}
	NewEnvironmentFn = func(fs afero.Fs, _ *environment.Environment) (*environment.Environment, error) {
		return environment.NewEnvironment(fs, &environment.Environment{StorageDir: "/data/audio_files"})
	}

	var got []string
	NewRootCommandFn = func(_ context.Context, _ afero.Fs, env *environment.Environment, _ *logging.Logger) *cobra.Command {
		root := &cobra.Command{Use: "audiodepot"}
		root.AddCommand(&cobra.Command{
			Use: "echo",
			RunE: func(_ *cobra.Command, args []string) error {
				got = append([]string{env.StorageDir}, args...)
				return nil
			},
		})
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		return root
	}

	assert.Equal(t, 0, run([]string{"echo", "a", "b"}))
	assert.Equal(t, []string{"/data/audio_files", "a", "b"}, got)

	assert.Equal(t, 1, run([]string{"no-such-command"}))
}

func TestSetupSignalHandler(t *testing.T) {
	origNotify, origChan, origExit := SignalNotifyFn, MakeSignalChanFn, OsExitFn
	defer func() { SignalNotifyFn, MakeSignalChanFn, OsExitFn = origNotify, origChan, origExit }()

	sigs := make(chan os.Signal, 2)
	MakeSignalChanFn = func() chan os.Signal { return sigs }
	SignalNotifyFn = func(chan<- os.Signal, ...os.Signal) {}
	exited := make(chan int, 1)
	OsExitFn = func(code int) { exited <- code }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	SetupSignalHandler(cancel, logging.NewTestLogger())

	sigs <- syscall.SIGTERM
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}

	sigs <- syscall.SIGINT
	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(time.Second):
		t.Fatal("second signal did not exit")
	}
}
