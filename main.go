package main

import (
	"context"
	"os"
	"syscall"

	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/spf13/afero"
)

func main() {
	OsExitFn(run(os.Args[1:]))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string) int {
	// Initialize filesystem and context
	fs := NewOsFsFn()
	ctx, cancel := ContextWithCancelFn(context.Background())
	defer cancel()

	logger := GetLoggerFn()

	env, err := SetupEnvironment(fs)
	if err != nil {
		logger.Error("failed to set up environment", "error", err)
		return 1
	}

	SetupSignalHandler(cancel, logger)

	rootCmd := NewRootCommandFn(ctx, fs, env, logger)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// SetupEnvironment initializes the environment using the filesystem.
func SetupEnvironment(fs afero.Fs) (*environment.Environment, error) {
	return NewEnvironmentFn(fs, nil)
}

// SetupSignalHandler cancels the root context on the first SIGINT or SIGTERM
// so a running server can drain, and exits on the second.
func SetupSignalHandler(cancelFunc context.CancelFunc, logger *logging.Logger) {
	sigs := MakeSignalChanFn()
	SignalNotifyFn(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigs
		logger.Debug("received signal, initiating shutdown", "signal", sig)
		cancelFunc()

		sig = <-sigs
		logger.Warn("received second signal, exiting", "signal", sig)
		OsExitFn(1)
	}()
}
