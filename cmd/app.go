package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kdeps/audiodepot/pkg/allocator"
	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/extractor"
	"github.com/kdeps/audiodepot/pkg/ingest"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/query"
	"github.com/kdeps/audiodepot/pkg/store"
	"github.com/spf13/afero"
)

// App bundles the components shared by the commands.
type App struct {
	Env      *environment.Environment
	Store    store.Store
	Pipeline *ingest.Pipeline
	Service  *query.Service
	Files    *query.FileServer
}

// OpenApp opens the record store and prepares the storage root.
func OpenApp(fs afero.Fs, env *environment.Environment, logger *logging.Logger) (*App, error) {
	if err := fs.MkdirAll(filepath.Dir(env.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	st, err := store.Open(env.DBPath, logger)
	if err != nil {
		return nil, err
	}

	pipeline, err := ingest.New(fs, env.StorageDir, st, extractor.New(logger), allocator.NewCounter(0), logger)
	if err != nil {
		return nil, errors.Join(err, st.Close())
	}

	svc := query.NewService(st, logger)
	return &App{
		Env:      env,
		Store:    st,
		Pipeline: pipeline,
		Service:  svc,
		Files:    query.NewFileServer(fs, env.StorageDir, svc),
	}, nil
}

// Close releases the record store.
func (a *App) Close() error {
	return a.Store.Close()
}
