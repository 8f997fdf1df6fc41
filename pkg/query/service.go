// Package query answers read requests against the record store and the
// storage root.
package query

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/kdeps/audiodepot/pkg/audio"
	audioErrors "github.com/kdeps/audiodepot/pkg/errors"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/store"
	"github.com/spf13/afero"
)

// Listing is the /list response body. Files holds filenames, or full records
// when the query was verbose.
type Listing struct {
	Files any `json:"files"`
}

// Service runs filtered listings and single-record lookups.
type Service struct {
	store  store.Store
	logger *logging.Logger
}

// NewService returns a Service reading from st.
func NewService(st store.Store, logger *logging.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Records returns the records matching filter, in insertion order.
func (s *Service) Records(ctx context.Context, filter audio.Filter) ([]audio.Record, error) {
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, audioErrors.NewStoreFailureError("", err)
	}
	return records, nil
}

// List runs p and shapes the result for /list.
func (s *Service) List(ctx context.Context, p Params) (*Listing, error) {
	records, err := s.Records(ctx, p.Filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("listing", "matches", len(records), "verbose", p.Verbose)
	if p.Verbose {
		return &Listing{Files: records}, nil
	}
	return &Listing{Files: audio.Filenames(records)}, nil
}

// Sorted returns every record ordered by filename, case-insensitively, for
// listing pages.
func (s *Service) Sorted(ctx context.Context) ([]audio.Record, error) {
	records, err := s.Records(ctx, audio.Filter{})
	if err != nil {
		return nil, err
	}
	audio.SortByFilename(records)
	return records, nil
}

// GetByName returns the record for name. An empty name is MISSING_PARAMETER
// and an unknown one NOT_FOUND.
func (s *Service) GetByName(ctx context.Context, name string) (*audio.Record, error) {
	if name == "" {
		return nil, audioErrors.NewMissingParameterError(ParamName)
	}
	rec, err := s.store.Get(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, audioErrors.NewNotFoundError(name)
	}
	if err != nil {
		return nil, audioErrors.NewStoreFailureError(name, err)
	}
	return rec, nil
}

// FileServer streams stored files. Existence is decided by the record store;
// a record whose file has gone missing surfaces as a file operation error.
type FileServer struct {
	fs      afero.Fs
	root    string
	service *Service
}

// NewFileServer serves files under root for records known to service.
func NewFileServer(fs afero.Fs, root string, service *Service) *FileServer {
	return &FileServer{fs: fs, root: root, service: service}
}

// Serve opens the file behind name. The caller closes it.
func (f *FileServer) Serve(ctx context.Context, name string) (afero.File, *audio.Record, error) {
	rec, err := f.service.GetByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	file, err := f.fs.Open(filepath.Join(f.root, filepath.Base(rec.Filename)))
	if err != nil {
		return nil, nil, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to open stored file").
			WithFilename(rec.Filename)
	}
	return file, rec, nil
}

// Copy writes the file behind name to w.
func (f *FileServer) Copy(ctx context.Context, w io.Writer, name string) (*audio.Record, error) {
	file, rec, err := f.Serve(ctx, name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if _, err := io.Copy(w, file); err != nil {
		return nil, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to stream stored file").
			WithFilename(rec.Filename)
	}
	return rec, nil
}
