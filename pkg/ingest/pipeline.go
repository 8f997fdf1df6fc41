// Package ingest turns uploaded payloads into stored audio files and records.
//
// A payload is staged under <root>/.incoming, validated by the metadata
// extractor and only then committed: the final name is allocated, the staged
// file is renamed into place and the record inserted, all under one lock. A
// rejected payload leaves neither file nor record behind.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/kdeps/audiodepot/pkg/allocator"
	"github.com/kdeps/audiodepot/pkg/audio"
	audioErrors "github.com/kdeps/audiodepot/pkg/errors"
	"github.com/kdeps/audiodepot/pkg/extractor"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/messages"
	"github.com/kdeps/audiodepot/pkg/store"
	"github.com/kr/pretty"
	"github.com/spf13/afero"
)

// StagingDirName is the directory under the storage root holding payloads
// that have not been committed yet.
const StagingDirName = ".incoming"

// maxCommitAttempts bounds the allocate/insert retries after store conflicts.
const maxCommitAttempts = 5

// Pipeline ingests uploads into a storage root and a record store.
type Pipeline struct {
	fs        afero.Fs
	root      string
	store     store.Store
	extractor extractor.Extractor
	alloc     *allocator.Allocator
	logger    *logging.Logger

	// mu serialises name allocation, the rename into place and the insert.
	mu sync.Mutex
}

// New prepares the storage root and returns a pipeline writing into it.
func New(fs afero.Fs, root string, st store.Store, ex extractor.Extractor, counter *allocator.Counter, logger *logging.Logger) (*Pipeline, error) {
	if err := fs.MkdirAll(filepath.Join(root, StagingDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}

	p := &Pipeline{
		fs:        fs,
		root:      root,
		store:     st,
		extractor: ex,
		logger:    logger,
	}
	p.alloc = allocator.New(allocator.LookupFunc(p.nameTaken), counter)
	return p, nil
}

// Root returns the storage root.
func (p *Pipeline) Root() string {
	return p.root
}

// nameTaken checks the store and the disk, so a file left behind by a failed
// insert is never overwritten.
func (p *Pipeline) nameTaken(ctx context.Context, filename string) (bool, error) {
	taken, err := p.store.Exists(ctx, filename)
	if err != nil || taken {
		return taken, err
	}
	return afero.Exists(p.fs, filepath.Join(p.root, filename))
}

// Ingest stores the payload of up and returns the committed record.
func (p *Pipeline) Ingest(ctx context.Context, up *Upload) (*audio.Record, error) {
	staged, size, err := p.stage(up)
	if err != nil {
		return nil, err
	}
	p.logger.Debug(messages.MsgUploadStaged, "staging", staged, "size", size, "encoding", up.Encoding)

	md, err := p.extract(staged, size)
	if err != nil {
		p.discard(staged)
		if errors.Is(err, extractor.ErrUndecodable) {
			p.logger.Info(messages.MsgUploadRejected, "declaredName", up.DeclaredName, "error", err)
			return nil, audioErrors.NewInvalidAudioError(up.DeclaredName, err)
		}
		return nil, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to read staged upload")
	}

	rec, err := p.commit(ctx, up, staged, md)
	if err != nil {
		return nil, err
	}

	p.logger.Info(messages.MsgUploadCommitted, "filename", rec.Filename, "contentType", rec.ContentType)
	p.logger.Debug("committed record", "record", pretty.Sprint(rec))
	return rec, nil
}

// stage copies the upload body to a fresh file under the staging directory.
func (p *Pipeline) stage(up *Upload) (string, int64, error) {
	if up == nil || up.Body == nil {
		return "", 0, audioErrors.New(audioErrors.ErrInvalidParameter, messages.RespInvalidRequest)
	}

	staged := filepath.Join(p.root, StagingDirName, uuid.New().String())
	f, err := p.fs.OpenFile(staged, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to create staging file")
	}

	size, err := io.Copy(f, up.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		p.discard(staged)
		if IsTooLarge(err) {
			return "", 0, tooLarge(err)
		}
		return "", 0, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to write upload")
	}
	return staged, size, nil
}

func (p *Pipeline) extract(staged string, size int64) (*audio.Metadata, error) {
	f, err := p.fs.Open(staged)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.extractor.Extract(f, size)
}

// discard removes a staged file. Failures are logged and swallowed so they
// never replace the error being reported.
func (p *Pipeline) discard(staged string) {
	if err := p.fs.Remove(staged); err != nil && !os.IsNotExist(err) {
		p.logger.Warn(messages.MsgStagingCleanupFail, "staging", staged, "error", err)
	}
}

func (p *Pipeline) commit(ctx context.Context, up *Upload, staged string, md *audio.Metadata) (*audio.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastConflict error
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		name, err := p.allocate(ctx, up)
		if err != nil {
			p.discard(staged)
			return nil, audioErrors.NewStoreFailureError(up.DeclaredName, err)
		}

		final := filepath.Join(p.root, name)
		if err := p.fs.Rename(staged, final); err != nil {
			p.discard(staged)
			return nil, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to move upload into place").WithFilename(name)
		}

		rec := audio.NewRecord(name, md)
		err = p.store.Insert(ctx, rec)
		if err == nil {
			return rec, nil
		}

		if !errors.Is(err, store.ErrConflict) {
			p.logger.Error(messages.MsgCommitStoreFailure, "filename", name, "error", err)
			return nil, audioErrors.NewStoreFailureError(name, err)
		}

		p.logger.Warn(messages.MsgCommitConflict, "filename", name, "attempt", attempt)
		lastConflict = err
		if err := p.fs.Rename(final, staged); err != nil {
			// the name belongs to another writer now, so the file is not removed
			p.logger.Error(messages.MsgCommitStranded, "path", final, "error", err)
			return nil, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to unstage conflicting upload").
				WithFilename(name).
				WithContext("strandedPath", final)
		}
	}

	p.discard(staged)
	return nil, audioErrors.NewStoreFailureError(up.DeclaredName, lastConflict).
		WithContext("attempts", maxCommitAttempts)
}

// allocate names raw uploads file<N>.wav. Multipart uploads keep their
// sanitised declared name unless nothing usable is left of it.
func (p *Pipeline) allocate(ctx context.Context, up *Upload) (string, error) {
	if up.Encoding == EncodingMultipart && up.DeclaredName != "" {
		clean := allocator.Sanitize(up.DeclaredName)
		if clean != "" {
			name, err := p.alloc.Resolve(ctx, clean)
			if err == nil {
				return name, nil
			}
			if !errors.Is(err, allocator.ErrNoExtension) {
				return "", err
			}
		}
		p.logger.Info(messages.MsgDeclaredNameIgnored, "declaredName", up.DeclaredName, "sanitized", clean)
	}
	return p.alloc.Generate(ctx, true)
}

// Clear deletes every record, then every committed file under the storage
// root. Staged payloads of in-flight uploads are left alone.
func (p *Pipeline) Clear(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.store.Clear(ctx)
	if err != nil {
		return 0, audioErrors.NewStoreFailureError("", err)
	}

	entries, err := afero.ReadDir(p.fs, p.root)
	if err != nil {
		return n, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to list storage root")
	}
	removed := 0
	for _, entry := range entries {
		if entry.Name() == StagingDirName {
			continue
		}
		if err := p.fs.RemoveAll(filepath.Join(p.root, entry.Name())); err != nil {
			return n, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to remove stored file").
				WithFilename(entry.Name())
		}
		removed++
	}

	p.logger.Info(messages.MsgStoreCleared, "records", n, "files", removed)
	return n, nil
}
