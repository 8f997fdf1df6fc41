// Package store persists audio records.
package store

import (
	"context"
	"errors"

	"github.com/kdeps/audiodepot/pkg/audio"
)

var (
	// ErrNotFound is returned when no record has the requested filename.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by Insert when the filename is already taken.
	ErrConflict = errors.New("filename already exists")
)

// Store is a queryable table of audio records keyed by filename.
type Store interface {
	// Insert commits rec if its filename is free, else returns ErrConflict.
	Insert(ctx context.Context, rec *audio.Record) error
	Get(ctx context.Context, filename string) (*audio.Record, error)
	Exists(ctx context.Context, filename string) (bool, error)
	List(ctx context.Context, filter audio.Filter) ([]audio.Record, error)
	// Clear deletes every record and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
	Close() error
}
