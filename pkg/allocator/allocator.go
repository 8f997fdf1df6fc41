// Package allocator derives collision-free filenames for new uploads.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoExtension is returned for candidate names without an extension
// separator.
var ErrNoExtension = errors.New("filename has no extension")

// GeneratedExt is the extension of auto-generated names.
const GeneratedExt = "wav"

// Lookup reports whether a filename is already taken.
type Lookup interface {
	Exists(ctx context.Context, filename string) (bool, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, filename string) (bool, error)

// Exists calls f.
func (f LookupFunc) Exists(ctx context.Context, filename string) (bool, error) {
	return f(ctx, filename)
}

// Allocator proposes filenames. The proposal is only authoritative while the
// caller holds whatever lock also guards the insert.
type Allocator struct {
	lookup  Lookup
	counter *Counter
}

// New creates an allocator consulting lookup and drawing generated names
// from counter.
func New(lookup Lookup, counter *Counter) *Allocator {
	if counter == nil {
		counter = NewCounter(0)
	}
	return &Allocator{lookup: lookup, counter: counter}
}

// Generate returns a free name derived from file<N>.wav. With advance the
// counter value is consumed; without it the counter is only peeked.
func (a *Allocator) Generate(ctx context.Context, advance bool) (string, error) {
	n := a.counter.Peek()
	if advance {
		n = a.counter.Next()
	}
	return a.Resolve(ctx, fmt.Sprintf("file%d.%s", n, GeneratedExt))
}

// Resolve returns filename if it is free, else the first free name of the
// form name-1.ext, name-2.ext, ...
func (a *Allocator) Resolve(ctx context.Context, filename string) (string, error) {
	name, ext, err := SplitExt(filename)
	if err != nil {
		return "", err
	}

	candidate := filename
	for num := 1; ; num++ {
		taken, err := a.lookup.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check filename %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d.%s", name, num, ext)
	}
}

// SplitExt splits filename at its last dot.
func SplitExt(filename string) (name, ext string, err error) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", "", fmt.Errorf("%w: %q", ErrNoExtension, filename)
	}
	return filename[:i], filename[i+1:], nil
}
