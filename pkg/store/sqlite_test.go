package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kdeps/audiodepot/pkg/audio"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "files.db"), logging.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	records := []*audio.Record{
		{Filename: "short.wav", Duration: audio.Float(0.5), Bitrate: audio.Int(128000), Channels: audio.Int(1), SampleRate: audio.Int(8000), ContentType: "audio/wav"},
		{Filename: "long.wav", Duration: audio.Float(120), Bitrate: audio.Int(1411200), Channels: audio.Int(2), SampleRate: audio.Int(44100), ContentType: "audio/wav"},
		{Filename: "song.mp3", Duration: audio.Float(30), Bitrate: audio.Int(192000), Channels: audio.Int(2), SampleRate: audio.Int(44100), ContentType: "audio/mpeg", Title: audio.String("Song")},
		{Filename: "unknown.ogg", Channels: audio.Int(1), SampleRate: audio.Int(48000), ContentType: "audio/ogg"},
	}
	for _, rec := range records {
		require.NoError(t, s.Insert(ctx, rec))
	}
}

func TestInsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s)

	rec, err := s.Get(ctx, "song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", rec.Filename)
	require.NotNil(t, rec.Duration)
	assert.Equal(t, 30.0, *rec.Duration)
	require.NotNil(t, rec.Title)
	assert.Equal(t, "Song", *rec.Title)
	assert.Nil(t, rec.Artist)
	assert.Equal(t, "audio/mpeg", rec.ContentType)

	rec, err = s.Get(ctx, "unknown.ogg")
	require.NoError(t, err)
	assert.Nil(t, rec.Duration, "absent fields stay absent, not zero")
	assert.Nil(t, rec.Bitrate)

	_, err = s.Get(ctx, "missing.wav")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInsertConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &audio.Record{Filename: "file0.wav"}))
	err := s.Insert(ctx, &audio.Record{Filename: "file0.wav", Channels: audio.Int(2)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	rec, err := s.Get(ctx, "file0.wav")
	require.NoError(t, err)
	assert.Nil(t, rec.Channels, "conflicting insert must not touch the stored record")
}

func TestExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s)

	ok, err := s.Exists(ctx, "long.wav")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "LONG.wav")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s)

	testCases := []struct {
		name   string
		filter audio.Filter
		want   []string
	}{
		{name: "no filter", filter: audio.Filter{}, want: []string{"short.wav", "long.wav", "song.mp3", "unknown.ogg"}},
		{name: "unbounded range is a no-op", filter: audio.Filter{MinDuration: audio.Float(0)}, want: []string{"short.wav", "long.wav", "song.mp3", "unknown.ogg"}},
		{name: "inclusive duration bounds", filter: audio.Filter{MinDuration: audio.Float(0.5), MaxDuration: audio.Float(30)}, want: []string{"short.wav", "song.mp3", "unknown.ogg"}},
		{name: "max bitrate", filter: audio.Filter{MaxBitrate: audio.Int(192000)}, want: []string{"short.wav", "song.mp3", "unknown.ogg"}},
		{name: "min bitrate", filter: audio.Filter{MinBitrate: audio.Int(192001)}, want: []string{"long.wav", "unknown.ogg"}},
		{name: "unreported fields pass every range bound", filter: audio.Filter{MinDuration: audio.Float(200), MinBitrate: audio.Int(320000)}, want: []string{"unknown.ogg"}},
		{name: "channels exact", filter: audio.Filter{Channels: audio.Int(2)}, want: []string{"long.wav", "song.mp3"}},
		{name: "sample rate exact", filter: audio.Filter{SampleRate: audio.Int(44100), MinDuration: audio.Float(60)}, want: []string{"long.wav"}},
		{name: "nothing matches", filter: audio.Filter{SampleRate: audio.Int(96000)}, want: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := s.List(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, audio.Filenames(records))
		})
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s)

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	records, err := s.List(ctx, audio.Filter{})
	require.NoError(t, err)
	assert.Empty(t, records)

	// the filename is free again after a clear
	require.NoError(t, s.Insert(ctx, &audio.Record{Filename: "short.wav"}))
}

func TestBuildListQuery(t *testing.T) {
	query, args := buildListQuery(audio.Filter{MinBitrate: audio.Int(1), Channels: audio.Int(2)})
	assert.Contains(t, query, "(bitrate IS NULL OR bitrate >= ?) AND channels = ?")
	assert.Equal(t, []any{1, 2}, args)

	query, args = buildListQuery(audio.Filter{})
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}
