package query_test

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/kdeps/audiodepot/pkg/audio"
	audioErrors "github.com/kdeps/audiodepot/pkg/errors"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/query"
	"github.com/kdeps/audiodepot/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/data/audio_files"

func seeded(t *testing.T) (*query.Service, *query.FileServer, afero.Fs) {
	t.Helper()

	logger := logging.NewTestLogger()
	st, err := store.Open(filepath.Join(t.TempDir(), "files.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	fs := afero.NewMemMapFs()
	records := []*audio.Record{
		{Filename: "beta.wav", Duration: audio.Float(2), Bitrate: audio.Int(128000), Channels: audio.Int(1), SampleRate: audio.Int(8000), ContentType: "audio/wav"},
		{Filename: "Alpha.mp3", Duration: audio.Float(30), Bitrate: audio.Int(192000), Channels: audio.Int(2), SampleRate: audio.Int(44100), ContentType: "audio/mpeg"},
		{Filename: "gamma.ogg", Channels: audio.Int(2), SampleRate: audio.Int(48000), ContentType: "audio/ogg"},
	}
	for _, rec := range records {
		require.NoError(t, st.Insert(context.Background(), rec))
		require.NoError(t, afero.WriteFile(fs, filepath.Join(root, rec.Filename), []byte("bytes of "+rec.Filename), 0o644))
	}

	svc := query.NewService(st, logger)
	return svc, query.NewFileServer(fs, root, svc), fs
}

func TestParseParams(t *testing.T) {
	t.Parallel()

	p, err := query.ParseParams(url.Values{
		"minduration": {"1.5"},
		"maxduration": {"60"},
		"minbitrate":  {"64000"},
		"maxbitrate":  {"320000"},
		"channels":    {"2"},
		"sample_rate": {"44100"},
		"verbose":     {"TRUE"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.5, *p.Filter.MinDuration)
	assert.Equal(t, 60.0, *p.Filter.MaxDuration)
	assert.Equal(t, 64000, *p.Filter.MinBitrate)
	assert.Equal(t, 320000, *p.Filter.MaxBitrate)
	assert.Equal(t, 2, *p.Filter.Channels)
	assert.Equal(t, 44100, *p.Filter.SampleRate)
	assert.True(t, p.Verbose)

	p, err = query.ParseParams(url.Values{"minduration": {""}})
	require.NoError(t, err)
	assert.Equal(t, audio.Filter{}, p.Filter)
	assert.False(t, p.Verbose)
}

func TestParseParamsRejectsMalformedNumbers(t *testing.T) {
	t.Parallel()

	for key, value := range map[string]string{
		"minduration": "soon",
		"maxbitrate":  "1.5",
		"channels":    "two",
		"sample_rate": "44k",
	} {
		_, err := query.ParseParams(url.Values{key: {value}})
		require.Error(t, err, key)
		assert.True(t, audioErrors.HasErrorCode(err, audioErrors.ErrInvalidParameter), key)
		assert.Equal(t, http.StatusBadRequest, audioErrors.StatusCode(err), key)
	}
}

func TestIsTrue(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"true", "True", "1", " true "} {
		assert.True(t, query.IsTrue(v), v)
	}
	for _, v := range []string{"", "0", "false", "yes"} {
		assert.False(t, query.IsTrue(v), v)
	}
}

func TestListFilenamesAndVerbose(t *testing.T) {
	t.Parallel()
	svc, _, _ := seeded(t)
	ctx := context.Background()

	listing, err := svc.List(ctx, query.Params{})
	require.NoError(t, err)
	assert.Equal(t, []string{"beta.wav", "Alpha.mp3", "gamma.ogg"}, listing.Files)

	listing, err = svc.List(ctx, query.Params{Filter: audio.Filter{Channels: audio.Int(2)}, Verbose: true})
	require.NoError(t, err)
	records, ok := listing.Files.([]audio.Record)
	require.True(t, ok)
	require.Len(t, records, 2)
	assert.Equal(t, "Alpha.mp3", records[0].Filename)
	assert.Nil(t, records[1].Duration)
}

func TestListOpenRangeMatchesUnfiltered(t *testing.T) {
	t.Parallel()
	svc, _, _ := seeded(t)
	ctx := context.Background()

	all, err := svc.List(ctx, query.Params{})
	require.NoError(t, err)
	open, err := svc.List(ctx, query.Params{Filter: audio.Filter{
		MinDuration: audio.Float(0),
		MaxDuration: audio.Float(math.Inf(1)),
	}})
	require.NoError(t, err)
	assert.Equal(t, all, open)
}

func TestSorted(t *testing.T) {
	t.Parallel()
	svc, _, _ := seeded(t)

	records, err := svc.Sorted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha.mp3", "beta.wav", "gamma.ogg"}, audio.Filenames(records))
}

func TestGetByName(t *testing.T) {
	t.Parallel()
	svc, _, _ := seeded(t)
	ctx := context.Background()

	rec, err := svc.GetByName(ctx, "beta.wav")
	require.NoError(t, err)
	assert.Equal(t, 8000, *rec.SampleRate)

	_, err = svc.GetByName(ctx, "")
	assert.True(t, audioErrors.HasErrorCode(err, audioErrors.ErrMissingParameter))
	assert.Equal(t, http.StatusBadRequest, audioErrors.StatusCode(err))

	_, err = svc.GetByName(ctx, "missing.wav")
	assert.True(t, audioErrors.HasErrorCode(err, audioErrors.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, audioErrors.StatusCode(err))
}

func TestFileServer(t *testing.T) {
	t.Parallel()
	_, files, fs := seeded(t)
	ctx := context.Background()

	var buf bytes.Buffer
	rec, err := files.Copy(ctx, &buf, "beta.wav")
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", rec.ContentType)
	assert.Equal(t, "bytes of beta.wav", buf.String())

	_, _, err = files.Serve(ctx, "")
	assert.True(t, audioErrors.HasErrorCode(err, audioErrors.ErrMissingParameter))

	// a file on disk without a record is not served
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, "stray.wav"), []byte("x"), 0o644))
	_, _, err = files.Serve(ctx, "stray.wav")
	assert.True(t, audioErrors.HasErrorCode(err, audioErrors.ErrNotFound))

	// a record without its file surfaces as a file operation failure
	require.NoError(t, fs.Remove(filepath.Join(root, "gamma.ogg")))
	_, _, err = files.Serve(ctx, "gamma.ogg")
	assert.True(t, audioErrors.HasErrorCode(err, audioErrors.ErrFileOperations))
	assert.Equal(t, http.StatusInternalServerError, audioErrors.StatusCode(err))
}
