package server_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kdeps/audiodepot/pkg/allocator"
	"github.com/kdeps/audiodepot/pkg/extractor"
	"github.com/kdeps/audiodepot/pkg/ingest"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/query"
	"github.com/kdeps/audiodepot/pkg/server"
	"github.com/kdeps/audiodepot/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const storageRoot = "/data/audio_files"

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	cfg     server.Config
	fs      afero.Fs
	store   *store.SQLiteStore
	logger  *logging.Logger
	handler http.Handler
}

func newHarness(t testing.TB, cfg server.Config) *harness {
	t.Helper()

	logger := logging.NewTestLogger()
	st, err := store.Open(filepath.Join(t.TempDir(), "files.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := &harness{cfg: cfg, fs: afero.NewMemMapFs(), store: st, logger: logger}
	h.restart(t)
	return h
}

// restart rebuilds the server over the same storage with a fresh counter.
func (h *harness) restart(t testing.TB) {
	t.Helper()

	pipeline, err := ingest.New(h.fs, storageRoot, h.store, extractor.New(h.logger), allocator.NewCounter(0), h.logger)
	require.NoError(t, err)

	svc := query.NewService(h.store, h.logger)
	srv := server.New(h.cfg, pipeline, svc, query.NewFileServer(h.fs, storageRoot, svc), h.logger)
	h.handler = srv.Handler()
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (h *harness) fileExists(name string) bool {
	ok, _ := afero.Exists(h.fs, filepath.Join(storageRoot, name))
	return ok
}

func rawUpload(payload []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/post", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func multipartUpload(t testing.TB, filename string, payload []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/post", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}
