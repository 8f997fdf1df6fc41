package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	audioErrors "github.com/kdeps/audiodepot/pkg/errors"
	"github.com/kdeps/audiodepot/pkg/ingest"
	"github.com/kdeps/audiodepot/pkg/messages"
	"github.com/kdeps/audiodepot/pkg/query"
)

// HeaderAudioFilename names the stored file after a successful upload.
const HeaderAudioFilename = "X-Audio-Filename"

const defaultContentType = "application/octet-stream"

func (s *Server) handleHome(c *gin.Context) {
	records, err := s.service.Sorted(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.HTML(http.StatusOK, indexTemplate, gin.H{"Files": records})
}

func (s *Server) handleUpload(c *gin.Context) {
	start := time.Now()
	encoding := "unknown"
	fail := func(err error) {
		code := string(audioErrors.ErrFileOperations)
		if ae, ok := audioErrors.AsAudioError(err); ok {
			code = string(ae.Code)
		}
		s.metrics.Record(encoding, time.Since(start), code)
		respondError(c, err)
	}

	if s.cfg.MaxUploadBytes > 0 {
		if c.Request.ContentLength > s.cfg.MaxUploadBytes {
			fail(audioErrors.New(audioErrors.ErrPayloadTooLarge, messages.RespPayloadTooLarge).
				WithContext("contentLength", c.Request.ContentLength))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	up, err := ingest.DecodeRequest(c.Request)
	if err != nil {
		fail(err)
		return
	}
	defer up.Close()
	if form := c.Request.MultipartForm; form != nil {
		defer form.RemoveAll()
	}
	encoding = string(up.Encoding)

	rec, err := s.pipeline.Ingest(c.Request.Context(), up)
	if err != nil {
		fail(err)
		return
	}
	s.metrics.Record(encoding, time.Since(start), "")

	c.Header(HeaderAudioFilename, rec.Filename)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, rec)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleDownload(c *gin.Context) {
	file, rec, err := s.files.Serve(c.Request.Context(), c.Query(query.ParamName))
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		respondError(c, audioErrors.Wrap(err, audioErrors.ErrFileOperations, "failed to stat stored file").
			WithFilename(rec.Filename))
		return
	}

	contentType := rec.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", rec.Filename),
	})
}

func (s *Server) handleList(c *gin.Context) {
	params, err := query.ParseParams(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	listing, err := s.service.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) handleInfo(c *gin.Context) {
	rec, err := s.service.GetByName(c.Request.Context(), c.Query(query.ParamName))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleClear(c *gin.Context) {
	if !s.cfg.EnableClear {
		respondError(c, audioErrors.New(audioErrors.ErrDisabled, messages.MsgClearDisabled))
		return
	}

	n, err := s.pipeline.Clear(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"cleared": n})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "uploads": s.metrics.Snapshot()})
}
