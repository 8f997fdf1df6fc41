package ingest

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	audioErrors "github.com/kdeps/audiodepot/pkg/errors"
	"github.com/kdeps/audiodepot/pkg/messages"
)

// Encoding is the transport encoding of an upload.
type Encoding string

const (
	// EncodingRaw carries the payload as the whole request body.
	EncodingRaw Encoding = "raw"
	// EncodingMultipart carries the payload in the "file" form part.
	EncodingMultipart Encoding = "multipart"
)

// FormField is the multipart field holding the payload.
const FormField = "file"

// multipartMemory is how much of a multipart body is buffered in memory
// before parts spill to temporary files.
const multipartMemory = 8 << 20

// Upload is one payload waiting to be ingested.
type Upload struct {
	Encoding Encoding
	Body     io.Reader
	// DeclaredName is the client-supplied filename. Only multipart uploads
	// carry one.
	DeclaredName string

	closer io.Closer
}

// Close releases the multipart part backing the upload, if any.
func (u *Upload) Close() error {
	if u.closer == nil {
		return nil
	}
	return u.closer.Close()
}

// DecodeRequest picks the payload out of r according to its Content-Type.
// A raw body must be sent as application/x-www-form-urlencoded; a multipart
// body must carry a "file" part. Anything else is UNSUPPORTED_ENCODING.
func DecodeRequest(r *http.Request) (*Upload, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, audioErrors.New(audioErrors.ErrUnsupportedEncoding, messages.RespUnsupportedEncoding).WithCause(err)
	}

	switch strings.ToLower(mediaType) {
	case "application/x-www-form-urlencoded":
		return &Upload{Encoding: EncodingRaw, Body: r.Body}, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if IsTooLarge(err) {
				return nil, tooLarge(err)
			}
			return nil, audioErrors.New(audioErrors.ErrInvalidParameter, messages.RespInvalidRequest).WithCause(err)
		}
		file, header, err := r.FormFile(FormField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, audioErrors.New(audioErrors.ErrInvalidParameter, messages.RespMissingFilePart).
					WithContext("field", FormField)
			}
			return nil, audioErrors.New(audioErrors.ErrInvalidParameter, messages.RespInvalidRequest).WithCause(err)
		}
		return &Upload{
			Encoding:     EncodingMultipart,
			Body:         file,
			DeclaredName: header.Filename,
			closer:       file,
		}, nil

	default:
		return nil, audioErrors.New(audioErrors.ErrUnsupportedEncoding, messages.RespUnsupportedEncoding).
			WithContext("contentType", mediaType)
	}
}

// FromFile wraps a local file so it is named like a multipart upload
// declaring declaredName.
func FromFile(file io.ReadCloser, declaredName string) *Upload {
	return &Upload{Encoding: EncodingMultipart, Body: file, DeclaredName: declaredName, closer: file}
}

// IsTooLarge reports whether err came from a body cap set with
// http.MaxBytesReader.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// mime/multipart flattens the reader error into its own message
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func tooLarge(err error) error {
	return audioErrors.New(audioErrors.ErrPayloadTooLarge, messages.RespPayloadTooLarge).WithCause(err)
}
