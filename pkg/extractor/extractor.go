// Package extractor decodes uploaded bytes as an audio container and reports
// its metadata.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dhowden/tag"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"github.com/kdeps/audiodepot/pkg/audio"
	"github.com/kdeps/audiodepot/pkg/logging"
)

// ErrUndecodable is returned when the payload is not an audio container any
// decoder accepts.
var ErrUndecodable = errors.New("not a decodable audio container")

// Extractor turns raw bytes into container metadata or fails with
// ErrUndecodable.
type Extractor interface {
	Extract(r io.ReadSeeker, size int64) (*audio.Metadata, error)
}

type container struct {
	name   string
	mimes  []string
	pcm    bool
	decode func(io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error)
}

var containers = []container{
	{
		name:  "wav",
		mimes: []string{"audio/wav"},
		pcm:   true,
		decode: func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
			return wav.Decode(rc)
		},
	},
	{
		name:  "mp3",
		mimes: []string{"audio/mpeg"},
		decode: func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
			return mp3.Decode(rc)
		},
	},
	{
		name:  "flac",
		mimes: []string{"audio/flac"},
		decode: func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
			return flac.Decode(rc)
		},
	},
	{
		name:  "vorbis",
		mimes: []string{"audio/ogg", "application/ogg"},
		decode: func(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
			return vorbis.Decode(rc)
		},
	},
}

func lookupContainer(mtype *mimetype.MIME) *container {
	for i := range containers {
		for _, m := range containers[i].mimes {
			if mtype.Is(m) {
				return &containers[i]
			}
		}
	}
	return nil
}

// noClose keeps decoders from closing the caller's file.
type noClose struct {
	io.ReadSeeker
}

func (noClose) Close() error { return nil }

// ContainerExtractor sniffs the payload with mimetype, decodes the container
// header with beep and reads optional tags with dhowden/tag.
type ContainerExtractor struct {
	logger *logging.Logger
}

// New creates a ContainerExtractor.
func New(logger *logging.Logger) *ContainerExtractor {
	return &ContainerExtractor{logger: logger}
}

// Extract reports the metadata of the container in r. size is the payload
// length in bytes and is used to derive the average bitrate of compressed
// formats.
func (e *ContainerExtractor) Extract(r io.ReadSeeker, size int64) (*audio.Metadata, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff content type: %w", err)
	}

	c := lookupContainer(mtype)
	if c == nil {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrUndecodable, mtype.String())
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind payload: %w", err)
	}

	streamer, format, err := c.decode(noClose{r})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, c.name, err)
	}
	defer streamer.Close()

	md := &audio.Metadata{ContentType: mtype.String()}
	if format.NumChannels > 0 {
		md.Channels = audio.Int(format.NumChannels)
	}
	if format.SampleRate > 0 {
		md.SampleRate = audio.Int(int(format.SampleRate))
		if n := streamer.Len(); n > 0 {
			md.Duration = audio.Float(format.SampleRate.D(n).Seconds())
		}
	}
	md.Bitrate = bitrate(c, format, size, md.Duration)

	e.readTags(r, md)

	e.logger.Debug("container decoded", "format", c.name, "contentType", md.ContentType, "size", size)
	return md, nil
}

// bitrate is exact for PCM and the average over the whole file otherwise.
func bitrate(c *container, format beep.Format, size int64, duration *float64) *int {
	if c.pcm && format.Precision > 0 && format.NumChannels > 0 && format.SampleRate > 0 {
		return audio.Int(int(format.SampleRate) * format.NumChannels * format.Precision * 8)
	}
	if duration == nil || *duration <= 0 || size <= 0 {
		return nil
	}
	return audio.Int(int(math.Round(float64(size) * 8 / *duration)))
}

func (e *ContainerExtractor) readTags(r io.ReadSeeker, md *audio.Metadata) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return
	}
	tags, err := tag.ReadFrom(r)
	if err != nil {
		e.logger.Debug("no tags read", "error", err)
		return
	}
	md.Title = audio.String(tags.Title())
	md.Artist = audio.String(tags.Artist())
	md.Album = audio.String(tags.Album())
}
