// Package audio holds the data model shared by the store, the ingestion
// pipeline and the query service.
package audio

import (
	"sort"
	"strings"
)

// Record is one successfully ingested file. Container fields the decoder
// does not report stay nil and serialise as null.
type Record struct {
	Filename    string   `json:"filename"`
	Duration    *float64 `json:"duration"`
	Bitrate     *int     `json:"bitrate"`
	Channels    *int     `json:"channels"`
	SampleRate  *int     `json:"sample_rate"`
	ContentType string   `json:"content_type,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Artist      *string  `json:"artist,omitempty"`
	Album       *string  `json:"album,omitempty"`
}

// Metadata is what the extractor reports for a decodable container.
type Metadata struct {
	Duration    *float64
	Bitrate     *int
	Channels    *int
	SampleRate  *int
	ContentType string
	Title       *string
	Artist      *string
	Album       *string
}

// NewRecord builds the record committed for filename.
func NewRecord(filename string, md *Metadata) *Record {
	rec := &Record{Filename: filename}
	if md == nil {
		return rec
	}
	rec.Duration = md.Duration
	rec.Bitrate = md.Bitrate
	rec.Channels = md.Channels
	rec.SampleRate = md.SampleRate
	rec.ContentType = md.ContentType
	rec.Title = md.Title
	rec.Artist = md.Artist
	rec.Album = md.Album
	return rec
}

// Filter narrows a listing. Nil bounds are unbounded; range bounds are
// inclusive.
type Filter struct {
	MinDuration *float64
	MaxDuration *float64
	MinBitrate  *int
	MaxBitrate  *int
	Channels    *int
	SampleRate  *int
}

// Filenames returns the filenames of records in order.
func Filenames(records []Record) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Filename)
	}
	return names
}

// SortByFilename orders records by filename, case-insensitively, ascending.
// This is the ordering of every listing page.
func SortByFilename(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return strings.ToLower(records[i].Filename) < strings.ToLower(records[j].Filename)
	})
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v, or nil for the empty string.
func String(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
