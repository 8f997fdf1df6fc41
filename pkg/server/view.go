package server

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

const indexTemplate = "index.html"

var viewFuncs = template.FuncMap{
	"duration":   formatDuration,
	"bitrate":    formatBitrate,
	"sampleRate": formatSampleRate,
	"count":      formatCount,
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(viewFuncs).ParseFS(templateFS, "templates/*.html"))
}

func formatDuration(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	d := time.Duration(math.Round(*seconds*1000)) * time.Millisecond
	return d.String()
}

func formatBitrate(bps *int) string {
	if bps == nil {
		return "-"
	}
	return humanize.SIWithDigits(float64(*bps), 1, "bps")
}

func formatSampleRate(hz *int) string {
	if hz == nil {
		return "-"
	}
	return humanize.SIWithDigits(float64(*hz), 1, "Hz")
}

func formatCount(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
