package allocator

import (
	"regexp"
	"runtime"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

	windowsDeviceNames = map[string]struct{}{
		"CON": {}, "AUX": {}, "COM1": {}, "COM2": {}, "COM3": {}, "COM4": {},
		"LPT1": {}, "LPT2": {}, "LPT3": {}, "PRN": {}, "NUL": {},
	}
)

// Sanitize turns a client-supplied filename into a flat, ASCII-only name that
// is safe to join to the storage root. It returns "" when nothing usable is
// left. On Windows, device names such as CON or NUL get a "_" prefix.
func Sanitize(filename string) string {
	return sanitize(filename, runtime.GOOS == "windows")
}

func sanitize(filename string, windows bool) string {
	// decompose accents so "é" keeps its "e", then drop everything non-ASCII
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, filename)
	if err != nil {
		return ""
	}

	ascii = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii)
	ascii = strings.Join(strings.Fields(ascii), "_")
	ascii = unsafeChars.ReplaceAllString(ascii, "")
	ascii = strings.Trim(ascii, "._")

	if windows && ascii != "" {
		base, _, _ := strings.Cut(ascii, ".")
		if _, reserved := windowsDeviceNames[strings.ToUpper(base)]; reserved {
			ascii = "_" + ascii
		}
	}
	return ascii
}
