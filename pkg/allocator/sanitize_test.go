package allocator_test

import (
	"runtime"
	"testing"

	"github.com/kdeps/audiodepot/pkg/allocator"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"clip.wav", "clip.wav"},
		{"My Song.mp3", "My_Song.mp3"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\take 1.wav`, "C_Users_me_take_1.wav"},
		{"café.flac", "cafe.flac"},
		{"  spaced   out .ogg", "spaced_out_.ogg"},
		{"rock&roll!.wav", "rockroll.wav"},
		{".hidden.wav", "hidden.wav"},
		{"CON.wav", "CON.wav"},
		{"nul", "nul"},
		{"日本語", ""},
		{"", ""},
		{"../", ""},
	}

	if runtime.GOOS == "windows" {
		t.Skip("device names are prefixed on windows; see TestSanitizeWindowsDeviceNames")
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, allocator.Sanitize(tt.input))
		})
	}
}
