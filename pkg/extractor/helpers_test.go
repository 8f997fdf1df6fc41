package extractor

import "github.com/gopxl/beep"

func mp3Format() beep.Format {
	return beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
}

func floatPtr(v float64) *float64 { return &v }
