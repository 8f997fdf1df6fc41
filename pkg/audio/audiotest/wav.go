// Package audiotest builds audio payloads for tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"time"
)

// WAV returns a PCM RIFF/WAVE file of silence with the given layout.
func WAV(sampleRate, channels, bitsPerSample int, duration time.Duration) []byte {
	frames := int(duration * time.Duration(sampleRate) / time.Second)
	blockAlign := channels * bitsPerSample / 8
	dataSize := frames * blockAlign

	buf := new(bytes.Buffer)
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

// ShortClip is half a second of 8 kHz mono 16-bit silence.
func ShortClip() []byte {
	return WAV(8000, 1, 16, 500*time.Millisecond)
}

// PlainText is a payload that no audio decoder accepts.
func PlainText() []byte {
	return []byte("this is definitely not audio, just some plain text\n")
}
