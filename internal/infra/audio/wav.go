package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-audio/wav"
)

// PCM is decoded 16-bit interleaved audio.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// EncodeWAV wraps mono 16-bit samples in a canonical 44-byte RIFF header.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// DecodeWAV reads a 16-bit PCM WAV payload.
func DecodeWAV(data []byte) (PCM, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return PCM{}, errors.New("not a valid wav payload")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("decoding pcm: %w", err)
	}

	if dec.BitDepth != 16 {
		return PCM{}, fmt.Errorf("unsupported bit depth %d", dec.BitDepth)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	return PCM{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}
