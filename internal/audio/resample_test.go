package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func sine(rate int, freq float64, n int) []byte {
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(math.Sin(2*math.Pi*freq*float64(i)/float64(rate)) * 16000)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func TestResampleEmptyInput(t *testing.T) {
	out := Resample(nil, 48000, 16000)
	if len(out) != 0 {
		t.Errorf("Expected empty output for empty input, got %d bytes", len(out))
	}
}

func TestResampleLengthRatio(t *testing.T) {
	in := sine(48000, 440, 4800) // 100ms at 48kHz
	out := Resample(in, 48000, 16000)

	wantSamples := 4800 * 16000 / 48000
	gotSamples := len(out) / 2
	if gotSamples < wantSamples-1 || gotSamples > wantSamples+1 {
		t.Errorf("Expected ~%d samples, got %d", wantSamples, gotSamples)
	}
}

func TestResampleDeterministic(t *testing.T) {
	in := sine(48000, 440, 960)
	first := Resample(in, 48000, 16000)
	second := Resample(in, 48000, 16000)
	if !bytes.Equal(first, second) {
		t.Error("Resample is not deterministic for identical input")
	}
}

func TestResampleSameRatePassthrough(t *testing.T) {
	in := sine(16000, 200, 160)
	out := Resample(in, 16000, 16000)
	if !bytes.Equal(in, out) {
		t.Error("Expected identical output when rates match")
	}
}

func TestResampleClipsAtFullScale(t *testing.T) {
	in := make([]byte, 8)
	fullScale := int16(-32768)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint16(in[i*2:], uint16(fullScale))
	}
	out := Resample(in, 48000, 16000)
	for i := 0; i < len(out)/2; i++ {
		s := int16(binary.LittleEndian.Uint16(out[i*2:]))
		if s < -32767 {
			t.Errorf("Sample %d below clip floor: %d", i, s)
		}
	}
}
