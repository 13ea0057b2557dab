package audio

import "encoding/binary"

// Resample converts a frame of little-endian 16-bit mono PCM from one sample
// rate to another by linear interpolation. Samples are normalized to [-1, 1],
// interpolated, and rescaled with clipping at ±32767. The conversion is
// deterministic; an empty frame yields an empty frame.
func Resample(pcm []byte, fromRate, toRate int) []byte {
	if len(pcm) == 0 || fromRate == toRate {
		out := make([]byte, len(pcm))
		copy(out, pcm)
		return out
	}

	samples := bytesToSamples(pcm)
	resampled := resampleSamples(samples, fromRate, toRate)
	return samplesToBytes(resampled)
}

func resampleSamples(in []int16, fromRate, toRate int) []int16 {
	if len(in) == 0 {
		return nil
	}

	outLen := len(in) * toRate / fromRate
	if outLen == 0 {
		outLen = 1
	}

	step := float64(fromRate) / float64(toRate)
	out := make([]int16, outLen)
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(idx)
		s0 := float64(in[idx]) / 32768.0
		s1 := float64(in[idx+1]) / 32768.0
		out[i] = clampSample((s0 + (s1-s0)*frac) * 32767.0)
	}
	return out
}

func clampSample(v float64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32767:
		return -32767
	default:
		return int16(v)
	}
}

func bytesToSamples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
