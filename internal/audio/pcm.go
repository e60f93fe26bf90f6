package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Buffer holds decoded audio as normalized float32 samples, one slice per
// channel. All channels have the same length (the frame count).
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// FrameCount returns the number of frames per channel.
func (b *Buffer) FrameCount() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// ChannelCount returns the number of channels.
func (b *Buffer) ChannelCount() int {
	if b == nil {
		return 0
	}
	return len(b.Channels)
}

// Duration returns the playback duration in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.FrameCount()) / float64(b.SampleRate)
}

// MalformedAudioError reports input that cannot be decoded into a Buffer.
type MalformedAudioError struct {
	Reason string
	Err    error
}

func (e *MalformedAudioError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed audio: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed audio: %s", e.Reason)
}

func (e *MalformedAudioError) Unwrap() error { return e.Err }

// DecodePCM16 decodes base64-encoded PCM16LE interleaved audio into a
// normalized multi-channel Buffer. Each signed 16-bit sample is divided by
// 32768.0, so values span [-1.0, 32767.0/32768.0]; the range is not
// symmetric and no clamping is applied.
//
// Trailing bytes that do not fill a whole frame (2*channelCount bytes) are
// truncated rather than zero-padded.
func DecodePCM16(data string, sampleRateHz, channelCount int) (*Buffer, error) {
	if channelCount <= 0 {
		return nil, &MalformedAudioError{Reason: fmt.Sprintf("channel count must be positive, got %d", channelCount)}
	}
	if sampleRateHz <= 0 {
		return nil, &MalformedAudioError{Reason: fmt.Sprintf("sample rate must be positive, got %d", sampleRateHz)}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, &MalformedAudioError{Reason: "base64 decode failed", Err: err}
	}

	frameBytes := 2 * channelCount
	frameCount := len(raw) / frameBytes
	raw = raw[:frameCount*frameBytes]

	channels := make([][]float32, channelCount)
	for ch := range channels {
		channels[ch] = make([]float32, frameCount)
	}
	for i := 0; i < frameCount; i++ {
		for ch := 0; ch < channelCount; ch++ {
			off := (i*channelCount + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			channels[ch][i] = float32(sample) / 32768.0
		}
	}

	return &Buffer{SampleRate: sampleRateHz, Channels: channels}, nil
}

// EncodePCM16 interleaves a Buffer back into raw PCM16LE bytes. Samples are
// quantized by multiplying by 32768 and clamping to the int16 range; a
// decode/encode round trip reproduces the source integers exactly.
func EncodePCM16(buf *Buffer) ([]byte, error) {
	if buf == nil || len(buf.Channels) == 0 {
		return nil, &MalformedAudioError{Reason: "empty buffer"}
	}
	frames := buf.FrameCount()
	for ch, c := range buf.Channels {
		if len(c) != frames {
			return nil, &MalformedAudioError{Reason: fmt.Sprintf("channel %d length %d, want %d", ch, len(c), frames)}
		}
	}

	out := make([]byte, frames*len(buf.Channels)*2)
	for i := 0; i < frames; i++ {
		for ch := range buf.Channels {
			v := buf.Channels[ch][i] * 32768.0
			if v > 32767 {
				v = 32767
			}
			if v < -32768 {
				v = -32768
			}
			sample := int16(roundHalfAway(v))
			off := (i*len(buf.Channels) + ch) * 2
			binary.LittleEndian.PutUint16(out[off:off+2], uint16(sample))
		}
	}
	return out, nil
}

func roundHalfAway(v float32) int32 {
	if v >= 0 {
		return int32(v + 0.5)
	}
	return int32(v - 0.5)
}
