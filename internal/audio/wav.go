package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// EncodeWAV wraps a decoded Buffer in a PCM16LE WAV container.
func EncodeWAV(buf *Buffer) ([]byte, error) {
	var out bytes.Buffer
	if err := WriteWAVTo(&out, buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteWAVTo re-quantizes a Buffer to PCM16LE and writes it to out as a WAV
// stream.
func WriteWAVTo(out io.Writer, buf *Buffer) error {
	pcm, err := EncodePCM16(buf)
	if err != nil {
		return err
	}
	return WriteWAVPCM16LETo(out, pcm, buf.SampleRate, buf.ChannelCount())
}

// WriteWAVPCM16LETo writes raw interleaved PCM16LE bytes to out as a WAV
// stream.
func WriteWAVPCM16LETo(out io.Writer, pcm []byte, sampleRate, numChannels int) error {
	const (
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	if numChannels <= 0 {
		numChannels = 1
	}

	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	w := bufio.NewWriter(out)

	// RIFF header.
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk.
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(audioFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(numChannels)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	// data chunk.
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	return w.Flush()
}
