package voiceio

import (
	"context"
	"sync"

	"github.com/kwabenadarko/navicare/internal/audio"
)

// ChunkSink receives WAV-framed audio chunks, ordered, with final marking
// the last chunk of an utterance.
type ChunkSink func(chunk []byte, final bool) error

const defaultChunkFrames = 4800

// StreamDevice frames decoded audio as a WAV file and hands it to a sink in
// fixed-size chunks. The websocket surface uses it to forward assistant
// speech to the client.
type StreamDevice struct {
	sink        ChunkSink
	chunkFrames int

	mu     sync.Mutex
	closed bool
}

func NewStreamDevice(sink ChunkSink) *StreamDevice {
	return &StreamDevice{sink: sink, chunkFrames: defaultChunkFrames}
}

func (d *StreamDevice) Play(ctx context.Context, buf *audio.Buffer) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDeviceClosed
	}
	d.mu.Unlock()

	wav, err := audio.EncodeWAV(buf)
	if err != nil {
		return err
	}

	chunkBytes := d.chunkFrames * buf.ChannelCount() * 2
	if chunkBytes <= 0 {
		chunkBytes = len(wav)
	}
	for off := 0; off < len(wav); off += chunkBytes {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.mu.Lock()
		closed := d.closed
		d.mu.Unlock()
		if closed {
			return ErrDeviceClosed
		}

		end := off + chunkBytes
		if end > len(wav) {
			end = len(wav)
		}
		if err := d.sink(wav[off:end], end == len(wav)); err != nil {
			return err
		}
	}
	return nil
}

func (d *StreamDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
