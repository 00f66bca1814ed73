package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

var _ AudioPlayer = (*Player)(nil)

// Player plays WAV clips through the system audio device with oto.
type Player struct {
	ctx *oto.Context
	log *logger.Logger

	mu     sync.Mutex
	active *oto.Player
}

// NewPlayer opens the audio device at SampleRate/ChannelCount. oto allows
// one context per process, so call this once.
func NewPlayer(log *logger.Logger) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio device: %w", err)
	}
	<-ready
	log.Debug("audio player ready (%d Hz, %d ch)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play blocks until the clip finishes or Stop is called.
func (p *Player) Play(wav []byte) error {
	pcm, format, err := decodeWAV(wav)
	if err != nil {
		return err
	}
	if format.rate != SampleRate || format.channels != ChannelCount || format.bits != BitDepth {
		return fmt.Errorf("%w: got %d Hz %d ch %d bit", ErrWAVFormat, format.rate, format.channels, format.bits)
	}

	op := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.mu.Lock()
	p.active = op
	p.mu.Unlock()

	op.Play()
	for op.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()
	return op.Close()
}

// Stop pauses the active clip, which ends its Play call.
func (p *Player) Stop() {
	p.mu.Lock()
	op := p.active
	p.mu.Unlock()
	if op != nil {
		op.Pause()
	}
}

var (
	// ErrNotWAV is returned for data without a RIFF/WAVE header or data chunk.
	ErrNotWAV = errors.New("not a WAV file")
	// ErrWAVFormat is returned when a clip does not match the device format.
	ErrWAVFormat = errors.New("unsupported WAV format")
)

type wavFormat struct {
	channels int
	rate     int
	bits     int
}

// decodeWAV walks the RIFF chunks and returns the PCM payload along with
// the fmt chunk. Tools that stream to a pipe write a bogus data size, so
// the payload is cut at the end of the buffer.
func decodeWAV(wav []byte) ([]byte, wavFormat, error) {
	var format wavFormat
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, format, ErrNotWAV
	}

	for pos := 12; pos+8 <= len(wav); {
		id := string(wav[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if body+16 > len(wav) {
				return nil, format, ErrNotWAV
			}
			format.channels = int(binary.LittleEndian.Uint16(wav[body+2:]))
			format.rate = int(binary.LittleEndian.Uint32(wav[body+4:]))
			format.bits = int(binary.LittleEndian.Uint16(wav[body+14:]))
		case "data":
			end := body + size
			if size < 0 || end > len(wav) || end < body {
				end = len(wav)
			}
			return wav[body:end], format, nil
		}

		pos = body + size + size%2
		if pos < body {
			break
		}
	}
	return nil, format, ErrNotWAV
}
