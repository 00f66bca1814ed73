package wakeword

import (
	"fmt"
	"time"
)

// Shapes of the openWakeWord models.
const (
	sampleRate    = 16000
	chunkSamples  = 1280 // 80 ms @ 16 kHz
	melBins       = 32
	nMelFrames    = 5  // mel frames per chunk
	melWindowSize = 76 // mel frames per embedding
	melStepSize   = 8
	embeddingDim  = 96
	nEmbedFrames  = 16 // embeddings per wakeword score

	// Only the newest recentWindow embeddings are scored; older slots
	// are zeroed so stretches of silence cannot drag the score down.
	recentWindow = 5

	// Detection fires on the max score over this many frames (~400 ms),
	// which absorbs frame alignment jitter around the peak.
	scoreWindowSize = 5
)

// stage is one model in the chain: a fixed-size input produces a
// fixed-size output. The returned slice is only valid until the next run.
type stage interface {
	run(in []float32) ([]float32, error)
}

// trigger turns a stream of scores into detections.
type trigger struct {
	threshold float64
	cooldown  time.Duration

	window []float32
	idx    int
	last   time.Time
}

func newTrigger(threshold float64, cooldown time.Duration) trigger {
	return trigger{threshold: threshold, cooldown: cooldown, window: make([]float32, scoreWindowSize)}
}

// observe records score and reports whether the wake word fired. The
// window is cleared after a detection so one peak fires once.
func (t *trigger) observe(score float32, now time.Time) bool {
	t.window[t.idx%len(t.window)] = score
	t.idx++

	if float64(t.max()) < t.threshold || now.Sub(t.last) <= t.cooldown {
		return false
	}
	t.last = now
	t.clear()
	return true
}

func (t *trigger) max() float32 {
	var m float32
	for _, s := range t.window {
		m = max(m, s)
	}
	return m
}

func (t *trigger) clear() {
	clear(t.window)
	t.idx = 0
}

// pipeline buffers raw audio through the mel, embedding and wakeword
// stages.
type pipeline struct {
	mel, embed, score stage
	trig              trigger

	pcm    []int16
	mels   []float32
	embeds []float32
	input  []float32
	wwIn   []float32
}

func newPipeline(mel, embed, score stage, trig trigger) *pipeline {
	return &pipeline{
		mel:    mel,
		embed:  embed,
		score:  score,
		trig:   trig,
		pcm:    make([]int16, 0, chunkSamples*2),
		mels:   make([]float32, 0, 300*melBins),
		embeds: make([]float32, nEmbedFrames*embeddingDim),
		input:  make([]float32, chunkSamples),
		wwIn:   make([]float32, nEmbedFrames*embeddingDim),
	}
}

// feed consumes samples and reports whether any complete chunk fired.
func (p *pipeline) feed(samples []int16, now time.Time) (bool, error) {
	p.pcm = append(p.pcm, samples...)
	fired := false
	for len(p.pcm) >= chunkSamples {
		for i, v := range p.pcm[:chunkSamples] {
			p.input[i] = float32(v)
		}
		n := copy(p.pcm, p.pcm[chunkSamples:])
		p.pcm = p.pcm[:n]

		ok, err := p.chunk(now)
		if err != nil {
			return fired, err
		}
		fired = fired || ok
	}
	return fired, nil
}

func (p *pipeline) chunk(now time.Time) (bool, error) {
	out, err := p.mel.run(p.input)
	if err != nil {
		return false, fmt.Errorf("melspectrogram: %w", err)
	}
	if len(out) < nMelFrames*melBins {
		return false, fmt.Errorf("melspectrogram: %d values, want %d", len(out), nMelFrames*melBins)
	}
	for _, v := range out[:nMelFrames*melBins] {
		p.mels = append(p.mels, v/10+2)
	}

	fresh := false
	for len(p.mels)/melBins >= melWindowSize {
		emb, err := p.embed.run(p.mels[:melWindowSize*melBins])
		if err != nil {
			return false, fmt.Errorf("embedding: %w", err)
		}
		copy(p.embeds, p.embeds[embeddingDim:])
		copy(p.embeds[(nEmbedFrames-1)*embeddingDim:], emb[:embeddingDim])
		fresh = true

		n := copy(p.mels, p.mels[melStepSize*melBins:])
		p.mels = p.mels[:n]
	}
	if !fresh {
		return false, nil
	}

	pad := (nEmbedFrames - recentWindow) * embeddingDim
	clear(p.wwIn[:pad])
	copy(p.wwIn[pad:], p.embeds[pad:])
	scores, err := p.score.run(p.wwIn)
	if err != nil {
		return false, fmt.Errorf("wakeword: %w", err)
	}
	return p.trig.observe(scores[0], now), nil
}

// reset drops buffered audio and history, e.g. after a pause.
func (p *pipeline) reset() {
	p.pcm = p.pcm[:0]
	p.mels = p.mels[:0]
	clear(p.embeds)
	p.trig.clear()
}
