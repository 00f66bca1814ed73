package speech

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// AudioPlayer plays one WAV clip at a time. Play blocks until the clip
// ends or Stop is called.
type AudioPlayer interface {
	Play(wav []byte) error
	Stop()
}

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithChunkSize sets the approximate character count per synthesis call.
// Longer text is split at sentence ends and synthesized concurrently.
// 0 disables chunking.
func WithChunkSize(n int) MouthOption {
	return func(m *Mouth) { m.chunkSize = n }
}

// WithCache replaces the default in-memory audio cache.
func WithCache(c *AudioCache) MouthOption {
	return func(m *Mouth) { m.cache = c }
}

// WithMouthClock overrides time.Now for queue timestamps.
func WithMouthClock(now func() time.Time) MouthOption {
	return func(m *Mouth) { m.now = now }
}

// Mouth serializes speech: requests are queued by priority, split into
// chunks, synthesized (in parallel, through the cache) and played one
// after another. Only one request is audible at a time.
type Mouth struct {
	synth  Synthesizer
	player AudioPlayer
	cache  *AudioCache
	log    *logger.Logger
	now    func() time.Time

	chunkSize int
	wake      chan struct{}

	mu          sync.Mutex
	queue       []SpeechRequest
	speaking    bool
	interrupted bool
	last        string
}

// NewMouth builds a dispatcher. Without WithCache it caches in memory only.
func NewMouth(synth Synthesizer, player AudioPlayer, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		synth:     synth,
		player:    player,
		log:       log,
		now:       time.Now,
		chunkSize: 180,
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = NewAudioCache(synth.Voice(), "", false, log)
	}
	return m
}

// Say queues text. Anything at PriorityNormal or above drops pending
// PriorityLow requests. Non-blocking.
func (m *Mouth) Say(text string, priority Priority) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	m.mu.Lock()
	if priority >= PriorityNormal {
		kept := m.queue[:0]
		for _, r := range m.queue {
			if r.Priority > PriorityLow {
				kept = append(kept, r)
			}
		}
		if d := len(m.queue) - len(kept); d > 0 {
			m.log.Debug("mouth: dropped %d stale nudges", d)
		}
		m.queue = kept
	}
	m.queue = append(m.queue, SpeechRequest{Text: text, Priority: priority, QueuedAt: m.now()})
	n := len(m.queue)
	m.mu.Unlock()

	m.log.Debug("mouth: queued p=%d len=%d: %s", priority, n, truncate(text, 60))
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Interrupt clears the queue and stops the clip that is playing. A
// request mid-way through its chunks is abandoned.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue = m.queue[:0]
	m.interrupted = true
	m.mu.Unlock()
	m.player.Stop()
	m.log.Debug("mouth: interrupted")
}

// IsSpeaking reports whether a request is being synthesized or played.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// QueueLen returns the number of pending requests.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// LastSpoken returns the most recent request longer than a short ack.
func (m *Mouth) LastSpoken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Cache exposes the audio cache for stats.
func (m *Mouth) Cache() *AudioCache { return m.cache }

// Start runs the dispatch loop until ctx is cancelled. Non-blocking.
func (m *Mouth) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				m.log.Info("mouth stopped")
				return
			case <-m.wake:
				m.drain(ctx)
			}
		}
	}()
	m.log.Info("mouth started")
}

func (m *Mouth) drain(ctx context.Context) {
	for ctx.Err() == nil {
		req, ok := m.next()
		if !ok {
			return
		}
		m.log.Debug("mouth: speaking p=%d waited=%s", req.Priority, m.now().Sub(req.QueuedAt).Round(time.Millisecond))
		m.speak(ctx, req.Text)

		m.mu.Lock()
		m.speaking = false
		if len(req.Text) > 20 {
			m.last = req.Text
		}
		m.mu.Unlock()
	}
}

// next pops the oldest request of the highest priority and marks the
// mouth as speaking.
func (m *Mouth) next() (SpeechRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interrupted = false
	if len(m.queue) == 0 {
		return SpeechRequest{}, false
	}
	best := 0
	for i, r := range m.queue {
		if r.Priority > m.queue[best].Priority {
			best = i
		}
	}
	req := m.queue[best]
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	m.speaking = true
	return req, true
}

func (m *Mouth) speak(ctx context.Context, text string) {
	chunks := m.splitChunks(text)
	clips := make([][]byte, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			audio, err := m.synthesize(ctx, chunk)
			if err != nil {
				m.log.Error("mouth: chunk %d: %v", i, err)
				return
			}
			clips[i] = audio
		}()
	}
	wg.Wait()

	for i, clip := range clips {
		if clip == nil || ctx.Err() != nil || m.wasInterrupted() {
			continue
		}
		if err := m.player.Play(clip); err != nil {
			m.log.Error("mouth: playing chunk %d: %v", i, err)
		}
	}
}

func (m *Mouth) wasInterrupted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interrupted
}

func (m *Mouth) synthesize(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := m.cache.Get(text); ok {
		return audio, nil
	}
	audio, err := m.synth.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	m.cache.Put(text, audio)
	return audio, nil
}

// Prefetch synthesizes texts into the cache in the background so a later
// Say plays without delay. Already cached chunks are skipped.
func (m *Mouth) Prefetch(ctx context.Context, texts ...string) {
	for _, text := range texts {
		for _, chunk := range m.splitChunks(strings.TrimSpace(text)) {
			if chunk == "" || m.cache.Has(chunk) {
				continue
			}
			go func(t string) {
				if _, err := m.synthesize(ctx, t); err != nil {
					m.log.Warn("prefetch: %v", err)
				}
			}(chunk)
		}
	}
}

// splitChunks groups sentences into chunks of about m.chunkSize bytes.
func (m *Mouth) splitChunks(text string) []string {
	if m.chunkSize <= 0 || len(text) <= m.chunkSize {
		return []string{text}
	}
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, s := range splitSentences(text) {
		if cur.Len() > 0 && cur.Len()+len(s) > m.chunkSize {
			flush()
		}
		cur.WriteString(s)
	}
	flush()
	return out
}

// splitSentences cuts after . ! or ? and keeps the trailing whitespace
// with the sentence it follows.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
			out = append(out, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
