package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// Recorder captures d of microphone audio and returns its transcript.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) (string, error)
}

// Voice is the part of the Mouth the Ear needs: it silences speech when
// the wake word is heard and waits for speech to end before recording.
type Voice interface {
	Say(text string, p Priority)
	Interrupt()
	IsSpeaking() bool
	QueueLen() int
}

var _ Voice = (*Mouth)(nil)

// DefaultWakeWords are matched case-insensitively anywhere in a clip.
// Whisper often hears "otto" as "auto".
var DefaultWakeWords = []string{
	"hey otto",
	"okay otto",
	"hey auto",
	"otto",
}

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithWakeWords replaces DefaultWakeWords. Longer phrases should come first.
func WithWakeWords(words ...string) EarOption {
	return func(e *Ear) { e.wake = words }
}

// WithProbeDuration sets the clip length used while waiting for the wake word.
func WithProbeDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.probe = d }
}

// WithChunkDuration sets the clip length used while capturing a command.
func WithChunkDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.chunk = d }
}

// WithListenTimeout bounds how long a command may take.
func WithListenTimeout(d time.Duration) EarOption {
	return func(e *Ear) { e.timeout = d }
}

// WithVoice lets the Ear interrupt and wait on speech output.
func WithVoice(v Voice) EarOption {
	return func(e *Ear) { e.voice = v }
}

// WithExternalWake makes the Ear wait for Wake instead of transcribing
// probes, for use with a dedicated wake word detector.
func WithExternalWake() EarOption {
	return func(e *Ear) { e.external = true }
}

// Ear turns speech into commands. While dormant it transcribes short
// probes and discards anything without a wake word. Once woken it
// records chunks until the speaker goes quiet, then sends the combined
// text on C.
type Ear struct {
	rec   Recorder
	voice Voice
	log   *logger.Logger

	wake    []string
	wakeRE  *regexp.Regexp
	probe   time.Duration
	chunk   time.Duration
	timeout time.Duration
	grace   time.Duration
	idle    time.Duration

	mu    sync.Mutex
	muted bool

	external bool
	woken    chan struct{}

	out chan string
}

// NewEar builds an Ear reading from rec.
func NewEar(rec Recorder, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		rec:     rec,
		log:     log,
		wake:    DefaultWakeWords,
		probe:   3 * time.Second,
		chunk:   time.Second,
		timeout: 15 * time.Second,
		grace:   500 * time.Millisecond,
		idle:    200 * time.Millisecond,
		woken:   make(chan struct{}, 1),
		out:     make(chan string, 8),
	}
	for _, opt := range opts {
		opt(e)
	}
	alts := make([]string, len(e.wake))
	for i, w := range e.wake {
		alts[i] = regexp.QuoteMeta(w)
	}
	e.wakeRE = regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b[,.!?]?`)
	return e
}

// C delivers recognised commands, wake word removed.
func (e *Ear) C() <-chan string { return e.out }

// Mute pauses recording until Unmute.
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
}

// Unmute resumes recording.
func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
}

func (e *Ear) isMuted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// Wake starts a capture as if the wake word had been heard. Only an Ear
// built WithExternalWake waits for it; wakes while muted are dropped.
func (e *Ear) Wake() {
	select {
	case e.woken <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled.
func (e *Ear) Run(ctx context.Context) {
	e.log.Info("ear: started (wake=%v)", e.wake)
	defer e.log.Info("ear: stopped")

	for ctx.Err() == nil {
		var (
			cmd string
			ok  bool
		)
		switch {
		case e.external:
			cmd, ok = e.awaitWake(ctx)
		case e.isMuted() || e.talking():
			sleep(ctx, e.idle)
			continue
		default:
			cmd, ok = e.listen(ctx)
		}
		if ok {
			select {
			case e.out <- cmd:
			case <-ctx.Done():
			}
		}
	}
}

// listen runs one dormant probe and, if woken, one capture.
func (e *Ear) listen(ctx context.Context) (string, bool) {
	heard := e.record(ctx, e.probe)
	if heard == "" || e.talking() {
		// Audio recorded over our own speech is unusable.
		return "", false
	}

	rest, woke := e.afterWakeWord(heard)
	if !woke {
		return "", false
	}
	e.log.Info("ear: wake word in %q", heard)
	return e.woke(ctx, rest)
}

// awaitWake blocks for an external Wake and then captures a command.
func (e *Ear) awaitWake(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case <-e.woken:
	}
	if e.isMuted() {
		return "", false
	}
	e.log.Info("ear: woken by detector")
	return e.woke(ctx, "")
}

// woke silences speech and returns rest if it already holds a command,
// otherwise acknowledges and captures one.
func (e *Ear) woke(ctx context.Context, rest string) (string, bool) {
	if e.voice != nil {
		e.voice.Interrupt()
	}

	if rest = cleanTranscription(rest); rest != "" {
		return rest, true
	}

	if e.voice != nil {
		e.voice.Say(LineListening(), PriorityCritical)
		for e.talking() && ctx.Err() == nil {
			sleep(ctx, e.idle/2)
		}
	}
	sleep(ctx, e.grace)

	cmd := e.capture(ctx)
	if cmd == "" {
		e.log.Debug("ear: woke but heard nothing")
		return "", false
	}
	e.log.Info("ear: command %q", cmd)
	return cmd, true
}

// capture records chunks until silence or the listen timeout. More
// silence is tolerated before the first word than after it.
func (e *Ear) capture(ctx context.Context) string {
	const (
		silentBefore = 4
		silentAfter  = 2
	)
	deadline := time.Now().Add(e.timeout)
	var parts []string
	silent := 0

	for ctx.Err() == nil && time.Now().Before(deadline) {
		chunk := e.record(ctx, e.chunk)
		if chunk == "" {
			silent++
			if (len(parts) == 0 && silent >= silentBefore) || (len(parts) > 0 && silent >= silentAfter) {
				break
			}
			continue
		}
		silent = 0
		if chunk = e.removeWakeWords(chunk); chunk != "" {
			parts = append(parts, chunk)
		}
	}
	return strings.Join(parts, " ")
}

func (e *Ear) record(ctx context.Context, d time.Duration) string {
	text, err := e.rec.Record(ctx, d)
	if err != nil {
		if ctx.Err() == nil {
			e.log.Warn("ear: %v", err)
			sleep(ctx, 2*time.Second)
		}
		return ""
	}
	return cleanTranscription(text)
}

func (e *Ear) talking() bool {
	return e.voice != nil && (e.voice.IsSpeaking() || e.voice.QueueLen() > 0)
}

// afterWakeWord finds the first wake word in text and returns what
// follows it. woke is false when no wake word is present.
func (e *Ear) afterWakeWord(text string) (rest string, woke bool) {
	lower := strings.ToLower(text)
	for _, w := range e.wake {
		if i := strings.Index(lower, strings.ToLower(w)); i >= 0 {
			if end := i + len(w); end < len(text) {
				rest = text[end:]
			}
			return strings.TrimLeft(rest, " ,.!?\t"), true
		}
	}
	return "", false
}

// removeWakeWords drops repeated wake words from a command chunk.
func (e *Ear) removeWakeWords(text string) string {
	return collapseSpaces(e.wakeRE.ReplaceAllString(text, ""))
}

var (
	// Whisper annotations: [BLANK_AUDIO], (keyboard clicking), [Music].
	annotation = regexp.MustCompile(`[\(\[][A-Za-z_][A-Za-z_\s]*[\)\]]`)
	// Timestamps: [00:00:00.000 --> 00:00:02.000]
	timestamp = regexp.MustCompile(`\[\d{2}:\d{2}[:.\d]*\s*-->\s*\d{2}:\d{2}[:.\d]*\]`)
	spaces    = regexp.MustCompile(`\s+`)
)

// Whole-clip transcripts whisper produces from silence.
var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"the end.":                true,
}

// cleanTranscription strips whisper artifacts and returns "" for clips
// that contain only noise.
func cleanTranscription(s string) string {
	s = timestamp.ReplaceAllString(s, " ")
	s = annotation.ReplaceAllString(s, " ")
	s = collapseSpaces(s)
	if hallucinations[strings.ToLower(s)] || strings.Trim(s, " ,.!?") == "" {
		return ""
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// WhisperRecorder records through the sklyt/whisper transcriber, which
// shells out to a local whisper.cpp binary.
type WhisperRecorder struct {
	bin     string
	model   string
	tempDir string
	log     *logger.Logger
}

// NewWhisperRecorder checks that bin is on PATH.
func NewWhisperRecorder(bin, model, tempDir string, log *logger.Logger) (*WhisperRecorder, error) {
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("whisper binary %q: %w", bin, err)
	}
	return &WhisperRecorder{bin: bin, model: model, tempDir: tempDir, log: log}, nil
}

// Record captures d of audio. The transcriber reports its text through
// a callback once stopped.
func (w *WhisperRecorder) Record(ctx context.Context, d time.Duration) (string, error) {
	done := make(chan string, 1)
	verbose := w.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(w.bin, w.model, w.tempDir, "wav", func(text string) {
		select {
		case done <- text:
		default:
		}
	}, verbose)
	if err != nil {
		return "", fmt.Errorf("transcriber: %w", err)
	}
	if err := t.Start(); err != nil {
		return "", fmt.Errorf("recording: %w", err)
	}

	sleep(ctx, d)
	t.Stop()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return awaitTranscript(ctx, done, transcribeTimeout)
}

// transcribeTimeout bounds the wait for whisper after recording stops.
const transcribeTimeout = 30 * time.Second

// ErrTranscribeTimeout is returned when whisper never reports a transcript.
var ErrTranscribeTimeout = errors.New("transcription timed out")

// awaitTranscript waits for the transcriber callback, giving up when ctx
// ends or after timeout.
func awaitTranscript(ctx context.Context, done <-chan string, timeout time.Duration) (string, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case text := <-done:
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.C:
		return "", ErrTranscribeTimeout
	}
}
