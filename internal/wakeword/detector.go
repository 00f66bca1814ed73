// Package wakeword detects a spoken wake word on the microphone with the
// openWakeWord ONNX chain (melspectrogram, embedding, wakeword). Audio
// is captured at 16 kHz through miniaudio and scored every 80 ms.
package wakeword

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// Config names the model files and tuning of a Detector.
type Config struct {
	WakewordModel  string // e.g. "models/hey_otto.onnx"
	MelspecModel   string
	EmbeddingModel string
	OnnxLib        string // ONNX Runtime shared library

	Threshold float64       // default 0.3
	Cooldown  time.Duration // default 1.5s
}

func (c *Config) defaults() {
	if c.Threshold <= 0 {
		c.Threshold = 0.3
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 1500 * time.Millisecond
	}
}

// Check reports every configured file that is missing.
func (c Config) Check() error {
	var errs []error
	for _, f := range []struct{ what, path string }{
		{"wakeword model", c.WakewordModel},
		{"melspectrogram model", c.MelspecModel},
		{"embedding model", c.EmbeddingModel},
		{"onnx runtime", c.OnnxLib},
	} {
		if f.path == "" {
			errs = append(errs, fmt.Errorf("%s: no path", f.what))
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.what, err))
		}
	}
	return errors.Join(errs...)
}

// Detector listens continuously and calls onWake on each detection.
type Detector struct {
	cfg    Config
	onWake func()
	log    *logger.Logger

	mu     sync.Mutex
	paused bool
	stale  bool // set by Resume; the pipeline is flushed once
}

// New creates a Detector. Call Run to start listening.
func New(cfg Config, onWake func(), log *logger.Logger) *Detector {
	cfg.defaults()
	return &Detector{cfg: cfg, onWake: onWake, log: log}
}

// Pause stops detection, e.g. while the tutor is speaking.
func (d *Detector) Pause() {
	d.mu.Lock()
	d.paused = true
	d.mu.Unlock()
}

// Resume re-enables detection after Pause.
func (d *Detector) Resume() {
	d.mu.Lock()
	if d.paused {
		d.stale = true
	}
	d.paused = false
	d.mu.Unlock()
}

// Paused reports whether detection is paused.
func (d *Detector) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

// takeStale reports once whether Resume has run since the last call.
func (d *Detector) takeStale() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stale
	d.stale = false
	return s
}

// PauseWhile polls busy every interval and pauses detection while it
// returns true. It blocks until ctx is cancelled.
func (d *Detector) PauseWhile(ctx context.Context, busy func() bool, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if busy() {
				d.Pause()
			} else if d.Paused() {
				d.Resume()
			}
		}
	}
}

// Run loads the models, opens the capture device and scores audio until
// ctx is cancelled.
func (d *Detector) Run(ctx context.Context) error {
	d.log.Debug("wakeword: loading onnx runtime %s", d.cfg.OnnxLib)
	ort.SetSharedLibraryPath(d.cfg.OnnxLib)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx runtime: %w", err)
	}
	defer ort.DestroyEnvironment()

	mel, err := newStage(d.cfg.MelspecModel, ort.NewShape(1, chunkSamples), ort.NewShape(1, 1, nMelFrames, melBins))
	if err != nil {
		return fmt.Errorf("melspectrogram: %w", err)
	}
	defer mel.destroy()
	embed, err := newStage(d.cfg.EmbeddingModel, ort.NewShape(1, melWindowSize, melBins, 1), ort.NewShape(1, 1, 1, embeddingDim))
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	defer embed.destroy()
	score, err := newStage(d.cfg.WakewordModel, ort.NewShape(1, nEmbedFrames, embeddingDim), ort.NewShape(1, 1))
	if err != nil {
		return fmt.Errorf("wakeword: %w", err)
	}
	defer score.destroy()

	p := newPipeline(mel, embed, score, newTrigger(d.cfg.Threshold, d.cfg.Cooldown))

	frames := make(chan []int16, 32)
	var drops atomic.Int64
	stop, err := capture(frames, &drops)
	if err != nil {
		return err
	}
	defer stop()
	d.log.Info("wakeword: listening (model=%s, threshold=%.2f)", d.cfg.WakewordModel, d.cfg.Threshold)

	for {
		select {
		case <-ctx.Done():
			if n := drops.Load(); n > 0 {
				d.log.Debug("wakeword: dropped %d audio frames", n)
			}
			return ctx.Err()
		case frame := <-frames:
			if d.Paused() {
				continue
			}
			if d.takeStale() {
				p.reset()
			}
			fired, err := p.feed(frame, time.Now())
			if err != nil {
				d.log.Error("wakeword: %v", err)
				p.reset()
				continue
			}
			if fired {
				d.log.Info("wakeword: detected")
				if d.onWake != nil {
					d.onWake()
				}
			}
		}
	}
}

// capture starts a 16 kHz mono capture device that sends frames without
// blocking; frames that do not fit are counted in drops.
func capture(frames chan<- []int16, drops *atomic.Int64) (stop func(), err error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.SampleRate = sampleRate
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, raw []byte, _ uint32) {
			pcm := make([]int16, len(raw)/2)
			for i := range pcm {
				pcm[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
			}
			select {
			case frames <- pcm:
			default:
				drops.Add(1)
			}
		},
	})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("starting capture: %w", err)
	}

	return func() {
		_ = device.Stop()
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
	}, nil
}

// ortStage runs one ONNX model over tensors bound at construction.
type ortStage struct {
	in   *ort.Tensor[float32]
	out  *ort.Tensor[float32]
	sess *ort.AdvancedSession
}

var _ stage = (*ortStage)(nil)

func newStage(model string, in, out ort.Shape) (*ortStage, error) {
	inT, err := ort.NewEmptyTensor[float32](in)
	if err != nil {
		return nil, err
	}
	outT, err := ort.NewEmptyTensor[float32](out)
	if err != nil {
		inT.Destroy()
		return nil, err
	}
	inInfo, outInfo, err := ort.GetInputOutputInfo(model)
	if err != nil {
		inT.Destroy()
		outT.Destroy()
		return nil, err
	}
	sess, err := ort.NewAdvancedSession(model,
		[]string{inInfo[0].Name}, []string{outInfo[0].Name},
		[]ort.Value{inT}, []ort.Value{outT}, nil)
	if err != nil {
		inT.Destroy()
		outT.Destroy()
		return nil, err
	}
	return &ortStage{in: inT, out: outT, sess: sess}, nil
}

func (s *ortStage) run(in []float32) ([]float32, error) {
	copy(s.in.GetData(), in)
	if err := s.sess.Run(); err != nil {
		return nil, err
	}
	return s.out.GetData(), nil
}

func (s *ortStage) destroy() {
	s.sess.Destroy()
	s.in.Destroy()
	s.out.Destroy()
}
