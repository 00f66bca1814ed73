// Package config collects every runtime knob of the tutor. Values come
// from defaults, then OTTODRAW_* environment variables (optionally read
// from a .env file), then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottodraw/internal/logger"
	"github.com/hammamikhairi/ottodraw/internal/render"
	"github.com/hammamikhairi/ottodraw/internal/resolver"
)

// EnvPrefix prefixes every environment variable the tutor reads.
const EnvPrefix = "OTTODRAW_"

// Config holds the tutor's settings.
type Config struct {
	// Catalog is a JSON asset path; empty uses the embedded catalog.
	Catalog string

	Mode        render.Mode
	Scheme      render.Scheme
	CanvasWidth int
	// ExportDir, when set, receives an SVG and PNG of every rendered step.
	ExportDir string

	Seed                 int64
	MaxDistance          int
	FallbackSize         int
	AutoAcceptSuggestion bool
	AutoAcceptFallback   bool

	NudgeAfter time.Duration

	LogLevel logger.Level
	LogFile  string

	Speech    bool
	TTSBin    string
	Voice     string
	CacheDir  string
	DiskCache bool

	VoiceInput   bool
	WhisperBin   string
	WhisperModel string
	RecordSecs   int

	// WakeModel, when set, replaces the transcribed wake phrase with an
	// openWakeWord ONNX detector. The other Wake* paths feed it.
	WakeModel      string
	MelspecModel   string
	EmbeddingModel string
	OnnxLib        string
	WakeThreshold  float64
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Mode:                 render.ModeColor,
		Scheme:               render.SchemeDark,
		CanvasWidth:          50,
		MaxDistance:          resolver.DefaultMaxDistance,
		FallbackSize:         resolver.DefaultFallbackSize,
		AutoAcceptSuggestion: true,
		NudgeAfter:           2 * time.Minute,
		LogLevel:             logger.LevelNormal,
		LogFile:              ".ottodraw-logs/ottodraw.log",
		Speech:               true,
		TTSBin:               "espeak-ng",
		CacheDir:             ".ottodraw-cache",
		DiskCache:            true,
		WhisperBin:           "whisper-cli",
		WhisperModel:         "bin/ggml-small.bin",
		RecordSecs:           1,
		MelspecModel:         "bin/melspectrogram.onnx",
		EmbeddingModel:       "bin/embedding_model.onnx",
		OnnxLib:              "bin/libonnxruntime.so",
		WakeThreshold:        0.3,
	}
}

// LoadDotEnv reads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// FromEnv overlays OTTODRAW_* variables onto c. lookup is os.LookupEnv
// outside of tests. Every malformed value is reported; valid ones are
// still applied.
func (c *Config) FromEnv(lookup func(string) (string, bool)) error {
	e := env{lookup: lookup}

	e.text("CATALOG", &c.Catalog)
	e.parse("MODE", func(v string) bool {
		m, err := render.ParseMode(v)
		c.Mode = pick(err == nil, m, c.Mode)
		return err == nil
	})
	e.parse("SCHEME", func(v string) bool {
		s, err := render.ParseScheme(v)
		c.Scheme = pick(err == nil, s, c.Scheme)
		return err == nil
	})
	e.number("CANVAS_WIDTH", &c.CanvasWidth)
	e.text("EXPORT_DIR", &c.ExportDir)

	e.parse("SEED", func(v string) bool {
		n, err := strconv.ParseInt(v, 10, 64)
		c.Seed = pick(err == nil, n, c.Seed)
		return err == nil
	})
	e.number("MAX_DISTANCE", &c.MaxDistance)
	e.number("FALLBACK_SIZE", &c.FallbackSize)
	e.flag("AUTO_ACCEPT_SUGGESTION", &c.AutoAcceptSuggestion)
	e.flag("AUTO_ACCEPT_FALLBACK", &c.AutoAcceptFallback)
	e.span("NUDGE_AFTER", &c.NudgeAfter)

	e.parse("LOG_LEVEL", func(v string) bool {
		l, err := parseLevel(v)
		c.LogLevel = pick(err == nil, l, c.LogLevel)
		return err == nil
	})
	e.text("LOG_FILE", &c.LogFile)

	e.flag("SPEECH", &c.Speech)
	e.text("TTS_BIN", &c.TTSBin)
	e.text("VOICE", &c.Voice)
	e.text("CACHE_DIR", &c.CacheDir)
	e.flag("DISK_CACHE", &c.DiskCache)

	e.flag("VOICE_INPUT", &c.VoiceInput)
	e.text("WHISPER_BIN", &c.WhisperBin)
	e.text("WHISPER_MODEL", &c.WhisperModel)
	e.number("RECORD_SECS", &c.RecordSecs)
	e.text("WAKE_MODEL", &c.WakeModel)
	e.text("MELSPEC_MODEL", &c.MelspecModel)
	e.text("EMBEDDING_MODEL", &c.EmbeddingModel)
	e.text("ONNX_LIB", &c.OnnxLib)
	e.parse("WAKE_THRESHOLD", func(v string) bool {
		f, err := strconv.ParseFloat(v, 64)
		c.WakeThreshold = pick(err == nil, f, c.WakeThreshold)
		return err == nil
	})

	return errors.Join(e.errs...)
}

// RegisterFlags binds flags to c's fields. Call after FromEnv so flag
// defaults show the environment's values.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Catalog, "catalog", c.Catalog, "animal catalog JSON (default: embedded)")
	fs.Var(textVar[render.Mode]{&c.Mode, render.ParseMode}, "mode", "render mode: outline or color")
	fs.Var(textVar[render.Scheme]{&c.Scheme, render.ParseScheme}, "scheme", "colour scheme: dark or light")
	fs.IntVar(&c.CanvasWidth, "canvas-width", c.CanvasWidth, "terminal canvas width in cells (0 hides the canvas)")
	fs.StringVar(&c.ExportDir, "export-dir", c.ExportDir, "write an SVG and PNG of every step here")

	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed for suggestions (0 = time based)")
	fs.IntVar(&c.MaxDistance, "max-distance", c.MaxDistance, "largest edit distance accepted as a suggestion")
	fs.IntVar(&c.FallbackSize, "fallback-size", c.FallbackSize, "number of alternatives offered for unknown animals")
	fs.BoolVar(&c.AutoAcceptSuggestion, "auto-suggest", c.AutoAcceptSuggestion, "start close matches without asking")
	fs.BoolVar(&c.AutoAcceptFallback, "auto-fallback", c.AutoAcceptFallback, "start the first alternative for unknown animals")
	fs.DurationVar(&c.NudgeAfter, "nudge-after", c.NudgeAfter, "idle time on a step before a reminder (0 disables)")

	fs.Var(textVar[logger.Level]{&c.LogLevel, parseLevel}, "log-level", "off, normal or verbose")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log file (\"stderr\" logs to the console)")

	fs.BoolVar(&c.Speech, "speech", c.Speech, "speak through a local TTS program")
	fs.StringVar(&c.TTSBin, "tts-bin", c.TTSBin, "TTS program: espeak-ng, espeak or say")
	fs.StringVar(&c.Voice, "voice-name", c.Voice, "TTS voice (default: the program's own)")
	fs.StringVar(&c.CacheDir, "cache-dir", c.CacheDir, "directory for the TTS audio cache")
	fs.BoolVar(&c.DiskCache, "disk-cache", c.DiskCache, "persist new TTS audio to the cache dir")

	fs.BoolVar(&c.VoiceInput, "voice", c.VoiceInput, "enable voice input via local whisper")
	fs.StringVar(&c.WhisperBin, "whisper-bin", c.WhisperBin, "whisper.cpp CLI binary")
	fs.StringVar(&c.WhisperModel, "whisper-model", c.WhisperModel, "whisper GGML model file")
	fs.IntVar(&c.RecordSecs, "record-secs", c.RecordSecs, "seconds per voice recording chunk")
	fs.StringVar(&c.WakeModel, "wake-model", c.WakeModel, "openWakeWord ONNX model (default: whisper wake phrase)")
	fs.StringVar(&c.MelspecModel, "melspec-model", c.MelspecModel, "openWakeWord melspectrogram model")
	fs.StringVar(&c.EmbeddingModel, "embedding-model", c.EmbeddingModel, "openWakeWord embedding model")
	fs.StringVar(&c.OnnxLib, "onnx-lib", c.OnnxLib, "ONNX Runtime shared library")
	fs.Float64Var(&c.WakeThreshold, "wake-threshold", c.WakeThreshold, "wake word score threshold (0-1)")
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.CanvasWidth < 0 {
		errs = append(errs, fmt.Errorf("canvas width %d is negative", c.CanvasWidth))
	}
	if c.MaxDistance < 0 {
		errs = append(errs, fmt.Errorf("max distance %d is negative", c.MaxDistance))
	}
	if c.FallbackSize < 1 || c.FallbackSize > 3 {
		errs = append(errs, fmt.Errorf("fallback size %d must be between 1 and 3", c.FallbackSize))
	}
	if c.VoiceInput && c.RecordSecs < 1 {
		errs = append(errs, fmt.Errorf("record secs %d must be at least 1", c.RecordSecs))
	}
	if c.WakeModel != "" && (c.WakeThreshold <= 0 || c.WakeThreshold >= 1) {
		errs = append(errs, fmt.Errorf("wake threshold %.2f must be between 0 and 1", c.WakeThreshold))
	}
	return errors.Join(errs...)
}

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) get(key string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *env) parse(key string, set func(string) bool) {
	v, ok := e.get(key)
	if !ok || v == "" {
		return
	}
	if !set(strings.ToLower(v)) {
		e.errs = append(e.errs, fmt.Errorf("%s%s: invalid value %q", EnvPrefix, key, v))
	}
}

func (e *env) text(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *env) number(key string, dst *int) {
	e.parse(key, func(v string) bool {
		n, err := strconv.Atoi(v)
		*dst = pick(err == nil, n, *dst)
		return err == nil
	})
}

func (e *env) flag(key string, dst *bool) {
	e.parse(key, func(v string) bool {
		b, err := strconv.ParseBool(v)
		*dst = pick(err == nil, b, *dst)
		return err == nil
	})
}

func (e *env) span(key string, dst *time.Duration) {
	e.parse(key, func(v string) bool {
		d, err := time.ParseDuration(v)
		*dst = pick(err == nil, d, *dst)
		return err == nil
	})
}

func pick[T any](ok bool, v, def T) T {
	if ok {
		return v
	}
	return def
}

func parseLevel(s string) (logger.Level, error) {
	l, ok := logger.ParseLevel(s)
	if !ok {
		return l, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// textVar adapts a parse function and a Stringer to flag.Value.
type textVar[T fmt.Stringer] struct {
	dst   *T
	parse func(string) (T, error)
}

func (v textVar[T]) String() string {
	if v.dst == nil {
		return ""
	}
	return (*v.dst).String()
}

func (v textVar[T]) Set(s string) error {
	t, err := v.parse(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return err
	}
	*v.dst = t
	return nil
}
