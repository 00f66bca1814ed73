package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// Synthesizer turns text into WAV audio matching SampleRate/ChannelCount.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	// Voice names the voice; it is part of every audio cache key.
	Voice() string
}

// CommandSynthesizer runs a local TTS program (espeak-ng, espeak or
// macOS say) that writes a WAV file, and returns the file's bytes.
type CommandSynthesizer struct {
	bin   string
	voice string
	log   *logger.Logger
}

// NewCommandSynthesizer checks that bin is runnable.
func NewCommandSynthesizer(bin, voice string, log *logger.Logger) (*CommandSynthesizer, error) {
	if bin == "" {
		bin = "espeak-ng"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("tts binary %q: %w", bin, err)
	}
	if voice == "" && filepath.Base(path) != "say" {
		voice = DefaultVoice
	}
	log.Debug("tts: using %s (voice %s)", path, voice)
	return &CommandSynthesizer{bin: path, voice: voice, log: log}, nil
}

// Voice returns the configured voice name.
func (s *CommandSynthesizer) Voice() string { return s.voice }

// Synthesize renders text to WAV.
func (s *CommandSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("tts: empty text")
	}

	f, err := os.CreateTemp("", "ottodraw-tts-*.wav")
	if err != nil {
		return nil, fmt.Errorf("tts: temp file: %w", err)
	}
	out := f.Name()
	f.Close()
	defer os.Remove(out)

	cmd := exec.CommandContext(ctx, s.bin, s.args(out, text)...)
	if b, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("tts: %s: %w (%s)", filepath.Base(s.bin), err, strings.TrimSpace(string(b)))
	}

	audio, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("tts: reading output: %w", err)
	}
	s.log.Debug("tts: synthesized %d bytes for %q", len(audio), truncate(text, 40))
	return audio, nil
}

func (s *CommandSynthesizer) args(out, text string) []string {
	return commandArgs(filepath.Base(s.bin), s.voice, out, text)
}

// commandArgs builds the argument list for a known TTS program.
func commandArgs(program, voice, out, text string) []string {
	var args []string
	if voice != "" {
		args = append(args, "-v", voice)
	}
	if program == "say" {
		return append(args, "-o", out, fmt.Sprintf("--data-format=LEI16@%d", SampleRate), text)
	}
	// espeak and espeak-ng write 22050 Hz mono WAV.
	return append(args, "-w", out, text)
}
