// Package speech gives the tutor a voice: local text-to-speech through a
// priority queue, and wake-word driven speech-to-text through whisper.
package speech

import (
	"context"

	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

var (
	_ domain.SpeechProvider = (*NoOp)(nil)
	_ domain.SpeechProvider = (*Provider)(nil)
)

// NoOp is the provider used when voice is disabled.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op speech provider.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Listen always fails with ErrNotImplemented.
func (n *NoOp) Listen(ctx context.Context) (string, error) {
	return "", domain.ErrNotImplemented
}

// Speak logs the text.
func (n *NoOp) Speak(ctx context.Context, text string) error {
	n.log.Debug("speech off: %q", text)
	return nil
}

// Provider joins an Ear and a Mouth behind domain.SpeechProvider. Either
// half may be nil.
type Provider struct {
	ear   *Ear
	mouth *Mouth
}

// NewProvider combines ear and mouth.
func NewProvider(ear *Ear, mouth *Mouth) *Provider {
	return &Provider{ear: ear, mouth: mouth}
}

// Listen waits for the next command heard by the Ear.
func (p *Provider) Listen(ctx context.Context) (string, error) {
	if p.ear == nil {
		return "", domain.ErrNotImplemented
	}
	select {
	case text := <-p.ear.C():
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Speak queues text at normal priority.
func (p *Provider) Speak(ctx context.Context, text string) error {
	if p.mouth == nil {
		return domain.ErrNotImplemented
	}
	p.mouth.Say(text, PriorityNormal)
	return nil
}
