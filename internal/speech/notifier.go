package speech

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottodraw/internal/domain"
)

var _ domain.Notifier = (*SpeakingNotifier)(nil)

// SpeakingNotifier prints through an inner notifier and queues the same
// message for speech.
type SpeakingNotifier struct {
	text  domain.Notifier
	voice Voice
}

// NewSpeakingNotifier wraps text with speech output.
func NewSpeakingNotifier(text domain.Notifier, voice Voice) *SpeakingNotifier {
	return &SpeakingNotifier{text: text, voice: voice}
}

// Notify prints and speaks at normal priority.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	n.voice.Say(cleanForSpeech(message), PriorityNormal)
	return nil
}

// NotifyUrgent prints and speaks at high priority.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	n.voice.Say(cleanForSpeech(message), PriorityHigh)
	return nil
}

var (
	ansiCodes  = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	listPrefix = regexp.MustCompile(`(?m)^\s*(?:\[[A-Za-z]+\]|[-*>])\s*`)
)

// cleanForSpeech removes terminal colour codes, tag prefixes and list
// bullets, and joins lines into one utterance.
func cleanForSpeech(msg string) string {
	msg = ansiCodes.ReplaceAllString(msg, "")
	msg = listPrefix.ReplaceAllString(msg, "")
	return collapseSpaces(msg)
}
