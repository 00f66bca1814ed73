package speech

import "time"

// DefaultVoice is the espeak-ng voice used when none is configured.
const DefaultVoice = "en-us"

// Audio parameters every synthesizer must produce and the player expects:
// 16-bit little-endian mono PCM inside a WAV container.
const (
	SampleRate   = 22050
	ChannelCount = 1
	BitDepth     = 16
)

// Priority levels for speech requests. Higher value = speaks first.
type Priority int

const (
	PriorityLow      Priority = iota // idle nudges, chatter
	PriorityNormal                   // step instructions, replies
	PriorityHigh                     // completion, important prompts
	PriorityCritical                 // wake-word acknowledgements
)

// SpeechRequest is a queued item waiting to be spoken.
type SpeechRequest struct {
	Text     string
	Priority Priority
	QueuedAt time.Time
}
