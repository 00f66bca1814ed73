package domain

import "context"

// CommandParser converts raw user input into a structured command.
// The state lets implementations read bare words differently while the
// user is still choosing an animal.
type CommandParser interface {
	Parse(ctx context.Context, input string, state SessionState) (*Command, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout or use text-to-speech.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// SpeechProvider handles voice input/output. Listen is speech-to-text,
// Speak sends text through the TTS pipeline. The no-op implementation is
// used when voice is disabled.
type SpeechProvider interface {
	Listen(ctx context.Context) (string, error)
	Speak(ctx context.Context, text string) error
}

// HistoryStore keeps a record per drawing session.
type HistoryStore interface {
	Save(ctx context.Context, rec DrawingRecord) error
	Load(ctx context.Context, sessionID string) (DrawingRecord, error)
	Delete(ctx context.Context, sessionID string) error
	// List returns every record, oldest first.
	List(ctx context.Context) ([]DrawingRecord, error)
}
