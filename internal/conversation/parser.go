// Package conversation turns typed or transcribed text into drawing
// commands and prints notifications to the terminal.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// Compile-time interface check.
var _ domain.CommandParser = (*KeywordParser)(nil)

// KeywordParser matches user input to commands using keywords and a few
// sentence patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
	draw     *regexp.Regexp
}

type patternRule struct {
	regex   *regexp.Regexp
	command domain.CommandType
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.CommandHelp},
		{regexp.MustCompile(`(?i)^(next|n|continue|go on|next step|keep going)$`), domain.CommandNext},
		{regexp.MustCompile(`(?i)^(done|finished|all done|i'?m done)$`), domain.CommandDone},
		{regexp.MustCompile(`(?i)^(back|b|previous|prev|undo|go back)$`), domain.CommandBack},
		{regexp.MustCompile(`(?i)^(again|redraw|draw it again|start over|restart)$`), domain.CommandRedraw},
		{regexp.MustCompile(`(?i)^(home|reset|menu|new|new animal|something else|another one)$`), domain.CommandHome},
		{regexp.MustCompile(`(?i)^(list|animals|show|what can i draw\??)$`), domain.CommandList},
		{regexp.MustCompile(`(?i)^(history|my drawings|what have i drawn\??)$`), domain.CommandHistory},
		{regexp.MustCompile(`(?i)^(repeat|r|what\??|say that again|come again)$`), domain.CommandRepeat},
		{regexp.MustCompile(`(?i)^(quit|exit|bye|goodbye|q|stop)$`), domain.CommandQuit},
	}
	p.draw = regexp.MustCompile(`(?i)^(?:i(?:\s+want|\s+wanna|\s+would like|'d like)\s+to\s+draw|i\s+want|let'?s\s+draw|can\s+(?:i|we)\s+draw|draw(?:\s+me)?|how\s+about|pick|select)\s+(?:an?\s+|the\s+|some\s+)?(.+)$`)
	return p
}

// Parse converts input into a command. While the session is Selecting,
// a bare word is taken as an animal name.
func (p *KeywordParser) Parse(ctx context.Context, input string, state domain.SessionState) (*domain.Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Command{Type: domain.CommandUnknown}, nil
	}
	if trimmed != "?" {
		trimmed = strings.TrimSpace(strings.TrimRight(trimmed, ".!,"))
	}

	p.log.Debug("parsing input: %q (phase %s)", trimmed, state.Phase)

	// Offered alternatives are picked by number.
	if len(trimmed) <= 2 && isDigits(trimmed) {
		return &domain.Command{Type: domain.CommandDrawAnimal, Animal: trimmed}, nil
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.command)
			return &domain.Command{Type: rule.command}, nil
		}
	}

	if m := p.draw.FindStringSubmatch(trimmed); m != nil {
		if name := cleanAnimal(m[1]); name != "" {
			return &domain.Command{Type: domain.CommandDrawAnimal, Animal: name}, nil
		}
	}

	if state.Phase == domain.PhaseSelecting {
		if name := cleanAnimal(trimmed); name != "" {
			return &domain.Command{Type: domain.CommandDrawAnimal, Animal: name}, nil
		}
	}

	p.log.Debug("no match, returning unknown command")
	return &domain.Command{Type: domain.CommandUnknown, Animal: trimmed}, nil
}

// cleanAnimal strips politeness and punctuation around an animal name.
func cleanAnimal(s string) string {
	s = strings.TrimSpace(strings.TrimRight(s, "?.!, "))
	lower := strings.ToLower(s)
	for _, suffix := range []string{" please", " now", " today"} {
		if strings.HasSuffix(lower, suffix) {
			s = s[:len(s)-len(suffix)]
			lower = lower[:len(lower)-len(suffix)]
		}
	}
	for _, prefix := range []string{"a ", "an ", "the "} {
		if strings.HasPrefix(lower, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(s)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
