package domain

// CommandType classifies what the user asked for.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandDrawAnimal
	CommandNext
	CommandBack
	CommandDone
	CommandHome
	CommandRedraw
	CommandRepeat
	CommandList
	CommandHistory
	CommandHelp
	CommandQuit
)

var commandNames = map[CommandType]string{
	CommandUnknown:    "unknown",
	CommandDrawAnimal: "draw_animal",
	CommandNext:       "next",
	CommandBack:       "back",
	CommandDone:       "done",
	CommandHome:       "home",
	CommandRedraw:     "redraw",
	CommandRepeat:     "repeat",
	CommandList:       "list",
	CommandHistory:    "history",
	CommandHelp:       "help",
	CommandQuit:       "quit",
}

// String returns the snake_case name of the command.
func (c CommandType) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return "unknown"
}

// CommandFromString converts a snake_case name to a CommandType.
// Returns CommandUnknown for unrecognized names.
func CommandFromString(name string) CommandType {
	for t, n := range commandNames {
		if n == name {
			return t
		}
	}
	return CommandUnknown
}

// Command is a parsed user action. Animal carries the requested name for
// CommandDrawAnimal and the raw text for CommandUnknown.
type Command struct {
	Type   CommandType
	Animal string
}
