package bot

import "strings"

// Command is what an inbound text asks the bot to do.
type Command int

const (
	// CommandAnswer treats the text as a question.
	CommandAnswer Command = iota
	// CommandStart resets the conversation and greets the user.
	CommandStart
	// CommandClear resets the conversation.
	CommandClear
	// CommandUnknown is any other slash command.
	CommandUnknown
)

func (c Command) String() string {
	switch c {
	case CommandAnswer:
		return "answer"
	case CommandStart:
		return "start"
	case CommandClear:
		return "clear"
	case CommandUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Route classifies an inbound text. A "@botname" suffix on the command is ignored.
func Route(text string) Command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return CommandAnswer
	}

	name := text[1:]
	if i := strings.IndexFunc(name, func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' }); i >= 0 {
		name = name[:i]
	}
	name, _, _ = strings.Cut(name, "@")

	switch name {
	case "start":
		return CommandStart
	case "clear":
		return CommandClear
	default:
		return CommandUnknown
	}
}
