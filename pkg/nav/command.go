package nav

import (
	"fmt"
	"strings"
)

// CommandKind tags a parsed voice command. Parsing itself is external; the
// manager only reacts to these tags.
type CommandKind int

const (
	CmdNavigateTo CommandKind = iota
	CmdStop
	CmdRepeat
	CmdWhereAmI
	CmdHelp
	CmdUnknown
)

func (k CommandKind) String() string {
	switch k {
	case CmdNavigateTo:
		return "navigate-to"
	case CmdStop:
		return "stop"
	case CmdRepeat:
		return "repeat"
	case CmdWhereAmI:
		return "where-am-i"
	case CmdHelp:
		return "help"
	case CmdUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is a parsed voice command event.
type Command struct {
	Kind        CommandKind
	Destination string // CmdNavigateTo only
	Raw         string // CmdUnknown only: the unrecognized utterance
}

// NavigateTo builds a navigate command.
func NavigateTo(destination string) Command {
	return Command{Kind: CmdNavigateTo, Destination: destination}
}

// Unknown builds an unknown-utterance command.
func Unknown(raw string) Command {
	return Command{Kind: CmdUnknown, Raw: raw}
}

var navigatePrefixes = []string{"navigate to ", "take me to ", "go to "}

// ParseCommand maps a transcribed utterance to a command. Real speech
// recognition lives upstream; this only handles the already-transcribed text.
func ParseCommand(text string) Command {
	normalized := strings.ToLower(strings.TrimSpace(text))

	for _, prefix := range navigatePrefixes {
		if rest, ok := strings.CutPrefix(normalized, prefix); ok {
			dest := strings.TrimSpace(rest)
			if dest == "" {
				return Unknown(text)
			}
			return NavigateTo(dest)
		}
	}

	switch normalized {
	case "stop", "stop navigation", "cancel":
		return Command{Kind: CmdStop}
	case "repeat", "say again", "repeat that":
		return Command{Kind: CmdRepeat}
	case "where am i", "where am i?":
		return Command{Kind: CmdWhereAmI}
	case "help", "what can you do", "what can you do?":
		return Command{Kind: CmdHelp}
	}
	return Unknown(text)
}
