package commands

import (
	"strings"

	"github.com/pixil98/go-tamo/internal/creature"
)

// Command is one of the single-character requests a client can send.
type Command int

const (
	Unknown Command = iota
	Feed
	Play
	Quench
)

// codes maps the wire form of each command. Matching is exact and case
// sensitive.
var codes = map[string]Command{
	"F": Feed,
	"P": Play,
	"Q": Quench,
}

// Parse trims line and maps it to a Command. Anything that is not exactly
// one of the known codes is Unknown.
func Parse(line string) Command {
	cmd, ok := codes[strings.TrimSpace(line)]
	if !ok {
		return Unknown
	}
	return cmd
}

// Apply runs the command's operation against c. Unknown does nothing.
func (cmd Command) Apply(c *creature.Creature) {
	switch cmd {
	case Feed:
		c.Feed()
	case Play:
		c.Play()
	case Quench:
		c.Quench()
	}
}

func (cmd Command) Code() string {
	for code, c := range codes {
		if c == cmd {
			return code
		}
	}
	return ""
}

func (cmd Command) String() string {
	switch cmd {
	case Feed:
		return "feed"
	case Play:
		return "play"
	case Quench:
		return "quench"
	default:
		return "unknown"
	}
}
