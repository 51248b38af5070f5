package commands

import (
	"testing"

	"github.com/pixil98/go-tamo/internal/creature"
	"github.com/pixil98/go-testutil"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		line string
		exp  Command
	}{
		"feed":               {line: "F\n", exp: Feed},
		"play":               {line: "P\n", exp: Play},
		"quench":             {line: "Q\n", exp: Quench},
		"crlf":               {line: "Q\r\n", exp: Quench},
		"surrounding spaces": {line: "  F  \n", exp: Feed},
		"lowercase":          {line: "f\n", exp: Unknown},
		"two codes":          {line: "FF\n", exp: Unknown},
		"word":               {line: "feed\n", exp: Unknown},
		"empty":              {line: "\n", exp: Unknown},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "command", Parse(tt.line), tt.exp)
		})
	}
}

func TestCommand_Apply(t *testing.T) {
	tests := map[string]struct {
		cmd Command
		op  func(*creature.Creature)
	}{
		"feed":    {cmd: Feed, op: (*creature.Creature).Feed},
		"play":    {cmd: Play, op: (*creature.Creature).Play},
		"quench":  {cmd: Quench, op: (*creature.Creature).Quench},
		"unknown": {cmd: Unknown, op: func(*creature.Creature) {}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := creature.Build("Tamo")
			exp := creature.Build("Tamo")

			tt.cmd.Apply(got)
			tt.op(exp)

			testutil.AssertEqual(t, "creature", *got, *exp)
		})
	}
}

func TestCommand_Code(t *testing.T) {
	testutil.AssertEqual(t, "feed", Feed.Code(), "F")
	testutil.AssertEqual(t, "play", Play.Code(), "P")
	testutil.AssertEqual(t, "quench", Quench.Code(), "Q")
	testutil.AssertEqual(t, "unknown", Unknown.Code(), "")
	testutil.AssertEqual(t, "name", Quench.String(), "quench")
}
