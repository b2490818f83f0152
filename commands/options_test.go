package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCommand(t *testing.T, name string) Command {
	t.Helper()
	for _, c := range Table() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("command %s not in table", name)
	return Command{}
}

func TestParseArgs(t *testing.T) {
	roll := findCommand(t, "roll")
	check := findCommand(t, "check")

	tests := []struct {
		name string
		cmd  Command
		raw  string
		want Args
	}{
		{"expression with spaces", roll, "4d6kh3 + 2", Args{"expr": "4d6kh3 + 2"}},
		{"signed modifier", check, "+2", Args{"modifier": 2}},
		{"negative modifier and threshold", check, "-1 14", Args{"modifier": -1, "threshold": 14}},
		{"no options", findCommand(t, "ping"), "", Args{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.cmd, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	check := findCommand(t, "check")

	tests := []struct {
		name string
		cmd  Command
		raw  string
		msg  string
	}{
		{"missing required", check, "", "Missing modifier."},
		{"not a number", check, "two", `modifier must be a whole number, got "two".`},
		{"too many", check, "1 12 extra", `Unexpected "extra".`},
		{"missing expression", findCommand(t, "roll"), "   ", "Missing expr."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.cmd, tt.raw)
			var uerr *UsageError
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, tt.msg, uerr.Msg)
			assert.Contains(t, uerr.Error(), tt.cmd.Usage())
		})
	}
}

func TestArgs_Defaults(t *testing.T) {
	args := Args{"modifier": 3}
	assert.Equal(t, 3, args.Int("modifier", 0))
	assert.Equal(t, 12, args.Int("threshold", 12))
	assert.Equal(t, "", args.String("expr"))
}
