package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type OptionType int

const (
	StringOption OptionType = iota
	IntegerOption
)

// Option is a typed command parameter.
type Option struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
}

// Args holds parsed option values: string for StringOption, int for
// IntegerOption. Absent optional options have no entry.
type Args map[string]any

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns the integer option name, or def when it was not given.
func (a Args) Int(name string, def int) int {
	if n, ok := a[name].(int); ok {
		return n
	}
	return def
}

// UsageError reports arguments that do not fit a command's options.
type UsageError struct {
	Command Command
	Msg     string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s\nUsage: `%s`", e.Msg, e.Command.Usage())
}

// ParseArgs splits a text command's argument string into typed options.
// Options are positional; integers accept a leading sign and the last string
// option takes the rest of the line.
func ParseArgs(cmd Command, raw string) (Args, error) {
	fields := strings.Fields(raw)
	args := Args{}

	for i, opt := range cmd.Options {
		if len(fields) == 0 {
			if opt.Required {
				return nil, &UsageError{Command: cmd, Msg: fmt.Sprintf("Missing %s.", opt.Name)}
			}
			continue
		}

		switch opt.Type {
		case IntegerOption:
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, &UsageError{Command: cmd, Msg: fmt.Sprintf("%s must be a whole number, got %q.", opt.Name, fields[0])}
			}
			args[opt.Name] = n
			fields = fields[1:]
		default:
			if i == len(cmd.Options)-1 {
				args[opt.Name] = strings.Join(fields, " ")
				fields = nil
			} else {
				args[opt.Name] = fields[0]
				fields = fields[1:]
			}
		}
	}

	if len(fields) > 0 {
		return nil, &UsageError{Command: cmd, Msg: fmt.Sprintf("Unexpected %q.", strings.Join(fields, " "))}
	}
	return args, nil
}
