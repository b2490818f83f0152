package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"knucklebone/dice"
)

const commandTimeout = 10 * time.Second

// Handler runs one command. Errors are turned into replies by the Dispatcher.
type Handler func(ctx context.Context, app *App, inv Invocation) (Reply, error)

// Command is one entry of the static command table.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Options     []Option
	Handler     Handler
}

// Usage renders the command line form, e.g. "/check <modifier> [threshold]".
func (c Command) Usage() string {
	var sb strings.Builder
	sb.WriteString("/" + c.Name)
	for _, opt := range c.Options {
		if opt.Required {
			sb.WriteString(" <" + opt.Name + ">")
		} else {
			sb.WriteString(" [" + opt.Name + "]")
		}
	}
	return sb.String()
}

// Invocation is a single command call coming from a chat platform or the CLI.
type Invocation struct {
	Command   string
	Args      Args
	ChannelID string
	UserID    string
}

type Dispatcher struct {
	app      *App
	commands []Command
	byName   map[string]Command
}

func NewDispatcher(app *App, commands []Command) *Dispatcher {
	d := &Dispatcher{
		app:      app,
		commands: commands,
		byName:   make(map[string]Command, len(commands)),
	}
	for _, c := range commands {
		d.byName[c.Name] = c
		for _, alias := range c.Aliases {
			d.byName[alias] = c
		}
	}
	return d
}

// Commands returns the table in registration order.
func (d *Dispatcher) Commands() []Command {
	return d.commands
}

// Lookup finds a command by name or alias, case-insensitively.
func (d *Dispatcher) Lookup(name string) (Command, bool) {
	c, ok := d.byName[strings.ToLower(name)]
	return c, ok
}

// Dispatch runs inv and always returns a reply. Handler errors and panics are
// logged and answered; they never reach the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) (reply Reply) {
	cmd, ok := d.Lookup(inv.Command)
	if !ok {
		return Reply{Text: fmt.Sprintf("Unknown command `%s`. Try /help.", inv.Command), Ephemeral: true}
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	start := time.Now()
	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			d.app.Logger.Error("command panicked",
				zap.String("command", cmd.Name),
				zap.Any("panic", r),
				zap.Stack("stack"))
			status = "internal_error"
			reply = internalErrorReply()
		}
		d.app.Metrics.CommandTotal.WithLabelValues(cmd.Name, status).Inc()
		d.app.Metrics.CommandDuration.WithLabelValues(cmd.Name).Observe(time.Since(start).Seconds())
	}()

	if inv.Args == nil {
		inv.Args = Args{}
	}
	reply, err := cmd.Handler(ctx, d.app, inv)
	if err == nil {
		d.app.Logger.Debug("command handled",
			zap.String("command", cmd.Name),
			zap.String("channel", inv.ChannelID))
		return reply
	}

	var perr *dice.ParseError
	var eerr *dice.EvaluationError
	var uerr *UsageError
	switch {
	case errors.As(err, &perr):
		status = "user_error"
		return rollErrorReply(perr.Expr, perr)
	case errors.As(err, &eerr):
		status = "user_error"
		return rollErrorReply(eerr.Expr, eerr)
	case errors.As(err, &uerr):
		status = "user_error"
		return Reply{Text: uerr.Error(), Ephemeral: true}
	default:
		status = "internal_error"
		d.app.Logger.Error("command failed",
			zap.String("command", cmd.Name),
			zap.String("channel", inv.ChannelID),
			zap.Error(err))
		return internalErrorReply()
	}
}

func rollErrorReply(expr string, err error) Reply {
	return Reply{
		Text:      fmt.Sprintf("Couldn’t parse that roll: `%s`\nError: `%s`", clip(expr, maxEchoLen), err.Error()),
		Ephemeral: true,
	}
}

func internalErrorReply() Reply {
	return Reply{Text: "Something went wrong, please try again later.", Ephemeral: true}
}
