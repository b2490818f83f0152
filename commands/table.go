package commands

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"knucklebone/dice"
	"knucklebone/morkborg"
)

// Table is the fixed command set, in the order it is shown to users.
func Table() []Command {
	return []Command{
		{
			Name:        "ping",
			Description: "Health check.",
			Handler:     ping,
		},
		{
			Name:        "roll",
			Description: "Roll dice (e.g. 1d20+2, 4d6kh3).",
			Options: []Option{
				{Name: "expr", Description: "Dice expression", Type: StringOption, Required: true},
			},
			Handler: roll,
		},
		{
			Name:        "reroll",
			Description: "Roll the last expression rolled here again.",
			Handler:     reroll,
		},
		{
			Name:        "check",
			Aliases:     []string{"mb"},
			Description: "Mörk Borg ability check.",
			Options: []Option{
				{Name: "modifier", Description: "Your ability score modifier (e.g. +2, -1)", Type: IntegerOption, Required: true},
				{Name: "threshold", Description: "Difficulty rating (default 12)", Type: IntegerOption},
			},
			Handler: check,
		},
		{
			Name:        "reaction",
			Description: "Mörk Borg reaction roll (2d6).",
			Handler:     reaction,
		},
		{
			Name:        "help",
			Aliases:     []string{"start"},
			Description: "List the commands.",
			Handler:     help,
		},
	}
}

func lastRollKey(channelID string) string {
	return "last_roll:" + channelID
}

func ping(ctx context.Context, app *App, inv Invocation) (Reply, error) {
	return Reply{Text: "pong 🦴"}, nil
}

func roll(ctx context.Context, app *App, inv Invocation) (Reply, error) {
	expr := strings.TrimSpace(inv.Args.String("expr"))
	out, err := app.Roller.Evaluate(expr)
	if err != nil {
		return Reply{}, err
	}

	if inv.ChannelID != "" {
		// the roll already happened, a failed write only costs /reroll
		if err := app.Store.Set(ctx, lastRollKey(inv.ChannelID), expr); err != nil {
			app.Logger.Warn("remember last roll failed",
				zap.String("channel", inv.ChannelID),
				zap.Error(err))
		}
	}
	return rollReply(expr, out), nil
}

func reroll(ctx context.Context, app *App, inv Invocation) (Reply, error) {
	expr, ok, err := app.Store.Get(ctx, lastRollKey(inv.ChannelID))
	if err != nil {
		return Reply{}, err
	}
	if !ok {
		return Reply{Text: "Nothing to reroll yet, use /roll first.", Ephemeral: true}, nil
	}

	out, err := app.Roller.Evaluate(expr)
	if err != nil {
		return Reply{}, err
	}
	return rollReply(expr, out), nil
}

// Breakdowns past maxBreakdownLen lose their dice lists so replies stay under
// Discord's 2000 character message limit.
const (
	maxBreakdownLen = 1500
	maxEchoLen      = 200
)

func rollReply(expr string, out *dice.Outcome) Reply {
	return Reply{Text: fmt.Sprintf("🎲 `%s` → **%d**\n%s", clip(expr, maxEchoLen), out.Total, breakdown(out))}
}

func breakdown(out *dice.Outcome) string {
	if len(out.Breakdown) <= maxBreakdownLen {
		return out.Breakdown
	}
	if s := out.Summary(); len(s) <= maxBreakdownLen {
		return s
	}
	return fmt.Sprintf("… = `%d`", out.Total)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func check(ctx context.Context, app *App, inv Invocation) (Reply, error) {
	modifier := inv.Args.Int("modifier", 0)
	threshold := inv.Args.Int("threshold", dice.DefaultThreshold)

	res, err := morkborg.Check(app.Roller, modifier, threshold)
	if err != nil {
		return Reply{}, err
	}
	app.Metrics.CheckOutcomes.WithLabelValues(res.Category.String()).Inc()
	return checkReply(res), nil
}

func checkReply(res dice.CheckResult) Reply {
	var outcome string
	var color Color
	switch res.Category {
	case dice.Critical:
		outcome, color = "**CRITICAL SUCCESS!** (Natural 20)", ColorGold
	case dice.Fumble:
		outcome, color = "**FUMBLE!** (Natural 1)", ColorDarkRed
	case dice.Success:
		outcome, color = "**Success**", ColorGreen
	default:
		outcome, color = "**Failure**", ColorLightGrey
	}

	return Reply{
		Title: "Mörk Borg Check",
		Color: color,
		Fields: []Field{
			{Name: "Roll", Value: breakdown(res.Outcome), Inline: true},
			{Name: "Total", Value: fmt.Sprintf("**%d** vs DR %d", res.Outcome.Total, res.Threshold), Inline: true},
			{Name: "Result", Value: outcome},
		},
	}
}

var dispositionColors = map[morkborg.Disposition]Color{
	morkborg.Kill:           ColorDarkRed,
	morkborg.Angered:        ColorOrange,
	morkborg.Indifferent:    ColorLightGrey,
	morkborg.AlmostFriendly: ColorBlue,
	morkborg.Helpful:        ColorGreen,
}

func reaction(ctx context.Context, app *App, inv Invocation) (Reply, error) {
	res, err := morkborg.Reaction(app.Roller)
	if err != nil {
		return Reply{}, err
	}

	return Reply{
		Title: "Reaction Roll",
		Color: dispositionColors[res.Disposition],
		Fields: []Field{
			{Name: "Roll", Value: breakdown(res.Outcome), Inline: true},
			{Name: "Total", Value: fmt.Sprintf("**%d**", res.Outcome.Total), Inline: true},
			{Name: "Reaction", Value: "**" + string(res.Disposition) + "**"},
		},
	}, nil
}

func help(ctx context.Context, app *App, inv Invocation) (Reply, error) {
	return Reply{Text: HelpText(Table())}, nil
}

// HelpText lists commands with their usage.
func HelpText(commands []Command) string {
	var sb strings.Builder
	sb.WriteString("🦴 **Knucklebone**\n")
	for _, c := range commands {
		fmt.Fprintf(&sb, "`%s` - %s\n", c.Usage(), c.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}
