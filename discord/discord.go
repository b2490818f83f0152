// Package discord serves the command table as Discord slash commands.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"knucklebone/commands"
	"knucklebone/config"
)

// session is the part of *discordgo.Session used after connecting.
type session interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, cmds []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

type Bot struct {
	conn       *discordgo.Session
	api        session
	dispatcher *commands.Dispatcher
	logger     *zap.Logger
	guildID    string
}

func NewBot(cfg *config.Config, dispatcher *commands.Dispatcher, logger *zap.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	b := newBot(s, dispatcher, logger, cfg.TargetID)
	b.conn = s
	return b, nil
}

func newBot(api session, dispatcher *commands.Dispatcher, logger *zap.Logger, guildID string) *Bot {
	return &Bot{
		api:        api,
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("platform", config.PlatformDiscord)),
		guildID:    guildID,
	}
}

// Run connects to the gateway, registers the commands and serves
// interactions until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.conn.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(ctx, i.Interaction)
	})
	b.conn.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("discord session ready", zap.String("username", r.User.Username))
	})

	if err := b.conn.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.conn.Close()

	if err := b.registerCommands(b.conn.State.User.ID); err != nil {
		b.logger.Warn("register commands failed", zap.Error(err))
	}

	<-ctx.Done()
	return nil
}

// registerCommands replaces the application's commands, in the target guild
// when one is configured and globally otherwise.
func (b *Bot) registerCommands(appID string) error {
	cmds := applicationCommands(b.dispatcher.Commands())
	if _, err := b.api.ApplicationCommandBulkOverwrite(appID, b.guildID, cmds); err != nil {
		return err
	}
	b.logger.Info("commands registered", zap.Int("count", len(cmds)), zap.String("guild", b.guildID))
	return nil
}

// applicationCommands builds one slash command per name and alias.
func applicationCommands(table []commands.Command) []*discordgo.ApplicationCommand {
	var out []*discordgo.ApplicationCommand
	for _, c := range table {
		opts := make([]*discordgo.ApplicationCommandOption, 0, len(c.Options))
		for _, o := range c.Options {
			opt := &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        o.Name,
				Description: o.Description,
				Required:    o.Required,
			}
			if o.Type == commands.IntegerOption {
				opt.Type = discordgo.ApplicationCommandOptionInteger
			}
			opts = append(opts, opt)
		}

		for _, name := range append([]string{c.Name}, c.Aliases...) {
			out = append(out, &discordgo.ApplicationCommand{
				Name:        name,
				Description: c.Description,
				Options:     opts,
			})
		}
	}
	return out
}

func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	// interactions that arrived before shutdown still get an answer
	ctx = context.WithoutCancel(ctx)
	data := i.ApplicationCommandData()
	inv := commands.Invocation{
		Command:   data.Name,
		Args:      argsFromOptions(data.Options),
		ChannelID: i.ChannelID,
		UserID:    interactionUserID(i),
	}
	reply := b.dispatcher.Dispatch(ctx, inv)

	b.logger.Debug("interaction handled",
		zap.String("command", data.Name),
		zap.String("channel", i.ChannelID),
		zap.String("user", inv.UserID))

	if err := b.api.InteractionRespond(i, interactionResponse(reply)); err != nil {
		b.logger.Error("respond to interaction failed", zap.String("command", data.Name), zap.Error(err))
	}
}

func argsFromOptions(options []*discordgo.ApplicationCommandInteractionDataOption) commands.Args {
	args := commands.Args{}
	for _, o := range options {
		switch o.Type {
		case discordgo.ApplicationCommandOptionInteger:
			args[o.Name] = int(o.IntValue())
		case discordgo.ApplicationCommandOptionString:
			args[o.Name] = o.StringValue()
		}
	}
	return args
}

func interactionUserID(i *discordgo.Interaction) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	}
	return ""
}

// interactionResponse maps a reply onto a message or an embed, hidden from
// everyone but the caller when it is ephemeral.
func interactionResponse(reply commands.Reply) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{}
	if reply.Structured() {
		embed := &discordgo.MessageEmbed{
			Title:       reply.Title,
			Description: reply.Text,
			Color:       int(reply.Color),
		}
		for _, f := range reply.Fields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		data.Embeds = []*discordgo.MessageEmbed{embed}
	} else {
		data.Content = reply.Text
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}
