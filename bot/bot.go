package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"knucklebone/commands"
	"knucklebone/config"
)

const rerollCallback = "reroll"

// botAPI is the part of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot answers Telegram slash commands through the shared dispatcher.
type Bot struct {
	api        botAPI
	username   string
	dispatcher *commands.Dispatcher
	logger     *zap.Logger
	config     *config.Config
	wg         sync.WaitGroup
}

func NewBot(cfg *config.Config, dispatcher *commands.Dispatcher, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return newBot(api, api.Self.UserName, cfg, dispatcher, logger), nil
}

func newBot(api botAPI, username string, cfg *config.Config, dispatcher *commands.Dispatcher, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		username:   username,
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("platform", config.PlatformTelegram)),
		config:     cfg,
	}
}

// Run registers the command menu and handles updates until ctx is done.
// In-flight handlers are waited for before it returns.
func (b *Bot) Run(ctx context.Context) {
	if err := b.registerCommands(); err != nil {
		b.logger.Warn("register commands failed", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate answers each update on its own goroutine. Handlers outlive a
// cancelled Run so replies already in flight still reach the store and the
// chat; the dispatcher's per-command timeout bounds them.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx = context.WithoutCancel(ctx)
	switch {
	case update.Message != nil:
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.handleMessage(ctx, update.Message)
		}()
	case update.CallbackQuery != nil:
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.handleCallback(ctx, update.CallbackQuery)
		}()
	}
}

// registerCommands publishes the command table as the bot menu, scoped to the
// target chat when one is configured.
func (b *Bot) registerCommands() error {
	cmds := botCommands(b.dispatcher.Commands())

	var req tgbotapi.SetMyCommandsConfig
	if b.config.TargetID != "" {
		chatID, err := b.config.TelegramChatID()
		if err != nil {
			return err
		}
		req = tgbotapi.NewSetMyCommandsWithScope(tgbotapi.NewBotCommandScopeChat(chatID), cmds...)
	} else {
		req = tgbotapi.NewSetMyCommands(cmds...)
	}

	if _, err := b.api.Request(req); err != nil {
		return err
	}
	b.logger.Info("commands registered", zap.Int("count", len(cmds)), zap.String("target", b.config.TargetID))
	return nil
}

func botCommands(table []commands.Command) []tgbotapi.BotCommand {
	cmds := make([]tgbotapi.BotCommand, 0, len(table))
	for _, c := range table {
		desc := c.Description
		if usage := c.Usage(); strings.Contains(usage, " ") {
			desc += " " + strings.TrimPrefix(usage, "/"+c.Name+" ")
		}
		cmds = append(cmds, tgbotapi.BotCommand{Command: c.Name, Description: desc})
	}
	return cmds
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	// "/roll@otherbot" in a group is not for us
	if at := strings.Index(msg.CommandWithAt(), "@"); at >= 0 && b.username != "" {
		if !strings.EqualFold(msg.CommandWithAt()[at+1:], b.username) {
			return
		}
	}
	b.handleCommand(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	name := msg.Command()
	inv := commands.Invocation{
		Command:   name,
		ChannelID: strconv.FormatInt(msg.Chat.ID, 10),
	}
	if msg.From != nil {
		inv.UserID = strconv.FormatInt(msg.From.ID, 10)
	}

	var reply commands.Reply
	cmd, ok := b.dispatcher.Lookup(name)
	if ok {
		args, err := commands.ParseArgs(cmd, msg.CommandArguments())
		if err != nil {
			reply = commands.Reply{Text: err.Error(), Ephemeral: true}
		} else {
			inv.Args = args
			reply = b.dispatcher.Dispatch(ctx, inv)
		}
	} else {
		reply = b.dispatcher.Dispatch(ctx, inv)
	}

	b.logger.Debug("command received",
		zap.String("command", name),
		zap.String("chat", inv.ChannelID),
		zap.String("user", inv.UserID))

	out := b.newReply(msg, reply)
	if ok && !reply.Ephemeral && (cmd.Name == "roll" || cmd.Name == "reroll") {
		out.ReplyMarkup = rollAgainKeyboard()
	}
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("send reply failed", zap.String("command", name), zap.Error(err))
	}
}

// newReply builds the outgoing message. Telegram has no ephemeral messages, so
// those are sent as a reply to the invoking message instead.
func (b *Bot) newReply(msg *tgbotapi.Message, reply commands.Reply) tgbotapi.MessageConfig {
	out := tgbotapi.NewMessage(msg.Chat.ID, renderHTML(reply))
	out.ParseMode = tgbotapi.ModeHTML
	if reply.Ephemeral {
		out.ReplyToMessageID = msg.MessageID
	}
	return out
}

func rollAgainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎲 Roll again", rerollCallback),
		),
	)
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("answer callback failed", zap.Error(err))
	}
	if callback.Data != rerollCallback || callback.Message == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	inv := commands.Invocation{
		Command:   "reroll",
		ChannelID: strconv.FormatInt(chatID, 10),
	}
	if callback.From != nil {
		inv.UserID = strconv.FormatInt(callback.From.ID, 10)
	}
	reply := b.dispatcher.Dispatch(ctx, inv)

	out := tgbotapi.NewMessage(chatID, renderHTML(reply))
	out.ParseMode = tgbotapi.ModeHTML
	if !reply.Ephemeral {
		out.ReplyMarkup = rollAgainKeyboard()
	}
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("send reply failed", zap.String("command", "reroll"), zap.Error(err))
	}
}
