package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knucklebone/commands"
	"knucklebone/config"
	"knucklebone/database"
	"knucklebone/dice"
	"knucklebone/metrics"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopOnce sync.Once
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopOnce.Do(func() { close(f.updates) })
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func newTestBot(t *testing.T, cfg *config.Config, faces ...int) (*Bot, *fakeAPI) {
	t.Helper()
	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	app := commands.NewApp(
		dice.NewRoller(dice.NewSequenceSource(faces...)),
		db,
		zap.NewNop(),
		metrics.New(prometheus.NewRegistry()),
	)
	api := newFakeAPI()
	if cfg == nil {
		cfg = &config.Config{Platform: config.PlatformTelegram}
	}
	return newBot(api, "KnuckleBot", cfg, commands.NewDispatcher(app, commands.Table()), zap.NewNop()), api
}

func commandMessage(id int, chatID int64, text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: 99},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestHandleMessage_Roll(t *testing.T) {
	b, api := newTestBot(t, nil, 6)

	b.handleMessage(context.Background(), commandMessage(1, 7, "/roll 1d6+1"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(7), msgs[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msgs[0].ParseMode)
	assert.Equal(t, "🎲 <code>1d6+1</code> → <b>7</b>\n1d6 (<b>6</b>) + 1 = <code>7</code>", msgs[0].Text)
	assert.Zero(t, msgs[0].ReplyToMessageID)
	assert.NotNil(t, msgs[0].ReplyMarkup)
}

func TestHandleMessage_LongRollFitsMessageLimit(t *testing.T) {
	b, api := newTestBot(t, nil, 4)

	b.handleMessage(context.Background(), commandMessage(1, 7, "/roll 1000d6"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "🎲 <code>1000d6</code> → <b>4000</b>\n1000d6 (…) = <code>4000</code>", msgs[0].Text)
	assert.Less(t, len(msgs[0].Text), 4096)
}

func TestHandleMessage_UsageErrorRepliesToSender(t *testing.T) {
	b, api := newTestBot(t, nil)

	b.handleMessage(context.Background(), commandMessage(12, 7, "/check two"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, 12, msgs[0].ReplyToMessageID)
	assert.Contains(t, msgs[0].Text, "<code>/check &lt;modifier&gt; [threshold]</code>")
	assert.Nil(t, msgs[0].ReplyMarkup)
}

func TestHandleMessage_ParseErrorIsEphemeral(t *testing.T) {
	b, api := newTestBot(t, nil)

	b.handleMessage(context.Background(), commandMessage(3, 7, "/roll 1d"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, 3, msgs[0].ReplyToMessageID)
	assert.Equal(t, "Couldn’t parse that roll: <code>1d</code>\nError: <code>missing die sides at position 3</code>", msgs[0].Text)
}

func TestHandleMessage_AddressedCommands(t *testing.T) {
	b, api := newTestBot(t, nil)

	b.handleMessage(context.Background(), commandMessage(1, 7, "/ping@otherbot"))
	assert.Empty(t, api.messages())

	b.handleMessage(context.Background(), commandMessage(2, 7, "/ping@knucklebot"))
	b.handleMessage(context.Background(), &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: 7}, Text: "just chatting"})

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "pong 🦴", msgs[0].Text)
}

func TestHandleCallback_RollAgain(t *testing.T) {
	b, api := newTestBot(t, nil, 2, 5)

	b.handleMessage(context.Background(), commandMessage(1, 7, "/roll 1d6"))
	b.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 99},
		Message: &tgbotapi.Message{MessageID: 2, Chat: &tgbotapi.Chat{ID: 7}},
		Data:    rerollCallback,
	})

	msgs := api.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "🎲 <code>1d6</code> → <b>5</b>\n1d6 (5) = <code>5</code>", msgs[1].Text)

	require.Len(t, api.requests, 1)
	cb, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb1", cb.CallbackQueryID)
}

func TestHandleUpdate_FinishesAfterCancel(t *testing.T) {
	b, api := newTestBot(t, nil, 3)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage(1, 7, "/roll 1d6")})
	b.wg.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMessage(2, 7, "/reroll")})
	b.wg.Wait()

	msgs := api.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "🎲 <code>1d6</code> → <b>3</b>\n1d6 (3) = <code>3</code>", msgs[1].Text)
}

func TestRegisterCommands(t *testing.T) {
	b, api := newTestBot(t, nil)
	require.NoError(t, b.registerCommands())

	req, ok := api.requests[0].(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	assert.Nil(t, req.Scope)
	require.Len(t, req.Commands, len(commands.Table()))
	assert.Equal(t, "roll", req.Commands[1].Command)
	assert.Equal(t, "Roll dice (e.g. 1d20+2, 4d6kh3). <expr>", req.Commands[1].Description)

	b, api = newTestBot(t, &config.Config{Platform: config.PlatformTelegram, TargetID: "-1001234"})
	require.NoError(t, b.registerCommands())

	req = api.requests[0].(tgbotapi.SetMyCommandsConfig)
	require.NotNil(t, req.Scope)
	assert.Equal(t, "chat", req.Scope.Type)
	assert.Equal(t, int64(-1001234), req.Scope.ChatID)
}

func TestRun_StopsOnCancel(t *testing.T) {
	b, api := newTestBot(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	api.updates <- tgbotapi.Update{Message: commandMessage(1, 7, "/ping")}
	require.Eventually(t, func() bool { return len(api.messages()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
