package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"blesk-bot/internal/config"
	"blesk-bot/internal/platega"
	"blesk-bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAdminID int64 = 777
	testBuyerID int64 = 4242
)

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// messagesTo returns the texts sent to a chat, in order.
func (f *fakeSender) messagesTo(chatID int64) []string {
	var texts []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func (f *fakeSender) lastMessageTo(t *testing.T, chatID int64) tgbotapi.MessageConfig {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if msg, ok := f.sent[i].(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			return msg
		}
	}
	t.Fatalf("no message sent to chat %d", chatID)
	return tgbotapi.MessageConfig{}
}

type fakePayments struct {
	calls   int
	payment *platega.Payment
	err     error
}

func (f *fakePayments) CreatePayment(_ context.Context, chatID int64) (*platega.Payment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p := *f.payment
	if p.OrderID == "" {
		p.OrderID = fmt.Sprintf("order_%d_1000", chatID)
	}
	return &p, nil
}

func newTestBot(payments *fakePayments) (*Bot, *fakeSender, session.Store) {
	fs := &fakeSender{}
	store := session.NewMemoryStore()
	b := &Bot{
		sender:   fs,
		logger:   zap.NewNop(),
		store:    store,
		payments: payments,
		cfg: &config.Config{
			AdminChatID:       testAdminID,
			SubscriptionPrice: 155,
		},
	}
	return b, fs, store
}

func newTextMessage(chatID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		end := strings.IndexAny(text, " @")
		if end == -1 {
			end = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return msg
}

func newCallback(fromID, chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: fromID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}
}

func paidEvent(sess *session.Session) platega.WebhookEvent {
	return platega.WebhookEvent{
		TransactionID: sess.TransactionID,
		Status:        "CONFIRMED",
		Payload:       fmt.Sprintf("%d", sess.ChatID),
		Amount:        155,
		Currency:      "RUB",
	}
}

func TestPurchaseScenario(t *testing.T) {
	ctx := context.Background()
	payments := &fakePayments{payment: &platega.Payment{
		TransactionID: "tx-1",
		RedirectURL:   "https://pay.example/redirect",
	}}
	b, fs, store := newTestBot(payments)

	// /start shows the menu and creates no session.
	b.processMessage(ctx, newTextMessage(testBuyerID, "/start"))
	_, err := store.Get(ctx, testBuyerID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Len(t, fs.messagesTo(testBuyerID), 1)

	// Buy: gateway called once, session enters waiting_payment.
	b.processCallback(ctx, newCallback(testBuyerID, testBuyerID, callbackBuySubscription))
	assert.Equal(t, 1, payments.calls)

	sess, err := store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingPayment, sess.State)
	assert.NotEmpty(t, sess.OrderID)
	assert.Equal(t, "tx-1", sess.TransactionID)

	// Plain text while waiting for payment only reminds.
	b.processMessage(ctx, newTextMessage(testBuyerID, "hello?"))
	sess, err = store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingPayment, sess.State)

	// Webhook confirmation moves to waiting_login; the buyer is
	// prompted, the admin hears nothing yet.
	require.NoError(t, b.HandlePaymentConfirmed(ctx, paidEvent(sess)))

	sess, err = store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingLogin, sess.State)
	assert.True(t, sess.PaymentConfirmed)
	assert.Contains(t, fs.messagesTo(testBuyerID)[len(fs.messagesTo(testBuyerID))-1], "логин")
	assert.Empty(t, fs.messagesTo(testAdminID))

	// Login.
	b.processMessage(ctx, newTextMessage(testBuyerID, "alice@example.com"))
	sess, err = store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingPassword, sess.State)
	assert.Equal(t, "alice@example.com", sess.SpotifyLogin)

	// Password: buyer told to wait, admin gets credentials plus the
	// done button.
	b.processMessage(ctx, newTextMessage(testBuyerID, "secret123"))
	sess, err = store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingActivation, sess.State)

	adminMsg := fs.lastMessageTo(t, testAdminID)
	assert.Contains(t, adminMsg.Text, "alice@example.com")
	assert.Contains(t, adminMsg.Text, "secret123")

	kb, ok := adminMsg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	doneData := *kb.InlineKeyboard[0][0].CallbackData
	assert.Equal(t, callbackOrderReadyPrefix+sess.OrderID, doneData)

	// Admin presses done: buyer notified, session removed.
	b.processCallback(ctx, newCallback(testAdminID, testAdminID, doneData))

	buyerMsgs := fs.messagesTo(testBuyerID)
	assert.Contains(t, buyerMsgs[len(buyerMsgs)-1], "активирована")

	_, err = store.Get(ctx, testBuyerID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b, fs, store := newTestBot(&fakePayments{})

	sess := &session.Session{
		ChatID:        testBuyerID,
		State:         session.StateWaitingPayment,
		OrderID:       "order_4242_1000",
		TransactionID: "tx-1",
	}
	require.NoError(t, store.Put(ctx, sess))

	require.NoError(t, b.HandlePaymentConfirmed(ctx, paidEvent(sess)))
	promptsAfterFirst := len(fs.messagesTo(testBuyerID))
	assert.Equal(t, 1, promptsAfterFirst)

	// Replaying the same event must not notify again or move state.
	require.NoError(t, b.HandlePaymentConfirmed(ctx, paidEvent(sess)))
	assert.Equal(t, promptsAfterFirst, len(fs.messagesTo(testBuyerID)))

	got, err := store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingLogin, got.State)
}

func TestWebhookResolvesByOrderScan(t *testing.T) {
	ctx := context.Background()
	b, _, store := newTestBot(&fakePayments{})

	require.NoError(t, store.Put(ctx, &session.Session{
		ChatID:        testBuyerID,
		State:         session.StateWaitingPayment,
		OrderID:       "order_4242_1000",
		TransactionID: "tx-1",
	}))

	// No payload echo at all: the transaction id scan must find it.
	require.NoError(t, b.HandlePaymentConfirmed(ctx, platega.WebhookEvent{
		ID:     "tx-1",
		Status: "paid",
	}))

	got, err := store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingLogin, got.State)
}

func TestWebhookUnresolvedAlertsAdmin(t *testing.T) {
	ctx := context.Background()
	b, fs, _ := newTestBot(&fakePayments{})

	err := b.HandlePaymentConfirmed(ctx, platega.WebhookEvent{
		TransactionID: "tx-unknown",
		Status:        "paid",
		Payload:       "999",
	})
	assert.ErrorIs(t, err, session.ErrNotFound)

	adminMsgs := fs.messagesTo(testAdminID)
	require.Len(t, adminMsgs, 1)
	assert.Contains(t, adminMsgs[0], "tx-unknown")
}

func TestNonAdminDoneIsRejected(t *testing.T) {
	ctx := context.Background()
	b, fs, store := newTestBot(&fakePayments{})

	const intruderID int64 = 555
	sess := &session.Session{
		ChatID:  testBuyerID,
		State:   session.StateWaitingActivation,
		OrderID: "order_4242_1000",
	}
	require.NoError(t, store.Put(ctx, sess))

	b.processCallback(ctx, newCallback(intruderID, intruderID, callbackOrderReadyPrefix+sess.OrderID))

	got, err := store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingActivation, got.State)
	assert.Empty(t, fs.messagesTo(testBuyerID))

	intruderMsgs := fs.messagesTo(intruderID)
	require.Len(t, intruderMsgs, 1)
	assert.Contains(t, intruderMsgs[0], "нет прав")
}

func TestAdminDoneByChatID(t *testing.T) {
	ctx := context.Background()
	b, fs, store := newTestBot(&fakePayments{})

	require.NoError(t, store.Put(ctx, &session.Session{
		ChatID: testBuyerID,
		State:  session.StateWaitingActivation,
	}))

	b.processCallback(ctx, newCallback(testAdminID, testAdminID,
		fmt.Sprintf("%s%d", callbackDonePrefix, testBuyerID)))

	_, err := store.Get(ctx, testBuyerID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	buyerMsgs := fs.messagesTo(testBuyerID)
	require.Len(t, buyerMsgs, 1)
	assert.Contains(t, buyerMsgs[0], "активирована")
}

func TestAdminDoneUnknownOrder(t *testing.T) {
	ctx := context.Background()
	b, fs, _ := newTestBot(&fakePayments{})

	b.processCallback(ctx, newCallback(testAdminID, testAdminID, callbackOrderReadyPrefix+"order_1_1"))

	adminMsgs := fs.messagesTo(testAdminID)
	require.Len(t, adminMsgs, 1)
	assert.Contains(t, adminMsgs[0], "не найден")
}

func TestPaymentFailureCreatesNoSession(t *testing.T) {
	ctx := context.Background()
	payments := &fakePayments{err: &platega.CreatePaymentError{StatusCode: 502}}
	b, fs, store := newTestBot(payments)

	b.processCallback(ctx, newCallback(testBuyerID, testBuyerID, callbackBuySubscription))

	_, err := store.Get(ctx, testBuyerID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	msgs := fs.messagesTo(testBuyerID)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "Ошибка при создании платежа")
}

func TestCommandsNeverFeedTheStateMachine(t *testing.T) {
	ctx := context.Background()
	b, _, store := newTestBot(&fakePayments{})

	require.NoError(t, store.Put(ctx, &session.Session{
		ChatID: testBuyerID,
		State:  session.StateWaitingLogin,
	}))

	// A command mid credential entry must not be stored as a login.
	b.processMessage(ctx, newTextMessage(testBuyerID, "/start"))

	got, err := store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingLogin, got.State)
	assert.Empty(t, got.SpotifyLogin)
}

func TestEmptyLoginReprompted(t *testing.T) {
	ctx := context.Background()
	b, _, store := newTestBot(&fakePayments{})

	require.NoError(t, store.Put(ctx, &session.Session{
		ChatID: testBuyerID,
		State:  session.StateWaitingLogin,
	}))

	b.processMessage(ctx, newTextMessage(testBuyerID, "   "))

	got, err := store.Get(ctx, testBuyerID)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingLogin, got.State)
	assert.Empty(t, got.SpotifyLogin)
}

func TestParseAdminAction(t *testing.T) {
	tests := []struct {
		data string
		want AdminAction
		ok   bool
	}{
		{"order_ready_order_42_1000", AdminAction{Kind: ActionReadyForOrder, OrderID: "order_42_1000"}, true},
		{"done_4242", AdminAction{Kind: ActionFulfillmentDone, ChatID: 4242}, true},
		{"done_abc", AdminAction{}, false},
		{"order_ready_", AdminAction{}, false},
		{"buy_subscription", AdminAction{}, false},
		{"", AdminAction{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, ok := parseAdminAction(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
