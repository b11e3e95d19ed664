package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blesk-bot/internal/session"

	"go.uber.org/zap"
)

// handleBuySubscription starts a new purchase attempt. The gateway is
// called first: if payment creation fails, no session is created and
// the user gets a retry message. A prior session is overwritten
// wholesale, there is never more than one outstanding order per user.
func (b *Bot) handleBuySubscription(ctx context.Context, chatID int64) {
	b.locks.Lock(chatID)
	defer b.locks.Unlock(chatID)

	payment, err := b.payments.CreatePayment(ctx, chatID)
	if err != nil {
		b.sendError(chatID, paymentFailedText)
		b.sendWithKeyboard(chatID, mainMenuText, b.createMainMenuKeyboard())
		return
	}

	now := time.Now()
	sess := &session.Session{
		ChatID:        chatID,
		State:         session.StateWaitingPayment,
		OrderID:       payment.OrderID,
		TransactionID: payment.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := b.store.Put(ctx, sess); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, paymentFailedText)
		return
	}

	text := fmt.Sprintf(productText, b.cfg.SubscriptionPrice)
	b.sendWithKeyboard(chatID, text,
		b.createPaymentKeyboard(payment.RedirectURL, b.cfg.SubscriptionPrice))
}

// handleText advances the conversation state machine for a plain text
// message. All session mutations happen under the per-chat lock so a
// concurrently delivered webhook cannot interleave.
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	b.locks.Lock(chatID)
	defer b.locks.Unlock(chatID)

	sess, err := b.store.Get(ctx, chatID)
	if errors.Is(err, session.ErrNotFound) {
		b.sendWithKeyboard(chatID, mainMenuText, b.createMainMenuKeyboard())
		return
	}
	if err != nil {
		b.logger.Error("Failed to get session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	switch sess.State {
	case session.StateWaitingPayment:
		b.sendText(chatID, paymentPendingText)

	case session.StateWaitingLogin:
		b.handleLoginInput(ctx, sess, text)

	case session.StateWaitingPassword:
		b.handlePasswordInput(ctx, sess, text)

	case session.StateWaitingActivation:
		b.sendText(chatID, activationPendingText)

	default:
		// StateNone, StateCompleted or anything unrecognized: back to
		// the menu.
		b.sendWithKeyboard(chatID, mainMenuText, b.createMainMenuKeyboard())
	}
}

func (b *Bot) handleLoginInput(ctx context.Context, sess *session.Session, text string) {
	login := strings.TrimSpace(text)
	if login == "" {
		b.sendText(sess.ChatID, loginEmptyText)
		return
	}

	sess.SpotifyLogin = login
	sess.State = session.StateWaitingPassword
	sess.UpdatedAt = time.Now()

	if err := b.store.Put(ctx, sess); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
		b.sendError(sess.ChatID, "Ошибка при обработке запроса")
		return
	}

	b.sendText(sess.ChatID, passwordPromptText)
}

func (b *Bot) handlePasswordInput(ctx context.Context, sess *session.Session, text string) {
	password := strings.TrimSpace(text)
	if password == "" {
		b.sendText(sess.ChatID, passwordEmptyText)
		return
	}

	sess.SpotifyPassword = password
	sess.State = session.StateWaitingActivation
	sess.UpdatedAt = time.Now()

	if err := b.store.Put(ctx, sess); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
		b.sendError(sess.ChatID, "Ошибка при обработке запроса")
		return
	}

	b.sendText(sess.ChatID, credentialsReceivedText)
	b.notifyAdminNewOrder(sess, password)
}
