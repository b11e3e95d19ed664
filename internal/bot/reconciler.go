package bot

import (
	"context"
	"errors"
	"strconv"
	"time"

	"blesk-bot/internal/platega"
	"blesk-bot/internal/session"

	"go.uber.org/zap"
)

// HandlePaymentConfirmed reconciles an inbound paid event against the
// session store. Delivery is at-least-once: a session already past
// WAITING_PAYMENT is left untouched so replays never duplicate the
// buyer notification.
//
// Returns session.ErrNotFound when no session matches; the HTTP layer
// still acknowledges the gateway to avoid retry storms, and the admin
// gets an operator alert instead.
func (b *Bot) HandlePaymentConfirmed(ctx context.Context, evt platega.WebhookEvent) error {
	chatID, err := b.resolveEventChat(ctx, evt)
	if err != nil {
		b.logger.Warn("Unresolved payment event",
			zap.String("transaction_id", evt.Transaction()),
			zap.String("payload", evt.Payload),
			zap.Error(err))
		b.alertAdminUnresolved(evt)
		return err
	}

	b.locks.Lock(chatID)
	defer b.locks.Unlock(chatID)

	// Re-read under the lock: a concurrent replay may have advanced
	// the session since resolution.
	sess, err := b.store.Get(ctx, chatID)
	if err != nil {
		return err
	}

	if sess.State != session.StateWaitingPayment {
		b.logger.Info("Payment event already processed",
			zap.Int64("chat_id", chatID),
			zap.String("transaction_id", evt.Transaction()),
			zap.String("state", string(sess.State)))
		return nil
	}

	sess.State = session.StateWaitingLogin
	sess.PaymentConfirmed = true
	sess.UpdatedAt = time.Now()

	if err := b.store.Put(ctx, sess); err != nil {
		return err
	}

	b.logger.Info("Payment confirmed",
		zap.Int64("chat_id", chatID),
		zap.String("order_id", sess.OrderID),
		zap.String("transaction_id", evt.Transaction()))

	b.sendText(chatID, loginPromptText)
	return nil
}

// resolveEventChat maps a webhook event to a session key. The payload
// normally echoes the chat id verbatim; older gateway configurations
// echo the order id instead, and as a last resort the sessions are
// scanned for the event's transaction id.
func (b *Bot) resolveEventChat(ctx context.Context, evt platega.WebhookEvent) (int64, error) {
	if evt.Payload != "" {
		if chatID, err := strconv.ParseInt(evt.Payload, 10, 64); err == nil {
			if _, err := b.store.Get(ctx, chatID); err == nil {
				return chatID, nil
			}
		}

		sess, err := b.store.FindByOrder(ctx, evt.Payload)
		if err == nil {
			return sess.ChatID, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return 0, err
		}
	}

	sess, err := b.store.FindByOrder(ctx, evt.Transaction())
	if err != nil {
		return 0, err
	}
	return sess.ChatID, nil
}
