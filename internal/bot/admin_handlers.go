package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"blesk-bot/internal/session"

	"go.uber.org/zap"
)

type AdminActionKind int

const (
	// ActionReadyForOrder carries an order identifier
	// (callback order_ready_<orderId>).
	ActionReadyForOrder AdminActionKind = iota + 1
	// ActionFulfillmentDone carries the buyer's chat identifier
	// (callback done_<chatId>).
	ActionFulfillmentDone
)

// AdminAction is a fulfillment confirmation parsed once at the
// boundary. Both kinds mean the same thing, they differ only in which
// identifier names the order.
type AdminAction struct {
	Kind    AdminActionKind
	OrderID string
	ChatID  int64
}

func parseAdminAction(data string) (AdminAction, bool) {
	if orderID, ok := strings.CutPrefix(data, callbackOrderReadyPrefix); ok && orderID != "" {
		return AdminAction{Kind: ActionReadyForOrder, OrderID: orderID}, true
	}

	if raw, ok := strings.CutPrefix(data, callbackDonePrefix); ok {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return AdminAction{}, false
		}
		return AdminAction{Kind: ActionFulfillmentDone, ChatID: chatID}, true
	}

	return AdminAction{}, false
}

// handleAdminAction completes fulfillment: the buyer is told the
// subscription is active and their session is removed. Only the
// configured admin may trigger it; anyone else is refused with no
// state change.
func (b *Bot) handleAdminAction(ctx context.Context, fromID, fromChatID int64, action AdminAction) {
	if fromID != b.cfg.AdminChatID {
		b.logger.Warn("Unauthorized admin action",
			zap.Int64("from_id", fromID))
		b.sendError(fromChatID, unauthorizedText)
		return
	}

	sess, err := b.resolveAdminTarget(ctx, action)
	if errors.Is(err, session.ErrNotFound) {
		b.sendError(fromChatID, orderNotFoundText)
		return
	}
	if err != nil {
		b.logger.Error("Failed to resolve admin action target",
			zap.Error(err))
		b.sendError(fromChatID, orderNotFoundText)
		return
	}

	b.locks.Lock(sess.ChatID)
	defer b.locks.Unlock(sess.ChatID)

	b.sendText(sess.ChatID, activatedText)

	if err := b.store.Delete(ctx, sess.ChatID); err != nil {
		b.logger.Error("Failed to delete session",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
	}

	b.logger.Info("Order fulfilled",
		zap.Int64("chat_id", sess.ChatID),
		zap.String("order_id", sess.OrderID))

	b.sendText(fromChatID, fmt.Sprintf(adminDoneConfirmText, sess.ChatID))
}

func (b *Bot) resolveAdminTarget(ctx context.Context, action AdminAction) (*session.Session, error) {
	switch action.Kind {
	case ActionReadyForOrder:
		return b.store.FindByOrder(ctx, action.OrderID)
	case ActionFulfillmentDone:
		return b.store.Get(ctx, action.ChatID)
	default:
		return nil, session.ErrNotFound
	}
}
