package bot

import (
	"fmt"

	"blesk-bot/internal/platega"
	"blesk-bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// notifyAdminNewOrder sends the buyer's credentials to the admin with
// the fulfillment button. The password comes from the inbound message,
// not the stored session, so it never depends on what a backend
// persisted.
func (b *Bot) notifyAdminNewOrder(sess *session.Session, password string) {
	text := fmt.Sprintf(adminNewOrderText,
		sess.OrderID,
		sess.ChatID,
		sess.SpotifyLogin,
		password,
	)

	msg := tgbotapi.NewMessage(b.cfg.AdminChatID, text)
	msg.ReplyMarkup = b.createOrderReadyKeyboard(sess.OrderID)
	b.send(msg)

	b.logger.Info("Admin notified of new order",
		zap.Int64("chat_id", sess.ChatID),
		zap.String("order_id", sess.OrderID))
}

// alertAdminUnresolved raises an operator alert for a paid event that
// matched no session. The payment needs manual reconciliation.
func (b *Bot) alertAdminUnresolved(evt platega.WebhookEvent) {
	text := fmt.Sprintf(adminUnresolvedText,
		evt.Transaction(),
		evt.Payload,
		evt.Amount,
		evt.Currency,
	)
	b.sendText(b.cfg.AdminChatID, text)
}
