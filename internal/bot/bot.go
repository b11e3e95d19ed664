package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"blesk-bot/internal/config"
	"blesk-bot/internal/platega"
	"blesk-bot/internal/session"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// PaymentCreator issues a payment attempt for a chat.
type PaymentCreator interface {
	CreatePayment(ctx context.Context, chatID int64) (*platega.Payment, error)
}

// sender is the outbound Telegram surface, narrowed so tests can fake it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	logger   *zap.Logger
	store    session.Store
	payments PaymentCreator
	cfg      *config.Config
	locks    session.KeyedMutex
}

func New(
	cfg *config.Config,
	payments PaymentCreator,
	store session.Store,
	logger *zap.Logger,
) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPIWithClient(
		cfg.TelegramToken,
		tgbotapi.APIEndpoint,
		&http.Client{Timeout: cfg.HTTPRequestTimeout},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	return &Bot{
		api:      botAPI,
		sender:   botAPI,
		logger:   logger,
		store:    store,
		payments: payments,
		cfg:      cfg,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update := <-updates:
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.processCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID))

	// Commands always route to menu handling, even mid-conversation.
	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}

	b.handleText(ctx, chatID, msg.Text)
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", data))

	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Error("Failed to answer callback query",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	switch data {
	case callbackBuySubscription:
		b.handleBuySubscription(ctx, chatID)
	case callbackFAQ:
		b.handleFAQ(chatID)
	case callbackSupport:
		b.handleSupport(chatID)
	case callbackBackToMenu:
		b.sendWithKeyboard(chatID, mainMenuText, b.createMainMenuKeyboard())
	default:
		if action, ok := parseAdminAction(data); ok {
			b.handleAdminAction(ctx, callback.From.ID, chatID, action)
			return
		}
		b.logger.Debug("Unknown callback data",
			zap.Int64("chat_id", chatID),
			zap.String("data", data))
	}
}

// send delivers a message, retrying once on transport failure. Send
// errors never propagate past this point.
func (b *Bot) send(msg tgbotapi.Chattable) {
	op := func() error {
		_, err := b.sender.Send(msg)
		return err
	}

	err := backoff.Retry(op,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 1))
	if err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	b.send(msg)
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}
