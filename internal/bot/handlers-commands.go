package bot

import (
	"context"
	"fmt"
)

// handleCommand routes bot commands. Commands never touch the session:
// a buyer who wanders into the menu mid credential entry keeps their
// progress.
func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		b.handleStart(ctx, chatID)
	default:
		b.sendWithKeyboard(chatID, mainMenuText, b.createMainMenuKeyboard())
	}
}

func (b *Bot) handleStart(_ context.Context, chatID int64) {
	text := fmt.Sprintf(welcomeText, b.cfg.SubscriptionPrice)
	b.sendWithKeyboard(chatID, text, b.createMainMenuKeyboard())
}

func (b *Bot) handleFAQ(chatID int64) {
	b.sendWithKeyboard(chatID, faqText, b.createBackToMenuKeyboard())
}

func (b *Bot) handleSupport(chatID int64) {
	b.sendWithKeyboard(chatID, supportText, b.createBackToMenuKeyboard())
}
