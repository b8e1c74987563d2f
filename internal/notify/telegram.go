package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lazypower/medtick/internal/store"
)

// TelegramPusher is the platform notification channel, delivered as a
// Telegram message to the user's own chat. A missing token or chat ID
// means the capability was never granted; the first push attempt
// authorizes the bot once and caches the result.
type TelegramPusher struct {
	token  string
	chatID int64

	mu   sync.Mutex
	perm Permission
	api  *tgbotapi.BotAPI
}

// NewTelegramPusher creates the pusher. An empty token or unparseable
// chat ID yields a permanently denied capability rather than an error:
// the platform channel is optional and its absence is non-fatal.
func NewTelegramPusher(token, chatID string) *TelegramPusher {
	p := &TelegramPusher{token: token}
	if token == "" || chatID == "" {
		p.perm = PermissionDenied
		return p
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		p.perm = PermissionDenied
		return p
	}
	p.chatID = id
	return p
}

// Permission reports the cached capability state.
func (p *TelegramPusher) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.perm
}

// RequestPermission authorizes the bot against the Telegram API and
// caches granted or denied. It is never re-run once resolved.
func (p *TelegramPusher) RequestPermission(ctx context.Context) Permission {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.perm != PermissionDefault {
		return p.perm
	}

	api, err := tgbotapi.NewBotAPI(p.token)
	if err != nil {
		p.perm = PermissionDenied
		return p.perm
	}
	p.api = api
	p.perm = PermissionGranted
	return p.perm
}

// Push sends one reminder message.
func (p *TelegramPusher) Push(ctx context.Context, r store.Reminder) error {
	p.mu.Lock()
	api := p.api
	p.mu.Unlock()

	if api == nil {
		return fmt.Errorf("telegram: not authorized")
	}

	text := fmt.Sprintf("💊 Time to take %s (%s)", r.MedicationName, r.Dosage)
	if r.Notes != "" {
		text += "\n" + r.Notes
	}
	msg := tgbotapi.NewMessage(p.chatID, text)
	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
