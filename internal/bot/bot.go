// Package bot owns the Telegram dispatch loop, the command surface, the
// message router and the developer bonus flow.
package bot

import (
	"context"
	"sync"
	"time"

	"lenabot/internal/history"
	"lenabot/internal/model"
	"lenabot/internal/sanitize"
	"lenabot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// telegramAPI is the slice of tgbotapi.BotAPI the bot uses; tests swap in
// a recording fake.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// Completer is the outbound completion call; failures become an apology
// to the user, never a crash of the dispatch loop.
type Completer interface {
	Complete(ctx context.Context, turns []model.Turn) (string, error)
}

type Config struct {
	AdminID          int64
	UnlimitedChatIDs []int64
	Persona          string
	CardNumber       string
	ContactLink      string
	UnlimitedChat    string
}

type Bot struct {
	api      telegramAPI
	username string
	cfg      Config

	quota     service.QuotaServiceI
	referrals service.ReferralServiceI
	admin     service.AdminServiceI

	history   *history.Store
	completer Completer
	sanitizer *sanitize.Sanitizer
	sessions  *sessionStore

	// One worker per (chat, user): updates for the same conversation are
	// handled strictly in arrival order, so a message never reads history
	// before the previous exchange was appended.
	qmu    sync.Mutex
	queues map[history.Key]chan func()

	// Telegram caps bot traffic at ~30 messages a second.
	limiter *rate.Limiter
	log     *zap.Logger
}

func New(api *tgbotapi.BotAPI, cfg Config, svc *service.Service, hist *history.Store, completer Completer, sanitizer *sanitize.Sanitizer, log *zap.Logger) *Bot {
	return newBot(api, api.Self.UserName, cfg, svc.QuotaService, svc.ReferralService, svc.AdminService, hist, completer, sanitizer, log)
}

func newBot(api telegramAPI, username string, cfg Config, quota service.QuotaServiceI, referrals service.ReferralServiceI, admin service.AdminServiceI, hist *history.Store, completer Completer, sanitizer *sanitize.Sanitizer, log *zap.Logger) *Bot {
	return &Bot{
		api:       api,
		username:  username,
		cfg:       cfg,
		quota:     quota,
		referrals: referrals,
		admin:     admin,
		history:   hist,
		completer: completer,
		sanitizer: sanitizer,
		sessions:  newSessionStore(sessionIdleTimeout, time.Now),
		queues:    make(map[history.Key]chan func()),
		limiter:   rate.NewLimiter(rate.Limit(30), 30),
		log:       log,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.registerCommands()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("bot started", zap.String("username", b.username))

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.enqueue(updateKey(update), func() { b.dispatch(ctx, update) })

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// updateKey identifies the conversation an update belongs to.
func updateKey(update tgbotapi.Update) history.Key {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return history.Key{
			ChatID: update.CallbackQuery.Message.Chat.ID,
			UserID: update.CallbackQuery.From.ID,
		}
	case update.Message != nil && update.Message.From != nil:
		return history.Key{
			ChatID: update.Message.Chat.ID,
			UserID: update.Message.From.ID,
		}
	}
	return history.Key{}
}

// enqueue hands the job to the conversation's worker, starting one on
// first use. Workers live for the process lifetime, like the histories
// they guard.
func (b *Bot) enqueue(key history.Key, job func()) {
	b.qmu.Lock()
	q, ok := b.queues[key]
	if !ok {
		q = make(chan func(), 16)
		b.queues[key] = q
		go func() {
			for j := range q {
				j()
			}
		}()
	}
	b.qmu.Unlock()

	q <- job
}

// dispatch handles one update; a panic here must not take other users'
// sessions down with it.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic while handling update", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)

	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Mid-flow admin input is consumed by the bonus flow, not the router.
	if msg.From.ID == b.cfg.AdminID && b.sessions.State(msg.From.ID) != stateIdle {
		b.handleAdminText(ctx, msg)
		return
	}

	b.routeMessage(ctx, msg)
}

func (b *Bot) registerCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start chatting with the bot"},
		tgbotapi.BotCommand{Command: "info", Description: "About the bot and usage rules"},
		tgbotapi.BotCommand{Command: "clear", Description: "Clear your conversation history"},
		tgbotapi.BotCommand{Command: "stat", Description: "Your status and remaining messages"},
		tgbotapi.BotCommand{Command: "ref", Description: "Your referral program"},
		tgbotapi.BotCommand{Command: "buy", Description: "Buy extra messages"},
	)

	if _, err := b.api.Request(commands); err != nil {
		b.log.Warn("failed to register command menu", zap.Error(err))
		return
	}
	b.log.Info("command menu registered")
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	b.deliver(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendHTML(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.deliver(ctx, msg)
}

func (b *Bot) deliver(ctx context.Context, c tgbotapi.Chattable) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("failed to send message", zap.Error(err))
	}
}
