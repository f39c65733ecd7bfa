package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// The developer flow walks IDLE -> AWAIT_TARGET_ID -> AWAIT_ACTION ->
// AWAIT_AMOUNT -> IDLE. Re-entering /dev mid-flow restarts the flow;
// /cancel aborts from any state without mutating anything.

type adminState int

const (
	stateIdle adminState = iota
	stateAwaitTargetID
	stateAwaitAction
	stateAwaitAmount
)

type bonusAction string

const (
	actionGrant  bonusAction = "grant_messages"
	actionRevoke bonusAction = "revoke_messages"
)

// Abandoned sessions are discarded once stale.
const sessionIdleTimeout = 30 * time.Minute

var (
	errNoSession     = errors.New("no active session")
	errInvalidNumber = errors.New("input is not a non-negative number")
)

type adminSession struct {
	state     adminState
	targetID  int64
	action    bonusAction
	touchedAt time.Time
}

type sessionStore struct {
	mu          sync.Mutex
	sessions    map[int64]*adminSession
	idleTimeout time.Duration
	now         func() time.Time
}

func newSessionStore(idleTimeout time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{
		sessions:    make(map[int64]*adminSession),
		idleTimeout: idleTimeout,
		now:         now,
	}
}

// get expires a stale session before returning it.
func (s *sessionStore) get(userID int64) *adminSession {
	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	if s.now().Sub(sess.touchedAt) > s.idleTimeout {
		delete(s.sessions, userID)
		return nil
	}
	return sess
}

func (s *sessionStore) State(userID int64) adminState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	if sess == nil {
		return stateIdle
	}
	return sess.state
}

// Begin starts a fresh flow, discarding any partial one.
func (s *sessionStore) Begin(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = &adminSession{
		state:     stateAwaitTargetID,
		touchedAt: s.now(),
	}
}

func (s *sessionStore) SubmitTarget(userID int64, input string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	if sess == nil || sess.state != stateAwaitTargetID {
		return 0, errNoSession
	}

	target, err := parseNonNegative(input)
	if err != nil {
		return 0, err
	}

	sess.targetID = target
	sess.state = stateAwaitAction
	sess.touchedAt = s.now()
	return target, nil
}

func (s *sessionStore) ChooseAction(userID int64, data string) (bonusAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	if sess == nil || sess.state != stateAwaitAction {
		return "", errNoSession
	}

	action := bonusAction(data)
	if action != actionGrant && action != actionRevoke {
		return "", errNoSession
	}

	sess.action = action
	sess.state = stateAwaitAmount
	sess.touchedAt = s.now()
	return action, nil
}

// SubmitAmount finishes the flow and returns everything collected; the
// session is destroyed whether or not the subsequent mutation succeeds.
func (s *sessionStore) SubmitAmount(userID int64, input string) (target int64, action bonusAction, amount int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	if sess == nil || sess.state != stateAwaitAmount {
		return 0, "", 0, errNoSession
	}

	n, err := parseNonNegative(input)
	if err != nil {
		return 0, "", 0, err
	}

	target = sess.targetID
	action = sess.action
	delete(s.sessions, userID)
	return target, action, int(n), nil
}

// Cancel aborts the flow; reports whether one was active.
func (s *sessionStore) Cancel(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	delete(s.sessions, userID)
	return sess != nil
}

func parseNonNegative(input string) (int64, error) {
	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil || n < 0 {
		return 0, errInvalidNumber
	}
	return n, nil
}

func (b *Bot) handleDevCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminID {
		b.log.Warn("non-admin tried the dev command", zap.Int64("user_id", msg.From.ID))
		b.sendText(ctx, msg.Chat.ID, permissionDeniedText)
		return
	}

	b.sessions.Begin(msg.From.ID)
	b.sendHTML(ctx, msg.Chat.ID, devPromptText)
}

func (b *Bot) handleCancelCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminID {
		return
	}
	if b.sessions.Cancel(msg.From.ID) {
		b.sendText(ctx, msg.Chat.ID, devCancelledText)
	}
}

func (b *Bot) handleAdminText(ctx context.Context, msg *tgbotapi.Message) {
	switch b.sessions.State(msg.From.ID) {
	case stateAwaitTargetID:
		target, err := b.sessions.SubmitTarget(msg.From.ID, msg.Text)
		if err != nil {
			b.sendText(ctx, msg.Chat.ID, devBadIDText)
			return
		}
		b.sendActionKeyboard(ctx, msg.Chat.ID, target)

	case stateAwaitAction:
		b.sendText(ctx, msg.Chat.ID, devUseButtonsText)

	case stateAwaitAmount:
		target, action, amount, err := b.sessions.SubmitAmount(msg.From.ID, msg.Text)
		if err != nil {
			b.sendText(ctx, msg.Chat.ID, devBadAmountText)
			return
		}
		b.applyBonusChange(ctx, msg.Chat.ID, msg.From.ID, target, action, amount)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", zap.Error(err))
	}

	if query.From == nil || query.From.ID != b.cfg.AdminID || query.Message == nil {
		return
	}

	action, err := b.sessions.ChooseAction(query.From.ID, query.Data)
	if err != nil {
		return
	}

	verb := "grant"
	if action == actionRevoke {
		verb = "revoke"
	}

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID,
		fmt.Sprintf(devAmountPromptTemplate, verb))
	b.deliver(ctx, edit)
}

func (b *Bot) sendActionKeyboard(ctx context.Context, chatID, target int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Grant messages", string(actionGrant)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ Revoke messages", string(actionRevoke)),
		),
	)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(devChooseActionTemplate, target))
	msg.ReplyMarkup = keyboard
	b.deliver(ctx, msg)
}

func (b *Bot) applyBonusChange(ctx context.Context, chatID, actorID, target int64, action bonusAction, amount int) {
	var (
		verb   string
		change *changeResult
	)

	now := time.Now()
	switch action {
	case actionGrant:
		c, total, err := b.admin.Grant(ctx, target, amount, actorID, now)
		if err != nil {
			b.sendText(ctx, chatID, apologyText)
			return
		}
		verb = "granted"
		change = &changeResult{bonus: c.ResultingBonus, total: total}

	case actionRevoke:
		c, total, err := b.admin.Revoke(ctx, target, amount, actorID, now)
		if err != nil {
			b.sendText(ctx, chatID, apologyText)
			return
		}
		verb = "revoked"
		change = &changeResult{bonus: c.ResultingBonus, total: total}
	}

	b.sendText(ctx, chatID, fmt.Sprintf(devReportTemplate, target, verb, amount, change.bonus, change.total))
}

type changeResult struct {
	bonus int
	total int
}
