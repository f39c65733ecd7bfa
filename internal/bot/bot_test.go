package bot

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"lenabot/internal/history"
	"lenabot/internal/model"
	"lenabot/internal/sanitize"
	"lenabot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	testAdminID  = int64(1003817394)
	testUsername = "lenaneyrobot"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var texts []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			texts = append(texts, m.Text)
		case tgbotapi.EditMessageTextConfig:
			texts = append(texts, m.Text)
		}
	}
	return texts
}

func (f *fakeAPI) lastText() string {
	texts := f.sentTexts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type fakeQuota struct {
	result *model.AdmitResult
	err    error
	status *model.QuotaStatus
	admits int
}

func (f *fakeQuota) Admit(_ context.Context, _ int64, _ time.Time) (*model.AdmitResult, error) {
	f.admits++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeQuota) Status(_ context.Context, userID int64, _ time.Time) (*model.QuotaStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.status != nil {
		return f.status, nil
	}
	return &model.QuotaStatus{UserID: userID, BaseLimit: 35, TotalLimit: 35, Remaining: 35}, nil
}

type fakeReferrals struct {
	registered map[int64]int64
	err        error
}

func (f *fakeReferrals) Register(_ context.Context, invitedID, referrerID int64, _ time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if invitedID == referrerID {
		return false, service.ErrSelfReferral
	}
	if _, ok := f.registered[invitedID]; ok {
		return false, nil
	}
	if f.registered == nil {
		f.registered = make(map[int64]int64)
	}
	f.registered[invitedID] = referrerID
	return true, nil
}

func (f *fakeReferrals) Count(_ context.Context, referrerID int64) (int, error) {
	count := 0
	for _, r := range f.registered {
		if r == referrerID {
			count++
		}
	}
	return count, nil
}

// fakeAdmin mirrors AdminService semantics, including the zero floor.
type fakeAdmin struct {
	balances map[int64]int
	calls    int
}

func (f *fakeAdmin) change(targetID int64, delta int, actorID int64, now time.Time) (*model.BonusChange, int, error) {
	f.calls++
	if f.balances == nil {
		f.balances = make(map[int64]int)
	}
	resulting := f.balances[targetID] + delta
	if resulting < 0 {
		resulting = 0
	}
	f.balances[targetID] = resulting
	change := &model.BonusChange{
		ID:             uuid.New(),
		UserID:         targetID,
		Delta:          delta,
		ResultingBonus: resulting,
		ActorID:        actorID,
		CreatedAt:      now,
	}
	return change, 35 + resulting, nil
}

func (f *fakeAdmin) Grant(_ context.Context, targetID int64, amount int, actorID int64, now time.Time) (*model.BonusChange, int, error) {
	return f.change(targetID, amount, actorID, now)
}

func (f *fakeAdmin) Revoke(_ context.Context, targetID int64, amount int, actorID int64, now time.Time) (*model.BonusChange, int, error) {
	return f.change(targetID, -amount, actorID, now)
}

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompt  []model.Turn
	prompts [][]model.Turn
	calls   int

	// When set, the first Complete call parks here until it is closed.
	block chan struct{}
}

func (f *fakeCompleter) Complete(_ context.Context, turns []model.Turn) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompt = turns
	f.prompts = append(f.prompts, turns)
	first := f.calls == 1
	blk := f.block
	f.mu.Unlock()

	if first && blk != nil {
		<-blk
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCompleter) promptAt(i int) []model.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[i]
}

type testBot struct {
	bot       *Bot
	api       *fakeAPI
	quota     *fakeQuota
	referrals *fakeReferrals
	admin     *fakeAdmin
	completer *fakeCompleter
}

func newTestBot() *testBot {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
	quota := &fakeQuota{result: &model.AdmitResult{Allowed: true, Used: 1, Limit: 35}}
	referrals := &fakeReferrals{}
	admin := &fakeAdmin{}
	completer := &fakeCompleter{reply: "hello there."}

	sanitizer := sanitize.New(rand.New(rand.NewSource(1)))
	sanitizer.EmojiChance = 0

	cfg := Config{
		AdminID:       testAdminID,
		Persona:       DefaultPersona + PersonaSuffix,
		CardNumber:    "0000 0000 0000 0000",
		ContactLink:   "https://t.me/devcontact",
		UnlimitedChat: "https://t.me/unlimited",
	}

	b := newBot(api, testUsername, cfg, quota, referrals, admin,
		history.New(), completer, sanitizer, zap.NewNop())

	return &testBot{
		bot:       b,
		api:       api,
		quota:     quota,
		referrals: referrals,
		admin:     admin,
		completer: completer,
	}
}

func privateMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: userID, FirstName: "Test", UserName: "testuser"},
		Chat: &tgbotapi.Chat{ID: chatID, Type: "private"},
	}
}

func groupMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: userID, FirstName: "Test", UserName: "testuser"},
		Chat: &tgbotapi.Chat{ID: chatID, Type: "group"},
	}
}

func command(msg *tgbotapi.Message) *tgbotapi.Message {
	length := len(msg.Text)
	for i, r := range msg.Text {
		if r == ' ' {
			length = i
			break
		}
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	return msg
}
