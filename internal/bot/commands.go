package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lenabot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "info":
		b.handleInfo(ctx, msg)
	case "ref":
		b.handleRef(ctx, msg)
	case "clear":
		b.handleClear(ctx, msg)
	case "stat":
		b.handleStat(ctx, msg)
	case "buy":
		b.handleBuy(ctx, msg)
	case "dev":
		b.handleDevCommand(ctx, msg)
	case "cancel":
		b.handleCancelCommand(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if arg := msg.CommandArguments(); arg != "" {
		if referrerID, err := strconv.ParseInt(arg, 10, 64); err == nil && referrerID >= 0 {
			_, err := b.referrals.Register(ctx, msg.From.ID, referrerID, time.Now())
			if err != nil && !errors.Is(err, service.ErrSelfReferral) {
				b.log.Error("failed to register referral",
					zap.Int64("invited_id", msg.From.ID),
					zap.Int64("referrer_id", referrerID),
					zap.Error(err))
			}
		}
	}

	b.sendText(ctx, msg.Chat.ID, greetingText)
}

func (b *Bot) handleInfo(ctx context.Context, msg *tgbotapi.Message) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Information", infoButtonURL),
		),
	)

	reply := tgbotapi.NewMessage(msg.Chat.ID, infoText)
	reply.ReplyMarkup = keyboard
	b.deliver(ctx, reply)
}

func (b *Bot) handleRef(ctx context.Context, msg *tgbotapi.Message) {
	status, err := b.quota.Status(ctx, msg.From.ID, time.Now())
	if err != nil {
		b.log.Error("failed to load quota status", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.sendText(ctx, msg.Chat.ID, storeTroubleText)
		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%d", b.username, msg.From.ID)
	b.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(refTemplate, link, status.ReferralCount, status.TotalLimit))
}

func (b *Bot) handleClear(ctx context.Context, msg *tgbotapi.Message) {
	if b.history.Clear(msg.Chat.ID, msg.From.ID) {
		b.log.Info("context cleared",
			zap.Int64("user_id", msg.From.ID),
			zap.Int64("chat_id", msg.Chat.ID))
		b.sendText(ctx, msg.Chat.ID, clearedText)
		return
	}
	b.sendText(ctx, msg.Chat.ID, noHistoryText)
}

func (b *Bot) handleStat(ctx context.Context, msg *tgbotapi.Message) {
	status, err := b.quota.Status(ctx, msg.From.ID, time.Now())
	if err != nil {
		b.log.Error("failed to load quota status", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.sendText(ctx, msg.Chat.ID, storeTroubleText)
		return
	}

	unlimitedNote := ""
	if b.isUnlimitedChat(msg.Chat.ID) {
		unlimitedNote = statUnlimitedNote
	}

	historyNote := "none"
	if b.history.HasUser(msg.From.ID) {
		historyNote = "saved"
	}

	b.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(statTemplate,
		unlimitedNote,
		status.BaseLimit,
		status.ReferralBonus, status.ReferralCount,
		status.BonusMessages,
		status.TotalLimit,
		status.Used,
		status.Remaining,
		historyNote,
	))
}

func (b *Bot) handleBuy(ctx context.Context, msg *tgbotapi.Message) {
	b.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(buyTemplate, b.cfg.CardNumber, msg.From.ID, b.cfg.ContactLink))
}
