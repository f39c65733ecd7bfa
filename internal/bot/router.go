package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lenabot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// routeMessage drives the full inbound path: addressing filter, quota
// admit, completion call, sanitization, history update, delivery.
func (b *Bot) routeMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Text == "" || msg.Chat == nil {
		return
	}

	if !isAddressed(msg, b.username) {
		return
	}

	unlimited := b.isUnlimitedChat(msg.Chat.ID)
	if !unlimited {
		result, err := b.quota.Admit(ctx, msg.From.ID, time.Now())
		if err != nil {
			b.sendText(ctx, msg.Chat.ID, storeTroubleText)
			return
		}
		if !result.Allowed {
			b.log.Warn("daily message limit reached",
				zap.Int64("user_id", msg.From.ID),
				zap.Int("limit", result.Limit))
			b.sendText(ctx, msg.Chat.ID, fmt.Sprintf(limitTemplate, result.Limit, b.cfg.UnlimitedChat))
			return
		}
	}

	b.log.Info("handling message",
		zap.Int64("user_id", msg.From.ID),
		zap.Int64("chat_id", msg.Chat.ID))

	if _, err := b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		b.log.Warn("failed to send typing action", zap.Error(err))
	}

	userTurn := model.Turn{
		Role:    model.RoleUser,
		Content: fmt.Sprintf("%s: %s", displayName(msg.From), msg.Text),
	}
	turns := buildPrompt(b.cfg.Persona, b.history.Get(msg.Chat.ID, msg.From.ID), userTurn)

	completion, err := b.completer.Complete(ctx, turns)
	if err != nil {
		// Nothing is appended: the user's turn can be resent.
		b.log.Error("completion failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.sendText(ctx, msg.Chat.ID, apologyText)
		return
	}

	reply := b.sanitizer.Clean(completion)
	if strings.TrimSpace(reply) == "" {
		reply = fallbackReplyText
	}

	b.history.Append(msg.Chat.ID, msg.From.ID, userTurn, model.Turn{
		Role:    model.RoleAssistant,
		Content: reply,
	})

	b.sendText(ctx, msg.Chat.ID, reply)
}

// isAddressed applies the group-chat addressing rule: private chats always
// qualify; elsewhere the message must reply to the bot, mention its handle,
// or contain the handle as plain text.
func isAddressed(msg *tgbotapi.Message, username string) bool {
	if msg.Chat.IsPrivate() {
		return true
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.UserName == username {
		return true
	}

	if strings.Contains(msg.Text, "@"+username) {
		return true
	}

	return strings.Contains(strings.ToLower(msg.Text), strings.ToLower(username))
}

// buildPrompt orders the outbound request: persona, stored history, then
// the new user turn.
func buildPrompt(persona string, hist []model.Turn, userTurn model.Turn) []model.Turn {
	turns := make([]model.Turn, 0, len(hist)+2)
	turns = append(turns, model.Turn{Role: model.RoleSystem, Content: persona})
	turns = append(turns, hist...)
	turns = append(turns, userTurn)
	return turns
}

func (b *Bot) isUnlimitedChat(chatID int64) bool {
	for _, id := range b.cfg.UnlimitedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func displayName(user *tgbotapi.User) string {
	if user.LastName != "" {
		return user.FirstName + " " + user.LastName
	}
	return user.FirstName
}
