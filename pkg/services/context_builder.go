package services

import (
	"context"

	"LenaAI/models"
)

// TurnReader returns a user's latest turns, newest first.
type TurnReader interface {
	RecentMessages(ctx context.Context, userID uint, limit int) ([]models.Message, error)
}

// ContextBuilder assembles the prompt sent upstream: the persona as a system
// entry, then up to limit stored turns in chronological order, then the new
// user message. The provider is sensitive to this order.
type ContextBuilder struct {
	turns   TurnReader
	limit   int
	persona string
}

func NewContextBuilder(turns TurnReader, limit int, persona string) *ContextBuilder {
	if limit < 0 {
		limit = 0
	}
	return &ContextBuilder{turns: turns, limit: limit, persona: persona}
}

func (b *ContextBuilder) Limit() int {
	return b.limit
}

func (b *ContextBuilder) Build(ctx context.Context, user *models.User, text string) ([]ChatMessage, error) {
	recent, err := b.turns.RecentMessages(ctx, user.ID, b.limit)
	if err != nil {
		return nil, err
	}
	return b.Assemble(recent, text), nil
}

// Assemble builds the context from turns given newest first.
func (b *ContextBuilder) Assemble(newestFirst []models.Message, text string) []ChatMessage {
	chat := make([]ChatMessage, 0, len(newestFirst)+2)
	chat = append(chat, ChatMessage{Role: RoleSystem, Text: b.persona})
	for i := len(newestFirst) - 1; i >= 0; i-- {
		m := newestFirst[i]
		chat = append(chat, ChatMessage{Role: senderRole(m.Sender), Text: m.Text})
	}
	return append(chat, ChatMessage{Role: RoleUser, Text: text})
}

func senderRole(sender string) string {
	if sender == models.SenderUser {
		return RoleUser
	}
	return RoleAssistant
}
