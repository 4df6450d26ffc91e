package store

import (
	"context"
	"fmt"
	"slices"

	"LenaAI/models"

	"gorm.io/gorm"
)

// RecentMessages returns at most limit turns of the user, newest first.
// Turns of one exchange share a timestamp often enough that id breaks the tie.
func (s *Store) RecentMessages(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msgs, nil
}

// History returns the latest limit turns in chronological order.
func (s *Store) History(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	msgs, err := s.RecentMessages(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

func (s *Store) CountMessages(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// SaveExchange writes the user turn and the assistant reply in one transaction.
// Either both rows are committed or neither is.
func (s *Store) SaveExchange(ctx context.Context, userID uint, userText, reply string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userTurn := models.Message{UserID: userID, Text: userText, Sender: models.SenderUser}
		if err := tx.Create(&userTurn).Error; err != nil {
			return fmt.Errorf("save user turn: %w", err)
		}
		botTurn := models.Message{UserID: userID, Text: reply, Sender: models.SenderAssistant}
		if err := tx.Create(&botTurn).Error; err != nil {
			return fmt.Errorf("save assistant turn: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
