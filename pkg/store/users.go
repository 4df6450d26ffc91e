package store

import (
	"context"
	"fmt"

	"LenaAI/models"
)

func (s *Store) FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("user_id = ?", externalID).First(&user).Error
	if err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

// CreateUser inserts user and fills its ID. ErrDuplicate is returned when the
// external identifier is taken.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if err = translate(err); err == ErrDuplicate {
			return err
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) UpdateUserName(ctx context.Context, userID uint, name *string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("name", name)
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
