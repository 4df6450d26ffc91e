package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is identified externally by ExternalID (username, email or a front-end generated id).
// PasswordHash is nil for users created implicitly on their first chat message.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	ExternalID   string    `gorm:"column:user_id;uniqueIndex;size:191;not null"`
	Name         *string   `gorm:"size:120"`
	PasswordHash *string   `gorm:"column:password;size:255"`
	Messages     []Message `gorm:"constraint:OnDelete:RESTRICT"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	digest := string(hash)
	u.PasswordHash = &digest
	return nil
}

// CheckPassword reports false for users without a stored digest.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password))
	return err == nil
}

func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
