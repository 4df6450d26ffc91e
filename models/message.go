package models

import "time"

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one stored chat turn. Turns are written in user/assistant pairs and never updated.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index:idx_messages_user_created,priority:1"`
	Text      string    `gorm:"type:text;not null"`
	Sender    string    `gorm:"size:20;not null;check:chk_messages_sender,sender IN ('user','assistant')"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_messages_user_created,priority:2"`
}
