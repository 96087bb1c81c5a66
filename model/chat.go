package model

import (
	"time"
)

// ChatTurn is one user-message/assistant-message exchange. DocumentID is
// empty for general chat that is not tied to a document. Append-only.
type ChatTurn struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DocumentID  string    `json:"document_id,omitempty" gorm:"index"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	UserID      string    `json:"user_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}
