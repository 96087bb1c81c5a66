package model

import (
	"time"
)

// Entitlement holds a user's subscription tier and remaining analysis credits.
// The tier gates the chat/correction feature, credits gate new analyses.
type Entitlement struct {
	UserID           string    `json:"user_id" gorm:"primaryKey"`
	PlanType         string    `json:"plan_type"` // free, pro
	Credits          int       `json:"credits"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Plan type constants
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// AuditLog records a best-effort trail of sensitive actions. Writes must
// never fail the primary operation.
type AuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
