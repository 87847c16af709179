package models

import (
	"time"

	"creditoya-web/internal/core/domain"

	"gorm.io/gorm"
)

// PendingLoan represents pending_loans table. One row per user at most.
type PendingLoan struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"uniqueIndex;size:64;not null" json:"user_id"`
	LoanID         string    `gorm:"size:64;not null" json:"loan_id"`
	IdempotencyKey string    `gorm:"size:36;not null" json:"idempotency_key"`
	SessionHash    string    `gorm:"size:64;not null" json:"session_hash"`
	ExpiresAt      time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PendingLoan) TableName() string {
	return "pending_loans"
}

// ToDomain converts the row to the domain record
func (p *PendingLoan) ToDomain() *domain.PendingLoan {
	return &domain.PendingLoan{
		UserID:         p.UserID,
		LoanID:         p.LoanID,
		IdempotencyKey: p.IdempotencyKey,
		SessionHash:    p.SessionHash,
		ExpiresAt:      p.ExpiresAt,
	}
}

// PendingLoanFromDomain builds a row from a domain record
func PendingLoanFromDomain(p *domain.PendingLoan) *PendingLoan {
	return &PendingLoan{
		UserID:         p.UserID,
		LoanID:         p.LoanID,
		IdempotencyKey: p.IdempotencyKey,
		SessionHash:    p.SessionHash,
		ExpiresAt:      p.ExpiresAt,
	}
}

// AutoMigrate creates the tables this service owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&PendingLoan{})
}
