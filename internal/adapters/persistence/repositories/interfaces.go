package repositories

import (
	"context"
	"time"

	"creditoya-web/internal/core/domain"
)

// PendingLoanRepository stores loans awaiting their one-time code.
// GetActive returns domain.ErrPendingLoanMissing when nothing unexpired exists.
type PendingLoanRepository interface {
	Save(ctx context.Context, loan *domain.PendingLoan) error
	GetActive(ctx context.Context, userID string, now time.Time) (*domain.PendingLoan, error)
	Delete(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
