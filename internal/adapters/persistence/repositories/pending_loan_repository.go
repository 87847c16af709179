package repositories

import (
	"context"
	"errors"
	"time"

	"creditoya-web/internal/adapters/persistence/models"
	"creditoya-web/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pendingLoanRepository implements PendingLoanRepository on MySQL
type pendingLoanRepository struct {
	db *gorm.DB
}

// NewPendingLoanRepository creates a gorm backed pending loan repository
func NewPendingLoanRepository(db *gorm.DB) PendingLoanRepository {
	return &pendingLoanRepository{db: db}
}

// Save inserts or replaces the user's record
func (r *pendingLoanRepository) Save(ctx context.Context, loan *domain.PendingLoan) error {
	row := models.PendingLoanFromDomain(loan)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"loan_id", "idempotency_key", "session_hash", "expires_at", "updated_at"}),
		}).
		Create(row).Error
}

// GetActive gets the user's unexpired record
func (r *pendingLoanRepository) GetActive(ctx context.Context, userID string, now time.Time) (*domain.PendingLoan, error) {
	var row models.PendingLoan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("expires_at > ?", now).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPendingLoanMissing
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Delete removes the user's record, if any
func (r *pendingLoanRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.PendingLoan{}).Error
}

// DeleteExpired removes every record expired at now
func (r *pendingLoanRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.PendingLoan{})
	return result.RowsAffected, result.Error
}
