package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"creditoya-web/internal/adapters/persistence/models"
	"creditoya-web/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

const pendingLoanKeyPrefix = "creditoya:pending_loan:"

func pendingLoanKey(userID string) string {
	return pendingLoanKeyPrefix + userID
}

// redisPendingLoanRepository keeps one key per user with a TTL matching
// the record's expiry, so redis does the purging.
type redisPendingLoanRepository struct {
	client *redis.Client
}

// NewRedisPendingLoanRepository creates a redis backed pending loan repository
func NewRedisPendingLoanRepository(client *redis.Client) PendingLoanRepository {
	return &redisPendingLoanRepository{client: client}
}

func (r *redisPendingLoanRepository) Save(ctx context.Context, loan *domain.PendingLoan) error {
	ttl := time.Until(loan.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("pending loan for %s already expired", loan.UserID)
	}

	data, err := json.Marshal(models.PendingLoanFromDomain(loan))
	if err != nil {
		return err
	}
	return r.client.Set(ctx, pendingLoanKey(loan.UserID), data, ttl).Err()
}

func (r *redisPendingLoanRepository) GetActive(ctx context.Context, userID string, now time.Time) (*domain.PendingLoan, error) {
	value, err := r.client.Get(ctx, pendingLoanKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrPendingLoanMissing
	}
	if err != nil {
		return nil, err
	}

	var row models.PendingLoan
	if err := json.Unmarshal(value, &row); err != nil {
		return nil, fmt.Errorf("decode pending loan: %w", err)
	}
	loan := row.ToDomain()
	if loan.Expired(now) {
		return nil, domain.ErrPendingLoanMissing
	}
	return loan, nil
}

func (r *redisPendingLoanRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, pendingLoanKey(userID)).Err()
}

// DeleteExpired is a no-op; keys expire on their own
func (r *redisPendingLoanRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
