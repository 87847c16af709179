package repositories

import (
	"context"
	"sync"
	"time"

	"creditoya-web/internal/core/domain"
)

// memoryPendingLoanRepository is the single-instance store used in
// development and tests
type memoryPendingLoanRepository struct {
	mu    sync.Mutex
	loans map[string]domain.PendingLoan
}

// NewMemoryPendingLoanRepository creates an in-process pending loan repository
func NewMemoryPendingLoanRepository() PendingLoanRepository {
	return &memoryPendingLoanRepository{loans: make(map[string]domain.PendingLoan)}
}

func (r *memoryPendingLoanRepository) Save(ctx context.Context, loan *domain.PendingLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[loan.UserID] = *loan
	return nil
}

func (r *memoryPendingLoanRepository) GetActive(ctx context.Context, userID string, now time.Time) (*domain.PendingLoan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loan, ok := r.loans[userID]
	if !ok || loan.Expired(now) {
		return nil, domain.ErrPendingLoanMissing
	}
	return &loan, nil
}

func (r *memoryPendingLoanRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loans, userID)
	return nil
}

func (r *memoryPendingLoanRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, loan := range r.loans {
		if loan.Expired(now) {
			delete(r.loans, id)
			n++
		}
	}
	return n, nil
}
