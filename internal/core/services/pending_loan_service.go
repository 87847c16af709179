package services

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"creditoya-web/internal/adapters/persistence/repositories"
	"creditoya-web/internal/core/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// PendingLoanService tracks loans created on the gateway that still wait
// for their one-time code, so a second submit resumes instead of duplicating.
//
// A record is only handed back to the session that created it. Session
// tokens are not verified locally, so the user id alone proves nothing.
type PendingLoanService struct {
	repo     repositories.PendingLoanRepository
	lifetime time.Duration
	now      func() time.Time
}

// NewPendingLoanService creates a new pending loan service
func NewPendingLoanService(repo repositories.PendingLoanRepository, lifetime time.Duration) *PendingLoanService {
	return &PendingLoanService{
		repo:     repo,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Lifetime is how long a record stays active after creation
func (s *PendingLoanService) Lifetime() time.Duration {
	return s.lifetime
}

// NewIdempotencyKey returns a key to send with a loan creation
func (s *PendingLoanService) NewIdempotencyKey() string {
	return uuid.NewString()
}

// Register records loanID as the user's pending loan, replacing any older
// one. sessionToken is the token the gateway accepted for the creation.
func (s *PendingLoanService) Register(ctx context.Context, userID, loanID, idempotencyKey, sessionToken string) (*domain.PendingLoan, error) {
	loan := &domain.PendingLoan{
		UserID:         userID,
		LoanID:         loanID,
		IdempotencyKey: idempotencyKey,
		ExpiresAt:      s.now().Add(s.lifetime),
		SessionHash:    sessionHash(sessionToken),
	}
	if err := s.repo.Save(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// Active returns the user's unexpired record when it was created with
// sessionToken, or nil otherwise
func (s *PendingLoanService) Active(ctx context.Context, userID, sessionToken string) (*domain.PendingLoan, error) {
	if userID == "" || sessionToken == "" {
		return nil, nil
	}

	loan, err := s.repo.GetActive(ctx, userID, s.now())
	if errors.Is(err, domain.ErrPendingLoanMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(loan.SessionHash), []byte(sessionHash(sessionToken))) != 1 {
		return nil, nil
	}
	return loan, nil
}

// Clear forgets the user's record
func (s *PendingLoanService) Clear(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

// PurgeExpired deletes every expired record and reports how many went
func (s *PendingLoanService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func sessionHash(sessionToken string) string {
	sum := blake2b.Sum256([]byte(sessionToken))
	return hex.EncodeToString(sum[:])
}
