package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"creditoya-web/internal/core/domain"
	"creditoya-web/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Field names with special handling
const (
	FieldBirthDay       = "birth_day"
	FieldBirthDate      = "birthDate"
	FieldSecondLastName = "secondLastName"
	FieldDocumentNumber = "Document[0].number"
)

var (
	ErrUpdateInProgress = errors.New("field update already in progress")
	ErrNoDocument       = errors.New("user has no identity document")
)

// Panel loads the signed-in user's profile and sends field edits
type Panel struct {
	api *Client

	mu         sync.Mutex
	profiles   map[string]*domain.User
	updating   map[string]bool
	lastValues map[string]string
	validity   map[string]bool
}

// NewPanel returns a panel backed by api
func NewPanel(api *Client) *Panel {
	return &Panel{
		api:        api,
		profiles:   make(map[string]*domain.User),
		updating:   make(map[string]bool),
		lastValues: make(map[string]string),
		validity:   make(map[string]bool),
	}
}

// Load returns the full profile of userID, fetching it only once
func (p *Panel) Load(ctx context.Context, userID string) (*domain.User, error) {
	p.mu.Lock()
	user, ok := p.profiles[userID]
	p.mu.Unlock()
	if ok {
		return user, nil
	}

	user, err := p.api.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.profiles[userID] = user
	p.mu.Unlock()
	return user, nil
}

// Refresh drops the memoized profile and loads it again
func (p *Panel) Refresh(ctx context.Context, userID string) (*domain.User, error) {
	p.forget(userID)
	return p.Load(ctx, userID)
}

// Checklist loads the profile and reports which fields are complete
func (p *Panel) Checklist(ctx context.Context, userID string) (domain.Checklist, error) {
	user, err := p.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.BuildChecklist(user), nil
}

// LatestLoan returns the latest loan, or nil with the server's message
func (p *Panel) LatestLoan(ctx context.Context, userID string) (*domain.LoanApplication, string, error) {
	return p.api.LatestLoan(ctx, userID)
}

// UpdateField saves one field of user. Repeating the last saved value is a
// no-op, and a field already being saved is not sent again.
func (p *Panel) UpdateField(ctx context.Context, user *domain.User, field string, value interface{}) (bool, error) {
	if user == nil || user.ID == "" {
		return false, ErrNoUser
	}

	if field == FieldBirthDay && value != nil {
		normalized, err := noonISO(value)
		if err != nil {
			return false, err
		}
		value = normalized
	}

	key := valueKey(value)

	p.mu.Lock()
	if p.updating[field] {
		p.mu.Unlock()
		return false, ErrUpdateInProgress
	}
	if last, ok := p.lastValues[field]; ok && last == key {
		p.mu.Unlock()
		return true, nil
	}
	p.validity[field] = IsFieldValid(field, value)
	p.updating[field] = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.updating, field)
		p.mu.Unlock()
	}()

	apiField, apiValue, err := updatePayload(user, field, value)
	if err != nil {
		return false, err
	}

	if err := p.api.UpdateField(ctx, user.ID, apiField, apiValue); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"user_id": user.ID,
			"field":   field,
		}).Warn("profile field update failed")
		return false, err
	}

	p.mu.Lock()
	p.lastValues[field] = key
	delete(p.profiles, user.ID)
	p.mu.Unlock()
	return true, nil
}

// IsFieldUpdating reports whether field is being saved
func (p *Panel) IsFieldUpdating(field string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updating[field]
}

// FieldValid returns the validity recorded by the last edit of field, or
// computes it for current when the field was never edited.
func (p *Panel) FieldValid(field string, current interface{}) bool {
	p.mu.Lock()
	valid, ok := p.validity[field]
	p.mu.Unlock()
	if ok {
		return valid
	}
	return IsFieldValid(field, current)
}

func (p *Panel) forget(userID string) {
	p.mu.Lock()
	delete(p.profiles, userID)
	p.mu.Unlock()
}

// IsFieldValid reports whether value counts as filled in. The second last
// name is optional and always valid.
func IsFieldValid(field string, value interface{}) bool {
	if field == FieldSecondLastName {
		return true
	}

	switch v := value.(type) {
	case nil:
		return false
	case *string:
		if v == nil {
			return false
		}
		return IsFieldValid(field, *v)
	case string:
		if v == domain.NotDefined || v == domain.NotDefinedPlural {
			return false
		}
		return strings.TrimSpace(v) != ""
	case time.Time:
		if field == FieldBirthDate {
			return !v.IsZero()
		}
	}
	return true
}

// FormatFieldValue renders value for an input box
func FormatFieldValue(field string, value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case *string:
		if v == nil {
			return ""
		}
		return FormatFieldValue(field, *v)
	case time.Time:
		if field == FieldBirthDate {
			return v.UTC().Format(time.DateOnly)
		}
	case string:
		if field == FieldBirthDate && v != "" {
			if t, err := parseDate(v); err == nil {
				return t.UTC().Format(time.DateOnly)
			}
			return ""
		}
		if v == domain.NotDefined || v == domain.NotDefinedPlural {
			return ""
		}
		return v
	}
	return fmt.Sprint(value)
}

// updatePayload maps a form field onto the body of PUT /api/auth/me. The
// document number is a nested update of the user's first document.
func updatePayload(user *domain.User, field string, value interface{}) (string, interface{}, error) {
	i := strings.Index(field, "[")
	if i < 0 {
		return field, value, nil
	}
	if field != FieldDocumentNumber {
		return field[:i], value, nil
	}
	if len(user.Document) == 0 {
		return "", nil, ErrNoDocument
	}
	return "Document", map[string]interface{}{
		"update": map[string]interface{}{
			"where": map[string]string{"id": user.Document[0].ID},
			"data":  map[string]interface{}{"number": value},
		},
	}, nil
}

// noonISO pins a birth date to 12:00 UTC so no timezone moves the day
func noonISO(value interface{}) (string, error) {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := parseDate(v)
		if err != nil {
			return "", fmt.Errorf("invalid birth date %q: %w", v, err)
		}
		t = parsed
	default:
		return "", fmt.Errorf("invalid birth date %v", value)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Format("2006-01-02T15:04:05.000Z"), nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// valueKey makes values comparable for de-duplication
func valueKey(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
