// Package session keeps computed plans retrievable for a limited time so the
// result can be shown, printed or exported after it was calculated.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iwvelando/installment-plan/internal/plan"
)

// ErrNotFound is returned when no plan is stored under an id, including when
// it has expired.
var ErrNotFound = errors.New("session not found")

// Store persists plan results for the duration of a session.
type Store interface {
	Save(ctx context.Context, id string, result plan.Result) error
	Load(ctx context.Context, id string) (plan.Result, error)
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
