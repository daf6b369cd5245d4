package partner

import (
	"context"
	"time"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

// Repository defines the persistence operations for partner verification.
type Repository interface {
	// FindByCode returns the disposal with the given code, joined with its
	// user and pharmacy. Returns ErrNotFound when no disposal matches.
	FindByCode(ctx context.Context, code string) (*domain.DisposalRecord, error)

	// Complete marks a Pending disposal Completed at completedAt, credits
	// the owner bonusPoints and increments the pharmacy's verified count,
	// atomically. Returns ErrAlreadyCompleted if the disposal is no longer
	// Pending.
	Complete(ctx context.Context, id string, completedAt time.Time, bonusPoints int) error

	// CountCompleted counts Completed disposals with completed_at in [from, to).
	CountCompleted(ctx context.Context, from, to time.Time) (int, error)
	CountAllCompleted(ctx context.Context) (int, error)
	RecentCompleted(ctx context.Context, limit int) ([]domain.DisposalRecord, error)

	// CountActiveUsers counts users updated at or after since.
	CountActiveUsers(ctx context.Context, since time.Time) (int, error)
}
