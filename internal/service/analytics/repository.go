package analytics

import (
	"context"
	"time"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

// Repository is the read-only disposal source used for reporting.
// Implementations must be safe for concurrent use.
type Repository interface {
	// ListCompleted returns every Completed disposal whose CreatedAt lies
	// inside r (both bounds inclusive). Records carry their joined pharmacy
	// when one is assigned.
	ListCompleted(ctx context.Context, r Range) ([]domain.DisposalRecord, error)
}

// Cache memoizes report results across requests.
type Cache interface {
	// Get decodes the cached value for key into dst and reports whether it existed.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Narrator turns a prompt into free text. The analytics service owns the
// prompt and the parsing of the reply.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}

// Observer receives pipeline events for metrics.
type Observer interface {
	CacheLookup(endpoint string, hit bool)
	SpikesDetected(category string, n int)
}
