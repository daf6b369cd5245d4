package partner

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

const (
	// PointsPerItem is the bonus credited per disposed item on completion.
	PointsPerItem = 5
	// CO2PerDisposalKg is the estimated emission saved per completed disposal.
	CO2PerDisposalKg = 0.7
	recentLimit      = 10
)

// Service implements partner verification. It is safe for concurrent use.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a partner service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Completion is the outcome of completing a disposal.
type Completion struct {
	Disposal    *domain.DisposalRecord `json:"disposal"`
	BonusPoints int                    `json:"bonusPoints"`
}

// Stats are the partner dashboard counters.
type Stats struct {
	TodayCount  int     `json:"todayCount"`
	MonthCount  int     `json:"monthCount"`
	TotalCount  int     `json:"totalCount"`
	CO2Saved    float64 `json:"co2Saved"`
	ActiveUsers int     `json:"activeUsers"`
}

// Dashboard is the full partner stats payload.
type Dashboard struct {
	Stats           Stats                   `json:"stats"`
	RecentDisposals []domain.DisposalRecord `json:"recentDisposals"`
}

// NormalizeCode trims and upper-cases a disposal code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Verify looks up a Pending disposal by code. An already completed disposal
// is returned together with ErrAlreadyCompleted.
func (s *Service) Verify(ctx context.Context, code string) (*domain.DisposalRecord, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	rec, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rec.IsCompleted() {
		return rec, ErrAlreadyCompleted
	}
	return rec, nil
}

// Complete verifies the code and marks the disposal Completed, crediting
// PointsPerItem for every item on it.
func (s *Service) Complete(ctx context.Context, code string) (*Completion, error) {
	rec, err := s.Verify(ctx, code)
	if err != nil {
		return nil, err
	}

	completedAt := s.now()
	bonus := len(rec.Items) * PointsPerItem
	if err := s.repo.Complete(ctx, rec.ID, completedAt, bonus); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByCode(ctx, rec.DisposalCode)
	if err != nil {
		return nil, fmt.Errorf("reload completed disposal: %w", err)
	}
	return &Completion{Disposal: updated, BonusPoints: bonus}, nil
}

// Stats computes the dashboard for the server-local calendar day and month
// containing now.
func (s *Service) Stats(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	loc := now.Location()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	today, err := s.repo.CountCompleted(ctx, startOfDay, startOfDay.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}
	month, err := s.repo.CountCompleted(ctx, startOfMonth, startOfMonth.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("count month: %w", err)
	}
	total, err := s.repo.CountAllCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("count total: %w", err)
	}
	active, err := s.repo.CountActiveUsers(ctx, startOfDay)
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	recent, err := s.repo.RecentCompleted(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent disposals: %w", err)
	}
	if recent == nil {
		recent = []domain.DisposalRecord{}
	}

	return &Dashboard{
		Stats: Stats{
			TodayCount:  today,
			MonthCount:  month,
			TotalCount:  total,
			CO2Saved:    math.Round(float64(today)*CO2PerDisposalKg*10) / 10,
			ActiveUsers: active,
		},
		RecentDisposals: recent,
	}, nil
}
