package partner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

// memRepo is an in-memory partner repository for testing.
type memRepo struct {
	mu         sync.Mutex
	disposals  map[string]*domain.DisposalRecord // keyed by code
	points     map[string]int                    // keyed by user ID
	verified   map[string]int                    // keyed by pharmacy ID
	userSeenAt map[string]time.Time
}

func newMemRepo(records ...domain.DisposalRecord) *memRepo {
	m := &memRepo{
		disposals:  make(map[string]*domain.DisposalRecord),
		points:     make(map[string]int),
		verified:   make(map[string]int),
		userSeenAt: make(map[string]time.Time),
	}
	for i := range records {
		rec := records[i]
		m.disposals[rec.DisposalCode] = &rec
	}
	return m
}

func (m *memRepo) FindByCode(_ context.Context, code string) (*domain.DisposalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.disposals[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memRepo) Complete(_ context.Context, id string, completedAt time.Time, bonus int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.disposals {
		if rec.ID != id {
			continue
		}
		if rec.IsCompleted() {
			return ErrAlreadyCompleted
		}
		rec.Status = domain.DisposalCompleted
		at := completedAt
		rec.CompletedAt = &at
		m.points[rec.UserID] += bonus
		m.userSeenAt[rec.UserID] = completedAt
		if rec.PharmacyID != nil {
			m.verified[*rec.PharmacyID]++
		}
		return nil
	}
	return ErrNotFound
}

func (m *memRepo) CountCompleted(_ context.Context, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rec := range m.disposals {
		if rec.IsCompleted() && rec.CompletedAt != nil &&
			!rec.CompletedAt.Before(from) && rec.CompletedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CountAllCompleted(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rec := range m.disposals {
		if rec.IsCompleted() {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) RecentCompleted(_ context.Context, limit int) ([]domain.DisposalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DisposalRecord
	for _, rec := range m.disposals {
		if rec.IsCompleted() {
			out = append(out, *rec)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) CountActiveUsers(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, at := range m.userSeenAt {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}

func pending(id, code string, items int) domain.DisposalRecord {
	pharmacyID := "pharm-1"
	rec := domain.DisposalRecord{
		ID:           id,
		UserID:       "user-" + id,
		PharmacyID:   &pharmacyID,
		Status:       domain.DisposalPending,
		DisposalCode: code,
		CreatedAt:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	for i := 0; i < items; i++ {
		rec.Items = append(rec.Items, domain.Item{MedicineName: "Crocin", Quantity: 1})
	}
	return rec
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestVerify_NormalizesCode(t *testing.T) {
	svc := NewService(newMemRepo(pending("d1", "ABC123", 2)))

	rec, err := svc.Verify(context.Background(), "  abc123 ")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rec.ID != "d1" {
		t.Errorf("expected d1, got %s", rec.ID)
	}
}

func TestVerify_Errors(t *testing.T) {
	done := pending("d2", "DONE01", 1)
	done.Status = domain.DisposalCompleted
	svc := NewService(newMemRepo(done))
	ctx := context.Background()

	if _, err := svc.Verify(ctx, ""); !errors.Is(err, ErrCodeRequired) {
		t.Errorf("expected ErrCodeRequired, got %v", err)
	}
	if _, err := svc.Verify(ctx, "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	rec, err := svc.Verify(ctx, "done01")
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
	if rec == nil || rec.ID != "d2" {
		t.Error("already completed disposal should be returned with the error")
	}
}

func TestComplete_CreditsPointsAndPharmacy(t *testing.T) {
	repo := newMemRepo(pending("d1", "ABC123", 3))
	now := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)
	svc := NewService(repo)
	svc.now = fixedClock(now)

	res, err := svc.Complete(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.BonusPoints != 15 {
		t.Errorf("expected 15 bonus points, got %d", res.BonusPoints)
	}
	if !res.Disposal.IsCompleted() || res.Disposal.CompletedAt == nil || !res.Disposal.CompletedAt.Equal(now) {
		t.Errorf("disposal not completed at %s: %+v", now, res.Disposal)
	}
	if repo.points["user-d1"] != 15 {
		t.Errorf("expected user credited 15 points, got %d", repo.points["user-d1"])
	}
	if repo.verified["pharm-1"] != 1 {
		t.Errorf("expected pharmacy verified count 1, got %d", repo.verified["pharm-1"])
	}

	if _, err := svc.Complete(context.Background(), "ABC123"); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("second completion should fail with ErrAlreadyCompleted, got %v", err)
	}
	if repo.points["user-d1"] != 15 {
		t.Error("points must not be credited twice")
	}
}

func TestStats(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, loc)

	repo := newMemRepo(
		pending("a", "A", 1),
		pending("b", "B", 1),
		pending("c", "C", 1),
		pending("d", "D", 1),
	)
	svc := NewService(repo)
	ctx := context.Background()

	complete := func(code string, at time.Time) {
		svc.now = fixedClock(at)
		if _, err := svc.Complete(ctx, code); err != nil {
			t.Fatalf("Complete %s: %v", code, err)
		}
	}
	complete("A", now.Add(-time.Hour))
	complete("B", time.Date(2024, 5, 20, 0, 30, 0, 0, loc))
	complete("C", time.Date(2024, 5, 3, 8, 0, 0, 0, loc))
	complete("D", time.Date(2024, 4, 30, 23, 0, 0, 0, loc))

	svc.now = fixedClock(now)
	dash, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	want := Stats{TodayCount: 2, MonthCount: 3, TotalCount: 4, CO2Saved: 1.4, ActiveUsers: 2}
	if dash.Stats != want {
		t.Errorf("expected %+v, got %+v", want, dash.Stats)
	}
	if len(dash.RecentDisposals) != 4 {
		t.Errorf("expected 4 recent disposals, got %d", len(dash.RecentDisposals))
	}
}

func TestStats_EmptyRecentIsNotNil(t *testing.T) {
	svc := NewService(newMemRepo())

	dash, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if dash.RecentDisposals == nil {
		t.Error("expected empty, non-nil recent disposals")
	}
	if dash.Stats.CO2Saved != 0 {
		t.Errorf("expected zero CO2, got %v", dash.Stats.CO2Saved)
	}
}
