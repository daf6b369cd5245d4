package main

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

// historyPlan describes the synthetic completed-disposal history.
type historyPlan struct {
	Days       int       // days of history ending the day before End
	End        time.Time // exclusive upper bound, truncated to a UTC day
	PerDay     int       // baseline disposals per day
	SpikeBrand string    // brand whose volume jumps on the last day
	SpikeQty   int       // extra units of SpikeBrand on the last day
}

// brands cycled through for the baseline volume.
var brands = []string{"Crocin", "Dolo 650", "Benadryl", "Augmentin", "Allegra", "Pan 40", "Corex", "Telma"}

// newDisposalCode returns a six-character upper-case code.
func newDisposalCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
}

// buildHistory generates completed disposals spread over plan.Days, owned by
// users and dropped at pharmacies in rotation.
func buildHistory(rng *rand.Rand, plan historyPlan, users []domain.User, pharmacies []domain.Pharmacy) []domain.DisposalRecord {
	if plan.Days <= 0 || plan.PerDay <= 0 || len(users) == 0 {
		return nil
	}
	end := plan.End.UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -plan.Days)

	out := make([]domain.DisposalRecord, 0, plan.Days*plan.PerDay+1)
	n := 0
	for d := 0; d < plan.Days; d++ {
		day := start.AddDate(0, 0, d)
		for i := 0; i < plan.PerDay; i++ {
			created := day.Add(time.Duration(8+rng.Intn(10))*time.Hour + time.Duration(rng.Intn(60))*time.Minute)
			items := []domain.Item{{
				MedicineName: brands[rng.Intn(len(brands))],
				Quantity:     1 + rng.Intn(3),
				Unit:         "strip",
				Sealed:       rng.Intn(2) == 0,
			}}
			out = append(out, completedRecord(users[n%len(users)], pharmacyAt(pharmacies, n), items, created))
			n++
		}
	}

	if plan.SpikeBrand != "" && plan.SpikeQty > 0 {
		created := end.Add(-6 * time.Hour)
		items := []domain.Item{{MedicineName: plan.SpikeBrand, Quantity: plan.SpikeQty, Unit: "bottle"}}
		out = append(out, completedRecord(users[0], pharmacyAt(pharmacies, 0), items, created))
	}
	return out
}

func pharmacyAt(pharmacies []domain.Pharmacy, n int) *domain.Pharmacy {
	if len(pharmacies) == 0 {
		return nil
	}
	return &pharmacies[n%len(pharmacies)]
}

func completedRecord(u domain.User, p *domain.Pharmacy, items []domain.Item, created time.Time) domain.DisposalRecord {
	completed := created.Add(30 * time.Minute)
	rec := domain.DisposalRecord{
		ID:           uuid.New().String(),
		UserID:       u.ID,
		Items:        items,
		Status:       domain.DisposalCompleted,
		DisposalCode: newDisposalCode(),
		CreatedAt:    created,
		CompletedAt:  &completed,
	}
	if p != nil {
		id := p.ID
		rec.PharmacyID = &id
		rec.Pharmacy = &domain.PharmacyRef{ID: p.ID, Name: p.Name, City: p.City}
	}
	return rec
}
