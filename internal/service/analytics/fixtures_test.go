package analytics

import (
	"fmt"
	"time"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
	"github.com/pharmacycle/pharma-cycle/internal/lookup"
)

func testTable() *lookup.Table {
	return lookup.New([]domain.LookupEntry{
		{Brand: "Crocin", Generic: "Paracetamol", Category: "Painkiller", Manufacturer: "GSK"},
		{Brand: "Benadryl", Generic: "Diphenhydramine", Category: "Cough Syrup", Manufacturer: "Johnson & Johnson"},
		{Brand: "Augmentin", Generic: "Amoxicillin", Category: "Antibiotic", Manufacturer: "GSK"},
		{Brand: "Allegra", Generic: "Fexofenadine", Category: "Antihistamine", Manufacturer: "Sanofi"},
	})
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DayLayout, s)
	if err != nil {
		panic(err)
	}
	return t.Add(10 * time.Hour)
}

func completed(id string, at time.Time, items ...domain.Item) domain.DisposalRecord {
	return domain.DisposalRecord{
		ID:           id,
		UserID:       "user-1",
		Items:        items,
		Status:       domain.DisposalCompleted,
		DisposalCode: "CODE-" + id,
		CreatedAt:    at,
	}
}

func atPharmacy(rec domain.DisposalRecord, id, name, city string) domain.DisposalRecord {
	pid := id
	rec.PharmacyID = &pid
	rec.Pharmacy = &domain.PharmacyRef{ID: id, Name: name, City: city}
	return rec
}

// dailySeries builds consecutive day points starting at 2024-01-01.
func dailySeries(counts ...int) []domain.TimeSeriesPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.TimeSeriesPoint, len(counts))
	for i, c := range counts {
		out[i] = domain.TimeSeriesPoint{Day: start.AddDate(0, 0, i).Format(domain.DayLayout), Count: c}
	}
	return out
}

func repeat(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func itemsFor(brand string, qty int) domain.Item {
	return domain.Item{MedicineName: fmt.Sprintf("%s tablet", brand), Brand: brand, Quantity: qty}
}
