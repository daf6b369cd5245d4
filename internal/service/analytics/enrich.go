package analytics

import (
	"github.com/pharmacycle/pharma-cycle/internal/domain"
	"github.com/pharmacycle/pharma-cycle/internal/lookup"
)

// Enrich returns a copy of record whose items carry the category and
// manufacturer found in table. The brand is tried first, then the medicine
// name. Items with no match are copied unchanged; the source record is
// never modified.
func Enrich(table *lookup.Table, record domain.DisposalRecord) domain.DisposalRecord {
	out := record
	out.Items = make([]domain.Item, len(record.Items))
	for i, item := range record.Items {
		out.Items[i] = enrichItem(table, item)
	}
	return out
}

func enrichItem(table *lookup.Table, item domain.Item) domain.Item {
	entry, ok := table.Lookup(item.Brand)
	if !ok {
		entry, ok = table.Lookup(item.MedicineName)
	}
	if !ok {
		return item
	}
	if entry.Category != "" {
		item.Category = entry.Category
	}
	if entry.Manufacturer != "" {
		item.Manufacturer = entry.Manufacturer
	}
	return item
}

// EnrichAll enriches every record.
func EnrichAll(table *lookup.Table, records []domain.DisposalRecord) []domain.DisposalRecord {
	out := make([]domain.DisposalRecord, len(records))
	for i, rec := range records {
		out[i] = Enrich(table, rec)
	}
	return out
}
