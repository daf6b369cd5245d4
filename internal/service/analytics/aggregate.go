package analytics

import (
	"sort"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

// TimeSeries maps day -> category -> summed quantity.
type TimeSeries map[string]map[string]int

// AggregateTimeSeries sums item quantities per UTC day and category. Items
// without a category are counted under "Uncategorized"; days with no
// records are absent.
func AggregateTimeSeries(records []domain.DisposalRecord) TimeSeries {
	out := make(TimeSeries)
	for i := range records {
		day := records[i].Day()
		for _, item := range records[i].Items {
			category := item.Category
			if category == "" {
				category = domain.UncategorizedLabel
			}
			bucket, ok := out[day]
			if !ok {
				bucket = make(map[string]int)
				out[day] = bucket
			}
			bucket[category] += item.EffectiveQuantity()
		}
	}
	return out
}

// CategorySeries pivots a day-keyed series into one ascending series per category.
func CategorySeries(byDay TimeSeries) map[string][]domain.TimeSeriesPoint {
	out := make(map[string][]domain.TimeSeriesPoint)
	for day, categories := range byDay {
		for category, count := range categories {
			out[category] = append(out[category], domain.TimeSeriesPoint{Day: day, Count: count})
		}
	}
	for _, points := range out {
		sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	}
	return out
}

// AggregateManufacturers sums item quantities per manufacturer. Items with
// no resolved manufacturer are left out entirely.
func AggregateManufacturers(records []domain.DisposalRecord) map[string]int {
	out := make(map[string]int)
	for i := range records {
		for _, item := range records[i].Items {
			if item.Manufacturer == "" {
				continue
			}
			out[item.Manufacturer] += item.EffectiveQuantity()
		}
	}
	return out
}

// AggregateLocations counts records per pharmacy, highest count first.
// Records without a resolved pharmacy are skipped. Ties keep the order in
// which the pharmacies were first seen.
func AggregateLocations(records []domain.DisposalRecord) []domain.LocationCount {
	index := make(map[string]int)
	out := make([]domain.LocationCount, 0)

	for i := range records {
		p := records[i].Pharmacy
		if p == nil {
			continue
		}
		key := p.ID
		if key == "" {
			key = p.Name + "\x00" + p.City
		}
		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, domain.LocationCount{Name: p.Name, City: p.City})
		}
		out[pos].Count++
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
