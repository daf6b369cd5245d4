package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
	"github.com/pharmacycle/pharma-cycle/internal/lookup"
)

// Report names, used for cache keys and metrics labels.
const (
	ReportTimeSeries    = "timeseries"
	ReportManufacturers = "manufacturers"
	ReportHeatmap       = "heatmap"
	ReportAlerts        = "alerts"
	ReportSummary       = "summary"
)

// Options tunes the reporting pipeline.
type Options struct {
	SpikeWindow         int
	ZThreshold          float64
	MonitoredCategories []string
	CacheTTL            time.Duration // 0 disables memoization
}

// Service runs the analytics reports. It is safe for concurrent use.
type Service struct {
	repo     Repository
	table    *lookup.Table
	opts     Options
	cache    Cache
	narrator Narrator
	observer Observer
}

// NewService creates an analytics service over repo, enriching with table.
func NewService(repo Repository, table *lookup.Table, opts Options) *Service {
	if opts.SpikeWindow == 0 {
		opts.SpikeWindow = DefaultSpikeWindow
	}
	if opts.ZThreshold == 0 {
		opts.ZThreshold = DefaultZThreshold
	}
	return &Service{repo: repo, table: table, opts: opts}
}

// SetCache enables memoization of report results.
func (s *Service) SetCache(c Cache) {
	s.cache = c
}

// SetNarrator configures the summarizer used by Summary.
func (s *Service) SetNarrator(n Narrator) {
	s.narrator = n
}

// SetObserver registers a metrics observer.
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

// HasNarrator reports whether Summary can be served.
func (s *Service) HasNarrator() bool {
	return s.narrator != nil
}

// LookupSize returns the number of entries in the enrichment table.
func (s *Service) LookupSize() int {
	return s.table.Len()
}

// TimeSeries returns day -> category -> quantity for the range.
func (s *Service) TimeSeries(ctx context.Context, r Range) (TimeSeries, error) {
	return memoize(ctx, s, ReportTimeSeries, r, func() (TimeSeries, error) {
		records, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}
		return AggregateTimeSeries(records), nil
	})
}

// Manufacturers returns manufacturer -> quantity for the range.
func (s *Service) Manufacturers(ctx context.Context, r Range) (map[string]int, error) {
	return memoize(ctx, s, ReportManufacturers, r, func() (map[string]int, error) {
		records, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}
		return AggregateManufacturers(records), nil
	})
}

// Heatmap returns completed-disposal counts per pharmacy, highest first.
func (s *Service) Heatmap(ctx context.Context, r Range) ([]domain.LocationCount, error) {
	return memoize(ctx, s, ReportHeatmap, r, func() ([]domain.LocationCount, error) {
		records, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}
		return AggregateLocations(records), nil
	})
}

// Alerts runs spike detection over each monitored category, in configured
// order, and returns only the categories that spiked.
func (s *Service) Alerts(ctx context.Context, r Range) ([]domain.CategoryAlerts, error) {
	return memoize(ctx, s, ReportAlerts, r, func() ([]domain.CategoryAlerts, error) {
		records, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}

		series := CategorySeries(AggregateTimeSeries(records))
		out := make([]domain.CategoryAlerts, 0)
		for _, category := range s.opts.MonitoredCategories {
			points, ok := series[category]
			if !ok {
				continue
			}
			spikes := DetectSpikes(points, s.opts.SpikeWindow, s.opts.ZThreshold)
			if len(spikes) == 0 {
				continue
			}
			if s.observer != nil {
				s.observer.SpikesDetected(category, len(spikes))
			}
			out = append(out, domain.CategoryAlerts{Category: category, Spikes: spikes})
		}
		return out, nil
	})
}

// Summary asks the narrator for a headline, insight and recommendation
// describing the range.
func (s *Service) Summary(ctx context.Context, r Range) (*domain.Summary, error) {
	if s.narrator == nil {
		return nil, ErrNarratorUnavailable
	}
	return memoize(ctx, s, ReportSummary, r, func() (*domain.Summary, error) {
		records, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}
		facts := BuildSummaryFacts(records, r)
		text, err := s.narrator.Narrate(ctx, facts.Prompt())
		if err != nil {
			return nil, fmt.Errorf("narrate summary: %w", err)
		}
		return ParseNarrative(text)
	})
}

// load reads the completed records of the range and enriches them.
func (s *Service) load(ctx context.Context, r Range) ([]domain.DisposalRecord, error) {
	records, err := s.repo.ListCompleted(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list completed disposals: %w", err)
	}

	kept := records[:0:0]
	for i := range records {
		if records[i].IsCompleted() && r.Contains(records[i].CreatedAt) {
			kept = append(kept, records[i])
		}
	}
	return EnrichAll(s.table, kept), nil
}

// CacheKey builds the memoization key for a report over a range.
func CacheKey(report string, r Range) string {
	return fmt.Sprintf("analytics:%s:%s:%s", report,
		r.From.UTC().Format(time.RFC3339Nano), r.To.UTC().Format(time.RFC3339Nano))
}

func memoize[T any](ctx context.Context, s *Service, report string, r Range, compute func() (T, error)) (T, error) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return compute()
	}

	key := CacheKey(report, r)
	var cached T
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[analytics] cache read %s failed: %v", key, err)
		hit = false
	}
	if s.observer != nil {
		s.observer.CacheLookup(report, hit)
	}
	if hit {
		return cached, nil
	}

	value, err := compute()
	if err != nil {
		return value, err
	}
	if err := s.cache.Set(ctx, key, value, s.opts.CacheTTL); err != nil {
		log.Printf("[analytics] cache write %s failed: %v", key, err)
	}
	return value, nil
}
