package analytics

import (
	"math"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

// Spike detection defaults.
const (
	DefaultSpikeWindow = 14
	DefaultZThreshold  = 2.0

	minSpikeLift      = 5.0
	relativeSpikeLift = 0.3
)

// DetectSpikes walks a day-ascending series and flags every point whose
// count is anomalous against the trailing window of counts before it.
// A point is a spike when its z-score reaches zThreshold and it exceeds the
// baseline mean by at least max(5, 30% of the mean). A flat baseline uses a
// standard deviation of 1. Series shorter than the window yield no alerts.
func DetectSpikes(series []domain.TimeSeriesPoint, window int, zThreshold float64) []domain.SpikeAlert {
	alerts := make([]domain.SpikeAlert, 0)
	if window <= 0 || len(series) < window {
		return alerts
	}

	for i := window; i < len(series); i++ {
		mean, std := meanStd(series[i-window : i])
		if std == 0 {
			std = 1
		}

		count := float64(series[i].Count)
		z := (count - mean) / std
		if z >= zThreshold && count >= mean+math.Max(minSpikeLift, relativeSpikeLift*mean) {
			alerts = append(alerts, domain.SpikeAlert{
				Day:    series[i].Day,
				Count:  series[i].Count,
				Mean:   roundTo(mean, 1),
				ZScore: roundTo(z, 2),
			})
		}
	}
	return alerts
}

// meanStd returns the mean and population standard deviation of the counts.
func meanStd(points []domain.TimeSeriesPoint) (float64, float64) {
	if len(points) == 0 {
		return 0, 0
	}
	var sum float64
	for _, p := range points {
		sum += float64(p.Count)
	}
	mean := sum / float64(len(points))

	var sq float64
	for _, p := range points {
		d := float64(p.Count) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(points)))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
