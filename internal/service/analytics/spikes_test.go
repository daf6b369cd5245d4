package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

func TestDetectSpikes(t *testing.T) {
	tests := []struct {
		name   string
		series []domain.TimeSeriesPoint
		window int
		want   []domain.SpikeAlert
	}{
		{
			name:   "flat series",
			series: dailySeries(repeat(30, 10)...),
			window: 14,
			want:   []domain.SpikeAlert{},
		},
		{
			name:   "jump after flat baseline",
			series: dailySeries(append(repeat(14, 10), 50)...),
			window: 14,
			want:   []domain.SpikeAlert{{Day: "2024-01-15", Count: 50, Mean: 10.0, ZScore: 40.0}},
		},
		{
			name:   "shorter than window",
			series: dailySeries(1, 2, 100),
			window: 14,
			want:   []domain.SpikeAlert{},
		},
		{
			name:   "empty",
			series: nil,
			window: 14,
			want:   []domain.SpikeAlert{},
		},
		{
			name:   "non-positive window",
			series: dailySeries(1, 1, 1, 90),
			window: 0,
			want:   []domain.SpikeAlert{},
		},
		{
			name:   "rounding of mean and z",
			series: dailySeries(1, 1, 2, 10),
			window: 3,
			want:   []domain.SpikeAlert{{Day: "2024-01-04", Count: 10, Mean: 1.3, ZScore: 18.38}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectSpikes(tt.series, tt.window, DefaultZThreshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectSpikes_LiftRule(t *testing.T) {
	baseline := make([]int, 0, 14)
	for i := 0; i < 7; i++ {
		baseline = append(baseline, 8, 12)
	}

	// z = 2.0 but 14 < mean + 5
	got := DetectSpikes(dailySeries(append(append([]int{}, baseline...), 14)...), 14, 2.0)
	assert.Empty(t, got)

	got = DetectSpikes(dailySeries(append(append([]int{}, baseline...), 15)...), 14, 2.0)
	require.Len(t, got, 1)
	assert.Equal(t, 10.0, got[0].Mean)
	assert.Equal(t, 2.5, got[0].ZScore)
}

func TestDetectSpikes_DoesNotMutateInput(t *testing.T) {
	series := dailySeries(append(repeat(14, 10), 50)...)
	before := append([]domain.TimeSeriesPoint(nil), series...)

	DetectSpikes(series, 14, 2.0)

	assert.Equal(t, before, series)
}

func TestDetectSpikes_WindowSlides(t *testing.T) {
	// The first spike joins the baseline of the next day.
	series := dailySeries(append(repeat(14, 10), 50, 50)...)

	got := DetectSpikes(series, 14, 2.0)

	assert.Equal(t, []domain.SpikeAlert{
		{Day: "2024-01-15", Count: 50, Mean: 10.0, ZScore: 40.0},
		{Day: "2024-01-16", Count: 50, Mean: 12.9, ZScore: 3.61},
	}, got)
}
