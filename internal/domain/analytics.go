package domain

// UncategorizedLabel is the explicit fallback category for items the lookup
// table could not resolve.
const UncategorizedLabel = "Uncategorized"

// LookupEntry is one row of the static medicine metadata table.
type LookupEntry struct {
	Brand        string `json:"brand" yaml:"brand"`
	Generic      string `json:"generic,omitempty" yaml:"generic"`
	Category     string `json:"category" yaml:"category"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
}

// TimeSeriesPoint is the summed quantity for one category on one day.
type TimeSeriesPoint struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// SpikeAlert flags a day whose volume is anomalous against its trailing baseline.
type SpikeAlert struct {
	Day    string  `json:"day"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	ZScore float64 `json:"zScore"`
}

// CategoryAlerts groups the spikes detected for a single category.
type CategoryAlerts struct {
	Category string       `json:"category"`
	Spikes   []SpikeAlert `json:"spikes"`
}

// LocationCount is the number of completed disposals at one pharmacy.
type LocationCount struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Count int    `json:"count"`
}

// Summary is the narrative produced for an analytics period.
type Summary struct {
	Headline       string `json:"headline"`
	Insight        string `json:"insight"`
	Recommendation string `json:"recommendation"`
}

// Validate reports whether every narrative field was filled in.
func (s Summary) Validate() bool {
	return s.Headline != "" && s.Insight != "" && s.Recommendation != ""
}
