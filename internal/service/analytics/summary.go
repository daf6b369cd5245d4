package analytics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

const notAvailable = "N/A"

// SummaryFacts are the figures handed to the narrator for one period.
type SummaryFacts struct {
	TotalQuantity   int
	TopCategory     string
	TopManufacturer string
	From            string
	To              string
}

// BuildSummaryFacts totals the enriched records of a range. Only resolved
// categories and manufacturers compete for the top spot; ties go to the
// lexically smallest name and an empty field reads "N/A".
func BuildSummaryFacts(records []domain.DisposalRecord, r Range) SummaryFacts {
	categories := make(map[string]int)
	manufacturers := make(map[string]int)
	total := 0

	for i := range records {
		for _, item := range records[i].Items {
			qty := item.EffectiveQuantity()
			total += qty
			if item.Category != "" {
				categories[item.Category] += qty
			}
			if item.Manufacturer != "" {
				manufacturers[item.Manufacturer] += qty
			}
		}
	}

	return SummaryFacts{
		TotalQuantity:   total,
		TopCategory:     topKey(categories),
		TopManufacturer: topKey(manufacturers),
		From:            r.From.UTC().Format(domain.DayLayout),
		To:              r.To.UTC().Format(domain.DayLayout),
	}
}

func topKey(totals map[string]int) string {
	best, bestCount := "", -1
	for k, n := range totals {
		if n > bestCount || (n == bestCount && k < best) {
			best, bestCount = k, n
		}
	}
	if best == "" {
		return notAvailable
	}
	return best
}

// Prompt renders the facts into a JSON-only instruction for the narrator.
func (f SummaryFacts) Prompt() string {
	var b strings.Builder
	b.WriteString("You are a public health analyst. Based on the following data, respond ONLY with valid JSON in this format:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"headline\": \"short, news-style headline\",\n")
	b.WriteString("  \"insight\": \"1-2 sentence analysis of the data\",\n")
	b.WriteString("  \"recommendation\": \"1-2 sentence recommendation for public health officials\"\n")
	b.WriteString("}\n\n")
	b.WriteString("Data:\n")
	fmt.Fprintf(&b, "- Total Medicines Recycled: %d\n", f.TotalQuantity)
	fmt.Fprintf(&b, "- Top Disposal Category: %s\n", f.TopCategory)
	fmt.Fprintf(&b, "- Top Manufacturer by Disposed Volume: %s\n", f.TopManufacturer)
	fmt.Fprintf(&b, "- Period: %s to %s\n", f.From, f.To)
	return b.String()
}

// ParseNarrative strips Markdown code fences from a narrator reply and
// decodes the three summary fields.
func ParseNarrative(text string) (*domain.Summary, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var s domain.Summary
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeFormat, err)
	}
	if !s.Validate() {
		return nil, fmt.Errorf("%w: missing headline, insight or recommendation", ErrNarrativeFormat)
	}
	return &s, nil
}
