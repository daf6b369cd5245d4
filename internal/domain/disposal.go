package domain

import (
	"time"
)

// DisposalStatus enumerates the lifecycle states of a disposal.
type DisposalStatus string

const (
	DisposalPending   DisposalStatus = "Pending"
	DisposalCompleted DisposalStatus = "Completed"
)

// DayLayout is the calendar-date key used for day buckets.
const DayLayout = "2006-01-02"

// DisposalRecord is one user's submitted batch of medicines for disposal.
type DisposalRecord struct {
	ID           string         `json:"id" db:"id"`
	UserID       string         `json:"user_id" db:"user_id"`
	User         *UserRef       `json:"user,omitempty"`
	PharmacyID   *string        `json:"pharmacy_id,omitempty" db:"pharmacy_id"`
	Pharmacy     *PharmacyRef   `json:"pharmacy,omitempty"`
	Items        []Item         `json:"items" db:"items"`
	Status       DisposalStatus `json:"status" db:"status"`
	DisposalCode string         `json:"disposal_code" db:"disposal_code"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
}

// IsCompleted returns true once a partner pharmacy has verified the drop-off.
func (d *DisposalRecord) IsCompleted() bool {
	return d.Status == DisposalCompleted
}

// Day returns the UTC calendar-date bucket of the record's creation time.
func (d *DisposalRecord) Day() string {
	return d.CreatedAt.UTC().Format(DayLayout)
}

// Item is a single medicine line on a disposal. Category and Manufacturer
// are never persisted; they are filled in memory by enrichment.
type Item struct {
	MedicineName string     `json:"medicine_name"`
	Brand        string     `json:"brand,omitempty"`
	Quantity     int        `json:"qty,omitempty"`
	Unit         string     `json:"unit,omitempty"`
	Sealed       bool       `json:"sealed,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	AIConfidence *float64   `json:"ai_confidence,omitempty"`

	Category     string `json:"category,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// EffectiveQuantity returns the quantity, treating an absent or zero value as 1.
func (i Item) EffectiveQuantity() int {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

// PharmacyRef is the joined subset of a pharmacy carried on a disposal.
type PharmacyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// UserRef is the joined subset of a user carried on a disposal.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Pharmacy is a partner drop-off location.
type Pharmacy struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Address           string    `json:"address" db:"address"`
	City              string    `json:"city" db:"city"`
	State             string    `json:"state" db:"state"`
	PartnerCode       string    `json:"partner_code" db:"partner_code"`
	DisposalsVerified int       `json:"disposals_verified" db:"disposals_verified"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
