package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingPending  ListingStatus = "PENDING"
	ListingActive   ListingStatus = "ACTIVE"
	ListingRejected ListingStatus = "REJECTED"
	ListingHidden   ListingStatus = "HIDDEN"
	ListingSold     ListingStatus = "SOLD"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingPending, ListingActive, ListingRejected, ListingHidden, ListingSold:
		return true
	default:
		return false
	}
}

type Listing struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OwnerID        uuid.UUID       `json:"owner_id" db:"owner_id"`
	Title          string          `json:"title" db:"title"`
	Agency         string          `json:"agency" db:"agency"`
	Category       string          `json:"category" db:"category"`
	Phase          *string         `json:"phase,omitempty" db:"phase"`
	ContractNumber *string         `json:"contract_number,omitempty" db:"contract_number"`
	Description    *string         `json:"description,omitempty" db:"description"`
	ValueCents     int64           `json:"-" db:"value_cents"`
	Value          decimal.Decimal `json:"value" db:"-"`
	Status         ListingStatus   `json:"status" db:"status"`
	ApprovedBy     *uuid.UUID      `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	Version        int64           `json:"version" db:"version"`
	SubmittedAt    time.Time       `json:"submitted_at" db:"submitted_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`

	Owner *User `json:"owner,omitempty" db:"-"`
}

// HydrateValue fills the boundary decimal from the stored minor units.
// Repositories call it after every scan.
func (l *Listing) HydrateValue() {
	l.Value = FromMinorUnits(l.ValueCents)
}

// Label identifies a listing in bulk-operation error reports.
func (l *Listing) Label() string {
	if l.Title != "" {
		return l.Title
	}
	return l.ID.String()
}

type CreateListingInput struct {
	Title          string          `json:"title" validate:"required,min=3,max=200"`
	Agency         string          `json:"agency" validate:"required,min=2,max=120"`
	Category       string          `json:"category" validate:"required,min=2,max=80"`
	Phase          *string         `json:"phase,omitempty" validate:"omitempty,max=40"`
	ContractNumber *string         `json:"contract_number,omitempty" validate:"omitempty,max=60"`
	Description    *string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	Value          decimal.Decimal `json:"value"`
}

type UpdateListingInput struct {
	Title          *string          `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Agency         *string          `json:"agency,omitempty" validate:"omitempty,min=2,max=120"`
	Category       *string          `json:"category,omitempty" validate:"omitempty,min=2,max=80"`
	Phase          *string          `json:"phase,omitempty" validate:"omitempty,max=40"`
	ContractNumber *string          `json:"contract_number,omitempty" validate:"omitempty,max=60"`
	Description    *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Value          *decimal.Decimal `json:"value,omitempty"`
}

type ListingFilter struct {
	Status  *ListingStatus
	OwnerID *uuid.UUID
	Query   string
}
