package domain

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry is a buyer's question about an active listing.
type Inquiry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ListingID uuid.UUID  `json:"listing_id" db:"listing_id"`
	AuthorID  uuid.UUID  `json:"author_id" db:"author_id"`
	Message   string     `json:"message" db:"message"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`

	Author *User `json:"author,omitempty" db:"-"`
}

type CreateInquiryInput struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}
