package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxDelivered OutboxStatus = "DELIVERED"
	OutboxFailed    OutboxStatus = "FAILED"
)

type EventType string

const (
	EventListingSubmitted     EventType = "listing.submitted"
	EventListingModerated     EventType = "listing.moderated"
	EventChangeRequestCreated EventType = "change_request.created"
	EventChangeRequestDecided EventType = "change_request.decided"
	EventInquiryCreated       EventType = "inquiry.created"
)

// OutboxEvent is a queued side-channel notification. Business operations
// enqueue events in-line with their own writes; a background worker owns
// delivery, so a slow or failing messaging collaborator never delays or
// unwinds the operation that produced the event.
type OutboxEvent struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Type          EventType       `json:"type" db:"type"`
	Payload       json.RawMessage `json:"payload" db:"payload"`
	Status        OutboxStatus    `json:"status" db:"status"`
	Attempts      int             `json:"attempts" db:"attempts"`
	NextAttemptAt time.Time       `json:"next_attempt_at" db:"next_attempt_at"`
	LastError     *string         `json:"last_error,omitempty" db:"last_error"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ListingEventPayload is carried by listing.submitted and listing.moderated
// events.
type ListingEventPayload struct {
	ListingID uuid.UUID     `json:"listing_id"`
	OwnerID   uuid.UUID     `json:"owner_id"`
	Title     string        `json:"title"`
	Status    ListingStatus `json:"status"`
	ActorID   *uuid.UUID    `json:"actor_id,omitempty"`
	Deleted   bool          `json:"deleted,omitempty"`
	Note      *string       `json:"note,omitempty"`
}

// ChangeRequestEventPayload is carried by change_request.created and
// change_request.decided events.
type ChangeRequestEventPayload struct {
	ChangeRequestID   uuid.UUID           `json:"change_request_id"`
	ListingID         uuid.UUID           `json:"listing_id"`
	ListingTitle      string              `json:"listing_title"`
	RequesterID       uuid.UUID           `json:"requester_id"`
	RequestType       ChangeRequestType   `json:"request_type"`
	Status            ChangeRequestStatus `json:"status,omitempty"`
	AdminNotesForUser *string             `json:"admin_notes_for_user,omitempty"`
	ApplyFailed       bool                `json:"apply_failed,omitempty"`
}

// InquiryEventPayload is carried by inquiry.created events.
type InquiryEventPayload struct {
	InquiryID    uuid.UUID `json:"inquiry_id"`
	ListingID    uuid.UUID `json:"listing_id"`
	ListingTitle string    `json:"listing_title"`
	OwnerID      uuid.UUID `json:"owner_id"`
	AuthorID     uuid.UUID `json:"author_id"`
}
