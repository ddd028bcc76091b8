package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Data      json.RawMessage  `json:"data,omitempty" db:"data"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifListingSubmitted     NotificationType = "LISTING_SUBMITTED"
	NotifListingModerated     NotificationType = "LISTING_MODERATED"
	NotifChangeRequestCreated NotificationType = "CHANGE_REQUEST_CREATED"
	NotifChangeRequestDecided NotificationType = "CHANGE_REQUEST_DECIDED"
	NotifInquiryCreated       NotificationType = "INQUIRY_CREATED"
)
