package domain

// BulkError reports one failed item of a bulk operation.
type BulkError struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// BulkResult aggregates a bulk operation. Individual failures never abort
// the run; callers inspect Failed and Errors, and should treat
// Successful == 0 with Failed > 0 as an overall failure.
type BulkResult struct {
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []BulkError `json:"errors"`
}

type BulkAction string

const (
	BulkApprove BulkAction = "APPROVE"
	BulkReject  BulkAction = "REJECT"
	BulkHide    BulkAction = "HIDE"
	BulkDelete  BulkAction = "DELETE"
)

func (a BulkAction) IsValid() bool {
	switch a {
	case BulkApprove, BulkReject, BulkHide, BulkDelete:
		return true
	default:
		return false
	}
}

type BulkOperationInput struct {
	Action     BulkAction `json:"action" validate:"required,oneof=APPROVE REJECT HIDE DELETE"`
	ListingIDs []string   `json:"listing_ids" validate:"required,min=1,dive,uuid"`
	Note       *string    `json:"note,omitempty" validate:"omitempty,max=1000"`
}
