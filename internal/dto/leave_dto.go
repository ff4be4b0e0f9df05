package dto

import "time"

// LeaveRequestCreateRequest submits an absence request.
type LeaveRequestCreateRequest struct {
	FromDate time.Time `json:"from_date" validate:"required"`
	ToDate   time.Time `json:"to_date" validate:"required"`
	Reason   string    `json:"reason" validate:"required,min=1"`
}

// LeaveReviewRequest approves or rejects a pending request.
type LeaveReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Note     string `json:"note" validate:"max=2000"`
}

// LeaveRequestResponse is the outward leave request shape.
type LeaveRequestResponse struct {
	ID          uint       `json:"id"`
	RequesterID uint       `json:"requester_id"`
	FromDate    time.Time  `json:"from_date"`
	ToDate      time.Time  `json:"to_date"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	ReviewerID  *uint      `json:"reviewer_id,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote  string     `json:"review_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LeaveRequestListResponse is one page of leave requests.
type LeaveRequestListResponse struct {
	Items      []LeaveRequestResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
}
