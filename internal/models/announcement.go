package models

import "time"

// Announcement is a tenant-wide notice shown to staff and students.
type Announcement struct {
	TenantModel
	Title       string     `gorm:"size:255;not null" json:"title"`
	Body        string     `gorm:"type:text" json:"body"`
	AuthorID    uint       `gorm:"index" json:"author_id"`
	Audience    string     `gorm:"size:32;default:all" json:"audience"`
	IsPinned    bool       `gorm:"not null;default:false" json:"is_pinned"`
	PublishedAt time.Time  `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// LeaveRequest statuses form a small state machine: pending may transition
// to approved or rejected, nothing transitions back.
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// LeaveRequest is a staff or student absence request awaiting review.
type LeaveRequest struct {
	TenantModel
	RequesterID uint       `gorm:"index;not null" json:"requester_id"`
	FromDate    time.Time  `gorm:"not null" json:"from_date"`
	ToDate      time.Time  `gorm:"not null" json:"to_date"`
	Reason      string     `gorm:"type:text" json:"reason"`
	Status      string     `gorm:"size:32;not null;default:pending" json:"status"`
	ReviewerID  *uint      `json:"reviewer_id,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote  string     `gorm:"type:text" json:"review_note"`
}
