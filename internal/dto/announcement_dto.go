package dto

import "time"

// AnnouncementCreateRequest publishes a tenant-wide notice.
type AnnouncementCreateRequest struct {
	Title     string     `json:"title" validate:"required,min=1,max=255"`
	Body      string     `json:"body" validate:"required"`
	Audience  string     `json:"audience" validate:"omitempty,oneof=all teachers students parents"`
	IsPinned  bool       `json:"is_pinned"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// AnnouncementResponse is the outward announcement shape.
type AnnouncementResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Audience    string     `json:"audience"`
	IsPinned    bool       `json:"is_pinned"`
	AuthorID    uint       `json:"author_id"`
	PublishedAt time.Time  `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AnnouncementListResponse is one page of announcements.
type AnnouncementListResponse struct {
	Items      []AnnouncementResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
	CacheHit   bool                   `json:"cache_hit,omitempty"`
}

// AnnouncementEvent is the payload published on the event bus when a new
// announcement goes out.
type AnnouncementEvent struct {
	TenantID    uint      `json:"tenant_id"`
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Audience    string    `json:"audience"`
	PublishedAt time.Time `json:"published_at"`
}
