package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// AnnouncementRepository is the tenant-scoped announcement store.
type AnnouncementRepository struct {
	*Scoped[models.Announcement, *models.Announcement]
}

// NewAnnouncementRepository binds an announcement repository to one tenant.
func NewAnnouncementRepository(db *gorm.DB, tenantID uint) *AnnouncementRepository {
	return &AnnouncementRepository{Scoped: NewScoped[models.Announcement](db, tenantID)}
}

// AnnouncementFilter is the closed set of filterable announcement fields.
type AnnouncementFilter struct {
	Audience   string
	PinnedOnly bool
	ActiveAt   *time.Time
}

func (f AnnouncementFilter) conditions() []Condition {
	var conds []Condition
	if f.Audience != "" {
		conds = append(conds, Condition{Query: "audience IN ?", Args: []interface{}{[]string{f.Audience, "all"}}})
	}
	if f.PinnedOnly {
		conds = append(conds, Condition{Query: "is_pinned = ?", Args: []interface{}{true}})
	}
	if f.ActiveAt != nil {
		conds = append(conds, Condition{
			Query: "published_at <= ? AND (expires_at IS NULL OR expires_at >= ?)",
			Args:  []interface{}{*f.ActiveAt, *f.ActiveAt},
		})
	}
	return conds
}

// List returns one page of announcements, pinned first, newest first.
func (r *AnnouncementRepository) List(ctx context.Context, filter AnnouncementFilter, page, pageSize int) (Page[models.Announcement], error) {
	return r.Scoped.List(ctx, filter.conditions(), "is_pinned DESC, published_at DESC", page, pageSize)
}
