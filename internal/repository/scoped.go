package repository

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"
)

// Pagination bounds. Callers may request anything; the effective page size
// is always clamped into [1, maxPageSize].
const (
	minPageSize = 1
	maxPageSize = 100
)

// Condition is one named, typed filter compiled from a per-entity filter
// struct. Filters never reach the query through reflection on arbitrary
// field names.
type Condition struct {
	Query string
	Args  []interface{}
}

// Page is the uniform paginated result shape.
type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalCount  int64 `json:"total_count"`
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// tenantOwned constrains entities to those carrying a tenant binding.
type tenantOwned[T any] interface {
	*T
	GetTenantID() uint
	SetTenantID(uint)
}

// softDeletable is satisfied by entities with a status-like deleted sentinel.
type softDeletable interface {
	MarkDeleted()
}

// Scoped is the generic data-access base bound to one (db, tenant) pair for
// its lifetime. Every read composes on baseQuery, so no operation can see or
// touch a row owned by another tenant.
type Scoped[T any, P tenantOwned[T]] struct {
	db       *gorm.DB
	tenantID uint
}

// NewScoped binds a repository to the given tenant.
func NewScoped[T any, P tenantOwned[T]](db *gorm.DB, tenantID uint) *Scoped[T, P] {
	return &Scoped[T, P]{db: db, tenantID: tenantID}
}

// TenantID returns the tenant this repository is bound to.
func (r *Scoped[T, P]) TenantID() uint { return r.tenantID }

// baseQuery is the canonical entry point for every read. It unconditionally
// filters on the bound tenant.
func (r *Scoped[T, P]) baseQuery(ctx context.Context) *gorm.DB {
	var model T
	return r.db.WithContext(ctx).Model(&model).Where("tenant_id = ?", r.tenantID)
}

// GetByID loads one entity. A row that exists under another tenant is
// indistinguishable from a missing one.
func (r *Scoped[T, P]) GetByID(ctx context.Context, id uint) (T, error) {
	var entity T
	if err := r.baseQuery(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		var zero T
		return zero, err
	}

	return entity, nil
}

// List returns one page of entities matching the conditions. The total count
// is taken from the same filtered query before pagination applies.
func (r *Scoped[T, P]) List(ctx context.Context, conds []Condition, order string, page, pageSize int) (Page[T], error) {
	page = clampPage(page)
	pageSize = clampPageSize(pageSize)

	query := r.baseQuery(ctx)
	for _, cond := range conds {
		query = query.Where(cond.Query, cond.Args...)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	if order != "" {
		query = query.Order(order)
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	var items []T
	if err := query.Find(&items).Error; err != nil {
		return Page[T]{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	return Page[T]{
		Items:       items,
		TotalCount:  total,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}

// Create persists the entity under the bound tenant. Any tenant_id already
// present on the input is overwritten, never honoured.
func (r *Scoped[T, P]) Create(ctx context.Context, entity P) error {
	entity.SetTenantID(r.tenantID)
	return r.db.WithContext(ctx).Create(entity).Error
}

// Update applies the field updates to an entity in this tenant. The
// tenant_id and id keys are stripped from the updates first, so a row can
// never be reassigned to another tenant.
func (r *Scoped[T, P]) Update(ctx context.Context, id uint, updates map[string]interface{}) (T, error) {
	var zero T

	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}

	delete(updates, "tenant_id")
	delete(updates, "id")

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&entity).Updates(updates).Error; err != nil {
			return zero, err
		}
	}

	return r.GetByID(ctx, id)
}

// SoftDelete marks the entity deleted when it carries a deleted sentinel.
// It returns false when the entity type has no such field or the row is not
// visible in this tenant.
func (r *Scoped[T, P]) SoftDelete(ctx context.Context, id uint) (bool, error) {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	deletable, ok := any(&entity).(softDeletable)
	if !ok {
		return false, nil
	}

	deletable.MarkDeleted()
	if err := r.db.WithContext(ctx).Save(&entity).Error; err != nil {
		return false, err
	}

	return true, nil
}

// HardDelete removes the row. It returns false when nothing visible in this
// tenant matched.
func (r *Scoped[T, P]) HardDelete(ctx context.Context, id uint) (bool, error) {
	var model T
	result := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", r.tenantID, id).Delete(&model)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Exists reports whether the entity is visible in this tenant.
func (r *Scoped[T, P]) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.baseQuery(ctx).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// Count returns the number of entities matching the conditions in this tenant.
func (r *Scoped[T, P]) Count(ctx context.Context, conds []Condition) (int64, error) {
	query := r.baseQuery(ctx)
	for _, cond := range conds {
		query = query.Where(cond.Query, cond.Args...)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampPageSize(pageSize int) int {
	if pageSize < minPageSize {
		return minPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}
