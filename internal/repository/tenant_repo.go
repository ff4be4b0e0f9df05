package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// TenantRepository manages the platform-owned tenant registry. Tenants are
// the one record family not scoped by tenant_id.
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindResolvableByID(ctx context.Context, id uint) (models.Tenant, error)
	FindResolvableBySlug(ctx context.Context, slug string) (models.Tenant, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository instantiates a GORM-backed tenant registry.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

// resolvableQuery restricts lookups to active and trial tenants so that a
// suspended tenant looks exactly like a missing one.
func (r *tenantRepository) resolvableQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("status IN ?", []string{models.TenantStatusActive, models.TenantStatusTrial})
}

func (r *tenantRepository) FindResolvableByID(ctx context.Context, id uint) (models.Tenant, error) {
	var tenant models.Tenant
	if err := r.resolvableQuery(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return models.Tenant{}, err
	}

	return tenant, nil
}

func (r *tenantRepository) FindResolvableBySlug(ctx context.Context, slug string) (models.Tenant, error) {
	var tenant models.Tenant
	if err := r.resolvableQuery(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return models.Tenant{}, err
	}

	return tenant, nil
}

// SlugTaken checks the whole registry, including non-resolvable tenants, so
// registration can never reuse a suspended school's slug.
func (r *tenantRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
