package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// UserRepository is the tenant-scoped account store.
type UserRepository struct {
	*Scoped[models.User, *models.User]
}

// NewUserRepository binds a user repository to one tenant.
func NewUserRepository(db *gorm.DB, tenantID uint) *UserRepository {
	return &UserRepository{Scoped: NewScoped[models.User](db, tenantID)}
}

// UserFilter is the closed set of filterable user fields.
type UserFilter struct {
	Role   string
	Status string
	Email  string
}

func (f UserFilter) conditions() []Condition {
	var conds []Condition
	if f.Role != "" {
		conds = append(conds, Condition{Query: "role = ?", Args: []interface{}{f.Role}})
	}
	if f.Status != "" {
		conds = append(conds, Condition{Query: "status = ?", Args: []interface{}{f.Status}})
	}
	if f.Email != "" {
		conds = append(conds, Condition{Query: "email = ?", Args: []interface{}{f.Email}})
	}
	return conds
}

// List returns one page of users matching the filter.
func (r *UserRepository) List(ctx context.Context, filter UserFilter, page, pageSize int) (Page[models.User], error) {
	return r.Scoped.List(ctx, filter.conditions(), "created_at DESC", page, pageSize)
}

// FindByEmail loads the active account with the given email in this tenant.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	page, err := r.Scoped.List(ctx, UserFilter{Email: email, Status: models.UserStatusActive}.conditions(), "", 1, 1)
	if err != nil {
		return models.User{}, err
	}
	if len(page.Items) == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}

	return page.Items[0], nil
}

// EmailTaken reports whether the email is already used in this tenant.
func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	count, err := r.Count(ctx, UserFilter{Email: email}.conditions())
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
