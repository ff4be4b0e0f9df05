package models

// User roles recognised by the authorization layer.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// User statuses.
const (
	UserStatusActive  = "active"
	UserStatusDeleted = "deleted"
)

// User is an authenticated account within a tenant.
type User struct {
	TenantModel
	Email        string `gorm:"size:255;index;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	FullName     string `gorm:"size:255;not null" json:"full_name"`
	Role         string `gorm:"size:32;not null;default:student" json:"role"`
	Status       string `gorm:"size:32;not null;default:active" json:"status"`
}

// MarkDeleted flips the account into the soft-deleted state.
func (u *User) MarkDeleted() { u.Status = UserStatusDeleted }
