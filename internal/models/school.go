package models

import "time"

// Student statuses.
const (
	StudentStatusEnrolled  = "enrolled"
	StudentStatusGraduated = "graduated"
	StudentStatusDeleted   = "deleted"
)

// Student is the enrolment record for a learner within a tenant.
type Student struct {
	TenantModel
	FirstName      string     `gorm:"size:128;not null" json:"first_name"`
	LastName       string     `gorm:"size:128;not null" json:"last_name"`
	AdmissionNo    string     `gorm:"size:64;index;not null" json:"admission_no"`
	Grade          string     `gorm:"size:32" json:"grade"`
	Section        string     `gorm:"size:32" json:"section"`
	GuardianEmail  string     `gorm:"size:255" json:"guardian_email"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Status         string     `gorm:"size:32;not null;default:enrolled" json:"status"`
	EnrolledAt     time.Time  `json:"enrolled_at"`
}

// MarkDeleted flips the record into the soft-deleted state.
func (s *Student) MarkDeleted() { s.Status = StudentStatusDeleted }
