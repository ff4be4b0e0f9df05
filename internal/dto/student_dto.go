package dto

import "time"

// StudentCreateRequest enrols a student in the caller's school.
type StudentCreateRequest struct {
	FirstName     string     `json:"first_name" validate:"required,min=1,max=128"`
	LastName      string     `json:"last_name" validate:"required,min=1,max=128"`
	AdmissionNo   string     `json:"admission_no" validate:"required,min=1,max=64"`
	Grade         string     `json:"grade" validate:"max=32"`
	Section       string     `json:"section" validate:"max=32"`
	GuardianEmail string     `json:"guardian_email" validate:"omitempty,email"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
}

// StudentUpdateRequest applies a partial update; nil fields are untouched.
type StudentUpdateRequest struct {
	FirstName     *string `json:"first_name" validate:"omitempty,min=1,max=128"`
	LastName      *string `json:"last_name" validate:"omitempty,min=1,max=128"`
	Grade         *string `json:"grade" validate:"omitempty,max=32"`
	Section       *string `json:"section" validate:"omitempty,max=32"`
	GuardianEmail *string `json:"guardian_email" validate:"omitempty,email"`
	Status        *string `json:"status" validate:"omitempty,oneof=enrolled graduated"`
}

// StudentResponse is the outward student shape.
type StudentResponse struct {
	ID            uint       `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	AdmissionNo   string     `json:"admission_no"`
	Grade         string     `json:"grade"`
	Section       string     `json:"section"`
	GuardianEmail string     `json:"guardian_email"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StudentListResponse is one page of students.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}
