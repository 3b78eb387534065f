package dto

import "io"

// CompanyRequestCreateRequest is submitted by a company asking to join the marketplace.
type CompanyRequestCreateRequest struct {
	CompanyName  string `json:"company_name" form:"company_name" validate:"required,min=2,max=255"`
	ContactName  string `json:"contact_name" form:"contact_name" validate:"required,min=2,max=255"`
	ContactEmail string `json:"contact_email" form:"contact_email" validate:"required,email"`
	Industry     string `json:"industry" form:"industry" validate:"omitempty,max=128"`
	Website      string `json:"website" form:"website" validate:"omitempty,url"`
	Message      string `json:"message" form:"message" validate:"omitempty,max=4000"`
}

// MentorApplicationCreateRequest is submitted by a student applying as pre-mentor or counsellor.
type MentorApplicationCreateRequest struct {
	FullName   string `json:"full_name" form:"full_name" validate:"required,min=2,max=255"`
	Email      string `json:"email" form:"email" validate:"required,email"`
	University string `json:"university" form:"university" validate:"required,max=255"`
	Expertise  string `json:"expertise" form:"expertise" validate:"required,max=255"`
	Role       string `json:"role" form:"role" validate:"required,oneof=pre_mentor counsellor"`
	Bio        string `json:"bio" form:"bio" validate:"omitempty,max=4000"`
}

// ProgramCreateRequest is submitted by a university listing a program.
type ProgramCreateRequest struct {
	Title        string   `json:"title" validate:"required,min=3,max=255"`
	University   string   `json:"university" validate:"required,max=255"`
	Category     string   `json:"category" validate:"required,max=128"`
	Description  string   `json:"description" validate:"omitempty,max=8000"`
	ContactEmail string   `json:"contact_email" validate:"required,email"`
	Tags         []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
}

// UploadedDocument is an optional supporting file attached to an intake submission.
type UploadedDocument struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// IntakeResponse acknowledges a submission now waiting in a review queue.
type IntakeResponse struct {
	ID     uint       `json:"id"`
	Kind   string     `json:"kind"`
	Status string     `json:"status"`
	Item   ReviewItem `json:"item"`
}

// ReviewSeedRequest loads demo submissions into the review queues.
type ReviewSeedRequest struct {
	CompanyRequests    []CompanyRequestCreateRequest    `json:"company_requests" validate:"omitempty,dive"`
	MentorApplications []MentorApplicationCreateRequest `json:"mentor_applications" validate:"omitempty,dive"`
	Programs           []ProgramCreateRequest           `json:"programs" validate:"omitempty,dive"`
}

// ReviewSeedResponse reports how many records were inserted per queue.
type ReviewSeedResponse struct {
	CompanyRequests    int `json:"company_requests"`
	MentorApplications int `json:"mentor_applications"`
	Programs           int `json:"programs"`
}
