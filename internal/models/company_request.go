package models

import "time"

// CompanyRequest is a company asking to join the marketplace to post opportunities.
type CompanyRequest struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CompanyName  string `gorm:"size:255;not null" json:"company_name"`
	ContactName  string `gorm:"size:255;not null" json:"contact_name"`
	ContactEmail string `gorm:"size:255;not null;index" json:"contact_email"`
	Industry     string `gorm:"size:128" json:"industry"`
	Website      string `gorm:"size:512" json:"website"`
	Message      string `gorm:"type:text" json:"message"`
	DocumentURL  string `gorm:"size:512" json:"document_url"`
	SubmittedBy  string `gorm:"size:64;index" json:"submitted_by"`
	ReviewFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewKind implements Reviewable.
func (CompanyRequest) ReviewKind() ReviewKind { return ReviewKindCompanyRequest }

// PrimaryKey implements Reviewable.
func (c CompanyRequest) PrimaryKey() uint { return c.ID }
