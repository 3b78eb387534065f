package models

import (
	"time"

	"gorm.io/datatypes"
)

// Program is a university program listing awaiting publication.
type Program struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Title        string                      `gorm:"size:255;not null" json:"title"`
	University   string                      `gorm:"size:255;not null" json:"university"`
	Category     string                      `gorm:"size:128;index" json:"category"`
	Description  string                      `gorm:"type:text" json:"description"`
	ContactEmail string                      `gorm:"size:255" json:"contact_email"`
	Tags         datatypes.JSONSlice[string] `gorm:"type:json" json:"tags"`
	SubmittedBy  string                      `gorm:"size:64;index" json:"submitted_by"`
	ReviewFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewKind implements Reviewable.
func (Program) ReviewKind() ReviewKind { return ReviewKindProgram }

// PrimaryKey implements Reviewable.
func (p Program) PrimaryKey() uint { return p.ID }
