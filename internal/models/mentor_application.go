package models

import "time"

// MentorRole is the role a student applies for.
type MentorRole string

const (
	MentorRolePreMentor  MentorRole = "pre_mentor"
	MentorRoleCounsellor MentorRole = "counsellor"
)

// MentorApplication is a student applying to mentor or counsel others.
type MentorApplication struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ApplicantID string     `gorm:"size:64;index" json:"applicant_id"`
	FullName    string     `gorm:"size:255;not null" json:"full_name"`
	Email       string     `gorm:"size:255;not null;index" json:"email"`
	University  string     `gorm:"size:255" json:"university"`
	Expertise   string     `gorm:"size:255" json:"expertise"`
	Role        MentorRole `gorm:"size:32;not null" json:"role"`
	Bio         string     `gorm:"type:text" json:"bio"`
	CVURL       string     `gorm:"size:512" json:"cv_url"`
	ReviewFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewKind implements Reviewable.
func (MentorApplication) ReviewKind() ReviewKind { return ReviewKindMentorApplication }

// PrimaryKey implements Reviewable.
func (m MentorApplication) PrimaryKey() uint { return m.ID }
