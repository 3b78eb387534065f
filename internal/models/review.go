package models

import "time"

// ReviewStatus tracks where a submission sits in the admin review workflow.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// IsTerminal reports whether the status accepts no further transition.
func (s ReviewStatus) IsTerminal() bool {
	return s == ReviewStatusApproved || s == ReviewStatusRejected
}

// ReviewKind identifies one of the review queues.
type ReviewKind string

const (
	ReviewKindCompanyRequest    ReviewKind = "company_request"
	ReviewKindMentorApplication ReviewKind = "mentor_application"
	ReviewKindProgram           ReviewKind = "program"
)

// ReviewKinds lists every queue in display order.
func ReviewKinds() []ReviewKind {
	return []ReviewKind{ReviewKindCompanyRequest, ReviewKindMentorApplication, ReviewKindProgram}
}

// ReviewFields holds the columns shared by every reviewable submission.
type ReviewFields struct {
	Status          ReviewStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	SubmittedAt     time.Time    `gorm:"not null;index" json:"submitted_at"`
	ReviewedBy      *uint        `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewed_at,omitempty"`
	RejectionReason string       `gorm:"type:text" json:"rejection_reason,omitempty"`
}

// Review returns the shared review columns.
func (r ReviewFields) Review() ReviewFields {
	return r
}

// Reviewable is implemented by every entity that flows through a review queue.
type Reviewable interface {
	ReviewKind() ReviewKind
	PrimaryKey() uint
	Review() ReviewFields
}

// ReviewDecision is the history row written for each status transition.
type ReviewDecision struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Kind       ReviewKind   `gorm:"size:32;not null;index:idx_review_decision_record" json:"kind"`
	RecordID   uint         `gorm:"not null;index:idx_review_decision_record" json:"record_id"`
	FromStatus ReviewStatus `gorm:"size:16;not null" json:"from_status"`
	ToStatus   ReviewStatus `gorm:"size:16;not null" json:"to_status"`
	Reason     string       `gorm:"type:text" json:"reason,omitempty"`
	ActorID    uint         `gorm:"not null" json:"actor_id"`
	ActorRole  string       `gorm:"size:32" json:"actor_role"`
	DecidedAt  time.Time    `gorm:"not null" json:"decided_at"`
}
