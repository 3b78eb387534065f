package dto

import (
	"strconv"
	"time"

	"github.com/noah-isme/mentora-api/internal/listview"
	"github.com/noah-isme/mentora-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ReviewItem is the queue-agnostic projection of a reviewable record.
type ReviewItem struct {
	ID              uint       `json:"id"`
	Kind            string     `json:"kind"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle"`
	Email           string     `json:"email"`
	Category        string     `json:"category"`
	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	DocumentURL     string     `json:"document_url,omitempty"`
	SubmitterID     string     `json:"-"`
}

// RecordID implements listview.Record.
func (r ReviewItem) RecordID() string { return strconv.FormatUint(uint64(r.ID), 10) }

// RecordStatus implements listview.Record.
func (r ReviewItem) RecordStatus() string { return r.Status }

// SearchableFields implements listview.Record.
func (r ReviewItem) SearchableFields() []string {
	return []string{r.Title, r.Subtitle, r.Email, r.Category}
}

// RecordSubmittedAt implements listview.Record.
func (r ReviewItem) RecordSubmittedAt() time.Time { return r.SubmittedAt }

// NewCompanyRequestItem projects a company request.
func NewCompanyRequestItem(m models.CompanyRequest) ReviewItem {
	return newReviewItem(m.ID, models.ReviewKindCompanyRequest, m.ReviewFields, ReviewItem{
		Title:       m.CompanyName,
		Subtitle:    m.ContactName,
		Email:       m.ContactEmail,
		Category:    m.Industry,
		DocumentURL: m.DocumentURL,
		SubmitterID: m.SubmittedBy,
	})
}

// NewMentorApplicationItem projects a mentor application.
func NewMentorApplicationItem(m models.MentorApplication) ReviewItem {
	return newReviewItem(m.ID, models.ReviewKindMentorApplication, m.ReviewFields, ReviewItem{
		Title:       m.FullName,
		Subtitle:    m.University,
		Email:       m.Email,
		Category:    m.Expertise,
		DocumentURL: m.CVURL,
		SubmitterID: m.ApplicantID,
	})
}

// NewProgramItem projects a program listing.
func NewProgramItem(m models.Program) ReviewItem {
	return newReviewItem(m.ID, models.ReviewKindProgram, m.ReviewFields, ReviewItem{
		Title:       m.Title,
		Subtitle:    m.University,
		Email:       m.ContactEmail,
		Category:    m.Category,
		SubmitterID: m.SubmittedBy,
	})
}

func newReviewItem(id uint, kind models.ReviewKind, review models.ReviewFields, item ReviewItem) ReviewItem {
	item.ID = id
	item.Kind = string(kind)
	item.Status = string(review.Status)
	item.SubmittedAt = review.SubmittedAt
	item.ReviewedAt = review.ReviewedAt
	item.RejectionReason = review.RejectionReason
	return item
}

// ReviewSessionUpdate changes the list state of a review session. Nil fields are left as they are.
type ReviewSessionUpdate struct {
	Search   *string `json:"search" validate:"omitempty,max=200"`
	Status   *string `json:"status" validate:"omitempty,oneof=all pending approved rejected"`
	Page     *int    `json:"page" validate:"omitempty,min=1"`
	PageSize *int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// IsEmpty reports whether the update changes nothing.
func (u ReviewSessionUpdate) IsEmpty() bool {
	return u.Search == nil && u.Status == nil && u.Page == nil && u.PageSize == nil
}

// RejectReasonRequest carries the reason buffer of the reject dialog.
type RejectReasonRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=2000"`
}

// ReviewRow is a listed record plus whether approve/reject controls apply.
type ReviewRow struct {
	ReviewItem
	Actionable bool `json:"actionable"`
}

// RejectModalResponse mirrors the open reject dialog.
type RejectModalResponse struct {
	Open     bool   `json:"open"`
	RecordID uint   `json:"record_id,omitempty"`
	Reason   string `json:"reason"`
}

// ReviewListResponse is the rendered review queue for one reviewer session.
type ReviewListResponse struct {
	Kind         string              `json:"kind"`
	Items        []ReviewRow         `json:"items"`
	Search       string              `json:"search"`
	Status       string              `json:"status"`
	EmptyState   string              `json:"empty_state"`
	TotalRecords int                 `json:"total_records"`
	Pagination   PaginationMeta      `json:"pagination"`
	RejectModal  RejectModalResponse `json:"reject_modal"`
}

// NewReviewListResponse converts a controller view into the API shape.
func NewReviewListResponse(kind models.ReviewKind, view listview.View[ReviewItem]) ReviewListResponse {
	rows := make([]ReviewRow, 0, len(view.Rows))
	for _, row := range view.Rows {
		rows = append(rows, ReviewRow{ReviewItem: row.Record, Actionable: row.Actionable})
	}

	modal := RejectModalResponse{Open: view.Modal.Open, Reason: view.Modal.Reason}
	if view.Modal.Open {
		if id, err := strconv.ParseUint(view.Modal.RecordID, 10, 64); err == nil {
			modal.RecordID = uint(id)
		}
	}

	return ReviewListResponse{
		Kind:         string(kind),
		Items:        rows,
		Search:       view.Search,
		Status:       view.Status,
		EmptyState:   string(view.Empty),
		TotalRecords: view.TotalRecords,
		Pagination: PaginationMeta{
			Page:       view.Page,
			PageSize:   view.PageSize,
			TotalItems: int64(view.TotalItems),
			TotalPages: view.TotalPages,
		},
		RejectModal: modal,
	}
}

// ReviewDecisionResponse serializes one entry of a record's decision history.
type ReviewDecisionResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Reason     string    `json:"reason,omitempty"`
	ActorID    uint      `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	DecidedAt  time.Time `json:"decided_at"`
}

// ReviewDetailResponse is a record together with its decision history.
type ReviewDetailResponse struct {
	Item    ReviewItem               `json:"item"`
	History []ReviewDecisionResponse `json:"history"`
}

// NewReviewDecisionResponses converts decision rows.
func NewReviewDecisionResponses(decisions []models.ReviewDecision) []ReviewDecisionResponse {
	out := make([]ReviewDecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, ReviewDecisionResponse{
			FromStatus: string(d.FromStatus),
			ToStatus:   string(d.ToStatus),
			Reason:     d.Reason,
			ActorID:    d.ActorID,
			ActorRole:  d.ActorRole,
			DecidedAt:  d.DecidedAt,
		})
	}
	return out
}

// ReviewQueueSummary counts one queue by status.
type ReviewQueueSummary struct {
	Kind     string `json:"kind"`
	Pending  int64  `json:"pending"`
	Approved int64  `json:"approved"`
	Rejected int64  `json:"rejected"`
	Total    int64  `json:"total"`
}

// ReviewSummaryResponse aggregates every queue for the admin dashboard.
type ReviewSummaryResponse struct {
	Queues       []ReviewQueueSummary `json:"queues"`
	TotalPending int64                `json:"total_pending"`
	GeneratedAt  time.Time            `json:"generated_at"`
	CacheHit     bool                 `json:"cache_hit"`
}

// ReviewEvent is broadcast whenever a record changes status.
type ReviewEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	RecordID   uint      `json:"record_id"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	ActorID    uint      `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
