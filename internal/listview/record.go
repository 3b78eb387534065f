// Package listview holds the list-view controller shared by the admin review queues: stable
// search and status filtering, clamped pagination, and the approve / reject-with-reason flow.
package listview

import (
	"strings"
	"time"
)

// Status values understood by the controller. StatusAll is only meaningful as a filter.
const (
	StatusAll      = "all"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Record is the structural shape a domain entity must expose to be listed and reviewed.
type Record interface {
	RecordID() string
	RecordStatus() string
	SearchableFields() []string
	RecordSubmittedAt() time.Time
}

// IsTerminal reports whether no further transition is offered for the status.
func IsTerminal(status string) bool {
	switch normalizeStatus(status) {
	case StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsActionable reports whether approve/reject controls apply to the record.
func IsActionable(record Record) bool {
	return normalizeStatus(record.RecordStatus()) == StatusPending
}

// NormalizeStatusFilter lower-cases the filter and maps the empty value to StatusAll.
func NormalizeStatusFilter(status string) string {
	normalized := normalizeStatus(status)
	if normalized == "" {
		return StatusAll
	}
	return normalized
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
