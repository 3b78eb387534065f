package listview

import "strings"

// Filter returns the records matching both the status filter and the search term, in input order.
// A record matches the term when any searchable field contains it, ignoring case. The term is
// matched as given: surrounding spaces are part of it, and only "" disables the search.
func Filter[T Record](records []T, searchTerm, statusFilter string) []T {
	status := NormalizeStatusFilter(statusFilter)
	term := strings.ToLower(searchTerm)

	filtered := make([]T, 0, len(records))
	for _, record := range records {
		if status != StatusAll && normalizeStatus(record.RecordStatus()) != status {
			continue
		}
		if term != "" && !matchesTerm(record, term) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

func matchesTerm(record Record, lowerTerm string) bool {
	for _, field := range record.SearchableFields() {
		if strings.Contains(strings.ToLower(field), lowerTerm) {
			return true
		}
	}
	return false
}
