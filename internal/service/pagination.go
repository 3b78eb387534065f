package service

import "github.com/noah-isme/mentora-api/internal/listview"

const (
	defaultActivityPageSize = 25
	maxActivityPageSize     = 100
)

// activityPage normalises the requested page and page size of the audit feed.
func activityPage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	switch {
	case size <= 0:
		size = defaultActivityPageSize
	case size > maxActivityPageSize:
		size = maxActivityPageSize
	}
	return page, size
}

func activityTotalPages(total int64, pageSize int) int {
	return listview.TotalPages(int(total), pageSize)
}
