package repository

import (
	"time"

	"gorm.io/gorm"
)

// newestFirst orders append-only tables by insertion, most recent first.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// window limits a query to limit rows after skipping offset; limit <= 0 returns every row.
func window(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		if offset < 0 {
			offset = 0
		}
		return db.Offset(offset).Limit(limit)
	}
}

// createdBetween bounds created_at to [since, until); nil ends are open.
func createdBetween(since, until *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if since != nil {
			db = db.Where("created_at >= ?", *since)
		}
		if until != nil {
			db = db.Where("created_at < ?", *until)
		}
		return db
	}
}
