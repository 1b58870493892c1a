// Package repo implements the data persistence layer for view records,
// backed by GORM. This file provides the repository functions the
// deduplication engine and the aggregation queries are built on.
//
// The repository follows a "thin" approach: persistence and query
// composition only, with the window arithmetic and caching left to the
// services package.
//
// Error semantics:
//   - LatestVisitorView returns ErrNotFound (gorm.ErrRecordNotFound) when
//     the visitor has never viewed the post.
//   - On other DB errors (missing schema, connectivity), the raw gorm error
//     is propagated for the service layer to classify.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jankx/simplestats/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// LatestVisitorView fetches the most recently updated view record for the
// exact (postID, userID, ip) triple. All three must match: distinct users
// behind one address, or one user on two addresses, are distinct clusters.
//
// Ordering is by updated_at descending with id descending as the tie-break,
// so "most recent" stays well-defined even when timestamps collide.
func LatestVisitorView(ctx context.Context, db *gorm.DB, postID, userID uint, ip string) (*domain.ViewRecord, error) {
	var rec domain.ViewRecord
	err := db.WithContext(ctx).
		Where("post_id = ? AND user_id = ? AND ip_address = ?", postID, userID, ip).
		Order("updated_at DESC, id DESC").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertView persists a brand-new view record. The caller is responsible for
// populating classification labels and both timestamps.
func InsertView(ctx context.Context, db *gorm.DB, rec *domain.ViewRecord) error {
	return db.WithContext(ctx).Create(rec).Error
}

// IncrementView bumps views_count on record id and refreshes updated_at,
// but only while the record is still fresh: the UPDATE carries a
// `updated_at > cutoff` predicate, so the read-check-write sequence in the
// engine collapses into a single conditional statement at the store.
//
// It returns false (with nil error) when the predicate matched no row:
// either the record aged out between the engine's read and this write, or a
// concurrent writer moved it. The engine treats that as "insert instead".
func IncrementView(ctx context.Context, db *gorm.DB, id uint, cutoff, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.ViewRecord{}).
		Where("id = ? AND updated_at > ?", id, cutoff).
		Updates(map[string]any{
			"views_count": gorm.Expr("views_count + 1"),
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SumViews returns the total views_count across every record for postID,
// active and aged-out alike. A post with no records sums to 0.
func SumViews(ctx context.Context, db *gorm.DB, postID uint) (int64, error) {
	var row struct {
		Total int64
	}
	err := db.WithContext(ctx).
		Model(&domain.ViewRecord{}).
		Select("COALESCE(SUM(views_count), 0) AS total").
		Where("post_id = ?", postID).
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Total, nil
}

// PostViews is one row of the per-post aggregation used by TopPosts.
type PostViews struct {
	PostID uint  `json:"post_id"`
	Views  int64 `json:"views"`
}

// TopPosts returns posts ordered by total views descending, post id
// ascending on ties, paginated by offset/limit.
func TopPosts(ctx context.Context, db *gorm.DB, offset, limit int) ([]PostViews, error) {
	var out []PostViews
	err := db.WithContext(ctx).
		Model(&domain.ViewRecord{}).
		Select("post_id, SUM(views_count) AS views").
		Group("post_id").
		Order("views DESC, post_id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// CountTrackedPosts returns how many distinct posts have at least one view
// record, for pagination metadata alongside TopPosts.
func CountTrackedPosts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ViewRecord{}).
		Distinct("post_id").
		Count(&total).Error
	return total, err
}
