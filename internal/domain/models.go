// Package domain defines the persistence model for page-view statistics.
// The single aggregate is the ViewRecord, mapped with GORM, which forms the
// durable source of truth for every view the service has ever recorded.
package domain

import "time"

// ViewRecord is one cluster of views for a (post, user, IP) identity.
//
// Repeat views from the same identity inside the deduplication window extend
// an existing row by incrementing ViewsCount and refreshing UpdatedAt. Views
// arriving after the window opens a brand-new row next to the aged-out one:
// history is append-only and rows are never deleted or merged by the service.
//
// Fields:
//   - ID: auto-incrementing primary key. The "most recent" query breaks
//     updated_at ties by higher ID, so IDs must be ordered.
//   - PostID: the tracked content item; indexed on its own for aggregation.
//   - UserID: authenticated visitor id, or 0 for guests. Stored NOT NULL;
//     guests are normalized to the sentinel before every read and write.
//   - IPAddress: resolved client address, stored as text, no validation.
//   - UserAgent: raw User-Agent header, verbatim, may be empty.
//   - Browser, Device: coarse labels classified once at creation time and
//     never recomputed on increment.
//   - ViewsCount: monotonically non-decreasing, starts at 1.
//   - CreatedAt: first view in the cluster; immutable.
//   - UpdatedAt: most recent view in the cluster; refreshed on increment.
//
// The composite index (user_id, ip_address, post_id) serves the dedup lookup;
// the post_id index serves the per-post sum.
type ViewRecord struct {
	ID        uint   `json:"id"         gorm:"primaryKey"`
	PostID    uint   `json:"post_id"    gorm:"not null;index:idx_view_records_post"`
	UserID    uint   `json:"user_id"    gorm:"not null;default:0;index:idx_view_records_visitor,priority:1"`
	IPAddress string `json:"ip_address" gorm:"type:varchar(100);not null;index:idx_view_records_visitor,priority:2"`
	UserAgent string `json:"user_agent" gorm:"type:text"`
	Browser   string `json:"browser"    gorm:"type:varchar(50)"`
	Device    string `json:"device"     gorm:"type:varchar(50)"`

	ViewsCount int64 `json:"views_count" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ViewRecord.
func (ViewRecord) TableName() string { return "view_records" }
