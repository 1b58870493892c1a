// Package services – StatsService
//
// This file implements the StatsService, the single owner of the view
// recording and aggregation operations. RecordView runs the deduplication
// algorithm (increment an active record or open a new cluster), ViewCount
// answers aggregated totals through a TTL cache, and TopPosts lists the
// most-viewed posts with pagination.
//
// Service-level errors (ErrInvalidPost) are returned for predictable cases
// so the transport layer can map them consistently; store failures are
// propagated raw from RecordView and degraded to zero in ViewCount, since
// counts are best-effort display data.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jankx/simplestats/internal/cache"
	"github.com/jankx/simplestats/internal/domain"
	"github.com/jankx/simplestats/internal/identity"
	"github.com/jankx/simplestats/internal/repo"
	"github.com/jankx/simplestats/internal/useragent"
)

// Defaults for the deduplication window and the count cache TTL. The window
// is operator-tunable; the TTL is fixed.
const (
	DefaultWindow = 24 * time.Hour
	CountCacheTTL = time.Hour
)

// StatsService provides the two core operations of the tracking system:
// recording a view and reading an aggregated count. Construct it once at
// process start and hand it by reference to request handlers; it is safe
// for concurrent use.
type StatsService struct {
	// DB is the GORM handle used for all store operations.
	DB *gorm.DB

	// Window is the deduplication window: repeat views from one identity
	// within it increment the active record instead of creating a new one.
	Window time.Duration

	// Counts is the read-through cache over the per-post aggregation.
	Counts *cache.Counts

	// Now supplies the clock; nil means time.Now in UTC. Tests pin it.
	Now func() time.Time
}

// NewStatsService constructs a StatsService with the given dedup window
// (DefaultWindow when non-positive) and the fixed count cache TTL.
func NewStatsService(db *gorm.DB, window time.Duration) *StatsService {
	if window <= 0 {
		window = DefaultWindow
	}
	return &StatsService{
		DB:     db,
		Window: window,
		Counts: cache.NewCounts(CountCacheTTL),
	}
}

// RecordView records one page view of postID by the given visitor.
//
// Algorithm:
//  1. Look up the most recently updated record for the exact
//     (post, user, IP) triple.
//  2. If one exists and its last update is younger than the window, extend
//     it: views_count+1, updated_at=now. The increment is guarded by a
//     freshness predicate at the store, so a record that ages out (or is
//     moved by a concurrent writer) between the read and the write is not
//     touched; the call falls through to step 3 instead.
//  3. Otherwise classify the user agent and insert a fresh record with
//     views_count=1 and both timestamps set to now.
//
// The caller must have verified the post is published; the service only
// rejects non-positive ids (ErrInvalidPost, no store call). Two quick calls
// for the same identity increment twice on purpose; collapsing a single
// page load into one call is the caller's job. Concurrent calls for one
// identity may still both insert; the count is then marginally inflated,
// never lost.
//
// Store failures are returned to the caller with no partial state; nothing
// is logged or retried here.
func (s *StatsService) RecordView(ctx context.Context, postID uint, v identity.Visitor, userAgent string) error {
	if postID == 0 {
		return ErrInvalidPost
	}
	now := s.now()

	rec, err := repo.LatestVisitorView(ctx, s.DB, postID, v.UserID, v.IP)
	switch {
	case err == nil:
		if now.Sub(rec.UpdatedAt) < s.Window {
			ok, err := repo.IncrementView(ctx, s.DB, rec.ID, now.Add(-s.Window), now)
			if err != nil {
				return err
			}
			if ok {
				viewsRecorded.WithLabelValues("increment").Inc()
				return nil
			}
			// Freshness predicate matched nothing: the record aged out
			// under us. Open a new cluster below.
		}
	case errors.Is(err, repo.ErrNotFound):
		// First view from this identity; insert below.
	default:
		return err
	}

	browser, device := useragent.Classify(userAgent)
	fresh := &domain.ViewRecord{
		PostID:     postID,
		UserID:     v.UserID,
		IPAddress:  v.IP,
		UserAgent:  userAgent,
		Browser:    browser,
		Device:     device,
		ViewsCount: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.InsertView(ctx, s.DB, fresh); err != nil {
		return err
	}
	viewsRecorded.WithLabelValues("insert").Inc()
	return nil
}

// ViewCount returns the aggregated view total for postID.
//
// The cached value is served while its TTL holds, regardless of views
// recorded in the meantime; on a miss the store is summed across all
// records (active and aged-out) and the cache repopulated. A failing or
// missing store is treated as a valid zero. The zero is cached too, so a
// broken store is not hammered on every read.
//
// The only error returned is ErrInvalidPost for a non-positive id.
func (s *StatsService) ViewCount(ctx context.Context, postID uint) (int64, error) {
	if postID == 0 {
		return 0, ErrInvalidPost
	}
	now := s.now()

	if total, ok := s.Counts.Get(postID, now); ok {
		countLookups.WithLabelValues("hit").Inc()
		return total, nil
	}
	countLookups.WithLabelValues("miss").Inc()

	total, err := repo.SumViews(ctx, s.DB, postID)
	if err != nil {
		total = 0
	}
	s.Counts.Put(postID, total, now)
	return total, nil
}

// TopPosts returns a page of posts ordered by total views descending,
// together with the number of distinct tracked posts. Invalid page values
// fall back to the first page of twenty.
func (s *StatsService) TopPosts(ctx context.Context, page, pageSize int) ([]repo.PostViews, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountTrackedPosts(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []repo.PostViews{}, 0, nil
	}

	rows, err := repo.TopPosts(ctx, s.DB, offset, pageSize)
	return rows, total, err
}

// now returns the service clock, defaulting to wall time in UTC.
func (s *StatsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
