// Package handlers – view tracking endpoints.
//
// This file implements the thin glue between HTTP and the StatsService: it
// validates inputs, resolves the visitor identity from request signals, and
// maps service errors to the standard envelope. Publish-status verification
// belongs to the upstream content layer, not here.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jankx/simplestats/internal/identity"
	"github.com/jankx/simplestats/internal/services"
	"github.com/jankx/simplestats/internal/utils"
)

// Handlers bundles the dependencies of the public API endpoints.
type Handlers struct {
	Stats *services.StatsService
}

// New constructs the handler set around a StatsService.
func New(stats *services.StatsService) *Handlers {
	return &Handlers{Stats: stats}
}

// HeaderUserID carries the authenticated user id resolved by the upstream
// layer. Absent or unparsable values are treated as guest traffic.
const HeaderUserID = "X-User-ID"

type trackViewRequest struct {
	PostID int64 `json:"post_id"`
}

type viewCountResponse struct {
	PostID uint  `json:"post_id"`
	Views  int64 `json:"views"`
}

// TrackView handles POST /views.
//
// Body: {"post_id": N}. The visitor identity is resolved from X-User-ID and
// the address signals (X-Forwarded-For, X-Client-IP, RemoteAddr); the raw
// User-Agent rides along for classification. Returns 204 on success, 400
// for a missing or non-positive post id, 500 when the store rejects the
// write. Tracking is fire-and-forget for the end user; the envelope exists
// for the upstream caller.
func (h *Handlers) TrackView(c *gin.Context) {
	var req trackViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.PostID <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post_id must be a positive integer")
		return
	}

	visitor := identity.FromRequest(c.Request, userIDFrom(c))

	err := h.Stats.RecordView(c.Request.Context(), uint(req.PostID), visitor, c.Request.UserAgent())
	switch {
	case errors.Is(err, services.ErrInvalidPost):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post_id must be a positive integer")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeTrackFailed, "could not record view")
	default:
		noContent(c)
	}
}

// GetViewCount handles GET /posts/:id/views.
//
// Returns the aggregated (possibly cached, up to an hour stale) view total.
// An unknown post reads as zero views with a 200; counts are best-effort
// display data, never an error surface.
func (h *Handlers) GetViewCount(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || postID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a positive integer")
		return
	}

	total, err := h.Stats.ViewCount(c.Request.Context(), uint(postID))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a positive integer")
		return
	}
	ok(c, http.StatusOK, viewCountResponse{PostID: uint(postID), Views: total})
}

// topPostsResponse is the paginated payload of GET /posts/top.
type topPostsResponse struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// TopPosts handles GET /posts/top?page=&page_size=.
//
// Lists posts by total views descending. Invalid pagination values fall back
// to page 1 of 20.
func (h *Handlers) TopPosts(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	rows, total, err := h.Stats.TopPosts(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list posts")
		return
	}
	ok(c, http.StatusOK, topPostsResponse{
		Items:    rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// userIDFrom parses the upstream-resolved user id header; anything missing,
// unparsable, or negative is guest traffic.
func userIDFrom(c *gin.Context) uint {
	id := utils.AtoiDefault(c.GetHeader(HeaderUserID), 0)
	if id < 0 {
		return identity.GuestID
	}
	return uint(id)
}
