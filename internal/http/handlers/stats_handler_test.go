package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jankx/simplestats/internal/domain"
	"github.com/jankx/simplestats/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

func newHandlerEnv(t *testing.T, migrate bool) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("handlers_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := db.AutoMigrate(&domain.ViewRecord{}); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}

	h := New(services.NewStatsService(db, 24*time.Hour))
	r := gin.New()
	r.POST("/views", h.TrackView)
	r.GET("/posts/:id/views", h.GetViewCount)
	r.GET("/posts/top", h.TopPosts)
	return r, db
}

func track(r *gin.Engine, body, userID, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/views", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 Chrome/120 Safari/537")
	req.RemoteAddr = "127.0.0.1:55555"
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrackView_RecordsResolvedIdentity(t *testing.T) {
	r, db := newHandlerEnv(t, true)

	w := track(r, `{"post_id": 10}`, "42", "198.51.100.9, 10.0.0.2")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body %s", w.Code, w.Body.String())
	}

	var rec domain.ViewRecord
	if err := db.First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.PostID != 10 || rec.UserID != 42 || rec.IPAddress != "198.51.100.9" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Browser != "Chrome" || rec.Device != "Desktop" {
		t.Fatalf("classification = (%q, %q)", rec.Browser, rec.Device)
	}
}

func TestTrackView_GuestFallsBackToRemoteAddr(t *testing.T) {
	r, db := newHandlerEnv(t, true)

	if w := track(r, `{"post_id": 10}`, "", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	var rec domain.ViewRecord
	if err := db.First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.UserID != 0 || rec.IPAddress != "127.0.0.1" {
		t.Fatalf("guest identity wrong: %+v", rec)
	}
}

func TestTrackView_BadInputs(t *testing.T) {
	r, _ := newHandlerEnv(t, true)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{post_id}`},
		{"missing post id", `{}`},
		{"zero post id", `{"post_id": 0}`},
		{"negative post id", `{"post_id": -3}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := track(r, tc.body, "", "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal envelope: %v", err)
			}
			if resp.Code != ErrCodeBadRequest {
				t.Fatalf("code = %q, want %q", resp.Code, ErrCodeBadRequest)
			}
		})
	}
}

func TestTrackView_StoreFailure500(t *testing.T) {
	r, _ := newHandlerEnv(t, false) // no table

	w := track(r, `{"post_id": 10}`, "", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), ErrCodeTrackFailed) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestGetViewCount_RoundTrip(t *testing.T) {
	r, _ := newHandlerEnv(t, true)

	track(r, `{"post_id": 10}`, "", "1.2.3.4")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/posts/10/views", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		PostID uint  `json:"post_id"`
		Views  int64 `json:"views"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.PostID != 10 || resp.Views != 1 {
		t.Fatalf("response = %+v, want post 10 views 1", resp)
	}
}

func TestGetViewCount_UnknownPostIsZero(t *testing.T) {
	r, _ := newHandlerEnv(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/posts/404/views", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"views":0`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestGetViewCount_BadID(t *testing.T) {
	r, _ := newHandlerEnv(t, true)

	for _, id := range []string{"abc", "0", "-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/posts/"+id+"/views", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("id %q: status = %d, want 400", id, w.Code)
		}
	}
}

func TestTopPosts_Payload(t *testing.T) {
	r, _ := newHandlerEnv(t, true)

	track(r, `{"post_id": 1}`, "", "1.1.1.1")
	track(r, `{"post_id": 1}`, "", "2.2.2.2")
	track(r, `{"post_id": 2}`, "", "1.1.1.1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/posts/top?page_size=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Items []struct {
			PostID uint  `json:"post_id"`
			Views  int64 `json:"views"`
		} `json:"items"`
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 2 || resp.PageSize != 1 || len(resp.Items) != 1 {
		t.Fatalf("pagination wrong: %+v", resp)
	}
	if resp.Items[0].PostID != 1 || resp.Items[0].Views != 2 {
		t.Fatalf("top item wrong: %+v", resp.Items[0])
	}
}
