package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/archlens/archlens-backend/internal/users"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxUserEmail   = "user_email"
	CtxUserDBID    = "user_db_id"
)

// WithUser resolves the request's user and ensures a matching users row.
// The Firebase UID comes from the auth middleware when it is installed; in
// development the X-User-Id header (or "demo-user") stands in for it.
func WithUser(userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := strings.TrimSpace(c.GetString(CtxFirebaseUID))
		if fuid == "" {
			fuid = strings.TrimSpace(c.GetHeader("X-User-Id"))
		}
		if fuid == "" {
			fuid = "demo-user"
		}

		// A verified token claim beats the self-reported header.
		email := strings.TrimSpace(c.GetString(CtxUserEmail))
		if email == "" {
			email = c.GetHeader("X-User-Email")
		}

		uid, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       email,
			DisplayName: c.GetHeader("X-User-Name"),
			PhotoURL:    c.GetHeader("X-User-Photo"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(CtxFirebaseUID, fuid)
		c.Set(CtxUserDBID, uid)
		c.Next()
	}
}

// UserDBID returns the resolved users-table id, or "" when WithUser did not
// run (persistence disabled).
func UserDBID(c *gin.Context) string {
	v := c.GetString(CtxUserDBID)
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

// UserFirebaseUID returns the Firebase UID set by the auth middleware.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}
