package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handler serves the profile of the resolved user.
type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

// GetProfile returns the current user's stored profile.
func (h *Handler) GetProfile(c *gin.Context) {
	fuid := strings.TrimSpace(c.GetString("firebase_uid"))
	if fuid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.repo.GetByFirebaseUID(c.Request.Context(), fuid)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SyncProfile upserts profile fields for the current user and returns the
// stored row. Clients call it after sign-in; absent fields keep their
// stored values.
func (h *Handler) SyncProfile(c *gin.Context) {
	fuid := strings.TrimSpace(c.GetString("firebase_uid"))
	if fuid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		PhotoURL    string `json:"photo_url"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
	}

	if _, err := h.repo.EnsureUser(c.Request.Context(), UpsertUser{
		FirebaseUID: fuid,
		Email:       body.Email,
		DisplayName: body.DisplayName,
		PhotoURL:    body.PhotoURL,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync user"})
		return
	}

	user, err := h.repo.GetByFirebaseUID(c.Request.Context(), fuid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Register mounts the profile routes.
func (h *Handler) Register(rg gin.IRouter) {
	g := rg.Group("/users")
	g.GET("/profile", h.GetProfile)
	g.POST("/sync", h.SyncProfile)
}
