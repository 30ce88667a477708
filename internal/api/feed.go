package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookmarkd/bookmarkd/internal/auth"
	"github.com/bookmarkd/bookmarkd/internal/models"
)

// actionView is the activity entry payload
type actionView struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Verb       string    `json:"verb"`
	TargetType string    `json:"target_type,omitempty"`
	TargetID   int64     `json:"target_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toActionViews(actions []*models.Action) []actionView {
	views := make([]actionView, 0, len(actions))
	for _, a := range actions {
		v := actionView{
			ID:        a.ID,
			UserID:    a.UserID,
			Verb:      a.Verb,
			CreatedAt: a.CreatedAt,
		}
		if a.TargetType.Valid {
			v.TargetType = a.TargetType.String
			v.TargetID = a.TargetID.Int64
		}
		views = append(views, v)
	}
	return views
}

// followedFeed handles GET /api/feed: activity by the users the viewer
// follows, newest first
func (r *Router) followedFeed(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, offset := pageParams(c, 20)
	actions, err := r.activity.FollowedFeed(c.Request.Context(), userID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": toActionViews(actions)})
}

// globalFeed handles GET /api/feed/global: everyone's activity, newest
// first
func (r *Router) globalFeed(c *gin.Context) {
	limit, offset := pageParams(c, 20)
	actions, err := r.activity.GlobalFeed(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": toActionViews(actions)})
}

// pageParams reads limit/page query parameters
func pageParams(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	page := 1
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	return limit, (page - 1) * limit
}
