package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookmarkd/bookmarkd/internal/auth"
	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/internal/social"
)

// userFollow handles POST /api/users/follow with form fields id and
// action ∈ {follow, unfollow}. Success and failure both answer 200 with a
// status field; missing parameters and unknown users are reported the same
// way and never mutate anything.
func (r *Router) userFollow(c *gin.Context) {
	actorID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rawID := c.PostForm("id")
	action := c.PostForm("action")
	if rawID == "" || action == "" {
		statusError(c)
		return
	}
	targetID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		statusError(c)
		return
	}

	switch action {
	case "follow":
		err = r.graph.Follow(c.Request.Context(), actorID, targetID)
	case "unfollow":
		err = r.graph.Unfollow(c.Request.Context(), actorID, targetID)
	default:
		statusError(c)
		return
	}

	if err != nil {
		if !errors.Is(err, social.ErrNotFound) && !errors.Is(err, social.ErrInvalidRequest) {
			r.logger.Error("follow toggle failed", zap.Error(err))
		}
		statusError(c)
		return
	}
	statusOK(c)
}

// userFollowers handles GET /api/users/:username/followers
func (r *Router) userFollowers(c *gin.Context) {
	r.followList(c, r.graph.Followers)
}

// userFollowing handles GET /api/users/:username/following
func (r *Router) userFollowing(c *gin.Context) {
	r.followList(c, r.graph.Following)
}

func (r *Router) followList(c *gin.Context, list func(context.Context, int64, int) ([]*models.User, error)) {
	user, err := db.NewUserRepository(db.NewRepository(r.db)).GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	if user == nil || !user.IsActive {
		fail(c, social.ErrNotFound)
		return
	}

	limit, _ := pageParams(c, 20)
	users, err := list(c.Request.Context(), user.ID, limit)
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u, false))
	}
	c.JSON(http.StatusOK, gin.H{"users": views})
}
