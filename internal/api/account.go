package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookmarkd/bookmarkd/internal/account"
	"github.com/bookmarkd/bookmarkd/internal/auth"
	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/internal/social"
)

// userView is the user payload returned by account endpoints
type userView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func toUserView(u *models.User, includeEmail bool) userView {
	v := userView{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if includeEmail {
		v.Email = u.Email
	}
	return v
}

// register handles POST /api/register
func (r *Router) register(c *gin.Context) {
	var in account.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot parse request"})
		return
	}

	if errs := in.Validate(); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	user, err := r.accounts.Register(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, account.ErrUsernameTaken) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"username": "Username already in use"}})
			return
		}
		r.logger.Error("register failed", zap.Error(err))
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserView(user, true)})
}

// loginInput is the login form payload; username may also carry an email
// address
type loginInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// login handles POST /api/login
func (r *Router) login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot parse request"})
		return
	}

	user, err := r.authenticator.Authenticate(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDisabledAccount):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Disabled account"})
		case errors.Is(err, auth.ErrInvalidLogin):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login"})
		default:
			r.logger.Error("login failed", zap.Error(err))
			fail(c, err)
		}
		return
	}

	// Accounts that predate the profile table get one on first login
	if _, err := r.accounts.EnsureProfile(c.Request.Context(), user.ID); err != nil {
		r.logger.Error("profile creation failed", zap.Error(err))
		fail(c, err)
		return
	}

	token, err := r.tokens.CreateToken(user.ID)
	if err != nil {
		r.logger.Error("token creation failed", zap.Error(err))
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toUserView(user, true),
	})
}

// profileEdit handles PUT /api/profile
func (r *Router) profileEdit(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var in account.ProfileInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot parse request"})
		return
	}

	if err := r.accounts.UpdateProfile(c.Request.Context(), userID, in); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// userList handles GET /api/users
func (r *Router) userList(c *gin.Context) {
	limit, offset := pageParams(c, 20)
	users, err := db.NewUserRepository(db.NewRepository(r.db)).ListActive(c.Request.Context(), limit, offset)
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

// userDetail handles GET /api/users/:username
func (r *Router) userDetail(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	user, err := db.NewUserRepository(db.NewRepository(r.db)).GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	if user == nil || !user.IsActive {
		fail(c, social.ErrNotFound)
		return
	}

	followers, following, err := r.graph.Counts(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	followed, err := r.graph.IsFollowing(c.Request.Context(), viewerID, user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":            toUserView(user, false),
		"followers_count": followers,
		"following_count": following,
		"followed":        followed,
	})
}
