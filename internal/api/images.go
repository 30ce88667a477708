package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookmarkd/bookmarkd/internal/auth"
	"github.com/bookmarkd/bookmarkd/internal/cache"
	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/images"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/internal/social"
)

// imageView is the image payload
type imageView struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	Image       string    `json:"image"`
	Description string    `json:"description,omitempty"`
	TotalLikes  int64     `json:"total_likes"`
	CreatedAt   time.Time `json:"created_at"`
}

func toImageView(img *models.Image) imageView {
	return imageView{
		ID:          img.ID,
		UserID:      img.UserID,
		Title:       img.Title,
		Slug:        img.Slug,
		URL:         img.URL,
		Image:       img.Image,
		Description: img.Description,
		TotalLikes:  img.TotalLikes,
		CreatedAt:   img.CreatedAt,
	}
}

// imageList handles GET /api/images
func (r *Router) imageList(c *gin.Context) {
	limit, offset := pageParams(c, 20)
	list, err := db.NewImageRepository(db.NewRepository(r.db)).List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]imageView, 0, len(list))
	for _, img := range list {
		views = append(views, toImageView(img))
	}
	c.JSON(http.StatusOK, gin.H{"images": views})
}

// imageCreate handles POST /api/images
func (r *Router) imageCreate(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var in images.CreateInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot parse request"})
		return
	}

	img, err := r.images.Create(c.Request.Context(), userID, in)
	if err != nil {
		if !errors.Is(err, social.ErrValidation) {
			r.logger.Error("image create failed", zap.Error(err))
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image": toImageView(img)})
}

// imageDetail handles GET /api/images/:id and counts the view
func (r *Router) imageDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, social.ErrInvalidRequest)
		return
	}

	img, err := db.NewImageRepository(db.NewRepository(r.db)).GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if img == nil {
		fail(c, social.ErrNotFound)
		return
	}

	var views int64
	if n, err := r.cache.IncrementImageViews(c.Request.Context(), img.ID); err == nil {
		views = n
	} else if !errors.Is(err, cache.ErrCacheDisabled) {
		r.logger.Warn("view counter unavailable", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"image": toImageView(img),
		"views": views,
	})
}

// imageLike handles POST /api/images/like with form fields id and
// action ∈ {like, unlike}. Same uniform status contract as the follow
// toggle.
func (r *Router) imageLike(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
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
	imageID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		statusError(c)
		return
	}

	if err := r.likes.ToggleImageLike(c.Request.Context(), imageID, userID, action); err != nil {
		if !errors.Is(err, social.ErrNotFound) && !errors.Is(err, social.ErrInvalidRequest) {
			r.logger.Error("like toggle failed", zap.Error(err))
		}
		statusError(c)
		return
	}
	statusOK(c)
}

// imageRanking handles GET /api/images/ranking: the most viewed images,
// per the Redis ranking
func (r *Router) imageRanking(c *gin.Context) {
	limit, _ := pageParams(c, 10)

	ids, err := r.cache.MostViewedImages(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			c.JSON(http.StatusOK, gin.H{"images": []imageView{}})
			return
		}
		fail(c, err)
		return
	}

	imgs, err := db.NewImageRepository(db.NewRepository(r.db)).GetByIDs(c.Request.Context(), ids)
	if err != nil {
		fail(c, err)
		return
	}

	// Preserve the ranking order
	byID := make(map[int64]*models.Image, len(imgs))
	for _, img := range imgs {
		byID[img.ID] = img
	}
	views := make([]imageView, 0, len(ids))
	for _, id := range ids {
		if img, ok := byID[id]; ok {
			views = append(views, toImageView(img))
		}
	}
	c.JSON(http.StatusOK, gin.H{"images": views})
}
