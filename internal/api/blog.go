package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookmarkd/bookmarkd/internal/auth"
	"github.com/bookmarkd/bookmarkd/internal/blog"
	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/internal/social"
)

// postView is the post payload
type postView struct {
	ID       int64     `json:"id"`
	AuthorID int64     `json:"author_id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Body     string    `json:"body,omitempty"`
	Status   string    `json:"status"`
	Publish  time.Time `json:"publish"`
	Tags     []string  `json:"tags,omitempty"`
}

func toPostView(post *models.Post, withBody bool) postView {
	v := postView{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		Title:    post.Title,
		Slug:     post.Slug,
		Status:   post.Status,
		Publish:  post.Publish,
	}
	if withBody {
		v.Body = post.Body
	}
	for _, tag := range post.Tags {
		v.Tags = append(v.Tags, tag.Slug)
	}
	return v
}

// commentView is the comment payload
type commentView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// postList handles GET /api/posts, optionally filtered by ?tag=
func (r *Router) postList(c *gin.Context) {
	limit, offset := pageParams(c, 10)
	posts, err := db.NewPostRepository(db.NewRepository(r.db)).
		ListPublished(c.Request.Context(), c.Query("tag"), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, toPostView(post, false))
	}
	c.JSON(http.StatusOK, gin.H{"posts": views})
}

// postSearch handles GET /api/posts/search?q=
func (r *Router) postSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"query": "", "posts": []postView{}})
		return
	}

	limit, _ := pageParams(c, 20)
	posts, err := db.NewPostRepository(db.NewRepository(r.db)).
		Search(c.Request.Context(), query, limit)
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, toPostView(post, false))
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "posts": views})
}

// postDetail handles GET /api/posts/:slug. The payload bundles the
// post body, its active comments, and posts sharing the most tags.
func (r *Router) postDetail(c *gin.Context) {
	ctx := c.Request.Context()
	posts := db.NewPostRepository(db.NewRepository(r.db))

	post, err := posts.GetPublishedBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	if post == nil {
		fail(c, social.ErrNotFound)
		return
	}

	comments, err := db.NewCommentRepository(db.NewRepository(r.db)).
		ListActiveByPost(ctx, post.ID)
	if err != nil {
		fail(c, err)
		return
	}
	similar, err := posts.SimilarTo(ctx, post, 4)
	if err != nil {
		fail(c, err)
		return
	}

	commentViews := make([]commentView, 0, len(comments))
	for _, cm := range comments {
		commentViews = append(commentViews, commentView{
			ID:        cm.ID,
			Name:      cm.Name,
			Body:      cm.Body,
			CreatedAt: cm.CreatedAt,
		})
	}
	similarViews := make([]postView, 0, len(similar))
	for _, p := range similar {
		similarViews = append(similarViews, toPostView(p, false))
	}

	c.JSON(http.StatusOK, gin.H{
		"post":          toPostView(post, true),
		"comments":      commentViews,
		"similar_posts": similarViews,
	})
}

// postCreate handles POST /api/posts
func (r *Router) postCreate(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var in blog.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot parse request"})
		return
	}

	post, err := r.blog.Create(c.Request.Context(), userID, in)
	if err != nil {
		if !errors.Is(err, social.ErrValidation) {
			r.logger.Error("post create failed", zap.Error(err))
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": toPostView(post, true)})
}

// postPublish handles POST /api/posts/:slug/publish
func (r *Router) postPublish(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	post, err := r.blog.Publish(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": toPostView(post, false)})
}

// postComment handles POST /api/posts/:slug/comments. Comments are open
// to unauthenticated readers.
func (r *Router) postComment(c *gin.Context) {
	var in blog.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot parse request"})
		return
	}

	comment, err := r.blog.AddComment(c.Request.Context(), c.Param("slug"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": commentView{
		ID:        comment.ID,
		Name:      comment.Name,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}})
}

// postShare handles POST /api/posts/:slug/share
func (r *Router) postShare(c *gin.Context) {
	var in blog.ShareInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot parse request"})
		return
	}

	if err := r.blog.Share(c.Request.Context(), c.Param("slug"), in); err != nil {
		if !errors.Is(err, social.ErrNotFound) && !errors.Is(err, social.ErrValidation) {
			r.logger.Error("post share failed", zap.Error(err))
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sent": true})
}
