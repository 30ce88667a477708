package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/account"
	"github.com/bookmarkd/bookmarkd/internal/auth"
	"github.com/bookmarkd/bookmarkd/internal/blog"
	"github.com/bookmarkd/bookmarkd/internal/cache"
	"github.com/bookmarkd/bookmarkd/internal/images"
	"github.com/bookmarkd/bookmarkd/internal/mail"
	"github.com/bookmarkd/bookmarkd/internal/social"
	"github.com/bookmarkd/bookmarkd/pkg/config"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
)

// Router wires services to routes
type Router struct {
	db     *gorm.DB
	cache  *cache.Cache
	tokens *auth.TokenManager

	accounts      *account.Service
	authenticator *auth.Authenticator
	graph         *social.Graph
	activity      *social.Activity
	likes         *social.Likes
	images        *images.Service
	blog          *blog.Service

	logger *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(gdb *gorm.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	activity := social.NewActivity(gdb)
	fetcher := images.NewFetcher(&cfg.Images)
	mailer := mail.New(&cfg.Mail)

	return &Router{
		db:            gdb,
		cache:         redisCache,
		tokens:        auth.NewTokenManager(&cfg.Auth),
		accounts:      account.NewService(gdb, activity),
		authenticator: auth.NewAuthenticator(gdb),
		graph:         social.NewGraph(gdb),
		activity:      activity,
		likes:         social.NewLikes(gdb),
		images:        images.NewService(gdb, fetcher, activity),
		blog:          blog.NewService(gdb, activity, mailer),
		logger:        logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	open := engine.Group("/api")
	open.POST("/register", r.register)
	open.POST("/login", r.login)
	open.GET("/posts", r.postList)
	open.GET("/posts/search", r.postSearch)
	open.GET("/posts/:slug", r.postDetail)
	open.POST("/posts/:slug/comments", r.postComment)
	open.POST("/posts/:slug/share", r.postShare)

	authed := engine.Group("/api")
	authed.Use(auth.Middleware(r.tokens, r.db))
	authed.GET("/users", r.userList)
	authed.GET("/users/:username", r.userDetail)
	authed.GET("/users/:username/followers", r.userFollowers)
	authed.GET("/users/:username/following", r.userFollowing)
	authed.POST("/users/follow", r.userFollow)
	authed.PUT("/profile", r.profileEdit)
	authed.GET("/feed", r.followedFeed)
	authed.GET("/feed/global", r.globalFeed)
	authed.GET("/images", r.imageList)
	authed.POST("/images", r.imageCreate)
	authed.GET("/images/ranking", r.imageRanking)
	authed.GET("/images/:id", r.imageDetail)
	authed.POST("/images/like", r.imageLike)
	authed.POST("/posts", r.postCreate)
	authed.POST("/posts/:slug/publish", r.postPublish)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "bookmarkd-api",
	})
}
