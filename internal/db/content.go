package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/models"
)

// ImageRepository provides image-related database operations
type ImageRepository struct {
	*Repository
}

// NewImageRepository creates a new image repository
func NewImageRepository(repo *Repository) *ImageRepository {
	return &ImageRepository{Repository: repo}
}

// GetByID retrieves an image by ID
func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// GetByIDs retrieves images by ids, preserving no particular order
func (r *ImageRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Image, error) {
	if len(ids) == 0 {
		return []*models.Image{}, nil
	}
	var images []*models.Image
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// List retrieves images newest first
func (r *ImageRepository) List(ctx context.Context, limit, offset int) ([]*models.Image, error) {
	var images []*models.Image
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Create creates a new image
func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// LikeCount returns the cardinality of an image's like-set
func (r *ImageRepository) LikeCount(ctx context.Context, imageID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ImageLike{}).
		Where("image_id = ?", imageID).
		Count(&count).Error
	return count, err
}

// PostRepository provides blog-post database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID regardless of status
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug retrieves a post by slug regardless of status
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetPublishedBySlug retrieves a published post by slug, with tags preloaded
func (r *PostRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("slug = ? AND status = ?", slug, models.PostStatusPublished).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// ListPublished retrieves published posts newest first, optionally filtered
// by tag slug
func (r *PostRepository) ListPublished(ctx context.Context, tagSlug string, limit, offset int) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).
		Preload("Tags").
		Where("bkm_posts.status = ?", models.PostStatusPublished)
	if tagSlug != "" {
		q = q.Joins("JOIN bkm_posts_tags ON bkm_posts_tags.post_id = bkm_posts.id").
			Joins("JOIN bkm_tags ON bkm_tags.id = bkm_posts_tags.tag_id").
			Where("bkm_tags.slug = ?", tagSlug)
	}
	var posts []*models.Post
	if err := q.Order("bkm_posts.publish DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Search retrieves published posts whose title or body matches the query,
// case-insensitively, newest first
func (r *PostRepository) Search(ctx context.Context, query string, limit int) ([]*models.Post, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.PostStatusPublished).
		Where("LOWER(title) LIKE ? OR LOWER(body) LIKE ?", pattern, pattern).
		Order("publish DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// SimilarTo retrieves published posts sharing the most tags with the given
// post, most-shared first then newest first
func (r *PostRepository) SimilarTo(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error) {
	if len(post.Tags) == 0 {
		return []*models.Post{}, nil
	}
	tagIDs := make([]int64, 0, len(post.Tags))
	for _, t := range post.Tags {
		tagIDs = append(tagIDs, t.ID)
	}
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("bkm_posts.*, COUNT(bkm_posts_tags.tag_id) AS same_tags").
		Joins("JOIN bkm_posts_tags ON bkm_posts_tags.post_id = bkm_posts.id").
		Where("bkm_posts_tags.tag_id IN ?", tagIDs).
		Where("bkm_posts.id <> ?", post.ID).
		Where("bkm_posts.status = ?", models.PostStatusPublished).
		Group("bkm_posts.id").
		Order("same_tags DESC, publish DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update updates a post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// CommentRepository provides comment database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListActiveByPost retrieves a post's active comments oldest first
func (r *CommentRepository) ListActiveByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND active = ?", postID, true).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
