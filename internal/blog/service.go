package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/badoux/checkmail"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/mail"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/internal/social"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
	"github.com/bookmarkd/bookmarkd/pkg/slug"
	"github.com/bookmarkd/bookmarkd/pkg/telemetry"
)

// Service implements blog posts, comments, and sharing
type Service struct {
	db       *gorm.DB
	activity *social.Activity
	mailer   mail.Mailer
	logger   *zap.Logger
}

// NewService creates a new blog service
func NewService(gdb *gorm.DB, activity *social.Activity, mailer mail.Mailer) *Service {
	return &Service{
		db:       gdb,
		activity: activity,
		mailer:   mailer,
		logger:   logging.WithComponent("blog"),
	}
}

// CreateInput is the post creation payload
type CreateInput struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags"`
	Publish bool     `json:"publish"`
}

// Create stores a new post, as a draft or directly published. Publishing
// logs a "publishes a post" action in the same transaction.
func (s *Service) Create(ctx context.Context, authorID int64, in CreateInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.create")
	defer span.End()

	if in.Title == "" || in.Body == "" {
		return nil, fmt.Errorf("%w: title and body are required", social.ErrValidation)
	}

	now := time.Now().UTC()
	post := &models.Post{
		AuthorID:  authorID,
		Title:     in.Title,
		Slug:      s.uniqueSlug(ctx, slug.Make(in.Title)),
		Body:      in.Body,
		Status:    models.PostStatusDraft,
		Publish:   now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Publish {
		post.Status = models.PostStatusPublished
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		for _, name := range in.Tags {
			tagSlug := slug.Make(name)
			if tagSlug == "" {
				continue
			}
			tag := &models.Tag{Name: name, Slug: tagSlug}
			if err := tx.Where("slug = ?", tagSlug).FirstOrCreate(tag).Error; err != nil {
				return fmt.Errorf("failed to resolve tag %q: %w", name, err)
			}
			if err := tx.Create(&models.PostTag{PostID: post.ID, TagID: tag.ID}).Error; err != nil {
				return fmt.Errorf("failed to attach tag %q: %w", name, err)
			}
		}
		if in.Publish {
			target := &social.Target{Type: models.TargetTypePost, ID: post.ID}
			if _, err := s.activity.RecordUniqueTx(ctx, tx, authorID, models.VerbPublishes, target); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Publish moves an author's draft to published. The transition is one-way;
// publishing an already-published post is a no-op.
func (s *Service) Publish(ctx context.Context, authorID int64, postSlug string) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.publish")
	defer span.End()

	posts := db.NewPostRepository(db.NewRepository(s.db))
	post, err := posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if post == nil || post.AuthorID != authorID {
		return nil, social.ErrNotFound
	}
	if post.Status == models.PostStatusPublished {
		return post, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Model(post).
			Updates(map[string]interface{}{
				"status":     models.PostStatusPublished,
				"publish":    now,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to publish post: %w", err)
		}
		target := &social.Target{Type: models.TargetTypePost, ID: post.ID}
		if _, err := s.activity.RecordUniqueTx(ctx, tx, authorID, models.VerbPublishes, target); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.Status = models.PostStatusPublished
	return post, nil
}

// CommentInput is the comment payload
type CommentInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Body  string `json:"body"`
}

// AddComment attaches a comment to a published post
func (s *Service) AddComment(ctx context.Context, postSlug string, in CommentInput) (*models.Comment, error) {
	if in.Name == "" || in.Body == "" {
		return nil, fmt.Errorf("%w: name and body are required", social.ErrValidation)
	}
	if err := checkmail.ValidateFormat(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", social.ErrValidation)
	}

	posts := db.NewPostRepository(db.NewRepository(s.db))
	post, err := posts.GetPublishedBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, social.ErrNotFound
	}

	comment := &models.Comment{
		PostID:    post.ID,
		Name:      in.Name,
		Email:     in.Email,
		Body:      in.Body,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ShareInput is the share-by-email payload
type ShareInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	To       string `json:"to"`
	Comments string `json:"comments"`
}

// Share emails a published post to a recipient
func (s *Service) Share(ctx context.Context, postSlug string, in ShareInput) error {
	ctx, span := telemetry.StartSpan(ctx, "blog.share")
	defer span.End()

	if in.Name == "" {
		return fmt.Errorf("%w: name is required", social.ErrValidation)
	}
	if err := checkmail.ValidateFormat(in.Email); err != nil {
		return fmt.Errorf("%w: invalid sender email", social.ErrValidation)
	}
	if err := checkmail.ValidateFormat(in.To); err != nil {
		return fmt.Errorf("%w: invalid recipient email", social.ErrValidation)
	}

	posts := db.NewPostRepository(db.NewRepository(s.db))
	post, err := posts.GetPublishedBySlug(ctx, postSlug)
	if err != nil {
		return err
	}
	if post == nil {
		return social.ErrNotFound
	}

	subject := fmt.Sprintf("%s recommends you read %s", in.Name, post.Title)
	body := fmt.Sprintf("Read %s at /api/posts/%s\n\n%s's comments: %s",
		post.Title, post.Slug, in.Name, in.Comments)
	if err := s.mailer.Send(ctx, &mail.Message{
		To:      []string{in.To},
		Subject: subject,
		Body:    body,
	}); err != nil {
		return err
	}

	s.logger.Info("shared post",
		zap.String("slug", post.Slug),
		zap.String("to", in.To))
	return nil
}

// uniqueSlug appends a counter until the slug is free
func (s *Service) uniqueSlug(ctx context.Context, base string) string {
	if base == "" {
		base = "post"
	}
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Post{}).
			Where("slug = ?", candidate).
			Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
