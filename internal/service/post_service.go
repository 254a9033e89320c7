package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// PostCache is the published-listing cache consumed by the service. A nil
// result from GetPublished means a miss.
type PostCache interface {
	GetPublished(ctx context.Context) ([]domain.Post, error)
	SetPublished(ctx context.Context, list []domain.Post) error
	Invalidate(ctx context.Context) error
}

// PostService coordinates policy-gated post workflows.
type PostService struct {
	posts      repository.PostRepository
	users      repository.UserRepository
	cache      PostCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PostDependencies bundles requirements for the post service.
type PostDependencies struct {
	PostRepo   repository.PostRepository
	UserRepo   repository.UserRepository
	Cache      PostCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// PostInput describes post create/update payloads.
type PostInput struct {
	Title     string
	Content   string
	Excerpt   *string
	ImageURL  *string
	Published *bool
}

// NewPostService constructs the service.
func NewPostService(deps PostDependencies) *PostService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := deps.Cache
	if c == nil {
		c = noopCache{}
	}
	return &PostService{
		posts:      deps.PostRepo,
		users:      deps.UserRepo,
		cache:      c,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create stores a new post owned by the caller. Published defaults to false.
func (s *PostService) Create(ctx context.Context, identity *domain.Identity, input PostInput) (*domain.Post, error) {
	if err := auth.CanCreatePost(identity); err != nil {
		return nil, err
	}

	post := &domain.Post{
		OwnerID:  identity.ID,
		Title:    input.Title,
		Content:  input.Content,
		Excerpt:  input.Excerpt,
		ImageURL: input.ImageURL,
	}
	if input.Published != nil {
		post.Published = *input.Published
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperrors.MapError(err)
	}
	post.AuthorUsername = identity.Username

	s.invalidateCache(ctx)
	s.publish(ctx, events.EventPostCreated, post.ID, identity.ID,
		events.PostCreatedPayload{Title: post.Title, Published: post.Published})
	if post.Published {
		s.publish(ctx, events.EventPostPublished, post.ID, identity.ID,
			events.PostPublishedPayload{Title: post.Title})
	}
	return post, nil
}

// ListPublished returns published posts, newest first. Identity is
// irrelevant, which is what makes the shared cache safe.
func (s *PostService) ListPublished(ctx context.Context) ([]domain.Post, error) {
	if cached, err := s.cache.GetPublished(ctx); err != nil {
		s.logger.Warn("post cache read failed", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	posts, err := s.posts.ListPublished(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	if err := s.cache.SetPublished(ctx, posts); err != nil {
		s.logger.Warn("post cache write failed", zap.Error(err))
	}
	return posts, nil
}

// Get returns a single post if the caller may read it.
func (s *PostService) Get(ctx context.Context, identity *domain.Identity, id int64) (*domain.Post, error) {
	post, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanReadPost(identity, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update rewrites an existing post the caller owns. Published toggles only
// when the input carries the field.
func (s *PostService) Update(ctx context.Context, identity *domain.Identity, id int64, input PostInput) (*domain.Post, error) {
	post, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanModifyPost(identity, post); err != nil {
		return nil, err
	}

	wasPublished := post.Published
	post.Title = input.Title
	post.Content = input.Content
	post.Excerpt = input.Excerpt
	post.ImageURL = input.ImageURL
	if input.Published != nil {
		post.Published = *input.Published
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, apperrors.MapError(err)
	}
	post.UpdatedAt = time.Now()

	s.invalidateCache(ctx)
	s.publish(ctx, events.EventPostUpdated, post.ID, identity.ID,
		events.PostUpdatedPayload{Title: post.Title, Published: post.Published})
	if !wasPublished && post.Published {
		s.publish(ctx, events.EventPostPublished, post.ID, identity.ID,
			events.PostPublishedPayload{Title: post.Title})
	}
	return post, nil
}

// Delete removes a post the caller owns.
func (s *PostService) Delete(ctx context.Context, identity *domain.Identity, id int64) error {
	post, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanModifyPost(identity, post); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("post", nil)
		}
		return apperrors.MapError(err)
	}

	s.invalidateCache(ctx)
	s.publish(ctx, events.EventPostDeleted, post.ID, identity.ID,
		events.PostDeletedPayload{Title: post.Title})
	return nil
}

// Profile returns the caller's own user record and all their posts, drafts
// included. The route's path parameter never reaches this method.
func (s *PostService) Profile(ctx context.Context, identity *domain.Identity) (*domain.User, []domain.Post, error) {
	if identity == nil {
		return nil, nil, apperrors.NewUnauthorized("no token")
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("profile", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}

	posts, err := s.posts.ListByOwner(ctx, identity.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return user, posts, nil
}

// fetch loads a post, mapping absence to the policy's nil-post NotFound verdict.
func (s *PostService) fetch(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return post, nil
}

type noopCache struct{}

func (noopCache) GetPublished(context.Context) ([]domain.Post, error) { return nil, nil }
func (noopCache) SetPublished(context.Context, []domain.Post) error   { return nil }
func (noopCache) Invalidate(context.Context) error                    { return nil }

func (s *PostService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("post cache invalidation failed", zap.Error(err))
	}
}

func (s *PostService) publish(ctx context.Context, eventType events.EventType, postID, actorID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		PostID:    postID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
