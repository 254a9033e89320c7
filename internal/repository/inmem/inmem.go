// Package inmem provides in-memory repository implementations honoring the
// pgx.ErrNoRows contract for absent rows. They back the service and handler
// tests so both suites exercise the same store semantics.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
)

var (
	_ repository.UserRepository = (*UserRepo)(nil)
	_ repository.PostRepository = (*PostRepo)(nil)
)

// UserRepo is a mutex-guarded map standing in for the users table.
type UserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

// NewUserRepo returns an empty user store.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[int64]domain.User)}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Delete drops a user, for tests simulating a vanished account.
func (r *UserRepo) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// PostRepo is a mutex-guarded map standing in for the posts table. Reads
// join the author's username through the user store, matching the SQL
// implementation.
type PostRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]domain.Post
	users  *UserRepo
}

// NewPostRepo returns an empty post store joined against users.
func NewPostRepo(users *UserRepo) *PostRepo {
	return &PostRepo{posts: make(map[int64]domain.Post), users: users}
}

func (r *PostRepo) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = *post
	return nil
}

func (r *PostRepo) Update(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[post.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.Excerpt = post.Excerpt
	stored.ImageURL = post.ImageURL
	stored.Published = post.Published
	stored.UpdatedAt = time.Now()
	r.posts[post.ID] = stored
	return nil
}

func (r *PostRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	r.mu.Lock()
	post, ok := r.posts[id]
	r.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	r.joinAuthor(ctx, &post)
	return &post, nil
}

func (r *PostRepo) ListPublished(ctx context.Context) ([]domain.Post, error) {
	return r.list(ctx, func(p domain.Post) bool { return p.Published })
}

func (r *PostRepo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error) {
	return r.list(ctx, func(p domain.Post) bool { return p.OwnerID == ownerID })
}

func (r *PostRepo) list(ctx context.Context, match func(domain.Post) bool) ([]domain.Post, error) {
	r.mu.Lock()
	var result []domain.Post
	for _, post := range r.posts {
		if match(post) {
			result = append(result, post)
		}
	}
	r.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	for i := range result {
		r.joinAuthor(ctx, &result[i])
	}
	return result, nil
}

func (r *PostRepo) joinAuthor(ctx context.Context, post *domain.Post) {
	if r.users == nil {
		return
	}
	if user, err := r.users.GetByID(ctx, post.OwnerID); err == nil {
		post.AuthorUsername = user.Username
	}
}
