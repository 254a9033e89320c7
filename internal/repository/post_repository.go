package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/blog-service/internal/domain"
)

// PostRepository encapsulates post persistence. Reads join the author's
// username; absent rows surface as pgx.ErrNoRows.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	ListPublished(ctx context.Context) ([]domain.Post, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error)
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository instantiates repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (user_id, title, content, excerpt, image_url, published)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		post.OwnerID,
		post.Title,
		post.Content,
		post.Excerpt,
		post.ImageURL,
		post.Published,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	const query = `
        UPDATE posts SET title=$1, content=$2, excerpt=$3, image_url=$4, published=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		post.Title,
		post.Content,
		post.Excerpt,
		post.ImageURL,
		post.Published,
		post.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	const query = `
        SELECT p.id, p.user_id, p.title, p.content, p.excerpt, p.image_url, p.published,
               p.created_at, p.updated_at, u.username
        FROM posts AS p
        JOIN users AS u ON p.user_id = u.id
        WHERE p.id=$1`

	var post domain.Post
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.OwnerID,
		&post.Title,
		&post.Content,
		&post.Excerpt,
		&post.ImageURL,
		&post.Published,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.AuthorUsername,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context) ([]domain.Post, error) {
	const query = `
        SELECT p.id, p.user_id, p.title, p.content, p.excerpt, p.image_url, p.published,
               p.created_at, p.updated_at, u.username
        FROM posts AS p
        JOIN users AS u ON p.user_id = u.id
        WHERE p.published = TRUE
        ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error) {
	const query = `
        SELECT p.id, p.user_id, p.title, p.content, p.excerpt, p.image_url, p.published,
               p.created_at, p.updated_at, u.username
        FROM posts AS p
        JOIN users AS u ON p.user_id = u.id
        WHERE p.user_id=$1
        ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func scanPosts(rows pgx.Rows) ([]domain.Post, error) {
	var result []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.OwnerID,
			&post.Title,
			&post.Content,
			&post.Excerpt,
			&post.ImageURL,
			&post.Published,
			&post.CreatedAt,
			&post.UpdatedAt,
			&post.AuthorUsername,
		); err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, rows.Err()
}
