package dto

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// PostRequest payload for creating or updating a post. Published is a
// pointer so an update without the field leaves the flag untouched.
type PostRequest struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Excerpt   *string `json:"excerpt"`
	ImageURL  *string `json:"imageUrl"`
	Published *bool   `json:"published"`
}

// PostResponse is the public view of a post.
type PostResponse struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Excerpt        *string   `json:"excerpt"`
	ImageURL       *string   `json:"image_url"`
	Published      bool      `json:"published"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileResponse bundles a user with all their posts.
type ProfileResponse struct {
	User  UserResponse   `json:"user"`
	Posts []PostResponse `json:"posts"`
}

// NewPostResponse maps a domain post.
func NewPostResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ID:             post.ID,
		OwnerID:        post.OwnerID,
		Title:          post.Title,
		Content:        post.Content,
		Excerpt:        post.Excerpt,
		ImageURL:       post.ImageURL,
		Published:      post.Published,
		AuthorUsername: post.AuthorUsername,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}
}

// NewPostResponses maps a slice of domain posts.
func NewPostResponses(posts []domain.Post) []PostResponse {
	items := make([]PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, NewPostResponse(&posts[i]))
	}
	return items
}
