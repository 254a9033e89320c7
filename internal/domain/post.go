package domain

import "time"

// Post is the aggregate for blog entries. OwnerID is set at creation and
// never changes afterwards; Published toggles only through an explicit update.
type Post struct {
	ID             int64
	OwnerID        int64
	Title          string
	Content        string
	Excerpt        *string
	ImageURL       *string
	Published      bool
	AuthorUsername string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
