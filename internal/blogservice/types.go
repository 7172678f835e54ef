package blogservice

import (
	"database/sql"
	"time"

	"github.com/mikotobay/inkwell/internal/common"
	"github.com/mikotobay/inkwell/internal/userservice"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Post struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Content is stored in Markdown format.
	Content   string           `json:"content"`
	Status    Status           `json:"status"`
	User      userservice.User `json:"user"`
	UserID    int              `json:"user_id"`
	Category  *Category        `json:"category,omitempty"`
	Tags      []Tag            `json:"tags,omitempty"`
	ViewCount int              `json:"view_count"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Version   int              `json:"version"`

	// Likes, Dislikes and Comments are live cardinalities, computed per read.
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
	Comments int `json:"comments"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Filters narrows the published post listing. Zero values mean no filtering.
type Filters struct {
	Query    string
	Category string
	Tag      string
	// SortByViews orders by view count instead of recency.
	SortByViews bool
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m *BlogModel
	c *common.Cache
}
