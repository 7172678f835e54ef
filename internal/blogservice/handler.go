package blogservice

import (
	"context"
	"database/sql"

	"github.com/mikotobay/inkwell/internal/common"
)

func NewBlogService(db *sql.DB, c *common.Cache) *BlogService {
	return &BlogService{m: newBlogModel(db), c: c}
}

type CreatePostRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Status     Status   `json:"status"`
	CategoryID *int     `json:"category_id"`
	Tags       []string `json:"tags"`
	UserID     int      `json:"user_id"`
}

// CreatePost creates a new post. The author ID must be provided.
func (s *BlogService) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateStatus(v, req.Status)
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post := &Post{
		Title:   req.Title,
		Content: sanitizeMarkdown(req.Content),
		Status:  req.Status,
		UserID:  req.UserID,
	}
	if req.CategoryID != nil {
		post.Category = &Category{ID: *req.CategoryID}
	}

	err := s.m.insert(ctx, post, req.Tags)
	if err != nil {
		return nil, err
	}

	return post, nil
}

// GetPost returns a post by its ID. When countView is set the post's view
// counter is incremented atomically and the returned post carries the new
// value.
func (s *BlogService) GetPost(ctx context.Context, id int, countView bool) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post, err := s.m.getPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if countView {
		post.ViewCount, err = s.m.incrementViewCount(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return post, nil
}

type UpdatePostRequest struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Status     Status   `json:"status"`
	CategoryID *int     `json:"category_id"`
	Tags       []string `json:"tags"`
	UserID     int      `json:"user_id"`
	Version    int      `json:"version"`
}

// UpdatePost updates a post. Only the author can update it.
func (s *BlogService) UpdatePost(ctx context.Context, req *UpdatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateStatus(v, req.Status)
	validateInt(v, req.ID, "id")
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post := &Post{
		ID:      req.ID,
		Title:   req.Title,
		Content: sanitizeMarkdown(req.Content),
		Status:  req.Status,
		UserID:  req.UserID,
		Version: req.Version,
	}
	if req.CategoryID != nil {
		post.Category = &Category{ID: *req.CategoryID}
	}

	err := s.m.updatePost(ctx, post, req.Tags)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeySimilarPosts(post.ID, similarPostsLimit))

	return post, nil
}

// DeletePost deletes a post. Only the author can delete it.
func (s *BlogService) DeletePost(ctx context.Context, postID, userID int) error {
	v := common.NewValidator()
	validateInt(v, postID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	err := s.m.deletePost(ctx, postID, userID)
	if err != nil {
		return err
	}

	s.c.Delete(common.CacheKeySimilarPosts(postID, similarPostsLimit))

	return nil
}

// GetPosts returns published posts matching the filters. Default limit is 10
// and default offset is 0.
func (s *BlogService) GetPosts(ctx context.Context, f Filters, limit, offset *int) ([]Post, error) {
	if limit == nil || *limit < 1 {
		limit = new(int)
		*limit = 10
	}

	if offset == nil || *offset < 0 {
		offset = new(int)
	}

	return s.m.getPosts(ctx, f, *limit, *offset)
}

// GetDrafts returns the author's unpublished posts.
func (s *BlogService) GetDrafts(ctx context.Context, userID int) ([]Post, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getDraftsByUserID(ctx, userID)
}

// GetPostsByUserID returns all published posts by a user.
func (s *BlogService) GetPostsByUserID(ctx context.Context, userID int) ([]Post, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getPostsByUserID(ctx, userID)
}

const similarPostsLimit = 3

// SimilarPosts returns up to limit published posts related to the given one,
// never including the post itself or drafts. Results are cached briefly since
// the derivation runs two queries.
func (s *BlogService) SimilarPosts(ctx context.Context, postID int, limit int) ([]Post, error) {
	v := common.NewValidator()
	validateInt(v, postID, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if limit < 1 {
		limit = similarPostsLimit
	}

	key := common.CacheKeySimilarPosts(postID, limit)
	if cached, ok := s.c.Get(key); ok {
		return cached.([]Post), nil
	}

	post, err := s.m.getPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	posts, err := s.m.similarPosts(ctx, post, limit)
	if err != nil {
		return nil, err
	}

	s.c.Set(key, posts)

	return posts, nil
}

// GetCategories returns all categories, cached.
func (s *BlogService) GetCategories(ctx context.Context) ([]Category, error) {
	key := common.CacheKeyCategories()
	if cached, ok := s.c.Get(key); ok {
		return cached.([]Category), nil
	}

	categories, err := s.m.getCategories(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(key, categories)

	return categories, nil
}

// CreateTag creates a tag with get-or-create semantics. The name is
// normalized to lowercase.
func (s *BlogService) CreateTag(ctx context.Context, name string) (*Tag, error) {
	v := common.NewValidator()
	validateTagName(v, name)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.createTag(ctx, name)
}
