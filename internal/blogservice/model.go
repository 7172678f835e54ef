package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrUserForeignKey   = errors.New("user_id does not exist")
	ErrCategoryNotFound = errors.New("category does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// insert creates the post and its tag memberships in one transaction. Tag
// names are normalized to lowercase and created on first use.
func (m *BlogModel) insert(ctx context.Context, post *Post, tagNames []string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (title, content, status, user_id, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, view_count, created_at, updated_at, version`

	var categoryID any
	if post.Category != nil {
		categoryID = post.Category.ID
	}

	err = tx.QueryRowContext(ctx, query, post.Title, post.Content, post.Status, post.UserID, categoryID).Scan(&post.ID, &post.ViewCount, &post.CreatedAt, &post.UpdatedAt, &post.Version)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case ForeignKeyError(err, "posts_user_id_fkey"):
			return ErrUserForeignKey
		case ForeignKeyError(err, "posts_category_id_fkey"):
			return ErrCategoryNotFound
		default:
			return err
		}
	}

	post.Tags, err = m.setTags(tx, ctx, post.ID, tagNames)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// setTags replaces the post's tag memberships with the given names.
func (m *BlogModel) setTags(tx *sql.Tx, ctx context.Context, postID int, tagNames []string) ([]Tag, error) {
	_, err := tx.ExecContext(ctx, "DELETE FROM post_tags WHERE post_id = $1", postID)
	if err != nil {
		return nil, err
	}

	var tags []Tag
	seen := make(map[string]bool)

	for _, name := range tagNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := getOrCreateTag(tx, ctx, name)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, "INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)", postID, tag.ID)
		if err != nil {
			return nil, err
		}

		tags = append(tags, *tag)
	}

	return tags, nil
}

func getOrCreateTag(tx *sql.Tx, ctx context.Context, name string) (*Tag, error) {
	query := `
		INSERT INTO tags (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	var tag Tag
	err := tx.QueryRowContext(ctx, query, name).Scan(&tag.ID, &tag.Name)
	if err != nil {
		return nil, err
	}

	return &tag, nil
}

// getPostByID is a method to get a post by its ID joining the users table to
// get the author's name. Counts are computed live from the association tables.
func (m *BlogModel) getPostByID(ctx context.Context, id int) (*Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.status, p.user_id, p.view_count, p.created_at, p.updated_at, p.version,
			u.username, c.id, c.name,
			(SELECT count(*) FROM post_likes WHERE post_id = p.id),
			(SELECT count(*) FROM post_dislikes WHERE post_id = p.id),
			(SELECT count(*) FROM comments WHERE post_id = p.id)
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`

	row := m.db.QueryRowContext(ctx, query, id)

	var post Post
	var categoryID sql.NullInt64
	var categoryName sql.NullString

	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.Status, &post.UserID, &post.ViewCount, &post.CreatedAt, &post.UpdatedAt, &post.Version, &post.User.Username, &categoryID, &categoryName, &post.Likes, &post.Dislikes, &post.Comments)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	post.User.ID = post.UserID

	if categoryID.Valid {
		post.Category = &Category{ID: int(categoryID.Int64), Name: categoryName.String}
	}

	post.Tags, err = m.getPostTags(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	return &post, nil
}

func (m *BlogModel) getPostTags(ctx context.Context, postID int) ([]Tag, error) {
	query := `
		SELECT t.id, t.name
		FROM post_tags pt
		JOIN tags t ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		err := rows.Scan(&tag.ID, &tag.Name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

func (m *BlogModel) updatePost(ctx context.Context, post *Post, tagNames []string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query := `
		UPDATE posts
		SET title = $1, content = $2, status = $3, category_id = $4, updated_at = now(), version = version + 1
		WHERE id = $5 AND version = $6 AND user_id = $7
		RETURNING version, created_at, updated_at`

	var categoryID any
	if post.Category != nil {
		categoryID = post.Category.ID
	}

	err = tx.QueryRowContext(ctx, query, post.Title, post.Content, post.Status, categoryID, post.ID, post.Version, post.UserID).Scan(&post.Version, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		case ForeignKeyError(err, "posts_category_id_fkey"):
			return ErrCategoryNotFound
		default:
			return err
		}
	}

	post.Tags, err = m.setTags(tx, ctx, post.ID, tagNames)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (m *BlogModel) deletePost(ctx context.Context, postID, userID int) error {
	query := `
		DELETE FROM posts
		WHERE id = $1 AND user_id = $2`

	res, err := m.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// incrementViewCount is a single atomic increment, not a read-modify-write.
func (m *BlogModel) incrementViewCount(ctx context.Context, postID int) (int, error) {
	query := `
		UPDATE posts
		SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count`

	var count int
	err := m.db.QueryRowContext(ctx, query, postID).Scan(&count)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, ErrRecordNotFound
		default:
			return 0, err
		}
	}

	return count, nil
}

// getPosts returns published posts narrowed by the filters, paginated.
func (m *BlogModel) getPosts(ctx context.Context, f Filters, limit, offset int) ([]Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.status, p.user_id, p.view_count, p.created_at, p.updated_at, p.version, u.username
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.status = 'published'`

	args := []any{}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := fmt.Sprintf("$%d", len(args))
		query += fmt.Sprintf(" AND (p.title ILIKE %s OR p.content ILIKE %s)", n, n)
	}

	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND p.category_id = (SELECT id FROM categories WHERE name = $%d)", len(args))
	}

	if f.Tag != "" {
		args = append(args, strings.ToLower(f.Tag))
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON pt.tag_id = t.id WHERE pt.post_id = p.id AND t.name = $%d)", len(args))
	}

	if f.SortByViews {
		query += " ORDER BY p.view_count DESC, p.created_at DESC"
	} else {
		query += " ORDER BY p.created_at DESC"
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return m.scanPostList(ctx, query, args...)
}

func (m *BlogModel) getDraftsByUserID(ctx context.Context, userID int) ([]Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.status, p.user_id, p.view_count, p.created_at, p.updated_at, p.version, u.username
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.user_id = $1 AND p.status = 'draft'
		ORDER BY p.created_at DESC`

	return m.scanPostList(ctx, query, userID)
}

func (m *BlogModel) getPostsByUserID(ctx context.Context, userID int) ([]Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.status, p.user_id, p.view_count, p.created_at, p.updated_at, p.version, u.username
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.user_id = $1 AND p.status = 'published'
		ORDER BY p.created_at DESC`

	return m.scanPostList(ctx, query, userID)
}

// similarPosts narrows published posts by the subject's category when it has
// one, then by tag overlap when it has tags. The predicates stack, they are
// not a union.
func (m *BlogModel) similarPosts(ctx context.Context, post *Post, limit int) ([]Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.status, p.user_id, p.view_count, p.created_at, p.updated_at, p.version, u.username
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.status = 'published' AND p.id <> $1`

	args := []any{post.ID}

	if post.Category != nil {
		args = append(args, post.Category.ID)
		query += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}

	if len(post.Tags) > 0 {
		query += " AND EXISTS (SELECT 1 FROM post_tags pt1 JOIN post_tags pt2 ON pt1.tag_id = pt2.tag_id WHERE pt1.post_id = p.id AND pt2.post_id = $1)"
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d", len(args))

	return m.scanPostList(ctx, query, args...)
}

func (m *BlogModel) scanPostList(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.Status, &post.UserID, &post.ViewCount, &post.CreatedAt, &post.UpdatedAt, &post.Version, &post.User.Username)
		if err != nil {
			return nil, err
		}
		post.User.ID = post.UserID
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (m *BlogModel) getCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name
		FROM categories
		ORDER BY name`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		err := rows.Scan(&c.ID, &c.Name)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (m *BlogModel) createTag(ctx context.Context, name string) (*Tag, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	tag, err := getOrCreateTag(tx, ctx, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	return tag, tx.Commit()
}
