package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheckHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, body := ts.get(t, "/v1/healthcheck", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", body["status"])
}

func TestRegisterUserHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	tests := []struct {
		name           string
		payload        registerUserRequest
		expectedStatus int
	}{
		{
			name:           "Valid Registration",
			payload:        registerUserRequest{Username: "testuser", Email: "testuser@example.com", Password: "Test_1234!"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Duplicate Username",
			payload:        registerUserRequest{Username: "testuser", Email: "other@example.com", Password: "Test_1234!"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Invalid Email",
			payload:        registerUserRequest{Username: "testuser2", Email: "not-an-email", Password: "Test_1234!"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Weak Password",
			payload:        registerUserRequest{Username: "testuser3", Email: "testuser3@example.com", Password: "weak"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, _ := ts.post(t, "/v1/users/register", tt.payload, nil)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestFollowHandlers(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, aliceToken := createTestUser(t, app, db, "alice", "alice@example.com")
	_, _ = createTestUser(t, app, db, "bob", "bob@example.com")

	t.Run("Follow", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/follows/bob", nil, &aliceToken)

		assert.Equal(t, http.StatusOK, status)
		assert.NotNil(t, body["follow"])
	})

	t.Run("Follow Is Idempotent", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/follows/bob", nil, &aliceToken)
		assert.Equal(t, http.StatusOK, status)

		var count int
		err := db.QueryRow("SELECT count(*) FROM follows").Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Self Follow", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/follows/alice", nil, &aliceToken)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("Unknown User", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/follows/nobody", nil, &aliceToken)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/follows/bob", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Followers List", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/users/bob/followers", nil)

		assert.Equal(t, http.StatusOK, status)
		followers := body["followers"].([]any)
		assert.Len(t, followers, 1)
	})

	t.Run("Unfollow", func(t *testing.T) {
		status, _, _ := ts.delete(t, "/v1/follows/bob", &aliceToken)
		assert.Equal(t, http.StatusOK, status)

		var count int
		err := db.QueryRow("SELECT count(*) FROM follows").Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestPostHandlers(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, authorToken := createTestUser(t, app, db, "author", "author@example.com")
	_, readerToken := createTestUser(t, app, db, "reader", "reader@example.com")

	var postID float64

	t.Run("Create Post", func(t *testing.T) {
		payload := createPostRequest{
			Title:   "A First Post",
			Content: "Some interesting content about Go.",
			Status:  "published",
			Tags:    []string{"Go", "go", "testing"},
		}

		status, _, body := ts.post(t, "/v1/posts", payload, &authorToken)

		assert.Equal(t, http.StatusCreated, status)
		post := body["post"].(map[string]any)
		postID = post["id"].(float64)

		// Tags are lowercased and deduplicated.
		tags := post["tags"].([]any)
		assert.Len(t, tags, 2)
	})

	t.Run("Get Post Counts View", func(t *testing.T) {
		status, _, body := ts.get(t, fmt.Sprintf("/v1/posts/%d", int(postID)), nil)

		assert.Equal(t, http.StatusOK, status)
		post := body["post"].(map[string]any)
		assert.Equal(t, float64(1), post["view_count"])

		status, _, body = ts.get(t, fmt.Sprintf("/v1/posts/%d", int(postID)), nil)
		assert.Equal(t, http.StatusOK, status)
		post = body["post"].(map[string]any)
		assert.Equal(t, float64(2), post["view_count"])
	})

	t.Run("Create Draft Hidden From Others", func(t *testing.T) {
		payload := createPostRequest{
			Title:   "A Draft",
			Content: "Not ready yet.",
			Status:  "draft",
		}

		status, _, body := ts.post(t, "/v1/posts", payload, &authorToken)
		assert.Equal(t, http.StatusCreated, status)

		draft := body["post"].(map[string]any)
		draftID := int(draft["id"].(float64))

		status, _, _ = ts.get(t, fmt.Sprintf("/v1/posts/%d", draftID), &readerToken)
		assert.Equal(t, http.StatusNotFound, status)

		status, _, _ = ts.get(t, fmt.Sprintf("/v1/posts/%d", draftID), &authorToken)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("Update Post By Non Author", func(t *testing.T) {
		payload := updatePostRequest{Title: "Hijacked", Content: "x", Status: "published"}

		status, _, _ := ts.put(t, fmt.Sprintf("/v1/posts/%d", int(postID)), &readerToken, payload)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Update Post", func(t *testing.T) {
		payload := updatePostRequest{Title: "An Updated Post", Content: "Revised content.", Status: "published"}

		status, _, body := ts.put(t, fmt.Sprintf("/v1/posts/%d", int(postID)), &authorToken, payload)

		assert.Equal(t, http.StatusOK, status)
		post := body["post"].(map[string]any)
		assert.Equal(t, "An Updated Post", post["title"])
	})

	t.Run("Delete Post", func(t *testing.T) {
		status, _, _ := ts.delete(t, fmt.Sprintf("/v1/posts/%d", int(postID)), &authorToken)
		assert.Equal(t, http.StatusOK, status)

		status, _, _ = ts.get(t, fmt.Sprintf("/v1/posts/%d", int(postID)), nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestReactionAndNotificationFlow(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, authorToken := createTestUser(t, app, db, "author", "author@example.com")
	_, readerToken := createTestUser(t, app, db, "reader", "reader@example.com")

	payload := createPostRequest{Title: "A Post", Content: "Content.", Status: "published"}
	status, _, body := ts.post(t, "/v1/posts", payload, &authorToken)
	assert.Equal(t, http.StatusCreated, status)
	postID := int(body["post"].(map[string]any)["id"].(float64))

	t.Run("Like Post", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/like", postID), nil, &readerToken)

		assert.Equal(t, http.StatusOK, status)
		reaction := body["reaction"].(map[string]any)
		assert.True(t, reaction["is_liked"].(bool))
		assert.False(t, reaction["is_disliked"].(bool))
		assert.Equal(t, float64(1), reaction["like_count"])
		assert.Equal(t, float64(0), reaction["dislike_count"])
	})

	t.Run("Author Sees Notification", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/notifications", &authorToken)

		assert.Equal(t, http.StatusOK, status)
		notifications := body["notifications"].([]any)
		assert.Len(t, notifications, 1)

		n := notifications[0].(map[string]any)
		assert.Equal(t, "like_post", n["type"])
		assert.False(t, n["is_read"].(bool))
	})

	t.Run("Switch To Dislike", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/dislike", postID), nil, &readerToken)

		assert.Equal(t, http.StatusOK, status)
		reaction := body["reaction"].(map[string]any)
		assert.True(t, reaction["is_disliked"].(bool))
		assert.False(t, reaction["is_liked"].(bool))
		assert.Equal(t, float64(0), reaction["like_count"])
		assert.Equal(t, float64(1), reaction["dislike_count"])
	})

	t.Run("Retract Dislike", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/dislike", postID), nil, &readerToken)

		assert.Equal(t, http.StatusOK, status)
		reaction := body["reaction"].(map[string]any)
		assert.False(t, reaction["is_liked"].(bool))
		assert.False(t, reaction["is_disliked"].(bool))
		assert.Equal(t, float64(0), reaction["like_count"])
		assert.Equal(t, float64(0), reaction["dislike_count"])
	})

	t.Run("Unread Count And Mark Read", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/notifications/unread", &authorToken)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(1), body["unread"])

		status, _, body = ts.get(t, "/v1/notifications", &authorToken)
		assert.Equal(t, http.StatusOK, status)
		n := body["notifications"].([]any)[0].(map[string]any)
		id := int(n["id"].(float64))

		status, _, _ = ts.put(t, fmt.Sprintf("/v1/notifications/%d/read", id), &authorToken, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _, body = ts.get(t, "/v1/notifications/unread", &authorToken)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(0), body["unread"])
	})

	t.Run("Cannot Mark Another Users Notification", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/notifications", &authorToken)
		assert.Equal(t, http.StatusOK, status)
		n := body["notifications"].([]any)[0].(map[string]any)
		id := int(n["id"].(float64))

		status, _, _ = ts.put(t, fmt.Sprintf("/v1/notifications/%d/read", id), &readerToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestCommentHandlers(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, authorToken := createTestUser(t, app, db, "author", "author@example.com")
	_, commenterToken := createTestUser(t, app, db, "commenter", "commenter@example.com")

	payload := createPostRequest{Title: "A Post", Content: "Content.", Status: "published"}
	status, _, body := ts.post(t, "/v1/posts", payload, &authorToken)
	assert.Equal(t, http.StatusCreated, status)
	postID := int(body["post"].(map[string]any)["id"].(float64))

	var commentID int

	t.Run("Create Comment", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), createCommentRequest{Content: "Nice post!"}, &commenterToken)

		assert.Equal(t, http.StatusCreated, status)
		comment := body["comment"].(map[string]any)
		commentID = int(comment["id"].(float64))
	})

	t.Run("Create Reply", func(t *testing.T) {
		status, _, _ := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), createCommentRequest{Content: "Thanks!", ParentID: &commentID}, &authorToken)
		assert.Equal(t, http.StatusCreated, status)
	})

	t.Run("Thread", func(t *testing.T) {
		status, _, body := ts.get(t, fmt.Sprintf("/v1/posts/%d/comments", postID), nil)

		assert.Equal(t, http.StatusOK, status)
		comments := body["comments"].([]any)
		assert.Len(t, comments, 1)

		top := comments[0].(map[string]any)
		replies := top["replies"].([]any)
		assert.Len(t, replies, 1)
	})

	t.Run("Delete Comment By Non Author", func(t *testing.T) {
		status, _, _ := ts.delete(t, fmt.Sprintf("/v1/comments/%d", commentID), &authorToken)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Delete Comment", func(t *testing.T) {
		status, _, _ := ts.delete(t, fmt.Sprintf("/v1/comments/%d", commentID), &commenterToken)
		assert.Equal(t, http.StatusOK, status)
	})
}
