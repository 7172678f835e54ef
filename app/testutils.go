package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/mikotobay/inkwell/internal/blogservice"
	"github.com/mikotobay/inkwell/internal/commentservice"
	"github.com/mikotobay/inkwell/internal/common"
	"github.com/mikotobay/inkwell/internal/mailservice"
	"github.com/mikotobay/inkwell/internal/notificationservice"
	"github.com/mikotobay/inkwell/internal/reactionservice"
	"github.com/mikotobay/inkwell/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	rabbitURI := common.TestRabbitMQ(t)
	rabbitmq, err := common.NewMessageBroker(rabbitURI)
	assert.NoError(t, err)

	err = common.SetupUserExchange(rabbitmq)
	assert.NoError(t, err)

	cfg, err := loadConfig("../.test.env")
	assert.NoError(t, err)

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	emitter := notificationservice.NewEmitter(notificationservice.DefaultPolicy())

	app := &application{
		config:              cfg,
		logger:              logger,
		userService:         userservice.NewUserService(db, rabbitmq, emitter),
		blogService:         blogservice.NewBlogService(db, cache),
		commentService:      commentservice.NewCommentService(db, emitter),
		reactionService:     reactionservice.NewReactionService(db, emitter),
		notificationService: notificationservice.NewNotificationService(db),
		mailService:         mailservice.NewMailService(rabbitmq, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger),
		broker:              rabbitmq,
	}

	return app, db
}

func (ts *testServer) post(t *testing.T, path string, data any, token *string) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) put(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPut, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

// createTestUser inserts an activated user with the write permission and
// returns the user ID and a valid access token.
func createTestUser(t *testing.T, app *application, db *sql.DB, username, email string) (int, string) {
	password := "Test_1234!"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	assert.NoError(t, err)

	var userID int
	err = db.QueryRow("INSERT INTO users (username, email, password, activated) VALUES ($1, $2, $3, true) RETURNING id", username, email, hash).Scan(&userID)
	assert.NoError(t, err)

	_, err = db.Exec("INSERT INTO profiles (user_id) VALUES ($1)", userID)
	assert.NoError(t, err)

	_, err = db.Exec("INSERT INTO user_permissions (user_id, permission) VALUES ($1, $2)", userID, userservice.PermissionWritePost)
	assert.NoError(t, err)

	token, err := app.userService.LoginUser(context.Background(), username, password)
	assert.NoError(t, err)

	return userID, token.AccessTokenPlain
}
