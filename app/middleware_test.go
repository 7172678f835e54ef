package main

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string {
	return &s
}

func TestRecoverPanic(t *testing.T) {
	app, _ := newTestApplication(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	middleware := app.recoverPanic(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestAuthenticate(t *testing.T) {
	app, db := newTestApplication(t)

	tests := []struct {
		name           string
		authHeader     func(db *sql.DB) *string
		expectedStatus int
	}{
		{
			name:           "No Authentication Header",
			authHeader:     func(db *sql.DB) *string { return nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Malformed Authentication Header",
			authHeader:     func(db *sql.DB) *string { return strptr("not-a-bearer-token") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown Token",
			authHeader:     func(db *sql.DB) *string { return strptr("Bearer WMYZPP2PD5WNQGKVNFPEIB3E24") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Valid Authentication Header",
			authHeader: func(db *sql.DB) *string {
				_, token := createTestUser(t, app, db, "authuser", "authuser@example.com")
				return strptr("Bearer " + token)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			middleware := app.authenticate(handler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header := tt.authHeader(db); header != nil {
				req.Header.Set("Authorization", *header)
			}

			res := httptest.NewRecorder()
			middleware.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
			assert.Equal(t, "Authorization", res.Header().Get("Vary"))
		})
	}
}

func TestRequireActivatedUser(t *testing.T) {
	app, db := newTestApplication(t)

	handler := app.requireActivatedUser(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Anonymous User", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := httptest.NewRecorder()

		app.authenticate(handler).ServeHTTP(res, req)

		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("Activated User", func(t *testing.T) {
		_, token := createTestUser(t, app, db, "activeuser", "activeuser@example.com")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		res := httptest.NewRecorder()

		app.authenticate(handler).ServeHTTP(res, req)

		assert.Equal(t, http.StatusOK, res.Code)
	})
}

func TestRateLimit(t *testing.T) {
	app, _ := newTestApplication(t)

	app.config.LimiterEnabled = true
	app.config.LimiterRPS = 2
	app.config.LimiterBurst = 4

	handler := app.rateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastCode int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		res := httptest.NewRecorder()

		handler.ServeHTTP(res, req)
		lastCode = res.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)

	// A different client address gets its own limiter.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
}
