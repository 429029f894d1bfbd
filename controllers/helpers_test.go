package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task_server_go/auth"
	"task_server_go/cache"
	"task_server_go/data"
	"task_server_go/middleware"
	"task_server_go/models"
)

// Тесты контроллеров работают против настоящего Store на sqlite в памяти
// и встроенного LRU-кеша; HTTP-слой поднимается через httptest.

func newTestStore(t *testing.T) *data.Store {
	t.Helper()
	store, err := data.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewLRU(64)
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	return c
}

func newTestAuth() *auth.Service {
	return auth.NewService("test-secret", time.Hour)
}

func seedUser(t *testing.T, store *data.Store, username, email, password string) *models.User {
	t.Helper()
	hash, err := data.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if _, err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func seedTask(t *testing.T, store *data.Store, userID int64, title string) *models.Task {
	t.Helper()
	task := &models.Task{UserID: userID, Task: title}
	if _, err := store.CreateTask(task); err != nil {
		t.Fatalf("CreateTask(%s) failed: %v", title, err)
	}
	return task
}

// asUser кладет ID пользователя в контекст так же, как JWT-middleware.
func asUser(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	return r.WithContext(ctx)
}

// decodeDetails разбирает тело ошибки {"Details": "<message>"}.
func decodeDetails(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Details string `json:"Details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Details
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
}
