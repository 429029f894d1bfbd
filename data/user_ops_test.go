package data

import (
	"database/sql"
	"testing"
	"time"

	"task_server_go/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateUser(t *testing.T, s *Store, username, email string) *models.User {
	t.Helper()
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if _, err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func mustCreateTask(t *testing.T, s *Store, userID int64, title string) *models.Task {
	t.Helper()
	task := &models.Task{UserID: userID, Task: title}
	if _, err := s.CreateTask(task); err != nil {
		t.Fatalf("CreateTask(%s) failed: %v", title, err)
	}
	return task
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret-password" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPasswordHash("secret-password", hash) {
		t.Error("expected correct password to verify")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("expected wrong password to fail verification")
	}
}

func TestCreateUser_StoresLowercaseEmail(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "Alice@Example.COM")

	if user.ID == 0 {
		t.Fatal("expected non-zero user id")
	}

	loaded, err := store.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected user to exist")
	}
	if loaded.Email != "alice@example.com" {
		t.Errorf("expected lowercased email, got %s", loaded.Email)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	created := mustCreateUser(t, store, "alice", "alice@example.com")

	loaded, err := store.GetUserByEmail("ALICE@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if loaded == nil || loaded.ID != created.ID {
		t.Fatalf("expected to find user %d, got %+v", created.ID, loaded)
	}

	missing, err := store.GetUserByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown email, got %+v", missing)
	}
}

func TestGetUserByUsername_CaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	created := mustCreateUser(t, store, "Alice", "alice@example.com")

	loaded, err := store.GetUserByUsername("aLiCe")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if loaded == nil || loaded.ID != created.ID {
		t.Fatalf("expected to find user %d, got %+v", created.ID, loaded)
	}
}

func TestUpdateUser(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")

	user.Username = "alice2"
	user.Email = "Alice2@Example.com"
	if err := store.UpdateUser(user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	loaded, err := store.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if loaded.Username != "alice2" {
		t.Errorf("expected username alice2, got %s", loaded.Username)
	}
	if loaded.Email != "alice2@example.com" {
		t.Errorf("expected lowercased updated email, got %s", loaded.Email)
	}
}

func TestUpdateUser_Missing(t *testing.T) {
	store := newTestStore(t)
	user := &models.User{ID: 999, Username: "ghost", Email: "ghost@example.com"}
	if err := store.UpdateUser(user); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSetUserImage(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")

	if err := store.SetUserImage(user.ID, "abc.png"); err != nil {
		t.Fatalf("SetUserImage failed: %v", err)
	}

	loaded, _ := store.GetUserByID(user.ID)
	if loaded.ImageFile == nil || *loaded.ImageFile != "abc.png" {
		t.Errorf("expected image file abc.png, got %v", loaded.ImageFile)
	}
	if loaded.ImagePath() != models.UploadedImagePrefix+"abc.png" {
		t.Errorf("unexpected image path: %s", loaded.ImagePath())
	}
}

func TestUserImagePath_Default(t *testing.T) {
	user := &models.User{}
	if user.ImagePath() != models.DefaultImagePath {
		t.Errorf("expected default image path, got %s", user.ImagePath())
	}
}

func TestDeleteUser_CascadesTasks(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")
	other := mustCreateUser(t, store, "bob", "bob@example.com")
	mustCreateTask(t, store, user.ID, "Buy groceries")
	mustCreateTask(t, store, user.ID, "Cook lunch")
	keep := mustCreateTask(t, store, other.ID, "Keep me")

	if err := store.DeleteUser(user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	loaded, err := store.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if loaded != nil {
		t.Error("expected user to be gone")
	}

	count, err := store.CountTasksByUserID(user.ID)
	if err != nil {
		t.Fatalf("CountTasksByUserID failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no tasks left for deleted user, got %d", count)
	}

	// Чужие задачи не затронуты
	kept, err := store.GetTaskByID(keep.ID)
	if err != nil || kept == nil {
		t.Fatalf("expected other user's task to survive, got %+v, %v", kept, err)
	}
}

func TestDeleteUser_Missing(t *testing.T) {
	store := newTestStore(t)
	if err := store.DeleteUser(12345); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreateUser_SetsTimestamps(t *testing.T) {
	store := newTestStore(t)
	before := time.Now().Add(-time.Second)
	user := mustCreateUser(t, store, "alice", "alice@example.com")

	loaded, _ := store.GetUserByID(user.ID)
	if loaded.CreatedAt.Before(before) {
		t.Errorf("expected CreatedAt to be set, got %v", loaded.CreatedAt)
	}
	if loaded.UpdatedAt.Before(before) {
		t.Errorf("expected UpdatedAt to be set, got %v", loaded.UpdatedAt)
	}
}
