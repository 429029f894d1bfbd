package data

import (
	"database/sql"
	"testing"
	"time"

	"task_server_go/models"
)

func TestCreateTask_SetsCreatedAndID(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")

	before := time.Now().Add(-time.Second)
	task := mustCreateTask(t, store, user.ID, "Buy groceries")

	if task.ID == 0 {
		t.Fatal("expected non-zero task id")
	}
	if task.Created.Before(before) {
		t.Errorf("expected Created to be set by the server, got %v", task.Created)
	}
}

func TestGetTaskByID(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")
	created := mustCreateTask(t, store, user.ID, "Buy groceries")

	loaded, err := store.GetTaskByID(created.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected task to exist")
	}
	if loaded.Task != "Buy groceries" || loaded.UserID != user.ID {
		t.Errorf("unexpected task: %+v", loaded)
	}

	missing, err := store.GetTaskByID(9999)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown task, got %+v", missing)
	}
}

func TestGetAllTasks_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")
	first := mustCreateTask(t, store, user.ID, "first")
	second := mustCreateTask(t, store, user.ID, "second")
	third := mustCreateTask(t, store, user.ID, "third")

	tasks, err := store.GetAllTasks()
	if err != nil {
		t.Fatalf("GetAllTasks failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	// Созданы почти одновременно, порядок держит вторичная сортировка по Id
	if tasks[0].ID != third.ID || tasks[1].ID != second.ID || tasks[2].ID != first.ID {
		t.Errorf("expected newest-first order, got %d, %d, %d", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}
}

func TestGetTasksByUserID(t *testing.T) {
	store := newTestStore(t)
	alice := mustCreateUser(t, store, "alice", "alice@example.com")
	bob := mustCreateUser(t, store, "bob", "bob@example.com")
	mustCreateTask(t, store, alice.ID, "mine")
	mustCreateTask(t, store, bob.ID, "not mine")

	tasks, err := store.GetTasksByUserID(alice.ID)
	if err != nil {
		t.Fatalf("GetTasksByUserID failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Task != "mine" {
		t.Errorf("expected only alice's task, got %+v", tasks)
	}
}

func TestUpdateTask_KeepsCreatedAndOwner(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")
	task := mustCreateTask(t, store, user.ID, "Buy groceries")
	originalCreated := task.Created

	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	task.Task = "Buy groceries and milk"
	task.Due = &due
	task.Done = true
	if err := store.UpdateTask(task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	loaded, err := store.GetTaskByID(task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if loaded.Task != "Buy groceries and milk" || !loaded.Done {
		t.Errorf("unexpected task after update: %+v", loaded)
	}
	if loaded.Due == nil || !loaded.Due.Equal(due) {
		t.Errorf("expected due %v, got %v", due, loaded.Due)
	}
	if !loaded.Created.Equal(originalCreated) {
		t.Errorf("Created must not change on update: was %v, now %v", originalCreated, loaded.Created)
	}
	if loaded.UserID != user.ID {
		t.Errorf("UserId must not change on update, got %d", loaded.UserID)
	}
}

func TestUpdateTask_Missing(t *testing.T) {
	store := newTestStore(t)
	task := &models.Task{ID: 9999, Task: "ghost"}
	if err := store.UpdateTask(task); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")
	task := mustCreateTask(t, store, user.ID, "Buy groceries")

	if err := store.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	loaded, err := store.GetTaskByID(task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if loaded != nil {
		t.Error("expected task to be gone")
	}

	if err := store.DeleteTask(task.ID); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows on repeat delete, got %v", err)
	}
}

func TestCountTasksByUserID(t *testing.T) {
	store := newTestStore(t)
	user := mustCreateUser(t, store, "alice", "alice@example.com")

	count, err := store.CountTasksByUserID(user.ID)
	if err != nil {
		t.Fatalf("CountTasksByUserID failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 tasks, got %d", count)
	}

	mustCreateTask(t, store, user.ID, "one")
	mustCreateTask(t, store, user.ID, "two")

	count, err = store.CountTasksByUserID(user.ID)
	if err != nil {
		t.Fatalf("CountTasksByUserID failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 tasks, got %d", count)
	}
}
