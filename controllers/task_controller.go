package controllers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"task_server_go/cache"
	"task_server_go/data"
	"task_server_go/middleware"
	"task_server_go/models"
)

// taskCacheTTL — время жизни записи о задаче в кеше.
const taskCacheTTL = 5 * time.Minute

// TaskController обрабатывает эндпоинты задач.
type TaskController struct {
	Store *data.Store
	Cache cache.Cache
}

// ListTasksHandler возвращает все задачи с авторами.
// GET /api/tasks
func (c *TaskController) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Store.GetAllTasks()
	if err != nil {
		log.Printf("Error listing tasks: %v", err)
		respondError(w, http.StatusInternalServerError, "Server error while loading tasks.")
		return
	}

	responses, err := buildTaskResponses(c.Store, tasks)
	if err != nil {
		log.Printf("Error loading task authors: %v", err)
		respondError(w, http.StatusInternalServerError, "Server error while loading tasks.")
		return
	}
	respondJSON(w, http.StatusOK, responses)
}

// CreateTaskHandler создает задачу. Владельцем становится вызывающий,
// Created выставляет сервер.
// POST /api/tasks (требует токен)
func (c *TaskController) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req models.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if errs := req.Validate(); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	author, err := c.Store.GetUserByID(userID)
	if err != nil {
		log.Printf("Error getting user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Server error while looking up user.")
		return
	}
	if author == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondError(w, http.StatusUnauthorized, "User not found")
		return
	}

	task := &models.Task{
		UserID: userID,
		Task:   req.Task,
		Due:    req.Due,
		Done:   req.Done,
	}
	if _, err := c.Store.CreateTask(task); err != nil {
		log.Printf("Error creating task for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create task.")
		return
	}

	respondJSON(w, http.StatusCreated, models.NewTaskResponse(task, author))
}

// GetTaskHandler возвращает задачу по ID. Ответ читается через кеш:
// попадание отдается как есть, промах кладется с TTL.
// GET /api/tasks/{id}
func (c *TaskController) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	cacheKey := cache.TaskKey(taskID)
	if c.Cache != nil {
		if cached, hit := c.Cache.Get(r.Context(), cacheKey); hit {
			var resp models.TaskResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				respondJSON(w, http.StatusOK, resp)
				return
			}
		}
	}

	task, err := c.Store.GetTaskByID(taskID)
	if err != nil {
		log.Printf("Error getting task %d: %v", taskID, err)
		respondError(w, http.StatusInternalServerError, "Server error while loading task.")
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}

	author, err := c.Store.GetUserByID(task.UserID)
	if err != nil || author == nil {
		log.Printf("Error getting author %d of task %d: %v", task.UserID, taskID, err)
		respondError(w, http.StatusInternalServerError, "Server error while loading task.")
		return
	}

	resp := models.NewTaskResponse(task, author)
	if c.Cache != nil {
		if encoded, err := json.Marshal(resp); err == nil {
			c.Cache.Set(r.Context(), cacheKey, encoded, taskCacheTTL)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// UpdateTaskHandler обрабатывает полное обновление задачи.
// Перезаписываются task, due и done; Created и владелец не меняются.
// PUT /api/tasks/{id} (требует токен, только владелец)
func (c *TaskController) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if errs := req.Validate(); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	task, author, ok := c.loadOwnedTask(w, r)
	if !ok {
		return
	}

	task.Task = req.Task
	task.Due = req.Due
	task.Done = req.Done
	c.saveAndRespond(w, r, task, author)
}

// PartialUpdateTaskHandler меняет только переданные поля задачи.
// PATCH /api/tasks/{id} (требует токен, только владелец)
func (c *TaskController) PartialUpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if errs := req.Validate(); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	task, author, ok := c.loadOwnedTask(w, r)
	if !ok {
		return
	}

	if req.Task != nil {
		task.Task = *req.Task
	}
	if req.Due != nil {
		task.Due = req.Due
	}
	if req.Done != nil {
		task.Done = *req.Done
	}
	c.saveAndRespond(w, r, task, author)
}

// DeleteTaskHandler удаляет задачу.
// DELETE /api/tasks/{id} (требует токен, только владелец)
func (c *TaskController) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, _, ok := c.loadOwnedTask(w, r)
	if !ok {
		return
	}

	if err := c.Store.DeleteTask(task.ID); err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "Task not found")
			return
		}
		log.Printf("Error deleting task %d: %v", task.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete task.")
		return
	}

	if c.Cache != nil {
		c.Cache.Delete(r.Context(), cache.TaskKey(task.ID))
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadOwnedTask загружает задачу из path-параметра и проверяет, что
// вызывающий — её владелец. Сам пишет ответ при любом отказе:
// 404 если задачи нет, 403 если владелец другой.
func (c *TaskController) loadOwnedTask(w http.ResponseWriter, r *http.Request) (*models.Task, *models.User, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, nil, false
	}

	taskID, ok := parseIDVar(w, r, "id")
	if !ok {
		return nil, nil, false
	}

	task, err := c.Store.GetTaskByID(taskID)
	if err != nil {
		log.Printf("Error getting task %d: %v", taskID, err)
		respondError(w, http.StatusInternalServerError, "Server error while loading task.")
		return nil, nil, false
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "Task not found")
		return nil, nil, false
	}

	if task.UserID != userID {
		respondError(w, http.StatusForbidden, "Not authorized")
		return nil, nil, false
	}

	author, err := c.Store.GetUserByID(task.UserID)
	if err != nil || author == nil {
		log.Printf("Error getting author %d of task %d: %v", task.UserID, taskID, err)
		respondError(w, http.StatusInternalServerError, "Server error while loading task.")
		return nil, nil, false
	}

	return task, author, true
}

// saveAndRespond сохраняет задачу, сбрасывает кеш и отдает ответ.
func (c *TaskController) saveAndRespond(w http.ResponseWriter, r *http.Request, task *models.Task, author *models.User) {
	if err := c.Store.UpdateTask(task); err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "Task not found")
			return
		}
		log.Printf("Error updating task %d: %v", task.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update task.")
		return
	}

	if c.Cache != nil {
		c.Cache.Delete(r.Context(), cache.TaskKey(task.ID))
	}
	respondJSON(w, http.StatusOK, models.NewTaskResponse(task, author))
}
