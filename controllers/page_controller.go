package controllers

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"task_server_go/data"
	"task_server_go/models"
)

// PageController отдает HTML-страницы для тех же ресурсов, что и API.
// Ошибки рендерятся страницей error.html с тем же статус-кодом,
// который API вернул бы в JSON.
type PageController struct {
	Store     *data.Store
	Templates *template.Template
}

// NewPageController загружает шаблоны из templatesDir.
func NewPageController(store *data.Store, templatesDir string) (*PageController, error) {
	tmpl, err := template.ParseGlob(templatesDir + "/*.html")
	if err != nil {
		return nil, err
	}
	return &PageController{Store: store, Templates: tmpl}, nil
}

// HomeHandler отдает главную страницу.
// GET /
func (c *PageController) HomeHandler(w http.ResponseWriter, r *http.Request) {
	c.render(w, http.StatusOK, "index.html", map[string]interface{}{
		"Title": "Home",
	})
}

// TaskListHandler отдает страницу со всеми задачами.
// GET /tasks
func (c *PageController) TaskListHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Store.GetAllTasks()
	if err != nil {
		log.Printf("Error listing tasks for page: %v", err)
		c.renderError(w, http.StatusInternalServerError, "Server error while loading tasks.")
		return
	}
	responses, err := buildTaskResponses(c.Store, tasks)
	if err != nil {
		log.Printf("Error loading task authors for page: %v", err)
		c.renderError(w, http.StatusInternalServerError, "Server error while loading tasks.")
		return
	}
	c.render(w, http.StatusOK, "tasks.html", map[string]interface{}{
		"Title": "Tasks",
		"Tasks": responses,
	})
}

// TaskDetailHandler отдает страницу одной задачи.
// GET /tasks/{id}
func (c *PageController) TaskDetailHandler(w http.ResponseWriter, r *http.Request) {
	taskID, err := pageIDVar(r, "id")
	if err != nil {
		c.renderError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	task, err := c.Store.GetTaskByID(taskID)
	if err != nil {
		log.Printf("Error getting task %d for page: %v", taskID, err)
		c.renderError(w, http.StatusInternalServerError, "Server error while loading task.")
		return
	}
	if task == nil {
		c.renderError(w, http.StatusNotFound, "Task was not found")
		return
	}

	author, err := c.Store.GetUserByID(task.UserID)
	if err != nil || author == nil {
		log.Printf("Error getting author %d of task %d for page: %v", task.UserID, taskID, err)
		c.renderError(w, http.StatusInternalServerError, "Server error while loading task.")
		return
	}

	c.render(w, http.StatusOK, "task_detail.html", map[string]interface{}{
		"Title": "Details",
		"Task":  models.NewTaskResponse(task, author),
	})
}

// UserTasksHandler отдает страницу задач одного пользователя.
// GET /users/{id}/tasks
func (c *PageController) UserTasksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pageIDVar(r, "id")
	if err != nil {
		c.renderError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	user, err := c.Store.GetUserByID(userID)
	if err != nil {
		log.Printf("Error getting user %d for page: %v", userID, err)
		c.renderError(w, http.StatusInternalServerError, "Server error while loading user.")
		return
	}
	if user == nil {
		c.renderError(w, http.StatusNotFound, "User was not found")
		return
	}

	tasks, err := c.Store.GetTasksByUserID(userID)
	if err != nil {
		log.Printf("Error getting tasks of user %d for page: %v", userID, err)
		c.renderError(w, http.StatusInternalServerError, "Server error while loading tasks.")
		return
	}

	responses := make([]models.TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, models.NewTaskResponse(&tasks[i], user))
	}
	c.render(w, http.StatusOK, "user_tasks.html", map[string]interface{}{
		"Title": user.Username,
		"User":  models.NewUserPublic(user),
		"Tasks": responses,
	})
}

// render исполняет шаблон в буфер и только потом пишет статус,
// чтобы ошибка шаблона не оставила клиенту полстраницы с кодом 200.
func (c *PageController) render(w http.ResponseWriter, statusCode int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := c.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	buf.WriteTo(w)
}

// renderError отдает страницу ошибки с человекочитаемым сообщением.
func (c *PageController) renderError(w http.ResponseWriter, statusCode int, message string) {
	log.Printf("HTTP Error %d (page): %s", statusCode, message)
	c.render(w, statusCode, "error.html", map[string]interface{}{
		"Title":   "Error",
		"Status":  statusCode,
		"Message": message,
	})
}
