package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"task_server_go/cache"
	"task_server_go/data"
	"task_server_go/models"

	"github.com/gorilla/mux"
)

// respondJSON пишет ответ API в формате JSON.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// respondError пишет ошибку API в формате {"Details": "<message>"}.
func respondError(w http.ResponseWriter, statusCode int, message string) {
	log.Printf("HTTP Error %d: %s", statusCode, message)
	respondJSON(w, statusCode, map[string]string{"Details": message})
}

// respondValidationErrors пишет 422 со списком ошибок по полям.
func respondValidationErrors(w http.ResponseWriter, errs []models.FieldError) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string][]models.FieldError{"Details": errs})
}

// pageIDVar разбирает числовой path-параметр для страничных маршрутов.
func pageIDVar(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// invalidateUserTasks сбрасывает кеш всех задач пользователя.
// В кешированном ответе лежит и автор, поэтому любое изменение
// пользователя (данные, картинка, удаление) сбрасывает его задачи.
func invalidateUserTasks(r *http.Request, store *data.Store, c cache.Cache, userID int64) {
	if c == nil {
		return
	}
	tasks, err := store.GetTasksByUserID(userID)
	if err != nil {
		log.Printf("WARN: failed to list tasks of user %d for cache invalidation: %v", userID, err)
		return
	}
	for i := range tasks {
		c.Delete(r.Context(), cache.TaskKey(tasks[i].ID))
	}
}

// buildTaskResponses собирает ответы по задачам, подгружая авторов.
// Авторы кешируются в пределах запроса, чтобы не ходить в БД по разу на задачу.
func buildTaskResponses(store *data.Store, tasks []models.Task) ([]models.TaskResponse, error) {
	authors := make(map[int64]*models.User)
	responses := make([]models.TaskResponse, 0, len(tasks))
	for i := range tasks {
		author, ok := authors[tasks[i].UserID]
		if !ok {
			var err error
			author, err = store.GetUserByID(tasks[i].UserID)
			if err != nil {
				return nil, err
			}
			if author == nil {
				// Внешний ключ гарантирует автора; сюда можно попасть только
				// при гонке с удалением пользователя. Задачу пропускаем.
				log.Printf("buildTaskResponses: task %d references missing user %d", tasks[i].ID, tasks[i].UserID)
				continue
			}
			authors[tasks[i].UserID] = author
		}
		responses = append(responses, models.NewTaskResponse(&tasks[i], author))
	}
	return responses, nil
}
