package controllers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"task_server_go/auth"
	"task_server_go/cache"
	"task_server_go/data"
	"task_server_go/middleware"
	"task_server_go/models"

	"github.com/gorilla/mux"
)

// UserController обрабатывает эндпоинты пользователей.
type UserController struct {
	Store *data.Store
	Auth  *auth.Service
	Cache cache.Cache
}

// CreateUserHandler обрабатывает регистрацию нового пользователя.
// POST /api/users
func (c *UserController) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if errs := req.Validate(); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	// Проверка уникальности и вставка работают с каноническим видом:
	// имя без крайних пробелов, email еще и в нижнем регистре. Иначе
	// " ALICE " проскочит мимо существующей "alice".
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existingUser, err := c.Store.GetUserByUsername(username)
	if err != nil {
		log.Printf("Error checking username %s: %v", username, err)
		respondError(w, http.StatusInternalServerError, "Server error while checking username.")
		return
	}
	if existingUser != nil {
		respondError(w, http.StatusBadRequest, "Username already exists")
		return
	}

	existingEmail, err := c.Store.GetUserByEmail(email)
	if err != nil {
		log.Printf("Error checking email %s: %v", email, err)
		respondError(w, http.StatusInternalServerError, "Server error while checking email.")
		return
	}
	if existingEmail != nil {
		respondError(w, http.StatusBadRequest, "Email already exists")
		return
	}

	hashedPassword, err := data.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for %s: %v", username, err)
		respondError(w, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if _, err := c.Store.CreateUser(user); err != nil {
		log.Printf("Error creating user %s: %v", req.Username, err)
		respondError(w, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	respondJSON(w, http.StatusCreated, models.NewUserPrivate(user))
}

// LoginHandler обрабатывает вход и выдает токен доступа.
// Форма в стиле OAuth2: поле username содержит email.
// POST /api/users/token
func (c *UserController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := c.Store.GetUserByEmail(email)
	if err != nil {
		log.Printf("Error looking up user by email %s: %v", email, err)
		respondError(w, http.StatusInternalServerError, "Server error while looking up user.")
		return
	}
	// Сообщение одно и то же для "нет пользователя" и "не тот пароль"
	if user == nil || !data.CheckPasswordHash(password, user.PasswordHash) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	tokenString, _, err := c.Auth.GenerateToken(user.ID)
	if err != nil {
		log.Printf("Error generating token for user %d: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to generate access token.")
		return
	}

	respondJSON(w, http.StatusOK, models.Token{AccessToken: tokenString, TokenType: "bearer"})
}

// CurrentUserHandler возвращает пользователя, которому принадлежит токен.
// GET /api/users/me
func (c *UserController) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := c.Store.GetUserByID(userID)
	if err != nil {
		log.Printf("Error getting user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Server error while looking up user.")
		return
	}
	if user == nil {
		// Токен валиден, но пользователь уже удален
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondError(w, http.StatusUnauthorized, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, models.NewUserPrivate(user))
}

// GetUserHandler возвращает публичные данные пользователя по ID.
// GET /api/users/{id}
func (c *UserController) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	user, err := c.Store.GetUserByID(userID)
	if err != nil {
		log.Printf("Error getting user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Server error while looking up user.")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, models.NewUserPublic(user))
}

// UpdateUserHandler обрабатывает частичное обновление пользователя.
// Меняются только переданные поля; смена username/email заново
// проверяется на уникальность.
// PATCH /api/users/{id}
func (c *UserController) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	var req models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if errs := req.Validate(); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	user, err := c.Store.GetUserByID(userID)
	if err != nil {
		log.Printf("Error getting user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Server error while looking up user.")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	// Новые значения канонизируются до проверки уникальности,
	// иначе пробелы по краям обходят регистронезависимый поиск
	var newUsername, newEmail string
	if req.Username != nil {
		newUsername = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		newEmail = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if req.Username != nil && !strings.EqualFold(newUsername, user.Username) {
		existing, err := c.Store.GetUserByUsername(newUsername)
		if err != nil {
			log.Printf("Error checking username %s: %v", newUsername, err)
			respondError(w, http.StatusInternalServerError, "Server error while checking username.")
			return
		}
		if existing != nil {
			respondError(w, http.StatusBadRequest, "Username already exists")
			return
		}
	}

	if req.Email != nil && newEmail != user.Email {
		existing, err := c.Store.GetUserByEmail(newEmail)
		if err != nil {
			log.Printf("Error checking email %s: %v", newEmail, err)
			respondError(w, http.StatusInternalServerError, "Server error while checking email.")
			return
		}
		if existing != nil {
			respondError(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}

	if req.Username != nil {
		user.Username = newUsername
	}
	if req.Email != nil {
		user.Email = newEmail
	}
	if req.ImageFile != nil {
		user.ImageFile = req.ImageFile
	}

	if err := c.Store.UpdateUser(user); err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error updating user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update user.")
		return
	}

	// В кеше задач лежит и автор — сбрасываем записи этого пользователя
	invalidateUserTasks(r, c.Store, c.Cache, userID)

	respondJSON(w, http.StatusOK, models.NewUserPrivate(user))
}

// DeleteUserHandler удаляет пользователя и каскадно все его задачи.
// DELETE /api/users/{id}
func (c *UserController) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	// Ключи кеша собираются до удаления строк
	invalidateUserTasks(r, c.Store, c.Cache, userID)

	if err := c.Store.DeleteUser(userID); err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error deleting user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete user.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetUserTasksHandler возвращает задачи пользователя вместе с автором.
// GET /api/users/{id}/tasks
func (c *UserController) GetUserTasksHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	user, err := c.Store.GetUserByID(userID)
	if err != nil {
		log.Printf("Error getting user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Server error while looking up user.")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	tasks, err := c.Store.GetTasksByUserID(userID)
	if err != nil {
		log.Printf("Error getting tasks for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Server error while loading tasks.")
		return
	}

	responses := make([]models.TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, models.NewTaskResponse(&tasks[i], user))
	}
	respondJSON(w, http.StatusOK, responses)
}

// parseIDVar разбирает числовой path-параметр. Маршруты ограничены
// шаблоном [0-9]+, так что сбой парсинга означает переполнение.
func parseIDVar(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
