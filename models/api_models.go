package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// FieldError описывает ошибку валидации одного поля запроса.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// UserCreate представляет данные для регистрации нового пользователя.
type UserCreate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate проверяет поля запроса регистрации.
func (r *UserCreate) Validate() []FieldError {
	var errs []FieldError
	if n := utf8.RuneCountInString(strings.TrimSpace(r.Username)); n < 3 || n > 50 {
		errs = append(errs, FieldError{Field: "username", Error: "must be 3-50 characters"})
	}
	errs = append(errs, validateEmail(r.Email)...)
	if utf8.RuneCountInString(r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Error: "must be at least 8 characters"})
	}
	return errs
}

// UserUpdate представляет частичное обновление пользователя.
// nil-поле означает "не менять".
type UserUpdate struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	ImageFile *string `json:"image_file"`
}

// Validate проверяет только переданные поля.
func (r *UserUpdate) Validate() []FieldError {
	var errs []FieldError
	if r.Username != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*r.Username)); n < 3 || n > 50 {
			errs = append(errs, FieldError{Field: "username", Error: "must be 3-50 characters"})
		}
	}
	if r.Email != nil {
		errs = append(errs, validateEmail(*r.Email)...)
	}
	if r.ImageFile != nil && utf8.RuneCountInString(*r.ImageFile) > 200 {
		errs = append(errs, FieldError{Field: "image_file", Error: "must be at most 200 characters"})
	}
	return errs
}

// TaskCreate представляет данные для создания задачи (и для полного обновления PUT).
type TaskCreate struct {
	Task string     `json:"task"`
	Due  *time.Time `json:"due"`
	Done bool       `json:"done"`
}

// Validate проверяет поля задачи.
func (r *TaskCreate) Validate() []FieldError {
	var errs []FieldError
	if n := utf8.RuneCountInString(strings.TrimSpace(r.Task)); n < 1 || n > 100 {
		errs = append(errs, FieldError{Field: "task", Error: "must be 1-100 characters"})
	}
	return errs
}

// TaskUpdate представляет частичное обновление задачи.
// nil-поле означает "не менять".
type TaskUpdate struct {
	Task *string    `json:"task"`
	Due  *time.Time `json:"due"`
	Done *bool      `json:"done"`
}

// Validate проверяет только переданные поля.
func (r *TaskUpdate) Validate() []FieldError {
	var errs []FieldError
	if r.Task != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*r.Task)); n < 1 || n > 100 {
			errs = append(errs, FieldError{Field: "task", Error: "must be 1-100 characters"})
		}
	}
	return errs
}

func validateEmail(email string) []FieldError {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || utf8.RuneCountInString(email) > 120 {
		return []FieldError{{Field: "email", Error: "must be a valid email address"}}
	}
	return nil
}

// UserPublic представляет публичные данные пользователя, возвращаемые API.
type UserPublic struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	ImagePath string `json:"image_path"`
}

// UserPrivate — данные пользователя для него самого (добавляется email).
type UserPrivate struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ImagePath string `json:"image_path"`
}

// TaskResponse представляет задачу вместе с её автором.
type TaskResponse struct {
	ID      int64      `json:"id"`
	Task    string     `json:"task"`
	Created time.Time  `json:"created"`
	Due     *time.Time `json:"due"`
	Done    bool       `json:"done"`
	Author  UserPublic `json:"author"`
}

// Token представляет ответ на успешный вход.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewUserPublic собирает публичное представление пользователя.
func NewUserPublic(u *User) UserPublic {
	return UserPublic{ID: u.ID, Username: u.Username, ImagePath: u.ImagePath()}
}

// NewUserPrivate собирает приватное представление пользователя.
func NewUserPrivate(u *User) UserPrivate {
	return UserPrivate{ID: u.ID, Username: u.Username, Email: u.Email, ImagePath: u.ImagePath()}
}

// NewTaskResponse собирает представление задачи с автором.
func NewTaskResponse(t *Task, author *User) TaskResponse {
	return TaskResponse{
		ID:      t.ID,
		Task:    t.Task,
		Created: t.Created,
		Due:     t.Due,
		Done:    t.Done,
		Author:  NewUserPublic(author),
	}
}
