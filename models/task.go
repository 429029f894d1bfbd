package models

import "time"

// Task представляет задачу пользователя.
// Created выставляется сервером при создании и больше не меняется.
type Task struct {
	ID      int64      `json:"id" db:"Id"`
	UserID  int64      `json:"user_id" db:"UserId"`
	Task    string     `json:"task" db:"Task"`
	Created time.Time  `json:"created" db:"Created"`
	Due     *time.Time `json:"due" db:"Due"`
	Done    bool       `json:"done" db:"Done"`
}
