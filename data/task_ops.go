package data

import (
	"database/sql"
	"fmt"
	"time"

	"task_server_go/models"
)

// CreateTask создает новую задачу. Поле Created выставляется сервером
// и после этого не меняется. Возвращает ID созданной задачи.
func (s *Store) CreateTask(task *models.Task) (int64, error) {
	task.Created = time.Now()

	query := s.rebind(`INSERT INTO Tasks (UserId, Task, Created, Due, Done)
	          VALUES (?, ?, ?, ?, ?) RETURNING Id`)
	var id int64
	err := s.db.QueryRow(query, task.UserID, task.Task, task.Created, task.Due, task.Done).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	task.ID = id
	return id, nil
}

// GetTaskByID извлекает задачу по ID. Возвращает (nil, nil), если не найдена.
func (s *Store) GetTaskByID(id int64) (*models.Task, error) {
	task := &models.Task{}
	query := s.rebind(`SELECT Id, UserId, Task, Created, Due, Done FROM Tasks WHERE Id = ?`)
	err := s.db.Get(task, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task by ID %d: %w", id, err)
	}
	return task, nil
}

// GetAllTasks извлекает все задачи, новые сверху.
func (s *Store) GetAllTasks() ([]models.Task, error) {
	var tasks []models.Task
	query := `SELECT Id, UserId, Task, Created, Due, Done FROM Tasks ORDER BY Created DESC, Id DESC`
	err := s.db.Select(&tasks, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all tasks: %w", err)
	}
	return tasks, nil
}

// GetTasksByUserID извлекает все задачи пользователя, новые сверху.
func (s *Store) GetTasksByUserID(userID int64) ([]models.Task, error) {
	var tasks []models.Task
	query := s.rebind(`SELECT Id, UserId, Task, Created, Due, Done FROM Tasks
	          WHERE UserId = ? ORDER BY Created DESC, Id DESC`)
	err := s.db.Select(&tasks, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for user ID %d: %w", userID, err)
	}
	return tasks, nil
}

// UpdateTask сохраняет изменяемые поля задачи (Task, Due, Done).
// Created и UserId не трогаются. Возвращает sql.ErrNoRows, если задачи нет.
func (s *Store) UpdateTask(task *models.Task) error {
	query := s.rebind(`UPDATE Tasks SET Task = ?, Due = ?, Done = ? WHERE Id = ?`)
	result, err := s.db.Exec(query, task.Task, task.Due, task.Done, task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task ID %d: %w", task.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteTask удаляет задачу по ID. Возвращает sql.ErrNoRows, если задачи нет.
func (s *Store) DeleteTask(id int64) error {
	result, err := s.db.Exec(s.rebind(`DELETE FROM Tasks WHERE Id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete task ID %d: %w", id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountTasksByUserID возвращает число задач пользователя.
// Используется в тестах каскадного удаления и на страницах.
func (s *Store) CountTasksByUserID(userID int64) (int, error) {
	var count int
	query := s.rebind(`SELECT COUNT(*) FROM Tasks WHERE UserId = ?`)
	if err := s.db.Get(&count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count tasks for user ID %d: %w", userID, err)
	}
	return count, nil
}
