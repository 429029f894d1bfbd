package data

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"task_server_go/models"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword генерирует хеш bcrypt для пароля.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash сравнивает пароль с хешем.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateUser создает нового пользователя. Поле PasswordHash должно быть
// уже захешировано. Email хранится в нижнем регистре.
// Возвращает ID созданного пользователя.
func (s *Store) CreateUser(user *models.User) (int64, error) {
	now := time.Now()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	query := s.rebind(`INSERT INTO Users (Username, Email, ImageFile, PasswordHash, CreatedAt, UpdatedAt)
	          VALUES (?, ?, ?, ?, ?, ?) RETURNING Id`)
	var id int64
	err := s.db.QueryRow(query, user.Username, user.Email, user.ImageFile, user.PasswordHash, now, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = id
	return id, nil
}

// GetUserByID извлекает пользователя по ID. Возвращает (nil, nil), если не найден.
func (s *Store) GetUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := s.rebind(`SELECT Id, Username, Email, ImageFile, PasswordHash, CreatedAt, UpdatedAt
	          FROM Users WHERE Id = ?`)
	err := s.db.Get(user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail извлекает пользователя по email без учета регистра.
// Возвращает (nil, nil), если не найден.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := s.rebind(`SELECT Id, Username, Email, ImageFile, PasswordHash, CreatedAt, UpdatedAt
	          FROM Users WHERE LOWER(Email) = LOWER(?)`)
	err := s.db.Get(user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return user, nil
}

// GetUserByUsername извлекает пользователя по имени без учета регистра.
// Возвращает (nil, nil), если не найден.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	user := &models.User{}
	query := s.rebind(`SELECT Id, Username, Email, ImageFile, PasswordHash, CreatedAt, UpdatedAt
	          FROM Users WHERE LOWER(Username) = LOWER(?)`)
	err := s.db.Get(user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return user, nil
}

// UpdateUser сохраняет изменяемые поля пользователя (Username, Email, ImageFile).
// PasswordHash и CreatedAt не трогаются. Возвращает sql.ErrNoRows, если
// пользователя нет.
func (s *Store) UpdateUser(user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = time.Now()

	query := s.rebind(`UPDATE Users SET Username = ?, Email = ?, ImageFile = ?, UpdatedAt = ?
	          WHERE Id = ?`)
	result, err := s.db.Exec(query, user.Username, user.Email, user.ImageFile, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user ID %d: %w", user.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetUserImage сохраняет имя файла картинки профиля пользователя.
func (s *Store) SetUserImage(userID int64, fileName string) error {
	query := s.rebind(`UPDATE Users SET ImageFile = ?, UpdatedAt = ? WHERE Id = ?`)
	result, err := s.db.Exec(query, fileName, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set image for user ID %d: %w", userID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteUser удаляет пользователя и все его задачи в одной транзакции.
// Каскад продублирован внешним ключом в схеме, но явное удаление не
// зависит от настроек драйвера. Возвращает sql.ErrNoRows, если
// пользователя нет.
func (s *Store) DeleteUser(userID int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(s.rebind(`DELETE FROM Tasks WHERE UserId = ?`), userID); err != nil {
		return fmt.Errorf("failed to delete tasks of user ID %d: %w", userID, err)
	}

	result, err := tx.Exec(s.rebind(`DELETE FROM Users WHERE Id = ?`), userID)
	if err != nil {
		return fmt.Errorf("failed to delete user ID %d: %w", userID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user deletion: %w", err)
	}
	return nil
}
