package models

import "time"

// DefaultImagePath — картинка профиля по умолчанию, отдается из /static.
const DefaultImagePath = "static/profile_pics/default.jpg"

// UploadedImagePrefix — префикс URL для загруженных картинок профиля.
const UploadedImagePrefix = "/media/profile_pics/"

// User представляет пользователя системы.
// PasswordHash никогда не сериализуется в ответы API.
type User struct {
	ID           int64     `json:"id" db:"Id"`
	Username     string    `json:"username" db:"Username"`
	Email        string    `json:"email" db:"Email"`
	ImageFile    *string   `json:"-" db:"ImageFile"`
	PasswordHash string    `json:"-" db:"PasswordHash"`
	CreatedAt    time.Time `json:"created_at" db:"CreatedAt"`
	UpdatedAt    time.Time `json:"updated_at" db:"UpdatedAt"`
}

// ImagePath возвращает путь к картинке профиля.
// Вычисляется из ImageFile, в БД не хранится.
func (u *User) ImagePath() string {
	if u.ImageFile != nil && *u.ImageFile != "" {
		return UploadedImagePrefix + *u.ImageFile
	}
	return DefaultImagePath
}
