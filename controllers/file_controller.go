package controllers

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"task_server_go/cache"
	"task_server_go/data"
	"task_server_go/middleware"
	"task_server_go/models"

	"github.com/google/uuid"
)

const maxUploadSize = 5 * 1024 * 1024 // 5 MB

// FileController обрабатывает загрузку картинок профиля.
type FileController struct {
	Store      *data.Store
	Cache      cache.Cache
	UploadsDir string
}

// UploadProfileImageHandler принимает multipart-файл в поле "file",
// сохраняет его под уникальным именем и привязывает к вызывающему
// пользователю. Возвращает {"url": ...}.
// POST /api/files/profile-image (требует токен)
func (c *FileController) UploadProfileImageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File must not exceed %dMB.", maxUploadSize/1024/1024))
		} else {
			respondError(w, http.StatusBadRequest, "Failed to parse multipart form: "+err.Error())
		}
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read file from request: "+err.Error())
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	allowedExtensions := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
	if !allowedExtensions[ext] {
		respondError(w, http.StatusBadRequest, "Invalid file type. Allowed: jpg, jpeg, png, gif.")
		return
	}

	if err := os.MkdirAll(c.UploadsDir, os.ModePerm); err != nil {
		log.Printf("Error creating directory %s: %v", c.UploadsDir, err)
		respondError(w, http.StatusInternalServerError, "Failed to create upload directory.")
		return
	}

	// Имя файла генерируется сервером, оригинальное не используется
	uniqueFileName := uuid.New().String() + ext
	filePath := filepath.Join(c.UploadsDir, uniqueFileName)

	dst, err := os.Create(filePath)
	if err != nil {
		log.Printf("Error creating file %s: %v", filePath, err)
		respondError(w, http.StatusInternalServerError, "Failed to store file.")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("Error writing file %s: %v", filePath, err)
		respondError(w, http.StatusInternalServerError, "Failed to store file.")
		return
	}

	if err := c.Store.SetUserImage(userID, uniqueFileName); err != nil {
		if err == sql.ErrNoRows {
			w.Header().Set("WWW-Authenticate", "Bearer")
			respondError(w, http.StatusUnauthorized, "User not found")
			return
		}
		log.Printf("Error saving image for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update user image.")
		return
	}

	// Новая картинка меняет author.image_path в кешированных задачах
	invalidateUserTasks(r, c.Store, c.Cache, userID)

	log.Printf("Profile image uploaded for user %d: %s", userID, uniqueFileName)
	respondJSON(w, http.StatusOK, map[string]string{"url": models.UploadedImagePrefix + uniqueFileName})
}
