package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task_server_go/auth"
	"task_server_go/cache"
	"task_server_go/config"
	"task_server_go/controllers"
	"task_server_go/data"
	"task_server_go/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg := config.MustLoad()

	// Инициализация базы данных
	dsn := cfg.Database.SQLitePath
	if cfg.Database.Driver == "postgres" {
		dsn = cfg.Database.PostgresDSN
	}
	store, err := data.Open(cfg.Database.Driver, dsn)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Кеш: Redis, если настроен адрес, иначе встроенный LRU
	var appCache cache.Cache
	if cfg.Redis.Addr != "" {
		appCache, err = cache.NewRedis(cfg.Redis.Addr)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	} else {
		appCache, err = cache.NewLRU(512)
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		log.Println("REDIS_ADDR is not set, using in-process LRU cache.")
	}

	authService := auth.NewService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	userController := &controllers.UserController{Store: store, Auth: authService, Cache: appCache}
	taskController := &controllers.TaskController{Store: store, Cache: appCache}
	fileController := &controllers.FileController{Store: store, Cache: appCache, UploadsDir: cfg.Paths.UploadsDir}
	healthController := &controllers.HealthController{Store: store}
	pageController, err := controllers.NewPageController(store, cfg.Paths.TemplatesDir)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	router := mux.NewRouter()

	// Открытые API-маршруты
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/users", userController.CreateUserHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/users/token", userController.LoginHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/users/{id:[0-9]+}", userController.GetUserHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{id:[0-9]+}", userController.UpdateUserHandler).Methods(http.MethodPatch)
	apiRouter.HandleFunc("/users/{id:[0-9]+}", userController.DeleteUserHandler).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/users/{id:[0-9]+}/tasks", userController.GetUserTasksHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/tasks", taskController.ListTasksHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/tasks/{id:[0-9]+}", taskController.GetTaskHandler).Methods(http.MethodGet)

	// Защищенные API-маршруты: JWT обязателен
	protectedRouter := router.PathPrefix("/api").Subrouter()
	protectedRouter.Use(middleware.JWT(authService))
	protectedRouter.HandleFunc("/users/me", userController.CurrentUserHandler).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/tasks", taskController.CreateTaskHandler).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/tasks/{id:[0-9]+}", taskController.UpdateTaskHandler).Methods(http.MethodPut)
	protectedRouter.HandleFunc("/tasks/{id:[0-9]+}", taskController.PartialUpdateTaskHandler).Methods(http.MethodPatch)
	protectedRouter.HandleFunc("/tasks/{id:[0-9]+}", taskController.DeleteTaskHandler).Methods(http.MethodDelete)
	protectedRouter.HandleFunc("/files/profile-image", fileController.UploadProfileImageHandler).Methods(http.MethodPost)

	// Проверка состояния сервера (открытая, без JWT)
	router.HandleFunc("/health", healthController.HealthCheck).Methods(http.MethodGet)

	// HTML-страницы
	router.HandleFunc("/", pageController.HomeHandler).Methods(http.MethodGet)
	router.HandleFunc("/tasks", pageController.TaskListHandler).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id:[0-9]+}", pageController.TaskDetailHandler).Methods(http.MethodGet)
	router.HandleFunc("/users/{id:[0-9]+}/tasks", pageController.UserTasksHandler).Methods(http.MethodGet)

	// Статика: загруженные картинки профиля и встроенные ассеты.
	// Эти маршруты не защищаются JWT, файлы доступны по прямой ссылке.
	router.PathPrefix("/media/profile_pics/").Handler(
		http.StripPrefix("/media/profile_pics/", http.FileServer(http.Dir(cfg.Paths.UploadsDir))))
	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.Paths.StaticDir))))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS", "PATCH", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: c.Handler(router),
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to gracefully shutdown server: %v", err)
	}
	log.Println("Server stopped")
}
