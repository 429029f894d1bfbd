package data

import (
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // Драйвер PostgreSQL, регистрируется через side effect
	_ "github.com/mattn/go-sqlite3" // Драйвер SQLite, регистрируется через side effect
)

// Store инкапсулирует пул подключений к БД.
// Передается явно в контроллеры вместо глобальных переменных,
// чтобы тесты могли поднимать свой экземпляр на sqlite в памяти.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open подключается к базе данных и применяет схему.
// driver: "sqlite3" или "postgres". Для sqlite dsn — путь к файлу
// (или ":memory:"), для postgres — полный DSN.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite3":
		// Внешние ключи в SQLite выключены по умолчанию, каскадное
		// удаление задач без них не работает.
		dsn = dsn + "?_foreign_keys=on&_loc=auto"
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == "sqlite3" && strings.HasPrefix(dsn, ":memory:") {
		// У каждого соединения пула своя :memory:-база; без одного
		// соединения схема и запросы разъедутся по разным базам.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if _, err = db.Exec(GetSchema(driver)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	log.Printf("Successfully connected to the %s database, schema applied.", driver)
	return s, nil
}

// Ping проверяет доступность БД.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close закрывает пул подключений.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind переводит плейсхолдеры "?" в формат текущего драйвера ($1 для postgres).
func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}
