package data

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS Users (
    Id INTEGER PRIMARY KEY AUTOINCREMENT,
    Username TEXT NOT NULL UNIQUE,
    Email TEXT NOT NULL UNIQUE,
    ImageFile TEXT,
    PasswordHash TEXT NOT NULL,
    CreatedAt DATETIME NOT NULL,
    UpdatedAt DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS Tasks (
    Id INTEGER PRIMARY KEY AUTOINCREMENT,
    UserId INTEGER NOT NULL,
    Task TEXT NOT NULL,
    Created DATETIME NOT NULL,
    Due DATETIME,
    Done BOOLEAN NOT NULL DEFAULT 0,
    FOREIGN KEY (UserId) REFERENCES Users(Id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON Tasks(UserId);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS Users (
    Id BIGSERIAL PRIMARY KEY,
    Username TEXT NOT NULL UNIQUE,
    Email TEXT NOT NULL UNIQUE,
    ImageFile TEXT,
    PasswordHash TEXT NOT NULL,
    CreatedAt TIMESTAMPTZ NOT NULL,
    UpdatedAt TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS Tasks (
    Id BIGSERIAL PRIMARY KEY,
    UserId BIGINT NOT NULL,
    Task TEXT NOT NULL,
    Created TIMESTAMPTZ NOT NULL,
    Due TIMESTAMPTZ,
    Done BOOLEAN NOT NULL DEFAULT FALSE,
    FOREIGN KEY (UserId) REFERENCES Users(Id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON Tasks(UserId);
`

// GetSchema возвращает SQL-схему для указанного драйвера.
// Уникальность Username/Email на уровне схемы регистрозависимая;
// регистронезависимая проверка делается запросами в user_ops.
func GetSchema(driver string) string {
	if driver == "postgres" {
		return postgresSchema
	}
	return sqliteSchema
}
