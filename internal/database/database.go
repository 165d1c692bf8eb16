package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mcstatbot/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// ErrUserNotFound возвращается операциями над отсутствующим профилем.
// Для increment/set это мягкое условие: вызывающий код логирует и продолжает.
var ErrUserNotFound = errors.New("user not found")

type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Таблица профилей пользователей
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY,
            first_use DATETIME NOT NULL,
            requests_count INTEGER NOT NULL DEFAULT 0,
            fav_servers TEXT NOT NULL DEFAULT '{}'
        )`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// RegisterUser создаёт профиль с нулевым счётчиком и пустыми избранными.
// Повторная регистрация существующего id — no-op, не ошибка.
func (db *DB) RegisterUser(ctx context.Context, userID int64) error {
	query := `INSERT OR IGNORE INTO users (id, first_use, requests_count, fav_servers)
              VALUES (?, ?, 0, '{}')`

	_, err := db.db.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// GetUser возвращает профиль пользователя или ErrUserNotFound.
func (db *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT id, first_use, requests_count, fav_servers FROM users WHERE id = ?`

	var user models.User
	var rawFavs string
	err := db.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.FirstUse,
		&user.RequestsCount,
		&rawFavs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := json.Unmarshal([]byte(rawFavs), &user.FavServers); err != nil {
		return nil, fmt.Errorf("failed to decode fav_servers for user %d: %w", userID, err)
	}
	if user.FavServers == nil {
		user.FavServers = map[string]string{}
	}

	return &user, nil
}

// IncrementRequestCount увеличивает счётчик запросов на единицу.
// Отсутствующий профиль — мягкая ошибка: логируется и возвращается ErrUserNotFound.
func (db *DB) IncrementRequestCount(ctx context.Context, userID int64) error {
	query := `UPDATE users SET requests_count = requests_count + 1 WHERE id = ?`

	result, err := db.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to increment request count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment request count: %w", err)
	}
	if affected == 0 {
		db.logger.Warn().Int64("user_id", userID).Msg("Пользователь не найден при обновлении счётчика")
		return ErrUserNotFound
	}
	return nil
}

// GetFavorites возвращает избранные сервера пользователя.
// Для отсутствующего профиля — пустая карта, не ошибка.
func (db *DB) GetFavorites(ctx context.Context, userID int64) (map[string]string, error) {
	query := `SELECT fav_servers FROM users WHERE id = ?`

	var rawFavs string
	err := db.db.QueryRowContext(ctx, query, userID).Scan(&rawFavs)
	if errors.Is(err, sql.ErrNoRows) {
		db.logger.Warn().Int64("user_id", userID).Msg("Пользователь не найден при чтении избранных")
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}

	favorites := map[string]string{}
	if err := json.Unmarshal([]byte(rawFavs), &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode fav_servers for user %d: %w", userID, err)
	}
	return favorites, nil
}

// SetFavorites полностью заменяет избранные сервера пользователя.
// Отсутствующий профиль — мягкая ошибка, как у IncrementRequestCount.
func (db *DB) SetFavorites(ctx context.Context, userID int64, favorites map[string]string) error {
	if favorites == nil {
		favorites = map[string]string{}
	}
	raw, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("failed to encode fav_servers: %w", err)
	}

	query := `UPDATE users SET fav_servers = ? WHERE id = ?`
	result, err := db.db.ExecContext(ctx, query, string(raw), userID)
	if err != nil {
		return fmt.Errorf("failed to set favorites: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set favorites: %w", err)
	}
	if affected == 0 {
		db.logger.Warn().Int64("user_id", userID).Msg("Пользователь не найден при записи избранных")
		return ErrUserNotFound
	}
	return nil
}

// CountUsers возвращает общее количество профилей (для метрик).
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Ping проверяет доступность базы (для /healthz).
func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}
