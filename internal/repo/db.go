package repo

import (
	"CampusPortal/internal/model"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const defaultSQLitePath = "campus.db"

// ErrDuplicateEmail: нарушение уникальности users.email.
var ErrDuplicateEmail = errors.New("email already exists")

// InitDB открывает БД по DSN и применяет миграции.
// postgres://, postgresql:// и "host=..." открываются через Postgres,
// всё остальное считается путём к файлу SQLite (modernc, без cgo).
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(Dialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт/обновляет таблицы для всех моделей.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Article{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Dialector выбирает драйвер gorm по виду DSN.
func Dialector(dsn string) gorm.Dialector {
	if isPostgresDSN(dsn) {
		return postgres.Open(dsn)
	}
	if dsn == "" {
		dsn = defaultSQLitePath
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: withForeignKeys(dsn)}
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.HasPrefix(dsn, "host=")
}

// withForeignKeys включает проверку внешних ключей в SQLite (по умолчанию выключена).
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// isUniqueViolation распознаёт нарушение уникального индекса в Postgres и SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
