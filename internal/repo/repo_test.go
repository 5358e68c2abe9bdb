package repo

import (
	"testing"

	"github.com/google/uuid"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует in-memory SQLite (modernc.org/sqlite) для тестов репозитория.
// Каждый тест получает свою базу, иначе shared cache смешивает данные между тестами.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestDialector_PicksDriverByDSN(t *testing.T) {
	if got := Dialector("postgres://u:p@localhost/campus").Name(); got != "postgres" {
		t.Fatalf("expected postgres dialector, got %q", got)
	}
	if got := Dialector("host=localhost user=u dbname=campus").Name(); got != "postgres" {
		t.Fatalf("expected postgres dialector for key=value DSN, got %q", got)
	}
	d, ok := Dialector("").(gormsqlite.Dialector)
	if !ok {
		t.Fatalf("expected sqlite dialector for empty DSN")
	}
	if d.DSN != "campus.db?_pragma=foreign_keys(1)" {
		t.Fatalf("unexpected sqlite DSN: %q", d.DSN)
	}
}

func TestWithForeignKeys(t *testing.T) {
	cases := map[string]string{
		"a.db":                         "a.db?_pragma=foreign_keys(1)",
		"file:a.db?mode=rwc":           "file:a.db?mode=rwc&_pragma=foreign_keys(1)",
		"x.db?_pragma=foreign_keys(0)": "x.db?_pragma=foreign_keys(0)",
	}
	for in, want := range cases {
		if got := withForeignKeys(in); got != want {
			t.Fatalf("withForeignKeys(%q) = %q, want %q", in, got, want)
		}
	}
}
