package database

import (
	"fmt"
	"log"
	"os"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
)

var (
	DB   *gorm.DB
	once sync.Once
)

// Connect opens the shared connection once. An empty dsn falls back to the
// individual DB_* variables for local development.
func Connect(dsn string) *gorm.DB {
	once.Do(func() {
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				valueOrDefault("DB_HOST", "localhost"),
				valueOrDefault("DB_USER", "postgres"),
				os.Getenv("DB_PASS"),
				valueOrDefault("DB_NAME", "dropthecode"),
				valueOrDefault("DB_PORT", "5432"),
			)
		}

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}

		DB = db
	})

	return DB
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Member{},
		&model.Language{},
		&model.Skill{},
		&model.LanguageSkill{},
		&model.TeacherProfile{},
		&model.TeacherLanguage{},
		&model.TeacherSkill{},
		&model.Review{},
		&model.Notification{},
	)
}

func valueOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
