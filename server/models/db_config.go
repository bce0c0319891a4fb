package models

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Daskott/vitals/utils"
	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "vitals.db"

// OpenDB opens the sqlite database under dbRootDir/db. The file is encrypted
// with sqlcipher when passPhrase is set.
func OpenDB(passPhrase string, dbRootDir string) (*gorm.DB, error) {
	dbFilePath, err := DbFilePath(dbRootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to set sqlite DSN: %v", err)
	}

	dialector := sqlite.Open(fmt.Sprintf(
		"%v?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbFilePath))

	if passPhrase != "" {
		dialector = sqliteEncrypt.Open(fmt.Sprintf(
			"file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL&_foreign_keys=on",
			dbFilePath,
			passPhrase,
		))
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	return db, nil
}

// OpenInMemoryDB opens a migrated, throwaway sqlite database
func OpenInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	// every new connection to :memory: is a new, empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, AutoMigrate(db)
}

// AutoMigrate migrates the db schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Medication{}, &Contact{})
}

// Checkpoint flushes the WAL into the main db file so the file can be copied
func Checkpoint(db *gorm.DB) error {
	return db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error
}

func DbFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Error,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}
