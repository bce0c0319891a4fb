package server

import (
	"context"
	"path"
	"path/filepath"
	"time"

	"github.com/Daskott/vitals/server/gstorage"
	"github.com/Daskott/vitals/server/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const backupTimeout = 50 * time.Second

type objectStorage interface {
	UploadFile(ctx context.Context, bucket, object, filePath string) error
	DownloadFile(ctx context.Context, bucket, object, destFilePath string) error
}

// dbBackup copies the sqlite db file to and from object storage
type dbBackup struct {
	db         *gorm.DB
	storage    objectStorage
	bucket     string
	prefix     string
	dbFilePath string
	logg       *zap.SugaredLogger
}

func (b *dbBackup) objectName() string {
	return path.Join(b.prefix, filepath.Base(b.dbFilePath))
}

// Backup flushes the WAL and uploads the db file
func (b *dbBackup) Backup(ctx context.Context) error {
	if err := models.Checkpoint(b.db); err != nil {
		return err
	}

	return b.storage.UploadFile(ctx, b.bucket, b.objectName(), b.dbFilePath)
}

// Restore downloads the last backup into dbFilePath. A missing backup is not an error.
func (b *dbBackup) Restore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, backupTimeout)
	defer cancel()

	err := b.storage.DownloadFile(ctx, b.bucket, b.objectName(), b.dbFilePath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		b.logg.Infof("No backup found at %v/%v, starting with an empty db", b.bucket, b.objectName())
		return nil
	}
	if err != nil {
		return err
	}

	b.logg.Infof("Restored db from %v/%v", b.bucket, b.objectName())
	return nil
}

func (b *dbBackup) run() {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if err := b.Backup(ctx); err != nil {
		b.logg.Errorf("backupSqliteDb: %v", err)
		return
	}

	b.logg.Infof("Uploaded db backup to %v/%v", b.bucket, b.objectName())
}
