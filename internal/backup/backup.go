// Package backup produces database snapshots and restores uploaded
// ones. Both operations are sqlite-only: a hosted postgres or mysql
// install is expected to use the operator's own backup tooling instead.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/smallbiznis/finbook/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUnsupportedStore = errors.New("unsupported_store")
	ErrInvalidSnapshot  = errors.New("invalid_snapshot")
)

// sqliteMagic is the 16-byte header every sqlite database file starts
// with. Uploads that do not carry it are rejected before anything is
// overwritten.
var sqliteMagic = []byte("SQLite format 3\x00")

type Params struct {
	fx.In

	Cfg        config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	Settings   *config.SettingsHolder
	Shutdowner fx.Shutdowner
}

type Service struct {
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	settings   *config.SettingsHolder
	shutdowner fx.Shutdowner
}

func New(p Params) *Service {
	return &Service{
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("backup.service"),
		settings:   p.Settings,
		shutdowner: p.Shutdowner,
	}
}

var Module = fx.Module("backup.service",
	fx.Provide(New),
)

// Snapshot writes a consistent copy of the live database into the
// backup directory and returns its path. VACUUM INTO runs inside
// sqlite's own locking, so concurrent writes never produce a torn copy.
func (s *Service) Snapshot(ctx context.Context) (string, error) {
	if s.cfg.DBType != "sqlite" {
		return "", ErrUnsupportedStore
	}
	if err := os.MkdirAll(s.cfg.BackupDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("finbook-%s.sqlite", time.Now().UTC().Format("20060102-150405"))
	target := filepath.Join(s.cfg.BackupDir, name)

	// VACUUM INTO refuses to overwrite an existing file.
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("snapshot target already exists: %s", target)
	}

	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", target).Error; err != nil {
		return "", err
	}

	s.log.Info("snapshot written", zap.String("path", target))
	return target, nil
}

// Restore replaces the live database file with an uploaded snapshot.
// The current file is kept as a timestamped safety copy first. On
// success the process shuts down so the next start opens the restored
// file and re-runs migrations and the bootstrap seed against it.
func (s *Service) Restore(ctx context.Context, upload io.Reader) error {
	if s.cfg.DBType != "sqlite" {
		return ErrUnsupportedStore
	}

	s.settings.EnterMaintenance()
	restored := false
	defer func() {
		if !restored {
			s.settings.ExitMaintenance()
		}
	}()

	staged, err := s.stageUpload(upload)
	if err != nil {
		return err
	}
	defer os.Remove(staged)

	if err := os.MkdirAll(s.cfg.BackupDir, 0o755); err != nil {
		return err
	}
	safety := filepath.Join(s.cfg.BackupDir,
		fmt.Sprintf("pre-restore-%s.sqlite", time.Now().UTC().Format("20060102-150405")))
	if err := copyFile(s.cfg.DBPath, safety); err != nil {
		return err
	}

	// Close the pool before swapping the file underneath it.
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	if err := os.Rename(staged, s.cfg.DBPath); err != nil {
		// Cross-device renames fall back to a copy.
		if copyErr := copyFile(staged, s.cfg.DBPath); copyErr != nil {
			return copyErr
		}
	}

	restored = true
	s.log.Info("database restored, shutting down for restart",
		zap.String("safety_copy", safety),
	)
	return s.shutdowner.Shutdown()
}

// stageUpload spools the upload to a temp file next to the database and
// checks the sqlite header before anything destructive happens.
func (s *Service) stageUpload(upload io.Reader) (string, error) {
	dir := filepath.Dir(s.cfg.DBPath)
	tmp, err := os.CreateTemp(dir, "restore-*.sqlite")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(upload, header); err != nil {
		os.Remove(tmp.Name())
		return "", ErrInvalidSnapshot
	}
	for i, b := range sqliteMagic {
		if header[i] != b {
			os.Remove(tmp.Name())
			return "", ErrInvalidSnapshot
		}
	}

	if _, err := tmp.Write(header); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if _, err := io.Copy(tmp, upload); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
