package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "fleet_schema_migrations"

// ErrDirtyMigration 上次迁移中断，需人工修复后 force 版本
var ErrDirtyMigration = errors.New("数据库迁移处于 dirty 状态")

// RunMigrations 将 drivers / rent_reports / adjustments 等表结构升级到最新版本。
// dirty 状态下拒绝启动，避免在半迁移的表结构上计算租金状态。
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if version, dirty, verr := m.Version(); verr == nil && dirty {
		logger.Error("检测到中断的迁移", zap.Uint("version", version))
		return fmt.Errorf("%w: version=%d", ErrDirtyMigration, version)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}
	logger.Info("数据库迁移完成", zap.Uint("version", version))

	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("初始化迁移实例失败: %w", err)
	}
	return m, nil
}
