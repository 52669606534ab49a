package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable 与后端共用数据库时避免占用默认的 schema_migrations
const migrationsTable = "gestion_schema_migrations"

// ErrDirtyMigration 上次迁移中断，需人工修复后才能启动
var ErrDirtyMigration = errors.New("会话表迁移处于 dirty 状态")

// Migrate 将 session_entries 迁移到最新版本，返回当前版本号
func Migrate(db *gorm.DB, logger *zap.Logger) (uint, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("加载迁移文件失败: %w", err)
	}
	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("创建迁移驱动失败: %w", err)
	}
	// 不调用 m.Close()：它会连带关闭 gorm 持有的连接池
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, migrateError(err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		version = 0
	case err != nil:
		return 0, fmt.Errorf("读取迁移版本失败: %w", err)
	case dirty:
		return version, fmt.Errorf("%w: version=%d", ErrDirtyMigration, version)
	}

	logger.Info("会话表迁移完成", zap.Uint("version", version), zap.String("table", migrationsTable))
	return version, nil
}

// migrateError dirty 状态单独识别，其余错误原样包装
func migrateError(err error) error {
	var dirty migrate.ErrDirty
	if errors.As(err, &dirty) {
		return fmt.Errorf("%w: version=%d", ErrDirtyMigration, dirty.Version)
	}
	return fmt.Errorf("执行迁移失败: %w", err)
}
